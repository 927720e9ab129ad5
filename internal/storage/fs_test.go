package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFSStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	base := t.TempDir()
	s, err := NewFSStore(base)
	require.NoError(t, err)

	key, err := s.Put(ctx, "content/10/physics/1.txt", strings.NewReader("hello"))
	require.NoError(t, err)
	assert.Equal(t, "content/10/physics/1.txt", key)

	rc, err := s.Get(ctx, key)
	require.NoError(t, err)
	defer rc.Close()
	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(b))
}

func TestFSStoreMissingAndEscapes(t *testing.T) {
	ctx := context.Background()
	base := t.TempDir()
	s, err := NewFSStore(filepath.Join(base, "blobs"))
	require.NoError(t, err)

	_, err = s.Get(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Put(ctx, "../../escape.txt", strings.NewReader("x"))
	require.NoError(t, err)
	_, statErr := os.Stat(filepath.Join(base, "escape.txt"))
	assert.True(t, os.IsNotExist(statErr))
	_, statErr = os.Stat(filepath.Join(base, "blobs", "escape.txt"))
	assert.NoError(t, statErr)

	_, err = s.Put(ctx, "", strings.NewReader("x"))
	assert.Error(t, err)
}
