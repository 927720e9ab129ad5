// Package content fetches chapter source text from the CMS.
package content

import (
	"context"
	"errors"
	"fmt"
)

var ErrContentUnavailable = errors.New("chapter content unavailable")

type ChapterRef struct {
	ClassLevel int
	Subject    string
	Chapter    int
}

func (r ChapterRef) String() string {
	return fmt.Sprintf("class %d %s chapter %d", r.ClassLevel, r.Subject, r.Chapter)
}

// Fetcher returns the plain text of a chapter. Implementations return
// ErrContentUnavailable (possibly wrapped) when the chapter cannot be had.
type Fetcher interface {
	Fetch(ctx context.Context, ref ChapterRef) (string, error)
}
