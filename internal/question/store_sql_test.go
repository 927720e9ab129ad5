package question_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/5minanswer/questionai/internal/db"
	"github.com/5minanswer/questionai/internal/db/dbtest"
	"github.com/5minanswer/questionai/internal/question"
)

func sample(user string, n int) []question.Question {
	out := make([]question.Question, n)
	for i := range out {
		out[i] = question.Question{
			UserID: user, ClassLevel: 10, Subject: "physics", Chapter: 2,
			Text:          "What is the SI unit of force?",
			Options:       []string{"Newton", "Joule", "Watt", "Pascal"},
			CorrectAnswer: "Newton",
		}
	}
	return out
}

func TestSaveBatchAndGetByIDs(t *testing.T) {
	ctx := context.Background()
	dbh := dbtest.Open(t)
	s := question.NewSQLStore(dbh)

	var saved []question.Question
	err := db.WithTx(ctx, dbh, func(tx *sql.Tx) error {
		var err error
		saved, err = s.SaveBatch(ctx, tx, sample("u-1", 3))
		return err
	})
	require.NoError(t, err)
	require.Len(t, saved, 3)
	assert.NotEqual(t, saved[0].ID, saved[1].ID)
	assert.Equal(t, "medium", saved[0].Difficulty)
	assert.Equal(t, "english", saved[0].Language)

	got, err := s.GetByIDs(ctx, "u-1", []string{saved[0].ID, saved[2].ID, "missing"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, []string{"Newton", "Joule", "Watt", "Pascal"}, got[0].Options)

	// another user's ids are invisible
	got, err = s.GetByIDs(ctx, "u-2", []string{saved[0].ID})
	require.NoError(t, err)
	assert.Empty(t, got)

	recent, err := s.Recent(ctx, "u-1", 2)
	require.NoError(t, err)
	assert.Len(t, recent, 2)
}

func TestSaveBatchRollsBackWithTx(t *testing.T) {
	ctx := context.Background()
	dbh := dbtest.Open(t)
	s := question.NewSQLStore(dbh)

	var ids []string
	err := db.WithTx(ctx, dbh, func(tx *sql.Tx) error {
		saved, err := s.SaveBatch(ctx, tx, sample("u-1", 2))
		for _, q := range saved {
			ids = append(ids, q.ID)
		}
		if err != nil {
			return err
		}
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	got, err := s.GetByIDs(ctx, "u-1", ids)
	require.NoError(t, err)
	assert.Empty(t, got)
}
