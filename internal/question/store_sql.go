package question

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/5minanswer/questionai/internal/db"
)

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(d *sql.DB) *SQLStore {
	return &SQLStore{db: d}
}

// SaveBatch inserts qs through ex (normally the caller's transaction) and
// returns them with fresh ids and timestamps.
func (s *SQLStore) SaveBatch(ctx context.Context, ex db.Execer, qs []Question) ([]Question, error) {
	now := time.Now().UTC().Truncate(time.Second)
	out := make([]Question, len(qs))
	for i, q := range qs {
		q.ID = uuid.NewString()
		q.CreatedAt = now
		if q.Difficulty == "" {
			q.Difficulty = "medium"
		}
		if q.Language == "" {
			q.Language = "english"
		}
		opts, err := json.Marshal(q.Options)
		if err != nil {
			return nil, fmt.Errorf("question: marshal options: %w", err)
		}
		_, err = ex.ExecContext(ctx, `INSERT INTO question_history
			(id, user_id, class_level, subject, chapter, question_text, options_json, correct_answer, difficulty, language, created_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
			q.ID, q.UserID, q.ClassLevel, q.Subject, q.Chapter, q.Text, string(opts), q.CorrectAnswer,
			q.Difficulty, q.Language, now.Unix())
		if err != nil {
			return nil, fmt.Errorf("question: insert: %w", err)
		}
		out[i] = q
	}
	return out, nil
}

// GetByIDs loads the caller's own questions. Unknown ids, and ids owned by
// someone else, are simply absent from the result.
func (s *SQLStore) GetByIDs(ctx context.Context, userID string, ids []string) ([]Question, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	args := make([]any, 0, len(ids)+1)
	args = append(args, userID)
	ph := make([]string, len(ids))
	for i, id := range ids {
		args = append(args, id)
		ph[i] = fmt.Sprintf("$%d", i+2)
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, user_id, class_level, subject, chapter, question_text,
		options_json, correct_answer, difficulty, language, created_at
		FROM question_history WHERE user_id=$1 AND id IN (`+strings.Join(ph, ",")+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("question: get by ids: %w", err)
	}
	defer rows.Close()
	return scanQuestions(rows)
}

// Recent returns the newest questions a user generated.
func (s *SQLStore) Recent(ctx context.Context, userID string, limit int) ([]Question, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, user_id, class_level, subject, chapter, question_text,
		options_json, correct_answer, difficulty, language, created_at
		FROM question_history WHERE user_id=$1 ORDER BY created_at DESC, id LIMIT $2`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("question: recent: %w", err)
	}
	defer rows.Close()
	return scanQuestions(rows)
}

func scanQuestions(rows *sql.Rows) ([]Question, error) {
	out := []Question{}
	for rows.Next() {
		var q Question
		var opts string
		var created int64
		if err := rows.Scan(&q.ID, &q.UserID, &q.ClassLevel, &q.Subject, &q.Chapter, &q.Text,
			&opts, &q.CorrectAnswer, &q.Difficulty, &q.Language, &created); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(opts), &q.Options); err != nil {
			return nil, fmt.Errorf("question: options of %s: %w", q.ID, err)
		}
		q.CreatedAt = time.Unix(created, 0).UTC()
		out = append(out, q)
	}
	return out, rows.Err()
}
