package quiz

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/5minanswer/questionai/internal/db"
	"github.com/5minanswer/questionai/internal/eventlog"
	"github.com/5minanswer/questionai/internal/question"
)

var (
	ErrAttemptNotFound = errors.New("quiz attempt not found")
	ErrPersistence     = errors.New("failed to save quiz attempt")
)

const DefaultHistoryLimit = 20

// QuestionSource resolves previously generated questions for the owner.
type QuestionSource interface {
	GetByIDs(ctx context.Context, userID string, ids []string) ([]question.Question, error)
}

type Engine struct {
	db        *sql.DB
	questions QuestionSource
	now       func() time.Time
}

func NewEngine(d *sql.DB, questions QuestionSource) *Engine {
	return &Engine{db: d, questions: questions, now: time.Now}
}

// WithClock replaces the time source used for attempt timestamps.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Submit scores sub and stores the attempt, its responses and a
// QuizSubmitted event in one transaction. Any storage failure rolls the
// whole thing back and is reported as ErrPersistence. The returned detail
// is what was stored, read back.
func (e *Engine) Submit(ctx context.Context, sub Submission) (Detail, error) {
	originals := sub.Questions
	if len(originals) == 0 {
		var err error
		originals, err = e.resolve(ctx, sub.UserID, sub.Answers)
		if err != nil {
			return Detail{}, err
		}
	}
	res := Score(originals, sub.Answers)

	id := uuid.NewString()
	at := e.now().UTC()
	err := db.WithTx(ctx, e.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO quiz_attempts
			(id, user_id, class_level, subject, chapter, total_questions, correct_answers, score_percentage, time_taken, attempted_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
			id, sub.UserID, sub.ClassLevel, sub.Subject, sub.Chapter, res.Total, res.Correct, res.Percentage,
			sub.TimeTaken, at.UnixNano())
		if err != nil {
			return fmt.Errorf("insert attempt: %w", err)
		}
		for _, r := range res.Responses {
			opts, err := json.Marshal(r.Options)
			if err != nil {
				return err
			}
			_, err = tx.ExecContext(ctx, `INSERT INTO student_responses
				(id, user_id, quiz_attempt_id, position, question_id, question_text, options_json, selected_answer, correct_answer, is_correct)
				VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
				uuid.NewString(), sub.UserID, id, r.Position, r.QuestionID, r.QuestionText, string(opts),
				r.SelectedAnswer, r.CorrectAnswer, boolInt(r.IsCorrect))
			if err != nil {
				return fmt.Errorf("insert response %d: %w", r.Position, err)
			}
		}
		return eventlog.Append(ctx, tx, eventlog.TypeQuizSubmitted, id, map[string]any{
			"user_id":          sub.UserID,
			"subject":          sub.Subject,
			"total_questions":  res.Total,
			"correct_answers":  res.Correct,
			"score_percentage": round2(res.Percentage),
		})
	})
	if err != nil {
		return Detail{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return e.GetAttemptDetail(ctx, sub.UserID, id)
}

func (e *Engine) resolve(ctx context.Context, userID string, answers []Answer) ([]OriginalQuestion, error) {
	if e.questions == nil || len(answers) == 0 {
		return nil, nil
	}
	ids := make([]string, 0, len(answers))
	for _, a := range answers {
		ids = append(ids, a.QuestionID)
	}
	qs, err := e.questions.GetByIDs(ctx, userID, ids)
	if err != nil {
		return nil, fmt.Errorf("quiz: resolve questions: %w", err)
	}
	out := make([]OriginalQuestion, len(qs))
	for i, q := range qs {
		out[i] = OriginalQuestion{ID: q.ID, Question: q.Text, Options: q.Options, CorrectAnswer: q.CorrectAnswer}
	}
	return out, nil
}

// ListAttempts returns the user's attempts, most recent first.
func (e *Engine) ListAttempts(ctx context.Context, userID string, limit int) ([]Attempt, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	rows, err := e.db.QueryContext(ctx, `SELECT `+attemptCols+` FROM quiz_attempts
		WHERE user_id=$1 ORDER BY attempted_at DESC, id DESC LIMIT $2`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("quiz: list attempts: %w", err)
	}
	defer rows.Close()
	out := []Attempt{}
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// GetAttemptDetail only finds attempts owned by userID; someone else's
// attempt id yields ErrAttemptNotFound.
func (e *Engine) GetAttemptDetail(ctx context.Context, userID, quizID string) (Detail, error) {
	a, err := scanAttempt(e.db.QueryRowContext(ctx, `SELECT `+attemptCols+` FROM quiz_attempts
		WHERE id=$1 AND user_id=$2`, quizID, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return Detail{}, ErrAttemptNotFound
	}
	if err != nil {
		return Detail{}, fmt.Errorf("quiz: get attempt: %w", err)
	}

	rows, err := e.db.QueryContext(ctx, `SELECT position, question_id, question_text, options_json,
		selected_answer, correct_answer, is_correct
		FROM student_responses WHERE quiz_attempt_id=$1 AND user_id=$2 ORDER BY position`, quizID, userID)
	if err != nil {
		return Detail{}, fmt.Errorf("quiz: get responses: %w", err)
	}
	defer rows.Close()
	d := Detail{Attempt: a, Responses: []Response{}}
	for rows.Next() {
		var r Response
		var opts string
		var correct int
		if err := rows.Scan(&r.Position, &r.QuestionID, &r.QuestionText, &opts,
			&r.SelectedAnswer, &r.CorrectAnswer, &correct); err != nil {
			return Detail{}, err
		}
		if err := json.Unmarshal([]byte(opts), &r.Options); err != nil {
			return Detail{}, fmt.Errorf("quiz: response options: %w", err)
		}
		r.IsCorrect = correct != 0
		d.Responses = append(d.Responses, r)
	}
	return d, rows.Err()
}

const attemptCols = `id, user_id, class_level, subject, chapter, total_questions, correct_answers,
	score_percentage, time_taken, attempted_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanAttempt(s scanner) (Attempt, error) {
	var a Attempt
	var at int64
	if err := s.Scan(&a.ID, &a.UserID, &a.ClassLevel, &a.Subject, &a.Chapter, &a.TotalQuestions,
		&a.CorrectAnswers, &a.ScorePercentage, &a.TimeTaken, &at); err != nil {
		return Attempt{}, err
	}
	a.WrongAnswers = a.TotalQuestions - a.CorrectAnswers
	a.ScorePercentage = round2(a.ScorePercentage)
	a.AttemptedAt = time.Unix(0, at).UTC()
	return a, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
