// Package usage tracks how many questions each user has generated per
// subject per calendar day and enforces the daily cap.
//
// Days are partitioned by date string in a single configured timezone, so
// rollover needs no maintenance job: a new date has no row yet.
package usage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

const DefaultCap = 25

var ErrInvalidCount = errors.New("requested question count must be positive")

type Decision struct {
	Allowed   bool   `json:"allowed"`
	Message   string `json:"message,omitempty"`
	Used      int    `json:"used"`
	Remaining int    `json:"remaining"`
}

type SubjectUsage struct {
	Subject   string `json:"subject"`
	Used      int    `json:"used"`
	Remaining int    `json:"remaining"`
	Cap       int    `json:"cap"`
}

type Ledger struct {
	db  *sql.DB
	cap int
	loc *time.Location
	now func() time.Time
}

func NewLedger(db *sql.DB, cap int, loc *time.Location) *Ledger {
	if cap <= 0 {
		cap = DefaultCap
	}
	if loc == nil {
		loc = time.Local
	}
	return &Ledger{db: db, cap: cap, loc: loc, now: time.Now}
}

// WithClock replaces the time source.
func (l *Ledger) WithClock(now func() time.Time) *Ledger {
	l.now = now
	return l
}

func (l *Ledger) Cap() int { return l.cap }

func (l *Ledger) today() string {
	return l.now().In(l.loc).Format("2006-01-02")
}

// CheckAndConsume reserves requested questions against today's quota.
// The check and the increment happen in one conditional upsert, so
// concurrent callers can never push the stored count past the cap. A
// rejected request leaves the ledger untouched.
func (l *Ledger) CheckAndConsume(ctx context.Context, userID, subject string, requested int) (Decision, error) {
	if requested <= 0 {
		return Decision{}, ErrInvalidCount
	}
	subject = normalizeSubject(subject)
	day := l.today()

	if requested > l.cap {
		used, found, err := l.used(ctx, userID, subject, day)
		if err != nil {
			return Decision{}, err
		}
		if !found {
			return l.reject(0, fmt.Sprintf("You cannot generate more than %d questions per request.", l.cap)), nil
		}
		return l.reject(used, l.limitMessage(used, subject)), nil
	}

	var used int
	err := l.db.QueryRowContext(ctx, `
INSERT INTO usage_limits (user_id, subject, usage_date, questions_generated, updated_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (user_id, subject, usage_date) DO UPDATE
   SET questions_generated = usage_limits.questions_generated + excluded.questions_generated,
       updated_at = excluded.updated_at
 WHERE usage_limits.questions_generated + excluded.questions_generated <= $6
RETURNING questions_generated`,
		userID, subject, day, requested, l.now().Unix(), l.cap).Scan(&used)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// conflict row exists but the guard refused the update
		cur, _, err := l.used(ctx, userID, subject, day)
		if err != nil {
			return Decision{}, err
		}
		return l.reject(cur, l.limitMessage(cur, subject)), nil
	case err != nil:
		return Decision{}, fmt.Errorf("usage: consume: %w", err)
	}
	return Decision{Allowed: true, Used: used, Remaining: l.remaining(used)}, nil
}

// Remaining is the cap minus today's count; the full cap when nothing has
// been generated yet. Never negative.
func (l *Ledger) Remaining(ctx context.Context, userID, subject string) (int, error) {
	used, _, err := l.used(ctx, userID, normalizeSubject(subject), l.today())
	if err != nil {
		return 0, err
	}
	return l.remaining(used), nil
}

// Today lists the caller's usage for every subject touched today.
func (l *Ledger) Today(ctx context.Context, userID string) ([]SubjectUsage, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT subject, questions_generated FROM usage_limits
		  WHERE user_id=$1 AND usage_date=$2 ORDER BY subject`, userID, l.today())
	if err != nil {
		return nil, fmt.Errorf("usage: today: %w", err)
	}
	defer rows.Close()
	out := []SubjectUsage{}
	for rows.Next() {
		var su SubjectUsage
		if err := rows.Scan(&su.Subject, &su.Used); err != nil {
			return nil, err
		}
		su.Remaining = l.remaining(su.Used)
		su.Cap = l.cap
		out = append(out, su)
	}
	return out, rows.Err()
}

func (l *Ledger) used(ctx context.Context, userID, subject, day string) (int, bool, error) {
	var n int
	err := l.db.QueryRowContext(ctx,
		`SELECT questions_generated FROM usage_limits WHERE user_id=$1 AND subject=$2 AND usage_date=$3`,
		userID, subject, day).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("usage: read: %w", err)
	}
	return n, true, nil
}

func (l *Ledger) reject(used int, msg string) Decision {
	return Decision{Allowed: false, Message: msg, Used: used, Remaining: l.remaining(used)}
}

func (l *Ledger) limitMessage(used int, subject string) string {
	return fmt.Sprintf("Daily limit reached: %d/%d questions used for %s today. Try again tomorrow.", used, l.cap, subject)
}

func (l *Ledger) remaining(used int) int {
	if r := l.cap - used; r > 0 {
		return r
	}
	return 0
}

func normalizeSubject(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
