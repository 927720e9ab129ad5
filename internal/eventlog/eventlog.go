package eventlog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/5minanswer/questionai/internal/db"
)

const (
	TypeQuestionsGenerated = "QuestionsGenerated"
	TypeQuizSubmitted      = "QuizSubmitted"
)

type Event struct {
	Seq       int64           `json:"seq"`
	Type      string          `json:"type"`
	Key       string          `json:"key"` // natural key, e.g. attempt id
	Data      json.RawMessage `json:"data"`
	CreatedAt int64           `json:"created_at"`
}

// Append writes one event through ex, which is normally the caller's
// transaction so the event commits or rolls back with the change it records.
func Append(ctx context.Context, ex db.Execer, typ, key string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("eventlog: marshal %s: %w", typ, err)
	}
	_, err = ex.ExecContext(ctx,
		`INSERT INTO event_log (typ, key, data, created_at) VALUES ($1,$2,$3,$4)`,
		typ, key, string(data), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("eventlog: append %s: %w", typ, err)
	}
	return nil
}

// ListByKey returns events for key in append order.
func ListByKey(ctx context.Context, ex db.Execer, key string) ([]Event, error) {
	rows, err := ex.QueryContext(ctx,
		`SELECT seq, typ, key, data, created_at FROM event_log WHERE key=$1 ORDER BY seq`, key)
	if err != nil {
		return nil, fmt.Errorf("eventlog: list: %w", err)
	}
	defer rows.Close()
	var out []Event
	for rows.Next() {
		var e Event
		var data string
		if err := rows.Scan(&e.Seq, &e.Type, &e.Key, &data, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Data = json.RawMessage(data)
		out = append(out, e)
	}
	return out, rows.Err()
}
