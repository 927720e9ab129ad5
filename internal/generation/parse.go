package generation

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var errNoJSONArray = errors.New("no JSON array in model output")

// parseQuestions pulls the outermost JSON array out of free-form model
// text and keeps only well-formed items: non-empty question, four
// distinct non-empty options, and a correct answer equal to one of them.
// A bare letter answer ("B") is mapped to the matching option.
func parseQuestions(text string) ([]Question, error) {
	start := strings.IndexByte(text, '[')
	end := strings.LastIndexByte(text, ']')
	if start < 0 || end <= start {
		return nil, errNoJSONArray
	}
	var raw []Question
	if err := json.Unmarshal([]byte(text[start:end+1]), &raw); err != nil {
		return nil, fmt.Errorf("decode questions: %w", err)
	}
	out := make([]Question, 0, len(raw))
	for _, q := range raw {
		if fixed, ok := normalize(q); ok {
			out = append(out, fixed)
		}
	}
	return out, nil
}

func normalize(q Question) (Question, bool) {
	q.Question = strings.TrimSpace(q.Question)
	q.CorrectAnswer = strings.TrimSpace(q.CorrectAnswer)
	if q.Question == "" || len(q.Options) != 4 {
		return Question{}, false
	}
	seen := make(map[string]bool, 4)
	for i, o := range q.Options {
		o = strings.TrimSpace(o)
		if o == "" || seen[o] {
			return Question{}, false
		}
		seen[o] = true
		q.Options[i] = o
	}
	if seen[q.CorrectAnswer] {
		return q, true
	}
	if len(q.CorrectAnswer) == 1 {
		if idx := strings.IndexByte("ABCD", upper(q.CorrectAnswer[0])); idx >= 0 {
			q.CorrectAnswer = q.Options[idx]
			return q, true
		}
	}
	return Question{}, false
}

func upper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - 'a' + 'A'
	}
	return c
}
