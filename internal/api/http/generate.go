package http

import (
	"context"
	"net/http"

	authmw "github.com/5minanswer/questionai/internal/auth/middleware"
	"github.com/5minanswer/questionai/internal/generation"
	"github.com/5minanswer/questionai/internal/logger"
	"github.com/5minanswer/questionai/internal/question"
	"github.com/5minanswer/questionai/internal/usage"
)

type Generator interface {
	GenerateFromChapter(ctx context.Context, req generation.ChapterRequest) (generation.Response, error)
	GeneratorAvailable() bool
}

type UsageLedger interface {
	Today(ctx context.Context, userID string) ([]usage.SubjectUsage, error)
	Cap() int
}

type QuestionHistory interface {
	Recent(ctx context.Context, userID string, limit int) ([]question.Question, error)
}

type chapterReq struct {
	ClassLevel    int    `json:"class_level" validate:"required"`
	Subject       string `json:"subject" validate:"required,max=64"`
	Chapter       int    `json:"chapter" validate:"required"`
	QuestionCount int    `json:"question_count" validate:"required,min=1"`
	Difficulty    string `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
	Language      string `json:"language" validate:"omitempty,oneof=english hindi"`
}

// POST /generate-from-chapter
func GenerateFromChapterHandler(svc Generator, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req chapterReq
		if handleDecodeErr(w, log, decode(w, r, &req)) {
			return
		}
		resp, err := svc.GenerateFromChapter(r.Context(), generation.ChapterRequest{
			UserID:     authmw.SubjectFromContext(r.Context()),
			ClassLevel: req.ClassLevel,
			Subject:    req.Subject,
			Chapter:    req.Chapter,
			Count:      req.QuestionCount,
			Difficulty: req.Difficulty,
			Language:   req.Language,
		})
		if err != nil {
			writeError(w, log, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// GET /my-usage
func MyUsageHandler(ledger UsageLedger, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := ledger.Today(r.Context(), authmw.SubjectFromContext(r.Context()))
		if err != nil {
			writeError(w, log, err)
			return
		}
		total := 0
		for _, su := range list {
			total += su.Used
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"daily_limit_per_subject": ledger.Cap(),
			"total_used_today":        total,
			"subjects":                list,
		})
	}
}

// GET /question-history?limit=50
func QuestionHistoryHandler(questions QuestionHistory, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := parseIntDefault(r.URL.Query().Get("limit"), 50)
		if limit > 200 {
			limit = 200
		}
		list, err := questions.Recent(r.Context(), authmw.SubjectFromContext(r.Context()), limit)
		if err != nil {
			writeError(w, log, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"questions": list, "count": len(list)})
	}
}
