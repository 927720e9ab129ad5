package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	authmw "github.com/5minanswer/questionai/internal/auth/middleware"
	"github.com/5minanswer/questionai/internal/logger"
	"github.com/5minanswer/questionai/internal/metrics"
	"github.com/5minanswer/questionai/internal/quiz"
)

type QuizEngine interface {
	Submit(ctx context.Context, sub quiz.Submission) (quiz.Detail, error)
	ListAttempts(ctx context.Context, userID string, limit int) ([]quiz.Attempt, error)
	GetAttemptDetail(ctx context.Context, userID, quizID string) (quiz.Detail, error)
}

type submitQuizReq struct {
	ClassLevel int                     `json:"class_level" validate:"gte=0"`
	Subject    string                  `json:"subject" validate:"required,max=64"`
	Chapter    int                     `json:"chapter" validate:"gte=0"`
	Questions  []quiz.OriginalQuestion `json:"questions" validate:"max=200"`
	Answers    []quiz.Answer           `json:"answers" validate:"max=200"`
	TimeTaken  int                     `json:"time_taken" validate:"gte=0"`
}

// POST /submit-quiz
func SubmitQuizHandler(engine QuizEngine, m *metrics.Metrics, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req submitQuizReq
		if handleDecodeErr(w, log, decode(w, r, &req)) {
			return
		}
		d, err := engine.Submit(r.Context(), quiz.Submission{
			UserID:     authmw.SubjectFromContext(r.Context()),
			ClassLevel: req.ClassLevel,
			Subject:    req.Subject,
			Chapter:    req.Chapter,
			Questions:  req.Questions,
			Answers:    req.Answers,
			TimeTaken:  req.TimeTaken,
		})
		if err != nil {
			m.QuizSubmitted("error")
			writeError(w, log, err)
			return
		}
		m.QuizSubmitted("ok")
		writeJSON(w, http.StatusOK, map[string]any{
			"message": "Quiz submitted successfully",
			"result":  d,
		})
	}
}

// GET /performance-history?limit=20
func PerformanceHistoryHandler(engine QuizEngine, defaultLimit int, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := parseIntDefault(r.URL.Query().Get("limit"), defaultLimit)
		if limit > 100 {
			limit = 100
		}
		list, err := engine.ListAttempts(r.Context(), authmw.SubjectFromContext(r.Context()), limit)
		if err != nil {
			writeError(w, log, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"attempts": list,
			"stats":    quiz.Summarize(list),
		})
	}
}

// GET /quiz-details/{quizID}
func QuizDetailsHandler(engine QuizEngine, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, err := engine.GetAttemptDetail(r.Context(), authmw.SubjectFromContext(r.Context()), chi.URLParam(r, "quizID"))
		if err != nil {
			writeError(w, log, err)
			return
		}
		writeJSON(w, http.StatusOK, d)
	}
}
