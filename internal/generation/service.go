package generation

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/5minanswer/questionai/internal/catalog"
	"github.com/5minanswer/questionai/internal/content"
	"github.com/5minanswer/questionai/internal/db"
	"github.com/5minanswer/questionai/internal/eventlog"
	"github.com/5minanswer/questionai/internal/logger"
	"github.com/5minanswer/questionai/internal/metrics"
	"github.com/5minanswer/questionai/internal/question"
	"github.com/5minanswer/questionai/internal/usage"
)

const (
	SourceAI       = "ai"
	SourceFallback = "fallback"

	ContentCMS  = "cms"
	ContentSeed = "seed"
)

// QuotaError means the daily ledger refused the request.
type QuotaError struct {
	Message   string
	Remaining int
}

func (e *QuotaError) Error() string { return e.Message }

type Ledger interface {
	CheckAndConsume(ctx context.Context, userID, subject string, requested int) (usage.Decision, error)
}

type QuestionSaver interface {
	SaveBatch(ctx context.Context, ex db.Execer, qs []question.Question) ([]question.Question, error)
}

type ChapterRequest struct {
	UserID     string
	ClassLevel int
	Subject    string
	Chapter    int
	Count      int
	Difficulty string
	Language   string
}

type Response struct {
	Questions      []question.Question `json:"questions"`
	Source         string              `json:"source"`
	FallbackReason string              `json:"fallback_reason,omitempty"`
	ContentSource  string              `json:"content_source"`
	Remaining      int                 `json:"remaining_quota"`
	Message        string              `json:"message"`
}

type Service struct {
	db        *sql.DB
	ledger    Ledger
	fetcher   content.Fetcher
	gen       Generator
	questions QuestionSaver
	catalog   *catalog.Catalog
	metrics   *metrics.Metrics
	log       *logger.Logger
}

type Deps struct {
	DB        *sql.DB
	Ledger    Ledger
	Fetcher   content.Fetcher
	Generator Generator
	Questions QuestionSaver
	Catalog   *catalog.Catalog // nil: no class/subject/chapter checks
	Metrics   *metrics.Metrics
	Logger    *logger.Logger
}

func NewService(d Deps) *Service {
	if d.Logger == nil {
		d.Logger = logger.Nop()
	}
	return &Service{
		db: d.DB, ledger: d.Ledger, fetcher: d.Fetcher, gen: d.Generator,
		questions: d.Questions, catalog: d.Catalog, metrics: d.Metrics,
		log: d.Logger.With("component", "generation"),
	}
}

func (s *Service) GeneratorAvailable() bool { return s.gen != nil && s.gen.Available() }

// GenerateFromChapter consumes quota, gathers content, asks the generator
// and stores exactly req.Count questions. Quota is spent on attempt: a
// failed generator call still counts, and is answered with placeholders.
func (s *Service) GenerateFromChapter(ctx context.Context, req ChapterRequest) (Response, error) {
	req.Subject = strings.ToLower(strings.TrimSpace(req.Subject))
	if req.Difficulty == "" {
		req.Difficulty = "medium"
	}
	if req.Language == "" {
		req.Language = "english"
	}
	if s.catalog != nil {
		if err := s.catalog.Validate(req.ClassLevel, req.Subject, req.Chapter); err != nil {
			return Response{}, err
		}
	}

	// 1) quota
	dec, err := s.ledger.CheckAndConsume(ctx, req.UserID, req.Subject, req.Count)
	if err != nil {
		return Response{}, err
	}
	if !dec.Allowed {
		s.metrics.QuotaRejected(req.Subject)
		return Response{}, &QuotaError{Message: dec.Message, Remaining: dec.Remaining}
	}

	greq := Request{
		ClassLevel: req.ClassLevel, Subject: req.Subject, Chapter: req.Chapter,
		Count: req.Count, Difficulty: req.Difficulty, Language: req.Language,
	}

	// 2) content, or a seed prompt when the CMS has nothing
	contentSource := ContentCMS
	greq.Content, err = s.fetchContent(ctx, req)
	if err != nil || strings.TrimSpace(greq.Content) == "" {
		if err != nil {
			s.log.Warn("content fetch failed, using seed", "subject", req.Subject, "chapter", req.Chapter, "error", err)
		}
		greq.Content = FallbackSeed(greq)
		contentSource = ContentSeed
	}

	// 3) generate; any failure becomes placeholders
	qs, source, reason := s.generate(ctx, greq)

	// 4) persist
	batch := make([]question.Question, len(qs))
	for i, q := range qs {
		batch[i] = question.Question{
			UserID: req.UserID, ClassLevel: req.ClassLevel, Subject: req.Subject, Chapter: req.Chapter,
			Text: q.Question, Options: q.Options, CorrectAnswer: q.CorrectAnswer,
			Difficulty: req.Difficulty, Language: req.Language,
		}
	}
	var saved []question.Question
	err = db.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		var err error
		saved, err = s.questions.SaveBatch(ctx, tx, batch)
		if err != nil {
			return err
		}
		return eventlog.Append(ctx, tx, eventlog.TypeQuestionsGenerated, req.UserID, map[string]any{
			"subject":     req.Subject,
			"class_level": req.ClassLevel,
			"chapter":     req.Chapter,
			"count":       len(saved),
			"source":      source,
		})
	})
	if err != nil {
		return Response{}, fmt.Errorf("generation: persist: %w", err)
	}
	s.metrics.Generated(req.Subject, source, len(saved))

	// 5) respond
	return Response{
		Questions:      saved,
		Source:         source,
		FallbackReason: reason,
		ContentSource:  contentSource,
		Remaining:      dec.Remaining,
		Message:        fmt.Sprintf("Generated %d questions for %s chapter %d", len(saved), req.Subject, req.Chapter),
	}, nil
}

func (s *Service) fetchContent(ctx context.Context, req ChapterRequest) (string, error) {
	if s.fetcher == nil {
		return "", content.ErrContentUnavailable
	}
	return s.fetcher.Fetch(ctx, content.ChapterRef{ClassLevel: req.ClassLevel, Subject: req.Subject, Chapter: req.Chapter})
}

func (s *Service) generate(ctx context.Context, req Request) ([]Question, string, string) {
	var res Result
	if s.gen == nil {
		res = Failure(ReasonUnavailable)
	} else {
		res = s.gen.Generate(ctx, req)
	}
	if !res.OK() {
		reason := res.Reason
		if reason == "" {
			reason = "generator returned no questions"
		}
		s.log.Warn("using placeholder questions", "subject", req.Subject, "reason", reason)
		return Placeholders(req.Subject, 1, req.Count), SourceFallback, reason
	}
	qs := res.Questions
	if len(qs) > req.Count {
		qs = qs[:req.Count]
	}
	if short := req.Count - len(qs); short > 0 {
		s.log.Info("padding generator output", "subject", req.Subject, "missing", short)
		qs = append(qs, Placeholders(req.Subject, len(qs)+1, short)...)
	}
	return qs, SourceAI, ""
}
