package http

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	authmw "github.com/5minanswer/questionai/internal/auth/middleware"
	"github.com/5minanswer/questionai/internal/catalog"
	"github.com/5minanswer/questionai/internal/logger"
	"github.com/5minanswer/questionai/internal/metrics"
	"github.com/5minanswer/questionai/internal/rbac"
)

type Deps struct {
	DB           *sql.DB
	Auth         *authmw.AuthService
	Users        UserStore
	Ledger       UsageLedger
	Generator    Generator
	Questions    QuestionHistory
	Quiz         QuizEngine
	Catalog      *catalog.Catalog
	Metrics      *metrics.Metrics
	Logger       *logger.Logger
	AdminEmail   string
	CORSOrigins  []string
	HistoryLimit int
	Version      string
	Timeout      time.Duration
}

func NewRouter(d Deps) http.Handler {
	if d.Logger == nil {
		d.Logger = logger.Nop()
	}
	if d.Timeout <= 0 {
		d.Timeout = 90 * time.Second
	}
	log := d.Logger.With("component", "http")

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, RequestLogger(log), middleware.Recoverer)
	r.Use(d.Metrics.Middleware)
	r.Use(middleware.Timeout(d.Timeout))

	origins := d.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "HEAD", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/", RootHandler(d.Version, d.Generator))
	r.Head("/", RootHandler(d.Version, d.Generator))
	r.Get("/healthz", HealthzHandler())
	r.Get("/readyz", ReadyzHandler(d.DB))
	r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())

	r.Post("/register", RegisterHandler(d.Users, d.AdminEmail, log))
	r.Post("/login", LoginHandler(d.Users, d.Auth, log))
	r.Get("/subjects", SubjectsHandler(d.Catalog))

	// Protected API (JWT → stored user and role in context → RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(authmw.JWTMiddleware(d.Auth))
		pr.Use(authmw.AttachUser(d.Users))

		pr.Get("/profile", ProfileHandler())
		pr.With(rbac.Require(rbac.PermChangePassword)).
			Post("/users/change-password", ChangePasswordHandler(d.Users, log))

		pr.With(rbac.Require(rbac.PermQuestionsGenerate)).
			Post("/generate-from-chapter", GenerateFromChapterHandler(d.Generator, log))
		pr.With(rbac.Require(rbac.PermQuestionsViewOwn)).
			Get("/question-history", QuestionHistoryHandler(d.Questions, log))
		pr.With(rbac.Require(rbac.PermUsageView)).
			Get("/my-usage", MyUsageHandler(d.Ledger, log))

		pr.With(rbac.Require(rbac.PermQuizSubmit)).
			Post("/submit-quiz", SubmitQuizHandler(d.Quiz, d.Metrics, log))
		pr.With(rbac.Require(rbac.PermQuizViewOwn)).
			Get("/performance-history", PerformanceHistoryHandler(d.Quiz, d.HistoryLimit, log))
		pr.With(rbac.Require(rbac.PermQuizViewOwn)).
			Get("/quiz-details/{quizID}", QuizDetailsHandler(d.Quiz, log))

		pr.With(rbac.Require(rbac.PermUsersList)).
			Get("/admin/users", ListUsersHandler(d.Users, log))
	})

	return r
}
