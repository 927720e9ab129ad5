package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	api "github.com/5minanswer/questionai/internal/api/http"
	auth "github.com/5minanswer/questionai/internal/auth/middleware"
	"github.com/5minanswer/questionai/internal/catalog"
	"github.com/5minanswer/questionai/internal/config"
	"github.com/5minanswer/questionai/internal/content"
	"github.com/5minanswer/questionai/internal/db"
	"github.com/5minanswer/questionai/internal/generation"
	"github.com/5minanswer/questionai/internal/logger"
	"github.com/5minanswer/questionai/internal/metrics"
	"github.com/5minanswer/questionai/internal/question"
	"github.com/5minanswer/questionai/internal/quiz"
	"github.com/5minanswer/questionai/internal/storage"
	"github.com/5minanswer/questionai/internal/usage"
	"github.com/5minanswer/questionai/internal/user"
)

var version = "dev"

func main() {
	cfg := config.FromEnv()

	log, err := logger.New(string(cfg.Mode), cfg.LogRedaction)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	driver, err := db.ParseDriver(cfg.DBDriver)
	if err != nil {
		log.Fatal("bad db driver", "error", err)
	}
	dbh, err := db.Open(ctx, driver, cfg.DBDSN)
	if err != nil {
		log.Fatal("db open failed", "error", err)
	}
	defer dbh.Close()

	cat := catalog.Default()
	if cfg.CatalogFile != "" {
		if cat, err = catalog.Load(cfg.CatalogFile); err != nil {
			log.Fatal("catalog load failed", "path", cfg.CatalogFile, "error", err)
		}
	}

	users := user.NewStore(dbh)
	if cfg.AdminEmail != "" {
		err := users.SetRole(ctx, cfg.AdminEmail, user.RoleAdmin)
		if err != nil && !errors.Is(err, user.ErrUserNotFound) {
			log.Warn("admin promotion failed", "error", err)
		}
	}

	ledger := usage.NewLedger(dbh, cfg.DailyQuestionCap, cfg.Location())
	questions := question.NewSQLStore(dbh)
	engine := quiz.NewEngine(dbh, questions)
	m := metrics.New()

	fetcher, closeFetcher := newFetcher(cfg, log)
	defer closeFetcher()

	chat := generation.NewChatClient(generation.ClientConfig{
		APIKey:  cfg.AIAPIKey,
		BaseURL: cfg.AIBaseURL,
		Model:   cfg.AIModel,
		Timeout: cfg.AITimeout,
	}, log)
	gen := generation.NewService(generation.Deps{
		DB:        dbh,
		Ledger:    ledger,
		Fetcher:   fetcher,
		Generator: chat,
		Questions: questions,
		Catalog:   cat,
		Metrics:   m,
		Logger:    log,
	})

	// --- Auth ---
	if cfg.Mode == config.ModeProd && cfg.SecretKey == "your-secret-key-change-in-production" {
		log.Warn("SECRET_KEY is the development default")
	}
	authSvc := auth.NewAuthService(cfg.SecretKey, cfg.TokenTTL)

	// --- Router ---
	h := api.NewRouter(api.Deps{
		DB:           dbh,
		Auth:         authSvc,
		Users:        users,
		Ledger:       ledger,
		Generator:    gen,
		Questions:    questions,
		Quiz:         engine,
		Catalog:      cat,
		Metrics:      m,
		Logger:       log,
		AdminEmail:   cfg.AdminEmail,
		CORSOrigins:  cfg.CORSOrigins,
		HistoryLimit: cfg.HistoryLimit,
		Version:      version,
		Timeout:      cfg.AITimeout + cfg.ContentTimeout,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("listening", "addr", cfg.HTTPAddr, "mode", cfg.Mode, "db", driver,
			"generator", chat.Available(), "model", chat.Model(), "cache", cfg.ContentCache)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", "error", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown failed", "error", err)
	}
	log.Info("stopped")
}

// newFetcher builds the chapter content fetcher, wrapped in the configured
// cache. The returned func releases cache connections.
func newFetcher(cfg config.Config, log *logger.Logger) (content.Fetcher, func()) {
	base := content.NewHTTPFetcher(cfg.ContentURLTemplate, cfg.ContentTimeout)
	switch cfg.ContentCache {
	case config.CacheRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		cache := content.NewRedisCache(rdb, cfg.ContentCacheTTL)
		return content.NewCachedFetcher(base, cache, log), func() { _ = rdb.Close() }
	case config.CacheFS:
		bs, err := storage.NewFSStore(cfg.BlobBasePath)
		if err != nil {
			log.Fatal("blob store", "path", cfg.BlobBasePath, "error", err)
		}
		return content.NewCachedFetcher(base, content.NewBlobCache(bs), log), func() {}
	default:
		return base, func() {}
	}
}
