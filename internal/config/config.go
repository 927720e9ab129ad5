package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Mode string

const (
	ModeDev  Mode = "dev"
	ModeProd Mode = "prod"
)

type CacheDriver string

const (
	CacheNone  CacheDriver = "none"
	CacheRedis CacheDriver = "redis"
	CacheFS    CacheDriver = "fs"
)

type Config struct {
	Mode         Mode
	HTTPAddr     string
	LogRedaction bool

	DBDriver string
	DBDSN    string

	SecretKey  string
	TokenTTL   time.Duration
	AdminEmail string

	CORSOrigins []string

	DailyQuestionCap int
	QuotaTimezone    string
	HistoryLimit     int

	// Generation collaborator (OpenAI-compatible chat completions).
	AIAPIKey  string
	AIBaseURL string
	AIModel   string
	AITimeout time.Duration

	// Content-fetch collaborator.
	ContentURLTemplate string
	ContentTimeout     time.Duration
	ContentCache       CacheDriver
	ContentCacheTTL    time.Duration
	RedisAddr          string
	RedisPassword      string
	RedisDB            int
	BlobBasePath       string // fs cache root

	CatalogFile string
}

const defaultContentURL = "https://5minanswer.com/wp-content/uploads/2025/10/Class-{class}{Subject}-Chapter-{chapter}.docx"

func FromEnv() Config {
	mode := Mode(strings.ToLower(os.Getenv("MODE")))
	if mode != ModeProd {
		mode = ModeDev
	}
	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		// hosting platforms hand us PORT
		addr = ":" + envOr("PORT", "10000")
	}
	return Config{
		Mode:         mode,
		HTTPAddr:     addr,
		LogRedaction: envBool("LOG_REDACTION_ENABLED", true),

		DBDriver: envOr("DB_DRIVER", "sqlite"),
		DBDSN:    envOr("DB_DSN", ""),

		SecretKey:  envOr("SECRET_KEY", "your-secret-key-change-in-production"),
		TokenTTL:   envDuration("TOKEN_TTL", 7*24*time.Hour),
		AdminEmail: strings.ToLower(strings.TrimSpace(os.Getenv("ADMIN_EMAIL"))),

		CORSOrigins: csvOr("CORS_ORIGINS", "*"),

		DailyQuestionCap: envInt("DAILY_QUESTION_CAP", 25),
		QuotaTimezone:    envOr("QUOTA_TIMEZONE", "Local"),
		HistoryLimit:     envInt("HISTORY_LIMIT", 20),

		AIAPIKey:  envOr("GEMINI_API_KEY", os.Getenv("AI_API_KEY")),
		AIBaseURL: envOr("AI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta/openai/"),
		AIModel:   envOr("AI_MODEL", "gemini-2.0-flash"),
		AITimeout: envDuration("AI_TIMEOUT", 60*time.Second),

		ContentURLTemplate: envOr("CONTENT_URL_TEMPLATE", defaultContentURL),
		ContentTimeout:     envDuration("CONTENT_TIMEOUT", 30*time.Second),
		ContentCache:       CacheDriver(envOr("CONTENT_CACHE", string(CacheNone))),
		ContentCacheTTL:    envDuration("CONTENT_CACHE_TTL", 24*time.Hour),
		RedisAddr:          envOr("REDIS_ADDR", "localhost:6379"),
		RedisPassword:      os.Getenv("REDIS_PASSWORD"),
		RedisDB:            envInt("REDIS_DB", 0),
		BlobBasePath:       envOr("BLOB_BASE_PATH", "./data"),

		CatalogFile: os.Getenv("CATALOG_FILE"),
	}
}

// Location resolves QuotaTimezone, falling back to the server's local zone.
func (c Config) Location() *time.Location {
	if c.QuotaTimezone == "" || strings.EqualFold(c.QuotaTimezone, "local") {
		return time.Local
	}
	loc, err := time.LoadLocation(c.QuotaTimezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envBool(k string, def bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return def
	}
}

func envInt(k string, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(k)))
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func envDuration(k string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(os.Getenv(k)))
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
