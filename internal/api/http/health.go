package http

import (
	"context"
	"database/sql"
	"net/http"
	"time"
)

// GET|HEAD /
func RootHandler(version string, gen Generator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := "not_configured"
		if gen != nil && gen.GeneratorAvailable() {
			status = "configured"
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"service":   "questionai",
			"version":   version,
			"status":    "ok",
			"generator": status,
		})
	}
}

func HealthzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }
}

// ReadyzHandler pings the database.
func ReadyzHandler(d *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := d.PingContext(ctx); err != nil {
			writeMessage(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"database": "connected"})
	}
}
