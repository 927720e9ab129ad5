package http

import (
	"net/http"

	"github.com/5minanswer/questionai/internal/catalog"
)

// GET /subjects
func SubjectsHandler(cat *catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, cat)
	}
}
