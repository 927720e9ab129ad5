package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/5minanswer/questionai/internal/catalog"
	"github.com/5minanswer/questionai/internal/generation"
	"github.com/5minanswer/questionai/internal/logger"
	"github.com/5minanswer/questionai/internal/quiz"
	"github.com/5minanswer/questionai/internal/usage"
	"github.com/5minanswer/questionai/internal/user"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report json names, not Go field names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type errorBody struct {
	Error     string `json:"error"`
	Remaining *int   `json:"remaining,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// writeError maps domain errors to statuses. Anything unrecognised is
// logged and answered with a generic 500.
func writeError(w http.ResponseWriter, log *logger.Logger, err error) {
	var qe *generation.QuotaError
	var ve validator.ValidationErrors
	switch {
	case errors.As(err, &qe):
		rem := qe.Remaining
		writeJSON(w, http.StatusTooManyRequests, errorBody{Error: qe.Message, Remaining: &rem})
	case errors.As(err, &ve):
		writeMessage(w, http.StatusUnprocessableEntity, describeValidation(ve))
	case errors.Is(err, usage.ErrInvalidCount),
		errors.Is(err, catalog.ErrUnknownSubject),
		errors.Is(err, catalog.ErrNotOffered):
		writeMessage(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, user.ErrEmailTaken):
		writeMessage(w, http.StatusConflict, err.Error())
	case errors.Is(err, user.ErrInvalidCredentials):
		writeMessage(w, http.StatusUnauthorized, "incorrect email or password")
	case errors.Is(err, user.ErrUserNotFound), errors.Is(err, quiz.ErrAttemptNotFound):
		writeMessage(w, http.StatusNotFound, err.Error())
	case errors.Is(err, quiz.ErrPersistence):
		log.Error("quiz persistence failed", "error", err)
		writeMessage(w, http.StatusInternalServerError, quiz.ErrPersistence.Error())
	default:
		log.Error("request failed", "error", err)
		writeMessage(w, http.StatusInternalServerError, "internal error")
	}
}

// decode reads a JSON body into dst and validates its struct tags.
func decode(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := dec.Decode(dst); err != nil {
		return errBadJSON
	}
	return validate.Struct(dst)
}

var errBadJSON = errors.New("bad json")

// handleDecodeErr answers a decode failure; returns false when err is nil.
func handleDecodeErr(w http.ResponseWriter, log *logger.Logger, err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, errBadJSON) {
		writeMessage(w, http.StatusBadRequest, "bad json")
		return true
	}
	writeError(w, log, err)
	return true
}

func describeValidation(ve validator.ValidationErrors) string {
	parts := make([]string, 0, len(ve))
	for _, fe := range ve {
		field := fe.Field()
		switch fe.Tag() {
		case "required":
			parts = append(parts, field+" is required")
		case "email":
			parts = append(parts, field+" must be a valid email")
		case "min", "gte":
			parts = append(parts, fmt.Sprintf("%s must be at least %s", field, fe.Param()))
		case "max", "lte":
			parts = append(parts, fmt.Sprintf("%s must be at most %s", field, fe.Param()))
		case "oneof":
			parts = append(parts, fmt.Sprintf("%s must be one of: %s", field, fe.Param()))
		default:
			parts = append(parts, field+" is invalid")
		}
	}
	return strings.Join(parts, "; ")
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
