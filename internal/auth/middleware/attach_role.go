package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/5minanswer/questionai/internal/rbac"
	"github.com/5minanswer/questionai/internal/user"
)

// UserLookup resolves the authenticated subject to a stored account.
type UserLookup interface {
	GetByID(ctx context.Context, id string) (user.User, error)
}

// AttachUser runs after JWTMiddleware. The stored role is authoritative,
// so a demoted admin loses access before their token expires.
func AttachUser(users UserLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			u, err := users.GetByID(ctx, SubjectFromContext(ctx))
			switch {
			case errors.Is(err, user.ErrUserNotFound):
				unauthorized(w, "user not found")
				return
			case err != nil:
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(`{"error":"internal error"}` + "\n"))
				return
			}
			ctx = rbac.WithRole(ctx, u.Role)
			ctx = WithUser(ctx, u)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
