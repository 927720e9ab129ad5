package http

import (
	"context"
	"errors"
	"net/http"

	authmw "github.com/5minanswer/questionai/internal/auth/middleware"
	"github.com/5minanswer/questionai/internal/logger"
	"github.com/5minanswer/questionai/internal/user"
)

type UserStore interface {
	Create(ctx context.Context, email, password, role string) (user.User, error)
	Authenticate(ctx context.Context, email, password string) (user.User, error)
	GetByID(ctx context.Context, id string) (user.User, error)
	ChangePassword(ctx context.Context, id, oldPassword, newPassword string) error
	List(ctx context.Context, limit, offset int) ([]user.User, error)
}

type credentialsReq struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type tokenResp struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresIn   int64     `json:"expires_in"`
	User        user.User `json:"user"`
}

// POST /register
func RegisterHandler(users UserStore, adminEmail string, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req credentialsReq
		if handleDecodeErr(w, log, decode(w, r, &req)) {
			return
		}
		role := user.RoleStudent
		if adminEmail != "" && user.NormalizeEmail(req.Email) == adminEmail {
			role = user.RoleAdmin
		}
		u, err := users.Create(r.Context(), req.Email, req.Password, role)
		if err != nil {
			writeError(w, log, err)
			return
		}
		log.Info("user registered", "user_id", u.ID, "role", u.Role)
		writeJSON(w, http.StatusCreated, map[string]any{"message": "User registered successfully", "user": u})
	}
}

// POST /login
func LoginHandler(users UserStore, a *authmw.AuthService, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email    string `json:"email" validate:"required"`
			Password string `json:"password" validate:"required"`
		}
		if handleDecodeErr(w, log, decode(w, r, &req)) {
			return
		}
		u, err := users.Authenticate(r.Context(), req.Email, req.Password)
		if err != nil {
			writeError(w, log, err)
			return
		}
		tok, err := a.IssueJWT(u.ID, u.Role)
		if err != nil {
			writeError(w, log, err)
			return
		}
		writeJSON(w, http.StatusOK, tokenResp{
			AccessToken: tok, TokenType: "bearer", ExpiresIn: int64(a.TTL().Seconds()), User: u,
		})
	}
}

// GET /profile
func ProfileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := authmw.UserFromContext(r.Context())
		if !ok {
			writeMessage(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		writeJSON(w, http.StatusOK, u)
	}
}

type changePasswordReq struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6,max=72,nefield=OldPassword"`
}

// POST /users/change-password
func ChangePasswordHandler(users UserStore, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := authmw.SubjectFromContext(r.Context())
		var req changePasswordReq
		if handleDecodeErr(w, log, decode(w, r, &req)) {
			return
		}
		err := users.ChangePassword(r.Context(), userID, req.OldPassword, req.NewPassword)
		switch {
		case err == nil:
			w.WriteHeader(http.StatusNoContent)
		case errors.Is(err, user.ErrInvalidCredentials):
			writeMessage(w, http.StatusForbidden, "incorrect old password")
		default:
			writeError(w, log, err)
		}
	}
}

// GET /admin/users?limit=50&offset=0
func ListUsersHandler(users UserStore, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := parseIntDefault(r.URL.Query().Get("limit"), 50)
		offset := parseIntDefault(r.URL.Query().Get("offset"), 0)
		list, err := users.List(r.Context(), limit, offset)
		if err != nil {
			writeError(w, log, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"users": list, "limit": limit, "offset": offset})
	}
}
