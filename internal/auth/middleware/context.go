package auth

import (
	"context"

	"github.com/5minanswer/questionai/internal/user"
)

type ctxKey string

const (
	ctxKeySub  ctxKey = "sub"
	ctxKeyUser ctxKey = "user"
)

func WithSubject(ctx context.Context, sub string) context.Context {
	return context.WithValue(ctx, ctxKeySub, sub)
}

func SubjectFromContext(ctx context.Context) string {
	if v := ctx.Value(ctxKeySub); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func WithUser(ctx context.Context, u user.User) context.Context {
	return context.WithValue(ctx, ctxKeyUser, u)
}

func UserFromContext(ctx context.Context) (user.User, bool) {
	u, ok := ctx.Value(ctxKeyUser).(user.User)
	return u, ok
}
