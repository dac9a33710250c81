package guard

import (
	"context"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/gophaccounts/internal/common"
)

type ctxKey string

const (
	tokenKey   ctxKey = "accessToken"
	accountKey ctxKey = "account"
)

// BearerMiddleware copies the token of an "Authorization: Bearer <token>"
// header into the request context. A missing or malformed header leaves the
// context untouched; rejecting the request is up to the guard.
func BearerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token, ok := ParseBearer(r.Header.Get(common.AuthorizationHeaderName)); ok {
			r = r.WithContext(WithToken(r.Context(), token))
		}
		next.ServeHTTP(w, r)
	})
}

// ParseBearer extracts the token from an Authorization header value. The
// scheme is matched case-insensitively.
func ParseBearer(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], common.BearerScheme) {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}
	return token, true
}

func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey, token)
}

func TokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenKey).(string)
	return token, ok && token != ""
}
