package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/Tuning-Luna/hairdressing-member-manger-system/internal/http/respond"
)

// TokenVerifier validates a bearer token and returns its subject.
type TokenVerifier interface {
	Verify(raw string) (string, error)
}

type subjectKey struct{}

// SubjectFromContext returns the authenticated subject, or "".
func SubjectFromContext(ctx context.Context) string {
	if s, ok := ctx.Value(subjectKey{}).(string); ok {
		return s
	}
	return ""
}

// RequireBearer rejects requests without a valid "Authorization: Bearer" token.
func RequireBearer(tokens TokenVerifier, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			respond.Error(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		subject, err := tokens.Verify(strings.TrimSpace(raw))
		if err != nil {
			respond.Error(w, http.StatusUnauthorized, "invalid token")
			return
		}
		ctx := context.WithValue(r.Context(), subjectKey{}, subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
