package transport

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// ErrUnauthorized indicates invalid or missing credentials.
var ErrUnauthorized = errors.New("unauthorized")

type branchKey struct{}

// BranchResolver resolves a branch ID from a bearer token.
type BranchResolver interface {
	ResolveBranch(ctx context.Context, token string) (string, error)
}

// BranchFromContext returns the branch ID from context, if present.
func BranchFromContext(ctx context.Context) (string, bool) {
	branchID, ok := ctx.Value(branchKey{}).(string)
	return branchID, ok
}

// WithBranch returns a context carrying the branch ID. Used by the
// no-auth path and by tests.
func WithBranch(ctx context.Context, branchID string) context.Context {
	return context.WithValue(ctx, branchKey{}, branchID)
}

// AuthMiddleware enforces bearer token authentication and stores the
// resolved branch in the request context.
func AuthMiddleware(resolver BranchResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			token := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
			if token == "" {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}

			branchID, err := resolver.ResolveBranch(r.Context(), token)
			if err != nil || branchID == "" {
				http.Error(w, "invalid bearer token", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithBranch(r.Context(), branchID)))
		})
	}
}

// DefaultBranchMiddleware injects a fixed branch when auth is disabled.
func DefaultBranchMiddleware(branchID string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(WithBranch(r.Context(), branchID)))
		})
	}
}
