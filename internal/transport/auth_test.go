package transport

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func branchEcho(t *testing.T) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		branchID, _ := BranchFromContext(r.Context())
		_, _ = w.Write([]byte(branchID))
	})
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	handler := AuthMiddleware(&staticResolver{branch: "branch-9"})(branchEcho(t))

	req := httptest.NewRequest(http.MethodPost, "/rpc", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "branch-9", rec.Body.String())
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	handler := AuthMiddleware(&staticResolver{branch: "branch-9"})(branchEcho(t))

	req := httptest.NewRequest(http.MethodPost, "/rpc", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddleware_EmptyBranch(t *testing.T) {
	handler := AuthMiddleware(&staticResolver{branch: ""})(branchEcho(t))

	req := httptest.NewRequest(http.MethodPost, "/rpc", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDefaultBranchMiddleware(t *testing.T) {
	handler := DefaultBranchMiddleware("default")(branchEcho(t))

	req := httptest.NewRequest(http.MethodPost, "/rpc", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "default", rec.Body.String())
}
