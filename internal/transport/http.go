package transport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RPCHandler handles JSON-RPC method dispatch for a branch.
type RPCHandler interface {
	Handle(ctx context.Context, branchID, method string, params json.RawMessage) (any, error)
}

// Server wires HTTP handlers.
type Server struct {
	handler RPCHandler
}

// NewServer creates an HTTP router with middleware.
func NewServer(handler RPCHandler, authMiddleware func(http.Handler) http.Handler) *chi.Mux {
	r := chi.NewRouter()

	if authMiddleware != nil {
		r.Use(authMiddleware)
	}

	srv := &Server{handler: handler}

	r.Post("/rpc", srv.handleRPC)
	r.Get("/health", srv.handleHealth)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	req, err := decodeRequest(r.Body)
	if err != nil {
		if errors.Is(err, errMalformedRequest) {
			writeError(w, nil, codeInvalidRequest, "invalid request", nil)
		} else {
			writeError(w, nil, codeParse, "parse error", nil)
		}
		return
	}

	branchID, ok := BranchFromContext(r.Context())
	if !ok || branchID == "" {
		http.Error(w, "missing branch", http.StatusUnauthorized)
		return
	}

	result, err := s.handler.Handle(r.Context(), branchID, req.Method, req.Params)
	if err != nil {
		s.writeHandleError(w, req.ID, err)
		return
	}

	writeResult(w, req.ID, result)
}

func (s *Server) writeHandleError(w http.ResponseWriter, id any, err error) {
	switch {
	case errors.Is(err, ErrUnauthorized):
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	case errors.Is(err, ErrUnknownMethod):
		writeError(w, id, codeMethodNotFound, err.Error(), nil)
	case errors.Is(err, ErrBadParams):
		writeError(w, id, codeInvalidParams, err.Error(), nil)
	default:
		if msg, data := mapDomainError(err); data != nil {
			writeError(w, id, codeDomain, msg, data)
			return
		}
		writeError(w, id, codeInternal, err.Error(), nil)
	}
}
