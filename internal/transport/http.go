package transport

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/ganot/sharedlist/internal/domain/list"
	"github.com/ganot/sharedlist/internal/rpc"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// RPCHandler handles store method dispatch.
type RPCHandler interface {
	Handle(ctx context.Context, l *list.List, actor, method string, params json.RawMessage) (any, error)
	CreateList(ctx context.Context, params json.RawMessage) (*list.List, error)
}

// Server wires HTTP handlers.
type Server struct {
	handler RPCHandler
	logger  *slog.Logger
}

// NewServer creates an HTTP server router with middleware.
func NewServer(handler RPCHandler, resolver ListResolver, logger *slog.Logger) *chi.Mux {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(ParticipantMiddleware)

	srv := &Server{handler: handler, logger: logger}

	r.Get("/health", srv.handleHealth)
	r.Post("/lists", srv.handleCreateList)
	r.Route("/lists/{token}", func(r chi.Router) {
		r.Use(ListMiddleware(resolver))
		r.Post("/rpc", srv.handleRPC)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleCreateList(w http.ResponseWriter, r *http.Request) {
	req, err := ParseRequest(r.Body)
	if err != nil {
		writeParseError(w, err)
		return
	}
	if req.Method != rpc.MethodCreateList {
		WriteError(w, req.ID, ErrMethodNotFound, "method not found", nil)
		return
	}

	l, err := s.handler.CreateList(r.Context(), req.Params)
	if err != nil {
		s.writeHandlerError(w, req, err)
		return
	}
	WriteResult(w, req.ID, l)
}

func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	req, err := ParseRequest(r.Body)
	if err != nil {
		writeParseError(w, err)
		return
	}

	l, ok := ListFromContext(r.Context())
	if !ok {
		WriteErrorStatus(w, http.StatusNotFound, req.ID, ErrApplication, "list not found", nil)
		return
	}
	actor, _ := ParticipantFromContext(r.Context())

	result, err := s.handler.Handle(r.Context(), l, actor, req.Method, req.Params)
	if err != nil {
		s.writeHandlerError(w, req, err)
		return
	}

	WriteResult(w, req.ID, result)
}

func (s *Server) writeHandlerError(w http.ResponseWriter, req Request, err error) {
	var apiErr *rpc.APIError
	switch {
	case errors.As(err, &apiErr):
		WriteError(w, req.ID, ErrApplication, apiErr.Message, apiErr)
	case errors.Is(err, rpc.ErrMethodNotFound):
		WriteError(w, req.ID, ErrMethodNotFound, err.Error(), nil)
	case errors.Is(err, rpc.ErrInvalidParams):
		WriteError(w, req.ID, ErrInvalidParams, err.Error(), nil)
	default:
		s.logger.Error("rpc failed", "method", req.Method, "error", err)
		WriteError(w, req.ID, ErrInternal, "internal error", nil)
	}
}
