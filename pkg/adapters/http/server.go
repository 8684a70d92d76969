package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/aretw0/weaver"
	"github.com/aretw0/weaver/internal/logging"
	"github.com/aretw0/weaver/pkg/domain"
	"github.com/aretw0/weaver/pkg/ports"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the part of the weaver the introspection API needs.
// *weaver.Weaver satisfies it.
type Registry interface {
	Bindings() []domain.BindingInfo
	Binding(target domain.TargetID) (domain.BindingInfo, bool)
	Restore(ctx context.Context, target domain.TargetID) error
}

var _ Registry = (*weaver.Weaver)(nil)

// Server serves the introspection API.
type Server struct {
	Registry Registry
	Streams  *StreamManager
	Journal  ports.Journal

	gatherer prometheus.Gatherer
	logger   *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithGatherer exposes the gatherer's metrics on GET /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithStreams serves lifecycle events from sm on GET /events. Feed sm by
// passing sm.Hooks() to weaver.WithLifecycleHooks.
func WithStreams(sm *StreamManager) Option {
	return func(s *Server) {
		s.Streams = sm
	}
}

// WithJournal serves recent binding events on GET /journal.
func WithJournal(j ports.Journal) Option {
	return func(s *Server) {
		s.Journal = j
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewHandler creates the HTTP handler for a registry.
func NewHandler(reg Registry, opts ...Option) http.Handler {
	server := &Server{
		Registry: reg,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(server)
	}

	r := chi.NewRouter()
	r.Get("/health", server.GetHealth)
	r.Get("/info", server.GetInfo)
	r.Route("/bindings", func(r chi.Router) {
		r.Get("/", server.ListBindings)
		r.Get("/{owner}/{name}", server.GetBinding)
		r.Delete("/{owner}/{name}", server.RestoreBinding)
	})
	if server.Streams != nil {
		r.Get("/events", server.SubscribeEvents)
	}
	if server.Journal != nil {
		r.Get("/journal", server.ListJournal)
	}
	if server.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(server.gatherer, promhttp.HandlerOpts{}))
	}

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ListBindings handles GET /bindings.
func (s *Server) ListBindings(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.Registry.Bindings())
}

// GetBinding handles GET /bindings/{owner}/{name}.
func (s *Server) GetBinding(w http.ResponseWriter, r *http.Request) {
	target := targetFromPath(r)
	info, ok := s.Registry.Binding(target)
	if !ok {
		http.Error(w, fmt.Sprintf("%s: %v", target, domain.ErrNotAugmented), http.StatusNotFound)
		return
	}
	s.writeJSON(w, http.StatusOK, info)
}

// RestoreBinding handles DELETE /bindings/{owner}/{name}.
func (s *Server) RestoreBinding(w http.ResponseWriter, r *http.Request) {
	target := targetFromPath(r)
	err := s.Registry.Restore(r.Context(), target)
	switch {
	case err == nil:
		s.logger.Info("target restored over http", "target", target.String())
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, domain.ErrNotAugmented):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		s.logger.Error("restore failed", "target", target.String(), "error", err)
		http.Error(w, fmt.Sprintf("Restore error: %v", err), http.StatusInternalServerError)
	}
}

// ListJournal handles GET /journal. The optional "limit" query parameter
// keeps only the most recent events.
func (s *Server) ListJournal(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			http.Error(w, fmt.Sprintf("invalid limit %q", raw), http.StatusBadRequest)
			return
		}
		limit = n
	}

	events, err := s.Journal.List(r.Context(), limit)
	if err != nil {
		s.logger.Error("journal list failed", "error", err)
		http.Error(w, fmt.Sprintf("Journal error: %v", err), http.StatusInternalServerError)
		return
	}
	if events == nil {
		events = []domain.BindingEvent{}
	}
	s.writeJSON(w, http.StatusOK, events)
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"app":      "weaver-http",
		"version":  strings.TrimSpace(weaver.Version),
		"bindings": len(s.Registry.Bindings()),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "error", err)
	}
}

func targetFromPath(r *http.Request) domain.TargetID {
	return domain.TargetID{
		Owner: chi.URLParam(r, "owner"),
		Name:  chi.URLParam(r, "name"),
	}
}
