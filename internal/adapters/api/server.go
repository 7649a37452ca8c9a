// Package api exposes investigations over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"falcon/internal/core/domain"
	"falcon/internal/core/ports"
	"falcon/internal/platform/logx"
	"falcon/internal/platform/resilience"
)

// Runner executes one investigation. *usecases.Investigator satisfies it.
type Runner interface {
	Run(ctx context.Context, subject domain.Subject, set ports.ProbeSet) (*domain.RunReport, error)
}

// Options wires the server to the engine.
type Options struct {
	Runner Runner
	// Sets holds one prepared probe set per category.
	Sets map[domain.Category]ports.ProbeSet
	// Probes is the catalog metadata served by GET /v1/probes.
	Probes []ports.ProbeMetadata
	// Breakers is optional; its snapshot is included in GET /v1/probes.
	Breakers *resilience.Breakers
	// Gatherer backs GET /metrics. Nil uses the default gatherer.
	Gatherer prometheus.Gatherer
	// RunTimeout bounds each POST /v1/runs request. Zero means no bound
	// beyond the client connection.
	RunTimeout time.Duration
	Logger     logx.Logger
}

// Server wires HTTP handlers to the investigator.
type Server struct {
	router chi.Router
	opts   Options
	logger logx.Logger
}

// NewServer constructs a Server with middleware and routes.
func NewServer(opts Options) (*Server, error) {
	if opts.Runner == nil {
		return nil, domain.NewConfigurationError("api.runner", "runner cannot be nil")
	}
	if opts.Logger == nil {
		opts.Logger = logx.NewNop()
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}

	s := &Server{
		opts:   opts,
		logger: opts.Logger.With("component", "api"),
	}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(s.logger))
	r.Use(recoverMiddleware(s.logger))

	r.Get("/healthz", s.healthz)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))

	r.Route("/v1", func(r chi.Router) {
		r.Get("/probes", s.listProbes)
		r.Post("/runs", s.createRun)
	})

	s.router = r
	return s, nil
}

// Handler returns the Router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("api server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("api server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("api server shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("api server shutdown: %w", err)
		}
		return nil
	}
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type probesResponse struct {
	Probes   []ports.ProbeMetadata                     `json:"probes"`
	Breakers map[string]resilience.CircuitBreakerStats `json:"breakers,omitempty"`
}

func (s *Server) listProbes(w http.ResponseWriter, r *http.Request) {
	probes := s.opts.Probes
	if raw := r.URL.Query().Get("category"); raw != "" {
		category, err := domain.ParseCategory(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		filtered := make([]ports.ProbeMetadata, 0, len(probes))
		for _, meta := range probes {
			if meta.Supports(category.Kind()) {
				filtered = append(filtered, meta)
			}
		}
		probes = filtered
	}
	if probes == nil {
		probes = []ports.ProbeMetadata{}
	}

	resp := probesResponse{Probes: probes}
	if s.opts.Breakers != nil {
		resp.Breakers = s.opts.Breakers.Snapshot()
	}
	writeJSON(w, http.StatusOK, resp)
}

type runRequest struct {
	Subject  string `json:"subject"`
	Kind     string `json:"kind"`
	Category string `json:"category"`
}

func (s *Server) createRun(w http.ResponseWriter, r *http.Request) {
	var req runRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	subject, category, err := resolveRequest(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	set, ok := s.opts.Sets[category]
	if !ok {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("no probes available for category %s", category))
		return
	}

	ctx := r.Context()
	if s.opts.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.RunTimeout)
		defer cancel()
	}

	report, err := s.opts.Runner.Run(ctx, subject, set)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrConfiguration) {
			status = http.StatusBadRequest
		}
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// resolveRequest construye sujeto y categoría. Sin kind se infiere del valor;
// sin category se usa la del kind.
func resolveRequest(req runRequest) (domain.Subject, domain.Category, error) {
	var (
		subject domain.Subject
		err     error
	)
	if kind := strings.TrimSpace(req.Kind); kind != "" {
		subject, err = domain.NewSubject(req.Subject, domain.SubjectKind(strings.ToLower(kind)))
	} else {
		subject, err = domain.ParseSubject(req.Subject)
	}
	if err != nil {
		return domain.Subject{}, "", err
	}

	if strings.TrimSpace(req.Category) == "" {
		return subject, domain.CategoryFor(subject.Kind), nil
	}
	category, err := domain.ParseCategory(strings.ToLower(strings.TrimSpace(req.Category)))
	if err != nil {
		return domain.Subject{}, "", err
	}
	return subject, category, nil
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
