// ABOUTME: HTTP JSON API over the CRM service
// ABOUTME: chi router with JWT sessions, request logging, Prometheus metrics and graceful shutdown
package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/harperreed/medcrm/crm"
)

type Options struct {
	Addr      string
	JWTSecret string
	TokenTTL  time.Duration
}

type Server struct {
	svc      *crm.Service
	logger   *zap.Logger
	tokens   *TokenIssuer
	registry *prometheus.Registry
	router   chi.Router
	addr     string
}

func NewServer(svc *crm.Service, opts Options, logger *zap.Logger) (*Server, error) {
	if opts.JWTSecret == "" {
		return nil, fmt.Errorf("a JWT secret is required to serve the API (set CRM_JWT_SECRET)")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		svc:      svc,
		logger:   logger,
		tokens:   NewTokenIssuer([]byte(opts.JWTSecret), opts.TokenTTL),
		registry: prometheus.NewRegistry(),
		addr:     opts.Addr,
	}
	s.router = s.routes()
	return s, nil
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	metrics := newHTTPMetrics(s.registry)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)
	r.Use(metrics.middleware)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Post("/login", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(s.authenticate)

			r.Get("/me", s.handleMe)
			r.Post("/password", s.handlePassword)
			r.Get("/view", s.handleView)
			r.Get("/search", s.handleSearch)
			r.Get("/stats", s.handleStats)
			r.Get("/graph.svg", s.handleGraph)
			r.Post("/reset", s.handleReset)

			s.recordRoutes(r)
			s.backupRoutes(r)
		})
	})
	return r
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting web server", zap.String("addr", s.addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("web server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info("shutting down web server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down web server: %w", err)
	}
	return nil
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.logger.Info("request",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
		)
	})
}
