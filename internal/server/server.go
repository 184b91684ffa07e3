// Package server exposes the query runner over HTTP for the web frontend.
package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/KaramelBytes/pandacode-cli/internal/history"
	"github.com/KaramelBytes/pandacode-cli/internal/runner"
)

const (
	defaultMaxUpload      = 10 << 20
	defaultRequestTimeout = 120 * time.Second
	shutdownGrace         = 10 * time.Second
)

// Options configures the HTTP backend.
type Options struct {
	Runner    *runner.Runner
	History   *history.Store
	ChartsDir string
	// UploadDir holds uploaded datasets while a request runs; empty means os.TempDir().
	UploadDir       string
	MaxUploadBytes  int64
	RequestTimeout  time.Duration
	RateLimitPerMin int
	AllowedOrigins  []string
	Logger          *slog.Logger
}

// Server wires the runner, history and metrics into HTTP handlers.
type Server struct {
	opt      Options
	log      *slog.Logger
	metrics  *metrics
	registry *prometheus.Registry
	started  time.Time
}

// New validates opt and applies defaults.
func New(opt Options) (*Server, error) {
	if opt.Runner == nil {
		return nil, errors.New("runner is required")
	}
	if opt.History == nil {
		return nil, errors.New("history store is required")
	}
	if opt.ChartsDir == "" {
		return nil, errors.New("charts directory is required")
	}
	if opt.UploadDir == "" {
		opt.UploadDir = os.TempDir()
	}
	if opt.MaxUploadBytes <= 0 {
		opt.MaxUploadBytes = defaultMaxUpload
	}
	if opt.RequestTimeout <= 0 {
		opt.RequestTimeout = defaultRequestTimeout
	}
	if len(opt.AllowedOrigins) == 0 {
		opt.AllowedOrigins = []string{"*"}
	}
	if opt.Logger == nil {
		opt.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	reg := prometheus.NewRegistry()
	return &Server{
		opt:      opt,
		log:      opt.Logger,
		metrics:  newMetrics(reg),
		registry: reg,
		started:  time.Now(),
	}, nil
}

// Routes constructs the chi router containing all endpoints.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.log))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.opt.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         int((10 * time.Minute).Seconds()),
	}))

	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	r.Handle("/charts/*", http.StripPrefix("/charts/", http.FileServer(http.Dir(s.opt.ChartsDir))))

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(s.opt.RequestTimeout))
		r.Get("/health", s.handleHealth)
		r.Get("/history", s.handleHistory)
		r.Post("/clear_history", s.handleClearHistory)
		r.Get("/latest_chart", s.handleLatestChart)
		r.Get("/supported_formats", s.handleSupportedFormats)
		if s.opt.RateLimitPerMin > 0 {
			r.With(httprate.LimitByIP(s.opt.RateLimitPerMin, time.Minute)).Post("/generate", s.handleGenerate)
		} else {
			r.Post("/generate", s.handleGenerate)
		}
	})
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", "addr", addr, "charts_dir", s.opt.ChartsDir)
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		s.log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func requestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration_ms", time.Since(start).Milliseconds(),
				"remote", r.RemoteAddr,
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}
