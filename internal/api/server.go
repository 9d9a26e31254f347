// Package api serves the building registry and energy analyses over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/facade-energy/internal/energy"
	"github.com/sells-group/facade-energy/internal/monitoring"
	"github.com/sells-group/facade-energy/internal/store"
)

// Options configures the HTTP server.
type Options struct {
	Addr            string
	CORSOrigins     []string
	RateLimitRPS    float64 // 0 disables rate limiting
	RateLimitBurst  int
	AnalysisTimeout time.Duration
	RecordHistory   bool
	Metrics         *monitoring.Metrics
	MetricsHandler  http.Handler // defaults to promhttp.Handler()
}

// Server exposes the REST API plus /health and /metrics.
type Server struct {
	httpServer *http.Server
	store      store.Store
	analyzer   *energy.Analyzer
	opts       Options
}

// NewServer wires the router. The analyzer must read buildings from st.
func NewServer(st store.Store, analyzer *energy.Analyzer, opts Options) *Server {
	if opts.AnalysisTimeout <= 0 {
		opts.AnalysisTimeout = 10 * time.Second
	}
	if opts.MetricsHandler == nil {
		opts.MetricsHandler = promhttp.Handler()
	}

	s := &Server{
		store:    st,
		analyzer: analyzer,
		opts:     opts,
	}
	s.httpServer = &http.Server{
		Addr:              opts.Addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      opts.AnalysisTimeout + 10*time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.opts.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", s.opts.MetricsHandler)

	r.Route("/api", func(r chi.Router) {
		if s.opts.RateLimitRPS > 0 {
			r.Use(rateLimit(rate.NewLimiter(rate.Limit(s.opts.RateLimitRPS), s.opts.RateLimitBurst)))
		}

		r.Get("/cities", s.handleCities)

		r.Route("/buildings", func(r chi.Router) {
			r.Post("/", s.handleCreateBuilding)
			r.Get("/", s.handleListBuildings)
			r.Get("/{id}", s.handleGetBuilding)
			r.Put("/{id}", s.handleUpdateBuilding)
			r.Delete("/{id}", s.handleDeleteBuilding)
		})

		r.Route("/analysis", func(r chi.Router) {
			r.Use(analysisTimeout(s.opts.AnalysisTimeout))
			r.Post("/calculate/{id}", s.handleCalculate)
			r.Get("/compare/{id1}/{id2}/{city}", s.handleCompare)
			r.Get("/cities/{id}", s.handleRank)
			r.Get("/history/{id}", s.handleHistory)
		})
	})

	return r
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	zap.L().Info("http server starting", zap.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the router, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleCities(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.analyzer.Tables().Cities())
}
