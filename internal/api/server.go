package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dgallion1/corpuslint/internal/config"
	"github.com/dgallion1/corpuslint/internal/history"
	"github.com/dgallion1/corpuslint/internal/pipeline"
)

// Server is the HTTP surface for on-demand corpus scans.
type Server struct {
	router  chi.Router
	scanner *pipeline.Scanner
	stats   *pipeline.ScanStats
	store   *history.Store // nil when run recording is disabled
	log     *slog.Logger
	cfg     config.Config
}

// NewServer creates and configures the HTTP server. store may be nil.
func NewServer(scanner *pipeline.Scanner, stats *pipeline.ScanStats, store *history.Store, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		scanner: scanner,
		stats:   stats,
		store:   store,
		log:     log,
		cfg:     cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.cfg.Root, s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Get("/api/scan", s.handleScan)
		r.Get("/api/runs", s.handleListRuns)
		r.Get("/api/runs/{runID}", s.handleGetRun)
		r.Get("/api/stats/scan", s.handleScanStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
