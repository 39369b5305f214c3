// Package api serves the link index over HTTP.
package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/dgallion1/linkorg/internal/config"
	"github.com/dgallion1/linkorg/internal/library"
	"github.com/dgallion1/linkorg/internal/linkdata"
	"github.com/dgallion1/linkorg/internal/pipeline"
	"github.com/dgallion1/linkorg/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Scanner queues library scans. *pipeline.Orchestrator implements it.
type Scanner interface {
	Submit(force bool, trigger string) (*pipeline.Job, error)
	GetJob(id string) *pipeline.Job
	RecentJobs() []pipeline.JobSnapshot
	QueueDepth() int
}

// Index is the read side of the link store.
type Index interface {
	ListFiles(ctx context.Context) ([]store.FileSummary, error)
	GetFile(ctx context.Context, path string) (*linkdata.FileData, error)
	SearchLinks(ctx context.Context, q store.LinkQuery) ([]store.LinkRecord, error)
	Tags(ctx context.Context) ([]store.TagCount, error)
	Stats(ctx context.Context) (store.Stats, error)
}

// Source loads files that have not been indexed yet. Optional.
type Source interface {
	Load(rel string) (*library.Entry, error)
}

// Server is the HTTP API server for linkorg.
type Server struct {
	router  chi.Router
	scanner Scanner
	index   Index
	src     Source
	log     *slog.Logger
	cfg     config.Config
}

// NewServer creates and configures the HTTP server. src may be nil.
func NewServer(scanner Scanner, index Index, src Source, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		scanner: scanner,
		index:   index,
		src:     src,
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
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints, open when no api_key is configured.
	r.Group(func(r chi.Router) {
		if s.cfg.APIKey != "" {
			r.Use(AuthMiddleware(s.cfg.APIKey, s.log))
		}

		r.Get("/api/files", s.handleListFiles)
		r.Get("/api/files/*", s.handleGetFile)
		r.Get("/api/outline/*", s.handleOutline)

		r.Get("/api/links", s.handleSearchLinks)
		r.Get("/api/tags", s.handleTags)
		r.Get("/api/stats", s.handleStats)

		r.Post("/api/scans", s.handleScan)
		r.Get("/api/scans", s.handleListScans)
		r.Get("/api/scans/{jobID}/status", s.handleScanStatus)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
