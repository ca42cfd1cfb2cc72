package status

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/viant/evalrt/model"
	"github.com/viant/evalrt/service/dao"
	"github.com/viant/evalrt/service/journal"
	"github.com/viant/evalrt/telemetry"
)

// Source exposes the runtime state served by the status API
type Source interface {
	Evaluator(ctx context.Context, id string) (*model.EvaluatorRecord, error)
	Evaluators(ctx context.Context, parameters ...*dao.Parameter) ([]*model.EvaluatorRecord, error)
	Contexts(ctx context.Context, evaluatorID string) ([]*model.Context, error)
	Context(ctx context.Context, evaluatorID, id string) (*model.Context, error)
	Task(ctx context.Context, evaluatorID, id string) (*model.Task, error)
	Journal(ctx context.Context, evaluatorID string) ([]*journal.Entry, error)
	Metrics() *telemetry.Metrics
}

// Server is a read only HTTP view over a running driver.
type Server struct {
	router    chi.Router
	source    Source
	logger    *slog.Logger
	version   string
	startTime time.Time
}

// Option configures the Server
type Option func(s *Server)

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithVersion sets the version reported by the health endpoint
func WithVersion(version string) Option {
	return func(s *Server) {
		s.version = version
	}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Handler returns the http.Handler for this server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() {
	r := s.router
	r.Use(middleware.Recoverer)
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(s.logger))

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/metrics", s.handleMetrics)
		r.Route("/evaluators", func(r chi.Router) {
			r.Get("/", s.handleListEvaluators)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetEvaluator)
				r.Get("/journal", s.handleGetJournal)
				r.Get("/contexts", s.handleListContexts)
				r.Get("/contexts/{contextId}", s.handleGetContext)
				r.Get("/tasks/{taskId}", s.handleGetTask)
			})
		})
	})
}

// New creates a status server with all routes registered.
func New(source Source, opts ...Option) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		source:    source,
		logger:    slog.Default(),
		version:   "dev",
		startTime: time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "status")
	s.routes()
	return s
}
