package api

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"github.com/matzehuels/linkscope/pkg/errors"
	"github.com/matzehuels/linkscope/pkg/httputil"
	"github.com/matzehuels/linkscope/pkg/pipeline"
	"github.com/matzehuels/linkscope/pkg/render/nodelink"
	"github.com/matzehuels/linkscope/pkg/session"
)

// DefaultMaxUploadBytes bounds upload request bodies.
const DefaultMaxUploadBytes = 32 << 20

// Options configures a [Server].
type Options struct {
	Runner   *pipeline.Runner
	Sessions *session.Manager
	Logger   *log.Logger

	// Engine and Detailed are the snapshot defaults; query parameters
	// override them per request.
	Engine   nodelink.Engine
	Detailed bool

	MaxUploadBytes int64

	// UploadLimiter throttles both upload endpoints. Nil disables limiting.
	UploadLimiter *rate.Limiter
}

// Server is the HTTP API. It implements http.Handler.
type Server struct {
	runner    *pipeline.Runner
	sessions  *session.Manager
	logger    *log.Logger
	engine    nodelink.Engine
	detailed  bool
	maxUpload int64
	limiter   *rate.Limiter
	router    chi.Router
}

// New builds the server and its routes.
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = DefaultMaxUploadBytes
	}
	s := &Server{
		runner:    opts.Runner,
		sessions:  opts.Sessions,
		logger:    opts.Logger,
		engine:    opts.Engine,
		detailed:  opts.Detailed,
		maxUpload: opts.MaxUploadBytes,
		limiter:   opts.UploadLimiter,
	}
	s.router = s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(httputil.RequestLogger(s.logger))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httputil.Error(w, errors.New(errors.ErrCodeNotFound, "Not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httputil.JSON(w, http.StatusMethodNotAllowed, httputil.ErrorBody{Error: "Method not allowed"})
	})

	limited := httputil.RateLimit(s.limiter)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.With(limited).Post("/upload", s.handleUpload)
		r.Get("/graphs/{id}", s.handleGetGraph)
		r.Post("/sessions", s.handleCreateSession)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Delete("/", s.handleDeleteSession)
			r.Get("/frame", s.handleFrame)
			r.Post("/events", s.handleEvent)
			r.Put("/config", s.handleConfig)
			r.With(limited).Post("/upload", s.handleSessionUpload)
			r.Get("/snapshot.{format}", s.handleSnapshot)
		})
	})
	return r
}
