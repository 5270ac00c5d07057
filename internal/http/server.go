package http

import (
	stdhttp "net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
	"github.com/getsentry/sentry-go"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"notebase/app/internal/auth"
	"notebase/app/internal/pages"
	"notebase/app/internal/users"
	"notebase/app/internal/workspaces"
)

// Options configures the HTTP server wiring.
type Options struct {
	Users       users.Service
	Workspaces  workspaces.Service
	Pages       pages.Service
	Guard       *auth.Guard
	Database    *gorm.DB
	Logger      *logrus.Logger
	SentryHub   *sentry.Hub
	RateLimiter RateLimiterSettings
}

// RateLimiterSettings configures the HTTP rate limiter behaviour.
type RateLimiterSettings struct {
	RequestsPerSecond float64
	Burst             int
	ClientTTL         time.Duration
}

// Server wires the HTTP transport layer via Huma.
type Server struct {
	api         huma.API
	mux         *stdhttp.ServeMux
	users       users.Service
	workspaces  workspaces.Service
	pages       pages.Service
	guard       *auth.Guard
	logger      *logrus.Logger
	sentry      *sentry.Hub
	db          *gorm.DB
	rateLimiter *RateLimiter
}

// NewServer constructs the HTTP server.
func NewServer(opts Options) (*Server, error) {
	if opts.Users == nil {
		return nil, eris.New("user service is required")
	}
	if opts.Workspaces == nil {
		return nil, eris.New("workspace service is required")
	}
	if opts.Pages == nil {
		return nil, eris.New("page service is required")
	}
	if opts.Guard == nil {
		return nil, eris.New("guard is required")
	}
	if opts.Database == nil {
		return nil, eris.New("database is required")
	}

	mux := stdhttp.NewServeMux()
	config := huma.DefaultConfig("Notebase", "1.0.0")

	api := humago.New(mux, config)

	srv := &Server{
		api:        api,
		mux:        mux,
		users:      opts.Users,
		workspaces: opts.Workspaces,
		pages:      opts.Pages,
		guard:      opts.Guard,
		logger:     opts.Logger,
		sentry:     opts.SentryHub,
		db:         opts.Database,
	}

	settings := opts.RateLimiter
	if settings.Burst <= 0 {
		return nil, eris.New("rate limiter burst must be greater than zero")
	}
	if settings.RequestsPerSecond <= 0 {
		return nil, eris.New("rate limiter requests per second must be greater than zero")
	}
	if settings.ClientTTL <= 0 {
		return nil, eris.New("rate limiter client TTL must be greater than zero")
	}

	srv.rateLimiter = NewRateLimiter(settings.Burst, settings.RequestsPerSecond, settings.ClientTTL)

	srv.registerMiddlewares()
	srv.registerRoutes()

	return srv, nil
}

// Handler exposes the underlying HTTP handler for wiring into the application.
func (s *Server) Handler() stdhttp.Handler {
	return s.mux
}

// API exposes the underlying Huma API instance.
func (s *Server) API() huma.API {
	return s.api
}

func (s *Server) registerMiddlewares() {
	s.api.UseMiddleware(
		s.sentryMiddleware(),
		s.recoveryMiddleware(),
		s.requestIDMiddleware(),
		s.rateLimitMiddleware(),
		s.loggingMiddleware(),
	)
}

func (s *Server) registerRoutes() {
	s.registerUserRoutes()
	s.registerWorkspaceRoutes()
	s.registerPageRoutes()
	s.registerHealthRoute()
}

func (s *Server) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	s.mux.ServeHTTP(w, r)
}
