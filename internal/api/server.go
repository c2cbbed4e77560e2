// Package api provides the HTTP server for LeafNote: the HTML pages, the
// JSON API under /api/v1 and the health check.
package api

import (
	"context"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"

	"github.com/NiGhtKinG17/LeafNote/internal/oauth"
	"github.com/NiGhtKinG17/LeafNote/internal/service"
)

// Services groups the business services used by the HTTP layer.
type Services struct {
	Identity *service.IdentityService
	Sessions *service.SessionBinder
	Notes    *service.NoteService
}

// Pinger reports backend health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options configures the HTTP layer.
type Options struct {
	CookieName   string
	CookieSecure bool
	// CSRFKey signs form tokens. Must be stable across restarts for forms
	// rendered before a restart to submit.
	CSRFKey     string
	CORSOrigins []string
	MaxUpload   int64
	// Google enables federated login when non-nil.
	Google oauth.Provider
	// SearchEnabled reports whether the note index is live.
	SearchEnabled bool
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store    Pinger
	services *Services
	opts     Options
	router   *chi.Mux
	api      huma.API
	pages    map[string]*template.Template
	logger   *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(store Pinger, services *Services, opts Options, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if opts.CookieName == "" {
		opts.CookieName = DefaultCookieName
	}
	if opts.MaxUpload <= 0 {
		opts.MaxUpload = DefaultMaxUpload
	}
	if opts.CSRFKey == "" {
		opts.CSRFKey = uuid.NewString()
	}

	s := &Server{
		store:    store,
		services: services,
		opts:     opts,
		router:   chi.NewRouter(),
		pages:    mustParsePages(),
		logger:   logger,
	}

	s.setupMiddleware()
	s.setupAPI()
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.RequestLogger(&accessLogFormatter{logger: s.logger}))
	s.router.Use(middleware.Recoverer)

	if len(s.opts.CORSOrigins) > 0 {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.opts.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	s.router.Use(s.authenticate)
}

// setupAPI mounts the huma API on the router.
func (s *Server) setupAPI() {
	humaConfig := huma.DefaultConfig("LeafNote API", "1.0.0")
	humaConfig.OpenAPIPath = "/api/openapi"
	humaConfig.DocsPath = "/api/docs"
	humaConfig.SchemasPath = "/api/schemas"
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
		"cookie": {
			Type: "apiKey",
			In:   "cookie",
			Name: s.opts.CookieName,
		},
	}
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)

	s.api = humachi.New(s.router, humaConfig)
	RegisterErrorHandler()

	s.registerHealthRoutes()
	s.registerAuthRoutes()
	s.registerNoteRoutes()
}

// setupRoutes registers the HTML pages.
func (s *Server) setupRoutes() {
	r := s.router

	r.With(cacheControl(CacheOneDay)).Handle("/static/*", http.StripPrefix("/static/", http.FileServerFS(staticFS())))

	r.Get("/", s.handleHome)
	r.Get("/login", s.handleLoginPage)
	r.Get("/signup", s.handleSignupPage)
	r.Post("/login", s.handleLogin)
	r.Post("/signup", s.handleSignup)

	r.Get("/auth/google", s.handleGoogleLogin)
	r.Get("/auth/google/callback", s.handleGoogleCallback)
	r.Get("/auth/google/notehome", s.handleGoogleCallback)

	r.Group(func(r chi.Router) {
		r.Use(s.requireLogin)
		r.Get("/notehome", s.handleNoteHome)
		r.Get("/compose", s.handleComposePage)
		r.Post("/compose", s.handleCompose)
		r.Get("/fullnote", s.handleFullNoteRedirect)
		r.Get("/fullnote/{id}", s.handleFullNote)
		r.Get("/delete/{id}", s.handleDelete)
		r.Get("/logout", s.handleLogout)
	})

	r.NotFound(s.handleNotFound)
}
