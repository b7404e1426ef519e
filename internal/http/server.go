package httpapp

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/alphabot-ai/blog/internal/auth"
	"github.com/alphabot-ai/blog/internal/config"
	"github.com/alphabot-ai/blog/internal/cookie"
	"github.com/alphabot-ai/blog/internal/gravatar"
	"github.com/alphabot-ai/blog/internal/health"
	"github.com/alphabot-ai/blog/internal/metrics"
	"github.com/alphabot-ai/blog/internal/rate"
	"github.com/alphabot-ai/blog/internal/richtext"
	"github.com/alphabot-ai/blog/internal/session"
	"github.com/alphabot-ai/blog/internal/store"
)

// Deps are the collaborators a Server is built from. Store, Auth and
// Sessions are required; the rest fall back to sensible defaults.
type Deps struct {
	Store    store.Store
	Auth     *auth.Service
	Sessions *session.Manager
	Cookies  *cookie.Manager
	Limiter  rate.Limiter
	Metrics  *metrics.Metrics
	Logger   *slog.Logger
	Checks   health.Checks
	Config   config.Config
}

type Server struct {
	store     store.Store
	auth      *auth.Service
	sessions  *session.Manager
	cookies   *cookie.Manager
	limiter   rate.Limiter
	metrics   *metrics.Metrics
	logger    *slog.Logger
	checks    health.Checks
	cfg       config.Config
	templates *Templates
	router    chi.Router
	now       func() time.Time
}

func NewServer(deps Deps) (*Server, error) {
	if deps.Store == nil || deps.Auth == nil || deps.Sessions == nil {
		return nil, errors.New("httpapp: store, auth and sessions are required")
	}
	s := &Server{
		store:    deps.Store,
		auth:     deps.Auth,
		sessions: deps.Sessions,
		cookies:  deps.Cookies,
		limiter:  deps.Limiter,
		metrics:  deps.Metrics,
		logger:   deps.Logger,
		checks:   deps.Checks,
		cfg:      deps.Config,
		now:      time.Now,
	}
	if s.cookies == nil {
		s.cookies = cookie.New(cookie.WithSecret(s.cfg.SecretKey), cookie.WithSecure(s.cfg.Session.Secure))
	}
	if s.limiter == nil {
		s.limiter = rate.NewMemory()
	}
	if s.metrics == nil {
		s.metrics = metrics.New()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.checks == nil {
		s.checks = health.Checks{"store": s.store.Ping}
	}

	g := gravatar.Defaults()
	if s.cfg.Gravatar.Size > 0 {
		g = gravatar.Options(s.cfg.Gravatar)
	}
	tmpl, err := loadTemplates(gravatar.New(g), richtext.New())
	if err != nil {
		return nil, err
	}
	s.templates = tmpl
	s.router = s.routes()
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	if s.cfg.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(s.requestLog)
	r.Use(s.recoverer)
	r.Use(s.instrument)

	r.Get("/healthz", health.Liveness())
	r.Get("/readyz", health.Readiness(s.checks, 5*time.Second, s.logger))
	if s.cfg.MetricsEnabled {
		r.Handle("/metrics", s.metrics.Handler())
	}

	r.Group(func(r chi.Router) {
		r.Use(securityHeaders(s.cfg.Session.Secure))
		r.Use(maxBytes(s.cfg.MaxBodyBytes))
		r.Use(s.loadUser)

		r.NotFound(s.handleNotFound)
		r.MethodNotAllowed(s.handleMethodNotAllowed)

		r.Get("/", s.handleIndex)
		r.Get("/about", s.handleAbout)
		r.Get("/contact", s.handleContact)

		r.Get("/register", s.handleRegisterForm)
		r.With(s.limitAuth("register")).Post("/register", s.handleRegister)
		r.Get("/login", s.handleLoginForm)
		r.With(s.limitAuth("login")).Post("/login", s.handleLogin)
		r.Get("/logout", s.handleLogout)

		r.Get("/post/{id}", s.handleShowPost)
		r.Post("/post/{id}", s.handleComment)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAdmin)
			r.Get("/new-post", s.handleNewPostForm)
			r.Post("/new-post", s.handleNewPost)
			r.Get("/edit-post/{id}", s.handleEditPostForm)
			r.Post("/edit-post/{id}", s.handleEditPost)
			r.Get("/delete/{id}", s.handleDeletePost)
		})
	})
	return r
}
