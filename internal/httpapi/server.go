package httpapi

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/text/language"

	"github.com/goliatone/go-valuation/pkg/auth"
	"github.com/goliatone/go-valuation/pkg/client"
	"github.com/goliatone/go-valuation/pkg/contract"
	"github.com/goliatone/go-valuation/pkg/present"
	"github.com/goliatone/go-valuation/pkg/render"
)

// Options configures a Server.
type Options struct {
	Client         *client.Client
	Renderers      *render.Registry
	Contract       *contract.Contract
	Logger         *slog.Logger
	Locale         string
	Currency       string
	AllowedOrigins []string
	ScreenTTL      time.Duration
	Now            func() time.Time
}

// DefaultScreenTTL is how long a screen survives without a request.
const DefaultScreenTTL = 30 * time.Minute

// Option mutates Options.
type Option func(*Options)

func WithClient(c *client.Client) Option {
	return func(o *Options) { o.Client = c }
}

func WithRenderers(r *render.Registry) Option {
	return func(o *Options) { o.Renderers = r }
}

// WithContract validates outgoing screen requests against c. Pass nil to
// disable.
func WithContract(c *contract.Contract) Option {
	return func(o *Options) { o.Contract = c }
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		if logger != nil {
			o.Logger = logger
		}
	}
}

// WithLocale sets the locale used when a request has no Accept-Language.
func WithLocale(locale string) Option {
	return func(o *Options) { o.Locale = locale }
}

func WithCurrency(code string) Option {
	return func(o *Options) { o.Currency = code }
}

func WithAllowedOrigins(origins ...string) Option {
	return func(o *Options) { o.AllowedOrigins = append([]string(nil), origins...) }
}

// WithScreenTTL closes screens idle for longer than d. Zero or less keeps
// them until DELETE, logout or Close.
func WithScreenTTL(d time.Duration) Option {
	return func(o *Options) { o.ScreenTTL = d }
}

func WithClock(now func() time.Time) Option {
	return func(o *Options) {
		if now != nil {
			o.Now = now
		}
	}
}

// Server is the HTTP binding. Create it with New and release its screens
// with Close.
type Server struct {
	opts   Options
	router chi.Router

	mu       sync.RWMutex
	screens  map[string]screenEntry
	sessions map[string]*auth.Provider
}

// New builds the server and its routes.
func New(options ...Option) (*Server, error) {
	opts := Options{
		Contract:  contract.Default(),
		Locale:    "en",
		Logger:    slog.New(slog.DiscardHandler),
		ScreenTTL: DefaultScreenTTL,
		Now:       time.Now,
	}
	for _, opt := range options {
		if opt != nil {
			opt(&opts)
		}
	}
	if opts.Client == nil {
		return nil, errors.New("httpapi: valuation client is required")
	}
	if opts.Renderers == nil {
		reg, err := render.NewDefaultRegistry()
		if err != nil {
			return nil, err
		}
		opts.Renderers = reg
	}
	opts.Logger = opts.Logger.With(slog.String("component", "http_api"))

	s := &Server{
		opts:     opts,
		screens:  make(map[string]screenEntry),
		sessions: make(map[string]*auth.Provider),
	}
	if err := s.routes(); err != nil {
		return nil, err
	}
	return s, nil
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close unmounts every screen, discarding outstanding submissions.
func (s *Server) Close() {
	s.mu.Lock()
	screens := s.screens
	s.screens = make(map[string]screenEntry)
	s.mu.Unlock()

	for _, entry := range screens {
		entry.screen.Close()
	}
}

func (s *Server) routes() error {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, loggerMiddleware(s.opts.Logger), middleware.Recoverer)
	if len(s.opts.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.opts.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Accept-Language", "Authorization", "Content-Type", "X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}
	r.Use(s.sessionMiddleware)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/schema", s.handleSchema)
		r.Get("/cities", s.handleCities)
		r.Get("/cities/{city}", s.handleCity)

		r.Post("/auth/login", s.handleLogin)
		r.Post("/auth/register", s.handleRegister)
		r.Delete("/auth/session", s.handleLogout)
		r.Get("/landing", s.handleLanding)

		r.Group(func(r chi.Router) {
			r.Use(requireRoute(auth.RouteAnalysis))
			r.Get("/analysis", s.handleAnalysis)
		})
		r.Group(func(r chi.Router) {
			r.Use(requireRoute(auth.RoutePayment))
			r.Post("/payments", s.handlePayment)
		})

		r.Post("/screens", s.handleCreateScreen)
		r.Route("/screens/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetScreen)
			r.Delete("/", s.handleDeleteScreen)
			r.Post("/events", s.handleEvents)
			r.Post("/submit", s.handleSubmit)
			r.Post("/dismiss", s.handleDismiss)
		})
	})

	s.router = r
	return nil
}

// presenter builds a presenter for the request language.
func (s *Server) presenter(r *http.Request) *present.Presenter {
	return present.New(
		present.WithLocale(requestLocale(r, s.opts.Locale)),
		present.WithCurrency(s.opts.Currency),
	)
}

func requestLocale(r *http.Request, fallback string) string {
	tags, _, err := language.ParseAcceptLanguage(r.Header.Get("Accept-Language"))
	if err != nil || len(tags) == 0 {
		return fallback
	}
	return tags[0].String()
}

// renderer picks the display renderer for the request. Requests without an
// explicit text or HTML preference get JSON.
func (s *Server) renderer(r *http.Request) render.Renderer {
	accept := r.Header.Get("Accept")
	if !strings.Contains(accept, "text/html") && !strings.Contains(accept, "text/plain") {
		if jr, err := s.opts.Renderers.Get("json"); err == nil {
			return jr
		}
	}
	return s.opts.Renderers.Negotiate(accept)
}
