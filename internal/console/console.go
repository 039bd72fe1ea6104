// Package console serves the backoffice pages over HTTP. Every page request
// passes the route guard against the process-wide session store.
package console

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"filippo.io/csrf"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/confhub/backoffice/internal/api"
	"github.com/confhub/backoffice/internal/guard"
	"github.com/confhub/backoffice/internal/logger"
	"github.com/confhub/backoffice/internal/models"
	"github.com/confhub/backoffice/internal/session"
)

// Options configures the console server.
type Options struct {
	// CORSOrigins are allowed to call the /api/ JSON routes.
	CORSOrigins []string
	Logger      zerolog.Logger
}

// Server renders the console.
type Server struct {
	store *session.Store
	api   *api.API
	opts  Options
}

// New creates a console over store and remote.
func New(store *session.Store, remote *api.API, opts Options) *Server {
	return &Server{store: store, api: remote, opts: opts}
}

// Handler returns the complete handler tree.
func (s *Server) Handler() http.Handler {
	pages := http.NewServeMux()
	pages.HandleFunc("GET /login", s.loginForm)
	pages.HandleFunc("POST /login", s.login)
	pages.HandleFunc("GET /{$}", s.dashboard)
	pages.HandleFunc("GET /members", s.members)
	pages.HandleFunc("GET /registrations", s.registrations)
	pages.HandleFunc("GET /payments", s.payments)
	pages.HandleFunc("GET /reports", s.reports)
	pages.HandleFunc("GET /abstracts", s.placeholder("Abstracts"))
	pages.HandleFunc("GET /checkin/", s.placeholder("Check-in"))
	pages.HandleFunc("GET /checkin", s.placeholder("Check-in"))
	pages.HandleFunc("GET /verification", s.placeholder("Verification"))

	apiMux := http.NewServeMux()
	apiMux.HandleFunc("GET /api/session", s.sessionState)
	apiMux.HandleFunc("POST /api/session/event", s.selectEvent)

	guarded := guard.Middleware(s.store)(pages)
	logout := http.HandlerFunc(s.logout)

	// CSRF protection everywhere; the JSON routes also accept the CORS origins
	protection := csrf.New()
	apiProtection := csrf.New()
	for _, origin := range s.opts.CORSOrigins {
		if err := apiProtection.AddTrustedOrigin(origin); err != nil {
			log.Warn().Err(err).Str("origin", origin).Msg("ignoring invalid CORS origin")
		}
	}
	withCORS := cors.New(cors.Options{
		AllowedOrigins:   s.opts.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler(apiProtection.Handler(apiMux))

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case isAPIRoute(r.URL.Path):
			withCORS.ServeHTTP(w, r)
		case r.URL.Path == "/logout":
			// signing out is allowed from any page, whatever the role
			protection.Handler(logout).ServeHTTP(w, r)
		default:
			protection.Handler(guarded).ServeHTTP(w, r)
		}
	})

	return logger.Middleware(s.opts.Logger)(handler)
}

// ConfigureHTTPServer wraps handler with the console's server timeouts.
func ConfigureHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       time.Minute,
		WriteTimeout:      time.Minute,
		IdleTimeout:       5 * time.Minute,
		MaxHeaderBytes:    8 * 1024, // 8KiB
	}
}

func isAPIRoute(path string) bool {
	return strings.HasPrefix(path, "/api/")
}

// page is the template model shared by every view.
type page struct {
	Title      string
	Identity   *models.Identity
	Event      *models.EventRef
	Toast      string
	Login      bool
	Email      string
	Stats      []stat
	Columns    []string
	Rows       [][]string
	Pagination *models.Pagination
}

type stat struct {
	Label string
	Value any
}

func (s *Server) newPage(title string) *page {
	state := s.store.State()
	return &page{
		Title:    title,
		Identity: state.Identity,
		Event:    state.CurrentEvent,
	}
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, p *page) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pageTemplate.Execute(w, p); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("page", p.Title).Msg("failed to render page")
	}
}

// toast reports a remote failure on the page instead of failing the request.
func toast(r *http.Request, p *page, err error) {
	zerolog.Ctx(r.Context()).Error().Err(err).Str("page", p.Title).Msg("remote API call failed")
	p.Toast = err.Error()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func writeJSONError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
