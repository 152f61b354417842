// Package web is the server-rendered front end of the conference portal.
//
// Every page request is bootstrapped with the identity of the browser session
// (GET /auth/me on the API), then passes through the route guards before a
// page handler loads its data from the API with the browser's cookies.
package web

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/upb/conference-portal/config"
	"github.com/upb/conference-portal/internal/observability"
	"github.com/upb/conference-portal/internal/rbac"
	"github.com/upb/conference-portal/web/apiclient"
	"github.com/upb/conference-portal/web/guards"
	"github.com/upb/conference-portal/web/session"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{"login", "admin", "organizer", "evaluator", "author", "participant", "error"}

var templateFuncs = template.FuncMap{
	"date": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("2006-01-02")
	},
	"roles": func(roles []rbac.Role) string {
		return strings.Join(rbac.Strings(roles), ", ")
	},
}

// Server renders the portal pages
type Server struct {
	api        *apiclient.Client
	boot       *session.Bootstrapper
	pages      map[string]*template.Template
	cookieName string
	logger     *zap.Logger
}

// NewServer creates the web tier. cookieName is the API session cookie, cleared
// locally when the API cannot be reached on logout.
func NewServer(api *apiclient.Client, cfg config.WebConfig, cookieName string, logger *zap.Logger) (*Server, error) {
	if api == nil {
		return nil, fmt.Errorf("api client is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		tmpl, err := template.New(name).Funcs(templateFuncs).ParseFS(templateFS,
			"templates/base.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", name, err)
		}
		pages[name] = tmpl
	}

	s := &Server{
		api:        api,
		pages:      pages,
		cookieName: cookieName,
		logger:     logger,
	}
	s.boot = session.NewBootstrapper(s.identify, cfg.BootstrapWait, logger)
	return s, nil
}

// Routes returns the page router
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(observability.RequestLogger(s.logger))
	r.Use(chimw.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Post("/login", s.handleLogin)
	r.Post("/logout", s.handleLogout)
	r.Get("/logout", s.handleLogout)

	r.Group(func(r chi.Router) {
		r.Use(s.boot.Middleware)

		r.Get("/login", s.handleLoginPage)

		r.Group(func(r chi.Router) {
			r.Use(guards.RequireAuthenticated)

			r.Get("/", s.handleDashboard)
			r.Get(rbac.GenericDashboardPath, s.handleDashboard)
			r.Get(rbac.FallbackDashboardPath, s.handleParticipant)

			r.With(guards.RequireRoles(rbac.RoleAdmin)).
				Get("/admin", s.handleAdmin)
			r.With(guards.RequireRoles(rbac.RoleAdmin, rbac.RoleOrganizer)).
				Get("/organizer", s.handleOrganizer)
			r.With(guards.RequireRoles(rbac.RolePanelEvaluator)).
				Get("/evaluator", s.handleEvaluator)
			r.With(guards.RequireRoles(rbac.RoleAuthor)).
				Get("/author", s.handleAuthor)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.render(w, http.StatusNotFound, "error", pageData{Title: "Not found", Error: "Page not found."})
	})

	return r
}

// identify resolves the browser session through the identity endpoint.
// Every failure means "no session"; the cause is only logged.
func (s *Server) identify(ctx context.Context, r *http.Request) (*session.User, error) {
	id, err := s.api.Me(ctx, r.Cookies())
	if err != nil {
		switch {
		case errors.Is(err, apiclient.ErrSessionExpired):
			s.logger.Debug("no session", zap.String("path", r.URL.Path))
		case ctx.Err() != nil:
		default:
			s.logger.Warn("identity check failed",
				zap.String("request_id", chimw.GetReqID(r.Context())),
				zap.Error(err),
			)
		}
		return nil, err
	}
	return &session.User{
		ID:    id.ID,
		Name:  id.Name,
		Email: id.Email,
		Roles: rbac.Normalize(id.Roles),
	}, nil
}

func (s *Server) render(w http.ResponseWriter, status int, name string, data pageData) {
	tmpl, ok := s.pages[name]
	if !ok {
		http.Error(w, "template not found", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base", data); err != nil {
		s.logger.Error("failed to render page", zap.String("page", name), zap.Error(err))
		http.Error(w, "An internal error occurred", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}
