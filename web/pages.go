package web

import (
	"errors"
	"net/http"
	"strings"

	"github.com/upb/conference-portal/internal/rbac"
	"github.com/upb/conference-portal/models"
	"github.com/upb/conference-portal/web/apiclient"
	"github.com/upb/conference-portal/web/guards"
	"github.com/upb/conference-portal/web/session"
	"go.uber.org/zap"
)

type pageData struct {
	Title string
	User  *session.User
	Error string

	From  string
	Email string

	Conferences   []models.Conference
	Registrations []models.Registration
	Submissions   []models.Submission
	Evaluations   []models.Evaluation
	Users         []models.User
}

func newPage(r *http.Request, title string) pageData {
	return pageData{Title: title, User: session.FromContext(r.Context()).User()}
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	from := r.URL.Query().Get(guards.FromParam)
	if session.FromContext(r.Context()).User() != nil {
		http.Redirect(w, r, guards.SafeRedirect(from, rbac.GenericDashboardPath), http.StatusSeeOther)
		return
	}
	s.render(w, http.StatusOK, "login", pageData{Title: "Sign in", From: from})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.render(w, http.StatusBadRequest, "login", pageData{Title: "Sign in", Error: "Invalid form submission."})
		return
	}

	email := strings.TrimSpace(r.PostForm.Get("email"))
	password := r.PostForm.Get("password")
	from := r.PostForm.Get(guards.FromParam)
	page := pageData{Title: "Sign in", From: from, Email: email}

	if email == "" || password == "" {
		page.Error = "Email and password are required."
		s.render(w, http.StatusBadRequest, "login", page)
		return
	}

	_, cookies, err := s.api.Login(r.Context(), email, password)
	if err != nil {
		if apiclient.IsStatus(err, http.StatusUnauthorized) || apiclient.IsStatus(err, http.StatusBadRequest) {
			page.Error = "Invalid email or password."
			s.render(w, http.StatusUnauthorized, "login", page)
			return
		}
		s.logger.Error("login request failed", zap.Error(err))
		page.Error = "The service is unavailable. Please try again."
		s.render(w, http.StatusBadGateway, "login", page)
		return
	}

	for _, ck := range cookies {
		http.SetCookie(w, ck)
	}
	http.Redirect(w, r, guards.SafeRedirect(from, rbac.GenericDashboardPath), http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	cookies, err := s.api.Logout(r.Context(), r.Cookies())
	if err != nil && !errors.Is(err, apiclient.ErrSessionExpired) {
		s.logger.Warn("logout request failed", zap.Error(err))
	}

	if len(cookies) == 0 && s.cookieName != "" {
		cookies = []*http.Cookie{{
			Name:     s.cookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		}}
	}
	for _, ck := range cookies {
		http.SetCookie(w, ck)
	}
	http.Redirect(w, r, rbac.LoginPath, http.StatusSeeOther)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	roles := session.FromContext(r.Context()).Roles()
	http.Redirect(w, r, rbac.DashboardPath(roles), http.StatusSeeOther)
}

func (s *Server) handleParticipant(w http.ResponseWriter, r *http.Request) {
	page := newPage(r, "Participant")
	if !s.load(w, r, "/api/v1/conferences?status="+string(models.ConferenceStatusOpen), &page.Conferences) {
		return
	}
	if !s.load(w, r, "/api/v1/registrations/mine", &page.Registrations) {
		return
	}
	s.render(w, http.StatusOK, "participant", page)
}

func (s *Server) handleAdmin(w http.ResponseWriter, r *http.Request) {
	page := newPage(r, "Administration")
	if !s.load(w, r, "/api/v1/users", &page.Users) {
		return
	}
	s.render(w, http.StatusOK, "admin", page)
}

func (s *Server) handleOrganizer(w http.ResponseWriter, r *http.Request) {
	page := newPage(r, "Conferences")
	if !s.load(w, r, "/api/v1/conferences", &page.Conferences) {
		return
	}
	s.render(w, http.StatusOK, "organizer", page)
}

func (s *Server) handleEvaluator(w http.ResponseWriter, r *http.Request) {
	page := newPage(r, "Evaluations")
	if !s.load(w, r, "/api/v1/evaluations/mine", &page.Evaluations) {
		return
	}
	s.render(w, http.StatusOK, "evaluator", page)
}

func (s *Server) handleAuthor(w http.ResponseWriter, r *http.Request) {
	page := newPage(r, "Submissions")
	if !s.load(w, r, "/api/v1/submissions/mine", &page.Submissions) {
		return
	}
	s.render(w, http.StatusOK, "author", page)
}

// load fetches page data from the API. It writes the response itself and
// returns false when the page cannot be rendered.
func (s *Server) load(w http.ResponseWriter, r *http.Request, path string, out interface{}) bool {
	err := s.api.Get(r.Context(), path, r.Cookies(), out)
	switch {
	case err == nil:
		return true
	case errors.Is(err, apiclient.ErrSessionExpired):
		guards.RedirectToLogin(w, r)
	case apiclient.IsStatus(err, http.StatusForbidden):
		s.render(w, http.StatusForbidden, "error", pageData{
			Title: "Forbidden",
			User:  session.FromContext(r.Context()).User(),
			Error: "You do not have access to this page.",
		})
	default:
		s.logger.Error("failed to load page data", zap.String("path", path), zap.Error(err))
		s.render(w, http.StatusBadGateway, "error", pageData{
			Title: "Unavailable",
			User:  session.FromContext(r.Context()).User(),
			Error: "The service is unavailable. Please try again.",
		})
	}
	return false
}
