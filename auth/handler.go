// Package auth issues access tokens and serves the /auth endpoints.
package auth

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/upb/conference-portal/config"
	"github.com/upb/conference-portal/handlers"
	"github.com/upb/conference-portal/internal/rbac"
	"github.com/upb/conference-portal/middleware"
	"github.com/upb/conference-portal/models"
	"github.com/upb/conference-portal/services/account"
	"github.com/upb/conference-portal/utils"
	"go.uber.org/zap"
)

// AccountService is the part of the account service the handler needs
type AccountService interface {
	Register(ctx context.Context, in account.RegisterInput) (*models.User, error)
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
	CurrentUser(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Identity is the session user returned by the auth endpoints
type Identity struct {
	ID    uuid.UUID   `json:"id"`
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Roles []rbac.Role `json:"roles"`
}

// NewIdentity projects a user onto the session identity
func NewIdentity(u *models.User) Identity {
	roles := u.Roles
	if roles == nil {
		roles = []rbac.Role{}
	}
	return Identity{ID: u.ID, Name: u.Name, Email: u.Email, Roles: roles}
}

type registerRequest struct {
	Name     string `json:"name" validate:"required,max=200"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Handler serves registration, password login, logout and the identity endpoint
type Handler struct {
	accounts AccountService
	tokens   *TokenManager
	cfg      config.AuthConfig
	logger   *zap.Logger
}

// NewHandler creates a new auth handler
func NewHandler(accounts AccountService, tokens *TokenManager, cfg config.AuthConfig, logger *zap.Logger) *Handler {
	if cfg.CookieName == "" {
		cfg.CookieName = middleware.DefaultCookieName
	}
	return &Handler{
		accounts: accounts,
		tokens:   tokens,
		cfg:      cfg,
		logger:   logger,
	}
}

// HandleRegister creates an account holding the default roles
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		_ = utils.WriteBadRequest(w, err.Error(), nil)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		handlers.HandleValidationError(w, err, h.logger)
		return
	}

	user, err := h.accounts.Register(r.Context(), account.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		handlers.HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteCreated(w, NewIdentity(user))
}

// HandleLogin checks the credentials and sets the session cookie
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		_ = utils.WriteBadRequest(w, err.Error(), nil)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		handlers.HandleValidationError(w, err, h.logger)
		return
	}

	user, err := h.accounts.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		handlers.HandleServiceError(w, err, h.logger)
		return
	}

	token, expiresAt, err := h.tokens.Issue(user)
	if err != nil {
		h.logger.Error("failed to issue token", zap.Error(err))
		_ = utils.WriteInternalServerError(w, "Failed to sign in")
		return
	}

	http.SetCookie(w, h.sessionCookie(token, expiresAt, int(time.Until(expiresAt).Seconds())))
	_ = utils.WriteOK(w, NewIdentity(user))
}

// HandleLogout clears the session cookie
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, h.sessionCookie("", time.Unix(0, 0), -1))
	utils.WriteNoContent(w)
}

// HandleMe returns the current user. Roles are read from the database so role
// changes are visible before the token expires.
func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		_ = utils.WriteUnauthorized(w, "")
		return
	}

	user, err := h.accounts.CurrentUser(r.Context(), userID)
	if err != nil {
		handlers.HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, NewIdentity(user))
}

func (h *Handler) sessionCookie(value string, expires time.Time, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     h.cfg.CookieName,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
}
