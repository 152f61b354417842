package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/upb/conference-portal/internal/rbac"
	"github.com/upb/conference-portal/models"
	"github.com/upb/conference-portal/utils"
	"go.uber.org/zap"
)

// UserService is the account administration surface used by the HTTP layer
type UserService interface {
	ListUsers(ctx context.Context, limit, offset int) ([]*models.User, error)
	SetRoles(ctx context.Context, actorID, userID uuid.UUID, roles []rbac.Role) (*models.User, error)
}

type setRolesRequest struct {
	Roles []string `json:"roles" validate:"required,min=1,dive,required"`
}

// UserHandler handles user administration requests
type UserHandler struct {
	users  UserService
	logger *zap.Logger
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(users UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		users:  users,
		logger: logger,
	}
}

// HandleList handles GET /users
func (h *UserHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	page := utils.ParsePage(r)

	users, err := h.users.ListUsers(r.Context(), page.Limit, page.Offset)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, users)
}

// HandleSetRoles handles PUT /users/{id}/roles. Labels are parsed case-insensitively.
func (h *UserHandler) HandleSetRoles(w http.ResponseWriter, r *http.Request) {
	actorID, ok := currentUser(w, r)
	if !ok {
		return
	}
	userID, ok := pathID(w, r, "id", h.logger)
	if !ok {
		return
	}
	var req setRolesRequest
	if !decodeAndValidate(w, r, &req, h.logger) {
		return
	}

	roles := make([]rbac.Role, 0, len(req.Roles))
	for _, label := range req.Roles {
		role, err := rbac.ParseRole(label)
		if err != nil {
			role = rbac.Role(label)
		}
		roles = append(roles, role)
	}

	user, err := h.users.SetRoles(r.Context(), actorID, userID, roles)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, user)
}
