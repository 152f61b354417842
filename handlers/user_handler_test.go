package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/upb/conference-portal/internal/rbac"
	"github.com/upb/conference-portal/middleware"
	"github.com/upb/conference-portal/models"
	"github.com/upb/conference-portal/services"
	"go.uber.org/zap"
)

func TestUserHandler_SetRoles(t *testing.T) {
	admin := &middleware.Claims{UserID: uuid.New(), Roles: []rbac.Role{rbac.RoleAdmin}}
	target := uuid.New()
	path := "/users/" + target.String() + "/roles"

	t.Run("labels parsed case-insensitively", func(t *testing.T) {
		svc := new(MockUserService)
		h := NewUserHandler(svc, zap.NewNop())
		svc.On("SetRoles", mock.Anything, admin.UserID, target, []rbac.Role{rbac.RoleAuthor, rbac.RoleParticipant}).
			Return(models.NewUser("A", "a@example.com", "", rbac.RoleAuthor, rbac.RoleParticipant), nil)

		req := httptest.NewRequest(http.MethodPut, path, strings.NewReader(`{"roles":["author","PARTICIPANT"]}`))
		w := serve(http.MethodPut, "/users/{id}/roles", h.HandleSetRoles, req, admin)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotContains(t, w.Body.String(), "password")
		svc.AssertExpectations(t)
	})

	t.Run("empty role set", func(t *testing.T) {
		svc := new(MockUserService)
		h := NewUserHandler(svc, zap.NewNop())

		req := httptest.NewRequest(http.MethodPut, path, strings.NewReader(`{"roles":[]}`))
		w := serve(http.MethodPut, "/users/{id}/roles", h.HandleSetRoles, req, admin)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "SetRoles", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown role passed through for rejection", func(t *testing.T) {
		svc := new(MockUserService)
		h := NewUserHandler(svc, zap.NewNop())
		svc.On("SetRoles", mock.Anything, admin.UserID, target, []rbac.Role{"GUEST"}).
			Return(nil, services.NewDomainError(services.ErrorTypeValidation, "unknown role", nil).WithDetail("role", "GUEST"))

		req := httptest.NewRequest(http.MethodPut, path, strings.NewReader(`{"roles":["GUEST"]}`))
		w := serve(http.MethodPut, "/users/{id}/roles", h.HandleSetRoles, req, admin)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "GUEST")
	})
}

func TestUserHandler_List(t *testing.T) {
	svc := new(MockUserService)
	h := NewUserHandler(svc, zap.NewNop())
	svc.On("ListUsers", mock.Anything, 50, 0).Return([]*models.User{models.NewUser("A", "a@example.com", "secret-hash")}, nil)

	w := serve(http.MethodGet, "/users", h.HandleList, httptest.NewRequest(http.MethodGet, "/users", nil),
		&middleware.Claims{UserID: uuid.New(), Roles: []rbac.Role{rbac.RoleAdmin}})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "secret-hash")
}
