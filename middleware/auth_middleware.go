package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/upb/conference-portal/internal/rbac"
	"github.com/upb/conference-portal/services"
	"github.com/upb/conference-portal/utils"
	"go.uber.org/zap"
)

// DefaultCookieName is the HttpOnly cookie carrying the access token
const DefaultCookieName = "access_token"

// TokenValidator defines the interface for validating JWT tokens
type TokenValidator interface {
	// ValidateToken validates a JWT token and returns claims
	ValidateToken(ctx context.Context, token string) (*Claims, error)
}

// AuthMiddleware provides authentication middleware functionality
type AuthMiddleware struct {
	validator  TokenValidator
	cookieName string
	logger     *zap.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware. An empty cookieName uses DefaultCookieName.
func NewAuthMiddleware(validator TokenValidator, cookieName string, logger *zap.Logger) *AuthMiddleware {
	if cookieName == "" {
		cookieName = DefaultCookieName
	}
	return &AuthMiddleware{
		validator:  validator,
		cookieName: cookieName,
		logger:     logger,
	}
}

// RequireAuth is a middleware that requires a valid JWT token
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		requestID := GetRequestIDFromContext(ctx)

		token := m.extractToken(r)
		if token == "" {
			m.logger.Debug("missing token",
				zap.String("request_id", requestID))
			_ = utils.WriteUnauthorized(w, "Missing or invalid authorization")
			return
		}

		claims, err := m.validator.ValidateToken(ctx, token)
		if err != nil {
			m.logger.Warn("token validation failed",
				zap.String("request_id", requestID),
				zap.Error(err))
			_ = utils.WriteUnauthorized(w, "Invalid or expired token")
			return
		}

		ctx = WithClaims(ctx, claims)

		m.logger.Debug("authentication successful",
			zap.String("request_id", requestID),
			zap.String("user_id", claims.UserID.String()))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole admits requests whose claims hold at least one of the roles.
// With no roles nobody is admitted. It must run after RequireAuth.
func (m *AuthMiddleware) RequireRole(roles ...rbac.Role) func(http.Handler) http.Handler {
	permitted := append([]rbac.Role(nil), roles...)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := GetRequestIDFromContext(ctx)

			claims := GetClaimsFromContext(ctx)
			if claims == nil {
				m.logger.Error("claims not found in context",
					zap.String("request_id", requestID))
				_ = utils.WriteUnauthorized(w, services.ErrUnauthorized.Message)
				return
			}

			if !rbac.HasAnyRole(claims.Roles, permitted) {
				m.logger.Warn("insufficient permissions",
					zap.String("request_id", requestID),
					zap.String("user_id", claims.UserID.String()),
					zap.Strings("required_roles", rbac.Strings(permitted)))
				_ = utils.WriteForbidden(w, services.ErrInsufficientPermissions.Message)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// Gate returns the middleware chain protecting one route: authentication,
// then the role check when roles are given.
//
//	r.With(middleware.Gate(auth, rbac.RoleAdmin)...).Delete("/conferences/{id}", h.Delete)
func Gate(m *AuthMiddleware, roles ...rbac.Role) []func(http.Handler) http.Handler {
	if len(roles) == 0 {
		return []func(http.Handler) http.Handler{m.RequireAuth}
	}
	return []func(http.Handler) http.Handler{m.RequireAuth, m.RequireRole(roles...)}
}

// extractToken reads the bearer token from the Authorization header, falling
// back to the session cookie.
func (m *AuthMiddleware) extractToken(r *http.Request) string {
	if token := extractBearerToken(r); token != "" {
		return token
	}
	if cookie, err := r.Cookie(m.cookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	return ""
}

// extractBearerToken extracts the Bearer token from the Authorization header
func extractBearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}

	return strings.TrimSpace(parts[1])
}
