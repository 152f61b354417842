package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upb/conference-portal/config"
	"github.com/upb/conference-portal/internal/rbac"
	"github.com/upb/conference-portal/models"
	"github.com/upb/conference-portal/services"
)

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:  "test-secret-0123456789abcdef0123",
		Issuer:     "conference-portal",
		TokenTTL:   time.Hour,
		CookieName: "access_token",
		BcryptCost: 4,
	}
}

func testUser(roles ...rbac.Role) *models.User {
	return &models.User{
		ID:    uuid.New(),
		Name:  "Ada Lovelace",
		Email: "ada@example.com",
		Roles: roles,
	}
}

func TestTokenManager_RoundTrip(t *testing.T) {
	m := NewTokenManager(testAuthConfig())
	user := testUser(rbac.RoleOrganizer, rbac.RoleAuthor)

	token, expiresAt, err := m.Issue(user)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)
	assert.Equal(t, time.Hour, m.TTL())

	claims, err := m.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, user.Email, claims.Email)
	assert.Equal(t, user.Name, claims.Name)
	assert.Equal(t, []rbac.Role{rbac.RoleOrganizer, rbac.RoleAuthor}, claims.Roles)
	assert.WithinDuration(t, expiresAt, claims.ExpiresAt, time.Second)
	assert.False(t, claims.IssuedAt.IsZero())
}

func TestTokenManager_Expired(t *testing.T) {
	m := NewTokenManager(testAuthConfig())
	issuedAt := time.Now().Add(-2 * time.Hour)
	m.now = func() time.Time { return issuedAt }

	token, _, err := m.Issue(testUser(rbac.RoleParticipant))
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.ValidateToken(context.Background(), token)
	require.Error(t, err)
	assert.True(t, services.IsUnauthorizedError(err))

	var domainErr *services.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, services.ErrTokenExpired.Message, domainErr.Message)
}

func TestTokenManager_Rejects(t *testing.T) {
	cfg := testAuthConfig()
	m := NewTokenManager(cfg)
	user := testUser(rbac.RoleAdmin)

	otherSecret := cfg
	otherSecret.JWTSecret = "another-secret-0123456789abcdef01"
	foreignToken, _, err := NewTokenManager(otherSecret).Issue(user)
	require.NoError(t, err)

	otherIssuer := cfg
	otherIssuer.Issuer = "someone-else"
	wrongIssuerToken, _, err := NewTokenManager(otherIssuer).Issue(user)
	require.NoError(t, err)

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			Issuer:    cfg.Issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: user.ID.String(),
			Issuer:  cfg.Issuer,
		},
	}).SignedString([]byte(cfg.JWTSecret))
	require.NoError(t, err)

	badSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "not-a-uuid",
			Issuer:    cfg.Issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte(cfg.JWTSecret))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-jwt"},
		{"empty", ""},
		{"wrong secret", foreignToken},
		{"wrong issuer", wrongIssuerToken},
		{"alg none", noneToken},
		{"missing expiry", noExpiry},
		{"subject is not a user id", badSubject},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := m.ValidateToken(context.Background(), tt.token)
			require.Error(t, err)
			assert.Nil(t, claims)
			assert.True(t, services.IsUnauthorizedError(err))

			var domainErr *services.DomainError
			require.True(t, errors.As(err, &domainErr))
			assert.Equal(t, services.ErrInvalidToken.Message, domainErr.Message)
		})
	}
}

func TestTokenManager_DropsUnknownRoles(t *testing.T) {
	cfg := testAuthConfig()
	m := NewTokenManager(cfg)
	userID := uuid.New()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			Issuer:    cfg.Issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Roles: []string{"Admin", "SUPERUSER"},
	}).SignedString([]byte(cfg.JWTSecret))
	require.NoError(t, err)

	claims, err := m.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, []rbac.Role{rbac.RoleAdmin}, claims.Roles)
}
