// Package account handles sign-up, password login and user role administration.
package account

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/upb/conference-portal/internal/rbac"
	"github.com/upb/conference-portal/models"
	"github.com/upb/conference-portal/repositories"
	"github.com/upb/conference-portal/services"
	"github.com/upb/conference-portal/services/audit"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// DefaultRoles are granted to every self-registered account
var DefaultRoles = []rbac.Role{rbac.RoleParticipant}

// RegisterInput carries the fields of a sign-up request
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// Service implements account operations
type Service struct {
	users      repositories.UserRepository
	txMgr      repositories.TransactionManager
	audit      audit.Recorder
	logger     *zap.Logger
	bcryptCost int

	// dummyHash is compared against when the email is unknown so both failure
	// paths cost one bcrypt comparison.
	dummyHash []byte
}

// NewService creates a new account service
func NewService(users repositories.UserRepository, txMgr repositories.TransactionManager, recorder audit.Recorder, logger *zap.Logger, bcryptCost int) *Service {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	if recorder == nil {
		recorder = audit.NopRecorder{}
	}

	dummy, err := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcryptCost)
	if err != nil {
		logger.Warn("failed to prepare dummy password hash", zap.Error(err))
	}

	return &Service{
		users:      users,
		txMgr:      txMgr,
		audit:      recorder,
		logger:     logger,
		bcryptCost: bcryptCost,
		dummyHash:  dummy,
	}
}

// NormalizeEmail lowercases and trims an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a new account holding the default roles
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	email := NormalizeEmail(in.Email)
	name := strings.TrimSpace(in.Name)
	if email == "" || name == "" || in.Password == "" {
		return nil, services.ErrInvalidInput
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, services.NewDomainError(services.ErrorTypeValidation, "password is too long", err)
		}
		return nil, services.WrapInternal("failed to hash password", err)
	}

	user := models.NewUser(name, email, string(hash), DefaultRoles...)

	err = services.WithTransaction(ctx, s.txMgr, func(ctx context.Context, _ repositories.Transaction) error {
		if err := s.users.Create(ctx, user); err != nil {
			return err
		}
		return s.users.SetRoles(ctx, user.ID, user.Roles)
	})
	if err != nil {
		return nil, services.FromRepository(err, services.ErrUserNotFound, services.ErrDuplicateEmail)
	}

	s.logger.Info("user registered", zap.String("user_id", user.ID.String()))
	s.audit.Record(audit.NewEvent(audit.ActionUserRegistered).WithSubject(user.ID))
	return user, nil
}

// Authenticate verifies an email and password pair. Unknown emails and wrong
// passwords return the same error.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	email = NormalizeEmail(email)

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, repositories.ErrNotFound) {
			return nil, services.WrapInternal("failed to load user", err)
		}
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		s.audit.Record(audit.NewEvent(audit.ActionLoginFailed).WithDetail("reason", "unknown_email"))
		return nil, services.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.audit.Record(audit.NewEvent(audit.ActionLoginFailed).WithSubject(user.ID).WithDetail("reason", "bad_password"))
		return nil, services.ErrInvalidCredentials
	}

	s.audit.Record(audit.NewEvent(audit.ActionLoginSucceeded).WithActor(user.ID))
	return user, nil
}

// CurrentUser loads the user behind an authenticated request. A user deleted after
// the token was issued yields an unauthorized error.
func (s *Service) CurrentUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, services.NewDomainError(services.ErrorTypeUnauthorized, "session user no longer exists", err)
		}
		return nil, services.WrapInternal("failed to load user", err)
	}
	return user, nil
}

// ListUsers returns a page of users
func (s *Service) ListUsers(ctx context.Context, limit, offset int) ([]*models.User, error) {
	users, err := s.users.List(ctx, limit, offset)
	if err != nil {
		return nil, services.FromRepository(err, nil, nil)
	}
	return users, nil
}

// SetRoles replaces a user's roles. The set must be non-empty and contain only
// known roles.
func (s *Service) SetRoles(ctx context.Context, actorID, userID uuid.UUID, roles []rbac.Role) (*models.User, error) {
	for _, r := range roles {
		if !r.Valid() {
			return nil, services.NewDomainError(services.ErrorTypeValidation, services.ErrInvalidRole.Message, nil).
				WithDetail("role", string(r))
		}
	}
	roles = rbac.Normalize(roles)
	if len(roles) == 0 {
		return nil, services.ErrEmptyRoleSet
	}

	var before []rbac.Role
	user, err := services.WithTransactionResult(ctx, s.txMgr, func(ctx context.Context, _ repositories.Transaction) (*models.User, error) {
		current, err := s.users.GetByID(ctx, userID)
		if err != nil {
			return nil, err
		}
		before = current.Roles

		if err := s.users.SetRoles(ctx, userID, roles); err != nil {
			return nil, err
		}
		return s.users.GetByID(ctx, userID)
	})
	if err != nil {
		return nil, services.FromRepository(err, services.ErrUserNotFound, nil)
	}

	s.logger.Info("user roles updated",
		zap.String("user_id", userID.String()),
		zap.String("actor_id", actorID.String()),
		zap.Strings("roles", rbac.Strings(roles)))
	s.audit.Record(audit.RolesChanged(actorID, userID, before, roles))
	return user, nil
}
