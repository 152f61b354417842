package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/upb/conference-portal/internal/rbac"
	"github.com/upb/conference-portal/models"
)

var (
	// ErrNotFound is returned when a row does not exist
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a write violates a uniqueness constraint
	ErrConflict = errors.New("already exists")
)

// TransactionManager manages database transactions
type TransactionManager interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) (Transaction, error)

	// InTransaction executes a function within a transaction
	// Automatically commits if function succeeds, rolls back on error
	InTransaction(ctx context.Context, fn func(ctx context.Context, tx Transaction) error) error
}

// Transaction represents a database transaction
type Transaction interface {
	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Context returns the transaction context
	Context() context.Context
}

// UserRepository handles user and role membership data
type UserRepository interface {
	// Create inserts the user row. Roles are stored separately with SetRoles.
	Create(ctx context.Context, user *models.User) error

	// GetByID retrieves a user with its roles
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)

	// GetByEmail retrieves a user with its roles by email
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// List retrieves users with pagination
	List(ctx context.Context, limit, offset int) ([]*models.User, error)

	// SetRoles replaces the user's role set
	SetRoles(ctx context.Context, userID uuid.UUID, roles []rbac.Role) error

	// Delete deletes a user
	Delete(ctx context.Context, id uuid.UUID) error
}

// ConferenceRepository handles conference data operations
type ConferenceRepository interface {
	Create(ctx context.Context, conf *models.Conference) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Conference, error)
	List(ctx context.Context, filter models.ConferenceFilter) ([]*models.Conference, error)
	Update(ctx context.Context, conf *models.Conference) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// RegistrationRepository handles participant registrations
type RegistrationRepository interface {
	// Create fails with ErrConflict when the user is already registered
	Create(ctx context.Context, reg *models.Registration) error
	ListByConference(ctx context.Context, conferenceID uuid.UUID, limit, offset int) ([]*models.Registration, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.Registration, error)
}

// SubmissionRepository handles paper submissions
type SubmissionRepository interface {
	Create(ctx context.Context, sub *models.Submission) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Submission, error)
	ListByConference(ctx context.Context, conferenceID uuid.UUID, limit, offset int) ([]*models.Submission, error)
	ListByAuthor(ctx context.Context, authorID uuid.UUID, limit, offset int) ([]*models.Submission, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.SubmissionStatus) error
}

// EvaluationRepository handles evaluator assignments and scores
type EvaluationRepository interface {
	// Create fails with ErrConflict when the evaluator is already assigned
	Create(ctx context.Context, eval *models.Evaluation) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Evaluation, error)
	ListByEvaluator(ctx context.Context, evaluatorID uuid.UUID, limit, offset int) ([]*models.Evaluation, error)
	Update(ctx context.Context, eval *models.Evaluation) error
}

// AuditRepository persists the audit trail
type AuditRepository interface {
	Insert(ctx context.Context, entry *models.AuditLog) error
}

// Repositories aggregates all repository interfaces
type Repositories struct {
	Users         UserRepository
	Conferences   ConferenceRepository
	Registrations RegistrationRepository
	Submissions   SubmissionRepository
	Evaluations   EvaluationRepository
	Audit         AuditRepository
}
