// Package mocks provides testify mocks of the repository interfaces for service
// and handler tests.
package mocks

import (
	"context"
	"database/sql"
	"sync"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/upb/conference-portal/internal/rbac"
	"github.com/upb/conference-portal/models"
	"github.com/upb/conference-portal/repositories"
)

// TxManager runs transactional callbacks inline without a database and counts
// how each transaction ended
type TxManager struct {
	mu        sync.Mutex
	begins    int
	commits   int
	rollbacks int
}

func (m *TxManager) Begin(ctx context.Context) (repositories.Transaction, error) {
	m.mu.Lock()
	m.begins++
	m.mu.Unlock()
	return &tx{ctx: ctx, mgr: m}, nil
}

func (m *TxManager) InTransaction(ctx context.Context, fn func(ctx context.Context, tx repositories.Transaction) error) error {
	t, _ := m.Begin(ctx)
	if err := fn(t.Context(), t); err != nil {
		_ = t.Rollback()
		return err
	}
	return t.Commit()
}

// Begins returns the number of transactions started
func (m *TxManager) Begins() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.begins
}

// Commits returns the number of committed transactions
func (m *TxManager) Commits() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.commits
}

// Rollbacks returns the number of rolled back transactions
func (m *TxManager) Rollbacks() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rollbacks
}

type tx struct {
	ctx  context.Context
	mgr  *TxManager
	done bool
}

func (t *tx) Commit() error {
	t.mgr.mu.Lock()
	defer t.mgr.mu.Unlock()
	if t.done {
		return sql.ErrTxDone
	}
	t.done = true
	t.mgr.commits++
	return nil
}

func (t *tx) Rollback() error {
	t.mgr.mu.Lock()
	defer t.mgr.mu.Unlock()
	if t.done {
		return nil
	}
	t.done = true
	t.mgr.rollbacks++
	return nil
}

func (t *tx) Context() context.Context { return t.ctx }

// UserRepository is a mock implementation of repositories.UserRepository
type UserRepository struct {
	mock.Mock
}

func (m *UserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if user := args.Get(0); user != nil {
		return user.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if user := args.Get(0); user != nil {
		return user.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *UserRepository) List(ctx context.Context, limit, offset int) ([]*models.User, error) {
	args := m.Called(ctx, limit, offset)
	if users := args.Get(0); users != nil {
		return users.([]*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *UserRepository) SetRoles(ctx context.Context, userID uuid.UUID, roles []rbac.Role) error {
	args := m.Called(ctx, userID, roles)
	return args.Error(0)
}

func (m *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// ConferenceRepository is a mock implementation of repositories.ConferenceRepository
type ConferenceRepository struct {
	mock.Mock
}

func (m *ConferenceRepository) Create(ctx context.Context, conf *models.Conference) error {
	args := m.Called(ctx, conf)
	return args.Error(0)
}

func (m *ConferenceRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Conference, error) {
	args := m.Called(ctx, id)
	if conf := args.Get(0); conf != nil {
		return conf.(*models.Conference), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ConferenceRepository) List(ctx context.Context, filter models.ConferenceFilter) ([]*models.Conference, error) {
	args := m.Called(ctx, filter)
	if confs := args.Get(0); confs != nil {
		return confs.([]*models.Conference), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ConferenceRepository) Update(ctx context.Context, conf *models.Conference) error {
	args := m.Called(ctx, conf)
	return args.Error(0)
}

func (m *ConferenceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// RegistrationRepository is a mock implementation of repositories.RegistrationRepository
type RegistrationRepository struct {
	mock.Mock
}

func (m *RegistrationRepository) Create(ctx context.Context, reg *models.Registration) error {
	args := m.Called(ctx, reg)
	return args.Error(0)
}

func (m *RegistrationRepository) ListByConference(ctx context.Context, conferenceID uuid.UUID, limit, offset int) ([]*models.Registration, error) {
	args := m.Called(ctx, conferenceID, limit, offset)
	if regs := args.Get(0); regs != nil {
		return regs.([]*models.Registration), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *RegistrationRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.Registration, error) {
	args := m.Called(ctx, userID, limit, offset)
	if regs := args.Get(0); regs != nil {
		return regs.([]*models.Registration), args.Error(1)
	}
	return nil, args.Error(1)
}

// SubmissionRepository is a mock implementation of repositories.SubmissionRepository
type SubmissionRepository struct {
	mock.Mock
}

func (m *SubmissionRepository) Create(ctx context.Context, sub *models.Submission) error {
	args := m.Called(ctx, sub)
	return args.Error(0)
}

func (m *SubmissionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Submission, error) {
	args := m.Called(ctx, id)
	if sub := args.Get(0); sub != nil {
		return sub.(*models.Submission), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *SubmissionRepository) ListByConference(ctx context.Context, conferenceID uuid.UUID, limit, offset int) ([]*models.Submission, error) {
	args := m.Called(ctx, conferenceID, limit, offset)
	if subs := args.Get(0); subs != nil {
		return subs.([]*models.Submission), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *SubmissionRepository) ListByAuthor(ctx context.Context, authorID uuid.UUID, limit, offset int) ([]*models.Submission, error) {
	args := m.Called(ctx, authorID, limit, offset)
	if subs := args.Get(0); subs != nil {
		return subs.([]*models.Submission), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *SubmissionRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.SubmissionStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

// EvaluationRepository is a mock implementation of repositories.EvaluationRepository
type EvaluationRepository struct {
	mock.Mock
}

func (m *EvaluationRepository) Create(ctx context.Context, eval *models.Evaluation) error {
	args := m.Called(ctx, eval)
	return args.Error(0)
}

func (m *EvaluationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Evaluation, error) {
	args := m.Called(ctx, id)
	if eval := args.Get(0); eval != nil {
		return eval.(*models.Evaluation), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *EvaluationRepository) ListByEvaluator(ctx context.Context, evaluatorID uuid.UUID, limit, offset int) ([]*models.Evaluation, error) {
	args := m.Called(ctx, evaluatorID, limit, offset)
	if evals := args.Get(0); evals != nil {
		return evals.([]*models.Evaluation), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *EvaluationRepository) Update(ctx context.Context, eval *models.Evaluation) error {
	args := m.Called(ctx, eval)
	return args.Error(0)
}

// AuditRepository is a mock implementation of repositories.AuditRepository
type AuditRepository struct {
	mock.Mock
}

func (m *AuditRepository) Insert(ctx context.Context, entry *models.AuditLog) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}
