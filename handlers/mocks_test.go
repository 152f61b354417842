package handlers

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/upb/conference-portal/internal/rbac"
	"github.com/upb/conference-portal/models"
	"github.com/upb/conference-portal/services/conference"
	"github.com/upb/conference-portal/services/review"
)

type MockConferenceService struct {
	mock.Mock
}

func (m *MockConferenceService) Create(ctx context.Context, createdBy uuid.UUID, in conference.Input) (*models.Conference, error) {
	args := m.Called(ctx, createdBy, in)
	if c := args.Get(0); c != nil {
		return c.(*models.Conference), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockConferenceService) Get(ctx context.Context, id uuid.UUID) (*models.Conference, error) {
	args := m.Called(ctx, id)
	if c := args.Get(0); c != nil {
		return c.(*models.Conference), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockConferenceService) List(ctx context.Context, filter models.ConferenceFilter) ([]*models.Conference, error) {
	args := m.Called(ctx, filter)
	if c := args.Get(0); c != nil {
		return c.([]*models.Conference), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockConferenceService) Update(ctx context.Context, id uuid.UUID, in conference.Input) (*models.Conference, error) {
	args := m.Called(ctx, id, in)
	if c := args.Get(0); c != nil {
		return c.(*models.Conference), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockConferenceService) Delete(ctx context.Context, actorID, id uuid.UUID) error {
	return m.Called(ctx, actorID, id).Error(0)
}

func (m *MockConferenceService) Register(ctx context.Context, conferenceID, userID uuid.UUID) (*models.Registration, error) {
	args := m.Called(ctx, conferenceID, userID)
	if r := args.Get(0); r != nil {
		return r.(*models.Registration), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockConferenceService) Registrations(ctx context.Context, conferenceID uuid.UUID, limit, offset int) ([]*models.Registration, error) {
	args := m.Called(ctx, conferenceID, limit, offset)
	if r := args.Get(0); r != nil {
		return r.([]*models.Registration), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockConferenceService) MyRegistrations(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.Registration, error) {
	args := m.Called(ctx, userID, limit, offset)
	if r := args.Get(0); r != nil {
		return r.([]*models.Registration), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockReviewService struct {
	mock.Mock
}

func (m *MockReviewService) Submit(ctx context.Context, conferenceID, authorID uuid.UUID, in review.SubmitInput) (*models.Submission, error) {
	args := m.Called(ctx, conferenceID, authorID, in)
	if s := args.Get(0); s != nil {
		return s.(*models.Submission), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockReviewService) ConferenceSubmissions(ctx context.Context, conferenceID uuid.UUID, limit, offset int) ([]*models.Submission, error) {
	args := m.Called(ctx, conferenceID, limit, offset)
	if s := args.Get(0); s != nil {
		return s.([]*models.Submission), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockReviewService) MySubmissions(ctx context.Context, authorID uuid.UUID, limit, offset int) ([]*models.Submission, error) {
	args := m.Called(ctx, authorID, limit, offset)
	if s := args.Get(0); s != nil {
		return s.([]*models.Submission), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockReviewService) AssignEvaluator(ctx context.Context, actorID, submissionID, evaluatorID uuid.UUID) (*models.Evaluation, error) {
	args := m.Called(ctx, actorID, submissionID, evaluatorID)
	if e := args.Get(0); e != nil {
		return e.(*models.Evaluation), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockReviewService) MyEvaluations(ctx context.Context, evaluatorID uuid.UUID, limit, offset int) ([]*models.Evaluation, error) {
	args := m.Called(ctx, evaluatorID, limit, offset)
	if e := args.Get(0); e != nil {
		return e.([]*models.Evaluation), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockReviewService) UpdateEvaluation(ctx context.Context, evaluatorID, evaluationID uuid.UUID, score int, comments string) (*models.Evaluation, error) {
	args := m.Called(ctx, evaluatorID, evaluationID, score, comments)
	if e := args.Get(0); e != nil {
		return e.(*models.Evaluation), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) ListUsers(ctx context.Context, limit, offset int) ([]*models.User, error) {
	args := m.Called(ctx, limit, offset)
	if u := args.Get(0); u != nil {
		return u.([]*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserService) SetRoles(ctx context.Context, actorID, userID uuid.UUID, roles []rbac.Role) (*models.User, error) {
	args := m.Called(ctx, actorID, userID, roles)
	if u := args.Get(0); u != nil {
		return u.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}
