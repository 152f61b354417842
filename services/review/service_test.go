package review

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/upb/conference-portal/internal/rbac"
	"github.com/upb/conference-portal/models"
	"github.com/upb/conference-portal/repositories"
	"github.com/upb/conference-portal/repositories/mocks"
	"github.com/upb/conference-portal/services"
	"github.com/upb/conference-portal/services/audit"
	"go.uber.org/zap"
)

type fixture struct {
	svc   *Service
	users *mocks.UserRepository
	confs *mocks.ConferenceRepository
	subs  *mocks.SubmissionRepository
	evals *mocks.EvaluationRepository
	txMgr *mocks.TxManager
	audit *recordingAudit
}

type recordingAudit struct {
	events []*audit.Event
}

func (r *recordingAudit) Record(e *audit.Event) {
	r.events = append(r.events, e)
}

func newFixture() *fixture {
	f := &fixture{
		users: new(mocks.UserRepository),
		confs: new(mocks.ConferenceRepository),
		subs:  new(mocks.SubmissionRepository),
		evals: new(mocks.EvaluationRepository),
		txMgr: &mocks.TxManager{},
		audit: &recordingAudit{},
	}
	repos := &repositories.Repositories{
		Users:       f.users,
		Conferences: f.confs,
		Submissions: f.subs,
		Evaluations: f.evals,
	}
	f.svc = NewService(repos, f.txMgr, f.audit, zap.NewNop())
	return f
}

func openConference() *models.Conference {
	start := time.Date(2026, 11, 2, 9, 0, 0, 0, time.UTC)
	conf := models.NewConference("GopherCon", "", "Berlin", start, start.Add(24*time.Hour), uuid.New())
	conf.Status = models.ConferenceStatusOpen
	return conf
}

func TestService_Submit(t *testing.T) {
	ctx := context.Background()
	author := uuid.New()

	t.Run("open conference accepts paper", func(t *testing.T) {
		f := newFixture()
		conf := openConference()
		f.confs.On("GetByID", ctx, conf.ID).Return(conf, nil)
		f.subs.On("Create", ctx, mock.MatchedBy(func(s *models.Submission) bool {
			return s.AuthorID == author && s.Title == "Generics in practice"
		})).Return(nil)

		sub, err := f.svc.Submit(ctx, conf.ID, author, SubmitInput{Title: " Generics in practice ", Abstract: "..."})
		require.NoError(t, err)
		assert.Equal(t, models.SubmissionStatusSubmitted, sub.Status)
		f.subs.AssertExpectations(t)
	})

	t.Run("draft conference rejects paper", func(t *testing.T) {
		f := newFixture()
		conf := openConference()
		conf.Status = models.ConferenceStatusDraft
		f.confs.On("GetByID", ctx, conf.ID).Return(conf, nil)

		_, err := f.svc.Submit(ctx, conf.ID, author, SubmitInput{Title: "Late"})
		assert.Equal(t, services.ErrSubmissionsClosed, err)
		f.subs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("unknown conference", func(t *testing.T) {
		f := newFixture()
		id := uuid.New()
		f.confs.On("GetByID", ctx, id).Return(nil, fmt.Errorf("conference %w", repositories.ErrNotFound))

		_, err := f.svc.Submit(ctx, id, author, SubmitInput{Title: "Paper"})
		assert.True(t, services.IsNotFoundError(err))
	})

	t.Run("blank title", func(t *testing.T) {
		f := newFixture()
		_, err := f.svc.Submit(ctx, uuid.New(), author, SubmitInput{Title: "  "})
		assert.True(t, services.IsValidationError(err))
		f.confs.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})
}

func TestService_AssignEvaluator(t *testing.T) {
	ctx := context.Background()
	actor := uuid.New()

	setup := func(evaluatorRoles ...rbac.Role) (*fixture, *models.Submission, *models.User) {
		f := newFixture()
		sub := models.NewSubmission(uuid.New(), uuid.New(), "Paper", "")
		evaluator := models.NewUser("Eve", "eve@example.com", "hash", evaluatorRoles...)
		f.subs.On("GetByID", ctx, sub.ID).Return(sub, nil)
		f.users.On("GetByID", ctx, evaluator.ID).Return(evaluator, nil)
		return f, sub, evaluator
	}

	t.Run("assigns panel evaluator", func(t *testing.T) {
		f, sub, evaluator := setup(rbac.RolePanelEvaluator)
		f.evals.On("Create", ctx, mock.MatchedBy(func(e *models.Evaluation) bool {
			return e.SubmissionID == sub.ID && e.EvaluatorID == evaluator.ID
		})).Return(nil)
		f.subs.On("UpdateStatus", ctx, sub.ID, models.SubmissionStatusUnderReview).Return(nil)

		eval, err := f.svc.AssignEvaluator(ctx, actor, sub.ID, evaluator.ID)
		require.NoError(t, err)
		assert.Equal(t, models.EvaluationStatusPending, eval.Status)
		assert.Equal(t, 1, f.txMgr.Begins())
		assert.Equal(t, 1, f.txMgr.Commits())
		assert.Zero(t, f.txMgr.Rollbacks())
		f.subs.AssertExpectations(t)

		require.Len(t, f.audit.events, 1)
		assert.Equal(t, audit.ActionEvaluatorAssigned, f.audit.events[0].Action)
	})

	t.Run("user without evaluator role", func(t *testing.T) {
		f, sub, evaluator := setup(rbac.RoleAuthor)

		_, err := f.svc.AssignEvaluator(ctx, actor, sub.ID, evaluator.ID)
		assert.Equal(t, services.ErrEvaluatorNotEligible, err)
		f.evals.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		assert.Empty(t, f.audit.events)
	})

	t.Run("evaluator already assigned", func(t *testing.T) {
		f, sub, evaluator := setup(rbac.RolePanelEvaluator)
		f.evals.On("Create", ctx, mock.Anything).Return(fmt.Errorf("evaluation %w", repositories.ErrConflict))

		_, err := f.svc.AssignEvaluator(ctx, actor, sub.ID, evaluator.ID)
		assert.True(t, errors.Is(err, services.ErrEvaluatorAssigned))
		f.subs.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
		assert.Equal(t, 1, f.txMgr.Rollbacks())
		assert.Zero(t, f.txMgr.Commits())
		assert.Empty(t, f.audit.events)
	})

	t.Run("submission already under review keeps status", func(t *testing.T) {
		f, sub, evaluator := setup(rbac.RolePanelEvaluator)
		sub.Status = models.SubmissionStatusUnderReview
		f.evals.On("Create", ctx, mock.Anything).Return(nil)

		_, err := f.svc.AssignEvaluator(ctx, actor, sub.ID, evaluator.ID)
		require.NoError(t, err)
		f.subs.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestService_UpdateEvaluation(t *testing.T) {
	ctx := context.Background()
	evaluator := uuid.New()

	t.Run("assigned evaluator scores", func(t *testing.T) {
		f := newFixture()
		eval := models.NewEvaluation(uuid.New(), evaluator)
		f.evals.On("GetByID", ctx, eval.ID).Return(eval, nil)
		f.evals.On("Update", ctx, eval).Return(nil)

		got, err := f.svc.UpdateEvaluation(ctx, evaluator, eval.ID, 8, "solid")
		require.NoError(t, err)
		require.NotNil(t, got.Score)
		assert.Equal(t, 8, *got.Score)
		assert.Equal(t, models.EvaluationStatusCompleted, got.Status)
	})

	t.Run("other evaluator is forbidden", func(t *testing.T) {
		f := newFixture()
		eval := models.NewEvaluation(uuid.New(), uuid.New())
		f.evals.On("GetByID", ctx, eval.ID).Return(eval, nil)

		_, err := f.svc.UpdateEvaluation(ctx, evaluator, eval.ID, 5, "")
		assert.True(t, services.IsForbiddenError(err))
		f.evals.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	for _, score := range []int{0, 11, -3} {
		t.Run(fmt.Sprintf("score %d out of range", score), func(t *testing.T) {
			f := newFixture()
			_, err := f.svc.UpdateEvaluation(ctx, evaluator, uuid.New(), score, "")
			assert.True(t, errors.Is(err, services.ErrInvalidScore))
			f.evals.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
		})
	}

	t.Run("missing evaluation", func(t *testing.T) {
		f := newFixture()
		id := uuid.New()
		f.evals.On("GetByID", ctx, id).Return(nil, fmt.Errorf("evaluation %w", repositories.ErrNotFound))

		_, err := f.svc.UpdateEvaluation(ctx, evaluator, id, 5, "")
		assert.True(t, services.IsNotFoundError(err))
	})
}

func TestService_Listings(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	author := uuid.New()
	evaluator := uuid.New()

	f.subs.On("ListByAuthor", ctx, author, 50, 0).Return([]*models.Submission{}, nil)
	f.evals.On("ListByEvaluator", ctx, evaluator, 50, 0).Return(nil, errors.New("connection reset"))

	subs, err := f.svc.MySubmissions(ctx, author, 50, 0)
	require.NoError(t, err)
	assert.Empty(t, subs)

	_, err = f.svc.MyEvaluations(ctx, evaluator, 50, 0)
	assert.True(t, services.IsInternalError(err))
}
