// Package review handles paper submissions and their evaluation by the panel.
package review

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/upb/conference-portal/internal/rbac"
	"github.com/upb/conference-portal/models"
	"github.com/upb/conference-portal/repositories"
	"github.com/upb/conference-portal/services"
	"github.com/upb/conference-portal/services/audit"
	"go.uber.org/zap"
)

// SubmitInput carries a new paper
type SubmitInput struct {
	Title    string
	Abstract string
}

// Service implements submission and evaluation operations
type Service struct {
	repos  *repositories.Repositories
	txMgr  repositories.TransactionManager
	audit  audit.Recorder
	logger *zap.Logger
}

// NewService creates a new review service
func NewService(repos *repositories.Repositories, txMgr repositories.TransactionManager, recorder audit.Recorder, logger *zap.Logger) *Service {
	if recorder == nil {
		recorder = audit.NopRecorder{}
	}
	return &Service{
		repos:  repos,
		txMgr:  txMgr,
		audit:  recorder,
		logger: logger,
	}
}

// Submit records a paper for a conference whose call for papers is open
func (s *Service) Submit(ctx context.Context, conferenceID, authorID uuid.UUID, in SubmitInput) (*models.Submission, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, services.NewDomainError(services.ErrorTypeValidation, "title is required", nil).
			WithDetail("field", "title")
	}

	conf, err := s.repos.Conferences.GetByID(ctx, conferenceID)
	if err != nil {
		return nil, services.FromRepository(err, services.ErrConferenceNotFound, nil)
	}
	if !conf.AcceptsSubmissions() {
		return nil, services.ErrSubmissionsClosed
	}

	sub := models.NewSubmission(conferenceID, authorID, title, in.Abstract)
	if err := s.repos.Submissions.Create(ctx, sub); err != nil {
		return nil, services.FromRepository(err, services.ErrConferenceNotFound, nil)
	}

	s.logger.Info("submission created",
		zap.String("submission_id", sub.ID.String()),
		zap.String("conference_id", conferenceID.String()))
	return sub, nil
}

// ConferenceSubmissions lists the submissions of a conference
func (s *Service) ConferenceSubmissions(ctx context.Context, conferenceID uuid.UUID, limit, offset int) ([]*models.Submission, error) {
	if _, err := s.repos.Conferences.GetByID(ctx, conferenceID); err != nil {
		return nil, services.FromRepository(err, services.ErrConferenceNotFound, nil)
	}
	subs, err := s.repos.Submissions.ListByConference(ctx, conferenceID, limit, offset)
	if err != nil {
		return nil, services.FromRepository(err, nil, nil)
	}
	return subs, nil
}

// MySubmissions lists the papers of an author
func (s *Service) MySubmissions(ctx context.Context, authorID uuid.UUID, limit, offset int) ([]*models.Submission, error) {
	subs, err := s.repos.Submissions.ListByAuthor(ctx, authorID, limit, offset)
	if err != nil {
		return nil, services.FromRepository(err, nil, nil)
	}
	return subs, nil
}

// AssignEvaluator creates a pending evaluation for a panel evaluator and moves
// the submission under review.
func (s *Service) AssignEvaluator(ctx context.Context, actorID, submissionID, evaluatorID uuid.UUID) (*models.Evaluation, error) {
	eval, err := services.WithTransactionResult(ctx, s.txMgr, func(ctx context.Context, tx repositories.Transaction) (*models.Evaluation, error) {
		sub, err := s.repos.Submissions.GetByID(ctx, submissionID)
		if err != nil {
			return nil, services.FromRepository(err, services.ErrSubmissionNotFound, nil)
		}

		evaluator, err := s.repos.Users.GetByID(ctx, evaluatorID)
		if err != nil {
			return nil, services.FromRepository(err, services.ErrUserNotFound, nil)
		}
		if !evaluator.HasRole(rbac.RolePanelEvaluator) {
			return nil, services.ErrEvaluatorNotEligible
		}

		eval := models.NewEvaluation(sub.ID, evaluator.ID)
		if err := s.repos.Evaluations.Create(ctx, eval); err != nil {
			return nil, services.FromRepository(err, services.ErrSubmissionNotFound, services.ErrEvaluatorAssigned)
		}

		if sub.Status == models.SubmissionStatusSubmitted {
			if err := s.repos.Submissions.UpdateStatus(ctx, sub.ID, models.SubmissionStatusUnderReview); err != nil {
				return nil, services.FromRepository(err, services.ErrSubmissionNotFound, nil)
			}
		}
		return eval, nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(audit.NewEvent(audit.ActionEvaluatorAssigned).
		WithActor(actorID).
		WithSubject(submissionID).
		WithDetail("evaluator_id", evaluatorID.String()))
	return eval, nil
}

// MyEvaluations lists the evaluations assigned to an evaluator
func (s *Service) MyEvaluations(ctx context.Context, evaluatorID uuid.UUID, limit, offset int) ([]*models.Evaluation, error) {
	evals, err := s.repos.Evaluations.ListByEvaluator(ctx, evaluatorID, limit, offset)
	if err != nil {
		return nil, services.FromRepository(err, nil, nil)
	}
	return evals, nil
}

// UpdateEvaluation scores an evaluation. Only the assigned evaluator may do so.
func (s *Service) UpdateEvaluation(ctx context.Context, evaluatorID, evaluationID uuid.UUID, score int, comments string) (*models.Evaluation, error) {
	if score < models.MinEvaluationScore || score > models.MaxEvaluationScore {
		return nil, services.NewDomainError(services.ErrorTypeValidation, services.ErrInvalidScore.Message, nil).
			WithDetail("score", score)
	}

	eval, err := s.repos.Evaluations.GetByID(ctx, evaluationID)
	if err != nil {
		return nil, services.FromRepository(err, services.ErrEvaluationNotFound, nil)
	}
	if eval.EvaluatorID != evaluatorID {
		s.logger.Debug("evaluation update by another evaluator",
			zap.String("evaluation_id", evaluationID.String()),
			zap.String("evaluator_id", evaluatorID.String()))
		return nil, services.ErrNotAssignedEvaluator
	}

	eval.Complete(score, comments)
	if err := s.repos.Evaluations.Update(ctx, eval); err != nil {
		return nil, services.FromRepository(err, services.ErrEvaluationNotFound, nil)
	}
	return eval, nil
}
