package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/upb/conference-portal/models"
	"github.com/upb/conference-portal/services/review"
	"github.com/upb/conference-portal/utils"
	"go.uber.org/zap"
)

// ReviewService is the review service as seen by the HTTP layer
type ReviewService interface {
	Submit(ctx context.Context, conferenceID, authorID uuid.UUID, in review.SubmitInput) (*models.Submission, error)
	ConferenceSubmissions(ctx context.Context, conferenceID uuid.UUID, limit, offset int) ([]*models.Submission, error)
	MySubmissions(ctx context.Context, authorID uuid.UUID, limit, offset int) ([]*models.Submission, error)
	AssignEvaluator(ctx context.Context, actorID, submissionID, evaluatorID uuid.UUID) (*models.Evaluation, error)
	MyEvaluations(ctx context.Context, evaluatorID uuid.UUID, limit, offset int) ([]*models.Evaluation, error)
	UpdateEvaluation(ctx context.Context, evaluatorID, evaluationID uuid.UUID, score int, comments string) (*models.Evaluation, error)
}

type submissionRequest struct {
	Title    string `json:"title" validate:"required,max=300"`
	Abstract string `json:"abstract" validate:"max=10000"`
}

type assignEvaluatorRequest struct {
	EvaluatorID string `json:"evaluator_id" validate:"required,uuid"`
}

type evaluationRequest struct {
	Score    int    `json:"score" validate:"required,gte=1,lte=10"`
	Comments string `json:"comments" validate:"max=10000"`
}

// ReviewHandler handles submission and evaluation requests
type ReviewHandler struct {
	reviews ReviewService
	logger  *zap.Logger
}

// NewReviewHandler creates a new ReviewHandler
func NewReviewHandler(reviews ReviewService, logger *zap.Logger) *ReviewHandler {
	return &ReviewHandler{
		reviews: reviews,
		logger:  logger,
	}
}

// HandleSubmit handles POST /conferences/{id}/submissions
func (h *ReviewHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	confID, ok := pathID(w, r, "id", h.logger)
	if !ok {
		return
	}
	var req submissionRequest
	if !decodeAndValidate(w, r, &req, h.logger) {
		return
	}

	sub, err := h.reviews.Submit(r.Context(), confID, userID, review.SubmitInput{Title: req.Title, Abstract: req.Abstract})
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteCreated(w, sub)
}

// HandleListByConference handles GET /conferences/{id}/submissions
func (h *ReviewHandler) HandleListByConference(w http.ResponseWriter, r *http.Request) {
	confID, ok := pathID(w, r, "id", h.logger)
	if !ok {
		return
	}
	page := utils.ParsePage(r)

	subs, err := h.reviews.ConferenceSubmissions(r.Context(), confID, page.Limit, page.Offset)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, subs)
}

// HandleMySubmissions handles GET /submissions/mine
func (h *ReviewHandler) HandleMySubmissions(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	page := utils.ParsePage(r)

	subs, err := h.reviews.MySubmissions(r.Context(), userID, page.Limit, page.Offset)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, subs)
}

// HandleAssignEvaluator handles POST /submissions/{id}/evaluators
func (h *ReviewHandler) HandleAssignEvaluator(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	subID, ok := pathID(w, r, "id", h.logger)
	if !ok {
		return
	}
	var req assignEvaluatorRequest
	if !decodeAndValidate(w, r, &req, h.logger) {
		return
	}

	eval, err := h.reviews.AssignEvaluator(r.Context(), userID, subID, uuid.MustParse(req.EvaluatorID))
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteCreated(w, eval)
}

// HandleMyEvaluations handles GET /evaluations/mine
func (h *ReviewHandler) HandleMyEvaluations(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	page := utils.ParsePage(r)

	evals, err := h.reviews.MyEvaluations(r.Context(), userID, page.Limit, page.Offset)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, evals)
}

// HandleUpdateEvaluation handles PUT /evaluations/{id}
func (h *ReviewHandler) HandleUpdateEvaluation(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	evalID, ok := pathID(w, r, "id", h.logger)
	if !ok {
		return
	}
	var req evaluationRequest
	if !decodeAndValidate(w, r, &req, h.logger) {
		return
	}

	eval, err := h.reviews.UpdateEvaluation(r.Context(), userID, evalID, req.Score, req.Comments)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, eval)
}
