package handlers

import (
	"fmt"
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
	"github.com/upb/conference-portal/services/review"
	"go.uber.org/zap"
)

func TestReviewHandler_Submit(t *testing.T) {
	author := &middleware.Claims{UserID: uuid.New(), Roles: []rbac.Role{rbac.RoleAuthor}}
	confID := uuid.New()
	path := fmt.Sprintf("/conferences/%s/submissions", confID)

	t.Run("accepted", func(t *testing.T) {
		svc := new(MockReviewService)
		h := NewReviewHandler(svc, zap.NewNop())
		svc.On("Submit", mock.Anything, confID, author.UserID, review.SubmitInput{Title: "Paper", Abstract: "A"}).
			Return(models.NewSubmission(confID, author.UserID, "Paper", "A"), nil)

		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(`{"title":"Paper","abstract":"A"}`))
		w := serve(http.MethodPost, "/conferences/{id}/submissions", h.HandleSubmit, req, author)
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("closed conference", func(t *testing.T) {
		svc := new(MockReviewService)
		h := NewReviewHandler(svc, zap.NewNop())
		svc.On("Submit", mock.Anything, confID, author.UserID, mock.Anything).Return(nil, services.ErrSubmissionsClosed)

		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(`{"title":"Paper"}`))
		w := serve(http.MethodPost, "/conferences/{id}/submissions", h.HandleSubmit, req, author)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "not accepting submissions")
	})
}

func TestReviewHandler_AssignEvaluator(t *testing.T) {
	actor := organizer()
	subID := uuid.New()
	evaluatorID := uuid.New()
	path := fmt.Sprintf("/submissions/%s/evaluators", subID)

	t.Run("assigned", func(t *testing.T) {
		svc := new(MockReviewService)
		h := NewReviewHandler(svc, zap.NewNop())
		svc.On("AssignEvaluator", mock.Anything, actor.UserID, subID, evaluatorID).
			Return(models.NewEvaluation(subID, evaluatorID), nil)

		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(fmt.Sprintf(`{"evaluator_id":%q}`, evaluatorID)))
		w := serve(http.MethodPost, "/submissions/{id}/evaluators", h.HandleAssignEvaluator, req, actor)
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("malformed evaluator id", func(t *testing.T) {
		svc := new(MockReviewService)
		h := NewReviewHandler(svc, zap.NewNop())

		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(`{"evaluator_id":"eve"}`))
		w := serve(http.MethodPost, "/submissions/{id}/evaluators", h.HandleAssignEvaluator, req, actor)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "evaluator_id must be a valid UUID")
		svc.AssertNotCalled(t, "AssignEvaluator", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestReviewHandler_UpdateEvaluation(t *testing.T) {
	evaluator := &middleware.Claims{UserID: uuid.New(), Roles: []rbac.Role{rbac.RolePanelEvaluator}}
	evalID := uuid.New()
	path := "/evaluations/" + evalID.String()

	tests := []struct {
		name       string
		body       string
		serviceErr error
		want       int
	}{
		{"scored", `{"score":7,"comments":"good"}`, nil, http.StatusOK},
		{"score above range", `{"score":11}`, nil, http.StatusBadRequest},
		{"missing score", `{"comments":"?"}`, nil, http.StatusBadRequest},
		{"not the assigned evaluator", `{"score":7,"comments":"good"}`, services.ErrNotAssignedEvaluator, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockReviewService)
			h := NewReviewHandler(svc, zap.NewNop())
			if tt.serviceErr != nil {
				svc.On("UpdateEvaluation", mock.Anything, evaluator.UserID, evalID, 7, "good").Return(nil, tt.serviceErr)
			} else {
				eval := models.NewEvaluation(uuid.New(), evaluator.UserID)
				eval.Complete(7, "good")
				svc.On("UpdateEvaluation", mock.Anything, evaluator.UserID, evalID, 7, "good").Return(eval, nil).Maybe()
			}

			req := httptest.NewRequest(http.MethodPut, path, strings.NewReader(tt.body))
			w := serve(http.MethodPut, "/evaluations/{id}", h.HandleUpdateEvaluation, req, evaluator)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestReviewHandler_Listings(t *testing.T) {
	user := &middleware.Claims{UserID: uuid.New(), Roles: []rbac.Role{rbac.RoleAuthor, rbac.RolePanelEvaluator}}
	svc := new(MockReviewService)
	h := NewReviewHandler(svc, zap.NewNop())

	svc.On("MySubmissions", mock.Anything, user.UserID, 200, 0).Return([]*models.Submission{}, nil)
	svc.On("MyEvaluations", mock.Anything, user.UserID, 50, 5).Return([]*models.Evaluation{}, nil)

	w := serve(http.MethodGet, "/submissions/mine", h.HandleMySubmissions,
		httptest.NewRequest(http.MethodGet, "/submissions/mine?limit=1000", nil), user)
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(http.MethodGet, "/evaluations/mine", h.HandleMyEvaluations,
		httptest.NewRequest(http.MethodGet, "/evaluations/mine?offset=5", nil), user)
	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}
