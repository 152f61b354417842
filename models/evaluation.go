package models

import (
	"time"

	"github.com/google/uuid"
)

// EvaluationStatus tracks an evaluator's assignment
type EvaluationStatus string

const (
	EvaluationStatusPending   EvaluationStatus = "PENDING"
	EvaluationStatusCompleted EvaluationStatus = "COMPLETED"
)

const (
	MinEvaluationScore = 1
	MaxEvaluationScore = 10
)

// Evaluation is a panel evaluator's review of one submission
type Evaluation struct {
	ID           uuid.UUID        `json:"id" db:"id"`
	SubmissionID uuid.UUID        `json:"submission_id" db:"submission_id"`
	EvaluatorID  uuid.UUID        `json:"evaluator_id" db:"evaluator_id"`
	Score        *int             `json:"score,omitempty" db:"score"`
	Comments     string           `json:"comments" db:"comments"`
	Status       EvaluationStatus `json:"status" db:"status"`
	CreatedAt    time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at" db:"updated_at"`
}

// TableName returns the table name for the Evaluation model
func (Evaluation) TableName() string {
	return "evaluations"
}

// NewEvaluation creates a pending Evaluation assignment
func NewEvaluation(submissionID, evaluatorID uuid.UUID) *Evaluation {
	now := time.Now()
	return &Evaluation{
		ID:           uuid.New(),
		SubmissionID: submissionID,
		EvaluatorID:  evaluatorID,
		Status:       EvaluationStatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Complete records the score and comments
func (e *Evaluation) Complete(score int, comments string) {
	e.Score = &score
	e.Comments = comments
	e.Status = EvaluationStatusCompleted
	e.UpdatedAt = time.Now()
}
