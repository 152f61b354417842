package models

import (
	"time"

	"github.com/google/uuid"
)

// SubmissionStatus tracks a paper through review
type SubmissionStatus string

const (
	SubmissionStatusSubmitted   SubmissionStatus = "SUBMITTED"
	SubmissionStatusUnderReview SubmissionStatus = "UNDER_REVIEW"
	SubmissionStatusAccepted    SubmissionStatus = "ACCEPTED"
	SubmissionStatusRejected    SubmissionStatus = "REJECTED"
)

// Submission is a paper an author submits to a conference
type Submission struct {
	ID           uuid.UUID        `json:"id" db:"id"`
	ConferenceID uuid.UUID        `json:"conference_id" db:"conference_id"`
	AuthorID     uuid.UUID        `json:"author_id" db:"author_id"`
	Title        string           `json:"title" db:"title"`
	Abstract     string           `json:"abstract" db:"abstract"`
	Status       SubmissionStatus `json:"status" db:"status"`
	CreatedAt    time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at" db:"updated_at"`
}

// TableName returns the table name for the Submission model
func (Submission) TableName() string {
	return "submissions"
}

// NewSubmission creates a new Submission instance
func NewSubmission(conferenceID, authorID uuid.UUID, title, abstract string) *Submission {
	now := time.Now()
	return &Submission{
		ID:           uuid.New(),
		ConferenceID: conferenceID,
		AuthorID:     authorID,
		Title:        title,
		Abstract:     abstract,
		Status:       SubmissionStatusSubmitted,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
