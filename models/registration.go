package models

import (
	"time"

	"github.com/google/uuid"
)

// RegistrationStatus tracks a participant's attendance
type RegistrationStatus string

const (
	RegistrationStatusRegistered RegistrationStatus = "REGISTERED"
	RegistrationStatusCancelled  RegistrationStatus = "CANCELLED"
)

// Registration links a participant to a conference
type Registration struct {
	ID           uuid.UUID          `json:"id" db:"id"`
	ConferenceID uuid.UUID          `json:"conference_id" db:"conference_id"`
	UserID       uuid.UUID          `json:"user_id" db:"user_id"`
	Status       RegistrationStatus `json:"status" db:"status"`
	CreatedAt    time.Time          `json:"created_at" db:"created_at"`
}

// TableName returns the table name for the Registration model
func (Registration) TableName() string {
	return "registrations"
}

// NewRegistration creates a new Registration instance
func NewRegistration(conferenceID, userID uuid.UUID) *Registration {
	return &Registration{
		ID:           uuid.New(),
		ConferenceID: conferenceID,
		UserID:       userID,
		Status:       RegistrationStatusRegistered,
		CreatedAt:    time.Now(),
	}
}
