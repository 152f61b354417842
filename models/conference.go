package models

import (
	"time"

	"github.com/google/uuid"
)

// ConferenceStatus tracks the lifecycle of a conference
type ConferenceStatus string

const (
	ConferenceStatusDraft  ConferenceStatus = "DRAFT"
	ConferenceStatusOpen   ConferenceStatus = "OPEN"
	ConferenceStatusClosed ConferenceStatus = "CLOSED"
)

// Valid reports whether s is a known status
func (s ConferenceStatus) Valid() bool {
	switch s {
	case ConferenceStatusDraft, ConferenceStatusOpen, ConferenceStatusClosed:
		return true
	}
	return false
}

// Conference represents an event that accepts submissions and registrations
type Conference struct {
	ID          uuid.UUID        `json:"id" db:"id"`
	Title       string           `json:"title" db:"title"`
	Description string           `json:"description" db:"description"`
	Location    string           `json:"location" db:"location"`
	StartsAt    time.Time        `json:"starts_at" db:"starts_at"`
	EndsAt      time.Time        `json:"ends_at" db:"ends_at"`
	Status      ConferenceStatus `json:"status" db:"status"`
	CreatedBy   uuid.UUID        `json:"created_by" db:"created_by"`
	CreatedAt   time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at" db:"updated_at"`
}

// TableName returns the table name for the Conference model
func (Conference) TableName() string {
	return "conferences"
}

// NewConference creates a new draft Conference
func NewConference(title, description, location string, startsAt, endsAt time.Time, createdBy uuid.UUID) *Conference {
	now := time.Now()
	return &Conference{
		ID:          uuid.New(),
		Title:       title,
		Description: description,
		Location:    location,
		StartsAt:    startsAt,
		EndsAt:      endsAt,
		Status:      ConferenceStatusDraft,
		CreatedBy:   createdBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// AcceptsSubmissions returns true while the call for papers is open
func (c *Conference) AcceptsSubmissions() bool {
	return c.Status == ConferenceStatusOpen
}

// ConferenceFilter narrows conference listings
type ConferenceFilter struct {
	Status *ConferenceStatus
	Limit  int
	Offset int
}
