package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AuditLog is a persisted audit trail entry
type AuditLog struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	Action    string          `json:"action" db:"action"`
	ActorID   *uuid.UUID      `json:"actor_id,omitempty" db:"actor_id"`
	SubjectID *uuid.UUID      `json:"subject_id,omitempty" db:"subject_id"`
	Details   json.RawMessage `json:"details,omitempty" db:"details"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}

// TableName returns the table name for the AuditLog model
func (AuditLog) TableName() string {
	return "audit_logs"
}
