package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/upb/conference-portal/models"
	"github.com/upb/conference-portal/repositories"
)

// RepositorySink persists events through an AuditRepository
type RepositorySink struct {
	repo repositories.AuditRepository
}

// NewRepositorySink creates a sink backed by repo
func NewRepositorySink(repo repositories.AuditRepository) *RepositorySink {
	return &RepositorySink{repo: repo}
}

// Write implements Sink
func (s *RepositorySink) Write(ctx context.Context, event *Event) error {
	entry := &models.AuditLog{
		ID:        uuid.New(),
		Action:    string(event.Action),
		ActorID:   event.ActorID,
		SubjectID: event.SubjectID,
		CreatedAt: event.At,
	}
	if len(event.Details) > 0 {
		details, err := json.Marshal(event.Details)
		if err != nil {
			return fmt.Errorf("failed to encode audit details: %w", err)
		}
		entry.Details = details
	}
	return s.repo.Insert(ctx, entry)
}

// MultiSink writes every event to each of its sinks
type MultiSink []Sink

// Write implements Sink. Every sink is attempted; failures are joined.
func (m MultiSink) Write(ctx context.Context, event *Event) error {
	var errs []error
	for _, sink := range m {
		if err := sink.Write(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
