// Package conference manages conferences and participant registrations.
package conference

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/upb/conference-portal/models"
	"github.com/upb/conference-portal/repositories"
	"github.com/upb/conference-portal/services"
	"github.com/upb/conference-portal/services/audit"
	"go.uber.org/zap"
)

// Input carries the editable fields of a conference
type Input struct {
	Title       string
	Description string
	Location    string
	StartsAt    time.Time
	EndsAt      time.Time
	// Status is optional on create (defaults to DRAFT)
	Status models.ConferenceStatus
}

func (in Input) validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return services.NewDomainError(services.ErrorTypeValidation, "title is required", nil).
			WithDetail("field", "title")
	}
	if in.EndsAt.Before(in.StartsAt) {
		return services.ErrInvalidDateRange
	}
	if in.Status != "" && !in.Status.Valid() {
		return services.NewDomainError(services.ErrorTypeValidation, services.ErrInvalidStatus.Message, nil).
			WithDetail("status", string(in.Status))
	}
	return nil
}

// Service implements conference operations
type Service struct {
	conferences   repositories.ConferenceRepository
	registrations repositories.RegistrationRepository
	audit         audit.Recorder
	logger        *zap.Logger
}

// NewService creates a new conference service
func NewService(conferences repositories.ConferenceRepository, registrations repositories.RegistrationRepository, recorder audit.Recorder, logger *zap.Logger) *Service {
	if recorder == nil {
		recorder = audit.NopRecorder{}
	}
	return &Service{
		conferences:   conferences,
		registrations: registrations,
		audit:         recorder,
		logger:        logger,
	}
}

// Create creates a conference owned by createdBy
func (s *Service) Create(ctx context.Context, createdBy uuid.UUID, in Input) (*models.Conference, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	conf := models.NewConference(strings.TrimSpace(in.Title), in.Description, in.Location, in.StartsAt, in.EndsAt, createdBy)
	if in.Status != "" {
		conf.Status = in.Status
	}

	if err := s.conferences.Create(ctx, conf); err != nil {
		return nil, services.FromRepository(err, services.ErrUserNotFound, nil)
	}

	s.logger.Info("conference created",
		zap.String("conference_id", conf.ID.String()),
		zap.String("created_by", createdBy.String()))
	return conf, nil
}

// Get returns a conference by ID
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Conference, error) {
	conf, err := s.conferences.GetByID(ctx, id)
	if err != nil {
		return nil, services.FromRepository(err, services.ErrConferenceNotFound, nil)
	}
	return conf, nil
}

// List returns conferences matching the filter
func (s *Service) List(ctx context.Context, filter models.ConferenceFilter) ([]*models.Conference, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, services.NewDomainError(services.ErrorTypeValidation, services.ErrInvalidStatus.Message, nil).
			WithDetail("status", string(*filter.Status))
	}
	confs, err := s.conferences.List(ctx, filter)
	if err != nil {
		return nil, services.FromRepository(err, nil, nil)
	}
	return confs, nil
}

// Update replaces the editable fields of a conference
func (s *Service) Update(ctx context.Context, id uuid.UUID, in Input) (*models.Conference, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	conf, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	conf.Title = strings.TrimSpace(in.Title)
	conf.Description = in.Description
	conf.Location = in.Location
	conf.StartsAt = in.StartsAt
	conf.EndsAt = in.EndsAt
	if in.Status != "" {
		conf.Status = in.Status
	}
	conf.UpdatedAt = time.Now()

	if err := s.conferences.Update(ctx, conf); err != nil {
		return nil, services.FromRepository(err, services.ErrConferenceNotFound, nil)
	}
	return conf, nil
}

// Delete removes a conference
func (s *Service) Delete(ctx context.Context, actorID, id uuid.UUID) error {
	if err := s.conferences.Delete(ctx, id); err != nil {
		return services.FromRepository(err, services.ErrConferenceNotFound, nil)
	}

	s.logger.Info("conference deleted", zap.String("conference_id", id.String()))
	s.audit.Record(audit.NewEvent(audit.ActionConferenceDeleted).WithActor(actorID).WithSubject(id))
	return nil
}

// Register signs a participant up for a conference. Closed conferences and
// repeated registrations are rejected.
func (s *Service) Register(ctx context.Context, conferenceID, userID uuid.UUID) (*models.Registration, error) {
	conf, err := s.Get(ctx, conferenceID)
	if err != nil {
		return nil, err
	}
	if conf.Status == models.ConferenceStatusClosed {
		return nil, services.NewDomainError(services.ErrorTypeValidation, "conference is closed for registration", nil)
	}

	reg := models.NewRegistration(conferenceID, userID)
	if err := s.registrations.Create(ctx, reg); err != nil {
		return nil, services.FromRepository(err, services.ErrConferenceNotFound, services.ErrAlreadyRegistered)
	}

	s.logger.Debug("participant registered",
		zap.String("conference_id", conferenceID.String()),
		zap.String("user_id", userID.String()))
	return reg, nil
}

// Registrations lists the registrations of a conference
func (s *Service) Registrations(ctx context.Context, conferenceID uuid.UUID, limit, offset int) ([]*models.Registration, error) {
	if _, err := s.Get(ctx, conferenceID); err != nil {
		return nil, err
	}
	regs, err := s.registrations.ListByConference(ctx, conferenceID, limit, offset)
	if err != nil {
		return nil, services.FromRepository(err, nil, nil)
	}
	return regs, nil
}

// MyRegistrations lists the registrations of a user
func (s *Service) MyRegistrations(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.Registration, error) {
	regs, err := s.registrations.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, services.FromRepository(err, nil, nil)
	}
	return regs, nil
}
