package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/upb/conference-portal/models"
	"github.com/upb/conference-portal/repositories"
	"go.uber.org/zap"
)

// RegistrationRepository implements the repositories.RegistrationRepository interface
type RegistrationRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewRegistrationRepository creates a new registration repository
func NewRegistrationRepository(db *DB, logger *zap.Logger) repositories.RegistrationRepository {
	return &RegistrationRepository{
		db:     db,
		logger: logger,
	}
}

// Create registers a user for a conference
func (r *RegistrationRepository) Create(ctx context.Context, reg *models.Registration) error {
	query := `
		INSERT INTO registrations (id, conference_id, user_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	executor := GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, query,
		reg.ID,
		reg.ConferenceID,
		reg.UserID,
		reg.Status,
		reg.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create registration: %w", translateError(err, "registration"))
	}

	r.logger.Debug("registration created",
		zap.String("conference_id", reg.ConferenceID.String()),
		zap.String("user_id", reg.UserID.String()))
	return nil
}

// ListByConference retrieves the registrations for a conference
func (r *RegistrationRepository) ListByConference(ctx context.Context, conferenceID uuid.UUID, limit, offset int) ([]*models.Registration, error) {
	query := `
		SELECT id, conference_id, user_id, status, created_at
		FROM registrations
		WHERE conference_id = $1
		ORDER BY created_at ASC
		LIMIT $2 OFFSET $3
	`
	return r.list(ctx, query, conferenceID, limit, offset)
}

// ListByUser retrieves a user's registrations
func (r *RegistrationRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.Registration, error) {
	query := `
		SELECT id, conference_id, user_id, status, created_at
		FROM registrations
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	return r.list(ctx, query, userID, limit, offset)
}

func (r *RegistrationRepository) list(ctx context.Context, query string, id uuid.UUID, limit, offset int) ([]*models.Registration, error) {
	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, id, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query registrations: %w", err)
	}
	defer rows.Close()

	registrations := make([]*models.Registration, 0, limit)
	for rows.Next() {
		reg := &models.Registration{}
		err := rows.Scan(
			&reg.ID,
			&reg.ConferenceID,
			&reg.UserID,
			&reg.Status,
			&reg.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan registration: %w", err)
		}
		registrations = append(registrations, reg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating registration rows: %w", err)
	}

	return registrations, nil
}
