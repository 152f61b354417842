package postgres

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/upb/conference-portal/models"
	"github.com/upb/conference-portal/repositories"
	"go.uber.org/zap"
)

// ConferenceRepository implements the repositories.ConferenceRepository interface
type ConferenceRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewConferenceRepository creates a new conference repository
func NewConferenceRepository(db *DB, logger *zap.Logger) repositories.ConferenceRepository {
	return &ConferenceRepository{
		db:     db,
		logger: logger,
	}
}

var conferenceColumns = []string{
	"id",
	"title",
	"description",
	"location",
	"starts_at",
	"ends_at",
	"status",
	"created_by",
	"created_at",
	"updated_at",
}

func scanConference(row rowScanner) (*models.Conference, error) {
	conf := &models.Conference{}
	err := row.Scan(
		&conf.ID,
		&conf.Title,
		&conf.Description,
		&conf.Location,
		&conf.StartsAt,
		&conf.EndsAt,
		&conf.Status,
		&conf.CreatedBy,
		&conf.CreatedAt,
		&conf.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return conf, nil
}

// Create creates a new conference
func (r *ConferenceRepository) Create(ctx context.Context, conf *models.Conference) error {
	query := `
		INSERT INTO conferences (id, title, description, location, starts_at, ends_at, status, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	executor := GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, query,
		conf.ID,
		conf.Title,
		conf.Description,
		conf.Location,
		conf.StartsAt,
		conf.EndsAt,
		conf.Status,
		conf.CreatedBy,
		conf.CreatedAt,
		conf.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create conference: %w", translateError(err, "conference"))
	}

	r.logger.Debug("conference created", zap.String("id", conf.ID.String()), zap.String("title", conf.Title))
	return nil
}

// GetByID retrieves a conference by ID
func (r *ConferenceRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Conference, error) {
	query, args, err := sq.Select(conferenceColumns...).
		From("conferences").
		Where(sq.Eq{"id": id}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build conference query: %w", err)
	}

	executor := GetExecutor(ctx, r.db)
	conf, err := scanConference(executor.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, fmt.Errorf("failed to get conference: %w", translateError(err, "conference"))
	}
	return conf, nil
}

// List retrieves conferences matching the filter, soonest first
func (r *ConferenceRepository) List(ctx context.Context, filter models.ConferenceFilter) ([]*models.Conference, error) {
	stmt := sq.Select(conferenceColumns...).From("conferences").PlaceholderFormat(sq.Dollar)
	stmt = applyConferenceFilter(stmt, filter)

	query, args, err := stmt.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build conference query: %w", err)
	}

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query conferences: %w", err)
	}
	defer rows.Close()

	conferences := make([]*models.Conference, 0, filter.Limit)
	for rows.Next() {
		conf, err := scanConference(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan conference: %w", err)
		}
		conferences = append(conferences, conf)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating conference rows: %w", err)
	}

	return conferences, nil
}

func applyConferenceFilter(stmt sq.SelectBuilder, filter models.ConferenceFilter) sq.SelectBuilder {
	if filter.Status != nil {
		stmt = stmt.Where(sq.Eq{"status": *filter.Status})
	}

	stmt = stmt.OrderBy("starts_at ASC", "id ASC")
	if filter.Limit > 0 {
		stmt = stmt.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		stmt = stmt.Offset(uint64(filter.Offset))
	}

	return stmt
}

// Update updates a conference
func (r *ConferenceRepository) Update(ctx context.Context, conf *models.Conference) error {
	query := `
		UPDATE conferences
		SET title = $2,
		    description = $3,
		    location = $4,
		    starts_at = $5,
		    ends_at = $6,
		    status = $7,
		    updated_at = $8
		WHERE id = $1
	`

	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query,
		conf.ID,
		conf.Title,
		conf.Description,
		conf.Location,
		conf.StartsAt,
		conf.EndsAt,
		conf.Status,
		conf.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update conference: %w", err)
	}
	if err := ensureAffected(result, "conference"); err != nil {
		return err
	}

	r.logger.Debug("conference updated", zap.String("id", conf.ID.String()))
	return nil
}

// Delete deletes a conference and, through cascades, its registrations and submissions
func (r *ConferenceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, `DELETE FROM conferences WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete conference: %w", err)
	}
	if err := ensureAffected(result, "conference"); err != nil {
		return err
	}

	r.logger.Debug("conference deleted", zap.String("id", id.String()))
	return nil
}
