package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/upb/conference-portal/models"
	"github.com/upb/conference-portal/repositories"
	"go.uber.org/zap"
)

// SubmissionRepository implements the repositories.SubmissionRepository interface
type SubmissionRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewSubmissionRepository creates a new submission repository
func NewSubmissionRepository(db *DB, logger *zap.Logger) repositories.SubmissionRepository {
	return &SubmissionRepository{
		db:     db,
		logger: logger,
	}
}

func scanSubmission(row rowScanner) (*models.Submission, error) {
	sub := &models.Submission{}
	err := row.Scan(
		&sub.ID,
		&sub.ConferenceID,
		&sub.AuthorID,
		&sub.Title,
		&sub.Abstract,
		&sub.Status,
		&sub.CreatedAt,
		&sub.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return sub, nil
}

// Create creates a new submission
func (r *SubmissionRepository) Create(ctx context.Context, sub *models.Submission) error {
	query := `
		INSERT INTO submissions (id, conference_id, author_id, title, abstract, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	executor := GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, query,
		sub.ID,
		sub.ConferenceID,
		sub.AuthorID,
		sub.Title,
		sub.Abstract,
		sub.Status,
		sub.CreatedAt,
		sub.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create submission: %w", translateError(err, "submission"))
	}

	r.logger.Debug("submission created", zap.String("id", sub.ID.String()))
	return nil
}

// GetByID retrieves a submission by ID
func (r *SubmissionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Submission, error) {
	query := `
		SELECT id, conference_id, author_id, title, abstract, status, created_at, updated_at
		FROM submissions
		WHERE id = $1
	`

	executor := GetExecutor(ctx, r.db)
	sub, err := scanSubmission(executor.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get submission: %w", translateError(err, "submission"))
	}
	return sub, nil
}

// ListByConference retrieves the submissions made to a conference
func (r *SubmissionRepository) ListByConference(ctx context.Context, conferenceID uuid.UUID, limit, offset int) ([]*models.Submission, error) {
	query := `
		SELECT id, conference_id, author_id, title, abstract, status, created_at, updated_at
		FROM submissions
		WHERE conference_id = $1
		ORDER BY created_at ASC
		LIMIT $2 OFFSET $3
	`
	return r.list(ctx, query, conferenceID, limit, offset)
}

// ListByAuthor retrieves an author's submissions
func (r *SubmissionRepository) ListByAuthor(ctx context.Context, authorID uuid.UUID, limit, offset int) ([]*models.Submission, error) {
	query := `
		SELECT id, conference_id, author_id, title, abstract, status, created_at, updated_at
		FROM submissions
		WHERE author_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	return r.list(ctx, query, authorID, limit, offset)
}

func (r *SubmissionRepository) list(ctx context.Context, query string, id uuid.UUID, limit, offset int) ([]*models.Submission, error) {
	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, id, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query submissions: %w", err)
	}
	defer rows.Close()

	submissions := make([]*models.Submission, 0, limit)
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}
		submissions = append(submissions, sub)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating submission rows: %w", err)
	}

	return submissions, nil
}

// UpdateStatus moves a submission to a new review status
func (r *SubmissionRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.SubmissionStatus) error {
	query := `
		UPDATE submissions
		SET status = $2,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
	`

	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("failed to update submission: %w", err)
	}
	if err := ensureAffected(result, "submission"); err != nil {
		return err
	}

	r.logger.Debug("submission status updated", zap.String("id", id.String()), zap.String("status", string(status)))
	return nil
}
