package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/upb/conference-portal/models"
	"github.com/upb/conference-portal/repositories"
	"go.uber.org/zap"
)

// EvaluationRepository implements the repositories.EvaluationRepository interface
type EvaluationRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewEvaluationRepository creates a new evaluation repository
func NewEvaluationRepository(db *DB, logger *zap.Logger) repositories.EvaluationRepository {
	return &EvaluationRepository{
		db:     db,
		logger: logger,
	}
}

func scanEvaluation(row rowScanner) (*models.Evaluation, error) {
	eval := &models.Evaluation{}
	var score sql.NullInt32

	err := row.Scan(
		&eval.ID,
		&eval.SubmissionID,
		&eval.EvaluatorID,
		&score,
		&eval.Comments,
		&eval.Status,
		&eval.CreatedAt,
		&eval.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if score.Valid {
		s := int(score.Int32)
		eval.Score = &s
	}
	return eval, nil
}

// Create assigns an evaluator to a submission
func (r *EvaluationRepository) Create(ctx context.Context, eval *models.Evaluation) error {
	query := `
		INSERT INTO evaluations (id, submission_id, evaluator_id, score, comments, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	executor := GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, query,
		eval.ID,
		eval.SubmissionID,
		eval.EvaluatorID,
		eval.Score,
		eval.Comments,
		eval.Status,
		eval.CreatedAt,
		eval.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create evaluation: %w", translateError(err, "evaluation"))
	}

	r.logger.Debug("evaluation assigned",
		zap.String("submission_id", eval.SubmissionID.String()),
		zap.String("evaluator_id", eval.EvaluatorID.String()))
	return nil
}

// GetByID retrieves an evaluation by ID
func (r *EvaluationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Evaluation, error) {
	query := `
		SELECT id, submission_id, evaluator_id, score, comments, status, created_at, updated_at
		FROM evaluations
		WHERE id = $1
	`

	executor := GetExecutor(ctx, r.db)
	eval, err := scanEvaluation(executor.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get evaluation: %w", translateError(err, "evaluation"))
	}
	return eval, nil
}

// ListByEvaluator retrieves the evaluations assigned to an evaluator
func (r *EvaluationRepository) ListByEvaluator(ctx context.Context, evaluatorID uuid.UUID, limit, offset int) ([]*models.Evaluation, error) {
	query := `
		SELECT id, submission_id, evaluator_id, score, comments, status, created_at, updated_at
		FROM evaluations
		WHERE evaluator_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, evaluatorID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query evaluations: %w", err)
	}
	defer rows.Close()

	evaluations := make([]*models.Evaluation, 0, limit)
	for rows.Next() {
		eval, err := scanEvaluation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan evaluation: %w", err)
		}
		evaluations = append(evaluations, eval)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating evaluation rows: %w", err)
	}

	return evaluations, nil
}

// Update stores an evaluator's score and comments
func (r *EvaluationRepository) Update(ctx context.Context, eval *models.Evaluation) error {
	query := `
		UPDATE evaluations
		SET score = $2,
		    comments = $3,
		    status = $4,
		    updated_at = $5
		WHERE id = $1
	`

	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query,
		eval.ID,
		eval.Score,
		eval.Comments,
		eval.Status,
		eval.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update evaluation: %w", err)
	}
	if err := ensureAffected(result, "evaluation"); err != nil {
		return err
	}

	r.logger.Debug("evaluation updated", zap.String("id", eval.ID.String()))
	return nil
}
