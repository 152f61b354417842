package postgres

import (
	"context"
	"fmt"

	"github.com/upb/conference-portal/models"
	"github.com/upb/conference-portal/repositories"
	"go.uber.org/zap"
)

// AuditRepository implements the repositories.AuditRepository interface
type AuditRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *DB, logger *zap.Logger) repositories.AuditRepository {
	return &AuditRepository{
		db:     db,
		logger: logger,
	}
}

// Insert appends an entry to the audit trail
func (r *AuditRepository) Insert(ctx context.Context, entry *models.AuditLog) error {
	query := `
		INSERT INTO audit_logs (id, action, actor_id, subject_id, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	var details interface{}
	if len(entry.Details) > 0 {
		details = []byte(entry.Details)
	}

	executor := GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, query,
		entry.ID,
		entry.Action,
		entry.ActorID,
		entry.SubjectID,
		details,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert audit log: %w", translateError(err, "audit log"))
	}

	r.logger.Debug("audit log inserted", zap.String("action", entry.Action))
	return nil
}
