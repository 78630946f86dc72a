package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/finverse/accessgate/models"
	"github.com/finverse/accessgate/repositories"
)

// AccessRecordRepository implements repositories.AccessRecordRepository
type AccessRecordRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewAccessRecordRepository creates a new access record repository
func NewAccessRecordRepository(db *DB, logger *zap.Logger) repositories.AccessRecordRepository {
	return &AccessRecordRepository{
		db:     db,
		logger: logger,
	}
}

// Insert inserts a new access record
func (r *AccessRecordRepository) Insert(ctx context.Context, rec *models.AccessRecord) error {
	query := `
		INSERT INTO access_records (
			id, user_id, role, path, outcome, redirect_target, request_id, decided_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8
		)
	`

	_, err := r.db.ExecContext(ctx, query,
		rec.ID,
		rec.UserID,
		string(rec.Role),
		rec.Path,
		string(rec.Outcome),
		rec.RedirectTarget,
		rec.RequestID,
		rec.DecidedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert access record: %w", err)
	}

	r.logger.Debug("access record inserted",
		zap.String("id", rec.ID.String()),
		zap.String("outcome", string(rec.Outcome)))
	return nil
}

// GetByID retrieves an access record by ID
func (r *AccessRecordRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.AccessRecord, error) {
	query := `
		SELECT id, user_id, role, path, outcome, redirect_target, request_id, decided_at
		FROM access_records
		WHERE id = $1
	`

	rec := &models.AccessRecord{}

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&rec.ID,
		&rec.UserID,
		&rec.Role,
		&rec.Path,
		&rec.Outcome,
		&rec.RedirectTarget,
		&rec.RequestID,
		&rec.DecidedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("access record %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get access record: %w", err)
	}

	return rec, nil
}

// ListRecent returns the most recent access records, newest first
func (r *AccessRecordRepository) ListRecent(ctx context.Context, limit int) ([]*models.AccessRecord, error) {
	query := `
		SELECT id, user_id, role, path, outcome, redirect_target, request_id, decided_at
		FROM access_records
		ORDER BY decided_at DESC
		LIMIT $1
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list access records: %w", err)
	}
	defer rows.Close()

	records := make([]*models.AccessRecord, 0)
	for rows.Next() {
		rec := &models.AccessRecord{}
		if err := rows.Scan(
			&rec.ID,
			&rec.UserID,
			&rec.Role,
			&rec.Path,
			&rec.Outcome,
			&rec.RedirectTarget,
			&rec.RequestID,
			&rec.DecidedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan access record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate access records: %w", err)
	}

	return records, nil
}
