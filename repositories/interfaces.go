// Package repositories defines the persistence interfaces consumed by the
// services layer.
package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/finverse/accessgate/models"
)

// AccessRecordRepository persists the access-decision audit trail
type AccessRecordRepository interface {
	// Insert stores one evaluated decision
	Insert(ctx context.Context, rec *models.AccessRecord) error

	// GetByID retrieves a single record
	GetByID(ctx context.Context, id uuid.UUID) (*models.AccessRecord, error)

	// ListRecent returns the most recent records, newest first
	ListRecent(ctx context.Context, limit int) ([]*models.AccessRecord, error)
}
