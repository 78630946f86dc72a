package models

import (
	"time"

	"github.com/google/uuid"
)

// AccessRecord captures one guard evaluation for the audit trail
type AccessRecord struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	UserID         *uuid.UUID      `json:"user_id,omitempty" db:"user_id"` // Null for anonymous evaluations
	Role           Role            `json:"role,omitempty" db:"role"`
	Path           string          `json:"path" db:"path"`
	Outcome        DecisionOutcome `json:"outcome" db:"outcome"`
	RedirectTarget string          `json:"redirect_target,omitempty" db:"redirect_target"`
	RequestID      string          `json:"request_id,omitempty" db:"request_id"`
	DecidedAt      time.Time       `json:"decided_at" db:"decided_at"`
}

// TableName returns the table name for the AccessRecord model
func (AccessRecord) TableName() string {
	return "access_records"
}

// NewAccessRecord creates an AccessRecord for one evaluated navigation
func NewAccessRecord(sess Session, path, requestID string, decision AccessDecision) *AccessRecord {
	rec := &AccessRecord{
		ID:             uuid.New(),
		Role:           sess.Role,
		Path:           path,
		Outcome:        decision.Outcome,
		RedirectTarget: decision.RedirectTarget,
		RequestID:      requestID,
		DecidedAt:      time.Now().UTC(),
	}
	if sess.UserID != uuid.Nil {
		id := sess.UserID
		rec.UserID = &id
	}
	return rec
}
