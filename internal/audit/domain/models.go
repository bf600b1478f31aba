// Package domain contains the append-only payout audit trail.
package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Action enumerates the recorded state changes.
type Action string

const (
	ActionCreated     Action = "created"
	ActionUpdated     Action = "updated"
	ActionDistributed Action = "distributed"
	ActionPaid        Action = "paid"
	ActionCancelled   Action = "cancelled"
)

var (
	ErrInvalidAction    = errors.New("audit: invalid action")
	ErrInvalidAuditable = errors.New("audit: auditable reference is required")
)

// AuditLog is one immutable entry. Rows are only ever inserted; there is no
// update or delete path anywhere in this package.
type AuditLog struct {
	ID            snowflake.ID      `gorm:"primaryKey"`
	AuditableType string            `gorm:"type:text;not null;index:idx_payout_audit_logs_auditable,priority:1"`
	AuditableID   snowflake.ID      `gorm:"not null;index:idx_payout_audit_logs_auditable,priority:2"`
	Action        Action            `gorm:"type:text;not null;index"`
	Changes       datatypes.JSONMap `gorm:"type:jsonb"`
	PerformedBy   string            `gorm:"type:text;not null"`
	CreatedAt     time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (AuditLog) TableName() string { return "payout_audit_logs" }

func (a Action) Valid() bool {
	switch a {
	case ActionCreated, ActionUpdated, ActionDistributed, ActionPaid, ActionCancelled:
		return true
	}
	return false
}
