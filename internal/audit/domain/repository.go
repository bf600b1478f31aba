package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Repository takes the gorm handle per call so appends participate in the
// caller's transaction. A failed append must fail that transaction.
type Repository interface {
	Append(ctx context.Context, db *gorm.DB, entry *AuditLog) error
	ListByAuditable(ctx context.Context, db *gorm.DB, auditableType string, auditableID snowflake.ID) ([]AuditLog, error)
	ListBetween(ctx context.Context, db *gorm.DB, start, end time.Time, actions []string) ([]AuditLog, error)
}
