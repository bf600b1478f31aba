package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Service interface {
	// AppendTx writes an entry on the supplied transaction handle so the
	// audit row and the state change it describes commit or roll back together.
	AppendTx(ctx context.Context, tx *gorm.DB, auditableType string, auditableID snowflake.ID, action Action, changes map[string]any, performedBy string) error
	ListByAuditable(ctx context.Context, auditableType string, auditableID snowflake.ID) ([]AuditLog, error)
}
