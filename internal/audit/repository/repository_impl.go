package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/policywaylabs/policyway/internal/audit/domain"
	"gorm.io/gorm"
)

type repository struct{}

func Provide() auditdomain.Repository {
	return &repository{}
}

func (r *repository) Append(ctx context.Context, db *gorm.DB, entry *auditdomain.AuditLog) error {
	return db.WithContext(ctx).Create(entry).Error
}

func (r *repository) ListByAuditable(ctx context.Context, db *gorm.DB, auditableType string, auditableID snowflake.ID) ([]auditdomain.AuditLog, error) {
	var rows []auditdomain.AuditLog
	err := db.WithContext(ctx).
		Where("auditable_type = ? AND auditable_id = ?", auditableType, auditableID).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) ListBetween(ctx context.Context, db *gorm.DB, start, end time.Time, actions []string) ([]auditdomain.AuditLog, error) {
	query := db.WithContext(ctx).Model(&auditdomain.AuditLog{}).
		Where("created_at >= ? AND created_at < ?", start, end)
	if len(actions) > 0 {
		query = query.Where("action IN ?", actions)
	}

	var rows []auditdomain.AuditLog
	err := query.Order("created_at ASC").Find(&rows).Error
	return rows, err
}
