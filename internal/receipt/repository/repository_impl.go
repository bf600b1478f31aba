package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	policydomain "github.com/policywaylabs/policyway/internal/policy/domain"
	receiptdomain "github.com/policywaylabs/policyway/internal/receipt/domain"
	"github.com/policywaylabs/policyway/pkg/db/pagination"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repository struct{}

func Provide() receiptdomain.Repository {
	return &repository{}
}

func (r *repository) Insert(ctx context.Context, db *gorm.DB, receipt *receiptdomain.CommissionReceipt) error {
	err := db.WithContext(ctx).Create(receipt).Error
	if err != nil && isUniqueViolation(err) {
		return receiptdomain.ErrDuplicateReceipt
	}
	return err
}

func (r *repository) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*receiptdomain.CommissionReceipt, error) {
	return r.findOne(ctx, db, "id = ?", id)
}

func (r *repository) FindByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*receiptdomain.CommissionReceipt, error) {
	var receipt receiptdomain.CommissionReceipt
	err := forUpdate(db.WithContext(ctx)).
		Where("id = ?", id).
		First(&receipt).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &receipt, nil
}

func (r *repository) FindByPolicy(ctx context.Context, db *gorm.DB, policyType policydomain.PolicyType, policyID snowflake.ID) (*receiptdomain.CommissionReceipt, error) {
	return r.findOne(ctx, db, "policy_type = ? AND policy_id = ?", policyType, policyID)
}

func (r *repository) List(ctx context.Context, db *gorm.DB, page pagination.Pagination) ([]*receiptdomain.CommissionReceipt, error) {
	var receipts []*receiptdomain.CommissionReceipt
	err := db.WithContext(ctx).
		Order("received_date DESC").
		Limit(page.Limit()).
		Offset(page.Offset()).
		Find(&receipts).Error
	return receipts, err
}

func (r *repository) Count(ctx context.Context, db *gorm.DB) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Model(&receiptdomain.CommissionReceipt{}).Count(&count).Error
	return count, err
}

func (r *repository) MarkDistributed(ctx context.Context, db *gorm.DB, id snowflake.ID, at time.Time) error {
	return db.WithContext(ctx).Model(&receiptdomain.CommissionReceipt{}).
		Where("id = ? AND distributed_at IS NULL", id).
		Updates(map[string]any{"distributed_at": at, "updated_at": at}).Error
}

func (r *repository) ListPendingAutoDistribution(ctx context.Context, db *gorm.DB, limit int) ([]*receiptdomain.CommissionReceipt, error) {
	var receipts []*receiptdomain.CommissionReceipt
	err := db.WithContext(ctx).
		Where("auto_distribute = ? AND distributed_at IS NULL", true).
		Order("created_at ASC").
		Limit(limit).
		Find(&receipts).Error
	return receipts, err
}

func (r *repository) findOne(ctx context.Context, db *gorm.DB, query string, args ...any) (*receiptdomain.CommissionReceipt, error) {
	var receipt receiptdomain.CommissionReceipt
	err := db.WithContext(ctx).Where(query, args...).First(&receipt).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &receipt, nil
}

// forUpdate takes a row lock where the dialect supports one. The sqlite
// used by tests has no row locks; its single writer covers the same races.
func forUpdate(db *gorm.DB) *gorm.DB {
	if db.Dialector.Name() == "postgres" {
		return db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return db
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}
