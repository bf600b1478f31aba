package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	policydomain "github.com/policywaylabs/policyway/internal/policy/domain"
	"github.com/policywaylabs/policyway/pkg/db/pagination"
	"gorm.io/gorm"
)

type repository struct{}

func Provide() policydomain.Repository {
	return &repository{}
}

func (r *repository) Insert(ctx context.Context, db *gorm.DB, policy *policydomain.Policy) error {
	err := db.WithContext(ctx).Omit("Shares").Create(policy).Error
	if err != nil && isUniqueViolation(err) {
		return policydomain.ErrDuplicateNumber
	}
	return err
}

func (r *repository) InsertShares(ctx context.Context, db *gorm.DB, shares []policydomain.RoleShare) error {
	if len(shares) == 0 {
		return nil
	}
	return db.WithContext(ctx).Create(&shares).Error
}

func (r *repository) InsertInstallments(ctx context.Context, db *gorm.DB, installments []policydomain.Installment) error {
	if len(installments) == 0 {
		return nil
	}
	return db.WithContext(ctx).Create(&installments).Error
}

func (r *repository) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*policydomain.Policy, error) {
	var policy policydomain.Policy
	err := db.WithContext(ctx).Preload("Shares").Where("id = ?", id).First(&policy).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &policy, nil
}

func (r *repository) FindByNumber(ctx context.Context, db *gorm.DB, number string) (*policydomain.Policy, error) {
	var policy policydomain.Policy
	err := db.WithContext(ctx).Preload("Shares").Where("policy_number = ?", number).First(&policy).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &policy, nil
}

func (r *repository) List(ctx context.Context, db *gorm.DB, filter policydomain.ListFilter, page pagination.Pagination) ([]*policydomain.Policy, error) {
	var policies []*policydomain.Policy
	err := applyFilter(db.WithContext(ctx), filter).
		Preload("Shares").
		Order("created_at DESC").
		Limit(page.Limit()).
		Offset(page.Offset()).
		Find(&policies).Error
	return policies, err
}

func (r *repository) Count(ctx context.Context, db *gorm.DB, filter policydomain.ListFilter) (int64, error) {
	var count int64
	err := applyFilter(db.WithContext(ctx).Model(&policydomain.Policy{}), filter).Count(&count).Error
	return count, err
}

func (r *repository) Update(ctx context.Context, db *gorm.DB, policy *policydomain.Policy) error {
	policy.UpdatedAt = time.Now().UTC()
	return db.WithContext(ctx).Omit("Shares").Save(policy).Error
}

func (r *repository) ReplaceShares(ctx context.Context, db *gorm.DB, policyID snowflake.ID, shares []policydomain.RoleShare) error {
	if err := db.WithContext(ctx).Where("policy_id = ?", policyID).Delete(&policydomain.RoleShare{}).Error; err != nil {
		return err
	}
	if len(shares) == 0 {
		return nil
	}
	return db.WithContext(ctx).Create(&shares).Error
}

func (r *repository) ListInstallments(ctx context.Context, db *gorm.DB, policyID snowflake.ID) ([]policydomain.Installment, error) {
	var installments []policydomain.Installment
	err := db.WithContext(ctx).
		Where("policy_id = ?", policyID).
		Order("sequence ASC").
		Find(&installments).Error
	return installments, err
}

func (r *repository) MarkInstallmentPaid(ctx context.Context, db *gorm.DB, installmentID snowflake.ID) error {
	now := time.Now().UTC()
	return db.WithContext(ctx).Model(&policydomain.Installment{}).
		Where("id = ? AND paid_at IS NULL", installmentID).
		Updates(map[string]any{"paid_at": now, "updated_at": now}).Error
}

func applyFilter(db *gorm.DB, filter policydomain.ListFilter) *gorm.DB {
	if filter.CustomerID != nil {
		db = db.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.PolicyType != "" {
		db = db.Where("policy_type = ?", filter.PolicyType)
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
