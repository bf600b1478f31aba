package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	distributiondomain "github.com/policywaylabs/policyway/internal/distribution/domain"
	policydomain "github.com/policywaylabs/policyway/internal/policy/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repository struct{}

func Provide() distributiondomain.Repository {
	return &repository{}
}

func (r *repository) InsertDistributions(ctx context.Context, db *gorm.DB, distributions []*distributiondomain.PayoutDistribution) error {
	if len(distributions) == 0 {
		return nil
	}
	return db.WithContext(ctx).Create(&distributions).Error
}

func (r *repository) FindDistributionByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*distributiondomain.PayoutDistribution, error) {
	var distribution distributiondomain.PayoutDistribution
	err := db.WithContext(ctx).Where("id = ?", id).First(&distribution).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &distribution, nil
}

func (r *repository) FindDistributionByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*distributiondomain.PayoutDistribution, error) {
	var distribution distributiondomain.PayoutDistribution
	err := forUpdate(db.WithContext(ctx)).
		Where("id = ?", id).
		First(&distribution).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &distribution, nil
}

// forUpdate takes a row lock where the dialect supports one. The sqlite
// used by tests has no row locks; its single writer covers the same races.
func forUpdate(db *gorm.DB) *gorm.DB {
	if db.Dialector.Name() == "postgres" {
		return db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return db
}

func (r *repository) ListByReceipt(ctx context.Context, db *gorm.DB, receiptID snowflake.ID) ([]*distributiondomain.PayoutDistribution, error) {
	var distributions []*distributiondomain.PayoutDistribution
	err := db.WithContext(ctx).
		Where("receipt_id = ?", receiptID).
		Order("calculated_amount DESC").
		Find(&distributions).Error
	return distributions, err
}

func (r *repository) UpdateDistribution(ctx context.Context, db *gorm.DB, distribution *distributiondomain.PayoutDistribution) error {
	distribution.UpdatedAt = time.Now().UTC()
	return db.WithContext(ctx).Save(distribution).Error
}

func (r *repository) InsertPayment(ctx context.Context, db *gorm.DB, payment *distributiondomain.DistributionPayment) error {
	return db.WithContext(ctx).Create(payment).Error
}

func (r *repository) ListPayments(ctx context.Context, db *gorm.DB, distributionID snowflake.ID) ([]distributiondomain.DistributionPayment, error) {
	var payments []distributiondomain.DistributionPayment
	err := db.WithContext(ctx).
		Where("distribution_id = ?", distributionID).
		Order("paid_at ASC").
		Find(&payments).Error
	return payments, err
}

func (r *repository) InsertPayout(ctx context.Context, db *gorm.DB, payout *distributiondomain.Payout) error {
	return db.WithContext(ctx).Create(payout).Error
}

func (r *repository) UpdatePayout(ctx context.Context, db *gorm.DB, payout *distributiondomain.Payout) error {
	payout.UpdatedAt = time.Now().UTC()
	return db.WithContext(ctx).Save(payout).Error
}

func (r *repository) FindPayoutByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*distributiondomain.Payout, error) {
	var payout distributiondomain.Payout
	err := db.WithContext(ctx).Where("id = ?", id).First(&payout).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payout, nil
}

func (r *repository) FindPayoutByPolicy(ctx context.Context, db *gorm.DB, policyType policydomain.PolicyType, policyID snowflake.ID) (*distributiondomain.Payout, error) {
	var payout distributiondomain.Payout
	err := db.WithContext(ctx).
		Where("policy_type = ? AND policy_id = ?", policyType, policyID).
		First(&payout).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payout, nil
}

func (r *repository) FindPayoutByReceipt(ctx context.Context, db *gorm.DB, receiptID snowflake.ID) (*distributiondomain.Payout, error) {
	var payout distributiondomain.Payout
	err := db.WithContext(ctx).Where("receipt_id = ?", receiptID).First(&payout).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payout, nil
}
