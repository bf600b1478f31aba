package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	policydomain "github.com/policywaylabs/policyway/internal/policy/domain"
	"gorm.io/gorm"
)

type Repository interface {
	InsertDistributions(ctx context.Context, db *gorm.DB, distributions []*PayoutDistribution) error
	FindDistributionByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*PayoutDistribution, error)
	// FindDistributionByIDForUpdate locks the row for the duration of the
	// enclosing transaction so concurrent payments serialize.
	FindDistributionByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*PayoutDistribution, error)
	ListByReceipt(ctx context.Context, db *gorm.DB, receiptID snowflake.ID) ([]*PayoutDistribution, error)
	UpdateDistribution(ctx context.Context, db *gorm.DB, distribution *PayoutDistribution) error

	InsertPayment(ctx context.Context, db *gorm.DB, payment *DistributionPayment) error
	ListPayments(ctx context.Context, db *gorm.DB, distributionID snowflake.ID) ([]DistributionPayment, error)

	InsertPayout(ctx context.Context, db *gorm.DB, payout *Payout) error
	UpdatePayout(ctx context.Context, db *gorm.DB, payout *Payout) error
	FindPayoutByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Payout, error)
	FindPayoutByPolicy(ctx context.Context, db *gorm.DB, policyType policydomain.PolicyType, policyID snowflake.ID) (*Payout, error)
	FindPayoutByReceipt(ctx context.Context, db *gorm.DB, receiptID snowflake.ID) (*Payout, error)
}
