package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	policydomain "github.com/policywaylabs/policyway/internal/policy/domain"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type RecordPaymentRequest struct {
	DistributionID string `validate:"required"`
	Amount         decimal.Decimal
	Mode           PaymentMode `validate:"required"`
	TransactionID  string
	PerformedBy    string
}

type Service interface {
	// Distribute runs the engine in its own transaction.
	Distribute(ctx context.Context, receiptID string, performedBy string) ([]*PayoutDistribution, error)
	// DistributeTx runs the engine on the caller's transaction; the receipt
	// ledger uses it so auto-distribution commits atomically with the receipt.
	DistributeTx(ctx context.Context, tx *gorm.DB, receiptID snowflake.ID, performedBy string) ([]*PayoutDistribution, error)

	RecordPayment(ctx context.Context, req RecordPaymentRequest) (*PayoutDistribution, error)
	Cancel(ctx context.Context, distributionID string, reason string, performedBy string) (*PayoutDistribution, error)

	Get(ctx context.Context, distributionID string) (*PayoutDistribution, error)
	ListByReceipt(ctx context.Context, receiptID string) ([]*PayoutDistribution, error)
	ListPayments(ctx context.Context, distributionID string) ([]DistributionPayment, error)
	GetPayout(ctx context.Context, policyType policydomain.PolicyType, policyID string) (*Payout, error)
}
