// Package domain contains the payout distribution engine models: the
// per-recipient split of a commission receipt and the denormalized payout
// summary kept consistent with it.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	policydomain "github.com/policywaylabs/policyway/internal/policy/domain"
	"github.com/shopspring/decimal"
)

// Status is the distribution payment state machine. Transitions are
// monotonic: pending -> partial -> paid. paid is terminal. cancelled is only
// reachable from pending via an explicit administrative action.
type Status string

const (
	StatusPending   Status = "pending"
	StatusPartial   Status = "partial"
	StatusPaid      Status = "paid"
	StatusCancelled Status = "cancelled"
)

// RecipientTypeCompanyExpense is the synthetic recipient for the company
// expense bucket; all other recipient types are commission party roles.
const RecipientTypeCompanyExpense = "company_expense"

// PaymentMode is a closed set; free-text modes are rejected.
type PaymentMode string

const (
	PaymentModeBankTransfer PaymentMode = "bank_transfer"
	PaymentModeUPI          PaymentMode = "upi"
	PaymentModeCheque       PaymentMode = "cheque"
	PaymentModeCash         PaymentMode = "cash"
)

func (m PaymentMode) Valid() bool {
	switch m {
	case PaymentModeBankTransfer, PaymentModeUPI, PaymentModeCheque, PaymentModeCash:
		return true
	}
	return false
}

// PayoutDistribution is one recipient's share of a commission receipt.
// Invariant at all times: PaidAmount + PendingAmount == CalculatedAmount.
type PayoutDistribution struct {
	ID        snowflake.ID `gorm:"primaryKey"`
	ReceiptID snowflake.ID `gorm:"not null;index;uniqueIndex:ux_payout_distributions_recipient,priority:1"`

	RecipientType string       `gorm:"type:text;not null;uniqueIndex:ux_payout_distributions_recipient,priority:2"`
	RecipientID   snowflake.ID `gorm:"not null;uniqueIndex:ux_payout_distributions_recipient,priority:3"`

	DistributionPercentage decimal.Decimal `gorm:"type:numeric(6,2);not null"`
	CalculatedAmount       decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	PaidAmount             decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	PendingAmount          decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	Status                 Status          `gorm:"type:text;not null;index"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (PayoutDistribution) TableName() string { return "payout_distributions" }

// DistributionPayment records one payment made against a distribution.
type DistributionPayment struct {
	ID             snowflake.ID    `gorm:"primaryKey"`
	DistributionID snowflake.ID    `gorm:"not null;index"`
	Amount         decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	Mode           PaymentMode     `gorm:"type:text;not null"`
	TransactionID  string          `gorm:"type:text"`
	PaidAt         time.Time       `gorm:"not null"`
	CreatedAt      time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (DistributionPayment) TableName() string { return "distribution_payments" }

// Payout is the denormalized per-policy summary. Each slot mirrors the
// matching PayoutDistribution row; the engine rewrites both in one
// transaction so the amounts never drift apart.
type Payout struct {
	ID         snowflake.ID            `gorm:"primaryKey"`
	PolicyType policydomain.PolicyType `gorm:"type:text;not null;uniqueIndex:ux_payouts_policy,priority:1"`
	PolicyID   snowflake.ID            `gorm:"not null;uniqueIndex:ux_payouts_policy,priority:2"`
	ReceiptID  snowflake.ID            `gorm:"not null;index"`

	TotalAmount decimal.Decimal `gorm:"type:numeric(14,2);not null"`

	MainAgentPercentage        decimal.Decimal `gorm:"type:numeric(6,2);not null"`
	MainAgentAmount            decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	MainAgentCommissionID      *snowflake.ID   `gorm:"index"`
	AffiliatePercentage        decimal.Decimal `gorm:"type:numeric(6,2);not null"`
	AffiliateAmount            decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	AffiliateCommissionID      *snowflake.ID
	DistributorPercentage      decimal.Decimal `gorm:"type:numeric(6,2);not null"`
	DistributorAmount          decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	DistributorCommissionID    *snowflake.ID
	AmbassadorPercentage       decimal.Decimal `gorm:"type:numeric(6,2);not null"`
	AmbassadorAmount           decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	AmbassadorCommissionID     *snowflake.ID
	InvestorPercentage         decimal.Decimal `gorm:"type:numeric(6,2);not null"`
	InvestorAmount             decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	InvestorCommissionID       *snowflake.ID
	CompanyExpensePercentage   decimal.Decimal `gorm:"type:numeric(6,2);not null"`
	CompanyExpenseAmount       decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	CompanyExpenseCommissionID *snowflake.ID

	MainAgentCommissionReceived bool `gorm:"not null;default:false"`
	MainAgentReceivedDate       *time.Time
	MainAgentTransactionID      string `gorm:"type:text"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Payout) TableName() string { return "payouts" }
