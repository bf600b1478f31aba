// Package domain contains the commission receipt ledger: money actually
// received from an insurer against a sold policy.
package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	policydomain "github.com/policywaylabs/policyway/internal/policy/domain"
	"github.com/shopspring/decimal"
)

var (
	ErrReceiptNotFound  = errors.New("receipt: not found")
	ErrDuplicateReceipt = errors.New("receipt: a receipt already exists for this policy")
	ErrInvalidAmount    = errors.New("receipt: amount received must be positive")
)

// CommissionReceipt records one insurer payment per policy. The
// (policy_type, policy_id) pair is unique: the schema allows a single receipt
// per policy, and that uniqueness doubles as the concurrency guard.
type CommissionReceipt struct {
	ID         snowflake.ID            `gorm:"primaryKey"`
	PolicyType policydomain.PolicyType `gorm:"type:text;not null;uniqueIndex:ux_commission_receipts_policy,priority:1"`
	PolicyID   snowflake.ID            `gorm:"not null;uniqueIndex:ux_commission_receipts_policy,priority:2"`

	TotalCommissionReceived     decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	ReceivedDate                time.Time       `gorm:"not null"`
	CompanyCommissionPercentage decimal.Decimal `gorm:"type:numeric(6,2);not null"`

	ReferenceKey   string     `gorm:"type:text;not null;uniqueIndex"`
	AutoDistribute bool       `gorm:"not null;default:false"`
	DistributedAt  *time.Time `gorm:"index"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (CommissionReceipt) TableName() string { return "commission_receipts" }

// Distributed reports whether the distribution engine already ran for this
// receipt.
func (r *CommissionReceipt) Distributed() bool { return r.DistributedAt != nil }
