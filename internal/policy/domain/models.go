// Package domain contains the policy aggregate: the sold insurance contract,
// its per-role commission terms, and its installment schedule.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	customerdomain "github.com/policywaylabs/policyway/internal/customer/domain"
	"github.com/shopspring/decimal"
)

// PolicyType discriminates the product line a policy was sold under.
type PolicyType string

const (
	PolicyTypeHealth PolicyType = "health_insurance"
	PolicyTypeLife   PolicyType = "life_insurance"
	PolicyTypeMotor  PolicyType = "motor_insurance"
	PolicyTypeOther  PolicyType = "other_insurance"
)

func (t PolicyType) Valid() bool {
	switch t {
	case PolicyTypeHealth, PolicyTypeLife, PolicyTypeMotor, PolicyTypeOther:
		return true
	}
	return false
}

// Policy is a sold insurance contract. Commission terms are captured at sale
// time; once a commission receipt references the policy the terms are locked
// so historical payouts cannot silently change.
type Policy struct {
	ID           snowflake.ID `gorm:"primaryKey"`
	CustomerID   snowflake.ID `gorm:"not null;index"`
	PolicyType   PolicyType   `gorm:"type:text;not null;index"`
	PolicyNumber string       `gorm:"type:text;not null;uniqueIndex"`
	InsurerName  string       `gorm:"type:text;not null"`

	TotalPremium  decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	NetPremium    decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	GSTPercentage decimal.Decimal `gorm:"column:gst_percentage;type:numeric(6,2);not null"`

	CompanyExpensesPercentage decimal.Decimal `gorm:"type:numeric(6,2);not null"`
	CompanyExpensesAmount     decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	ProfitPercentage          decimal.Decimal `gorm:"type:numeric(6,2);not null"`
	ProfitAmount              decimal.Decimal `gorm:"type:numeric(14,2);not null"`

	PaymentFrequency PaymentFrequency `gorm:"type:text;not null"`
	StartDate        time.Time        `gorm:"not null"`

	Shares []RoleShare `gorm:"foreignKey:PolicyID"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Policy) TableName() string { return "policies" }

// RoleShare is one role's commission terms on a policy. Amounts are derived by
// the calculator from the percentages and stored alongside them.
type RoleShare struct {
	ID       snowflake.ID        `gorm:"primaryKey"`
	PolicyID snowflake.ID        `gorm:"not null;index;uniqueIndex:ux_policy_role_shares_policy_role,priority:1"`
	Role     customerdomain.Role `gorm:"type:text;not null;uniqueIndex:ux_policy_role_shares_policy_role,priority:2"`
	PartyID  snowflake.ID        `gorm:"not null;index"`

	CommissionPercentage decimal.Decimal `gorm:"type:numeric(6,2);not null"`
	CommissionAmount     decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	TDSPercentage        decimal.Decimal `gorm:"column:tds_percentage;type:numeric(6,2);not null"`
	TDSAmount            decimal.Decimal `gorm:"column:tds_amount;type:numeric(14,2);not null"`
	AfterTDSValue        decimal.Decimal `gorm:"column:after_tds_value;type:numeric(14,2);not null"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (RoleShare) TableName() string { return "policy_role_shares" }

// Installment is one scheduled premium payment.
type Installment struct {
	ID       snowflake.ID    `gorm:"primaryKey"`
	PolicyID snowflake.ID    `gorm:"not null;index"`
	Sequence int             `gorm:"not null"`
	DueDate  time.Time       `gorm:"not null;index"`
	Amount   decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	PaidAt   *time.Time

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Installment) TableName() string { return "policy_installments" }
