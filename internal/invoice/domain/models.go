// Package domain defines payout invoices: one invoice per payout reference,
// addressable internally by ID and externally by an unguessable share token.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending Status = "pending"
	StatusPaid    Status = "paid"
	StatusOverdue Status = "overdue"
)

// An invoice bills either the whole payout of a receipt or a single
// distribution row out of it.
const (
	PayoutTypePayout       = "payout"
	PayoutTypeDistribution = "payout_distribution"
)

// Invoice bills a payout or one of its distributions to a recipient. The
// (PayoutType, PayoutID) pair points at the billed row. InvoiceNumber is a
// ULID so numbers sort by issue time; ShareToken is random and is the only
// credential the public share link carries.
type Invoice struct {
	ID            snowflake.ID `gorm:"primaryKey"`
	InvoiceNumber string       `gorm:"type:text;not null;uniqueIndex"`
	PayoutType    string       `gorm:"type:text;not null;uniqueIndex:ux_payout_invoices_payout"`
	PayoutID      snowflake.ID `gorm:"not null;uniqueIndex:ux_payout_invoices_payout"`

	RecipientType string       `gorm:"type:text;not null"`
	RecipientID   snowflake.ID `gorm:"not null;index"`
	RecipientName string       `gorm:"type:text;not null"`

	Amount   decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	Currency string          `gorm:"type:text;not null;default:'INR'"`
	Status   Status          `gorm:"type:text;not null;index"`
	Notes    string          `gorm:"type:text"`

	ShareToken string `gorm:"type:text;not null;uniqueIndex"`

	IssuedAt time.Time  `gorm:"not null"`
	DueDate  time.Time  `gorm:"not null;index"`
	PaidAt   *time.Time ``

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Invoice) TableName() string { return "payout_invoices" }
