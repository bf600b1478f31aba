package domain

import "errors"

var (
	ErrInvoiceNotFound    = errors.New("invoice not found")
	ErrInvoiceAlreadyPaid = errors.New("invoice already paid")
	ErrDuplicateInvoice   = errors.New("invoice already exists for payout")
	ErrNothingToInvoice   = errors.New("payout has no billable distributions")
)
