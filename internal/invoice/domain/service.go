package domain

import (
	"context"
	"time"

	"github.com/policywaylabs/policyway/pkg/db/pagination"
)

type GenerateRequest struct {
	PayoutType  string `validate:"required,oneof=payout payout_distribution"`
	PayoutID    string `validate:"required"`
	DueDate     time.Time
	Notes       string
	PerformedBy string
}

type ListResponse struct {
	Items    []*Invoice
	PageInfo pagination.PageInfo
}

type Service interface {
	// Generate issues an invoice for a payout or a single distribution.
	// The payout total is the sum of its non-cancelled distribution
	// amounts. At most one invoice exists per (PayoutType, PayoutID); a
	// second call returns ErrDuplicateInvoice.
	Generate(ctx context.Context, req GenerateRequest) (*Invoice, error)
	MarkPaid(ctx context.Context, invoiceID string, performedBy string) (*Invoice, error)

	Get(ctx context.Context, invoiceID string) (*Invoice, error)
	// GetByShareToken is the public lookup; it never discloses whether a
	// token is malformed or merely unknown.
	GetByShareToken(ctx context.Context, token string) (*Invoice, error)
	List(ctx context.Context, status Status, page pagination.Pagination) (*ListResponse, error)

	// RenderPDF produces the printable invoice document.
	RenderPDF(ctx context.Context, invoice *Invoice) ([]byte, error)

	// SweepOverdue marks pending invoices past due as overdue.
	SweepOverdue(ctx context.Context) (int64, error)
}
