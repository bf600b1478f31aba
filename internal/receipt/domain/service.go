package domain

import (
	"context"

	policydomain "github.com/policywaylabs/policyway/internal/policy/domain"
	"github.com/policywaylabs/policyway/pkg/db/pagination"
	"github.com/shopspring/decimal"
)

type RecordReceiptRequest struct {
	PolicyType                  policydomain.PolicyType `validate:"required"`
	PolicyID                    string                  `validate:"required"`
	TotalCommissionReceived     decimal.Decimal
	ReceivedDate                string `validate:"required"`
	CompanyCommissionPercentage decimal.Decimal
	AutoDistribute              bool
	PerformedBy                 string
}

type ListRequest struct {
	Page pagination.Pagination
}

type ListResponse struct {
	Receipts []*CommissionReceipt
	PageInfo pagination.PageInfo
}

type Service interface {
	// RecordReceipt writes the receipt and, when auto-distribution is
	// requested, runs the distribution engine inside the same transaction.
	RecordReceipt(ctx context.Context, req RecordReceiptRequest) (*CommissionReceipt, error)
	Get(ctx context.Context, id string) (*CommissionReceipt, error)
	List(ctx context.Context, req ListRequest) (*ListResponse, error)
}
