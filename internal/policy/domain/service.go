package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	customerdomain "github.com/policywaylabs/policyway/internal/customer/domain"
	"github.com/policywaylabs/policyway/pkg/db/pagination"
	"github.com/shopspring/decimal"
)

// ShareInput configures one role's terms on a create or update request.
type ShareInput struct {
	Role                 customerdomain.Role `validate:"required"`
	PartyID              string              `validate:"required"`
	CommissionPercentage decimal.Decimal
	TDSPercentage        decimal.Decimal
}

type CreateRequest struct {
	CustomerID                string     `validate:"required"`
	PolicyType                PolicyType `validate:"required"`
	PolicyNumber              string     `validate:"required"`
	InsurerName               string     `validate:"required"`
	TotalPremium              decimal.Decimal
	NetPremium                decimal.Decimal
	GSTPercentage             decimal.Decimal
	CompanyExpensesPercentage decimal.Decimal
	PaymentFrequency          PaymentFrequency `validate:"required"`
	StartDate                 string           `validate:"required"`
	TermYears                 int
	Shares                    []ShareInput `validate:"required,min=1,dive"`
}

// UpdateRequest recalculates commission terms. It is rejected once a
// commission receipt references the policy.
type UpdateRequest struct {
	TotalPremium              *decimal.Decimal
	NetPremium                *decimal.Decimal
	GSTPercentage             *decimal.Decimal
	CompanyExpensesPercentage *decimal.Decimal
	Shares                    []ShareInput
}

type ListRequest struct {
	CustomerID string
	PolicyType PolicyType
	Page       pagination.Pagination
}

type ListResponse struct {
	Policies []*Policy
	PageInfo pagination.PageInfo
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Policy, error)
	Get(ctx context.Context, id string) (*Policy, error)
	List(ctx context.Context, req ListRequest) (*ListResponse, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*Policy, error)
	ListInstallments(ctx context.Context, policyID string) ([]Installment, error)
	MarkInstallmentPaid(ctx context.Context, policyID, installmentID string) error
}

// LockChecker reports whether a commission receipt already references the
// policy. The receipt package provides the implementation; the indirection
// keeps the dependency pointing receipt -> policy only at the domain level.
type LockChecker interface {
	IsPolicyLocked(ctx context.Context, policyType PolicyType, policyID snowflake.ID) (bool, error)
}
