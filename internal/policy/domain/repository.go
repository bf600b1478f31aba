package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/policywaylabs/policyway/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, policy *Policy) error
	InsertShares(ctx context.Context, db *gorm.DB, shares []RoleShare) error
	InsertInstallments(ctx context.Context, db *gorm.DB, installments []Installment) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Policy, error)
	FindByNumber(ctx context.Context, db *gorm.DB, number string) (*Policy, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter, page pagination.Pagination) ([]*Policy, error)
	Count(ctx context.Context, db *gorm.DB, filter ListFilter) (int64, error)
	Update(ctx context.Context, db *gorm.DB, policy *Policy) error
	ReplaceShares(ctx context.Context, db *gorm.DB, policyID snowflake.ID, shares []RoleShare) error
	ListInstallments(ctx context.Context, db *gorm.DB, policyID snowflake.ID) ([]Installment, error)
	MarkInstallmentPaid(ctx context.Context, db *gorm.DB, installmentID snowflake.ID) error
}

type ListFilter struct {
	CustomerID *snowflake.ID
	PolicyType PolicyType
}
