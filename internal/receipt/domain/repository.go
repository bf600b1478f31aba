package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	policydomain "github.com/policywaylabs/policyway/internal/policy/domain"
	"github.com/policywaylabs/policyway/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, receipt *CommissionReceipt) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*CommissionReceipt, error)
	// FindByIDForUpdate takes a row-level lock; the distribution engine uses it
	// so two concurrent distribute calls cannot both pass the idempotency check.
	FindByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*CommissionReceipt, error)
	FindByPolicy(ctx context.Context, db *gorm.DB, policyType policydomain.PolicyType, policyID snowflake.ID) (*CommissionReceipt, error)
	List(ctx context.Context, db *gorm.DB, page pagination.Pagination) ([]*CommissionReceipt, error)
	Count(ctx context.Context, db *gorm.DB) (int64, error)
	MarkDistributed(ctx context.Context, db *gorm.DB, id snowflake.ID, at time.Time) error
	ListPendingAutoDistribution(ctx context.Context, db *gorm.DB, limit int) ([]*CommissionReceipt, error)
}
