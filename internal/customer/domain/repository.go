package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/policywaylabs/policyway/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, customer *Customer) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Customer, error)
	List(ctx context.Context, db *gorm.DB, page pagination.Pagination) ([]*Customer, error)
	Count(ctx context.Context, db *gorm.DB) (int64, error)
}

type PartyRepository interface {
	Insert(ctx context.Context, db *gorm.DB, party *Party) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Party, error)
	ListByRole(ctx context.Context, db *gorm.DB, role Role) ([]*Party, error)
	List(ctx context.Context, db *gorm.DB, page pagination.Pagination) ([]*Party, error)
	Count(ctx context.Context, db *gorm.DB) (int64, error)
}
