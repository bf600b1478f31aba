package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Repository calls take the caller's db handle so they join whatever
// transaction the service opened.
type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, invoice *Invoice) error
	Update(ctx context.Context, db *gorm.DB, invoice *Invoice) error

	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Invoice, error)
	FindByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Invoice, error)
	FindByShareToken(ctx context.Context, db *gorm.DB, token string) (*Invoice, error)
	FindByPayoutRef(ctx context.Context, db *gorm.DB, payoutType string, payoutID snowflake.ID) (*Invoice, error)

	List(ctx context.Context, db *gorm.DB, status Status, limit, offset int) ([]*Invoice, int64, error)
	// MarkOverdueBefore flips every pending invoice whose due date passed and
	// returns how many rows changed.
	MarkOverdueBefore(ctx context.Context, db *gorm.DB, cutoff time.Time) (int64, error)
}
