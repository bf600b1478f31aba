package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	invoicedomain "github.com/policywaylabs/policyway/internal/invoice/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repository struct{}

func Provide() invoicedomain.Repository {
	return &repository{}
}

func (r *repository) Insert(ctx context.Context, db *gorm.DB, invoice *invoicedomain.Invoice) error {
	err := db.WithContext(ctx).Create(invoice).Error
	if err != nil && isUniqueViolation(err) {
		return invoicedomain.ErrDuplicateInvoice
	}
	return err
}

func (r *repository) Update(ctx context.Context, db *gorm.DB, invoice *invoicedomain.Invoice) error {
	invoice.UpdatedAt = time.Now().UTC()
	return db.WithContext(ctx).Save(invoice).Error
}

func (r *repository) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*invoicedomain.Invoice, error) {
	return r.findOne(ctx, db, "id = ?", id)
}

func (r *repository) FindByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*invoicedomain.Invoice, error) {
	var invoice invoicedomain.Invoice
	err := forUpdate(db.WithContext(ctx)).
		Where("id = ?", id).
		First(&invoice).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &invoice, nil
}

func (r *repository) FindByShareToken(ctx context.Context, db *gorm.DB, token string) (*invoicedomain.Invoice, error) {
	return r.findOne(ctx, db, "share_token = ?", token)
}

func (r *repository) FindByPayoutRef(ctx context.Context, db *gorm.DB, payoutType string, payoutID snowflake.ID) (*invoicedomain.Invoice, error) {
	return r.findOne(ctx, db, "payout_type = ? AND payout_id = ?", payoutType, payoutID)
}

func (r *repository) List(ctx context.Context, db *gorm.DB, status invoicedomain.Status, limit, offset int) ([]*invoicedomain.Invoice, int64, error) {
	query := db.WithContext(ctx).Model(&invoicedomain.Invoice{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var invoices []*invoicedomain.Invoice
	err := query.
		Order("issued_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&invoices).Error
	return invoices, total, err
}

func (r *repository) MarkOverdueBefore(ctx context.Context, db *gorm.DB, cutoff time.Time) (int64, error) {
	result := db.WithContext(ctx).Model(&invoicedomain.Invoice{}).
		Where("status = ? AND due_date < ?", invoicedomain.StatusPending, cutoff).
		Updates(map[string]any{"status": invoicedomain.StatusOverdue, "updated_at": cutoff})
	return result.RowsAffected, result.Error
}

func (r *repository) findOne(ctx context.Context, db *gorm.DB, query string, args ...any) (*invoicedomain.Invoice, error) {
	var invoice invoicedomain.Invoice
	err := db.WithContext(ctx).Where(query, args...).First(&invoice).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &invoice, nil
}

// forUpdate takes a row lock where the dialect supports one. The sqlite
// used by tests has no row locks; its single writer covers the same races.
func forUpdate(db *gorm.DB) *gorm.DB {
	if db.Dialector.Name() == "postgres" {
		return db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return db
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}
