package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	customerdomain "github.com/policywaylabs/policyway/internal/customer/domain"
	"github.com/policywaylabs/policyway/pkg/db/pagination"
	"gorm.io/gorm"
)

type partyRepository struct{}

func ProvideParty() customerdomain.PartyRepository {
	return &partyRepository{}
}

func (r *partyRepository) Insert(ctx context.Context, db *gorm.DB, party *customerdomain.Party) error {
	return db.WithContext(ctx).Create(party).Error
}

func (r *partyRepository) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*customerdomain.Party, error) {
	var party customerdomain.Party
	err := db.WithContext(ctx).Where("id = ?", id).First(&party).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &party, nil
}

func (r *partyRepository) ListByRole(ctx context.Context, db *gorm.DB, role customerdomain.Role) ([]*customerdomain.Party, error) {
	var parties []*customerdomain.Party
	err := db.WithContext(ctx).
		Where("role = ? AND active = ?", role, true).
		Order("name ASC").
		Find(&parties).Error
	return parties, err
}

func (r *partyRepository) List(ctx context.Context, db *gorm.DB, page pagination.Pagination) ([]*customerdomain.Party, error) {
	var parties []*customerdomain.Party
	err := db.WithContext(ctx).
		Order("created_at DESC").
		Limit(page.Limit()).
		Offset(page.Offset()).
		Find(&parties).Error
	return parties, err
}

func (r *partyRepository) Count(ctx context.Context, db *gorm.DB) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Model(&customerdomain.Party{}).Count(&count).Error
	return count, err
}
