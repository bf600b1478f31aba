package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	customerdomain "github.com/policywaylabs/policyway/internal/customer/domain"
	"github.com/policywaylabs/policyway/pkg/db/pagination"
	"gorm.io/gorm"
)

type repository struct{}

func Provide() customerdomain.Repository {
	return &repository{}
}

func (r *repository) Insert(ctx context.Context, db *gorm.DB, customer *customerdomain.Customer) error {
	return db.WithContext(ctx).Create(customer).Error
}

func (r *repository) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*customerdomain.Customer, error) {
	var customer customerdomain.Customer
	err := db.WithContext(ctx).Where("id = ?", id).First(&customer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &customer, nil
}

func (r *repository) List(ctx context.Context, db *gorm.DB, page pagination.Pagination) ([]*customerdomain.Customer, error) {
	var customers []*customerdomain.Customer
	err := db.WithContext(ctx).
		Order("created_at DESC").
		Limit(page.Limit()).
		Offset(page.Offset()).
		Find(&customers).Error
	return customers, err
}

func (r *repository) Count(ctx context.Context, db *gorm.DB) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Model(&customerdomain.Customer{}).Count(&count).Error
	return count, err
}
