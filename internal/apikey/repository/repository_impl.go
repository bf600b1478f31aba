package repository

import (
	"context"
	"errors"

	apikeydomain "github.com/policywaylabs/policyway/internal/apikey/domain"
	"gorm.io/gorm"
)

type repository struct{}

func Provide() apikeydomain.Repository {
	return &repository{}
}

func (r *repository) Insert(ctx context.Context, db *gorm.DB, key *apikeydomain.APIKey) error {
	return db.WithContext(ctx).Create(key).Error
}

func (r *repository) Update(ctx context.Context, db *gorm.DB, key *apikeydomain.APIKey) error {
	return db.WithContext(ctx).Save(key).Error
}

func (r *repository) FindByPrefix(ctx context.Context, db *gorm.DB, prefix string) (*apikeydomain.APIKey, error) {
	return r.findOne(ctx, db, "key_prefix = ?", prefix)
}

func (r *repository) FindByName(ctx context.Context, db *gorm.DB, name string) (*apikeydomain.APIKey, error) {
	return r.findOne(ctx, db, "name = ?", name)
}

func (r *repository) List(ctx context.Context, db *gorm.DB) ([]*apikeydomain.APIKey, error) {
	var keys []*apikeydomain.APIKey
	err := db.WithContext(ctx).Order("created_at ASC").Find(&keys).Error
	return keys, err
}

func (r *repository) findOne(ctx context.Context, db *gorm.DB, query string, args ...any) (*apikeydomain.APIKey, error) {
	var key apikeydomain.APIKey
	err := db.WithContext(ctx).Where(query, args...).First(&key).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &key, nil
}
