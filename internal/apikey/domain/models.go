// Package domain defines admin API keys. Keys are presented as
// pw_<prefix>_<secret>; only the prefix and a bcrypt hash of the full token
// are stored.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

var (
	ErrAPIKeyNotFound = errors.New("api key not found")
	ErrAPIKeyRevoked  = errors.New("api key revoked")
	ErrInvalidAPIKey  = errors.New("invalid api key")
)

type APIKey struct {
	ID        snowflake.ID `gorm:"primaryKey"`
	Name      string       `gorm:"type:text;not null"`
	KeyHash   string       `gorm:"type:text;not null"`
	KeyPrefix string       `gorm:"type:text;not null;uniqueIndex"`
	RevokedAt *time.Time   ``
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (APIKey) TableName() string { return "api_keys" }

func (k *APIKey) Revoked() bool { return k.RevokedAt != nil }

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, key *APIKey) error
	Update(ctx context.Context, db *gorm.DB, key *APIKey) error
	FindByPrefix(ctx context.Context, db *gorm.DB, prefix string) (*APIKey, error)
	FindByName(ctx context.Context, db *gorm.DB, name string) (*APIKey, error)
	List(ctx context.Context, db *gorm.DB) ([]*APIKey, error)
}

type Service interface {
	// Create mints a key and returns the plaintext token once; it is never
	// recoverable afterwards.
	Create(ctx context.Context, name string) (string, *APIKey, error)
	// EnsureNamed creates the named key with a fixed token when it does not
	// exist yet. Used by the startup bootstrap.
	EnsureNamed(ctx context.Context, name string, token string) error
	Verify(ctx context.Context, token string) (*APIKey, error)
	Revoke(ctx context.Context, id string) error
	List(ctx context.Context) ([]*APIKey, error)
}
