package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	apikeydomain "github.com/policywaylabs/policyway/internal/apikey/domain"
	"github.com/policywaylabs/policyway/internal/clock"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	tokenScheme  = "pw"
	prefixBytes  = 4
	secretBytes  = 16
	tokenPartsN  = 3
	bcryptRounds = bcrypt.DefaultCost
)

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  apikeydomain.Repository
}

type ServiceParam struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  apikeydomain.Repository
}

func New(p ServiceParam) apikeydomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("apikey.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, name string) (string, *apikeydomain.APIKey, error) {
	prefix, err := randomHex(prefixBytes)
	if err != nil {
		return "", nil, err
	}
	secret, err := randomHex(secretBytes)
	if err != nil {
		return "", nil, err
	}
	token := fmt.Sprintf("%s_%s_%s", tokenScheme, prefix, secret)

	key, err := s.insert(ctx, name, prefix, token)
	if err != nil {
		return "", nil, err
	}
	return token, key, nil
}

func (s *Service) EnsureNamed(ctx context.Context, name string, token string) error {
	existing, err := s.repo.FindByName(ctx, s.db, name)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	prefix, _, ok := splitToken(token)
	if !ok {
		return apikeydomain.ErrInvalidAPIKey
	}
	if _, err := s.insert(ctx, name, prefix, token); err != nil {
		return err
	}
	s.log.Info("bootstrap api key ensured", zap.String("name", name))
	return nil
}

func (s *Service) Verify(ctx context.Context, token string) (*apikeydomain.APIKey, error) {
	prefix, _, ok := splitToken(token)
	if !ok {
		return nil, apikeydomain.ErrInvalidAPIKey
	}

	key, err := s.repo.FindByPrefix(ctx, s.db, prefix)
	if err != nil {
		return nil, err
	}
	if key == nil {
		return nil, apikeydomain.ErrAPIKeyNotFound
	}
	if key.Revoked() {
		return nil, apikeydomain.ErrAPIKeyRevoked
	}
	if bcrypt.CompareHashAndPassword([]byte(key.KeyHash), []byte(token)) != nil {
		return nil, apikeydomain.ErrInvalidAPIKey
	}
	return key, nil
}

func (s *Service) Revoke(ctx context.Context, id string) error {
	keyID, err := snowflake.ParseString(id)
	if err != nil {
		return apikeydomain.ErrAPIKeyNotFound
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		keys, err := s.repo.List(ctx, tx)
		if err != nil {
			return err
		}
		for _, key := range keys {
			if key.ID != keyID {
				continue
			}
			if key.Revoked() {
				return apikeydomain.ErrAPIKeyRevoked
			}
			now := s.clock.Now(ctx)
			key.RevokedAt = &now
			return s.repo.Update(ctx, tx, key)
		}
		return apikeydomain.ErrAPIKeyNotFound
	})
}

func (s *Service) List(ctx context.Context) ([]*apikeydomain.APIKey, error) {
	return s.repo.List(ctx, s.db)
}

func (s *Service) insert(ctx context.Context, name, prefix, token string) (*apikeydomain.APIKey, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(token), bcryptRounds)
	if err != nil {
		return nil, err
	}

	key := &apikeydomain.APIKey{
		ID:        s.genID.Generate(),
		Name:      name,
		KeyHash:   string(hash),
		KeyPrefix: prefix,
		CreatedAt: s.clock.Now(ctx),
	}
	if err := s.repo.Insert(ctx, s.db, key); err != nil {
		return nil, err
	}
	return key, nil
}

func splitToken(token string) (prefix string, secret string, ok bool) {
	parts := strings.Split(strings.TrimSpace(token), "_")
	if len(parts) != tokenPartsN || parts[0] != tokenScheme || parts[1] == "" || parts[2] == "" {
		return "", "", false
	}
	return parts[1], parts[2], true
}

func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
