package service

import (
	"context"
	"strings"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	apikeydomain "github.com/policywaylabs/policyway/internal/apikey/domain"
	apikeyrepo "github.com/policywaylabs/policyway/internal/apikey/repository"
	"github.com/policywaylabs/policyway/internal/clock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newKeyService(t *testing.T) apikeydomain.Service {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&apikeydomain.APIKey{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return New(ServiceParam{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clock.New(),
		Repo:  apikeyrepo.Provide(),
	})
}

func TestCreateAndVerify(t *testing.T) {
	svc := newKeyService(t)
	ctx := context.Background()

	token, key, err := svc.Create(ctx, "ci")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(token, "pw_"))
	require.Equal(t, "ci", key.Name)
	require.NotContains(t, key.KeyHash, token)

	verified, err := svc.Verify(ctx, token)
	require.NoError(t, err)
	require.Equal(t, key.ID, verified.ID)
}

func TestVerifyRejectsBadTokens(t *testing.T) {
	svc := newKeyService(t)
	ctx := context.Background()

	token, _, err := svc.Create(ctx, "ci")
	require.NoError(t, err)

	_, err = svc.Verify(ctx, "garbage")
	require.ErrorIs(t, err, apikeydomain.ErrInvalidAPIKey)

	_, err = svc.Verify(ctx, "sk_aaaa_bbbb")
	require.ErrorIs(t, err, apikeydomain.ErrInvalidAPIKey)

	// Same prefix, wrong secret.
	tampered := token[:len(token)-4] + "0000"
	if tampered == token {
		tampered = token[:len(token)-4] + "ffff"
	}
	_, err = svc.Verify(ctx, tampered)
	require.ErrorIs(t, err, apikeydomain.ErrInvalidAPIKey)
}

func TestVerifyRejectsRevokedKey(t *testing.T) {
	svc := newKeyService(t)
	ctx := context.Background()

	token, key, err := svc.Create(ctx, "ci")
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(ctx, key.ID.String()))

	_, err = svc.Verify(ctx, token)
	require.ErrorIs(t, err, apikeydomain.ErrAPIKeyRevoked)
}

func TestEnsureNamedIsIdempotent(t *testing.T) {
	svc := newKeyService(t)
	ctx := context.Background()

	const token = "pw_deadbeef_00112233445566778899aabbccddeeff"
	require.NoError(t, svc.EnsureNamed(ctx, "bootstrap-admin", token))
	require.NoError(t, svc.EnsureNamed(ctx, "bootstrap-admin", token))

	keys, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, keys, 1)

	verified, err := svc.Verify(ctx, token)
	require.NoError(t, err)
	require.Equal(t, "bootstrap-admin", verified.Name)
}
