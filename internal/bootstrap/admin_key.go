package bootstrap

import (
	"context"

	apikeydomain "github.com/policywaylabs/policyway/internal/apikey/domain"
	"github.com/policywaylabs/policyway/internal/config"
	"go.uber.org/fx"
)

const adminKeyName = "bootstrap-admin"

// EnsureAdminAPIKey registers the operator-supplied admin key on startup so a
// fresh install is reachable without a manual key-minting step. No-op when
// the config does not carry one.
func EnsureAdminAPIKey(lc fx.Lifecycle, cfg *config.Config, keys apikeydomain.Service) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if cfg.Bootstrap.AdminAPIKey == "" {
				return nil
			}
			return keys.EnsureNamed(ctx, adminKeyName, cfg.Bootstrap.AdminAPIKey)
		},
	})
}
