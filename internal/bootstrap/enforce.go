package bootstrap

import (
	"context"

	"go.uber.org/fx"
)

// EnforceSchemaGate aborts startup when the database schema is missing,
// stale, or was migrated from a different set of migration files.
func EnforceSchemaGate(lc fx.Lifecycle, gate SchemaGate) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return gate.MustBeActive(ctx)
		},
	})
}
