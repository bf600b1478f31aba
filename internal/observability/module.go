// Package observability provides the shared zap logger.
package observability

import (
	"github.com/policywaylabs/policyway/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module expects config.Module to be composed at the command level.
var Module = fx.Module("observability",
	fx.Provide(NewLogger),
	fx.WithLogger(fxLogger),
)

func NewLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
