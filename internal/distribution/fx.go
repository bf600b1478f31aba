package distribution

import (
	"github.com/policywaylabs/policyway/internal/distribution/repository"
	"github.com/policywaylabs/policyway/internal/distribution/service"
	"go.uber.org/fx"
)

// Module provides the payout distribution engine.
var Module = fx.Module("distribution.service",
	fx.Provide(
		repository.Provide,
		service.NewService,
	),
)
