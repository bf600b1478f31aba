package policy

import (
	"github.com/policywaylabs/policyway/internal/policy/repository"
	"github.com/policywaylabs/policyway/internal/policy/service"
	"go.uber.org/fx"
)

var Module = fx.Module("policy.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
