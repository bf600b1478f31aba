package customer

import (
	"github.com/policywaylabs/policyway/internal/customer/repository"
	"github.com/policywaylabs/policyway/internal/customer/service"
	"go.uber.org/fx"
)

var Module = fx.Module("customer.service",
	fx.Provide(repository.Provide),
	fx.Provide(repository.ProvideParty),
	fx.Provide(service.NewService),
)
