package receipt

import (
	"github.com/policywaylabs/policyway/internal/receipt/repository"
	"github.com/policywaylabs/policyway/internal/receipt/service"
	"go.uber.org/fx"
)

var Module = fx.Module("receipt.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
	fx.Provide(NewLockChecker),
)
