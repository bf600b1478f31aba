package apikey

import (
	"github.com/policywaylabs/policyway/internal/apikey/repository"
	"github.com/policywaylabs/policyway/internal/apikey/service"
	"go.uber.org/fx"
)

var Module = fx.Module("apikey.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
