package invoice

import (
	"github.com/policywaylabs/policyway/internal/invoice/render"
	"github.com/policywaylabs/policyway/internal/invoice/repository"
	"github.com/policywaylabs/policyway/internal/invoice/service"
	"go.uber.org/fx"
)

var Module = fx.Module("invoice.service",
	fx.Provide(
		render.NewRenderer,
		repository.Provide,
		service.NewService,
	),
)
