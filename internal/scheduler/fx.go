package scheduler

import (
	"context"

	"go.uber.org/fx"
)

var Module = fx.Module("scheduler",
	fx.Provide(New),
	fx.Invoke(func(lc fx.Lifecycle, s *Scheduler) {
		lc.Append(fx.Hook{
			OnStart: func(context.Context) error {
				go s.RunForever()
				return nil
			},
			OnStop: func(context.Context) error {
				s.Shutdown()
				return nil
			},
		})
	}),
)
