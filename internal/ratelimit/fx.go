package ratelimit

import (
	"github.com/policywaylabs/policyway/internal/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("ratelimit",
	fx.Provide(func(client *redis.Client, log *zap.Logger, cfg *config.Config) *Limiter {
		return NewLimiter(client, log, cfg.RateLimit.PublicRequestsPerMinute)
	}),
)
