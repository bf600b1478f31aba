// Package ratelimit implements a fixed-window per-client limiter over redis.
// It guards the public invoice share endpoints, which are reachable without
// an API key.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const window = time.Minute

type Limiter struct {
	client *redis.Client
	log    *zap.Logger
	limit  int
}

func NewLimiter(client *redis.Client, log *zap.Logger, limit int) *Limiter {
	return &Limiter{
		client: client,
		log:    log.Named("ratelimit"),
		limit:  limit,
	}
}

// Allow counts one hit for key in the current minute window and reports
// whether the caller is still under the limit. Redis being unreachable fails
// open; public invoice reads are not worth an outage.
func (l *Limiter) Allow(ctx context.Context, key string) (bool, error) {
	if l.limit <= 0 {
		return true, nil
	}

	bucket := fmt.Sprintf("ratelimit:%s:%d", key, time.Now().Unix()/int64(window.Seconds()))

	pipe := l.client.TxPipeline()
	count := pipe.Incr(ctx, bucket)
	pipe.Expire(ctx, bucket, window)
	if _, err := pipe.Exec(ctx); err != nil {
		l.log.Warn("rate limit check failed, allowing request", zap.Error(err))
		return true, err
	}
	return count.Val() <= int64(l.limit), nil
}
