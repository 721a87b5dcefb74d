package redisconn

import (
	redis "github.com/redis/go-redis/v9"
	"github.com/viralzap/viralzap/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// New returns a redis client, or nil when no address is configured. Callers
// treat a nil client as "locking disabled".
func New(cfg config.Config, log *zap.Logger) *redis.Client {
	if cfg.RedisAddr == "" {
		log.Warn("redis not configured, scheduler locks disabled")
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
}

var Module = fx.Module("redis",
	fx.Provide(New),
)
