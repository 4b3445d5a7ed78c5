package app

import (
	"context"

	goredis "github.com/redis/go-redis/v9"

	"github.com/AKH-221/Daly-College-AI-Assistant/internal/clients/gcs"
	"github.com/AKH-221/Daly-College-AI-Assistant/internal/clients/redis"
	"github.com/AKH-221/Daly-College-AI-Assistant/internal/config"
	"github.com/AKH-221/Daly-College-AI-Assistant/internal/platform/logger"
)

type Clients struct {
	Redis   *goredis.Client
	Storage gcs.Reader
}

// wireClients connects only what the configuration asks for. Failures are
// logged and leave the client nil: the cache and object storage are both
// optional at runtime.
func wireClients(ctx context.Context, log *logger.Logger, cfg *config.Config) Clients {
	var c Clients

	// Redis
	if cfg.Cache.Backend == config.CacheRedis {
		rdb, err := redis.NewClient(ctx, log, cfg.Cache.RedisAddr)
		if err != nil {
			log.Warn("redis unavailable; reply cache disabled", "error", err)
		} else {
			c.Redis = rdb
		}
	}

	// Gcs
	if _, _, ok := gcs.ParseURI(cfg.Knowledge.Path); ok {
		reader, err := gcs.NewReader(ctx, log)
		if err != nil {
			log.Warn("storage client unavailable", "error", err)
		} else {
			c.Storage = reader
		}
	}
	return c
}

func (c Clients) Close(log *logger.Logger) {
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			log.Warn("redis close failed", "error", err)
		}
	}
	if c.Storage != nil {
		if err := c.Storage.Close(); err != nil {
			log.Warn("storage client close failed", "error", err)
		}
	}
}
