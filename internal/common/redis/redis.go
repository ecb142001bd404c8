package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"github.com/soleara/wanderly/internal/common/config"
	"github.com/soleara/wanderly/internal/common/logger"
)

// Client embeds the go-redis client so callers use its API directly.
type Client struct {
	*goredis.Client
}

func Connect(cfg config.RedisConfig, log *logger.Logger) (*Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}

	log.Infof("Connected to redis at %s (db %d)", cfg.Addr, cfg.DB)

	return &Client{Client: client}, nil
}
