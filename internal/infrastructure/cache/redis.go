package cache

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/sameerjoshi/docsimus-physicians-sub001/config"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const clientName = "physician-onboarding"

// NewRedisClient connects the client shared by the token store and the
// event stream and fails fast when the server cannot be reached.
func NewRedisClient(cfg config.RedisConfig, log *logrus.Logger) (*redis.Client, error) {
	opts, err := redisOptions(cfg)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), opts.DialTimeout+time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", opts.Addr, err)
	}

	log.WithFields(logrus.Fields{
		"addr":      opts.Addr,
		"db":        opts.DB,
		"pool_size": opts.PoolSize,
	}).Info("Successfully connected to Redis")

	return client, nil
}

// redisOptions prefers REDIS_URL when set; host, port and db are the
// fallback. Pool and timeout settings apply to both forms.
func redisOptions(cfg config.RedisConfig) (*redis.Options, error) {
	var opts *redis.Options
	if cfg.URL != "" {
		parsed, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{
			Addr:     net.JoinHostPort(cfg.Host, cfg.Port),
			Password: cfg.Password,
			DB:       cfg.DB,
		}
	}

	opts.ClientName = clientName
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	opts.DialTimeout = cfg.DialTimeout
	if opts.DialTimeout <= 0 {
		opts.DialTimeout = 5 * time.Second
	}
	return opts, nil
}
