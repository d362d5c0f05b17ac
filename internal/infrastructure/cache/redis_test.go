package cache

import (
	"testing"
	"time"

	"github.com/sameerjoshi/docsimus-physicians-sub001/config"
)

func TestRedisOptionsFromHostAndPort(t *testing.T) {
	opts, err := redisOptions(config.RedisConfig{Host: "cache.internal", Port: "6380", DB: 2})
	if err != nil {
		t.Fatalf("options: %v", err)
	}
	if opts.Addr != "cache.internal:6380" || opts.DB != 2 {
		t.Fatalf("unexpected options: addr=%s db=%d", opts.Addr, opts.DB)
	}
	if opts.DialTimeout != 5*time.Second || opts.ClientName != clientName {
		t.Fatalf("expected defaults applied, got timeout=%s name=%q", opts.DialTimeout, opts.ClientName)
	}
}

func TestRedisOptionsPreferURL(t *testing.T) {
	opts, err := redisOptions(config.RedisConfig{
		URL:         "redis://:s3cret@redis.example.com:6379/4",
		Host:        "ignored",
		Port:        "1",
		PoolSize:    25,
		DialTimeout: 2 * time.Second,
	})
	if err != nil {
		t.Fatalf("options: %v", err)
	}
	if opts.Addr != "redis.example.com:6379" || opts.DB != 4 || opts.Password != "s3cret" {
		t.Fatalf("unexpected options: addr=%s db=%d", opts.Addr, opts.DB)
	}
	if opts.PoolSize != 25 || opts.DialTimeout != 2*time.Second {
		t.Fatalf("expected pool and timeout overrides, got %d %s", opts.PoolSize, opts.DialTimeout)
	}

	if _, err := redisOptions(config.RedisConfig{URL: "http://not-redis"}); err == nil {
		t.Fatalf("expected invalid url to fail")
	}
}
