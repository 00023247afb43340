package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/etnz/folio"
	goredis "github.com/go-redis/redis/v8"
)

// RedisConfig configures the Redis cache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration // TTL of entries, 0 keeps them forever.
	Prefix   string        // Prefix of keys, "folio:dividends:" when empty.
}

// Redis caches payments in Redis, msgpack encoded, one key per symbol.
type Redis struct {
	client *goredis.Client
	ttl    time.Duration
	prefix string
}

// NewRedis connects to Redis and pings the server.
func NewRedis(ctx context.Context, cfg RedisConfig) (*Redis, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	return newRedis(client, cfg), nil
}

func newRedis(client *goredis.Client, cfg RedisConfig) *Redis {
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "folio:dividends:"
	}
	return &Redis{client: client, ttl: cfg.TTL, prefix: prefix}
}

var _ folio.DividendCache = (*Redis)(nil)

func (r *Redis) key(symbol string) string { return r.prefix + symbol }

func (r *Redis) Get(ctx context.Context, symbol string) ([]folio.DividendPayment, bool, error) {
	data, err := r.client.Get(ctx, r.key(symbol)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", r.key(symbol), err)
	}
	payments, err := decode(data)
	if err != nil {
		return nil, false, fmt.Errorf("cannot decode %s: %w", r.key(symbol), err)
	}
	return payments, true, nil
}

func (r *Redis) Put(ctx context.Context, symbol string, payments []folio.DividendPayment) error {
	data, err := encode(payments)
	if err != nil {
		return fmt.Errorf("cannot encode payments of %s: %w", symbol, err)
	}
	if err := r.client.Set(ctx, r.key(symbol), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", r.key(symbol), err)
	}
	return nil
}

// Close closes the connection pool.
func (r *Redis) Close() error { return r.client.Close() }
