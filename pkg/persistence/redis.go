package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/angelmondragon/storefront-engine/pkg/config"
	pkgerrors "github.com/angelmondragon/storefront-engine/pkg/errors"
)

const keyNamespace = "storefront"

const snapshotPrefix = "snapshot"

type cmdable interface {
	Get(context.Context, string) *redis.StringCmd
	Set(context.Context, string, any, time.Duration) *redis.StatusCmd
	Del(context.Context, ...string) *redis.IntCmd
}

// Redis stores the snapshot in Redis under a namespaced key. With a TTL it
// models the session lifetime: checkout-in-progress state that should not
// outlive the shopper's session.
type Redis[T any] struct {
	store cmdable
	key   string
	ttl   time.Duration
}

// NewRedis builds a Redis-backed store for the named snapshot scope.
// A zero TTL means the key never expires.
func NewRedis[T any](store cmdable, scope string, ttl time.Duration) (*Redis[T], error) {
	if store == nil {
		return nil, errors.New("redis store required")
	}
	scope = strings.TrimSpace(scope)
	if scope == "" {
		return nil, errors.New("snapshot scope required")
	}
	return &Redis[T]{
		store: store,
		key:   strings.Join([]string{keyNamespace, snapshotPrefix, scope}, ":"),
		ttl:   ttl,
	}, nil
}

// Key exposes the namespaced Redis key, mostly for logging.
func (r *Redis[T]) Key() string {
	return r.key
}

func (r *Redis[T]) Load(ctx context.Context) (T, bool, error) {
	var zero T
	raw, err := r.store.Get(ctx, r.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return zero, false, nil
		}
		return zero, false, fmt.Errorf("get snapshot %s: %w", r.key, err)
	}

	var snapshot T
	if err := json.Unmarshal([]byte(raw), &snapshot); err != nil {
		return zero, false, pkgerrors.Wrap(pkgerrors.CodeStateCorruption, err, "decode snapshot")
	}
	return snapshot, true, nil
}

func (r *Redis[T]) Save(ctx context.Context, snapshot T) error {
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := r.store.Set(ctx, r.key, raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("set snapshot %s: %w", r.key, err)
	}
	return nil
}

func (r *Redis[T]) Clear(ctx context.Context) error {
	if err := r.store.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("del snapshot %s: %w", r.key, err)
	}
	return nil
}

// NewRedisClient bootstraps a Redis connection with pooling/timeouts from
// config and verifies connectivity.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	opts, err := optionsFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func optionsFromConfig(cfg config.RedisConfig) (*redis.Options, error) {
	if cfg.URL == "" && cfg.Address == "" {
		return nil, errors.New("redis url or address is required")
	}
	var opts *redis.Options
	if cfg.URL != "" {
		parsed, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("parsing redis url: %w", err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{
			Addr:     cfg.Address,
			Password: cfg.Password,
			DB:       cfg.DB,
		}
	}
	if opts.DB == 0 {
		opts.DB = cfg.DB
	}
	if opts.PoolSize == 0 {
		opts.PoolSize = cfg.PoolSize
	}
	if opts.MinIdleConns == 0 {
		opts.MinIdleConns = cfg.MinIdleConns
	}
	if opts.DialTimeout == 0 {
		opts.DialTimeout = cfg.DialTimeout
	}
	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = cfg.ReadTimeout
	}
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = cfg.WriteTimeout
	}
	return opts, nil
}
