package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/angelmondragon/storefront-engine/pkg/config"
	pkgerrors "github.com/angelmondragon/storefront-engine/pkg/errors"
)

type fakeCmdable struct {
	values map[string]string
	ttls   map[string]time.Duration
}

func newFakeCmdable() *fakeCmdable {
	return &fakeCmdable{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeCmdable) Get(_ context.Context, key string) *redis.StringCmd {
	val, ok := f.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(val, nil)
}

func (f *fakeCmdable) Set(_ context.Context, key string, value any, ttl time.Duration) *redis.StatusCmd {
	switch v := value.(type) {
	case []byte:
		f.values[key] = string(v)
	case string:
		f.values[key] = v
	}
	f.ttls[key] = ttl
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeCmdable) Del(_ context.Context, keys ...string) *redis.IntCmd {
	var removed int64
	for _, key := range keys {
		if _, ok := f.values[key]; ok {
			delete(f.values, key)
			removed++
		}
	}
	return redis.NewIntResult(removed, nil)
}

func TestRedisRoundTrip(t *testing.T) {
	t.Parallel()

	fake := newFakeCmdable()
	store, err := NewRedis[testSnapshot](fake, "checkout", 30*time.Minute)
	if err != nil {
		t.Fatalf("NewRedis failed: %v", err)
	}
	ctx := context.Background()

	if _, found, err := store.Load(ctx); err != nil || found {
		t.Fatalf("expected empty store, found=%v err=%v", found, err)
	}

	if err := store.Save(ctx, testSnapshot{Name: "session", Count: 1}); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if ttl := fake.ttls[store.Key()]; ttl != 30*time.Minute {
		t.Fatalf("expected session TTL on key, got %v", ttl)
	}

	got, found, err := store.Load(ctx)
	if err != nil || !found {
		t.Fatalf("expected snapshot, found=%v err=%v", found, err)
	}
	if got.Name != "session" {
		t.Fatalf("unexpected snapshot %+v", got)
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if _, found, _ := store.Load(ctx); found {
		t.Fatal("expected cleared store to be empty")
	}
}

func TestRedisKeyNamespacing(t *testing.T) {
	t.Parallel()

	store, err := NewRedis[testSnapshot](newFakeCmdable(), "checkout", 0)
	if err != nil {
		t.Fatalf("NewRedis failed: %v", err)
	}
	if store.Key() != "storefront:snapshot:checkout" {
		t.Fatalf("unexpected key %q", store.Key())
	}

	if _, err := NewRedis[testSnapshot](newFakeCmdable(), "  ", 0); err == nil {
		t.Fatal("expected error for blank scope")
	}
	if _, err := NewRedis[testSnapshot](nil, "checkout", 0); err == nil {
		t.Fatal("expected error for nil store")
	}
}

func TestRedisCorruptSnapshot(t *testing.T) {
	t.Parallel()

	fake := newFakeCmdable()
	store, err := NewRedis[testSnapshot](fake, "checkout", 0)
	if err != nil {
		t.Fatalf("NewRedis failed: %v", err)
	}
	fake.values[store.Key()] = "][ not json"

	_, found, err := store.Load(context.Background())
	if found {
		t.Fatal("corrupt snapshot must not be reported as found")
	}
	if !pkgerrors.IsCode(err, pkgerrors.CodeStateCorruption) {
		t.Fatalf("expected STATE_CORRUPTION, got %v", err)
	}
}

func TestOptionsFromConfig(t *testing.T) {
	t.Parallel()

	opts, err := optionsFromConfig(config.RedisConfig{
		URL:      "redis://localhost:6379/2",
		PoolSize: 5,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.DB != 2 {
		t.Fatalf("expected db 2 from url, got %d", opts.DB)
	}
	if opts.PoolSize != 5 {
		t.Fatalf("expected pool size fallback, got %d", opts.PoolSize)
	}

	if _, err := optionsFromConfig(config.RedisConfig{}); err == nil {
		t.Fatal("expected error when neither url nor address set")
	}
}
