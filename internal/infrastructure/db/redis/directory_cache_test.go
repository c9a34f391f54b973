package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/99minutos/account-service/internal/core/domain"
)

// fakeRedis implements the subset of redis.Cmdable the cache uses; any other
// method panics through the nil embedded interface.
type fakeRedis struct {
	redis.Cmdable
	data   map[string]string
	ttls   map[string]time.Duration
	getErr error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: make(map[string]string), ttls: make(map[string]time.Duration)}
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	if f.getErr != nil {
		return redis.NewStringResult("", f.getErr)
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value interface{}, ttl time.Duration) *redis.StatusCmd {
	switch v := value.(type) {
	case []byte:
		f.data[key] = string(v)
	case string:
		f.data[key] = v
	}
	f.ttls[key] = ttl
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			delete(f.data, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

type countingDirectory struct {
	identities map[string]domain.Identity
	lookups    int
	evicted    []string
}

func (d *countingDirectory) Lookup(_ context.Context, email string) (*domain.Identity, error) {
	d.lookups++
	identity, ok := d.identities[email]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return &identity, nil
}

func (d *countingDirectory) Evict(_ context.Context, emails ...string) error {
	d.evicted = append(d.evicted, emails...)
	return nil
}

func newCountingDirectory() *countingDirectory {
	return &countingDirectory{identities: map[string]domain.Identity{
		"juan@rodriguez.org": {Email: "juan@rodriguez.org", CredentialVersion: "hash", Active: true},
	}}
}

func TestDirectoryCache_ReadThrough(t *testing.T) {
	rdb := newFakeRedis()
	next := newCountingDirectory()
	cache := NewDirectoryCache(rdb, next, time.Minute, zerolog.Nop())

	for i := 0; i < 3; i++ {
		identity, err := cache.Lookup(context.Background(), "juan@rodriguez.org")
		if err != nil {
			t.Fatalf("Lookup returned error: %v", err)
		}
		if identity.Email != "juan@rodriguez.org" || identity.CredentialVersion != "hash" || !identity.Active {
			t.Fatalf("unexpected identity: %+v", identity)
		}
	}

	if next.lookups != 1 {
		t.Fatalf("expected 1 lookup on the underlying directory, got %d", next.lookups)
	}
	if ttl := rdb.ttls["account:directory:juan@rodriguez.org"]; ttl != time.Minute {
		t.Fatalf("expected ttl 1m, got %v", ttl)
	}
}

func TestDirectoryCache_NotFoundIsNotCached(t *testing.T) {
	rdb := newFakeRedis()
	next := newCountingDirectory()
	cache := NewDirectoryCache(rdb, next, time.Minute, zerolog.Nop())

	for i := 0; i < 2; i++ {
		if _, err := cache.Lookup(context.Background(), "ghost@rodriguez.org"); !errors.Is(err, domain.ErrAccountNotFound) {
			t.Fatalf("expected ErrAccountNotFound, got %v", err)
		}
	}
	if next.lookups != 2 {
		t.Fatalf("expected every miss to reach the directory, got %d lookups", next.lookups)
	}
	if len(rdb.data) != 0 {
		t.Fatalf("expected nothing cached, got %v", rdb.data)
	}
}

func TestDirectoryCache_RedisFailureFallsBack(t *testing.T) {
	rdb := newFakeRedis()
	rdb.getErr = errors.New("connection refused")
	next := newCountingDirectory()
	cache := NewDirectoryCache(rdb, next, time.Minute, zerolog.Nop())

	identity, err := cache.Lookup(context.Background(), "juan@rodriguez.org")
	if err != nil {
		t.Fatalf("Lookup returned error: %v", err)
	}
	if identity.Email != "juan@rodriguez.org" {
		t.Fatalf("unexpected identity: %+v", identity)
	}
}

func TestDirectoryCache_Evict(t *testing.T) {
	rdb := newFakeRedis()
	next := newCountingDirectory()
	cache := NewDirectoryCache(rdb, next, time.Minute, zerolog.Nop())

	if _, err := cache.Lookup(context.Background(), "juan@rodriguez.org"); err != nil {
		t.Fatalf("Lookup returned error: %v", err)
	}
	if err := cache.Evict(context.Background(), "juan@rodriguez.org", "new@rodriguez.org"); err != nil {
		t.Fatalf("Evict returned error: %v", err)
	}
	if len(rdb.data) != 0 {
		t.Fatalf("expected cache to be empty, got %v", rdb.data)
	}
	if len(next.evicted) != 2 {
		t.Fatalf("expected eviction to be forwarded, got %v", next.evicted)
	}

	if _, err := cache.Lookup(context.Background(), "juan@rodriguez.org"); err != nil {
		t.Fatalf("Lookup returned error: %v", err)
	}
	if next.lookups != 2 {
		t.Fatalf("expected lookup after eviction to reach the directory, got %d", next.lookups)
	}
}
