package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/99minutos/account-service/internal/api/metrics"
	"github.com/99minutos/account-service/internal/core/domain"
	"github.com/99minutos/account-service/internal/core/ports"
)

const defaultCacheTTL = 5 * time.Minute

// DirectoryCache is a read-through Redis cache in front of another
// AccountDirectory. Only found identities are cached.
// Key format: account:directory:<email>
type DirectoryCache struct {
	client redis.Cmdable
	next   ports.AccountDirectory
	ttl    time.Duration
	log    zerolog.Logger
}

var _ ports.AccountDirectory = (*DirectoryCache)(nil)

// NewDirectoryCache wraps next. A non-positive ttl falls back to five minutes.
func NewDirectoryCache(client redis.Cmdable, next ports.AccountDirectory, ttl time.Duration, log zerolog.Logger) *DirectoryCache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &DirectoryCache{client: client, next: next, ttl: ttl, log: log}
}

// Lookup serves from Redis when possible. Redis failures degrade to the
// underlying directory instead of failing the request.
func (d *DirectoryCache) Lookup(ctx context.Context, email string) (*domain.Identity, error) {
	raw, err := d.client.Get(ctx, d.key(email)).Bytes()
	switch {
	case err == nil:
		var identity domain.Identity
		if jsonErr := json.Unmarshal(raw, &identity); jsonErr == nil {
			metrics.DirectoryCacheTotal.WithLabelValues("hit").Inc()
			return &identity, nil
		}
		metrics.DirectoryCacheTotal.WithLabelValues("error").Inc()
	case errors.Is(err, redis.Nil):
		metrics.DirectoryCacheTotal.WithLabelValues("miss").Inc()
	default:
		metrics.DirectoryCacheTotal.WithLabelValues("error").Inc()
		d.log.Warn().Err(err).Msg("directory cache read failed")
	}

	identity, err := d.next.Lookup(ctx, email)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(identity)
	if err != nil {
		return identity, nil
	}
	if err := d.client.Set(ctx, d.key(email), payload, d.ttl).Err(); err != nil {
		d.log.Warn().Err(err).Msg("directory cache write failed")
	}
	return identity, nil
}

// Evict drops the cached entries for emails and forwards the call.
func (d *DirectoryCache) Evict(ctx context.Context, emails ...string) error {
	if len(emails) == 0 {
		return nil
	}
	keys := make([]string, len(emails))
	for i, email := range emails {
		keys[i] = d.key(email)
	}
	if err := d.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("directory cache evict: %w", err)
	}
	return d.next.Evict(ctx, emails...)
}

func (d *DirectoryCache) key(email string) string {
	return "account:directory:" + email
}
