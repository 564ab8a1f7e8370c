package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	redislib "github.com/redis/go-redis/v9"
	"github.com/sglre6355/sgrmusic/internal/modules/music_player/application/ports"
)

const trackCacheKeyPrefix = "sgrmusic:tracks:"

var errCacheMiss = errors.New("cache miss")

// RedisConfig contains Redis connection settings.
type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

// NewRedisClient connects to Redis, retrying the initial ping with exponential backoff.
func NewRedisClient(ctx context.Context, config RedisConfig) (*redislib.Client, error) {
	client := redislib.NewClient(&redislib.Options{
		Addr:     config.Address,
		Password: config.Password,
		DB:       config.DB,
	})

	attempts := 5
	backoff := 200 * time.Millisecond

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err = client.Ping(pingCtx).Err()
		cancel()

		if err == nil {
			return client, nil
		}

		slog.Debug("redis ping failed", "attempt", attempt, "error", err)

		if attempt < attempts {
			select {
			case <-ctx.Done():
				_ = client.Close()
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}
	}

	_ = client.Close()
	return nil, fmt.Errorf("failed to connect to redis at %s: %w", config.Address, err)
}

type trackCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

type redisTrackCache struct {
	client *redislib.Client
}

func (c redisTrackCache) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redislib.Nil) {
		return nil, errCacheMiss
	}
	return value, err
}

func (c redisTrackCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

// CachedTrackResolver remembers load results in Redis so repeated queries skip the audio backend.
// Cache failures fall through to the wrapped resolver.
type CachedTrackResolver struct {
	next  ports.TrackResolver
	cache trackCache
	ttl   time.Duration
}

// NewCachedTrackResolver wraps next with a Redis-backed cache.
func NewCachedTrackResolver(
	next ports.TrackResolver,
	client *redislib.Client,
	ttl time.Duration,
) *CachedTrackResolver {
	return newCachedTrackResolver(next, redisTrackCache{client: client}, ttl)
}

func newCachedTrackResolver(next ports.TrackResolver, cache trackCache, ttl time.Duration) *CachedTrackResolver {
	return &CachedTrackResolver{
		next:  next,
		cache: cache,
		ttl:   ttl,
	}
}

// LoadTracks returns the cached result for query or loads and caches it.
// Empty results are never cached.
func (r *CachedTrackResolver) LoadTracks(ctx context.Context, query string) (*ports.LoadResult, error) {
	key := trackCacheKeyPrefix + query

	cached, err := r.cache.Get(ctx, key)
	switch {
	case err == nil:
		var result ports.LoadResult
		decodeErr := json.Unmarshal(cached, &result)
		if decodeErr == nil {
			return &result, nil
		}
		slog.Warn("discarding malformed cached load result", "query", query, "error", decodeErr)
	case !errors.Is(err, errCacheMiss):
		slog.Warn("track cache lookup failed", "query", query, "error", err)
	}

	result, err := r.next.LoadTracks(ctx, query)
	if err != nil {
		return nil, err
	}
	if result.IsEmpty() {
		return result, nil
	}

	encoded, err := json.Marshal(result)
	if err != nil {
		slog.Warn("failed to encode load result", "query", query, "error", err)
		return result, nil
	}
	if err := r.cache.Set(ctx, key, encoded, r.ttl); err != nil {
		slog.Warn("failed to cache load result", "query", query, "error", err)
	}

	return result, nil
}

var _ ports.TrackResolver = (*CachedTrackResolver)(nil)
