package permcache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisEntry is the stored value. The logical expiry travels with the data so
// a fresh read can be distinguished from a stale one; the physical redis TTL
// (logical TTL + stale window) bounds how long stale data can be served.
type redisEntry struct {
	Perms     []string  `json:"perms"`
	ExpiresAt time.Time `json:"expires_at"`
}

// RedisStore is the distributed cache backend shared by all processes of a
// deployment. Cache operations are best-effort: transport errors degrade to
// misses and are logged rather than propagated, since the engine treats the
// cache as an optimization layer.
type RedisStore struct {
	client   redis.UniversalClient
	staleFor time.Duration
	scanSize int64
	log      *slog.Logger

	now func() time.Time
}

// NewRedisStore connects to the configured redis instance, retrying within
// the connect timeout, and returns a store backed by it.
func NewRedisStore(ctx context.Context, cfg Config, log *slog.Logger) (*RedisStore, error) {
	cfg = cfg.withDefaults()
	if log == nil {
		log = slog.Default()
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, errors.Join(ErrInvalidRedisURL, err)
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	var client *redis.Client
	for range cfg.RetryAttempts {
		client = redis.NewClient(opt)
		if err := client.Ping(ctx).Err(); err == nil {
			return &RedisStore{
				client:   client,
				staleFor: cfg.StaleFor,
				scanSize: cfg.ScanBatchSize,
				log:      log,
				now:      time.Now,
			}, nil
		}
		_ = client.Close()

		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrRedisNotReady, ctx.Err())
		case <-time.After(cfg.RetryInterval):
		}
	}

	return nil, ErrRedisNotReady
}

// Get returns the permission set for key if it is still within its logical TTL.
func (s *RedisStore) Get(ctx context.Context, key string) ([]string, bool) {
	entry, ok := s.load(ctx, key)
	if !ok || s.now().After(entry.ExpiresAt) {
		return nil, false
	}
	return entry.Perms, true
}

// GetStale returns the permission set for key regardless of its logical TTL.
// The physical redis TTL caps how stale the data can be.
func (s *RedisStore) GetStale(ctx context.Context, key string) ([]string, bool) {
	entry, ok := s.load(ctx, key)
	if !ok {
		return nil, false
	}
	return entry.Perms, true
}

// Set stores the permission set with physical TTL extended by the stale window.
func (s *RedisStore) Set(ctx context.Context, key string, perms []string, ttl time.Duration) {
	if ttl <= 0 {
		return
	}

	payload, err := json.Marshal(redisEntry{
		Perms:     perms,
		ExpiresAt: s.now().Add(ttl),
	})
	if err != nil {
		s.log.Warn("permcache: marshal entry", slog.String("key", key), slog.Any("error", err))
		return
	}

	if err := s.client.Set(ctx, key, payload, ttl+s.staleFor).Err(); err != nil {
		s.log.Warn("permcache: set", slog.String("key", key), slog.Any("error", err))
	}
}

// DeletePattern scans for matching keys in bounded pages and deletes each
// page, so large invalidations never block the shared store with a single
// unbounded operation.
func (s *RedisStore) DeletePattern(ctx context.Context, pattern string) {
	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, pattern, s.scanSize).Result()
		if err != nil {
			s.log.Warn("permcache: scan", slog.String("pattern", pattern), slog.Any("error", err))
			return
		}

		if len(keys) > 0 {
			if err := s.client.Del(ctx, keys...).Err(); err != nil {
				s.log.Warn("permcache: delete batch", slog.String("pattern", pattern), slog.Any("error", err))
				return
			}
		}

		if next == 0 {
			return
		}
		cursor = next
	}
}

// Close releases the underlying redis client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// SetClock overrides the store clock. Intended for tests.
func (s *RedisStore) SetClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

func (s *RedisStore) load(ctx context.Context, key string) (redisEntry, bool) {
	payload, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.log.Warn("permcache: get", slog.String("key", key), slog.Any("error", err))
		}
		return redisEntry{}, false
	}

	var entry redisEntry
	if err := json.Unmarshal(payload, &entry); err != nil {
		s.log.Warn("permcache: corrupt entry", slog.String("key", key), slog.Any("error", err))
		return redisEntry{}, false
	}
	return entry, true
}
