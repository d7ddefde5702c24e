package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/wassimk/elgato-light/internal/infrastructure/logging"
	"github.com/wassimk/elgato-light/internal/target"
)

// RedisStore keeps the cache document under a single Redis key.
type RedisStore struct {
	client redis.UniversalClient
	key    string
	ttl    time.Duration
	logger *logging.Logger
}

// NewRedisClient parses a redis:// URL into a client. It does not dial.
func NewRedisClient(url string) (redis.UniversalClient, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}

	return redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:        []string{opts.Addr},
		DB:           opts.DB,
		Username:     opts.Username,
		Password:     opts.Password,
		TLSConfig:    opts.TLSConfig,
		DialTimeout:  time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	}), nil
}

// NewRedisStore returns a store using key on client. A zero ttl keeps the
// entry until it is cleared.
func NewRedisStore(client redis.UniversalClient, key string, ttl time.Duration, logger *logging.Logger) *RedisStore {
	return &RedisStore{
		client: client,
		key:    key,
		ttl:    ttl,
		logger: logger.With("component", "cache", "backend", "redis"),
	}
}

// Load implements Store.
func (s *RedisStore) Load(ctx context.Context) ([]target.Target, bool) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Debug("reading cache failed", "key", s.key, "error", err)
		}
		return nil, false
	}

	targets, dropped, err := decode(data)
	if err != nil {
		s.logger.Debug("cache is corrupt", "key", s.key, "error", err)
		return nil, false
	}
	if dropped > 0 {
		s.logger.Debug("dropped invalid cache entries", "key", s.key, "dropped", dropped)
	}
	if len(targets) == 0 {
		return nil, false
	}

	return targets, true
}

// Save implements Store. SET replaces the value in one step.
func (s *RedisStore) Save(ctx context.Context, targets []target.Target) {
	data, err := encode(targets)
	if err != nil {
		s.logger.Debug("encoding cache failed", "error", err)
		return
	}

	if err := s.client.Set(ctx, s.key, data, s.ttl).Err(); err != nil {
		s.logger.Debug("writing cache failed", "key", s.key, "error", err)
	}
}

// Clear implements Store.
func (s *RedisStore) Clear(ctx context.Context) {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		s.logger.Debug("removing cache failed", "key", s.key, "error", err)
	}
}

// Close releases the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
