package cache

import (
	"fmt"

	"github.com/wassimk/elgato-light/internal/infrastructure/config"
	"github.com/wassimk/elgato-light/internal/infrastructure/logging"
)

// FromConfig builds the Store selected by cfg.Cache.Backend. Stores holding
// a connection also implement io.Closer.
func FromConfig(cfg *config.Config, logger *logging.Logger) (Store, error) {
	switch cfg.Cache.Backend {
	case config.CacheBackendNone:
		return Nop{}, nil
	case config.CacheBackendRedis:
		client, err := NewRedisClient(cfg.Cache.Redis.URL)
		if err != nil {
			return nil, err
		}
		return NewRedisStore(client, cfg.Cache.Redis.Key, cfg.Cache.Redis.TTL, logger), nil
	case config.CacheBackendFile, "":
		path := cfg.CachePath()
		if path == "" {
			logger.Debug("no user cache directory, caching disabled")
			return Nop{}, nil
		}
		return NewFileStore(path, logger), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}
}
