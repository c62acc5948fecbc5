package cache

import (
	"fmt"

	"weatherdesk.app/config"
	"weatherdesk.app/errors"
)

// NewFromConfig builds the cache backend selected by configuration.
func NewFromConfig(cfg *config.CacheConfig) (GenericCacheInterface, error) {
	if cfg == nil {
		return nil, errors.NewConfigurationError("cache config cannot be nil", nil)
	}

	switch cfg.Type {
	case config.CacheTypeMemory:
		return NewMemoryCache(), nil
	case config.CacheTypeRedis:
		cache, err := NewRedisCache(&RedisCacheConfig{
			Addr:         cfg.Redis.Addr,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			DialTimeout:  cfg.Redis.Timeout(),
			ReadTimeout:  cfg.Redis.Timeout(),
			WriteTimeout: cfg.Redis.Timeout(),
		})
		if err != nil {
			return nil, errors.NewConfigurationError("failed to connect to redis cache", err)
		}
		return cache, nil
	default:
		return nil, errors.NewConfigurationError(
			fmt.Sprintf("unsupported cache type: %s", cfg.Type), nil)
	}
}
