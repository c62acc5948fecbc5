package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"weatherdesk.app/errors"
)

// Cache backend types
const (
	CacheTypeMemory = "memory"
	CacheTypeRedis  = "redis"
)

// Config represents the application configuration structure
type Config struct {
	Weather  WeatherConfig  `split_words:"true"`
	Database DatabaseConfig `split_words:"true"`
	App      AppConfig      `split_words:"true"`
	Cache    CacheConfig    `split_words:"true"`
}

// WeatherConfig contains settings for the weather provider
type WeatherConfig struct {
	APIKey         string `envconfig:"WEATHER_API_KEY" required:"true"`
	GeoBaseURL     string `envconfig:"WEATHER_GEO_BASE_URL" default:"https://api.openweathermap.org/geo/1.0"`
	DataBaseURL    string `envconfig:"WEATHER_DATA_BASE_URL" default:"https://api.openweathermap.org/data/2.5"`
	Units          string `envconfig:"WEATHER_UNITS" default:"metric"`
	Language       string `envconfig:"WEATHER_LANG" default:"en"`
	TimeoutSeconds int    `envconfig:"WEATHER_TIMEOUT_SECONDS" default:"10"`
}

// Timeout returns the HTTP client timeout for provider calls.
func (w *WeatherConfig) Timeout() time.Duration {
	return time.Duration(w.TimeoutSeconds) * time.Second
}

// DatabaseConfig contains local storage settings
type DatabaseConfig struct {
	Path string `envconfig:"DB_PATH" default:"weather.db"`
}

// AppConfig contains pipeline-level behavior settings
type AppConfig struct {
	DefaultCity            string `envconfig:"APP_DEFAULT_CITY" default:"Moscow"`
	ForecastDays           int    `envconfig:"APP_FORECAST_DAYS" default:"4"`
	CacheTTLMinutes        int    `envconfig:"APP_CACHE_TTL_MINUTES" default:"30"`
	RetryCount             int    `envconfig:"APP_RETRY_COUNT" default:"3"`
	RefreshIntervalMinutes int    `envconfig:"APP_REFRESH_INTERVAL_MINUTES" default:"30"`
	LogLevel               string `envconfig:"APP_LOG_LEVEL" default:"info"`
}

// CacheTTL returns how long a persisted reading is considered fresh.
func (a *AppConfig) CacheTTL() time.Duration {
	return time.Duration(a.CacheTTLMinutes) * time.Minute
}

// RefreshInterval returns the background refresh period.
func (a *AppConfig) RefreshInterval() time.Duration {
	return time.Duration(a.RefreshIntervalMinutes) * time.Minute
}

// CacheConfig selects the suggestion/reading cache backend
type CacheConfig struct {
	Type  string      `envconfig:"CACHE_TYPE" default:"memory"`
	Redis RedisConfig `split_words:"true"`
}

// RedisConfig contains redis cache connection settings
type RedisConfig struct {
	Addr           string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	Password       string `envconfig:"REDIS_PASSWORD" default:""`
	DB             int    `envconfig:"REDIS_DB" default:"0"`
	TimeoutSeconds int    `envconfig:"REDIS_TIMEOUT_SECONDS" default:"3"`
}

// Timeout returns dial/read/write timeout for redis operations.
func (r *RedisConfig) Timeout() time.Duration {
	return time.Duration(r.TimeoutSeconds) * time.Second
}

// LoadConfig loads and validates application configuration from environment variables
func LoadConfig() (*Config, error) {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return nil, errors.NewConfigurationError("error processing config", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if err := c.Weather.Validate(); err != nil {
		return err
	}
	if err := c.Database.Validate(); err != nil {
		return err
	}
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Cache.Validate(); err != nil {
		return err
	}
	return nil
}

// Validate checks weather provider configuration
func (w *WeatherConfig) Validate() error {
	if w.APIKey == "" {
		return errors.NewConfigurationError("WEATHER_API_KEY is required", nil)
	}
	if !strings.HasPrefix(w.GeoBaseURL, "http://") && !strings.HasPrefix(w.GeoBaseURL, "https://") {
		return errors.NewConfigurationError("WEATHER_GEO_BASE_URL must start with http:// or https://", nil)
	}
	if !strings.HasPrefix(w.DataBaseURL, "http://") && !strings.HasPrefix(w.DataBaseURL, "https://") {
		return errors.NewConfigurationError("WEATHER_DATA_BASE_URL must start with http:// or https://", nil)
	}
	switch w.Units {
	case "metric", "imperial", "standard":
	default:
		return errors.NewConfigurationError("WEATHER_UNITS must be one of: metric, imperial, standard", nil)
	}
	if w.Language == "" {
		return errors.NewConfigurationError("WEATHER_LANG cannot be empty", nil)
	}
	if w.TimeoutSeconds < 1 || w.TimeoutSeconds > 120 {
		return errors.NewConfigurationError("WEATHER_TIMEOUT_SECONDS must be between 1 and 120", nil)
	}
	return nil
}

// Validate checks local storage configuration
func (d *DatabaseConfig) Validate() error {
	if d.Path == "" {
		return errors.NewConfigurationError("DB_PATH cannot be empty", nil)
	}
	return nil
}

// Validate checks application behavior configuration
func (a *AppConfig) Validate() error {
	if a.ForecastDays < 1 || a.ForecastDays > 5 {
		return errors.NewConfigurationError("APP_FORECAST_DAYS must be between 1 and 5", nil)
	}
	if a.CacheTTLMinutes < 0 {
		return errors.NewConfigurationError("APP_CACHE_TTL_MINUTES cannot be negative", nil)
	}
	if a.RetryCount < 0 || a.RetryCount > 10 {
		return errors.NewConfigurationError("APP_RETRY_COUNT must be between 0 and 10", nil)
	}
	if a.RefreshIntervalMinutes < 1 {
		return errors.NewConfigurationError("APP_REFRESH_INTERVAL_MINUTES must be at least 1", nil)
	}
	return nil
}

// Validate checks cache backend configuration
func (c *CacheConfig) Validate() error {
	switch c.Type {
	case CacheTypeMemory:
		return nil
	case CacheTypeRedis:
		if c.Redis.Addr == "" {
			return errors.NewConfigurationError("REDIS_ADDR cannot be empty", nil)
		}
		if c.Redis.TimeoutSeconds < 1 {
			return errors.NewConfigurationError("REDIS_TIMEOUT_SECONDS must be at least 1", nil)
		}
		return nil
	default:
		return errors.NewConfigurationError(
			fmt.Sprintf("CACHE_TYPE must be one of: %s, %s", CacheTypeMemory, CacheTypeRedis), nil)
	}
}
