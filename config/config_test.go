package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("RequiredFieldsMissing", func(t *testing.T) {
		os.Clearenv()

		config, err := LoadConfig()

		assert.Error(t, err)
		assert.Nil(t, config)
		assert.Contains(t, err.Error(), "required key WEATHER_API_KEY missing")
	})

	t.Run("DefaultValues", func(t *testing.T) {
		os.Clearenv()
		require.NoError(t, os.Setenv("WEATHER_API_KEY", "test-api-key"))

		config, err := LoadConfig()

		assert.NoError(t, err)
		assert.NotNil(t, config)
		assert.Equal(t, "https://api.openweathermap.org/geo/1.0", config.Weather.GeoBaseURL)
		assert.Equal(t, "https://api.openweathermap.org/data/2.5", config.Weather.DataBaseURL)
		assert.Equal(t, "metric", config.Weather.Units)
		assert.Equal(t, "en", config.Weather.Language)
		assert.Equal(t, 10*time.Second, config.Weather.Timeout())
		assert.Equal(t, "weather.db", config.Database.Path)
		assert.Equal(t, "Moscow", config.App.DefaultCity)
		assert.Equal(t, 4, config.App.ForecastDays)
		assert.Equal(t, 30*time.Minute, config.App.CacheTTL())
		assert.Equal(t, 3, config.App.RetryCount)
		assert.Equal(t, "info", config.App.LogLevel)
		assert.Equal(t, CacheTypeMemory, config.Cache.Type)
	})

	t.Run("CustomValues", func(t *testing.T) {
		os.Clearenv()
		require.NoError(t, os.Setenv("WEATHER_API_KEY", "test-api-key"))
		require.NoError(t, os.Setenv("WEATHER_UNITS", "imperial"))
		require.NoError(t, os.Setenv("WEATHER_LANG", "ru"))
		require.NoError(t, os.Setenv("DB_PATH", "/tmp/test-weather.db"))
		require.NoError(t, os.Setenv("APP_DEFAULT_CITY", "Kyiv"))
		require.NoError(t, os.Setenv("APP_FORECAST_DAYS", "5"))
		require.NoError(t, os.Setenv("APP_CACHE_TTL_MINUTES", "10"))
		require.NoError(t, os.Setenv("APP_RETRY_COUNT", "0"))
		require.NoError(t, os.Setenv("CACHE_TYPE", "redis"))
		require.NoError(t, os.Setenv("REDIS_ADDR", "redis.local:6380"))

		config, err := LoadConfig()

		assert.NoError(t, err)
		assert.NotNil(t, config)
		assert.Equal(t, "imperial", config.Weather.Units)
		assert.Equal(t, "ru", config.Weather.Language)
		assert.Equal(t, "/tmp/test-weather.db", config.Database.Path)
		assert.Equal(t, "Kyiv", config.App.DefaultCity)
		assert.Equal(t, 5, config.App.ForecastDays)
		assert.Equal(t, 10*time.Minute, config.App.CacheTTL())
		assert.Equal(t, 0, config.App.RetryCount)
		assert.Equal(t, CacheTypeRedis, config.Cache.Type)
		assert.Equal(t, "redis.local:6380", config.Cache.Redis.Addr)
	})
}

func TestWeatherConfigValidate(t *testing.T) {
	valid := WeatherConfig{
		APIKey:         "key",
		GeoBaseURL:     "https://api.openweathermap.org/geo/1.0",
		DataBaseURL:    "https://api.openweathermap.org/data/2.5",
		Units:          "metric",
		Language:       "en",
		TimeoutSeconds: 10,
	}

	t.Run("Valid", func(t *testing.T) {
		cfg := valid
		assert.NoError(t, cfg.Validate())
	})

	t.Run("MissingAPIKey", func(t *testing.T) {
		cfg := valid
		cfg.APIKey = ""
		err := cfg.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "WEATHER_API_KEY")
	})

	t.Run("BadGeoURL", func(t *testing.T) {
		cfg := valid
		cfg.GeoBaseURL = "ftp://api.openweathermap.org"
		assert.Error(t, cfg.Validate())
	})

	t.Run("BadUnits", func(t *testing.T) {
		cfg := valid
		cfg.Units = "kelvin"
		err := cfg.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "WEATHER_UNITS")
	})

	t.Run("BadTimeout", func(t *testing.T) {
		cfg := valid
		cfg.TimeoutSeconds = 0
		assert.Error(t, cfg.Validate())
	})
}

func TestAppConfigValidate(t *testing.T) {
	valid := AppConfig{DefaultCity: "Moscow", ForecastDays: 4, CacheTTLMinutes: 30, RetryCount: 3, RefreshIntervalMinutes: 30}

	t.Run("Valid", func(t *testing.T) {
		cfg := valid
		assert.NoError(t, cfg.Validate())
	})

	t.Run("TooManyForecastDays", func(t *testing.T) {
		cfg := valid
		cfg.ForecastDays = 8
		assert.Error(t, cfg.Validate())
	})

	t.Run("NegativeRetryCount", func(t *testing.T) {
		cfg := valid
		cfg.RetryCount = -1
		assert.Error(t, cfg.Validate())
	})
}

func TestCacheConfigValidate(t *testing.T) {
	t.Run("Memory", func(t *testing.T) {
		cfg := CacheConfig{Type: CacheTypeMemory}
		assert.NoError(t, cfg.Validate())
	})

	t.Run("RedisMissingAddr", func(t *testing.T) {
		cfg := CacheConfig{Type: CacheTypeRedis}
		err := cfg.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "REDIS_ADDR")
	})

	t.Run("UnknownType", func(t *testing.T) {
		cfg := CacheConfig{Type: "memcached"}
		assert.Error(t, cfg.Validate())
	})
}
