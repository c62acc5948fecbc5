package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"weatherdesk.app/metrics"
	"weatherdesk.app/models"
)

// SuggestionCacheProxy caches geocoding results in front of the real
// provider so fast retyping of the same query does not repeat the network
// round trip. Current readings and forecasts pass straight through; their
// freshness is governed by the persisted history TTL instead.
type SuggestionCacheProxy struct {
	realProvider WeatherProvider
	cache        Cache
	cacheTTL     time.Duration
	cacheMetrics *metrics.CacheMetrics
}

func NewSuggestionCacheProxy(realProvider WeatherProvider, cache Cache, cacheTTL time.Duration, cacheMetrics *metrics.CacheMetrics) WeatherProvider {
	return &SuggestionCacheProxy{
		realProvider: realProvider,
		cache:        cache,
		cacheTTL:     cacheTTL,
		cacheMetrics: cacheMetrics,
	}
}

func (p *SuggestionCacheProxy) SearchCities(query string, limit int) ([]models.Place, error) {
	key := p.cacheKey(query, limit)
	ctx := context.Background()

	if data, found := p.cache.Get(ctx, key); found {
		var places []models.Place
		if err := json.Unmarshal(data, &places); err == nil {
			p.cacheMetrics.RecordHit()
			return places, nil
		}
		// Corrupt entry, fall through to the provider.
		p.cache.Delete(ctx, key)
	}
	p.cacheMetrics.RecordMiss()

	places, err := p.realProvider.SearchCities(query, limit)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(places); err == nil {
		p.cache.Set(ctx, key, data, p.cacheTTL)
	} else {
		slog.Warn("marshal suggestion cache entry", "error", err)
	}

	return places, nil
}

func (p *SuggestionCacheProxy) CurrentWeather(place *models.Place, units, lang string) (*models.Weather, error) {
	return p.realProvider.CurrentWeather(place, units, lang)
}

func (p *SuggestionCacheProxy) Forecast(place *models.Place, days int, units, lang string) ([]models.Weather, error) {
	return p.realProvider.Forecast(place, days, units, lang)
}

func (p *SuggestionCacheProxy) cacheKey(query string, limit int) string {
	return fmt.Sprintf("geo:%s:%d", strings.ToLower(strings.TrimSpace(query)), limit)
}
