package providers

import (
	"weatherdesk.app/models"
	"weatherdesk.app/providers/cache"
)

// WeatherProvider defines the interface for weather data providers.
// Implementations are stateless per call and safe for concurrent use;
// units and language are explicit parameters so results are deterministic
// given the inputs.
type WeatherProvider interface {
	// SearchCities resolves free text to candidate places. An empty
	// provider response is an empty slice, not an error.
	SearchCities(query string, limit int) ([]models.Place, error)

	// CurrentWeather fetches the current conditions for a resolved place.
	CurrentWeather(place *models.Place, units, lang string) (*models.Weather, error)

	// Forecast fetches a multi-day outlook, one representative sample per
	// calendar day, at most days entries.
	Forecast(place *models.Place, days int, units, lang string) ([]models.Weather, error)
}

// Cache is an alias to avoid circular imports
type Cache = cache.GenericCacheInterface
