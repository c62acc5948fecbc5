package providers

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"weatherdesk.app/config"
	"weatherdesk.app/errors"
	"weatherdesk.app/models"
)

// forecastSamplesPerDay is the number of 3-hourly samples OpenWeatherMap
// returns per calendar day. Forecast takes every 8th sample, so each day is
// represented by the reading closest to the first request's time of day.
const forecastSamplesPerDay = 8

// OpenWeatherMapProvider resolves place queries and fetches readings from
// the OpenWeatherMap geocoding, current-conditions and forecast endpoints.
type OpenWeatherMapProvider struct {
	apiKey      string
	geoBaseURL  string
	dataBaseURL string
	client      *http.Client
}

// NewOpenWeatherMapProvider creates a provider from weather configuration.
func NewOpenWeatherMapProvider(cfg *config.WeatherConfig) *OpenWeatherMapProvider {
	return &OpenWeatherMapProvider{
		apiKey:      cfg.APIKey,
		geoBaseURL:  cfg.GeoBaseURL,
		dataBaseURL: cfg.DataBaseURL,
		client:      &http.Client{Timeout: cfg.Timeout()},
	}
}

type geoResult struct {
	Name    string  `json:"name"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Country string  `json:"country"`
	State   string  `json:"state,omitempty"`
}

type weatherSample struct {
	Dt   int64 `json:"dt"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		TempMin   float64 `json:"temp_min"`
		TempMax   float64 `json:"temp_max"`
		Pressure  int     `json:"pressure"`
		Humidity  int     `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
	Wind struct {
		Speed float64 `json:"speed"`
		Deg   int     `json:"deg"`
	} `json:"wind"`
	Clouds struct {
		All int `json:"all"`
	} `json:"clouds"`
	Visibility int `json:"visibility"`
}

type currentWeatherResponse struct {
	weatherSample
	Coord struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"coord"`
	Sys struct {
		Sunrise int64 `json:"sunrise"`
		Sunset  int64 `json:"sunset"`
	} `json:"sys"`
}

type forecastResponse struct {
	List []weatherSample `json:"list"`
}

// SearchCities resolves free text to candidate places via the geocoding
// endpoint.
func (p *OpenWeatherMapProvider) SearchCities(query string, limit int) ([]models.Place, error) {
	if query == "" {
		return nil, errors.NewValidationError("query cannot be empty")
	}
	if limit < 1 {
		limit = 5
	}

	reqURL := fmt.Sprintf("%s/direct?q=%s&limit=%d&appid=%s",
		p.geoBaseURL, url.QueryEscape(query), limit, p.apiKey)

	body, err := p.fetch(reqURL)
	if err != nil {
		return nil, err
	}

	var results []geoResult
	if err := json.Unmarshal(body, &results); err != nil {
		return nil, errors.NewMalformedResponseError("decode geocoding response", err)
	}

	places := make([]models.Place, 0, len(results))
	for _, r := range results {
		places = append(places, models.Place{
			Name:      r.Name,
			Latitude:  r.Lat,
			Longitude: r.Lon,
			Country:   r.Country,
			State:     r.State,
		})
	}

	return places, nil
}

// CurrentWeather fetches current conditions for a resolved place.
func (p *OpenWeatherMapProvider) CurrentWeather(place *models.Place, units, lang string) (*models.Weather, error) {
	if place == nil {
		return nil, errors.NewValidationError("place cannot be nil")
	}

	reqURL := fmt.Sprintf("%s/weather?lat=%f&lon=%f&appid=%s&units=%s&lang=%s",
		p.dataBaseURL, place.Latitude, place.Longitude, p.apiKey, units, lang)

	body, err := p.fetch(reqURL)
	if err != nil {
		return nil, err
	}

	var resp currentWeatherResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, errors.NewMalformedResponseError("decode current weather response", err)
	}
	if len(resp.Weather) == 0 {
		return nil, errors.NewMalformedResponseError("current weather response has no conditions", nil)
	}

	weather := p.sampleToWeather(&resp.weatherSample, units)
	weather.CityName = place.Name
	weather.Latitude = resp.Coord.Lat
	weather.Longitude = resp.Coord.Lon
	weather.Sunrise = resp.Sys.Sunrise
	weather.Sunset = resp.Sys.Sunset

	return weather, nil
}

// Forecast fetches a multi-day outlook. The provider returns 3-hourly
// samples; one sample per calendar day is kept.
func (p *OpenWeatherMapProvider) Forecast(place *models.Place, days int, units, lang string) ([]models.Weather, error) {
	if place == nil {
		return nil, errors.NewValidationError("place cannot be nil")
	}
	if days < 1 {
		return nil, errors.NewValidationError("days must be at least 1")
	}

	reqURL := fmt.Sprintf("%s/forecast?lat=%f&lon=%f&appid=%s&units=%s&lang=%s&cnt=%d",
		p.dataBaseURL, place.Latitude, place.Longitude, p.apiKey, units, lang,
		days*forecastSamplesPerDay)

	body, err := p.fetch(reqURL)
	if err != nil {
		return nil, err
	}

	var resp forecastResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, errors.NewMalformedResponseError("decode forecast response", err)
	}

	forecast := make([]models.Weather, 0, days)
	for i := 0; i < len(resp.List) && len(forecast) < days; i += forecastSamplesPerDay {
		sample := resp.List[i]
		if len(sample.Weather) == 0 {
			return nil, errors.NewMalformedResponseError("forecast sample has no conditions", nil)
		}
		weather := p.sampleToWeather(&sample, units)
		weather.CityName = place.Name
		weather.Latitude = place.Latitude
		weather.Longitude = place.Longitude
		forecast = append(forecast, *weather)
	}

	return forecast, nil
}

func (p *OpenWeatherMapProvider) sampleToWeather(sample *weatherSample, units string) *models.Weather {
	weather := models.NewWeather()
	weather.Temperature = sample.Main.Temp
	weather.FeelsLike = sample.Main.FeelsLike
	weather.TempMin = sample.Main.TempMin
	weather.TempMax = sample.Main.TempMax
	weather.Pressure = sample.Main.Pressure
	weather.Humidity = sample.Main.Humidity
	weather.WindSpeed = sample.Wind.Speed
	weather.WindDeg = sample.Wind.Deg
	weather.Cloudiness = sample.Clouds.All
	weather.Visibility = sample.Visibility
	weather.Timestamp = sample.Dt
	weather.Units = units
	if len(sample.Weather) > 0 {
		weather.Description = sample.Weather[0].Description
		weather.IconCode = sample.Weather[0].Icon
	}
	return weather
}

// fetch performs a GET and classifies failures. Non-2xx responses keep the
// verbatim error body for diagnostics.
func (p *OpenWeatherMapProvider) fetch(reqURL string) ([]byte, error) {
	if p.apiKey == "" {
		return nil, errors.NewConfigurationError("weather API key is not configured", nil)
	}

	resp, err := p.client.Get(reqURL)
	if err != nil {
		return nil, errors.NewExternalAPIError("openweathermap request failed", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			slog.Warn("close response body", "error", closeErr)
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.NewExternalAPIError("read openweathermap response", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, p.handleHTTPError(resp.StatusCode, string(body))
	}

	return body, nil
}

func (p *OpenWeatherMapProvider) handleHTTPError(statusCode int, body string) error {
	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return errors.NewConfigurationError("openweathermap rejected the API key", nil)
	case http.StatusNotFound:
		return errors.NewNotFoundError("place not found")
	default:
		return errors.NewProviderStatusError(statusCode, body)
	}
}
