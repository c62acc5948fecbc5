// Package models defines data structures used throughout the application
package models

import (
	"fmt"
	"time"
)

// Units supported by the weather provider. They select both the request
// parameter sent upstream and the symbol used when formatting readings.
const (
	UnitsMetric   = "metric"
	UnitsImperial = "imperial"
	UnitsStandard = "standard"
)

// Place represents a resolved geographic location persisted locally.
// The natural key is (name, latitude, longitude); ID is assigned by the
// store on upsert and is zero for transient records.
type Place struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	Name           string    `json:"name" gorm:"not null;uniqueIndex:idx_place_key"`
	Country        string    `json:"country,omitempty"`
	State          string    `json:"state,omitempty"`
	Latitude       float64   `json:"lat" gorm:"not null;uniqueIndex:idx_place_key" validate:"gte=-90,lte=90"`
	Longitude      float64   `json:"lon" gorm:"not null;uniqueIndex:idx_place_key" validate:"gte=-180,lte=180"`
	LastSelectedAt time.Time `json:"last_selected_at"`
	CreatedAt      time.Time `json:"created_at"`
}

// Persisted reports whether the place has been stored.
func (p *Place) Persisted() bool {
	return p.ID != 0
}

// String returns "Name, State, Country" with empty parts omitted.
func (p *Place) String() string {
	if p.State != "" {
		return fmt.Sprintf("%s, %s, %s", p.Name, p.State, p.Country)
	}
	if p.Country != "" {
		return fmt.Sprintf("%s, %s", p.Name, p.Country)
	}
	return p.Name
}

// DisplayName returns a suggestion-list friendly label.
func (p *Place) DisplayName() string {
	if p.State != "" {
		return fmt.Sprintf("%s (%s, %s)", p.Name, p.State, p.Country)
	}
	if p.Country != "" {
		return fmt.Sprintf("%s (%s)", p.Name, p.Country)
	}
	return p.Name
}

// Weather is a point-in-time snapshot of conditions for a place. It has no
// identity of its own; it is meaningful only alongside the place it was
// fetched for.
type Weather struct {
	CityName    string  `json:"city_name"`
	Temperature float64 `json:"temperature"`
	FeelsLike   float64 `json:"feels_like"`
	TempMin     float64 `json:"temp_min"`
	TempMax     float64 `json:"temp_max"`
	Humidity    int     `json:"humidity"`
	Pressure    int     `json:"pressure"`
	WindSpeed   float64 `json:"wind_speed"`
	WindDeg     int     `json:"wind_deg"`
	Description string  `json:"description"`
	IconCode    string  `json:"icon_code"`
	Latitude    float64 `json:"lat"`
	Longitude   float64 `json:"lon"`
	Cloudiness  int     `json:"cloudiness"`
	Visibility  int     `json:"visibility"`
	Sunrise     int64   `json:"sunrise"`
	Sunset      int64   `json:"sunset"`
	Timestamp   int64   `json:"timestamp"`
	Units       string  `json:"units"`
}

// NewWeather creates a placeholder snapshot stamped with the current time.
// Readings parsed from the provider always overwrite Timestamp with the
// provider's own observation time.
func NewWeather() *Weather {
	return &Weather{
		Timestamp: time.Now().Unix(),
		Units:     UnitsMetric,
	}
}

// WeatherRecord is a historical reading persisted under a place's store id.
// History rows cascade-delete with their place.
type WeatherRecord struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	PlaceID     uint    `json:"place_id" gorm:"index;not null"`
	Place       Place   `json:"-" gorm:"foreignKey:PlaceID;constraint:OnDelete:CASCADE"`
	Temperature float64 `json:"temperature" gorm:"not null"`
	FeelsLike   float64 `json:"feels_like" gorm:"not null"`
	TempMin     float64 `json:"temp_min" gorm:"not null"`
	TempMax     float64 `json:"temp_max" gorm:"not null"`
	Humidity    int     `json:"humidity" gorm:"not null"`
	Pressure    int     `json:"pressure" gorm:"not null"`
	WindSpeed   float64 `json:"wind_speed" gorm:"not null"`
	WindDeg     int     `json:"wind_deg" gorm:"not null"`
	Description string  `json:"description" gorm:"not null"`
	IconCode    string  `json:"icon_code" gorm:"not null"`
	ObservedAt  int64   `json:"observed_at" gorm:"not null;index"`
	CreatedAt   time.Time
}

func (w *Weather) temperatureSymbol() string {
	switch w.Units {
	case UnitsImperial:
		return "°F"
	case UnitsStandard:
		return "K"
	default:
		return "°C"
	}
}

func (w *Weather) windSpeedUnit() string {
	if w.Units == UnitsImperial {
		return "mph"
	}
	return "m/s"
}

// FormattedTemperature returns the temperature as e.g. "20.5°C".
func (w *Weather) FormattedTemperature() string {
	return fmt.Sprintf("%.1f%s", w.Temperature, w.temperatureSymbol())
}

// FormattedFeelsLike returns the feels-like temperature as e.g. "19.0°C".
func (w *Weather) FormattedFeelsLike() string {
	return fmt.Sprintf("%.1f%s", w.FeelsLike, w.temperatureSymbol())
}

// FormattedWindSpeed returns the wind speed as e.g. "5.2 m/s".
func (w *Weather) FormattedWindSpeed() string {
	return fmt.Sprintf("%.1f %s", w.WindSpeed, w.windSpeedUnit())
}

// WindDirection maps the wind bearing to an 8-point compass direction.
// Sector boundaries sit halfway between points, so both 337.5°-360° and
// 0°-22.5° map to N.
func (w *Weather) WindDirection() string {
	deg := float64(w.WindDeg)
	switch {
	case deg >= 337.5 || deg < 22.5:
		return "N"
	case deg < 67.5:
		return "NE"
	case deg < 112.5:
		return "E"
	case deg < 157.5:
		return "SE"
	case deg < 202.5:
		return "S"
	case deg < 247.5:
		return "SW"
	case deg < 292.5:
		return "W"
	default:
		return "NW"
	}
}

// IconURL returns the provider's icon image URL for the snapshot.
func (w *Weather) IconURL() string {
	return fmt.Sprintf("https://openweathermap.org/img/wn/%s@2x.png", w.IconCode)
}

// ObservedTime returns the observation time in the local time zone.
func (w *Weather) ObservedTime() time.Time {
	return time.Unix(w.Timestamp, 0)
}

// FormattedDate returns the observation time as "02.01.2006 15:04".
func (w *Weather) FormattedDate() string {
	return w.ObservedTime().Format("02.01.2006 15:04")
}

// FormattedSunrise returns the sunrise time as "15:04".
func (w *Weather) FormattedSunrise() string {
	return time.Unix(w.Sunrise, 0).Format("15:04")
}

// FormattedSunset returns the sunset time as "15:04".
func (w *Weather) FormattedSunset() string {
	return time.Unix(w.Sunset, 0).Format("15:04")
}

func (w *Weather) String() string {
	return fmt.Sprintf("%s: %s, %s", w.CityName, w.FormattedTemperature(), w.Description)
}
