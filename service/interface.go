package service

import (
	"weatherdesk.app/models"
)

// PlaceRepositoryInterface defines the store operations the orchestrator
// depends on
type PlaceRepositoryInterface interface {
	UpsertPlace(place *models.Place) error
	LastSelectedPlace() (*models.Place, error)
	RecordWeather(place *models.Place, weather *models.Weather) error
	WeatherHistory(place *models.Place, limit int) ([]models.Weather, error)
}
