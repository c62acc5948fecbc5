// Package repository implements data access layer for the application
package repository

import (
	stderrors "errors"
	"fmt"
	"log"
	"sync"
	"time"

	"gorm.io/gorm"
	"weatherdesk.app/errors"
	"weatherdesk.app/models"
	"weatherdesk.app/pkg/validation"
)

// PlaceRepository handles data access operations for places and their
// reading history. A single instance is shared by all worker goroutines;
// writes are serialized internally because sqlite allows one writer at a
// time.
type PlaceRepository struct {
	db      *gorm.DB
	writeMu sync.Mutex
}

// NewPlaceRepository creates a new repository for place data
func NewPlaceRepository(db *gorm.DB) *PlaceRepository {
	return &PlaceRepository{db: db}
}

// UpsertPlace inserts or updates a place keyed by (name, latitude,
// longitude). The stored row's last-selected marker is refreshed on every
// call and the assigned id is written back into the passed record.
func (r *PlaceRepository) UpsertPlace(place *models.Place) error {
	if place == nil {
		return errors.NewValidationError("place cannot be nil")
	}
	if place.Name == "" {
		return errors.NewValidationError("place name cannot be empty")
	}
	if err := validation.ValidatePlace(place); err != nil {
		return errors.NewValidationError(fmt.Sprintf("invalid coordinates for %s: %v", place.Name, err))
	}

	log.Printf("[DEBUG] PlaceRepository.UpsertPlace: %s (%.4f, %.4f)\n",
		place.Name, place.Latitude, place.Longitude)

	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var existing models.Place
		result := tx.Where("name = ? AND latitude = ? AND longitude = ?",
			place.Name, place.Latitude, place.Longitude).First(&existing)
		if result.Error != nil {
			if !stderrors.Is(result.Error, gorm.ErrRecordNotFound) {
				return result.Error
			}
			place.LastSelectedAt = time.Now()
			return tx.Create(place).Error
		}

		existing.Country = place.Country
		existing.State = place.State
		existing.LastSelectedAt = time.Now()
		if err := tx.Save(&existing).Error; err != nil {
			return err
		}
		*place = existing
		return nil
	})
	if err != nil {
		log.Printf("[ERROR] Database error when upserting place: %v\n", err)
		return errors.NewDatabaseError("failed to upsert place", err)
	}

	log.Printf("[DEBUG] Upserted place with ID: %d\n", place.ID)
	return nil
}

// LastSelectedPlace returns the most recently selected place, or nil when
// the store is empty. Equal markers are broken by the highest id.
func (r *PlaceRepository) LastSelectedPlace() (*models.Place, error) {
	log.Println("[DEBUG] PlaceRepository.LastSelectedPlace called")

	var place models.Place
	result := r.db.Order("last_selected_at DESC, id DESC").First(&place)
	if result.Error != nil {
		if stderrors.Is(result.Error, gorm.ErrRecordNotFound) {
			log.Println("[DEBUG] No places stored yet")
			return nil, nil
		}
		log.Printf("[ERROR] Database error when loading last place: %v\n", result.Error)
		return nil, errors.NewDatabaseError("failed to load last selected place", result.Error)
	}

	log.Printf("[DEBUG] Last selected place: %s\n", place.Name)
	return &place, nil
}

// RecentPlaces returns up to limit places, most recently selected first.
func (r *PlaceRepository) RecentPlaces(limit int) ([]models.Place, error) {
	if limit < 1 {
		return nil, errors.NewValidationError("limit must be at least 1")
	}

	log.Printf("[DEBUG] PlaceRepository.RecentPlaces: limit=%d\n", limit)

	var places []models.Place
	result := r.db.Order("last_selected_at DESC, id DESC").Limit(limit).Find(&places)
	if result.Error != nil {
		log.Printf("[ERROR] Database error when loading recent places: %v\n", result.Error)
		return nil, errors.NewDatabaseError("failed to load recent places", result.Error)
	}

	return places, nil
}

// RecordWeather appends a reading to the history of the given place. A
// transient place is upserted first, so callers may pass records straight
// from the provider.
func (r *PlaceRepository) RecordWeather(place *models.Place, weather *models.Weather) error {
	if place == nil {
		return errors.NewValidationError("place cannot be nil")
	}
	if weather == nil {
		return errors.NewValidationError("weather cannot be nil")
	}

	log.Printf("[DEBUG] PlaceRepository.RecordWeather: place=%s\n", place.Name)

	if !place.Persisted() {
		if err := r.UpsertPlace(place); err != nil {
			return err
		}
	}
	if !place.Persisted() {
		return errors.NewPlaceUnresolvedError("place has no stored id after upsert")
	}

	record := models.WeatherRecord{
		PlaceID:     place.ID,
		Temperature: weather.Temperature,
		FeelsLike:   weather.FeelsLike,
		TempMin:     weather.TempMin,
		TempMax:     weather.TempMax,
		Humidity:    weather.Humidity,
		Pressure:    weather.Pressure,
		WindSpeed:   weather.WindSpeed,
		WindDeg:     weather.WindDeg,
		Description: weather.Description,
		IconCode:    weather.IconCode,
		ObservedAt:  weather.Timestamp,
	}

	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	if err := r.db.Create(&record).Error; err != nil {
		log.Printf("[ERROR] Database error when recording weather: %v\n", err)
		return errors.NewDatabaseError("failed to record weather", err)
	}

	log.Printf("[DEBUG] Recorded weather for place ID %d\n", place.ID)
	return nil
}

// WeatherHistory returns up to limit historical readings for the place,
// most recent first. An unknown place yields an empty history.
func (r *PlaceRepository) WeatherHistory(place *models.Place, limit int) ([]models.Weather, error) {
	if place == nil {
		return nil, errors.NewValidationError("place cannot be nil")
	}
	if limit < 1 {
		return nil, errors.NewValidationError("limit must be at least 1")
	}

	log.Printf("[DEBUG] PlaceRepository.WeatherHistory: place=%s, limit=%d\n", place.Name, limit)

	placeID := place.ID
	if placeID == 0 {
		var stored models.Place
		result := r.db.Where("name = ? AND latitude = ? AND longitude = ?",
			place.Name, place.Latitude, place.Longitude).First(&stored)
		if result.Error != nil {
			if stderrors.Is(result.Error, gorm.ErrRecordNotFound) {
				return []models.Weather{}, nil
			}
			return nil, errors.NewDatabaseError("failed to resolve place for history", result.Error)
		}
		placeID = stored.ID
	}

	var records []models.WeatherRecord
	result := r.db.Where("place_id = ?", placeID).
		Order("observed_at DESC, id DESC").Limit(limit).Find(&records)
	if result.Error != nil {
		log.Printf("[ERROR] Database error when loading weather history: %v\n", result.Error)
		return nil, errors.NewDatabaseError("failed to load weather history", result.Error)
	}

	history := make([]models.Weather, 0, len(records))
	for _, record := range records {
		history = append(history, models.Weather{
			CityName:    place.Name,
			Temperature: record.Temperature,
			FeelsLike:   record.FeelsLike,
			TempMin:     record.TempMin,
			TempMax:     record.TempMax,
			Humidity:    record.Humidity,
			Pressure:    record.Pressure,
			WindSpeed:   record.WindSpeed,
			WindDeg:     record.WindDeg,
			Description: record.Description,
			IconCode:    record.IconCode,
			Latitude:    place.Latitude,
			Longitude:   place.Longitude,
			Timestamp:   record.ObservedAt,
		})
	}

	log.Printf("[DEBUG] Loaded %d history entries for %s\n", len(history), place.Name)
	return history, nil
}
