package repository

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	apperrors "weatherdesk.app/errors"
	"weatherdesk.app/models"
)

// Setup test database with in-memory SQLite
func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.Place{}, &models.WeatherRecord{})
	require.NoError(t, err)

	return db
}

func testWeather() *models.Weather {
	return &models.Weather{
		CityName:    "Moscow",
		Temperature: 20.5,
		FeelsLike:   19.0,
		TempMin:     18.2,
		TempMax:     22.1,
		Humidity:    65,
		Pressure:    1013,
		WindSpeed:   5.2,
		WindDeg:     180,
		Description: "clear sky",
		IconCode:    "01d",
		Latitude:    55.7558,
		Longitude:   37.6173,
		Timestamp:   time.Now().Unix(),
	}
}

func TestPlaceRepository_UpsertPlace(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPlaceRepository(db)

	t.Run("InsertAssignsID", func(t *testing.T) {
		place := &models.Place{Name: "Moscow", Country: "RU", Latitude: 55.7558, Longitude: 37.6173}
		err := repo.UpsertPlace(place)
		assert.NoError(t, err)
		assert.True(t, place.Persisted())
		assert.False(t, place.LastSelectedAt.IsZero())
	})

	t.Run("RepeatUpsertKeepsOneRow", func(t *testing.T) {
		first := &models.Place{Name: "Paris", Latitude: 48.8566, Longitude: 2.3522, State: "Ile-de-France"}
		require.NoError(t, repo.UpsertPlace(first))

		second := &models.Place{Name: "Paris", Latitude: 48.8566, Longitude: 2.3522, State: "Île-de-France", Country: "FR"}
		require.NoError(t, repo.UpsertPlace(second))

		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, "Île-de-France", second.State)
		assert.Equal(t, "FR", second.Country)

		var count int64
		db.Model(&models.Place{}).Where("name = ?", "Paris").Count(&count)
		assert.Equal(t, int64(1), count)
	})

	t.Run("SameNameDifferentCoordinatesIsDistinct", func(t *testing.T) {
		usSpringfield := &models.Place{Name: "Springfield", Latitude: 39.7817, Longitude: -89.6501}
		require.NoError(t, repo.UpsertPlace(usSpringfield))

		otherSpringfield := &models.Place{Name: "Springfield", Latitude: 42.1015, Longitude: -72.5898}
		require.NoError(t, repo.UpsertPlace(otherSpringfield))

		assert.NotEqual(t, usSpringfield.ID, otherSpringfield.ID)
	})

	t.Run("RefreshesLastSelectedMarker", func(t *testing.T) {
		place := &models.Place{Name: "Berlin", Latitude: 52.52, Longitude: 13.405}
		require.NoError(t, repo.UpsertPlace(place))
		firstMark := place.LastSelectedAt

		time.Sleep(5 * time.Millisecond)
		require.NoError(t, repo.UpsertPlace(place))
		assert.True(t, place.LastSelectedAt.After(firstMark))
	})

	t.Run("NilPlace", func(t *testing.T) {
		err := repo.UpsertPlace(nil)
		assert.Error(t, err)
		assert.True(t, apperrors.IsValidationError(err))
	})

	t.Run("EmptyName", func(t *testing.T) {
		err := repo.UpsertPlace(&models.Place{Latitude: 1, Longitude: 1})
		assert.Error(t, err)
		assert.True(t, apperrors.IsValidationError(err))
	})

	t.Run("OutOfRangeCoordinatesAreRejected", func(t *testing.T) {
		place := &models.Place{Name: "Nowhere", Latitude: 999, Longitude: -999}
		err := repo.UpsertPlace(place)
		assert.Error(t, err)
		assert.True(t, apperrors.IsValidationError(err))
		assert.False(t, place.Persisted())

		var count int64
		db.Model(&models.Place{}).Where("name = ?", "Nowhere").Count(&count)
		assert.Equal(t, int64(0), count)
	})

	t.Run("BoundaryCoordinatesAreAccepted", func(t *testing.T) {
		place := &models.Place{Name: "Amundsen-Scott", Latitude: -90, Longitude: 180}
		assert.NoError(t, repo.UpsertPlace(place))
		assert.True(t, place.Persisted())
	})
}

func TestPlaceRepository_LastSelectedPlace(t *testing.T) {
	t.Run("EmptyStore", func(t *testing.T) {
		repo := NewPlaceRepository(setupTestDB(t))

		place, err := repo.LastSelectedPlace()
		assert.NoError(t, err)
		assert.Nil(t, place)
	})

	t.Run("MostRecentWins", func(t *testing.T) {
		repo := NewPlaceRepository(setupTestDB(t))

		older := &models.Place{Name: "Moscow", Latitude: 55.7558, Longitude: 37.6173}
		require.NoError(t, repo.UpsertPlace(older))
		time.Sleep(5 * time.Millisecond)
		newer := &models.Place{Name: "Kyiv", Latitude: 50.4501, Longitude: 30.5234}
		require.NoError(t, repo.UpsertPlace(newer))

		place, err := repo.LastSelectedPlace()
		assert.NoError(t, err)
		require.NotNil(t, place)
		assert.Equal(t, "Kyiv", place.Name)
	})

	t.Run("CoordinatesRoundTrip", func(t *testing.T) {
		repo := NewPlaceRepository(setupTestDB(t))

		in := &models.Place{Name: "Moscow", Latitude: 55.7558, Longitude: 37.6173}
		require.NoError(t, repo.UpsertPlace(in))

		out, err := repo.LastSelectedPlace()
		assert.NoError(t, err)
		require.NotNil(t, out)
		assert.InDelta(t, in.Latitude, out.Latitude, 1e-9)
		assert.InDelta(t, in.Longitude, out.Longitude, 1e-9)
	})

	t.Run("EqualMarkersBreakByHighestID", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewPlaceRepository(db)

		mark := time.Now()
		require.NoError(t, db.Create(&models.Place{Name: "A", Latitude: 1, Longitude: 1, LastSelectedAt: mark}).Error)
		require.NoError(t, db.Create(&models.Place{Name: "B", Latitude: 2, Longitude: 2, LastSelectedAt: mark}).Error)

		place, err := repo.LastSelectedPlace()
		assert.NoError(t, err)
		require.NotNil(t, place)
		assert.Equal(t, "B", place.Name)
	})
}

func TestPlaceRepository_RecentPlaces(t *testing.T) {
	repo := NewPlaceRepository(setupTestDB(t))

	names := []string{"Moscow", "Kyiv", "Berlin", "Paris"}
	for i, name := range names {
		place := &models.Place{Name: name, Latitude: float64(i), Longitude: float64(i)}
		require.NoError(t, repo.UpsertPlace(place))
		time.Sleep(5 * time.Millisecond)
	}

	t.Run("BoundedAndOrdered", func(t *testing.T) {
		places, err := repo.RecentPlaces(2)
		assert.NoError(t, err)
		require.Len(t, places, 2)
		assert.Equal(t, "Paris", places[0].Name)
		assert.Equal(t, "Berlin", places[1].Name)
	})

	t.Run("LimitAboveCount", func(t *testing.T) {
		places, err := repo.RecentPlaces(10)
		assert.NoError(t, err)
		assert.Len(t, places, 4)
	})

	t.Run("InvalidLimit", func(t *testing.T) {
		places, err := repo.RecentPlaces(0)
		assert.Error(t, err)
		assert.Nil(t, places)
		assert.True(t, apperrors.IsValidationError(err))
	})
}

func TestPlaceRepository_RecordWeather(t *testing.T) {
	t.Run("PersistedPlace", func(t *testing.T) {
		repo := NewPlaceRepository(setupTestDB(t))

		place := &models.Place{Name: "Moscow", Latitude: 55.7558, Longitude: 37.6173}
		require.NoError(t, repo.UpsertPlace(place))

		err := repo.RecordWeather(place, testWeather())
		assert.NoError(t, err)

		history, err := repo.WeatherHistory(place, 10)
		assert.NoError(t, err)
		require.Len(t, history, 1)
		assert.Equal(t, 20.5, history[0].Temperature)
	})

	t.Run("TransientPlaceIsUpsertedFirst", func(t *testing.T) {
		repo := NewPlaceRepository(setupTestDB(t))

		place := &models.Place{Name: "Moscow", Latitude: 55.7558, Longitude: 37.6173}
		err := repo.RecordWeather(place, testWeather())
		assert.NoError(t, err)
		assert.True(t, place.Persisted())
	})

	t.Run("NilArguments", func(t *testing.T) {
		repo := NewPlaceRepository(setupTestDB(t))

		assert.True(t, apperrors.IsValidationError(repo.RecordWeather(nil, testWeather())))
		assert.True(t, apperrors.IsValidationError(repo.RecordWeather(&models.Place{Name: "X", Latitude: 1, Longitude: 1}, nil)))
	})
}

func TestPlaceRepository_WeatherHistory(t *testing.T) {
	repo := NewPlaceRepository(setupTestDB(t))

	place := &models.Place{Name: "Moscow", Latitude: 55.7558, Longitude: 37.6173}
	require.NoError(t, repo.UpsertPlace(place))

	base := time.Now().Unix()
	for i := 0; i < 5; i++ {
		w := testWeather()
		w.Temperature = float64(10 + i)
		w.Timestamp = base + int64(i*3600)
		require.NoError(t, repo.RecordWeather(place, w))
	}

	t.Run("MostRecentFirstBounded", func(t *testing.T) {
		history, err := repo.WeatherHistory(place, 3)
		assert.NoError(t, err)
		require.Len(t, history, 3)
		assert.Equal(t, 14.0, history[0].Temperature)
		assert.Equal(t, 13.0, history[1].Temperature)
		assert.Equal(t, 12.0, history[2].Temperature)
		assert.True(t, history[0].Timestamp > history[1].Timestamp)
	})

	t.Run("UnknownPlaceYieldsEmptyHistory", func(t *testing.T) {
		unknown := &models.Place{Name: "Nowhere", Latitude: 0, Longitude: 0}
		history, err := repo.WeatherHistory(unknown, 10)
		assert.NoError(t, err)
		assert.Empty(t, history)
	})

	t.Run("LookupByNaturalKey", func(t *testing.T) {
		transient := &models.Place{Name: "Moscow", Latitude: 55.7558, Longitude: 37.6173}
		history, err := repo.WeatherHistory(transient, 1)
		assert.NoError(t, err)
		assert.Len(t, history, 1)
	})
}

func TestPlaceRepository_CascadeDelete(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, db.Exec("PRAGMA foreign_keys = ON").Error)
	repo := NewPlaceRepository(db)

	place := &models.Place{Name: "Moscow", Latitude: 55.7558, Longitude: 37.6173}
	require.NoError(t, repo.UpsertPlace(place))
	require.NoError(t, repo.RecordWeather(place, testWeather()))

	require.NoError(t, db.Delete(&models.Place{}, place.ID).Error)

	var count int64
	db.Model(&models.WeatherRecord{}).Where("place_id = ?", place.ID).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestDatabaseErrorsAreTyped(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPlaceRepository(db)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	upsertErr := repo.UpsertPlace(&models.Place{Name: "Moscow", Latitude: 1, Longitude: 1})
	assert.Error(t, upsertErr)

	var appErr *apperrors.AppError
	assert.True(t, errors.As(upsertErr, &appErr))
	assert.Equal(t, apperrors.DatabaseError, appErr.Type)
}
