// Package database provides database connection and migration functionality
package database

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"weatherdesk.app/config"
	"weatherdesk.app/models"
)

// InitDB opens the local storage file. Foreign keys are enabled so that
// history rows cascade-delete with their place.
func InitDB(config config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s?_foreign_keys=on", config.Path)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open local storage: %w", err)
	}

	return db, nil
}

// RunMigrations executes database schema migrations
func RunMigrations(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Place{},
		&models.WeatherRecord{},
	)
}

// CloseDB safely closes the database connection. It is a no-op for a nil
// handle and safe to call more than once.
func CloseDB(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
