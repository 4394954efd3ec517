package database

import (
	"vitalsky/internal/logger"
	"vitalsky/internal/models"
)

// MigrateModels runs GORM AutoMigrate for all models
func (db *DB) MigrateModels() error {
	log := logger.New("database").Function("MigrateModels")
	log.Info("Starting database migration")

	modelsToMigrate := []interface{}{
		&models.User{},
		&models.UserLocation{},
		&models.City{},
		&models.CityWeather{},
		&models.UserWeather{},
		&models.WeatherJob{},
	}

	for _, model := range modelsToMigrate {
		if err := db.SQL.AutoMigrate(model); err != nil {
			log.Error("Failed to migrate model", "model", model, "error", err)
			return err
		}
	}

	log.Info("Database migration completed successfully")
	return nil
}

// CreateIndexes creates additional indexes that GORM doesn't create automatically
func (db *DB) CreateIndexes() error {
	log := logger.New("database").Function("CreateIndexes")
	log.Info("Creating additional database indexes")

	indexes := []string{
		// Worker batch fetch: queued jobs below the attempt cap, oldest first
		"CREATE INDEX IF NOT EXISTS idx_weather_jobs_status_attempts ON weather_jobs(status, attempts, created_at)",
		// Stale sweep: processing rows by lock age
		"CREATE INDEX IF NOT EXISTS idx_weather_jobs_locked_at ON weather_jobs(locked_at) WHERE status = 'processing'",
		// Geo bounding-box scan
		"CREATE INDEX IF NOT EXISTS idx_cities_lat_lon ON cities(latitude, longitude)",
	}

	for _, index := range indexes {
		if err := db.SQL.Exec(index).Error; err != nil {
			log.Error("Failed to create index", "index", index, "error", err)
			return err
		}
	}

	log.Info("Additional indexes created successfully")
	return nil
}
