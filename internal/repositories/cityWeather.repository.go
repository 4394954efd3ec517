package repositories

import (
	"context"
	"errors"
	"time"
	"vitalsky/internal/database"
	"vitalsky/internal/logger"
	. "vitalsky/internal/models"
	"vitalsky/internal/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const CITY_WEATHER_BATCH_SIZE = 50

type CityWeatherRepository interface {
	GetByCityAndDay(ctx context.Context, cityID int, day time.Time) (*CityWeather, error)
	GetRange(ctx context.Context, cityID int, from, to time.Time) ([]CityWeather, error)
	UpsertBatch(ctx context.Context, records []*CityWeather) error
}

type cityWeatherRepository struct {
	db  database.DB
	log logger.Logger
}

func NewCityWeatherRepository(db database.DB) CityWeatherRepository {
	return &cityWeatherRepository{
		db:  db,
		log: logger.New("cityWeatherRepository"),
	}
}

// GetByCityAndDay returns the cached day for a city, or nil on cache miss.
func (r *cityWeatherRepository) GetByCityAndDay(
	ctx context.Context,
	cityID int,
	day time.Time,
) (*CityWeather, error) {
	log := r.log.Function("GetByCityAndDay")

	var record CityWeather
	err := r.db.SQLWithContext(ctx).
		Where("city_id = ? AND day = ?", cityID, utils.DateOnly(day)).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, log.Err("failed to get city weather", err, "cityID", cityID, "day", utils.FormatDate(day))
	}

	return &record, nil
}

// GetRange returns cached days for a city inside [from, to], ordered by day.
func (r *cityWeatherRepository) GetRange(
	ctx context.Context,
	cityID int,
	from, to time.Time,
) ([]CityWeather, error) {
	log := r.log.Function("GetRange")

	var records []CityWeather
	err := r.db.SQLWithContext(ctx).
		Where("city_id = ? AND day BETWEEN ? AND ?", cityID, utils.DateOnly(from), utils.DateOnly(to)).
		Order("day ASC").
		Find(&records).Error
	if err != nil {
		return nil, log.Err("failed to get city weather range", err, "cityID", cityID)
	}

	return records, nil
}

// UpsertBatch writes a fetched window, replacing aggregates for days that
// already exist. Keyed on (city_id, day) so repeated fetches stay idempotent.
func (r *cityWeatherRepository) UpsertBatch(ctx context.Context, records []*CityWeather) error {
	log := r.log.Function("UpsertBatch")

	if len(records) == 0 {
		return nil
	}

	err := r.db.SQLWithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "city_id"},
				{Name: "day"},
			},
			DoUpdates: clause.AssignmentColumns([]string{
				"weather_code", "temp_min", "temp_mean", "temp_max",
				"apparent_temp_min", "apparent_temp_max",
				"pressure_mean", "humidity_mean",
				"wind_speed_max", "wind_gusts_max", "uv_index_max",
				"cloud_cover_mean", "sunshine_duration",
				"precipitation_sum", "precipitation_hrs",
				"is_thunderstorm", "raw", "updated_at",
			}),
		}).
		CreateInBatches(records, CITY_WEATHER_BATCH_SIZE).Error
	if err != nil {
		return log.Err("failed to upsert city weather batch", err, "count", len(records))
	}

	return nil
}
