package repositories

import (
	"context"
	"fmt"
	"time"
	"vitalsky/internal/database"
	"vitalsky/internal/logger"
	. "vitalsky/internal/models"
	"vitalsky/internal/utils"

	"github.com/google/uuid"
	"gorm.io/gorm/clause"
)

const (
	USER_WEATHER_CACHE_PREFIX   = "user_weather"
	USER_WEATHER_VERSION_HASH   = "user_weather_ver"
	USER_WEATHER_CACHE_EXPIRY   = 6 * time.Hour
	USER_WEATHER_VERSION_EXPIRY = 7 * 24 * time.Hour
)

type UserWeatherRepository interface {
	Upsert(ctx context.Context, record *UserWeather) error
	GetRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]UserWeather, error)
}

type userWeatherRepository struct {
	db    database.DB
	cache database.CacheClient
	log   logger.Logger
}

func NewUserWeatherRepository(db database.DB) UserWeatherRepository {
	return &userWeatherRepository{
		db:    db,
		cache: db.Cache.User,
		log:   logger.New("userWeatherRepository"),
	}
}

// Upsert replaces the user's weather record for the date. Keyed on
// (user_id, date); running the same job twice writes the same row.
func (r *userWeatherRepository) Upsert(ctx context.Context, record *UserWeather) error {
	log := r.log.Function("Upsert")

	err := r.db.SQLWithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "user_id"},
				{Name: "date"},
			},
			DoUpdates: clause.AssignmentColumns([]string{
				"city_id", "timezone",
				"weather_code", "temp_min", "temp_mean", "temp_max",
				"apparent_temp_min", "apparent_temp_max",
				"pressure_mean", "humidity_mean",
				"wind_speed_max", "wind_gusts_max", "uv_index_max",
				"cloud_cover_mean", "sunshine_duration",
				"precipitation_sum", "precipitation_hrs",
				"is_thunderstorm", "updated_at",
			}),
		}).
		Create(record).Error
	if err != nil {
		return log.Err(
			"failed to upsert user weather",
			err,
			"userID", record.UserID,
			"date", utils.FormatDate(record.Date),
		)
	}

	r.clearUserCache(ctx, record.UserID)

	return nil
}

func (r *userWeatherRepository) GetRange(
	ctx context.Context,
	userID uuid.UUID,
	from, to time.Time,
) ([]UserWeather, error) {
	log := r.log.Function("GetRange")

	cacheKey := r.rangeCacheKey(ctx, userID, from, to)

	var cached []UserWeather
	found, err := database.NewCacheBuilder(r.cache, cacheKey).
		WithContext(ctx).
		WithHash(USER_WEATHER_CACHE_PREFIX).
		Get(&cached)
	if err != nil {
		log.Warn("failed to read user weather from cache", "userID", userID, "error", err)
	}
	if found {
		return cached, nil
	}

	var records []UserWeather
	err = r.db.SQLWithContext(ctx).
		Where("user_id = ? AND date BETWEEN ? AND ?", userID, utils.DateOnly(from), utils.DateOnly(to)).
		Order("date ASC").
		Find(&records).Error
	if err != nil {
		return nil, log.Err("failed to get user weather range", err, "userID", userID)
	}

	err = database.NewCacheBuilder(r.cache, cacheKey).
		WithContext(ctx).
		WithHash(USER_WEATHER_CACHE_PREFIX).
		WithStruct(records).
		WithTTL(USER_WEATHER_CACHE_EXPIRY).
		Set()
	if err != nil {
		log.Warn("failed to cache user weather range", "userID", userID, "error", err)
	}

	return records, nil
}

// Range keys embed a per-user cache version. Dropping the version key on
// upsert makes every cached range for the user unreachable in one delete;
// the orphaned entries age out on their own TTL.
func (r *userWeatherRepository) rangeCacheKey(
	ctx context.Context,
	userID uuid.UUID,
	from, to time.Time,
) string {
	version := r.cacheVersion(ctx, userID)
	return fmt.Sprintf("%s:%s:%s:%s", userID, version, utils.FormatDate(from), utils.FormatDate(to))
}

func (r *userWeatherRepository) cacheVersion(ctx context.Context, userID uuid.UUID) string {
	var version string
	found, err := database.NewCacheBuilder(r.cache, userID).
		WithContext(ctx).
		WithHash(USER_WEATHER_VERSION_HASH).
		Get(&version)
	if err == nil && found && version != "" {
		return version
	}

	version = uuid.New().String()
	err = database.NewCacheBuilder(r.cache, userID).
		WithContext(ctx).
		WithHash(USER_WEATHER_VERSION_HASH).
		WithStruct(version).
		WithTTL(USER_WEATHER_VERSION_EXPIRY).
		Set()
	if err != nil {
		r.log.Warn("failed to set user weather cache version", "userID", userID, "error", err)
	}

	return version
}

func (r *userWeatherRepository) clearUserCache(ctx context.Context, userID uuid.UUID) {
	err := database.NewCacheBuilder(r.cache, userID).
		WithContext(ctx).
		WithHash(USER_WEATHER_VERSION_HASH).
		Delete()
	if err != nil {
		r.log.Warn("failed to clear user weather cache", "userID", userID, "error", err)
	}
}
