package repositories

import (
	"context"
	"errors"
	"time"
	"vitalsky/internal/database"
	"vitalsky/internal/logger"
	. "vitalsky/internal/models"
	"vitalsky/internal/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserLocationRepository interface {
	LatestForDate(ctx context.Context, userID uuid.UUID, date time.Time) (*UserLocation, error)
	LatestWithTimezone(ctx context.Context, userID uuid.UUID, date time.Time) (*UserLocation, error)
}

type userLocationRepository struct {
	db  database.DB
	log logger.Logger
}

func NewUserLocationRepository(db database.DB) UserLocationRepository {
	return &userLocationRepository{
		db:  db,
		log: logger.New("userLocationRepository"),
	}
}

// LatestForDate returns the most recently updated location sample for the
// user on the given calendar date, or nil when the user has none that day.
func (r *userLocationRepository) LatestForDate(
	ctx context.Context,
	userID uuid.UUID,
	date time.Time,
) (*UserLocation, error) {
	log := r.log.Function("LatestForDate")

	var location UserLocation
	err := r.db.SQLWithContext(ctx).
		Where("user_id = ? AND date = ?", userID, utils.DateOnly(date)).
		Order("updated_at DESC").
		First(&location).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, log.Err("failed to get location for date", err, "userID", userID, "date", utils.FormatDate(date))
	}

	return &location, nil
}

// LatestWithTimezone is LatestForDate restricted to rows that actually carry
// a timezone; rows with bare coordinates are skipped.
func (r *userLocationRepository) LatestWithTimezone(
	ctx context.Context,
	userID uuid.UUID,
	date time.Time,
) (*UserLocation, error) {
	log := r.log.Function("LatestWithTimezone")

	var location UserLocation
	err := r.db.SQLWithContext(ctx).
		Where("user_id = ? AND date = ? AND timezone IS NOT NULL AND timezone <> ''", userID, utils.DateOnly(date)).
		Order("updated_at DESC").
		First(&location).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, log.Err("failed to get location with timezone", err, "userID", userID, "date", utils.FormatDate(date))
	}

	return &location, nil
}
