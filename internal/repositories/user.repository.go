package repositories

import (
	"context"
	"errors"
	"vitalsky/internal/database"
	"vitalsky/internal/logger"
	. "vitalsky/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	ListWeatherTracked(ctx context.Context) ([]User, error)
}

type userRepository struct {
	db  database.DB
	log logger.Logger
}

func NewUserRepository(db database.DB) UserRepository {
	return &userRepository{
		db:  db,
		log: logger.New("userRepository"),
	}
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	log := r.log.Function("GetByID")

	var user User
	if err := r.db.SQLWithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, log.Err("failed to get user", err, "userID", id)
	}

	return &user, nil
}

// ListWeatherTracked returns active users with weather tracking enabled; the
// dispatcher iterates this set every tick.
func (r *userRepository) ListWeatherTracked(ctx context.Context) ([]User, error) {
	log := r.log.Function("ListWeatherTracked")

	var users []User
	if err := r.db.SQLWithContext(ctx).
		Where("weather_tracking_enabled = ? AND is_active = ?", true, true).
		Find(&users).Error; err != nil {
		return nil, log.Err("failed to list weather tracked users", err)
	}

	return users, nil
}
