package repositories

import (
	"context"
	"errors"
	"vitalsky/internal/database"
	"vitalsky/internal/logger"
	. "vitalsky/internal/models"

	"gorm.io/gorm"
)

type CityRepository interface {
	GetByID(ctx context.Context, id int) (*City, error)
	FindWithinBox(ctx context.Context, minLat, maxLat, minLon, maxLon float64) ([]City, error)
	Sample(ctx context.Context, limit int) ([]City, error)
	UpsertBatch(ctx context.Context, cities []*City) error
}

type cityRepository struct {
	db  database.DB
	log logger.Logger
}

func NewCityRepository(db database.DB) CityRepository {
	return &cityRepository{
		db:  db,
		log: logger.New("cityRepository"),
	}
}

func (r *cityRepository) GetByID(ctx context.Context, id int) (*City, error) {
	log := r.log.Function("GetByID")

	var city City
	if err := r.db.SQLWithContext(ctx).First(&city, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, log.Err("failed to get city", err, "cityID", id)
	}

	return &city, nil
}

// FindWithinBox returns reference cities inside a latitude/longitude bounding
// box. The caller narrows the candidate set this way before running the exact
// distance scan.
func (r *cityRepository) FindWithinBox(
	ctx context.Context,
	minLat, maxLat, minLon, maxLon float64,
) ([]City, error) {
	log := r.log.Function("FindWithinBox")

	var cities []City
	err := r.db.SQLWithContext(ctx).
		Where("latitude BETWEEN ? AND ?", minLat, maxLat).
		Where("longitude BETWEEN ? AND ?", minLon, maxLon).
		Find(&cities).Error
	if err != nil {
		return nil, log.Err("failed to query cities within box", err)
	}

	return cities, nil
}

// Sample returns up to limit cities in no particular order; the geo resolver
// falls back to this when the bounding box is empty.
func (r *cityRepository) Sample(ctx context.Context, limit int) ([]City, error) {
	log := r.log.Function("Sample")

	var cities []City
	if err := r.db.SQLWithContext(ctx).Limit(limit).Find(&cities).Error; err != nil {
		return nil, log.Err("failed to sample cities", err, "limit", limit)
	}

	return cities, nil
}

func (r *cityRepository) UpsertBatch(ctx context.Context, cities []*City) error {
	log := r.log.Function("UpsertBatch")

	if len(cities) == 0 {
		return nil
	}

	if err := r.db.SQLWithContext(ctx).Save(cities).Error; err != nil {
		return log.Err("failed to upsert cities", err, "count", len(cities))
	}

	log.Info("Upserted cities", "count", len(cities))
	return nil
}
