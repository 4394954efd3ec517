package services

import (
	"context"
	"time"
	"vitalsky/internal/logger"
	"vitalsky/internal/models"
	"vitalsky/internal/repositories"
	"vitalsky/internal/utils"
)

// WeatherClient is the external weather source boundary. OpenMeteoService is
// the production implementation.
type WeatherClient interface {
	FetchDailyWindow(ctx context.Context, city *models.City) ([]*models.CityWeather, error)
}

// WeatherCacheService is the read-through layer over the per-city weather
// cache. The worker never talks to the external source directly.
type WeatherCacheService struct {
	cityWeather repositories.CityWeatherRepository
	client      WeatherClient
	log         logger.Logger
}

func NewWeatherCacheService(
	cityWeather repositories.CityWeatherRepository,
	client WeatherClient,
) *WeatherCacheService {
	return &WeatherCacheService{
		cityWeather: cityWeather,
		client:      client,
		log:         logger.New("weatherCacheService"),
	}
}

// EnsureCached returns the cached day for (city, day), fetching and storing
// the whole past+forecast window on miss. One external call covers the miss
// and every adjacent day a later job may ask for.
//
// A nil record with a nil error means the source has no data for that day
// (typically older than its retention); callers must treat that as a terminal
// no-data outcome, not a retryable failure.
func (s *WeatherCacheService) EnsureCached(
	ctx context.Context,
	city *models.City,
	day time.Time,
) (*models.CityWeather, error) {
	log := s.log.Function("EnsureCached")

	record, err := s.cityWeather.GetByCityAndDay(ctx, city.ID, day)
	if err != nil {
		return nil, err
	}
	if record != nil {
		return record, nil
	}

	log.Info("cache miss, fetching window from source",
		"cityID", city.ID,
		"day", utils.FormatDate(day),
	)

	window, err := s.client.FetchDailyWindow(ctx, city)
	if err != nil {
		return nil, err
	}

	if err := s.cityWeather.UpsertBatch(ctx, window); err != nil {
		return nil, err
	}

	record, err = s.cityWeather.GetByCityAndDay(ctx, city.ID, day)
	if err != nil {
		return nil, err
	}

	if record == nil {
		// Requested day is outside the fetched window; nothing more to do.
		log.Info("no data for day after window fetch",
			"cityID", city.ID,
			"day", utils.FormatDate(day),
		)
	}

	return record, nil
}
