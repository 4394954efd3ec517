package services

import (
	"vitalsky/config"
	"vitalsky/internal/database"
	"vitalsky/internal/events"
	"vitalsky/internal/repositories"
)

// EventPublisher is the slice of the event bus the job services need.
// Publishing is fire-and-forget; run reports never depend on it succeeding.
type EventPublisher interface {
	PublishAsync(channel events.Channel, event events.Event)
}

type Service struct {
	Timezone     *TimezoneService
	Geo          *GeoService
	OpenMeteo    *OpenMeteoService
	WeatherCache *WeatherCacheService
	Dispatch     *DispatchService
	Worker       *WorkerService
	Scheduler    *SchedulerService
}

func New(db database.DB, config config.Config, eventBus *events.EventBus) (Service, error) {
	repos := repositories.New(db)

	timezoneService := NewTimezoneService(repos.UserLocation)
	geoService := NewGeoService(repos.City)
	openMeteoService := NewOpenMeteoService(config)
	weatherCacheService := NewWeatherCacheService(repos.CityWeather, openMeteoService)

	dispatchService := NewDispatchService(
		repos.User,
		repos.WeatherJob,
		timezoneService,
		eventBus,
		config,
	)

	workerService := NewWorkerService(
		repos,
		timezoneService,
		geoService,
		weatherCacheService,
		eventBus,
		config,
	)

	return Service{
		Timezone:     timezoneService,
		Geo:          geoService,
		OpenMeteo:    openMeteoService,
		WeatherCache: weatherCacheService,
		Dispatch:     dispatchService,
		Worker:       workerService,
		Scheduler:    NewSchedulerService(),
	}, nil
}
