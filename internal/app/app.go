package app

import (
	"context"
	"vitalsky/config"
	"vitalsky/internal/database"
	"vitalsky/internal/events"
	"vitalsky/internal/handlers/middleware"
	"vitalsky/internal/jobs"
	"vitalsky/internal/logger"
	"vitalsky/internal/repositories"
	"vitalsky/internal/services"
)

type App struct {
	Database   database.DB
	Middleware middleware.Middleware
	EventBus   *events.EventBus
	Config     config.Config
	Repos      repositories.Repository
	Services   services.Service
}

func New() (*App, error) {
	log := logger.New("app").Function("New")

	config, err := config.InitConfig()
	if err != nil {
		return &App{}, log.Err("failed to initialize config", err)
	}

	db, err := database.New(config)
	if err != nil {
		return &App{}, log.Err("failed to create database", err)
	}

	eventBus := events.New(db.Cache.Events, config)

	repos := repositories.New(db)

	svc, err := services.New(db, config, eventBus)
	if err != nil {
		return &App{}, log.Err("failed to create services", err)
	}

	middleware := middleware.New(db, eventBus, config)

	if config.SchedulerEnabled {
		if err := jobs.RegisterAllJobs(svc.Scheduler, svc); err != nil {
			return &App{}, log.Err("failed to register scheduled jobs", err)
		}
		if err := svc.Scheduler.Start(context.Background()); err != nil {
			return &App{}, log.Err("failed to start scheduler", err)
		}
	}

	app := &App{
		Database:   db,
		Config:     config,
		Middleware: middleware,
		EventBus:   eventBus,
		Repos:      repos,
		Services:   svc,
	}

	if err := app.validate(); err != nil {
		return &App{}, log.Err("failed to validate app", err)
	}

	return app, nil
}

func (a *App) validate() error {
	log := logger.New("app").Function("validate")

	if a.Database.SQL == nil {
		return log.ErrMsg("database is nil")
	}

	if a.Config == (config.Config{}) {
		return log.ErrMsg("config is nil")
	}

	nilChecks := []any{
		a.EventBus,
		a.Services.Timezone,
		a.Services.Geo,
		a.Services.OpenMeteo,
		a.Services.WeatherCache,
		a.Services.Dispatch,
		a.Services.Worker,
		a.Services.Scheduler,
		a.Repos.User,
		a.Repos.UserLocation,
		a.Repos.City,
		a.Repos.CityWeather,
		a.Repos.UserWeather,
		a.Repos.WeatherJob,
	}

	for _, check := range nilChecks {
		if check == nil {
			return log.ErrMsg("nil check failed")
		}
	}

	return nil
}

func (a *App) Close() (err error) {
	if a.EventBus != nil {
		if closeErr := a.EventBus.Close(); closeErr != nil {
			err = closeErr
		}
	}

	if a.Services.Scheduler != nil {
		if closeErr := a.Services.Scheduler.Stop(context.Background()); closeErr != nil {
			err = closeErr
		}
	}

	if dbErr := a.Database.Close(); dbErr != nil {
		err = dbErr
	}

	return err
}
