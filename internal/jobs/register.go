package jobs

import (
	"vitalsky/internal/logger"
	"vitalsky/internal/services"
)

func RegisterAllJobs(
	scheduler *services.SchedulerService,
	svc services.Service,
) error {
	log := logger.New("jobs").Function("RegisterAllJobs")
	log.Info("Registering jobs")

	dispatchJob := NewDispatchJob(svc.Dispatch, services.HourlyDispatch)
	if err := scheduler.AddJob(dispatchJob); err != nil {
		return log.Err("failed to register dispatch job", err)
	}

	weatherSyncJob := NewWeatherSyncJob(svc.Worker, services.HourlyWork)
	if err := scheduler.AddJob(weatherSyncJob); err != nil {
		return log.Err("failed to register weather sync job", err)
	}

	staleSweepJob := NewStaleSweepJob(svc.Worker, services.HourlySweep)
	if err := scheduler.AddJob(staleSweepJob); err != nil {
		return log.Err("failed to register stale sweep job", err)
	}

	return nil
}
