package jobs

import (
	"context"
	"vitalsky/internal/logger"
	"vitalsky/internal/services"
)

type WeatherSyncJob struct {
	worker   *services.WorkerService
	log      logger.Logger
	schedule services.Schedule
}

func NewWeatherSyncJob(
	worker *services.WorkerService,
	schedule services.Schedule,
) *WeatherSyncJob {
	return &WeatherSyncJob{
		worker:   worker,
		log:      logger.New("weatherSyncJob"),
		schedule: schedule,
	}
}

func (j *WeatherSyncJob) Name() string {
	return "WeatherSyncWorker"
}

func (j *WeatherSyncJob) Execute(ctx context.Context) error {
	log := j.log.Function("Execute")

	report, err := j.worker.ProcessQueue(ctx)
	if err != nil {
		return log.Err("worker run failed", err)
	}

	if report.Summary.Processed > 0 {
		log.Info("Worker run completed",
			"processed", report.Summary.Processed,
			"done", report.Summary.Done,
			"failed", report.Summary.Failed,
		)
	}
	return nil
}

func (j *WeatherSyncJob) Schedule() services.Schedule {
	return j.schedule
}
