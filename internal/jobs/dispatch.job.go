package jobs

import (
	"context"
	"vitalsky/internal/logger"
	"vitalsky/internal/services"
)

type DispatchJob struct {
	dispatch *services.DispatchService
	log      logger.Logger
	schedule services.Schedule
}

func NewDispatchJob(
	dispatch *services.DispatchService,
	schedule services.Schedule,
) *DispatchJob {
	return &DispatchJob{
		dispatch: dispatch,
		log:      logger.New("dispatchJob"),
		schedule: schedule,
	}
}

func (j *DispatchJob) Name() string {
	return "WeatherDispatch"
}

func (j *DispatchJob) Execute(ctx context.Context) error {
	log := j.log.Function("Execute")

	report, err := j.dispatch.DispatchAll(ctx)
	if err != nil {
		return log.Err("dispatch run failed", err)
	}

	log.Info("Dispatch run completed",
		"total", report.Summary.Total,
		"enqueued", report.Summary.Enqueued,
	)
	return nil
}

func (j *DispatchJob) Schedule() services.Schedule {
	return j.schedule
}
