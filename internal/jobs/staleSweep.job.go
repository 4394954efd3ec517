package jobs

import (
	"context"
	"vitalsky/internal/logger"
	"vitalsky/internal/services"
)

type StaleSweepJob struct {
	worker   *services.WorkerService
	log      logger.Logger
	schedule services.Schedule
}

func NewStaleSweepJob(
	worker *services.WorkerService,
	schedule services.Schedule,
) *StaleSweepJob {
	return &StaleSweepJob{
		worker:   worker,
		log:      logger.New("staleSweepJob"),
		schedule: schedule,
	}
}

func (j *StaleSweepJob) Name() string {
	return "StaleJobSweep"
}

func (j *StaleSweepJob) Execute(ctx context.Context) error {
	log := j.log.Function("Execute")

	summary, err := j.worker.SweepStale(ctx)
	if err != nil {
		return log.Err("stale sweep failed", err)
	}

	if summary.Requeued > 0 || summary.Failed > 0 {
		log.Info("Stale sweep completed", "requeued", summary.Requeued, "failed", summary.Failed)
	}
	return nil
}

func (j *StaleSweepJob) Schedule() services.Schedule {
	return j.schedule
}
