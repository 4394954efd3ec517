package services

import (
	"context"
	"fmt"
	"time"
	"vitalsky/config"
	"vitalsky/internal/events"
	"vitalsky/internal/logger"
	"vitalsky/internal/models"
	"vitalsky/internal/repositories"
	"vitalsky/internal/utils"
)

const (
	WEATHER_BACKFILL_DAYS = 13
	WEATHER_FORECAST_DAYS = 6
	STALE_JOB_CUTOFF      = 30 * time.Minute
)

type JobOutcome string

const (
	JobOutcomeDone        JobOutcome = "done"
	JobOutcomeNoData      JobOutcome = "no_weather_data"
	JobOutcomeRequeued    JobOutcome = "requeued"
	JobOutcomeFailed      JobOutcome = "failed"
	JobOutcomeClaimFailed JobOutcome = "claim_failed"
)

type JobResult struct {
	JobID     string     `json:"jobId"`
	UserID    string     `json:"userId"`
	LocalDate string     `json:"localDate"`
	Outcome   JobOutcome `json:"outcome"`
	Attempts  int        `json:"attempts"`
	Error     string     `json:"error,omitempty"`
}

type WorkerSummary struct {
	Processed   int `json:"processed"`
	Done        int `json:"done"`
	NoData      int `json:"noData"`
	Requeued    int `json:"requeued"`
	Failed      int `json:"failed"`
	ClaimFailed int `json:"claimFailed"`
}

type SweepSummary struct {
	Requeued int64 `json:"requeued"`
	Failed   int64 `json:"failed"`
}

type WorkerReport struct {
	Summary WorkerSummary `json:"summary"`
	Results []JobResult   `json:"results"`
}

// WorkerService drains the weather job queue: each job resolves the user's
// position for its local date, finds the nearest reference city, ensures that
// city's weather window is cached, and writes the user's anchor day plus the
// surrounding backfill and forecast days.
type WorkerService struct {
	jobs        repositories.WeatherJobRepository
	userWeather repositories.UserWeatherRepository
	cityWeather repositories.CityWeatherRepository
	timezone    *TimezoneService
	geo         *GeoService
	weather     *WeatherCacheService
	eventBus    EventPublisher
	batchSize   int
	maxAttempts int
	now         func() time.Time
	log         logger.Logger
}

func NewWorkerService(
	repos repositories.Repository,
	timezone *TimezoneService,
	geo *GeoService,
	weather *WeatherCacheService,
	eventBus EventPublisher,
	cfg config.Config,
) *WorkerService {
	return &WorkerService{
		jobs:        repos.WeatherJob,
		userWeather: repos.UserWeather,
		cityWeather: repos.CityWeather,
		timezone:    timezone,
		geo:         geo,
		weather:     weather,
		eventBus:    eventBus,
		batchSize:   cfg.WeatherBatchSize,
		maxAttempts: cfg.WeatherMaxAttempts,
		now:         time.Now,
		log:         logger.New("workerService"),
	}
}

// ProcessQueue claims and works one batch of queued jobs. Jobs run
// sequentially; a stuck upstream call stalls the batch, not the table, since
// anything left processing past the cutoff gets swept back to queued.
func (s *WorkerService) ProcessQueue(ctx context.Context) (*WorkerReport, error) {
	log := s.log.Function("ProcessQueue")
	defer log.Timer("process job batch")()

	batch, err := s.jobs.FetchBatch(ctx, s.batchSize, s.maxAttempts)
	if err != nil {
		return nil, log.Err("failed to fetch job batch", err)
	}

	if len(batch) == 0 {
		log.Debug("no queued jobs")
		return &WorkerReport{Results: []JobResult{}}, nil
	}

	log.Info("Processing weather jobs", "count", len(batch))

	report := &WorkerReport{Results: make([]JobResult, 0, len(batch))}
	for i := range batch {
		result := s.processJob(ctx, &batch[i])
		report.Results = append(report.Results, result)

		report.Summary.Processed++
		switch result.Outcome {
		case JobOutcomeDone:
			report.Summary.Done++
		case JobOutcomeNoData:
			report.Summary.NoData++
		case JobOutcomeRequeued:
			report.Summary.Requeued++
		case JobOutcomeFailed:
			report.Summary.Failed++
		case JobOutcomeClaimFailed:
			report.Summary.ClaimFailed++
		}
	}

	log.Info("Worker batch complete",
		"processed", report.Summary.Processed,
		"done", report.Summary.Done,
		"noData", report.Summary.NoData,
		"requeued", report.Summary.Requeued,
		"failed", report.Summary.Failed,
		"claimFailed", report.Summary.ClaimFailed,
	)

	s.publishSummary(report)

	return report, nil
}

func (s *WorkerService) processJob(ctx context.Context, job *models.WeatherJob) JobResult {
	result := JobResult{
		JobID:     job.ID.String(),
		UserID:    job.UserID.String(),
		LocalDate: utils.FormatDate(job.LocalDate),
	}

	if err := s.jobs.Claim(ctx, job); err != nil {
		// Nothing was claimed, so the row is untouched and still queued;
		// the next batch will pick it up.
		result.Outcome = JobOutcomeClaimFailed
		result.Attempts = job.Attempts
		result.Error = err.Error()
		return result
	}
	result.Attempts = job.Attempts

	outcome, workErr := s.work(ctx, job)
	if workErr != nil {
		return s.finalizeFailure(ctx, job, result, workErr)
	}

	if err := s.jobs.MarkDone(ctx, job.ID); err != nil {
		return s.finalizeFailure(ctx, job, result, err)
	}

	result.Outcome = outcome
	return result
}

// work runs the weather pipeline for a claimed job. A nil error means the job
// is complete; the returned outcome distinguishes a normal run from a
// terminal no-data day.
func (s *WorkerService) work(ctx context.Context, job *models.WeatherJob) (JobOutcome, error) {
	log := s.log.Function("work")

	location, err := s.timezone.ResolveCoordinate(ctx, job.UserID, job.LocalDate)
	if err != nil {
		return "", err
	}
	if location == nil {
		return "", fmt.Errorf("no location sample near %s", utils.FormatDate(job.LocalDate))
	}

	city, err := s.geo.NearestCity(ctx, location.Latitude, location.Longitude)
	if err != nil {
		return "", err
	}
	if city == nil {
		return "", fmt.Errorf("no reference cities available")
	}

	record, err := s.weather.EnsureCached(ctx, city, job.LocalDate)
	if err != nil {
		return "", err
	}
	if record == nil {
		// Source has nothing for this day, and never will. Retrying
		// would burn attempts on the same answer.
		log.Info("no weather data for job day",
			"userID", job.UserID,
			"localDate", utils.FormatDate(job.LocalDate),
			"cityID", city.ID,
		)
		return JobOutcomeNoData, nil
	}

	anchor := models.FromCityWeather(job.UserID, job.LocalDate, job.Timezone, record)
	if err := s.userWeather.Upsert(ctx, anchor); err != nil {
		return "", err
	}

	s.propagateWindow(ctx, job, city.ID)

	return JobOutcomeDone, nil
}

// propagateWindow copies the cached city window onto the user's rows for the
// backfill and forecast days around the anchor. Per-day failures are logged
// and skipped; the anchor day already landed, so the job stays done either
// way and later runs repair whatever was missed.
func (s *WorkerService) propagateWindow(ctx context.Context, job *models.WeatherJob, cityID int) {
	log := s.log.Function("propagateWindow")

	from := utils.AddDays(job.LocalDate, -WEATHER_BACKFILL_DAYS)
	to := utils.AddDays(job.LocalDate, WEATHER_FORECAST_DAYS)

	window, err := s.cityWeather.GetRange(ctx, cityID, from, to)
	if err != nil {
		log.Er("failed to load city window for propagation", err, "cityID", cityID)
		return
	}

	var failures int
	for i := range window {
		day := &window[i]
		if utils.SameDate(day.Day, job.LocalDate) {
			continue
		}

		record := models.FromCityWeather(job.UserID, day.Day, job.Timezone, day)
		if err := s.userWeather.Upsert(ctx, record); err != nil {
			failures++
			log.Er("failed to propagate weather day", err,
				"userID", job.UserID,
				"date", utils.FormatDate(day.Day),
			)
		}
	}

	if failures > 0 {
		log.Warn("propagation finished with failures",
			"userID", job.UserID,
			"failures", failures,
			"windowSize", len(window),
		)
	}
}

func (s *WorkerService) finalizeFailure(
	ctx context.Context,
	job *models.WeatherJob,
	result JobResult,
	workErr error,
) JobResult {
	log := s.log.Function("finalizeFailure")
	result.Error = workErr.Error()

	if job.Attempts >= s.maxAttempts {
		if err := s.jobs.MarkFailed(ctx, job.ID, workErr.Error()); err != nil {
			log.Er("failed to mark job failed", err, "jobID", job.ID)
		}
		result.Outcome = JobOutcomeFailed
		return result
	}

	if err := s.jobs.Requeue(ctx, job.ID, workErr.Error()); err != nil {
		log.Er("failed to requeue job", err, "jobID", job.ID)
	}
	result.Outcome = JobOutcomeRequeued
	return result
}

// SweepStale resolves jobs stuck in processing past the cutoff: jobs with
// attempts left go back to the queue, exhausted ones are marked failed.
func (s *WorkerService) SweepStale(ctx context.Context) (*SweepSummary, error) {
	log := s.log.Function("SweepStale")

	cutoff := s.now().UTC().Add(-STALE_JOB_CUTOFF)
	requeued, failed, err := s.jobs.SweepStale(ctx, cutoff, s.maxAttempts)
	if err != nil {
		return nil, log.Err("stale job sweep failed", err)
	}

	if requeued > 0 || failed > 0 {
		log.Info("Stale sweep complete", "requeued", requeued, "failed", failed)

		if s.eventBus != nil {
			s.eventBus.PublishAsync(events.RUNS_CHANNEL, events.Event{
				Type: events.SWEEP_COMPLETE,
				Data: map[string]any{"requeued": requeued, "failed": failed},
			})
		}
	}

	return &SweepSummary{Requeued: requeued, Failed: failed}, nil
}

func (s *WorkerService) publishSummary(report *WorkerReport) {
	if s.eventBus == nil {
		return
	}

	s.eventBus.PublishAsync(events.RUNS_CHANNEL, events.Event{
		Type: events.WORKER_COMPLETE,
		Data: map[string]any{
			"processed":   report.Summary.Processed,
			"done":        report.Summary.Done,
			"noData":      report.Summary.NoData,
			"requeued":    report.Summary.Requeued,
			"failed":      report.Summary.Failed,
			"claimFailed": report.Summary.ClaimFailed,
		},
	})
}
