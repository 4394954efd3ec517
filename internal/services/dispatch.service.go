package services

import (
	"context"
	"sync"
	"time"
	"vitalsky/config"
	"vitalsky/internal/events"
	"vitalsky/internal/logger"
	"vitalsky/internal/models"
	"vitalsky/internal/repositories"
	"vitalsky/internal/utils"

	"github.com/google/uuid"
)

type DispatchOutcome string

const (
	OutcomeEnqueued      DispatchOutcome = "enqueued"
	OutcomeNoTimezone    DispatchOutcome = "no_timezone"
	OutcomeResolverError DispatchOutcome = "resolver_error"
	OutcomeEnqueueError  DispatchOutcome = "enqueue_error"
)

type UserDispatchResult struct {
	UserID    uuid.UUID       `json:"userId"`
	Outcome   DispatchOutcome `json:"outcome"`
	LocalDate string          `json:"localDate,omitempty"`
	Timezone  string          `json:"timezone,omitempty"`
	Error     string          `json:"error,omitempty"`
}

type DispatchSummary struct {
	Total          int `json:"total"`
	Enqueued       int `json:"enqueued"`
	NoTimezone     int `json:"noTimezone"`
	ResolverErrors int `json:"resolverErrors"`
	EnqueueErrors  int `json:"enqueueErrors"`
}

type DispatchReport struct {
	Summary DispatchSummary      `json:"summary"`
	Results []UserDispatchResult `json:"results"`
}

// DispatchService enqueues one weather-sync job per tracked user per local
// calendar day. Safe to invoke repeatedly: the job upsert repairs rather than
// duplicates.
type DispatchService struct {
	users       repositories.UserRepository
	jobs        repositories.WeatherJobRepository
	timezone    *TimezoneService
	eventBus    EventPublisher
	concurrency int
	now         func() time.Time
	log         logger.Logger
}

func NewDispatchService(
	users repositories.UserRepository,
	jobs repositories.WeatherJobRepository,
	timezone *TimezoneService,
	eventBus EventPublisher,
	cfg config.Config,
) *DispatchService {
	return &DispatchService{
		users:       users,
		jobs:        jobs,
		timezone:    timezone,
		eventBus:    eventBus,
		concurrency: cfg.DispatchConcurrency,
		now:         time.Now,
		log:         logger.New("dispatchService"),
	}
}

// DispatchAll resolves every tracked user's local date and upserts their job
// for it. Users run with bounded parallelism; results are collected
// positionally so the report order matches the user list regardless of
// completion order.
func (s *DispatchService) DispatchAll(ctx context.Context) (*DispatchReport, error) {
	log := s.log.Function("DispatchAll")
	defer log.Timer("dispatch all users")()

	users, err := s.users.ListWeatherTracked(ctx)
	if err != nil {
		return nil, log.Err("failed to list tracked users", err)
	}

	log.Info("Dispatching weather jobs", "userCount", len(users))

	results := make([]UserDispatchResult, len(users))
	semaphore := make(chan struct{}, s.concurrency)
	var wg sync.WaitGroup

	for i, user := range users {
		wg.Add(1)
		go func(i int, user models.User) {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			results[i] = s.dispatchUser(ctx, user)
		}(i, user)
	}

	wg.Wait()

	report := &DispatchReport{Results: results}
	report.Summary.Total = len(results)
	for _, result := range results {
		switch result.Outcome {
		case OutcomeEnqueued:
			report.Summary.Enqueued++
		case OutcomeNoTimezone:
			report.Summary.NoTimezone++
		case OutcomeResolverError:
			report.Summary.ResolverErrors++
		case OutcomeEnqueueError:
			report.Summary.EnqueueErrors++
		}
	}

	log.Info("Dispatch complete",
		"total", report.Summary.Total,
		"enqueued", report.Summary.Enqueued,
		"noTimezone", report.Summary.NoTimezone,
		"resolverErrors", report.Summary.ResolverErrors,
		"enqueueErrors", report.Summary.EnqueueErrors,
	)

	s.publishSummary(report)

	return report, nil
}

func (s *DispatchService) dispatchUser(ctx context.Context, user models.User) UserDispatchResult {
	log := s.log.Function("dispatchUser")
	result := UserDispatchResult{UserID: user.ID}

	now := s.now().UTC()

	timezone, err := s.timezone.Resolve(ctx, user.ID, now)
	if err != nil {
		log.Er("timezone resolution failed", err, "userID", user.ID)
		result.Outcome = OutcomeResolverError
		result.Error = err.Error()
		return result
	}

	if timezone == "" {
		// Expected for users without recent location history; they get
		// picked up on a later tick once a sample lands.
		result.Outcome = OutcomeNoTimezone
		return result
	}
	result.Timezone = timezone

	localDate, err := utils.LocalDate(now, timezone)
	if err != nil {
		log.Er("invalid timezone in location history", err, "userID", user.ID, "timezone", timezone)
		result.Outcome = OutcomeResolverError
		result.Error = err.Error()
		return result
	}
	result.LocalDate = utils.FormatDate(localDate)

	job := &models.WeatherJob{
		UserID:    user.ID,
		LocalDate: localDate,
		Timezone:  timezone,
		CreatedBy: "dispatcher",
	}

	if err := s.jobs.UpsertQueued(ctx, job); err != nil {
		result.Outcome = OutcomeEnqueueError
		result.Error = err.Error()
		return result
	}

	result.Outcome = OutcomeEnqueued
	return result
}

func (s *DispatchService) publishSummary(report *DispatchReport) {
	if s.eventBus == nil {
		return
	}

	s.eventBus.PublishAsync(events.RUNS_CHANNEL, events.Event{
		Type: events.DISPATCH_COMPLETE,
		Data: map[string]any{
			"total":          report.Summary.Total,
			"enqueued":       report.Summary.Enqueued,
			"noTimezone":     report.Summary.NoTimezone,
			"resolverErrors": report.Summary.ResolverErrors,
			"enqueueErrors":  report.Summary.EnqueueErrors,
		},
	})
}
