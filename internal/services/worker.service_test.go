package services

import (
	"context"
	"testing"
	"time"
	"vitalsky/config"
	"vitalsky/internal/models"
	"vitalsky/internal/repositories"
	"vitalsky/internal/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type workerFixture struct {
	svc         *WorkerService
	jobs        *fakeJobRepo
	locations   *fakeLocationRepo
	cityWeather *fakeCityWeatherRepo
	userWeather *fakeUserWeatherRepo
	client      *fakeWeatherClient
	city        models.City
	userID      uuid.UUID
	localDate   time.Time
}

func newWorkerFixture(t *testing.T) *workerFixture {
	t.Helper()

	city := models.City{Name: "Berlin", Latitude: 52.52, Longitude: 13.405, Timezone: "Europe/Berlin"}
	city.ID = 7

	f := &workerFixture{
		jobs:        newFakeJobRepo(),
		locations:   newFakeLocationRepo(),
		cityWeather: newFakeCityWeatherRepo(),
		userWeather: newFakeUserWeatherRepo(),
		client:      &fakeWeatherClient{},
		city:        city,
		userID:      uuid.New(),
		localDate:   time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
	}

	cities := &fakeCityRepo{cities: []models.City{city}}
	repos := repositories.Repository{
		UserLocation: f.locations,
		City:         cities,
		CityWeather:  f.cityWeather,
		UserWeather:  f.userWeather,
		WeatherJob:   f.jobs,
	}

	f.svc = NewWorkerService(
		repos,
		NewTimezoneService(f.locations),
		NewGeoService(cities),
		NewWeatherCacheService(f.cityWeather, f.client),
		nil,
		config.Config{WeatherBatchSize: 20, WeatherMaxAttempts: 3},
	)

	return f
}

func (f *workerFixture) enqueue(t *testing.T) *models.WeatherJob {
	t.Helper()
	job := &models.WeatherJob{
		UserID:    f.userID,
		LocalDate: f.localDate,
		Timezone:  "Europe/Berlin",
	}
	require.NoError(t, f.jobs.UpsertQueued(context.Background(), job))
	return job
}

func (f *workerFixture) addLocation() {
	f.locations.add(f.userID, f.localDate, 52.5, 13.4, strPtr("Europe/Berlin"))
}

func (f *workerFixture) cityDay(offset int) *models.CityWeather {
	code := 1
	return &models.CityWeather{
		CityID:      f.city.ID,
		Day:         utils.AddDays(f.localDate, offset),
		WeatherCode: &code,
	}
}

func TestWorkerService_ProcessQueue(t *testing.T) {
	ctx := context.Background()

	t.Run("Happy path writes anchor and window days", func(t *testing.T) {
		f := newWorkerFixture(t)
		f.addLocation()
		for _, offset := range []int{-2, -1, 0, 1} {
			f.cityWeather.add(f.cityDay(offset))
		}
		job := f.enqueue(t)

		report, err := f.svc.ProcessQueue(ctx)
		require.NoError(t, err)
		require.Len(t, report.Results, 1)
		assert.Equal(t, JobOutcomeDone, report.Results[0].Outcome)
		assert.Equal(t, 1, report.Summary.Done)

		stored := f.jobs.byID(job.ID)
		assert.Equal(t, models.JobStatusDone, stored.Status)
		assert.Equal(t, 1, stored.Attempts)

		// anchor plus three propagated days
		assert.Equal(t, 4, f.userWeather.upserts)
		anchor := f.userWeather.records[userDayKey(f.userID, f.localDate)]
		require.NotNil(t, anchor)
		assert.Equal(t, f.city.ID, anchor.CityID)
		assert.Equal(t, "Europe/Berlin", anchor.Timezone)
	})

	t.Run("Cached day skips the external fetch", func(t *testing.T) {
		f := newWorkerFixture(t)
		f.addLocation()
		f.cityWeather.add(f.cityDay(0))
		f.enqueue(t)

		_, err := f.svc.ProcessQueue(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, f.client.calls)
	})

	t.Run("Cache miss fetches the window once", func(t *testing.T) {
		f := newWorkerFixture(t)
		f.addLocation()
		f.client.window = []*models.CityWeather{f.cityDay(-1), f.cityDay(0), f.cityDay(1)}
		f.enqueue(t)

		report, err := f.svc.ProcessQueue(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, f.client.calls)
		assert.Equal(t, JobOutcomeDone, report.Results[0].Outcome)
		assert.Equal(t, 3, f.userWeather.upserts)
	})

	t.Run("Missing location requeues with attempt recorded", func(t *testing.T) {
		f := newWorkerFixture(t)
		job := f.enqueue(t)

		report, err := f.svc.ProcessQueue(ctx)
		require.NoError(t, err)
		assert.Equal(t, JobOutcomeRequeued, report.Results[0].Outcome)

		stored := f.jobs.byID(job.ID)
		assert.Equal(t, models.JobStatusQueued, stored.Status)
		assert.Equal(t, 1, stored.Attempts)
		require.NotNil(t, stored.LastError)
		assert.Contains(t, *stored.LastError, "no location sample")
	})

	t.Run("Final attempt marks the job failed", func(t *testing.T) {
		f := newWorkerFixture(t)
		job := f.enqueue(t)
		f.jobs.jobs[f.jobs.key(f.userID, f.localDate)].Attempts = 2

		report, err := f.svc.ProcessQueue(ctx)
		require.NoError(t, err)
		assert.Equal(t, JobOutcomeFailed, report.Results[0].Outcome)

		stored := f.jobs.byID(job.ID)
		assert.Equal(t, models.JobStatusFailed, stored.Status)
		assert.Equal(t, 3, stored.Attempts)
	})

	t.Run("Exhausted jobs are not fetched again", func(t *testing.T) {
		f := newWorkerFixture(t)
		f.enqueue(t)
		f.jobs.jobs[f.jobs.key(f.userID, f.localDate)].Attempts = 3

		report, err := f.svc.ProcessQueue(ctx)
		require.NoError(t, err)
		assert.Empty(t, report.Results)
	})

	t.Run("No data for the day is terminal done, not a failure", func(t *testing.T) {
		f := newWorkerFixture(t)
		f.addLocation()
		// window exists but does not include the anchor day
		f.client.window = []*models.CityWeather{f.cityDay(-20)}
		job := f.enqueue(t)

		report, err := f.svc.ProcessQueue(ctx)
		require.NoError(t, err)
		assert.Equal(t, JobOutcomeNoData, report.Results[0].Outcome)
		assert.Equal(t, 1, report.Summary.NoData)
		assert.Equal(t, 0, report.Summary.Failed)

		stored := f.jobs.byID(job.ID)
		assert.Equal(t, models.JobStatusDone, stored.Status)
		assert.Equal(t, 0, f.userWeather.upserts)
	})

	t.Run("Propagation failure on one day does not fail the job", func(t *testing.T) {
		f := newWorkerFixture(t)
		f.addLocation()
		for _, offset := range []int{-1, 0, 1} {
			f.cityWeather.add(f.cityDay(offset))
		}
		f.userWeather.failDates[utils.FormatDate(utils.AddDays(f.localDate, 1))] = true
		job := f.enqueue(t)

		report, err := f.svc.ProcessQueue(ctx)
		require.NoError(t, err)
		assert.Equal(t, JobOutcomeDone, report.Results[0].Outcome)
		assert.Equal(t, models.JobStatusDone, f.jobs.byID(job.ID).Status)
		assert.Equal(t, 2, f.userWeather.upserts)
	})

	t.Run("Propagation window excludes days outside backfill and forecast range", func(t *testing.T) {
		f := newWorkerFixture(t)
		f.addLocation()
		for _, offset := range []int{-14, -13, 0, 6, 7} {
			f.cityWeather.add(f.cityDay(offset))
		}
		f.enqueue(t)

		_, err := f.svc.ProcessQueue(ctx)
		require.NoError(t, err)

		// anchor, D-13 and D+6 land; D-14 and D+7 stay out
		assert.Equal(t, 3, f.userWeather.upserts)
		assert.Nil(t, f.userWeather.records[userDayKey(f.userID, utils.AddDays(f.localDate, -14))])
		assert.Nil(t, f.userWeather.records[userDayKey(f.userID, utils.AddDays(f.localDate, 7))])
	})

	t.Run("Claim failure is reported distinctly, not as a requeue", func(t *testing.T) {
		f := newWorkerFixture(t)
		f.addLocation()
		job := f.enqueue(t)
		f.jobs.claimErr = assert.AnError

		report, err := f.svc.ProcessQueue(ctx)
		require.NoError(t, err)
		require.Len(t, report.Results, 1)
		assert.Equal(t, JobOutcomeClaimFailed, report.Results[0].Outcome)
		assert.Equal(t, 1, report.Summary.ClaimFailed)
		assert.Equal(t, 0, report.Summary.Requeued)

		// the row was never claimed, so it is still queued and untouched
		stored := f.jobs.byID(job.ID)
		assert.Equal(t, models.JobStatusQueued, stored.Status)
		assert.Equal(t, 0, stored.Attempts)
	})

	t.Run("Event publish failure does not fail the run", func(t *testing.T) {
		f := newWorkerFixture(t)
		f.addLocation()
		f.cityWeather.add(f.cityDay(0))
		f.enqueue(t)

		bus := &brokenEventBus{}
		f.svc.eventBus = bus

		report, err := f.svc.ProcessQueue(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, report.Summary.Done)
		assert.Equal(t, 1, bus.publishCount())
	})

	t.Run("Reprocessing is idempotent", func(t *testing.T) {
		f := newWorkerFixture(t)
		f.addLocation()
		for _, offset := range []int{-1, 0, 1} {
			f.cityWeather.add(f.cityDay(offset))
		}
		f.enqueue(t)

		_, err := f.svc.ProcessQueue(ctx)
		require.NoError(t, err)

		// dispatcher re-enqueues the same (user, date)
		f.enqueue(t)
		_, err = f.svc.ProcessQueue(ctx)
		require.NoError(t, err)

		assert.Len(t, f.userWeather.records, 3)
	})
}

func TestWorkerService_SweepStale(t *testing.T) {
	ctx := context.Background()

	t.Run("Requeues jobs locked past the cutoff", func(t *testing.T) {
		f := newWorkerFixture(t)
		job := f.enqueue(t)

		stale := time.Now().UTC().Add(-time.Hour)
		stored := f.jobs.byID(job.ID)
		stored.Status = models.JobStatusProcessing
		stored.LockedAt = &stale

		summary, err := f.svc.SweepStale(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), summary.Requeued)
		assert.Equal(t, int64(0), summary.Failed)
		assert.Equal(t, models.JobStatusQueued, stored.Status)
	})

	t.Run("Fails stale jobs with no attempts left", func(t *testing.T) {
		f := newWorkerFixture(t)
		job := f.enqueue(t)

		// worker died mid-run on the final attempt
		stale := time.Now().UTC().Add(-time.Hour)
		stored := f.jobs.byID(job.ID)
		stored.Status = models.JobStatusProcessing
		stored.Attempts = 3
		stored.LockedAt = &stale

		summary, err := f.svc.SweepStale(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(0), summary.Requeued)
		assert.Equal(t, int64(1), summary.Failed)
		assert.Equal(t, models.JobStatusFailed, stored.Status)
		assert.True(t, stored.Terminal())

		// nothing undrainable left behind
		batch, err := f.jobs.FetchBatch(ctx, 20, 3)
		require.NoError(t, err)
		assert.Empty(t, batch)
	})

	t.Run("Leaves fresh processing jobs alone", func(t *testing.T) {
		f := newWorkerFixture(t)
		job := f.enqueue(t)

		fresh := time.Now().UTC().Add(-time.Minute)
		stored := f.jobs.byID(job.ID)
		stored.Status = models.JobStatusProcessing
		stored.LockedAt = &fresh

		summary, err := f.svc.SweepStale(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(0), summary.Requeued)
		assert.Equal(t, int64(0), summary.Failed)
		assert.Equal(t, models.JobStatusProcessing, stored.Status)
	})
}
