package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
	"vitalsky/internal/events"
	"vitalsky/internal/models"
	"vitalsky/internal/utils"

	"github.com/google/uuid"
)

// In-memory repository fakes shared by the service tests.

type fakeUserRepo struct {
	users []models.User
	err   error
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	for i := range f.users {
		if f.users[i].ID == id {
			return &f.users[i], nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) ListWeatherTracked(ctx context.Context) ([]models.User, error) {
	return f.users, f.err
}

func locationKey(userID uuid.UUID, date time.Time) string {
	return userID.String() + "|" + utils.FormatDate(date)
}

type fakeLocationRepo struct {
	samples map[string]*models.UserLocation
	err     error
}

func newFakeLocationRepo() *fakeLocationRepo {
	return &fakeLocationRepo{samples: make(map[string]*models.UserLocation)}
}

func (f *fakeLocationRepo) add(userID uuid.UUID, date time.Time, lat, lon float64, tz *string) {
	f.samples[locationKey(userID, date)] = &models.UserLocation{
		UserID:    userID,
		Date:      utils.DateOnly(date),
		Latitude:  lat,
		Longitude: lon,
		Timezone:  tz,
	}
}

func (f *fakeLocationRepo) LatestForDate(
	ctx context.Context,
	userID uuid.UUID,
	date time.Time,
) (*models.UserLocation, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.samples[locationKey(userID, date)], nil
}

func (f *fakeLocationRepo) LatestWithTimezone(
	ctx context.Context,
	userID uuid.UUID,
	date time.Time,
) (*models.UserLocation, error) {
	if f.err != nil {
		return nil, f.err
	}
	sample := f.samples[locationKey(userID, date)]
	if sample == nil || sample.Timezone == nil || *sample.Timezone == "" {
		return nil, nil
	}
	return sample, nil
}

type fakeCityRepo struct {
	cities      []models.City
	sampleLimit int
}

func (f *fakeCityRepo) GetByID(ctx context.Context, id int) (*models.City, error) {
	for i := range f.cities {
		if f.cities[i].ID == id {
			return &f.cities[i], nil
		}
	}
	return nil, nil
}

func (f *fakeCityRepo) FindWithinBox(
	ctx context.Context,
	minLat, maxLat, minLon, maxLon float64,
) ([]models.City, error) {
	var matches []models.City
	for _, city := range f.cities {
		if city.Latitude >= minLat && city.Latitude <= maxLat &&
			city.Longitude >= minLon && city.Longitude <= maxLon {
			matches = append(matches, city)
		}
	}
	return matches, nil
}

func (f *fakeCityRepo) Sample(ctx context.Context, limit int) ([]models.City, error) {
	f.sampleLimit = limit
	if len(f.cities) <= limit {
		return f.cities, nil
	}
	return f.cities[:limit], nil
}

func (f *fakeCityRepo) UpsertBatch(ctx context.Context, cities []*models.City) error {
	for _, city := range cities {
		f.cities = append(f.cities, *city)
	}
	return nil
}

func cityDayKey(cityID int, day time.Time) string {
	return fmt.Sprintf("%d|%s", cityID, utils.FormatDate(day))
}

type fakeCityWeatherRepo struct {
	records map[string]*models.CityWeather
	upserts int
}

func newFakeCityWeatherRepo() *fakeCityWeatherRepo {
	return &fakeCityWeatherRepo{records: make(map[string]*models.CityWeather)}
}

func (f *fakeCityWeatherRepo) add(record *models.CityWeather) {
	f.records[cityDayKey(record.CityID, record.Day)] = record
}

func (f *fakeCityWeatherRepo) GetByCityAndDay(
	ctx context.Context,
	cityID int,
	day time.Time,
) (*models.CityWeather, error) {
	return f.records[cityDayKey(cityID, day)], nil
}

func (f *fakeCityWeatherRepo) GetRange(
	ctx context.Context,
	cityID int,
	from, to time.Time,
) ([]models.CityWeather, error) {
	var matches []models.CityWeather
	for _, record := range f.records {
		if record.CityID != cityID {
			continue
		}
		if record.Day.Before(from) || record.Day.After(to) {
			continue
		}
		matches = append(matches, *record)
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Day.Before(matches[j].Day) })
	return matches, nil
}

func (f *fakeCityWeatherRepo) UpsertBatch(ctx context.Context, records []*models.CityWeather) error {
	f.upserts++
	for _, record := range records {
		f.records[cityDayKey(record.CityID, record.Day)] = record
	}
	return nil
}

func userDayKey(userID uuid.UUID, date time.Time) string {
	return userID.String() + "|" + utils.FormatDate(date)
}

type fakeUserWeatherRepo struct {
	mu        sync.Mutex
	records   map[string]*models.UserWeather
	failDates map[string]bool
	upserts   int
}

func newFakeUserWeatherRepo() *fakeUserWeatherRepo {
	return &fakeUserWeatherRepo{
		records:   make(map[string]*models.UserWeather),
		failDates: make(map[string]bool),
	}
}

func (f *fakeUserWeatherRepo) Upsert(ctx context.Context, record *models.UserWeather) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failDates[utils.FormatDate(record.Date)] {
		return fmt.Errorf("upsert rejected for %s", utils.FormatDate(record.Date))
	}
	f.upserts++
	f.records[userDayKey(record.UserID, record.Date)] = record
	return nil
}

func (f *fakeUserWeatherRepo) GetRange(
	ctx context.Context,
	userID uuid.UUID,
	from, to time.Time,
) ([]models.UserWeather, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var matches []models.UserWeather
	for _, record := range f.records {
		if record.UserID != userID || record.Date.Before(from) || record.Date.After(to) {
			continue
		}
		matches = append(matches, *record)
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Date.Before(matches[j].Date) })
	return matches, nil
}

type fakeJobRepo struct {
	mu       sync.Mutex
	jobs     map[string]*models.WeatherJob
	upserts  int
	swept    int64
	claimErr error
	now      func() time.Time
}

func newFakeJobRepo() *fakeJobRepo {
	return &fakeJobRepo{
		jobs: make(map[string]*models.WeatherJob),
		now:  time.Now,
	}
}

func (f *fakeJobRepo) key(userID uuid.UUID, localDate time.Time) string {
	return userID.String() + "|" + utils.FormatDate(localDate)
}

func (f *fakeJobRepo) byID(id uuid.UUID) *models.WeatherJob {
	for _, job := range f.jobs {
		if job.ID == id {
			return job
		}
	}
	return nil
}

func (f *fakeJobRepo) UpsertQueued(ctx context.Context, job *models.WeatherJob) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.upserts++
	key := f.key(job.UserID, job.LocalDate)
	if existing, ok := f.jobs[key]; ok {
		existing.Status = models.JobStatusQueued
		existing.Attempts = 0
		existing.LockedAt = nil
		existing.LastError = nil
		existing.Timezone = job.Timezone
		*job = *existing
		return nil
	}

	job.ID = uuid.New()
	job.Status = models.JobStatusQueued
	job.CreatedAt = f.now()
	stored := *job
	f.jobs[key] = &stored
	return nil
}

func (f *fakeJobRepo) FetchBatch(
	ctx context.Context,
	limit, maxAttempts int,
) ([]models.WeatherJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var batch []models.WeatherJob
	for _, job := range f.jobs {
		if job.Status == models.JobStatusQueued && job.Attempts < maxAttempts {
			batch = append(batch, *job)
		}
	}
	sort.Slice(batch, func(i, j int) bool { return batch[i].CreatedAt.Before(batch[j].CreatedAt) })
	if len(batch) > limit {
		batch = batch[:limit]
	}
	return batch, nil
}

func (f *fakeJobRepo) Claim(ctx context.Context, job *models.WeatherJob) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.claimErr != nil {
		return f.claimErr
	}

	stored := f.byID(job.ID)
	if stored == nil {
		return fmt.Errorf("job not found")
	}
	now := f.now()
	stored.Status = models.JobStatusProcessing
	stored.Attempts++
	stored.LockedAt = &now
	*job = *stored
	return nil
}

func (f *fakeJobRepo) MarkDone(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	stored := f.byID(id)
	if stored == nil {
		return fmt.Errorf("job not found")
	}
	stored.Status = models.JobStatusDone
	stored.LockedAt = nil
	return nil
}

func (f *fakeJobRepo) Requeue(ctx context.Context, id uuid.UUID, errMsg string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	stored := f.byID(id)
	if stored == nil {
		return fmt.Errorf("job not found")
	}
	stored.Status = models.JobStatusQueued
	stored.LockedAt = nil
	stored.LastError = &errMsg
	return nil
}

func (f *fakeJobRepo) MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	stored := f.byID(id)
	if stored == nil {
		return fmt.Errorf("job not found")
	}
	stored.Status = models.JobStatusFailed
	stored.LockedAt = nil
	stored.LastError = &errMsg
	return nil
}

func (f *fakeJobRepo) SweepStale(
	ctx context.Context,
	olderThan time.Time,
	maxAttempts int,
) (int64, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var requeued, failed int64
	for _, job := range f.jobs {
		if job.Status != models.JobStatusProcessing ||
			job.LockedAt == nil || !job.LockedAt.Before(olderThan) {
			continue
		}
		job.LockedAt = nil
		if job.Attempts >= maxAttempts {
			job.Status = models.JobStatusFailed
			failed++
		} else {
			job.Status = models.JobStatusQueued
			requeued++
		}
	}
	f.swept += requeued + failed
	return requeued, failed, nil
}

func (f *fakeJobRepo) GetByUserAndDate(
	ctx context.Context,
	userID uuid.UUID,
	localDate time.Time,
) (*models.WeatherJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if job, ok := f.jobs[f.key(userID, localDate)]; ok {
		copied := *job
		return &copied, nil
	}
	return nil, nil
}

type fakeWeatherClient struct {
	window []*models.CityWeather
	err    error
	calls  int
}

func (f *fakeWeatherClient) FetchDailyWindow(
	ctx context.Context,
	city *models.City,
) ([]*models.CityWeather, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.window, nil
}

// brokenEventBus stands in for a bus whose broker writes always fail. The
// real bus logs and drops publish errors inside PublishAsync, so callers only
// ever observe the attempt; the counter lets tests assert it happened.
type brokenEventBus struct {
	mu        sync.Mutex
	publishes int
}

func (b *brokenEventBus) PublishAsync(channel events.Channel, event events.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.publishes++
}

func (b *brokenEventBus) publishCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.publishes
}

func strPtr(s string) *string {
	return &s
}
