package repositories

import (
	"context"
	"time"
	"vitalsky/internal/database"
	"vitalsky/internal/logger"
	. "vitalsky/internal/models"
	"vitalsky/internal/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type WeatherJobRepository interface {
	UpsertQueued(ctx context.Context, job *WeatherJob) error
	FetchBatch(ctx context.Context, limit, maxAttempts int) ([]WeatherJob, error)
	Claim(ctx context.Context, job *WeatherJob) error
	MarkDone(ctx context.Context, id uuid.UUID) error
	Requeue(ctx context.Context, id uuid.UUID, errMsg string) error
	MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error
	SweepStale(ctx context.Context, olderThan time.Time, maxAttempts int) (requeued, failed int64, err error)
	GetByUserAndDate(ctx context.Context, userID uuid.UUID, localDate time.Time) (*WeatherJob, error)
}

type weatherJobRepository struct {
	db  database.DB
	log logger.Logger
}

func NewWeatherJobRepository(db database.DB) WeatherJobRepository {
	return &weatherJobRepository{
		db:  db,
		log: logger.New("weatherJobRepository"),
	}
}

// UpsertQueued creates or repairs the job for (user, local date). An existing
// row is forced back to a fresh queued state regardless of what the previous
// run left behind; the unique index guarantees there is never a second row.
func (r *weatherJobRepository) UpsertQueued(ctx context.Context, job *WeatherJob) error {
	log := r.log.Function("UpsertQueued")

	job.LocalDate = utils.DateOnly(job.LocalDate)
	job.Status = JobStatusQueued
	job.Attempts = 0
	job.LockedAt = nil
	job.LastError = nil
	if job.JobType == "" {
		job.JobType = JobTypeWeatherSync
	}

	err := r.db.SQLWithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "user_id"},
				{Name: "local_date"},
			},
			DoUpdates: clause.Assignments(map[string]any{
				"status":     JobStatusQueued,
				"attempts":   0,
				"locked_at":  nil,
				"last_error": nil,
				"timezone":   job.Timezone,
				"created_by": job.CreatedBy,
				"updated_at": time.Now(),
			}),
		}).
		Create(job).Error
	if err != nil {
		return log.Err(
			"failed to upsert weather job",
			err,
			"userID", job.UserID,
			"localDate", utils.FormatDate(job.LocalDate),
		)
	}

	return nil
}

// FetchBatch returns the oldest queued jobs still under the attempt cap.
func (r *weatherJobRepository) FetchBatch(
	ctx context.Context,
	limit, maxAttempts int,
) ([]WeatherJob, error) {
	log := r.log.Function("FetchBatch")

	var jobs []WeatherJob
	err := r.db.SQLWithContext(ctx).
		Where("status = ? AND attempts < ?", JobStatusQueued, maxAttempts).
		Order("created_at ASC").
		Limit(limit).
		Find(&jobs).Error
	if err != nil {
		return nil, log.Err("failed to fetch job batch", err, "limit", limit)
	}

	return jobs, nil
}

// Claim marks the job processing and bumps the attempt counter before any
// external work starts, so a crash mid-job shows up as a stuck processing row
// instead of silently lost work. The passed struct is updated to match.
func (r *weatherJobRepository) Claim(ctx context.Context, job *WeatherJob) error {
	log := r.log.Function("Claim")

	now := time.Now()
	err := r.db.SQLWithContext(ctx).
		Model(&WeatherJob{}).
		Where("id = ?", job.ID).
		Updates(map[string]any{
			"status":    JobStatusProcessing,
			"attempts":  gorm.Expr("attempts + 1"),
			"locked_at": now,
		}).Error
	if err != nil {
		return log.Err("failed to claim job", err, "jobID", job.ID)
	}

	job.Status = JobStatusProcessing
	job.Attempts++
	job.LockedAt = &now

	return nil
}

func (r *weatherJobRepository) MarkDone(ctx context.Context, id uuid.UUID) error {
	log := r.log.Function("MarkDone")

	err := r.db.SQLWithContext(ctx).
		Model(&WeatherJob{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":    JobStatusDone,
			"locked_at": nil,
		}).Error
	if err != nil {
		return log.Err("failed to mark job done", err, "jobID", id)
	}

	return nil
}

// Requeue returns a failed-but-retryable job to the queue with its error
// recorded for diagnostics.
func (r *weatherJobRepository) Requeue(ctx context.Context, id uuid.UUID, errMsg string) error {
	log := r.log.Function("Requeue")

	err := r.db.SQLWithContext(ctx).
		Model(&WeatherJob{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     JobStatusQueued,
			"locked_at":  nil,
			"last_error": errMsg,
		}).Error
	if err != nil {
		return log.Err("failed to requeue job", err, "jobID", id)
	}

	return nil
}

func (r *weatherJobRepository) MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error {
	log := r.log.Function("MarkFailed")

	err := r.db.SQLWithContext(ctx).
		Model(&WeatherJob{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     JobStatusFailed,
			"locked_at":  nil,
			"last_error": errMsg,
		}).Error
	if err != nil {
		return log.Err("failed to mark job failed", err, "jobID", id)
	}

	return nil
}

// SweepStale resolves processing jobs whose lock is older than the cutoff.
// Covers worker invocations that died between claim and finalize: jobs with
// attempts left go back to the queue, jobs that burned their last attempt are
// marked failed so they do not linger as queued rows the batch query skips.
func (r *weatherJobRepository) SweepStale(
	ctx context.Context,
	olderThan time.Time,
	maxAttempts int,
) (requeued, failed int64, err error) {
	log := r.log.Function("SweepStale")

	staleScope := func() *gorm.DB {
		return r.db.SQLWithContext(ctx).
			Model(&WeatherJob{}).
			Where("status = ? AND locked_at IS NOT NULL AND locked_at < ?", JobStatusProcessing, olderThan)
	}

	failedResult := staleScope().
		Where("attempts >= ?", maxAttempts).
		Updates(map[string]any{
			"status":     JobStatusFailed,
			"locked_at":  nil,
			"last_error": "attempts exhausted; failed by stale job sweep",
		})
	if failedResult.Error != nil {
		return 0, 0, log.Err("failed to fail exhausted stale jobs", failedResult.Error)
	}

	requeuedResult := staleScope().
		Where("attempts < ?", maxAttempts).
		Updates(map[string]any{
			"status":     JobStatusQueued,
			"locked_at":  nil,
			"last_error": "requeued by stale job sweep",
		})
	if requeuedResult.Error != nil {
		return 0, failedResult.RowsAffected, log.Err("failed to requeue stale jobs", requeuedResult.Error)
	}

	if failedResult.RowsAffected > 0 || requeuedResult.RowsAffected > 0 {
		log.Info("Swept stale jobs",
			"requeued", requeuedResult.RowsAffected,
			"failed", failedResult.RowsAffected,
		)
	}

	return requeuedResult.RowsAffected, failedResult.RowsAffected, nil
}

func (r *weatherJobRepository) GetByUserAndDate(
	ctx context.Context,
	userID uuid.UUID,
	localDate time.Time,
) (*WeatherJob, error) {
	log := r.log.Function("GetByUserAndDate")

	var job WeatherJob
	err := r.db.SQLWithContext(ctx).
		Where("user_id = ? AND local_date = ?", userID, utils.DateOnly(localDate)).
		First(&job).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, log.Err("failed to get job", err, "userID", userID)
	}

	return &job, nil
}
