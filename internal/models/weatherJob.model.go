package models

import (
	"time"

	"github.com/google/uuid"
)

type JobStatus string

const (
	JobStatusQueued     JobStatus = "queued"
	JobStatusProcessing JobStatus = "processing"
	JobStatusDone       JobStatus = "done"
	JobStatusFailed     JobStatus = "failed"
)

const JobTypeWeatherSync = "weather_sync"

// WeatherJob is one unit of scheduled work: sync weather for one user on one
// local calendar date. The (user_id, local_date) pair is the natural key;
// duplicate-dispatch safety comes from the upsert on that key, not from locks.
// Rows are never deleted; terminal jobs stay as an audit trail.
type WeatherJob struct {
	BaseUUIDModel
	UserID    uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_weather_job_user_date,composite:0" json:"userId"`
	User      User       `gorm:"foreignKey:UserID"                                                    json:"user"`
	LocalDate time.Time  `gorm:"type:date;not null;uniqueIndex:idx_weather_job_user_date,composite:1" json:"localDate"`
	Status    JobStatus  `gorm:"type:varchar(20);not null;default:'queued';index" json:"status"`
	JobType   string     `gorm:"type:varchar(40);not null;default:'weather_sync'" json:"jobType"`
	Timezone  string     `gorm:"type:text"                                        json:"timezone"`
	Attempts  int        `gorm:"type:int;not null;default:0"                      json:"attempts"`
	LockedAt  *time.Time `gorm:"type:timestamp" json:"lockedAt"`
	LastError *string    `gorm:"type:text"      json:"lastError"`
	CreatedBy string     `gorm:"type:text"      json:"createdBy"`
}

// Terminal reports whether the job has reached a resting state.
func (j *WeatherJob) Terminal() bool {
	return j.Status == JobStatusDone || j.Status == JobStatusFailed
}
