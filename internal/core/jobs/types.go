// Package jobs is a small Postgres-backed queue for work that must survive a
// failed first attempt, currently settlement retries.
package jobs

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type JobStatus string

const (
	StatusPending    JobStatus = "pending"
	StatusProcessing JobStatus = "processing"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
	StatusRetrying   JobStatus = "retrying"
)

// Job is one queued unit of work.
type Job struct {
	ID      uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID  uuid.UUID      `gorm:"type:uuid;not null;index"`
	Queue   string         `gorm:"type:varchar(100);not null;index"`
	Type    string         `gorm:"type:varchar(100);not null"`
	Payload datatypes.JSON `gorm:"type:jsonb"`

	Status JobStatus `gorm:"type:varchar(20);not null;default:'pending';index"`

	Attempts   int `gorm:"not null;default:0"`
	MaxRetries int `gorm:"not null;default:3"`

	ScheduledAt *time.Time `gorm:"index"`
	StartedAt   *time.Time
	CompletedAt *time.Time
	FailedAt    *time.Time

	Error string `gorm:"type:text"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Job) TableName() string {
	return "jobs"
}

// JobHandler processes one job type.
type JobHandler interface {
	Handle(ctx context.Context, job *Job) error
	GetType() string
}

type EnqueueOptions struct {
	Queue      string
	MaxRetries int
	ScheduleAt *time.Time
}

type WorkerConfig struct {
	Queue        string
	Concurrency  int
	PollInterval time.Duration
	Timeout      time.Duration
}
