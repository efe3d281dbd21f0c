package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Queue manages job persistence.
type Queue struct {
	db *gorm.DB
}

func NewQueue(db *gorm.DB) *Queue {
	return &Queue{db: db}
}

// Enqueue adds a new job.
func (q *Queue) Enqueue(ctx context.Context, userID uuid.UUID, jobType string, payload interface{}, opts EnqueueOptions) (*Job, error) {
	if opts.Queue == "" {
		opts.Queue = "default"
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = 3
	}

	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize payload: %w", err)
	}

	job := &Job{
		UserID:      userID,
		Queue:       opts.Queue,
		Type:        jobType,
		Payload:     payloadJSON,
		Status:      StatusPending,
		MaxRetries:  opts.MaxRetries,
		ScheduledAt: opts.ScheduleAt,
	}
	if err := q.db.WithContext(ctx).Create(job).Error; err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}
	return job, nil
}

// Dequeue atomically claims the next runnable job, oldest first. Returns nil
// when the queue is empty.
func (q *Queue) Dequeue(ctx context.Context, queueName string) (*Job, error) {
	var job Job

	err := q.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		query := tx.Where("queue = ? AND status IN ?", queueName, []JobStatus{StatusPending, StatusRetrying}).
			Where("scheduled_at IS NULL OR scheduled_at <= ?", time.Now()).
			Order("created_at ASC").Limit(1)

		if err := query.First(&job).Error; err != nil {
			return err
		}

		now := time.Now()
		job.Status = StatusProcessing
		job.StartedAt = &now
		job.Attempts++
		return tx.Save(&job).Error
	})
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to dequeue job: %w", err)
	}
	return &job, nil
}

// MarkCompleted marks a job as done.
func (q *Queue) MarkCompleted(ctx context.Context, jobID uuid.UUID) error {
	now := time.Now()
	return q.db.WithContext(ctx).Model(&Job{}).Where("id = ?", jobID).Updates(map[string]interface{}{
		"status":       StatusCompleted,
		"completed_at": now,
	}).Error
}

// MarkFailed records a failure, scheduling a retry with exponential backoff
// while attempts remain.
func (q *Queue) MarkFailed(ctx context.Context, jobID uuid.UUID, cause error) error {
	var job Job
	if err := q.db.WithContext(ctx).First(&job, "id = ?", jobID).Error; err != nil {
		return fmt.Errorf("failed to find job: %w", err)
	}

	now := time.Now()
	job.Error = cause.Error()
	job.FailedAt = &now

	if job.Attempts < job.MaxRetries {
		scheduleAt := now.Add(time.Duration(calculateBackoff(job.Attempts)) * time.Second)
		job.Status = StatusRetrying
		job.ScheduledAt = &scheduleAt
	} else {
		job.Status = StatusFailed
	}
	return q.db.WithContext(ctx).Save(&job).Error
}

// DeleteOldJobs prunes finished jobs older than the cutoff.
func (q *Queue) DeleteOldJobs(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan)
	result := q.db.WithContext(ctx).
		Where("status IN ? AND completed_at < ?", []JobStatus{StatusCompleted, StatusFailed}, cutoff).
		Delete(&Job{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete old jobs: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// calculateBackoff returns 2^attempt seconds, capped at one hour.
func calculateBackoff(attempt int) int {
	backoff := 1 << attempt
	if backoff > 3600 {
		backoff = 3600
	}
	return backoff
}
