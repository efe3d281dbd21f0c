// Package settlement bills a naturally completed model turn: persist the
// assistant message, deduct one credit and recompute plan access. The whole
// step is idempotent, keyed by the assistant message id, so it can be retried
// safely through the jobs queue.
package settlement

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/loomchat/loomchat-be/internal/core/jobs"
	"github.com/loomchat/loomchat-be/internal/models"
	"github.com/loomchat/loomchat-be/internal/repositories"
	"github.com/loomchat/loomchat-be/internal/shared/utils"
)

// JobTypeRetry is the queue job type for settlement retries.
const JobTypeRetry = "settlement.retry"

// RetryQueue is the slice of the jobs queue settlement enqueues on.
type RetryQueue interface {
	Enqueue(ctx context.Context, userID uuid.UUID, jobType string, payload interface{}, opts jobs.EnqueueOptions) (*jobs.Job, error)
}

// Turn is the billable outcome of one completed model turn.
type Turn struct {
	UserID    uuid.UUID       `json:"user_id"`
	ChatID    uuid.UUID       `json:"chat_id"`
	MessageID uuid.UUID       `json:"message_id"`
	Parts     json.RawMessage `json:"parts"`
}

type Service struct {
	users    repositories.UserRepo
	messages repositories.MessageRepo
	queue    RetryQueue
}

func NewService(users repositories.UserRepo, messages repositories.MessageRepo, queue RetryQueue) *Service {
	return &Service{users: users, messages: messages, queue: queue}
}

// Settle applies the turn once. On failure the turn is queued for retry;
// the error never reaches the client, whose stream already closed cleanly.
func (s *Service) Settle(ctx context.Context, turn *Turn) {
	if err := s.Apply(ctx, turn); err != nil {
		utils.LogError("settlement failed, queueing retry", err, map[string]interface{}{
			"chat_id":    turn.ChatID.String(),
			"message_id": turn.MessageID.String(),
		})
		if s.queue == nil {
			return
		}
		if _, qErr := s.queue.Enqueue(ctx, turn.UserID, JobTypeRetry, turn, jobs.EnqueueOptions{Queue: "settlement"}); qErr != nil {
			utils.LogError("failed to enqueue settlement retry", qErr, map[string]interface{}{
				"message_id": turn.MessageID.String(),
			})
		}
	}
}

// Apply performs the settlement exactly once per assistant message id. The
// message insert is the idempotency gate: the credit is deducted only when
// the insert created a row, so replays and concurrent retries never double
// charge.
func (s *Service) Apply(ctx context.Context, turn *Turn) error {
	created, err := s.messages.SaveIfAbsent(ctx, &models.Message{
		ID:     turn.MessageID,
		ChatID: turn.ChatID,
		Role:   models.RoleAssistant,
		Parts:  datatypes.JSON(turn.Parts),
	})
	if err != nil {
		return err
	}
	if !created {
		return nil
	}

	deducted, err := s.users.DeductCredit(ctx, turn.UserID)
	if err != nil {
		return err
	}
	if !deducted {
		// Credits already at zero: the floor holds, nothing to deduct.
		utils.LogWarn("turn completed with no credits left to deduct", map[string]interface{}{
			"user_id": turn.UserID.String(),
		})
	}

	user, err := s.users.GetByID(ctx, turn.UserID)
	if err != nil {
		return err
	}
	if user == nil {
		// Account deleted after the turn ran; nothing left to update.
		return nil
	}
	hasAccess := user.Credits > 0
	if user.HasAccess != hasAccess {
		return s.users.SetHasAccess(ctx, turn.UserID, hasAccess)
	}
	return nil
}

// RetryHandler replays settlements off the jobs queue.
type RetryHandler struct {
	service *Service
}

func NewRetryHandler(service *Service) *RetryHandler {
	return &RetryHandler{service: service}
}

func (h *RetryHandler) GetType() string { return JobTypeRetry }

func (h *RetryHandler) Handle(ctx context.Context, job *jobs.Job) error {
	var turn Turn
	if err := json.Unmarshal(job.Payload, &turn); err != nil {
		return err
	}
	return h.service.Apply(ctx, &turn)
}
