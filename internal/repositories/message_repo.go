package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/loomchat/loomchat-be/internal/models"
)

type MessageRepo interface {
	Save(ctx context.Context, message *models.Message) error
	// SaveIfAbsent inserts unless a row with the same id already exists.
	// Returns true when a new row was created. Settlement relies on this to
	// stay idempotent across retries.
	SaveIfAbsent(ctx context.Context, message *models.Message) (bool, error)
	GetByChatID(ctx context.Context, chatID uuid.UUID) ([]models.Message, error)
	// GetByID returns (nil, nil) when no message exists with the id.
	GetByID(ctx context.Context, id uuid.UUID) (*models.Message, error)
	// DeleteByChatIDAfter removes messages (and their votes) created strictly
	// after the timestamp; used to rewind a conversation.
	DeleteByChatIDAfter(ctx context.Context, chatID uuid.UUID, after time.Time) (int64, error)
}

type messageRepo struct {
	db *gorm.DB
}

func NewMessageRepo(db *gorm.DB) MessageRepo {
	return &messageRepo{db: db}
}

func (r *messageRepo) Save(ctx context.Context, message *models.Message) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *messageRepo) SaveIfAbsent(ctx context.Context, message *models.Message) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		Create(message)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *messageRepo) GetByChatID(ctx context.Context, chatID uuid.UUID) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Order("created_at ASC").
		Find(&messages).Error
	return messages, err
}

func (r *messageRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Message, error) {
	var message models.Message
	if err := r.db.WithContext(ctx).First(&message, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &message, nil
}

func (r *messageRepo) DeleteByChatIDAfter(ctx context.Context, chatID uuid.UUID, after time.Time) (int64, error) {
	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ids []uuid.UUID
		if err := tx.Model(&models.Message{}).
			Where("chat_id = ? AND created_at > ?", chatID, after).
			Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		if err := tx.Where("chat_id = ? AND message_id IN ?", chatID, ids).
			Delete(&models.Vote{}).Error; err != nil {
			return err
		}
		res := tx.Where("id IN ?", ids).Delete(&models.Message{})
		deleted = res.RowsAffected
		return res.Error
	})
	return deleted, err
}
