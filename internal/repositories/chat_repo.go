package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/loomchat/loomchat-be/internal/models"
)

// ChatPage is one page of a user's chat history, newest first.
type ChatPage struct {
	Chats   []models.Chat `json:"chats"`
	HasMore bool          `json:"has_more"`
}

type ChatRepo interface {
	Create(ctx context.Context, chat *models.Chat) error
	// GetByID returns (nil, nil) when no chat exists with the id.
	GetByID(ctx context.Context, id uuid.UUID) (*models.Chat, error)
	// Delete removes the chat and cascades to its messages and votes.
	Delete(ctx context.Context, id uuid.UUID) error
	// ListByUser pages newest-first; startingAfter/endingBefore are chat id
	// cursors, at most one may be set.
	ListByUser(ctx context.Context, userID uuid.UUID, limit int, startingAfter, endingBefore *uuid.UUID) (*ChatPage, error)
	UpdateVisibility(ctx context.Context, id uuid.UUID, visibility string) error
}

type chatRepo struct {
	db *gorm.DB
}

func NewChatRepo(db *gorm.DB) ChatRepo {
	return &chatRepo{db: db}
}

func (r *chatRepo) Create(ctx context.Context, chat *models.Chat) error {
	return r.db.WithContext(ctx).Create(chat).Error
}

func (r *chatRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Chat, error) {
	var chat models.Chat
	if err := r.db.WithContext(ctx).First(&chat, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &chat, nil
}

func (r *chatRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("chat_id = ?", id).Delete(&models.Vote{}).Error; err != nil {
			return err
		}
		if err := tx.Where("chat_id = ?", id).Delete(&models.Message{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&models.Chat{}).Error
	})
}

func (r *chatRepo) ListByUser(ctx context.Context, userID uuid.UUID, limit int, startingAfter, endingBefore *uuid.UUID) (*ChatPage, error) {
	extendedLimit := limit + 1

	query := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(extendedLimit)

	switch {
	case startingAfter != nil:
		cursor, err := r.GetByID(ctx, *startingAfter)
		if err != nil {
			return nil, err
		}
		if cursor == nil {
			return nil, fmt.Errorf("cursor chat %s not found", *startingAfter)
		}
		query = query.Where("created_at > ?", cursor.CreatedAt)
	case endingBefore != nil:
		cursor, err := r.GetByID(ctx, *endingBefore)
		if err != nil {
			return nil, err
		}
		if cursor == nil {
			return nil, fmt.Errorf("cursor chat %s not found", *endingBefore)
		}
		query = query.Where("created_at < ?", cursor.CreatedAt)
	}

	var chats []models.Chat
	if err := query.Find(&chats).Error; err != nil {
		return nil, err
	}

	hasMore := len(chats) > limit
	if hasMore {
		chats = chats[:limit]
	}
	return &ChatPage{Chats: chats, HasMore: hasMore}, nil
}

func (r *chatRepo) UpdateVisibility(ctx context.Context, id uuid.UUID, visibility string) error {
	return r.db.WithContext(ctx).
		Model(&models.Chat{}).
		Where("id = ?", id).
		Update("visibility", visibility).Error
}
