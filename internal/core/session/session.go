// Package session manages conversation lifecycle: chat creation with a
// derived title on first contact, ownership checks, user message persistence
// and per-chat turn serialization.
package session

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/loomchat/loomchat-be/internal/apperr"
	"github.com/loomchat/loomchat-be/internal/core/llm"
	"github.com/loomchat/loomchat-be/internal/models"
	"github.com/loomchat/loomchat-be/internal/repositories"
	"github.com/loomchat/loomchat-be/internal/shared/utils"
)

type Service struct {
	chats    repositories.ChatRepo
	messages repositories.MessageRepo
	llm      *llm.Service

	mu    sync.Mutex
	locks map[uuid.UUID]*chatLock
}

type chatLock struct {
	sync.Mutex
	refs int
}

func NewService(chats repositories.ChatRepo, messages repositories.MessageRepo, llmService *llm.Service) *Service {
	return &Service{
		chats:    chats,
		messages: messages,
		llm:      llmService,
		locks:    make(map[uuid.UUID]*chatLock),
	}
}

// LockChat serializes turns on one chat. The returned function releases the
// lock; lock entries are dropped once no turn holds or waits on them.
func (s *Service) LockChat(chatID uuid.UUID) func() {
	s.mu.Lock()
	l, ok := s.locks[chatID]
	if !ok {
		l = &chatLock{}
		s.locks[chatID] = l
	}
	l.refs++
	s.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()
		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, chatID)
		}
		s.mu.Unlock()
	}
}

// EnsureChat loads the chat or, on first contact, creates it with a title
// derived from the opening user message. A chat owned by someone else fails
// the ownership check before any model work happens.
func (s *Service) EnsureChat(ctx context.Context, userID, chatID uuid.UUID, firstMessage string) (*models.Chat, error) {
	chat, err := s.chats.GetByID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if chat != nil {
		if chat.UserID != userID {
			return nil, apperr.Authorization("you are not the owner of this chat")
		}
		return chat, nil
	}

	title, err := s.llm.GenerateTitle(ctx, firstMessage)
	if err != nil {
		utils.LogWarn("title generation failed, falling back to message prefix", map[string]interface{}{
			"chat_id": chatID.String(),
			"error":   err.Error(),
		})
		title = fallbackTitle(firstMessage)
	}

	chat = &models.Chat{
		ID:         chatID,
		UserID:     userID,
		Title:      title,
		Visibility: models.VisibilityPrivate,
	}
	if err := s.chats.Create(ctx, chat); err != nil {
		return nil, err
	}
	return chat, nil
}

// AppendUserMessage persists the incoming user message before the turn runs.
func (s *Service) AppendUserMessage(ctx context.Context, chatID, messageID uuid.UUID, parts, attachments datatypes.JSON) error {
	if len(attachments) == 0 {
		attachments = datatypes.JSON([]byte("[]"))
	}
	return s.messages.Save(ctx, &models.Message{
		ID:          messageID,
		ChatID:      chatID,
		Role:        models.RoleUser,
		Parts:       parts,
		Attachments: attachments,
	})
}

// GetOwnedChat loads a chat and verifies ownership.
func (s *Service) GetOwnedChat(ctx context.Context, userID, chatID uuid.UUID) (*models.Chat, error) {
	chat, err := s.chats.GetByID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if chat == nil {
		return nil, apperr.NotFound("chat not found")
	}
	if chat.UserID != userID {
		return nil, apperr.Authorization("you are not the owner of this chat")
	}
	return chat, nil
}

// GetReadableChat loads a chat the user may read: their own, or any public
// chat.
func (s *Service) GetReadableChat(ctx context.Context, userID, chatID uuid.UUID) (*models.Chat, error) {
	chat, err := s.chats.GetByID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if chat == nil {
		return nil, apperr.NotFound("chat not found")
	}
	if chat.UserID != userID && chat.Visibility != models.VisibilityPublic {
		return nil, apperr.Authorization("you are not allowed to view this chat")
	}
	return chat, nil
}

// DeleteChat removes an owned chat and everything under it.
func (s *Service) DeleteChat(ctx context.Context, userID, chatID uuid.UUID) error {
	if _, err := s.GetOwnedChat(ctx, userID, chatID); err != nil {
		return err
	}
	return s.chats.Delete(ctx, chatID)
}

// ListChats pages the user's chats newest-first.
func (s *Service) ListChats(ctx context.Context, userID uuid.UUID, limit int, startingAfter, endingBefore *uuid.UUID) (*repositories.ChatPage, error) {
	if startingAfter != nil && endingBefore != nil {
		return nil, apperr.Validation("only one of starting_after or ending_before can be provided")
	}
	return s.chats.ListByUser(ctx, userID, limit, startingAfter, endingBefore)
}

// UpdateVisibility toggles a chat between private and public.
func (s *Service) UpdateVisibility(ctx context.Context, userID, chatID uuid.UUID, visibility string) error {
	if visibility != models.VisibilityPrivate && visibility != models.VisibilityPublic {
		return apperr.Validation("visibility must be private or public")
	}
	if _, err := s.GetOwnedChat(ctx, userID, chatID); err != nil {
		return err
	}
	return s.chats.UpdateVisibility(ctx, chatID, visibility)
}

// Messages returns a chat's messages oldest-first.
func (s *Service) Messages(ctx context.Context, chatID uuid.UUID) ([]models.Message, error) {
	return s.messages.GetByChatID(ctx, chatID)
}

func fallbackTitle(message string) string {
	title := strings.TrimSpace(message)
	if title == "" {
		return "New Chat"
	}
	if runes := []rune(title); len(runes) > 80 {
		title = string(runes[:80])
	}
	return title
}
