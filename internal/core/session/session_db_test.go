package session

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/loomchat/loomchat-be/internal/core/llm"
	"github.com/loomchat/loomchat-be/internal/models"
	"github.com/loomchat/loomchat-be/internal/repositories"
)

// First contact with a fresh chat id must create the chat. This runs against
// the real repository rather than a fake so the not-found contract between
// repository and service is covered end to end.
func TestEnsureChatFirstContactCreatesChatOverDatabase(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
		IgnoreRelationshipsWhenMigrating:         true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.Chat{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	chats := repositories.NewChatRepo(db)
	svc := NewService(chats, &fakeMessageRepo{}, llm.NewServiceWithProvider(&titleProvider{title: "Trip planning"}))

	userID := uuid.New()
	chatID := uuid.New()
	chat, err := svc.EnsureChat(context.Background(), userID, chatID, "help me plan a trip to Peru")
	if err != nil {
		t.Fatalf("first turn on a fresh chat id: %v", err)
	}
	if chat == nil || chat.Title != "Trip planning" {
		t.Fatalf("unexpected chat: %+v", chat)
	}

	stored, err := chats.GetByID(context.Background(), chatID)
	if err != nil {
		t.Fatalf("reload chat: %v", err)
	}
	if stored == nil || stored.UserID != userID {
		t.Fatalf("chat was not persisted: %+v", stored)
	}

	// A second turn on the same id loads the chat instead of recreating it.
	again, err := svc.EnsureChat(context.Background(), userID, chatID, "and now Bolivia")
	if err != nil {
		t.Fatalf("second turn: %v", err)
	}
	if again.Title != "Trip planning" {
		t.Errorf("title changed on reload: %q", again.Title)
	}
}
