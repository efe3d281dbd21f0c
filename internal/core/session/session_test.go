package session

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/loomchat/loomchat-be/internal/apperr"
	"github.com/loomchat/loomchat-be/internal/core/llm"
	"github.com/loomchat/loomchat-be/internal/models"
	"github.com/loomchat/loomchat-be/internal/repositories"
)

type fakeChatRepo struct {
	chats   map[uuid.UUID]*models.Chat
	deleted int
}

func newFakeChatRepo() *fakeChatRepo {
	return &fakeChatRepo{chats: make(map[uuid.UUID]*models.Chat)}
}

func (f *fakeChatRepo) Create(ctx context.Context, chat *models.Chat) error {
	f.chats[chat.ID] = chat
	return nil
}

func (f *fakeChatRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Chat, error) {
	return f.chats[id], nil
}

func (f *fakeChatRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(f.chats, id)
	f.deleted++
	return nil
}

func (f *fakeChatRepo) ListByUser(ctx context.Context, userID uuid.UUID, limit int, startingAfter, endingBefore *uuid.UUID) (*repositories.ChatPage, error) {
	return &repositories.ChatPage{}, nil
}

func (f *fakeChatRepo) UpdateVisibility(ctx context.Context, id uuid.UUID, visibility string) error {
	f.chats[id].Visibility = visibility
	return nil
}

type fakeMessageRepo struct {
	saved []*models.Message
}

func (f *fakeMessageRepo) Save(ctx context.Context, message *models.Message) error {
	f.saved = append(f.saved, message)
	return nil
}

func (f *fakeMessageRepo) SaveIfAbsent(ctx context.Context, message *models.Message) (bool, error) {
	f.saved = append(f.saved, message)
	return true, nil
}

func (f *fakeMessageRepo) GetByChatID(ctx context.Context, chatID uuid.UUID) ([]models.Message, error) {
	return nil, nil
}

func (f *fakeMessageRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Message, error) {
	return nil, nil
}

func (f *fakeMessageRepo) DeleteByChatIDAfter(ctx context.Context, chatID uuid.UUID, after time.Time) (int64, error) {
	return 0, nil
}

// titleProvider answers GenerateText with a fixed title.
type titleProvider struct {
	title string
	err   error
}

func (p *titleProvider) StreamChat(ctx context.Context, req *llm.ChatRequest) (llm.Stream, error) {
	return nil, errors.New("not streamed in this test")
}

func (p *titleProvider) GenerateText(ctx context.Context, system, user string) (string, error) {
	return p.title, p.err
}

func (p *titleProvider) GenerateObject(ctx context.Context, system, user string) (json.RawMessage, error) {
	return nil, nil
}

func (p *titleProvider) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	return nil, nil
}

func (p *titleProvider) GetProviderName() string { return "title" }

func newTestService(chats *fakeChatRepo, provider llm.Provider) *Service {
	return NewService(chats, &fakeMessageRepo{}, llm.NewServiceWithProvider(provider))
}

func TestEnsureChatCreatesWithDerivedTitle(t *testing.T) {
	chats := newFakeChatRepo()
	svc := newTestService(chats, &titleProvider{title: "Planning a garden"})

	ownerID, chatID := uuid.New(), uuid.New()
	chat, err := svc.EnsureChat(context.Background(), ownerID, chatID, "help me plan a garden")
	if err != nil {
		t.Fatalf("EnsureChat: %v", err)
	}
	if chat.Title != "Planning a garden" {
		t.Errorf("title = %q", chat.Title)
	}
	if chat.Visibility != models.VisibilityPrivate {
		t.Errorf("visibility = %q, want private", chat.Visibility)
	}
	if chats.chats[chatID] == nil {
		t.Error("chat row not persisted")
	}
}

func TestEnsureChatTitleFallback(t *testing.T) {
	chats := newFakeChatRepo()
	svc := newTestService(chats, &titleProvider{err: errors.New("model down")})

	chat, err := svc.EnsureChat(context.Background(), uuid.New(), uuid.New(), "  what is a monad?  ")
	if err != nil {
		t.Fatalf("EnsureChat: %v", err)
	}
	if chat.Title != "what is a monad?" {
		t.Errorf("fallback title = %q", chat.Title)
	}
}

func TestEnsureChatRejectsForeignOwner(t *testing.T) {
	chats := newFakeChatRepo()
	svc := newTestService(chats, &titleProvider{title: "t"})

	chatID, owner := uuid.New(), uuid.New()
	chats.chats[chatID] = &models.Chat{ID: chatID, UserID: owner}

	_, err := svc.EnsureChat(context.Background(), uuid.New(), chatID, "hi")
	var appErr *apperr.AppError
	if !errors.As(err, &appErr) || appErr.StatusCode != 401 {
		t.Fatalf("err = %v, want 401 ownership failure", err)
	}
}

func TestDeleteChatRequiresOwnership(t *testing.T) {
	chats := newFakeChatRepo()
	svc := newTestService(chats, &titleProvider{title: "t"})

	chatID, owner := uuid.New(), uuid.New()
	chats.chats[chatID] = &models.Chat{ID: chatID, UserID: owner}

	if err := svc.DeleteChat(context.Background(), uuid.New(), chatID); err == nil {
		t.Fatal("foreign delete succeeded")
	}
	if chats.deleted != 0 {
		t.Errorf("deleted = %d rows, want 0", chats.deleted)
	}

	if err := svc.DeleteChat(context.Background(), owner, chatID); err != nil {
		t.Fatalf("owner delete failed: %v", err)
	}
	if chats.deleted != 1 {
		t.Errorf("deleted = %d rows, want 1", chats.deleted)
	}
}

func TestGetReadableChatPublicAccess(t *testing.T) {
	chats := newFakeChatRepo()
	svc := newTestService(chats, &titleProvider{title: "t"})

	chatID, owner := uuid.New(), uuid.New()
	chats.chats[chatID] = &models.Chat{ID: chatID, UserID: owner, Visibility: models.VisibilityPublic}

	if _, err := svc.GetReadableChat(context.Background(), uuid.New(), chatID); err != nil {
		t.Fatalf("public chat not readable: %v", err)
	}

	chats.chats[chatID].Visibility = models.VisibilityPrivate
	if _, err := svc.GetReadableChat(context.Background(), uuid.New(), chatID); err == nil {
		t.Fatal("private chat readable by stranger")
	}
}

func TestUpdateVisibilityValidation(t *testing.T) {
	chats := newFakeChatRepo()
	svc := newTestService(chats, &titleProvider{title: "t"})

	chatID, owner := uuid.New(), uuid.New()
	chats.chats[chatID] = &models.Chat{ID: chatID, UserID: owner, Visibility: models.VisibilityPrivate}

	if err := svc.UpdateVisibility(context.Background(), owner, chatID, "friends-only"); err == nil {
		t.Fatal("invalid visibility accepted")
	}
	if err := svc.UpdateVisibility(context.Background(), owner, chatID, models.VisibilityPublic); err != nil {
		t.Fatalf("UpdateVisibility: %v", err)
	}
	if chats.chats[chatID].Visibility != models.VisibilityPublic {
		t.Error("visibility not persisted")
	}
}

func TestLockChatSerializesTurns(t *testing.T) {
	svc := newTestService(newFakeChatRepo(), &titleProvider{title: "t"})
	chatID := uuid.New()

	var mu sync.Mutex
	running := 0
	maxRunning := 0

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := svc.LockChat(chatID)
			defer unlock()

			mu.Lock()
			running++
			if running > maxRunning {
				maxRunning = running
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			running--
			mu.Unlock()
		}()
	}
	wg.Wait()

	if maxRunning != 1 {
		t.Errorf("concurrent turns on one chat = %d, want 1", maxRunning)
	}

	svc.mu.Lock()
	leftover := len(svc.locks)
	svc.mu.Unlock()
	if leftover != 0 {
		t.Errorf("lock table retains %d entries after all turns finished", leftover)
	}
}

func TestFallbackTitleTruncatesOnRuneBoundary(t *testing.T) {
	// An 80-byte cut would land inside the second é; the cut must count runes.
	title := fallbackTitle("a" + strings.Repeat("é", 100))

	if !utf8.ValidString(title) {
		t.Fatalf("truncated title is not valid UTF-8: %q", title)
	}
	if got := utf8.RuneCountInString(title); got != 80 {
		t.Errorf("title runes = %d, want 80", got)
	}
}
