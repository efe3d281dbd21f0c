package handlers

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/loomchat/loomchat-be/internal/core/session"
)

func TestTurnReleaseFreesLockWithoutWriter(t *testing.T) {
	sessions := session.NewService(nil, nil, nil)
	chatID := uuid.New()

	unlock := sessions.LockChat(chatID)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	newTurnRelease(ctx, cancel, unlock)

	// The body writer never runs; once the turn context ends, a later turn on
	// the same chat must still be able to take the lock.
	acquired := make(chan func(), 1)
	go func() {
		acquired <- sessions.LockChat(chatID)
	}()

	select {
	case next := <-acquired:
		next()
	case <-time.After(2 * time.Second):
		t.Fatal("chat lock leaked after the turn context ended")
	}
}

func TestTurnReleaseRunsCleanupOnce(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	unlocks := 0
	release := newTurnRelease(ctx, cancel, func() {
		mu.Lock()
		unlocks++
		mu.Unlock()
	})

	release()
	release()
	// The watchdog sees the cancel from the first release; give it a moment.
	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if unlocks != 1 {
		t.Fatalf("unlock ran %d times, want 1", unlocks)
	}
}
