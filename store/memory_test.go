package store

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/clipforge/backend/domain"
)

func newTestStore(t *testing.T) *MemoryStore {
	t.Helper()
	return NewMemoryStore(0, 0)
}

func TestCreateAndGet(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	created, err := s.Create(ctx)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if !strings.HasPrefix(created.ID, "chat_") {
		t.Fatalf("unexpected session id: %s", created.ID)
	}
	if !created.UpdatedAt.Equal(created.CreatedAt) {
		t.Fatalf("expected created_at == updated_at, got %v / %v", created.CreatedAt, created.UpdatedAt)
	}

	got, err := s.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if len(got.Messages) != 0 {
		t.Fatalf("expected empty history, got %d messages", len(got.Messages))
	}
}

func TestGetUnknown(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Get(context.Background(), "chat_missing"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAppendAndHistory(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	created, err := s.Create(ctx)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := s.Append(ctx, created.ID, domain.Message{Role: domain.RoleUser, Content: "hi"}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	history, err := s.History(ctx, created.ID)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected 1 message, got %d", len(history))
	}
	if history[0].Role != domain.RoleUser || history[0].Content != "hi" {
		t.Fatalf("unexpected message: %+v", history[0])
	}

	got, err := s.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !got.UpdatedAt.After(got.CreatedAt) {
		t.Fatalf("expected updated_at to advance, got %v / %v", got.CreatedAt, got.UpdatedAt)
	}
}

func TestAppendUnknown(t *testing.T) {
	s := newTestStore(t)
	err := s.Append(context.Background(), "chat_missing", domain.Message{Role: domain.RoleUser, Content: "hi"})
	if err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestHistoryUnknownIsEmpty(t *testing.T) {
	s := newTestStore(t)
	history, err := s.History(context.Background(), "chat_missing")
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(history) != 0 {
		t.Fatalf("expected empty history, got %d messages", len(history))
	}
}

func TestConcurrentAppends(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	created, err := s.Create(ctx)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			msg := domain.Message{Role: domain.RoleUser, Content: fmt.Sprintf("msg-%d", i)}
			if err := s.Append(ctx, created.ID, msg); err != nil {
				t.Errorf("Append failed: %v", err)
			}
		}(i)
	}
	wg.Wait()

	history, err := s.History(ctx, created.ID)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(history) != n {
		t.Fatalf("expected %d messages, got %d", n, len(history))
	}

	seen := make(map[string]bool, n)
	for _, m := range history {
		if seen[m.Content] {
			t.Fatalf("duplicated message: %s", m.Content)
		}
		seen[m.Content] = true
	}
}

func TestHistoryIsACopy(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	created, _ := s.Create(ctx)
	if err := s.Append(ctx, created.ID, domain.Message{Role: domain.RoleUser, Content: "hi"}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	history, _ := s.History(ctx, created.ID)
	history[0].Content = "mutated"

	again, _ := s.History(ctx, created.ID)
	if again[0].Content != "hi" {
		t.Fatalf("history snapshot leaked internal state: %+v", again[0])
	}
}

func TestCapacityEviction(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(2, 0)

	first, _ := s.Create(ctx)
	second, _ := s.Create(ctx)
	third, _ := s.Create(ctx)

	if n := s.Len(); n != 2 {
		t.Fatalf("expected 2 held sessions, got %d", n)
	}
	if _, err := s.Get(ctx, first.ID); err != ErrNotFound {
		t.Fatalf("expected oldest session to be evicted, got %v", err)
	}
	for _, id := range []string{second.ID, third.ID} {
		if _, err := s.Get(ctx, id); err != nil {
			t.Fatalf("expected session %s to survive, got %v", id, err)
		}
	}
}

func TestTTLExpiry(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(0, 20*time.Millisecond)

	created, _ := s.Create(ctx)
	time.Sleep(60 * time.Millisecond)

	if _, err := s.Get(ctx, created.ID); err != ErrNotFound {
		t.Fatalf("expected expired session to be gone, got %v", err)
	}
}
