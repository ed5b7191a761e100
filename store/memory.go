package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/clipforge/backend/domain"
)

// MemoryStore keeps sessions in memory for the lifetime of the process.
// To bound growth, sessions live in an expirable LRU: the least recently
// used session is dropped past capacity, and idle sessions expire after
// the TTL. An evicted id behaves exactly like one that never existed.
type MemoryStore struct {
	sessions *expirable.LRU[string, *sessionEntry]
}

// sessionEntry guards one session. The entry mutex serializes appends to
// the same session so message order reflects call arrival order; the LRU's
// own lock covers the id map.
type sessionEntry struct {
	mu      sync.Mutex
	session domain.Session
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates a store bounded by capacity and idle TTL.
// capacity <= 0 means unbounded; ttl <= 0 means sessions never expire.
func NewMemoryStore(capacity int, ttl time.Duration) *MemoryStore {
	if capacity < 0 {
		capacity = 0
	}
	return &MemoryStore{
		sessions: expirable.NewLRU[string, *sessionEntry](capacity, nil, ttl),
	}
}

// Create allocates a new session with a fresh unique identifier.
func (s *MemoryStore) Create(ctx context.Context) (*domain.Session, error) {
	now := time.Now()
	entry := &sessionEntry{
		session: domain.Session{
			ID:        "chat_" + uuid.New().String(),
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
	s.sessions.Add(entry.session.ID, entry)

	snap := entry.session
	return &snap, nil
}

// Get returns a defensive copy of the session, or ErrNotFound.
func (s *MemoryStore) Get(ctx context.Context, sessionID string) (*domain.Session, error) {
	entry, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, ErrNotFound
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	snap := entry.session
	snap.Messages = append([]domain.Message(nil), entry.session.Messages...)
	return &snap, nil
}

// Append adds a message and advances updated-at. The timestamp is forced
// strictly forward so updated-at never regresses even under clock skew.
func (s *MemoryStore) Append(ctx context.Context, sessionID string, msg domain.Message) error {
	entry, ok := s.sessions.Get(sessionID)
	if !ok {
		return ErrNotFound
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	now := time.Now()
	if !now.After(entry.session.UpdatedAt) {
		now = entry.session.UpdatedAt.Add(time.Nanosecond)
	}
	entry.session.Messages = append(entry.session.Messages, msg)
	entry.session.UpdatedAt = now
	return nil
}

// History returns the ordered messages for the session; unknown ids yield
// an empty slice.
func (s *MemoryStore) History(ctx context.Context, sessionID string) ([]domain.Message, error) {
	entry, ok := s.sessions.Get(sessionID)
	if !ok {
		return []domain.Message{}, nil
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	return append([]domain.Message(nil), entry.session.Messages...), nil
}

// Len reports how many sessions are currently held.
func (s *MemoryStore) Len() int {
	return s.sessions.Len()
}
