// Package store defines the session storage interface and implementations.
package store

import (
	"context"
	"errors"

	"github.com/clipforge/backend/domain"
)

// ErrNotFound is returned when a session id is unknown (or evicted).
var ErrNotFound = errors.New("session not found")

// Store is the single synchronization boundary for conversation state. All
// methods are safe for concurrent use.
type Store interface {
	// Create allocates a new session with a fresh id and current timestamps.
	Create(ctx context.Context) (*domain.Session, error)

	// Get returns a snapshot of the session, or ErrNotFound.
	Get(ctx context.Context, sessionID string) (*domain.Session, error)

	// Append adds a message to the session and advances its updated-at
	// timestamp. Returns ErrNotFound for unknown ids. Appends to the same
	// session are serialized in call-arrival order.
	Append(ctx context.Context, sessionID string, msg domain.Message) error

	// History returns the ordered message sequence for the session. Unknown
	// ids yield an empty slice, not an error; callers that need existence
	// must Get first.
	History(ctx context.Context, sessionID string) ([]domain.Message, error)
}
