// Package helpers provides shared test fixtures.
package helpers

import (
	"testing"

	"github.com/clipforge/backend/store"
)

// NewTestStore creates an unbounded in-memory session store for tests.
func NewTestStore(t *testing.T) *store.MemoryStore {
	t.Helper()
	return store.NewMemoryStore(0, 0)
}
