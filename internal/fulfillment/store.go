package fulfillment

import (
	"context"
	"sync"
)

// ProcessedSessionStore records which checkout sessions already had their
// confirmation email sent. A session never leaves the processed state.
type ProcessedSessionStore interface {
	HasProcessed(ctx context.Context, sessionID string) (bool, error)
	MarkProcessed(ctx context.Context, sessionID string) error
}

// MemoryStore is a process-local ProcessedSessionStore. Its contents are lost
// on restart and are not shared between instances.
type MemoryStore struct {
	mu   sync.RWMutex
	seen map[string]struct{}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{seen: make(map[string]struct{})}
}

func (m *MemoryStore) HasProcessed(_ context.Context, sessionID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.seen[sessionID]
	return ok, nil
}

func (m *MemoryStore) MarkProcessed(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seen[sessionID] = struct{}{}
	return nil
}

// Len returns the number of processed sessions.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.seen)
}
