package inmemory

import (
	"context"
	"sync"
	"time"

	"github.com/kiosk404/hookmind/internal/hookmind/store"
)

// LifecycleStore keeps registry events in memory.
type LifecycleStore struct {
	mu      sync.RWMutex
	entries []store.LifecycleEntry
}

var _ store.LifecycleLog = (*LifecycleStore)(nil)

// NewLifecycleStore creates a new LifecycleStore.
func NewLifecycleStore() *LifecycleStore {
	return &LifecycleStore{}
}

// Append adds an entry.
func (s *LifecycleStore) Append(_ context.Context, entry *store.LifecycleEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry.Seq = uint64(len(s.entries) + 1)
	if entry.Time.IsZero() {
		entry.Time = time.Now().UTC()
	}
	s.entries = append(s.entries, *entry)
	return nil
}

// Recent returns up to limit entries, newest first. limit <= 0 returns all.
func (s *LifecycleStore) Recent(_ context.Context, limit int) ([]*store.LifecycleEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*store.LifecycleEntry
	for i := len(s.entries) - 1; i >= 0; i-- {
		if limit > 0 && len(out) >= limit {
			break
		}
		e := s.entries[i]
		out = append(out, &e)
	}
	return out, nil
}
