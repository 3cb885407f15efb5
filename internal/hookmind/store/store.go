// Package store defines the persistence contracts shared by the BoltDB and
// in-memory backends.
package store

import (
	"context"
	"time"

	"github.com/kiosk404/hookmind/internal/hookmind/service/plugin"
)

// LifecycleEntry is one logged registry event.
type LifecycleEntry struct {
	Seq    uint64    `json:"seq"`
	Time   time.Time `json:"time"`
	Plugin string    `json:"plugin"`
	Type   string    `json:"type"`
}

// NewLifecycleEntry converts a registry event.
func NewLifecycleEntry(ev plugin.Event) *LifecycleEntry {
	return &LifecycleEntry{
		Time:   time.Now().UTC(),
		Plugin: ev.Plugin,
		Type:   ev.Type.String(),
	}
}

// LifecycleLog records registry events.
type LifecycleLog interface {
	Append(ctx context.Context, entry *LifecycleEntry) error
	Recent(ctx context.Context, limit int) ([]*LifecycleEntry, error)
}
