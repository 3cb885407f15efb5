package boltdb

import (
	"context"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/boltdb/bolt"
	"github.com/kiosk404/hookmind/internal/hookmind/store"
	"github.com/kiosk404/hookmind/pkg/utils/json"
)

// LifecycleStore is an append-only BoltDB log of registry events.
type LifecycleStore struct {
	db *bolt.DB
}

var _ store.LifecycleLog = (*LifecycleStore)(nil)

// NewLifecycleStore creates a new LifecycleStore.
func NewLifecycleStore(db *DB) *LifecycleStore {
	return &LifecycleStore{db: db.Bolt()}
}

// Append adds an entry. A zero Time is set to now.
func (s *LifecycleStore) Append(_ context.Context, entry *store.LifecycleEntry) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketLifecycleStore)
		seq, err := b.NextSequence()
		if err != nil {
			return fmt.Errorf("failed to allocate sequence: %w", err)
		}
		entry.Seq = seq
		if entry.Time.IsZero() {
			entry.Time = time.Now().UTC()
		}
		data, err := json.Marshal(entry)
		if err != nil {
			return fmt.Errorf("failed to marshal lifecycle entry: %w", err)
		}
		return b.Put(seqKey(seq), data)
	})
}

// Recent returns up to limit entries, newest first. limit <= 0 returns all.
func (s *LifecycleStore) Recent(_ context.Context, limit int) ([]*store.LifecycleEntry, error) {
	var entries []*store.LifecycleEntry
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketLifecycleStore).Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			if limit > 0 && len(entries) >= limit {
				break
			}
			var entry store.LifecycleEntry
			if err := json.Unmarshal(v, &entry); err != nil {
				return fmt.Errorf("failed to unmarshal lifecycle entry: %w", err)
			}
			entries = append(entries, &entry)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list lifecycle entries: %w", err)
	}
	return entries, nil
}

func seqKey(seq uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)
	return key
}
