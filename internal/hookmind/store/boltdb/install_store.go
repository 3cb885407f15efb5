package boltdb

import (
	"context"
	"fmt"

	"github.com/boltdb/bolt"
	"github.com/kiosk404/hookmind/internal/hookmind/service/plugin"
	"github.com/kiosk404/hookmind/pkg/utils/json"
)

// InstallStore implements plugin.InstallStore using BoltDB.
type InstallStore struct {
	db *bolt.DB
}

var _ plugin.InstallStore = (*InstallStore)(nil)

// NewInstallStore creates a new BoltDB-backed InstallStore.
func NewInstallStore(db *DB) *InstallStore {
	return &InstallStore{db: db.Bolt()}
}

// Get retrieves the install record of a plugin.
func (s *InstallStore) Get(_ context.Context, pluginName string) (*plugin.InstallRecord, error) {
	var rec plugin.InstallRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketInstallStore).Get([]byte(pluginName))
		if data == nil {
			return fmt.Errorf("plugin %q: %w", pluginName, plugin.ErrInstallRecordNotFound)
		}
		if err := json.Unmarshal(data, &rec); err != nil {
			return fmt.Errorf("failed to unmarshal install record: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Put creates or replaces the install record of a plugin.
func (s *InstallStore) Put(_ context.Context, rec *plugin.InstallRecord) error {
	if rec == nil || rec.Plugin == "" {
		return fmt.Errorf("install record without plugin name")
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("failed to marshal install record: %w", err)
		}
		return tx.Bucket(bucketInstallStore).Put([]byte(rec.Plugin), data)
	})
}

// Delete removes the install record of a plugin. Deleting a missing record
// is not an error.
func (s *InstallStore) Delete(_ context.Context, pluginName string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketInstallStore).Delete([]byte(pluginName))
	})
}

// List returns all install records ordered by plugin name.
func (s *InstallStore) List(_ context.Context) ([]*plugin.InstallRecord, error) {
	var records []*plugin.InstallRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketInstallStore).ForEach(func(k, v []byte) error {
			var rec plugin.InstallRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("failed to unmarshal install record %q: %w", k, err)
			}
			records = append(records, &rec)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list install records: %w", err)
	}
	return records, nil
}
