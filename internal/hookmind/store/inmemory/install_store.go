package inmemory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/kiosk404/hookmind/internal/hookmind/service/plugin"
)

// InstallStore is an in-memory implementation of plugin.InstallStore.
type InstallStore struct {
	mu      sync.RWMutex
	records map[string]plugin.InstallRecord
}

var _ plugin.InstallStore = (*InstallStore)(nil)

// NewInstallStore creates a new InstallStore instance.
func NewInstallStore() *InstallStore {
	return &InstallStore{
		records: make(map[string]plugin.InstallRecord),
	}
}

// Get returns a copy of the install record of a plugin.
func (s *InstallStore) Get(_ context.Context, pluginName string) (*plugin.InstallRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[pluginName]
	if !ok {
		return nil, fmt.Errorf("plugin %q: %w", pluginName, plugin.ErrInstallRecordNotFound)
	}
	return &rec, nil
}

// Put stores a copy of rec.
func (s *InstallStore) Put(_ context.Context, rec *plugin.InstallRecord) error {
	if rec == nil || rec.Plugin == "" {
		return fmt.Errorf("install record without plugin name")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.Plugin] = *rec
	return nil
}

// Delete removes the install record of a plugin.
func (s *InstallStore) Delete(_ context.Context, pluginName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, pluginName)
	return nil
}

// List returns all install records ordered by plugin name.
func (s *InstallStore) List(_ context.Context) ([]*plugin.InstallRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := make([]*plugin.InstallRecord, 0, len(s.records))
	for _, rec := range s.records {
		rec := rec
		records = append(records, &rec)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Plugin < records[j].Plugin })
	return records, nil
}
