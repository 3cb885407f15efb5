package boltdb

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/kiosk404/hookmind/internal/hookmind/service/plugin"
	"github.com/kiosk404/hookmind/internal/hookmind/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "nested", "hookmind.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestInstallStore_CRUD(t *testing.T) {
	ctx := context.Background()
	s := NewInstallStore(openTestDB(t))

	_, err := s.Get(ctx, "Live")
	require.True(t, errors.Is(err, plugin.ErrInstallRecordNotFound))

	now := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)
	require.NoError(t, s.Put(ctx, &plugin.InstallRecord{Plugin: "Live", Version: "1.0", Installed: true, State: "loaded", InstalledAt: now, UpdatedAt: now}))
	require.NoError(t, s.Put(ctx, &plugin.InstallRecord{Plugin: "Alpha", State: "activated", UpdatedAt: now}))

	rec, err := s.Get(ctx, "Live")
	require.NoError(t, err)
	assert.True(t, rec.Installed)
	assert.Equal(t, "1.0", rec.Version)
	assert.True(t, now.Equal(rec.InstalledAt))

	records, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Alpha", records[0].Plugin)

	require.NoError(t, s.Delete(ctx, "Live"))
	require.NoError(t, s.Delete(ctx, "Live"))
	_, err = s.Get(ctx, "Live")
	assert.True(t, errors.Is(err, plugin.ErrInstallRecordNotFound))

	assert.Error(t, s.Put(ctx, &plugin.InstallRecord{}))
}

func TestInstallStore_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "hookmind.db")

	db, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, NewInstallStore(db).Put(ctx, &plugin.InstallRecord{Plugin: "VisitorInterest", Installed: true}))
	require.NoError(t, db.Close())

	db, err = Open(path)
	require.NoError(t, err)
	defer db.Close()
	rec, err := NewInstallStore(db).Get(ctx, "VisitorInterest")
	require.NoError(t, err)
	assert.True(t, rec.Installed)
	assert.Equal(t, path, db.Path())
}

func TestLifecycleStore_Recent(t *testing.T) {
	ctx := context.Background()
	s := NewLifecycleStore(openTestDB(t))

	for _, ev := range []plugin.Event{
		{Type: plugin.EventLoaded, Plugin: "Live"},
		{Type: plugin.EventActivated, Plugin: "Live"},
		{Type: plugin.EventDeactivated, Plugin: "Live"},
	} {
		require.NoError(t, s.Append(ctx, store.NewLifecycleEntry(ev)))
	}

	recent, err := s.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "deactivated", recent[0].Type)
	assert.Equal(t, uint64(3), recent[0].Seq)
	assert.Equal(t, "activated", recent[1].Type)

	all, err := s.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
