package plugin

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadataWatcher_ReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	r := newTestRegistry()
	d, err := r.Load(context.Background(), &testPlugin{name: "Watched", dir: dir})
	require.NoError(t, err)
	_, err = r.Load(context.Background(), &testPlugin{name: "NoDir"})
	require.NoError(t, err)

	reloaded := make(chan struct{}, 1)
	r.Subscribe(func(ev Event) {
		if ev.Type == EventMetadataReloaded && ev.Plugin == "Watched" {
			select {
			case reloaded <- struct{}{}:
			default:
			}
		}
	})

	w, err := NewMetadataWatcher(r, 20*time.Millisecond)
	require.NoError(t, err)
	defer w.Close()
	assert.Equal(t, 1, w.Watched())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, DocumentJSON), []byte(`{"author": "Watcher"}`), 0o644))

	select {
	case <-reloaded:
	case <-time.After(5 * time.Second):
		t.Fatal("metadata was not reloaded")
	}
	assert.Equal(t, "Watcher", d.Metadata().Author)
}

func TestMetadataWatcher_CloseTwice(t *testing.T) {
	w, err := NewMetadataWatcher(newTestRegistry(), 0)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
}
