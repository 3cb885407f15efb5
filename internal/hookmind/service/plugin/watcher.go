package plugin

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/kiosk404/hookmind/pkg/logger"
)

const defaultWatchDebounce = 500 * time.Millisecond

// MetadataWatcher reloads a plugin's metadata when its override document
// changes on disk.
type MetadataWatcher struct {
	registry *Registry
	debounce time.Duration
	watcher  *fsnotify.Watcher

	// dirs maps a watched directory to the plugin that owns it.
	dirs map[string]string

	mu      sync.Mutex
	pending map[string]*time.Timer

	closeCh   chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewMetadataWatcher watches the directories of every loaded plugin that has
// one. A debounce <= 0 selects the default.
func NewMetadataWatcher(r *Registry, debounce time.Duration) (*MetadataWatcher, error) {
	if debounce <= 0 {
		debounce = defaultWatchDebounce
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	w := &MetadataWatcher{
		registry: r,
		debounce: debounce,
		watcher:  watcher,
		dirs:     make(map[string]string),
		pending:  make(map[string]*time.Timer),
		closeCh:  make(chan struct{}),
	}
	for _, d := range r.List() {
		if d.Dir() == "" {
			continue
		}
		dir := filepath.Clean(d.Dir())
		if err := watcher.Add(dir); err != nil {
			logger.Warn("[Plugin] cannot watch %s for plugin %q: %v", dir, d.Name(), err)
			continue
		}
		w.dirs[dir] = d.Name()
	}

	w.wg.Add(1)
	go w.loop()
	logger.Info("[Plugin] metadata watcher started (%d directories)", len(w.dirs))
	return w, nil
}

func (w *MetadataWatcher) loop() {
	defer w.wg.Done()
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			base := filepath.Base(event.Name)
			if base != DocumentJSON && base != DocumentYAML {
				continue
			}
			if name, ok := w.dirs[filepath.Dir(event.Name)]; ok {
				w.schedule(name)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("[Plugin] metadata watcher error: %v", err)
		case <-w.closeCh:
			return
		}
	}
}

func (w *MetadataWatcher) schedule(name string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.pending[name]; ok {
		t.Reset(w.debounce)
		return
	}
	w.pending[name] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.pending, name)
		w.mu.Unlock()

		select {
		case <-w.closeCh:
			return
		default:
		}
		if err := w.registry.ReloadMetadata(name); err != nil {
			logger.Warn("[Plugin] failed to reload metadata of plugin %q: %v", name, err)
		}
	})
}

// Watched returns the number of watched plugin directories.
func (w *MetadataWatcher) Watched() int {
	return len(w.dirs)
}

// Close stops the watcher. Pending reloads are dropped.
func (w *MetadataWatcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
		w.wg.Wait()

		w.mu.Lock()
		for name, t := range w.pending {
			t.Stop()
			delete(w.pending, name)
		}
		w.mu.Unlock()
	})
	return err
}
