package hookmind

import (
	"context"
	"errors"
	"fmt"

	"github.com/kiosk404/hookmind/internal/hookmind/config"
	"github.com/kiosk404/hookmind/internal/hookmind/events"
	"github.com/kiosk404/hookmind/internal/hookmind/service/i18n"
	"github.com/kiosk404/hookmind/internal/hookmind/service/plugin"
	"github.com/kiosk404/hookmind/internal/hookmind/service/plugin/builtin"
	"github.com/kiosk404/hookmind/internal/hookmind/store"
	"github.com/kiosk404/hookmind/internal/hookmind/store/boltdb"
	"github.com/kiosk404/hookmind/internal/hookmind/store/inmemory"
	genericoptions "github.com/kiosk404/hookmind/internal/pkg/options"
	"github.com/kiosk404/hookmind/pkg/logger"
	"github.com/kiosk404/hookmind/pkg/version"
)

// Runtime is the assembled plugin system: translator, registry with its
// hook table, dispatcher and persistence.
type Runtime struct {
	Translator *i18n.Translator
	Registry   *plugin.Registry
	Dispatcher *plugin.Dispatcher
	Installs   plugin.InstallStore
	Lifecycle  store.LifecycleLog

	cfg     *config.Config
	db      *boltdb.DB
	watcher *plugin.MetadataWatcher
}

// NewRuntime loads translations and every enabled in-tree plugin, then runs
// their PostLoad step. No plugin is activated yet.
func NewRuntime(ctx context.Context, cfg *config.Config) (*Runtime, error) {
	rt := &Runtime{cfg: cfg}

	tr, err := i18n.New(cfg.I18nOptions.Language)
	if err != nil {
		return nil, err
	}
	if err := builtin.LoadTranslations(tr, cfg.PluginOptions.Dir); err != nil {
		return nil, err
	}
	rt.Translator = tr

	if err := rt.openStores(); err != nil {
		return nil, err
	}

	table := plugin.NewHookTable()
	rt.Registry = plugin.NewRegistry(table,
		plugin.WithInstallStore(rt.Installs),
		plugin.WithTranslator(tr),
		plugin.WithSlotConfig(plugin.SlotConfig{plugin.SlotTheme: cfg.PluginOptions.Slots.Theme}),
		plugin.WithFrameworkVersion(version.FrameworkVersion),
	)
	rt.Registry.Subscribe(rt.recordLifecycle)

	dispatchOpts := []plugin.DispatcherOption{plugin.WithPolicies(events.Policies())}
	if cfg.DispatchOptions.HandlerTimeout > 0 {
		dispatchOpts = append(dispatchOpts, plugin.WithHandlerTimeout(cfg.DispatchOptions.HandlerTimeout))
	}
	rt.Dispatcher = plugin.NewDispatcher(table, dispatchOpts...)

	in := builtin.NewInTreeRegistry(cfg.PluginOptions, builtin.Dependencies{
		DataDir:    cfg.StoreOptions.DataDir,
		Translator: tr,
	})
	if err := rt.Registry.LoadAll(ctx, in); err != nil {
		// Plugins that loaded are kept.
		logger.Error("[Hookmind] %v", err)
	}
	if err := rt.Registry.PostLoad(ctx); err != nil {
		logger.Error("[Hookmind] %v", err)
	}
	logger.Info("[Hookmind] %d plugins loaded", rt.Registry.Len())
	return rt, nil
}

func (rt *Runtime) openStores() error {
	switch rt.cfg.StoreOptions.Type {
	case genericoptions.StoreMemory:
		rt.Installs = inmemory.NewInstallStore()
		rt.Lifecycle = inmemory.NewLifecycleStore()
	default:
		db, err := boltdb.Open(rt.cfg.StoreOptions.BoltPath)
		if err != nil {
			return fmt.Errorf("open store %s: %w", rt.cfg.StoreOptions.BoltPath, err)
		}
		rt.db = db
		rt.Installs = boltdb.NewInstallStore(db)
		rt.Lifecycle = boltdb.NewLifecycleStore(db)
	}
	return nil
}

func (rt *Runtime) recordLifecycle(ev plugin.Event) {
	if err := rt.Lifecycle.Append(context.Background(), store.NewLifecycleEntry(ev)); err != nil {
		logger.Warn("[Hookmind] failed to record %s event of plugin %q: %v", ev.Type, ev.Plugin, err)
	}
}

// Start installs plugins that were never installed, activates every plugin
// not explicitly deactivated and, if configured, watches override documents.
func (rt *Runtime) Start(ctx context.Context) error {
	var errs []error
	for _, d := range rt.Registry.List() {
		if d.State() == plugin.StateLoaded && !d.Installed() {
			if err := rt.Registry.Install(ctx, d.Name()); err != nil {
				errs = append(errs, err)
			}
		}
	}
	if err := rt.Registry.ActivateAll(ctx); err != nil {
		errs = append(errs, err)
	}

	if rt.cfg.PluginOptions.WatchMetadata && rt.watcher == nil {
		w, err := plugin.NewMetadataWatcher(rt.Registry, rt.cfg.DispatchOptions.MetadataDebounce)
		if err != nil {
			errs = append(errs, err)
		} else {
			rt.watcher = w
		}
	}
	return errors.Join(errs...)
}

// Close stops the watcher, removes every hook and closes the stores.
func (rt *Runtime) Close(ctx context.Context) {
	if rt.watcher != nil {
		if err := rt.watcher.Close(); err != nil {
			logger.Warn("[Hookmind] close metadata watcher: %v", err)
		}
		rt.watcher = nil
	}
	if rt.Registry != nil {
		rt.Registry.Shutdown(ctx)
	}
	if rt.db != nil {
		if err := rt.db.Close(); err != nil {
			logger.Warn("[Hookmind] close store: %v", err)
		}
		rt.db = nil
	}
}

// Activate installs the plugin if it never was, then activates it.
func (rt *Runtime) Activate(ctx context.Context, name string) error {
	d, ok := rt.Registry.Get(name)
	if !ok {
		return fmt.Errorf("plugin %q: %w", name, plugin.ErrPluginNotFound)
	}
	if !d.Installed() {
		if err := rt.Registry.Install(ctx, name); err != nil {
			return err
		}
	}
	return rt.Registry.Activate(ctx, name)
}
