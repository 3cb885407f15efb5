package plugin

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/kiosk404/hookmind/pkg/logger"
)

// Registry owns the loaded plugins and drives their lifecycle:
//
//	Unloaded → Loaded → Activated ⇄ Deactivated → Uninstalled
//
// Hook declarations are collected and validated at load time and enter the
// hook table only while a plugin is activated. The registry is meant to be
// created once by the host's composition root and passed to whoever needs it.
//
// Thread-safe: the plugin map is guarded by mu, each plugin's transitions by
// its descriptor. No lock is held while dispatching.
type Registry struct {
	mu sync.RWMutex

	// plugins holds all loaded plugins, keyed by plugin name.
	plugins map[string]*Descriptor

	// order preserves the load order of plugins.
	order []string

	table      *HookTable
	installs   InstallStore
	translator Translator
	version    string

	// slotMu guards slots and slotOwners.
	slotMu     sync.Mutex
	slots      SlotConfig
	slotOwners map[string]string

	subMu       sync.RWMutex
	subscribers []func(Event)

	metrics *dispatchMetrics
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithInstallStore persists install records in store.
func WithInstallStore(store InstallStore) RegistryOption {
	return func(r *Registry) {
		r.installs = store
	}
}

// WithTranslator sets the translator used for default descriptions.
func WithTranslator(tr Translator) RegistryOption {
	return func(r *Registry) {
		r.translator = tr
	}
}

// WithSlotConfig sets the exclusive slot configuration.
func WithSlotConfig(cfg SlotConfig) RegistryOption {
	return func(r *Registry) {
		for k, v := range cfg {
			r.slots[k] = v
		}
	}
}

// WithFrameworkVersion overrides the default metadata version.
func WithFrameworkVersion(v string) RegistryOption {
	return func(r *Registry) {
		r.version = v
	}
}

// NewRegistry creates an empty registry that populates table.
func NewRegistry(table *HookTable, opts ...RegistryOption) *Registry {
	r := &Registry{
		plugins:    make(map[string]*Descriptor),
		table:      table,
		slots:      make(SlotConfig),
		slotOwners: make(map[string]string),
		metrics:    globalDispatchMetrics(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Table returns the hook table populated by this registry.
func (r *Registry) Table() *HookTable {
	return r.table
}

// LoadOption configures a single Load call.
type LoadOption func(*loadOptions)

type loadOptions struct {
	dir string
}

// WithDir sets the directory searched for the plugin's override document.
// It takes precedence over DirProvider.
func WithDir(dir string) LoadOption {
	return func(o *loadOptions) {
		o.dir = dir
	}
}

// --- Loading ---

// Load resolves the plugin's metadata and hook declarations and records it
// as StateLoaded. No hook is registered yet. A malformed override document
// or hook declaration aborts the load.
func (r *Registry) Load(ctx context.Context, p Plugin, opts ...LoadOption) (*Descriptor, error) {
	if p == nil {
		return nil, fmt.Errorf("cannot load a nil plugin")
	}
	name := p.Name()
	if name == "" {
		return nil, fmt.Errorf("plugin of type %T has an empty name", p)
	}

	r.mu.RLock()
	_, exists := r.plugins[name]
	r.mu.RUnlock()
	if exists {
		return nil, fmt.Errorf("plugin %q: %w", name, ErrAlreadyLoaded)
	}

	lo := loadOptions{}
	if dp, ok := p.(DirProvider); ok {
		lo.dir = dp.Dir()
	}
	for _, opt := range opts {
		opt(&lo)
	}

	meta, docPath, err := r.resolveMetadata(p, lo.dir)
	if err != nil {
		return nil, err
	}

	var decls []HookDeclaration
	if hp, ok := p.(HookProvider); ok {
		decls = hp.Hooks()
	}
	for _, decl := range decls {
		if err := decl.validate(name); err != nil {
			return nil, err
		}
	}

	d := &Descriptor{
		plugin:       p,
		name:         name,
		dir:          lo.dir,
		declarations: append([]HookDeclaration(nil), decls...),
		metadata:     meta,
		docPath:      docPath,
		state:        StateLoaded,
	}
	// A persisted deactivation is restored so the plugin can be uninstalled
	// without being activated first.
	if rec := r.installRecord(ctx, name); rec != nil {
		d.installed = rec.Installed
		if rec.State == StateDeactivated.String() {
			d.state = StateDeactivated
		}
	}

	r.mu.Lock()
	if _, exists := r.plugins[name]; exists {
		r.mu.Unlock()
		return nil, fmt.Errorf("plugin %q: %w", name, ErrAlreadyLoaded)
	}
	d.baseSeq = r.table.Reserve(len(decls))
	r.plugins[name] = d
	r.order = append(r.order, name)
	r.mu.Unlock()

	logger.Info("[Plugin] loaded plugin %q (version=%s, hooks=%d, theme=%v)",
		name, meta.Version, len(decls), meta.IsTheme())
	r.emit(Event{Type: EventLoaded, Plugin: name})
	return d, nil
}

func (r *Registry) resolveMetadata(p Plugin, dir string) (Metadata, string, error) {
	name := p.Name()
	defaults := DefaultMetadata(r.version)
	if mp, ok := p.(MetadataProvider); ok {
		defaults = mp.DefaultMetadata(defaults)
	}
	doc, path, err := LoadDocument(name, dir)
	if err != nil {
		return Metadata{}, path, err
	}
	meta, err := ResolveMetadata(name, defaults, doc, r.translator)
	if err != nil {
		var pe *MetadataParseError
		if errors.As(err, &pe) && pe.Source == "" {
			pe.Source = path
		}
		return Metadata{}, path, err
	}
	return meta, path, nil
}

// LoadAll instantiates and loads every factory of the in-tree registry in
// order. A failing plugin is skipped; the errors are returned joined.
func (r *Registry) LoadAll(ctx context.Context, in *InTreeRegistry) error {
	if in == nil {
		return nil
	}
	logger.Info("[Plugin] loading %d plugin factories", in.Len())

	var errs []error
	for _, entry := range in.entries {
		p, err := entry.factory(entry.args)
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to create plugin %q: %w", entry.name, err))
			continue
		}
		if _, err := r.Load(ctx, p, entry.opts...); err != nil {
			errs = append(errs, fmt.Errorf("failed to load plugin %q: %w", entry.name, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("failed to load %d plugins: %w", len(errs), errors.Join(errs...))
	}
	return nil
}

// PostLoad calls PostLoader.PostLoad on every loaded plugin that has not been
// post-loaded yet. It must run after translations are available.
func (r *Registry) PostLoad(ctx context.Context) error {
	var errs []error
	for _, d := range r.List() {
		d.mu.Lock()
		done := d.postLoaded
		d.postLoaded = true
		d.mu.Unlock()
		if done {
			continue
		}
		pl, ok := d.plugin.(PostLoader)
		if !ok {
			continue
		}
		if err := pl.PostLoad(ctx); err != nil {
			errs = append(errs, fmt.Errorf("plugin %q PostLoad() failed: %w", d.name, err))
		}
	}
	return errors.Join(errs...)
}

// --- Lifecycle ---

// Activate registers the plugin's hooks. Activating an activated plugin is a
// no-op. If the plugin's Activate callback or the registration fails, the
// hook table is left unchanged.
func (r *Registry) Activate(ctx context.Context, name string) error {
	d, err := r.descriptor(name)
	if err != nil {
		return err
	}
	d.opMu.Lock()
	defer d.opMu.Unlock()

	state := d.State()
	if state == StateActivated {
		return nil
	}
	if !state.canActivate() {
		return &LifecycleOrderError{Plugin: name, Op: "activate", State: state}
	}

	kind := ""
	if d.IsTheme() {
		kind = SlotTheme
	}
	if err := r.claimSlot(kind, name); err != nil {
		return err
	}

	ap, activator := d.plugin.(Activator)
	if activator {
		if err := ap.Activate(ctx); err != nil {
			r.releaseSlot(kind, name)
			return fmt.Errorf("plugin %q Activate() failed: %w", name, err)
		}
	}

	handles, err := r.table.RegisterAll(d.registrations())
	if err != nil {
		r.releaseSlot(kind, name)
		if dp, ok := d.plugin.(Deactivator); ok && activator {
			if derr := dp.Deactivate(ctx); derr != nil {
				logger.Warn("[Plugin] plugin %q Deactivate() error while rolling back activation: %v", name, derr)
			}
		}
		return fmt.Errorf("plugin %q: failed to register hooks: %w", name, err)
	}

	d.mu.Lock()
	d.handles = handles
	d.slot = kind
	d.state = StateActivated
	d.mu.Unlock()

	r.persistState(ctx, d)
	r.metrics.setActive(r.countActive())
	logger.Info("[Plugin] activated plugin %q (%d hooks)", name, len(handles))
	r.emit(Event{Type: EventActivated, Plugin: name})
	return nil
}

// Deactivate removes the plugin's hooks. Deactivating a plugin that is not
// activated is a no-op. The Deactivate callback runs after the hooks are gone;
// its error is returned but the plugin stays deactivated.
func (r *Registry) Deactivate(ctx context.Context, name string) error {
	d, err := r.descriptor(name)
	if err != nil {
		return err
	}
	d.opMu.Lock()
	defer d.opMu.Unlock()

	state := d.State()
	switch state {
	case StateActivated:
	case StateUninstalled:
		return &LifecycleOrderError{Plugin: name, Op: "deactivate", State: state}
	default:
		return nil
	}

	d.mu.Lock()
	handles := d.handles
	slot := d.slot
	d.handles = nil
	d.slot = ""
	d.state = StateDeactivated
	d.mu.Unlock()

	for _, h := range handles {
		if err := r.table.Unregister(h); err != nil {
			logger.Warn("[Plugin] plugin %q: %v", name, err)
		}
	}
	r.releaseSlot(slot, name)

	r.persistState(ctx, d)
	r.metrics.setActive(r.countActive())
	logger.Info("[Plugin] deactivated plugin %q", name)
	r.emit(Event{Type: EventDeactivated, Plugin: name})

	if dp, ok := d.plugin.(Deactivator); ok {
		if err := dp.Deactivate(ctx); err != nil {
			return fmt.Errorf("plugin %q Deactivate() failed: %w", name, err)
		}
	}
	return nil
}

// Install runs the plugin's one-time setup. Installing an installed plugin is
// a no-op.
func (r *Registry) Install(ctx context.Context, name string) error {
	d, err := r.descriptor(name)
	if err != nil {
		return err
	}
	d.opMu.Lock()
	defer d.opMu.Unlock()

	state := d.State()
	if state == StateUninstalled || state == StateUnloaded {
		return &LifecycleOrderError{Plugin: name, Op: "install", State: state}
	}

	if r.isInstalled(ctx, d) {
		logger.Info("[Plugin] plugin %q is already installed, skipping", name)
		return nil
	}

	if ip, ok := d.plugin.(Installer); ok {
		if err := ip.Install(ctx); err != nil {
			return fmt.Errorf("plugin %q Install() failed: %w", name, err)
		}
	}

	d.mu.Lock()
	d.installed = true
	d.mu.Unlock()

	if r.installs != nil {
		now := time.Now().UTC()
		rec := &InstallRecord{
			Plugin:      name,
			Version:     d.Version(),
			Installed:   true,
			State:       state.String(),
			InstalledAt: now,
			UpdatedAt:   now,
		}
		if err := r.installs.Put(ctx, rec); err != nil {
			return fmt.Errorf("plugin %q: failed to persist install record: %w", name, err)
		}
	}

	logger.Info("[Plugin] installed plugin %q", name)
	r.emit(Event{Type: EventInstalled, Plugin: name})
	return nil
}

// Uninstall reverses Install. It is only allowed from StateDeactivated and
// moves the plugin to the terminal StateUninstalled.
func (r *Registry) Uninstall(ctx context.Context, name string) error {
	d, err := r.descriptor(name)
	if err != nil {
		return err
	}
	d.opMu.Lock()
	defer d.opMu.Unlock()

	state := d.State()
	if state != StateDeactivated {
		return &LifecycleOrderError{Plugin: name, Op: "uninstall", State: state}
	}

	if r.isInstalled(ctx, d) {
		if ip, ok := d.plugin.(Installer); ok {
			if err := ip.Uninstall(ctx); err != nil {
				return fmt.Errorf("plugin %q Uninstall() failed: %w", name, err)
			}
		}
	}

	if r.installs != nil {
		if err := r.installs.Delete(ctx, name); err != nil {
			return fmt.Errorf("plugin %q: failed to delete install record: %w", name, err)
		}
	}

	d.mu.Lock()
	d.installed = false
	d.state = StateUninstalled
	d.mu.Unlock()

	logger.Info("[Plugin] uninstalled plugin %q", name)
	r.emit(Event{Type: EventUninstalled, Plugin: name})
	return nil
}

// ActivateAll activates every loaded plugin in load order, except those whose
// install record says they were deactivated. Failures are collected.
func (r *Registry) ActivateAll(ctx context.Context) error {
	var errs []error
	for _, d := range r.List() {
		if !d.State().canActivate() {
			continue
		}
		if rec := r.installRecord(ctx, d.name); rec != nil && rec.State == StateDeactivated.String() {
			logger.Info("[Plugin] plugin %q was deactivated, leaving it inactive", d.name)
			continue
		}
		if err := r.Activate(ctx, d.name); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Shutdown removes every plugin's hooks in reverse load order, without
// persisting the deactivation. Errors are logged.
func (r *Registry) Shutdown(ctx context.Context) {
	names := r.Names()
	for i := len(names) - 1; i >= 0; i-- {
		d, err := r.descriptor(names[i])
		if err != nil {
			continue
		}
		r.shutdownOne(ctx, d)
	}
	r.metrics.setActive(0)
}

func (r *Registry) shutdownOne(ctx context.Context, d *Descriptor) {
	d.opMu.Lock()
	defer d.opMu.Unlock()
	if d.State() != StateActivated {
		return
	}

	removed := r.table.UnregisterPlugin(d.name)
	d.mu.Lock()
	slot := d.slot
	d.handles = nil
	d.slot = ""
	d.state = StateDeactivated
	d.mu.Unlock()
	r.releaseSlot(slot, d.name)

	if dp, ok := d.plugin.(Deactivator); ok {
		if err := dp.Deactivate(ctx); err != nil {
			logger.Warn("[Plugin] plugin %q Deactivate() error: %v", d.name, err)
		}
	}
	logger.Info("[Plugin] stopped plugin %q (%d hooks removed)", d.name, removed)
}

// ReloadMetadata re-reads the plugin's override document and replaces its
// resolved metadata. On error the previous metadata is kept.
func (r *Registry) ReloadMetadata(name string) error {
	d, err := r.descriptor(name)
	if err != nil {
		return err
	}
	meta, path, err := r.resolveMetadata(d.plugin, d.dir)
	if err != nil {
		return err
	}
	d.mu.Lock()
	wasTheme := d.metadata.IsTheme()
	d.metadata = meta
	d.docPath = path
	state := d.state
	d.mu.Unlock()

	if wasTheme != meta.IsTheme() && state == StateActivated {
		logger.Warn("[Plugin] plugin %q changed its theme flag while active; it applies on next activation", name)
	}
	logger.Info("[Plugin] reloaded metadata of plugin %q (version=%s)", name, meta.Version)
	r.emit(Event{Type: EventMetadataReloaded, Plugin: name})
	return nil
}

// --- Query methods ---

// Get returns a loaded plugin by name.
func (r *Registry) Get(name string) (*Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.plugins[name]
	return d, ok
}

// List returns all loaded plugins in load order.
func (r *Registry) List() []*Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*Descriptor, 0, len(r.order))
	for _, name := range r.order {
		result = append(result, r.plugins[name])
	}
	return result
}

// Names returns the names of all loaded plugins in load order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]string, len(r.order))
	copy(result, r.order)
	return result
}

// Len returns the number of loaded plugins.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.plugins)
}

func (r *Registry) descriptor(name string) (*Descriptor, error) {
	d, ok := r.Get(name)
	if !ok {
		return nil, fmt.Errorf("plugin %q: %w", name, ErrPluginNotFound)
	}
	return d, nil
}

func (r *Registry) countActive() int {
	n := 0
	for _, d := range r.List() {
		if d.State() == StateActivated {
			n++
		}
	}
	return n
}

// --- Slots ---

func (r *Registry) claimSlot(kind, name string) error {
	if kind == "" {
		return nil
	}
	r.slotMu.Lock()
	defer r.slotMu.Unlock()
	if err := ResolveSlot(kind, name, r.slotOwners, r.slots); err != nil {
		return err
	}
	r.slotOwners[kind] = name
	return nil
}

func (r *Registry) releaseSlot(kind, name string) {
	if kind == "" {
		return
	}
	r.slotMu.Lock()
	defer r.slotMu.Unlock()
	if r.slotOwners[kind] == name {
		delete(r.slotOwners, kind)
	}
}

// SlotOwner returns the plugin holding slot kind.
func (r *Registry) SlotOwner(kind string) (string, bool) {
	r.slotMu.Lock()
	defer r.slotMu.Unlock()
	owner, ok := r.slotOwners[kind]
	return owner, ok
}

// --- Install records ---

func (r *Registry) installRecord(ctx context.Context, name string) *InstallRecord {
	if r.installs == nil {
		return nil
	}
	rec, err := r.installs.Get(ctx, name)
	if err != nil {
		if !errors.Is(err, ErrInstallRecordNotFound) {
			logger.Warn("[Plugin] plugin %q: failed to read install record: %v", name, err)
		}
		return nil
	}
	return rec
}

func (r *Registry) isInstalled(ctx context.Context, d *Descriptor) bool {
	if rec := r.installRecord(ctx, d.name); rec != nil {
		return rec.Installed
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.installed
}

// persistState records the plugin's state so that ActivateAll honours
// deactivations across restarts.
func (r *Registry) persistState(ctx context.Context, d *Descriptor) {
	if r.installs == nil {
		return
	}
	rec := r.installRecord(ctx, d.name)
	if rec == nil {
		rec = &InstallRecord{Plugin: d.name}
	}
	rec.Version = d.Version()
	rec.State = d.State().String()
	rec.UpdatedAt = time.Now().UTC()
	if err := r.installs.Put(ctx, rec); err != nil {
		logger.Warn("[Plugin] plugin %q: failed to persist state: %v", d.name, err)
	}
}
