package plugin

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(opts ...RegistryOption) *Registry {
	return NewRegistry(NewHookTable(), opts...)
}

func loadActivate(t *testing.T, r *Registry, plugins ...*testPlugin) {
	t.Helper()
	ctx := context.Background()
	for _, p := range plugins {
		_, err := r.Load(ctx, p)
		require.NoError(t, err)
		require.NoError(t, r.Activate(ctx, p.name))
	}
}

func TestRegistry_LoadDoesNotRegister(t *testing.T) {
	r := newTestRegistry()
	tr := &trace{}
	p := &testPlugin{name: "A", hooks: []HookDeclaration{On("ev", tr.record("A"))}}

	d, err := r.Load(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, StateLoaded, d.State())
	assert.Equal(t, "A_PluginDescription", d.Metadata().Description)
	assert.Equal(t, 0, r.Table().Len("ev"))

	_, err = r.Load(context.Background(), &testPlugin{name: "A"})
	assert.True(t, errors.Is(err, ErrAlreadyLoaded))
}

func TestRegistry_LoadRejectsInvalidDeclaration(t *testing.T) {
	r := newTestRegistry()
	p := &testPlugin{name: "Bad", hooks: []HookDeclaration{
		On("fine", noop),
		Hook("ev", HookEntry{Function: noop, Before: true, After: true}),
	}}

	_, err := r.Load(context.Background(), p)
	var ide *InvalidHookDeclarationError
	require.ErrorAs(t, err, &ide)
	assert.Equal(t, "Bad", ide.Plugin)
	assert.Equal(t, 0, r.Len())
}

func TestRegistry_LoadRejectsMalformedDocument(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, DocumentJSON), []byte(`["not", "a", "map"]`), 0o644))

	r := newTestRegistry()
	_, err := r.Load(context.Background(), &testPlugin{name: "P", dir: dir})
	var pe *MetadataParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, filepath.Join(dir, DocumentJSON), pe.Source)
	_, ok := r.Get("P")
	assert.False(t, ok)
}

func TestRegistry_LoadMergesDocument(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, DocumentYAML), []byte("version: \"0.3\"\n"), 0o644))

	r := newTestRegistry(WithTranslator(TranslatorFunc(func(key string) string { return "described " + key })))
	d, err := r.Load(context.Background(), &testPlugin{name: "P"}, WithDir(dir))
	require.NoError(t, err)
	assert.Equal(t, "0.3", d.Version())
	assert.Equal(t, DefaultAuthor, d.Metadata().Author)
	assert.Equal(t, "described P_PluginDescription", d.Metadata().Description)
	assert.Equal(t, filepath.Join(dir, DocumentYAML), d.DocumentPath())
}

func TestRegistry_DeactivateRemovesOnlyOwnHooks(t *testing.T) {
	r := newTestRegistry()
	tr := &trace{}
	loadActivate(t, r,
		&testPlugin{name: "A", hooks: []HookDeclaration{On("ev", tr.record("A")), After("other", tr.record("A"))}},
		&testPlugin{name: "B", hooks: []HookDeclaration{Before("ev", tr.record("B")), On("other", tr.record("B"))}},
		&testPlugin{name: "C", hooks: []HookDeclaration{On("ev", tr.record("C")), Before("other", tr.record("C"))}},
	)
	require.Equal(t, []string{"B", "A", "C"}, pluginsOf(r.Table().ResolvedOrder("ev")))
	require.Equal(t, []string{"C", "B", "A"}, pluginsOf(r.Table().ResolvedOrder("other")))

	require.NoError(t, r.Deactivate(context.Background(), "B"))
	assert.Equal(t, []string{"A", "C"}, pluginsOf(r.Table().ResolvedOrder("ev")))
	assert.Equal(t, []string{"C", "A"}, pluginsOf(r.Table().ResolvedOrder("other")))
}

func TestRegistry_ReactivationRestoresOrder(t *testing.T) {
	r := newTestRegistry()
	tr := &trace{}
	loadActivate(t, r,
		&testPlugin{name: "A", hooks: []HookDeclaration{On("ev", tr.record("A"))}},
		&testPlugin{name: "B", hooks: []HookDeclaration{On("ev", tr.record("B"))}},
		&testPlugin{name: "C", hooks: []HookDeclaration{On("ev", tr.record("C"))}},
	)
	before := pluginsOf(r.Table().ResolvedOrder("ev"))

	ctx := context.Background()
	require.NoError(t, r.Deactivate(ctx, "A"))
	require.NoError(t, r.Activate(ctx, "A"))
	assert.Equal(t, before, pluginsOf(r.Table().ResolvedOrder("ev")))
	assert.Equal(t, 3, r.Table().Len("ev"))
}

func TestRegistry_IdempotentTransitions(t *testing.T) {
	r := newTestRegistry()
	p := &testPlugin{name: "A", hooks: []HookDeclaration{On("ev", noop)}}
	ctx := context.Background()
	_, err := r.Load(ctx, p)
	require.NoError(t, err)

	// Deactivating a plugin that was never activated changes nothing.
	require.NoError(t, r.Deactivate(ctx, "A"))
	d, _ := r.Get("A")
	assert.Equal(t, StateLoaded, d.State())

	require.NoError(t, r.Activate(ctx, "A"))
	require.NoError(t, r.Activate(ctx, "A"))
	assert.Equal(t, 1, r.Table().Len("ev"))
	assert.Equal(t, 1, p.activations)

	require.NoError(t, r.Deactivate(ctx, "A"))
	require.NoError(t, r.Deactivate(ctx, "A"))
	assert.Equal(t, 0, r.Table().Len("ev"))
	assert.Equal(t, StateDeactivated, d.State())
}

func TestRegistry_ActivateFailureLeavesTableUnchanged(t *testing.T) {
	r := newTestRegistry()
	p := &testPlugin{
		name:        "A",
		hooks:       []HookDeclaration{On("ev", noop), Before("other", noop)},
		activateErr: errors.New("dependency missing"),
	}
	ctx := context.Background()
	_, err := r.Load(ctx, p)
	require.NoError(t, err)

	err = r.Activate(ctx, "A")
	require.Error(t, err)
	assert.True(t, errors.Is(err, p.activateErr))
	assert.Empty(t, r.Table().Events())
	d, _ := r.Get("A")
	assert.Equal(t, StateLoaded, d.State())

	p.activateErr = nil
	require.NoError(t, r.Activate(ctx, "A"))
	assert.Equal(t, []string{"ev", "other"}, r.Table().Events())
}

func TestRegistry_LifecycleOrder(t *testing.T) {
	r := newTestRegistry()
	p := &testPlugin{name: "A"}
	ctx := context.Background()
	_, err := r.Load(ctx, p)
	require.NoError(t, err)

	var loe *LifecycleOrderError
	err = r.Uninstall(ctx, "A")
	require.ErrorAs(t, err, &loe)
	assert.Equal(t, StateLoaded, loe.State)

	require.NoError(t, r.Install(ctx, "A"))
	require.NoError(t, r.Activate(ctx, "A"))
	err = r.Uninstall(ctx, "A")
	require.ErrorAs(t, err, &loe)
	assert.Equal(t, StateActivated, loe.State)
	assert.Equal(t, "uninstall", loe.Op)
	assert.Equal(t, 0, p.uninstalls)

	require.NoError(t, r.Deactivate(ctx, "A"))
	require.NoError(t, r.Uninstall(ctx, "A"))
	assert.Equal(t, 1, p.uninstalls)
	d, _ := r.Get("A")
	assert.Equal(t, StateUninstalled, d.State())

	// Uninstalled is terminal.
	require.ErrorAs(t, r.Activate(ctx, "A"), &loe)
	require.ErrorAs(t, r.Install(ctx, "A"), &loe)
	require.ErrorAs(t, r.Deactivate(ctx, "A"), &loe)

	assert.True(t, errors.Is(r.Activate(ctx, "missing"), ErrPluginNotFound))
}

func TestRegistry_InstallOnce(t *testing.T) {
	store := newMemStore()
	r := newTestRegistry(WithInstallStore(store))
	p := &testPlugin{name: "A"}
	ctx := context.Background()
	_, err := r.Load(ctx, p)
	require.NoError(t, err)

	require.NoError(t, r.Install(ctx, "A"))
	require.NoError(t, r.Install(ctx, "A"))
	assert.Equal(t, 1, p.installs)

	rec, err := store.Get(ctx, "A")
	require.NoError(t, err)
	assert.True(t, rec.Installed)

	// A fresh registry over the same store sees the plugin as installed.
	r2 := newTestRegistry(WithInstallStore(store))
	p2 := &testPlugin{name: "A"}
	_, err = r2.Load(ctx, p2)
	require.NoError(t, err)
	require.NoError(t, r2.Install(ctx, "A"))
	assert.Equal(t, 0, p2.installs)
}

func TestRegistry_InstallFailure(t *testing.T) {
	store := newMemStore()
	r := newTestRegistry(WithInstallStore(store))
	p := &testPlugin{name: "A", installErr: errors.New("disk full")}
	ctx := context.Background()
	_, err := r.Load(ctx, p)
	require.NoError(t, err)

	require.Error(t, r.Install(ctx, "A"))
	_, err = store.Get(ctx, "A")
	assert.True(t, errors.Is(err, ErrInstallRecordNotFound))
}

func TestRegistry_ActivateAllHonoursDeactivation(t *testing.T) {
	store := newMemStore()
	ctx := context.Background()

	r := newTestRegistry(WithInstallStore(store))
	loadActivate(t, r, &testPlugin{name: "A"}, &testPlugin{name: "B"})
	require.NoError(t, r.Deactivate(ctx, "B"))

	restarted := newTestRegistry(WithInstallStore(store))
	for _, name := range []string{"A", "B", "C"} {
		_, err := restarted.Load(ctx, &testPlugin{name: name})
		require.NoError(t, err)
	}
	require.NoError(t, restarted.ActivateAll(ctx))

	states := map[string]State{}
	for _, d := range restarted.List() {
		states[d.Name()] = d.State()
	}
	assert.Equal(t, map[string]State{"A": StateActivated, "B": StateDeactivated, "C": StateActivated}, states)

	// The restored deactivation allows uninstalling straight away.
	require.NoError(t, restarted.Uninstall(ctx, "B"))
}

func TestRegistry_ThemeSlot(t *testing.T) {
	theme := func(m Metadata) Metadata {
		m.Theme = true
		return m
	}
	ctx := context.Background()

	r := newTestRegistry()
	for _, name := range []string{"Dark", "Light"} {
		_, err := r.Load(ctx, &testPlugin{name: name, meta: theme})
		require.NoError(t, err)
	}
	require.NoError(t, r.Activate(ctx, "Dark"))
	assert.True(t, errors.Is(r.Activate(ctx, "Light"), ErrSlotOccupied))
	owner, _ := r.SlotOwner(SlotTheme)
	assert.Equal(t, "Dark", owner)

	require.NoError(t, r.Deactivate(ctx, "Dark"))
	require.NoError(t, r.Activate(ctx, "Light"))

	configured := newTestRegistry(WithSlotConfig(SlotConfig{SlotTheme: "Light"}))
	for _, name := range []string{"Dark", "Light"} {
		_, err := configured.Load(ctx, &testPlugin{name: name, meta: theme})
		require.NoError(t, err)
	}
	assert.True(t, errors.Is(configured.Activate(ctx, "Dark"), ErrSlotDisabled))
	require.NoError(t, configured.Activate(ctx, "Light"))
}

func TestRegistry_ThemeSlotReleasedAfterThemeFlagReload(t *testing.T) {
	ctx := context.Background()
	dirA := t.TempDir()
	docA := filepath.Join(dirA, DocumentJSON)
	require.NoError(t, os.WriteFile(docA, []byte(`{"theme": true}`), 0o644))
	dirB := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dirB, DocumentJSON), []byte(`{"theme": true}`), 0o644))

	r := newTestRegistry()
	_, err := r.Load(ctx, &testPlugin{name: "ThemeA", dir: dirA})
	require.NoError(t, err)
	_, err = r.Load(ctx, &testPlugin{name: "ThemeB", dir: dirB})
	require.NoError(t, err)
	require.NoError(t, r.Activate(ctx, "ThemeA"))

	require.NoError(t, os.WriteFile(docA, []byte(`{"theme": false}`), 0o644))
	require.NoError(t, r.ReloadMetadata("ThemeA"))
	require.NoError(t, r.Deactivate(ctx, "ThemeA"))

	_, held := r.SlotOwner(SlotTheme)
	assert.False(t, held)
	require.NoError(t, r.Activate(ctx, "ThemeB"))

	// Shutdown releases the slot it claimed as well.
	require.NoError(t, os.WriteFile(filepath.Join(dirB, DocumentJSON), []byte(`{"theme": false}`), 0o644))
	require.NoError(t, r.ReloadMetadata("ThemeB"))
	r.Shutdown(ctx)
	_, held = r.SlotOwner(SlotTheme)
	assert.False(t, held)
}

func TestRegistry_ActivateRollsBackWhenRegistrationFails(t *testing.T) {
	ctx := context.Background()
	r := newTestRegistry()
	p := &testPlugin{name: "A", hooks: []HookDeclaration{On("ev", noop)}}
	d, err := r.Load(ctx, p)
	require.NoError(t, err)

	// Another registration takes the sequence reserved for A.
	_, err = r.Table().RegisterAll([]Registration{{Plugin: "Other", Event: "ev", Handler: noop, Sequence: d.baseSeq}})
	require.NoError(t, err)

	require.Error(t, r.Activate(ctx, "A"))
	assert.Equal(t, StateLoaded, d.State())
	assert.Equal(t, 1, p.activations)
	assert.Equal(t, 1, p.deactivations)
	assert.Equal(t, 1, r.Table().Len("ev"))
}

func TestRegistry_ShutdownSerialisedWithTransitions(t *testing.T) {
	ctx := context.Background()
	for i := 0; i < 50; i++ {
		r := newTestRegistry()
		p := &testPlugin{name: "A", hooks: []HookDeclaration{On("ev", noop), On("other", noop)}}
		loadActivate(t, r, p)

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			r.Shutdown(ctx)
		}()
		go func() {
			defer wg.Done()
			_ = r.Deactivate(ctx, "A")
			_ = r.Activate(ctx, "A")
		}()
		wg.Wait()

		d, _ := r.Get("A")
		if d.State() == StateActivated {
			assert.Equal(t, 1, r.Table().Len("ev"))
			assert.Len(t, d.handles, 2)
		} else {
			assert.Equal(t, 0, r.Table().Len("ev"))
			assert.Empty(t, d.handles)
		}
	}
}

func TestRegistry_LoadAllContinuesPastFailures(t *testing.T) {
	in := NewInTreeRegistry()
	in.Register("A", func(PluginArgs) (Plugin, error) { return &testPlugin{name: "A"}, nil }, nil)
	in.Register("broken", func(PluginArgs) (Plugin, error) { return nil, errors.New("no config") }, nil)
	in.Register("B", func(args PluginArgs) (Plugin, error) {
		return &testPlugin{name: args["name"].(string)}, nil
	}, PluginArgs{"name": "B"})

	r := newTestRegistry()
	err := r.LoadAll(context.Background(), in)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
	assert.Equal(t, []string{"A", "B"}, r.Names())
}

func TestRegistry_PostLoadOnce(t *testing.T) {
	r := newTestRegistry()
	p := &testPlugin{name: "A", hooks: []HookDeclaration{On("ev", noop)}}
	ctx := context.Background()
	_, err := r.Load(ctx, p)
	require.NoError(t, err)

	require.NoError(t, r.PostLoad(ctx))
	require.NoError(t, r.PostLoad(ctx))
	assert.Equal(t, 1, p.postLoads)
	assert.Equal(t, 0, r.Table().Len("ev"))
}

func TestRegistry_ShutdownReverseOrder(t *testing.T) {
	r := newTestRegistry()
	loadActivate(t, r,
		&testPlugin{name: "A", hooks: []HookDeclaration{On("ev", noop)}},
		&testPlugin{name: "B", hooks: []HookDeclaration{On("ev", noop)}},
	)

	var order []string
	r.Subscribe(func(ev Event) { order = append(order, ev.Plugin) })
	r.Shutdown(context.Background())
	assert.Empty(t, r.Table().Events())
	for _, d := range r.List() {
		assert.Equal(t, StateDeactivated, d.State())
	}
	// Shutdown does not emit lifecycle events.
	assert.Empty(t, order)
}

func TestRegistry_SubscribeRecoversPanics(t *testing.T) {
	r := newTestRegistry()
	var events []Event
	r.Subscribe(func(Event) { panic("subscriber bug") })
	r.Subscribe(func(ev Event) { events = append(events, ev) })

	loadActivate(t, r, &testPlugin{name: "A"})
	require.NoError(t, r.Deactivate(context.Background(), "A"))

	assert.Equal(t, []Event{
		{Type: EventLoaded, Plugin: "A"},
		{Type: EventActivated, Plugin: "A"},
		{Type: EventDeactivated, Plugin: "A"},
	}, events)
}

func TestRegistry_ReloadMetadata(t *testing.T) {
	dir := t.TempDir()
	r := newTestRegistry()
	d, err := r.Load(context.Background(), &testPlugin{name: "P", dir: dir})
	require.NoError(t, err)
	assert.Equal(t, DefaultLicense, d.Metadata().License)

	require.NoError(t, os.WriteFile(filepath.Join(dir, DocumentJSON), []byte(`{"license": "MIT"}`), 0o644))
	require.NoError(t, r.ReloadMetadata("P"))
	assert.Equal(t, "MIT", d.Metadata().License)

	require.NoError(t, os.WriteFile(filepath.Join(dir, DocumentJSON), []byte(`{"license": 1}`), 0o644))
	require.Error(t, r.ReloadMetadata("P"))
	assert.Equal(t, "MIT", d.Metadata().License)
}

func TestRegistry_ReentrantActivationDuringDispatch(t *testing.T) {
	r := newTestRegistry()
	dispatcher := NewDispatcher(r.Table(), WithoutMetrics())
	tr := &trace{}
	ctx := context.Background()

	_, err := r.Load(ctx, &testPlugin{name: "Late", hooks: []HookDeclaration{On("ev", tr.record("Late"))}})
	require.NoError(t, err)
	loadActivate(t, r, &testPlugin{name: "Trigger", hooks: []HookDeclaration{
		On("ev", func(ctx context.Context, _ interface{}) error {
			return r.Activate(ctx, "Late")
		}),
	}})

	_, err = dispatcher.Dispatch(ctx, "ev", nil)
	require.NoError(t, err)
	assert.Empty(t, tr.get())

	_, err = dispatcher.Dispatch(ctx, "ev", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Late"}, tr.get())
}

func TestState_Parse(t *testing.T) {
	for _, s := range []State{StateUnloaded, StateLoaded, StateActivated, StateDeactivated, StateUninstalled} {
		got, err := ParseState(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
	_, err := ParseState("enabled")
	assert.Error(t, err)
}

func TestRegistry_SubscribeDuringEmit(t *testing.T) {
	r := newTestRegistry()
	var late []Event
	r.Subscribe(func(ev Event) {
		if ev.Type == EventLoaded {
			r.Subscribe(func(ev Event) { late = append(late, ev) })
		}
	})

	loadActivate(t, r, &testPlugin{name: "A"})

	assert.Equal(t, []Event{{Type: EventActivated, Plugin: "A"}}, late)
}
