package plugin

import (
	"context"
	"errors"
	"sort"
	"sync"
)

// testPlugin records every handler invocation into a shared trace.
type testPlugin struct {
	name  string
	dir   string
	hooks []HookDeclaration
	meta  func(Metadata) Metadata

	activateErr   error
	deactivateErr error
	installErr    error

	mu          sync.Mutex
	installs    int
	uninstalls  int
	activations   int
	deactivations int
	postLoads     int
}

func (p *testPlugin) Name() string             { return p.name }
func (p *testPlugin) Hooks() []HookDeclaration { return p.hooks }
func (p *testPlugin) Dir() string              { return p.dir }

func (p *testPlugin) DefaultMetadata(defaults Metadata) Metadata {
	if p.meta == nil {
		return defaults
	}
	return p.meta(defaults)
}

func (p *testPlugin) Activate(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.activateErr != nil {
		return p.activateErr
	}
	p.activations++
	return nil
}

func (p *testPlugin) Deactivate(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.deactivations++
	return p.deactivateErr
}

func (p *testPlugin) Install(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.installErr != nil {
		return p.installErr
	}
	p.installs++
	return nil
}

func (p *testPlugin) Uninstall(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.uninstalls++
	return nil
}

func (p *testPlugin) PostLoad(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.postLoads++
	return nil
}

// trace collects the names of invoked handlers in order.
type trace struct {
	mu    sync.Mutex
	names []string
}

func (t *trace) record(name string) HandlerFunc {
	return func(context.Context, interface{}) error {
		t.mu.Lock()
		defer t.mu.Unlock()
		t.names = append(t.names, name)
		return nil
	}
}

func (t *trace) fail(name string, err error) HandlerFunc {
	return func(context.Context, interface{}) error {
		t.mu.Lock()
		defer t.mu.Unlock()
		t.names = append(t.names, name)
		return err
	}
}

func (t *trace) get() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.names...)
}

func pluginsOf(regs []Registration) []string {
	out := make([]string, len(regs))
	for i, r := range regs {
		out[i] = r.Plugin
	}
	return out
}

// memStore is an in-process InstallStore for registry tests.
type memStore struct {
	mu      sync.Mutex
	records map[string]InstallRecord
}

func newMemStore() *memStore {
	return &memStore{records: make(map[string]InstallRecord)}
}

func (s *memStore) Get(_ context.Context, name string) (*InstallRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[name]
	if !ok {
		return nil, ErrInstallRecordNotFound
	}
	return &rec, nil
}

func (s *memStore) Put(_ context.Context, rec *InstallRecord) error {
	if rec == nil || rec.Plugin == "" {
		return errors.New("invalid record")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.Plugin] = *rec
	return nil
}

func (s *memStore) Delete(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, name)
	return nil
}

func (s *memStore) List(_ context.Context) ([]*InstallRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*InstallRecord, 0, len(s.records))
	for _, rec := range s.records {
		rec := rec
		out = append(out, &rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Plugin < out[j].Plugin })
	return out, nil
}
