package plugin

import (
	"sync"
)

// Descriptor is the registry's record of one loaded plugin.
type Descriptor struct {
	plugin Plugin
	name   string
	dir    string

	// declarations and baseSeq are fixed at load time.
	declarations []HookDeclaration
	baseSeq      uint64

	// opMu serialises lifecycle transitions of this plugin.
	opMu sync.Mutex

	mu         sync.RWMutex
	metadata   Metadata
	docPath    string
	state      State
	handles    []RegistrationHandle
	slot       string // slot kind claimed by the current activation
	postLoaded bool
	installed  bool
}

// Name returns the plugin name.
func (d *Descriptor) Name() string { return d.name }

// Plugin returns the plugin instance.
func (d *Descriptor) Plugin() Plugin { return d.plugin }

// Dir returns the plugin directory, or "" when the plugin has none.
func (d *Descriptor) Dir() string { return d.dir }

// Metadata returns the resolved metadata.
func (d *Descriptor) Metadata() Metadata {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.metadata
}

// DocumentPath returns the override document the metadata was merged from.
func (d *Descriptor) DocumentPath() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.docPath
}

// Version returns the resolved metadata version.
func (d *Descriptor) Version() string {
	return d.Metadata().Version
}

// IsTheme reports whether the resolved metadata marks the plugin as a theme.
func (d *Descriptor) IsTheme() bool {
	return d.Metadata().IsTheme()
}

// State returns the current lifecycle state.
func (d *Descriptor) State() State {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.state
}

// Installed reports whether the plugin's Install step has run.
func (d *Descriptor) Installed() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.installed
}

// Declarations returns a copy of the plugin's hook declarations.
func (d *Descriptor) Declarations() []HookDeclaration {
	return append([]HookDeclaration(nil), d.declarations...)
}

// registrations builds the table registrations for the declarations, reusing
// the sequence block reserved at load time.
func (d *Descriptor) registrations() []Registration {
	regs := make([]Registration, len(d.declarations))
	for i, decl := range d.declarations {
		regs[i] = Registration{
			Plugin:   d.name,
			Event:    decl.Event,
			Handler:  decl.Handler,
			Order:    decl.Order,
			Sequence: d.baseSeq + uint64(i),
		}
	}
	return regs
}

func (d *Descriptor) setState(s State) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state = s
}
