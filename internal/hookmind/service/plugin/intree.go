package plugin

// InTreeRegistry is an explicit, ordered list of plugin factories. It is the
// only way plugins enter the registry; nothing is discovered by reflection.
type InTreeRegistry struct {
	entries []inTreeEntry
}

type inTreeEntry struct {
	name    string
	factory PluginFactory
	args    PluginArgs
	opts    []LoadOption
}

// NewInTreeRegistry creates an empty in-tree registry.
func NewInTreeRegistry() *InTreeRegistry {
	return &InTreeRegistry{}
}

// Register appends a plugin factory. name is only used for diagnostics
// before the plugin is instantiated.
func (r *InTreeRegistry) Register(name string, factory PluginFactory, args PluginArgs, opts ...LoadOption) {
	r.entries = append(r.entries, inTreeEntry{
		name:    name,
		factory: factory,
		args:    args,
		opts:    opts,
	})
}

// Len returns the number of registered factories.
func (r *InTreeRegistry) Len() int {
	return len(r.entries)
}

// Names returns the registered names in registration order.
func (r *InTreeRegistry) Names() []string {
	names := make([]string, len(r.entries))
	for i, e := range r.entries {
		names[i] = e.name
	}
	return names
}
