package options

import (
	"fmt"
	"strings"

	"github.com/bytedance/gg/gptr"
	"github.com/spf13/pflag"
)

// SlotNone disables every plugin of a slot kind.
const SlotNone = "none"

// PluginsOptions holds the top-level configuration for the plugin system.
type PluginsOptions struct {
	// Enabled controls whether the plugin system is enabled. (default: true)
	Enabled bool `json:"enabled" mapstructure:"enabled"`
	// Dir is the root of the plugin directories. Each plugin reads its
	// override document from <Dir>/<name>.
	Dir string `json:"dir" mapstructure:"dir"`
	// Allow lists plugins that are explicitly allowed to be loaded.
	// Empty means every in-tree plugin.
	Allow []string `json:"allow" mapstructure:"allow"`
	// Deny lists plugins that are explicitly denied to be loaded.
	Deny []string `json:"deny" mapstructure:"deny"`
	// Slots controls which plugin occupies each exclusive slot.
	Slots PluginSlotsConfig `json:"slots" mapstructure:"slots"`
	// Entries holds per-plugin configuration keyed by plugin name.
	// (e.g. "Live", "VisitorInterest")
	Entries map[string]PluginEntryConfig `json:"entries" mapstructure:"entries"`
	// WatchMetadata reloads override documents when they change on disk.
	WatchMetadata bool `json:"watch-metadata" mapstructure:"watch-metadata"`
}

// PluginSlotsConfig maps slot kind -> desired plugin name.
type PluginSlotsConfig struct {
	Theme string `json:"theme" mapstructure:"theme"`
}

// PluginEntryConfig holds per-plugin configuration.
type PluginEntryConfig struct {
	Enabled *bool                  `json:"enabled,omitempty" mapstructure:"enabled"`
	Config  map[string]interface{} `json:"config,omitempty" mapstructure:"config"`
}

// NewPluginsOptions returns a new instance of PluginsOptions.
func NewPluginsOptions() *PluginsOptions {
	return &PluginsOptions{
		Enabled: true,
		Dir:     "plugins",
		Allow:   []string{},
		Deny:    []string{},
		Entries: make(map[string]PluginEntryConfig),
	}
}

// IsAllowed reports whether the plugin passes the allow/deny lists and its
// entry switch. Deny wins over Allow. Names match case-insensitively since
// configuration keys are lower-cased when read from files.
func (o *PluginsOptions) IsAllowed(name string) bool {
	if containsFold(o.Deny, name) {
		return false
	}
	if entry, ok := o.entry(name); ok && !gptr.IndirectOr(entry.Enabled, true) {
		return false
	}
	return len(o.Allow) == 0 || containsFold(o.Allow, name)
}

// EntryConfig returns the plugin's config map, never nil.
func (o *PluginsOptions) EntryConfig(name string) map[string]interface{} {
	if entry, ok := o.entry(name); ok && entry.Config != nil {
		return entry.Config
	}
	return map[string]interface{}{}
}

func (o *PluginsOptions) entry(name string) (PluginEntryConfig, bool) {
	if entry, ok := o.Entries[name]; ok {
		return entry, true
	}
	for key, entry := range o.Entries {
		if strings.EqualFold(key, name) {
			return entry, true
		}
	}
	return PluginEntryConfig{}, false
}

func containsFold(list []string, name string) bool {
	for _, s := range list {
		if strings.EqualFold(s, name) {
			return true
		}
	}
	return false
}

// Validate checks PluginsOptions fields.
func (o *PluginsOptions) Validate() []error {
	var errs []error

	if o.Slots.Theme != "" && o.Slots.Theme != SlotNone && !validPluginName(o.Slots.Theme) {
		errs = append(errs, fmt.Errorf("invalid theme slot plugin name %q", o.Slots.Theme))
	}
	for _, name := range append(append([]string{}, o.Allow...), o.Deny...) {
		if !validPluginName(name) {
			errs = append(errs, fmt.Errorf("invalid plugin name %q in allow/deny list", name))
		}
	}
	for name := range o.Entries {
		if !validPluginName(name) {
			errs = append(errs, fmt.Errorf("invalid plugin name %q in entries", name))
		}
	}

	return errs
}

// Plugin names are identifier-like.
func validPluginName(name string) bool {
	if name == "" {
		return false
	}
	for _, c := range name {
		if !((c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '-' || c == '_') {
			return false
		}
	}
	return true
}

// AddFlags adds flags for the plugins options.
// Only global-level switches are exposed as CLI flags.
// Per-plugin configuration is done via the configuration file.
func (o *PluginsOptions) AddFlags(fs *pflag.FlagSet) {
	fs.BoolVar(&o.Enabled, "plugins.enabled", o.Enabled, "Enable the plugin system.")
	fs.StringVar(&o.Dir, "plugins.dir", o.Dir, "Root directory of the plugin override documents.")
	fs.StringSliceVar(&o.Allow, "plugins.allow", o.Allow, "Plugins allowed to load. Empty allows every in-tree plugin.")
	fs.StringSliceVar(&o.Deny, "plugins.deny", o.Deny, "Plugins denied from loading.")
	fs.StringVar(&o.Slots.Theme, "plugins.slots.theme", o.Slots.Theme, "Plugin occupying the theme slot, or \"none\".")
	fs.BoolVar(&o.WatchMetadata, "plugins.watch-metadata", o.WatchMetadata, "Reload override documents when they change on disk.")
}
