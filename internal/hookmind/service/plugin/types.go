package plugin

import (
	"context"
)

// Plugin is the interface every plugin implements. Everything else a plugin
// can do is expressed through the optional interfaces below, which the
// registry probes for.
type Plugin interface {
	// Name returns the unique identifier of this plugin. It is used as the
	// registry key and as the prefix of its translation keys.
	Name() string
}

// HookProvider is implemented by plugins that register hook handlers.
// Hooks must be a pure function of the plugin: it is called once at load time
// and the result is frozen for the plugin's lifetime.
type HookProvider interface {
	Plugin
	Hooks() []HookDeclaration
}

// MetadataProvider lets a plugin supply compiled-in metadata that replaces
// the process-wide defaults before the override document is merged.
type MetadataProvider interface {
	Plugin
	DefaultMetadata(defaults Metadata) Metadata
}

// DirProvider tells the registry where a plugin's files (override document,
// translations, assets) live.
type DirProvider interface {
	Plugin
	Dir() string
}

// PostLoader is called once after all plugins are loaded and translations are available.
type PostLoader interface {
	Plugin
	PostLoad(ctx context.Context) error
}

// Installer owns one-time external setup, such as creating storage schema.
type Installer interface {
	Plugin
	Install(ctx context.Context) error
	Uninstall(ctx context.Context) error
}

// Activator is called every time the plugin is enabled, before its hooks are registered.
type Activator interface {
	Plugin
	Activate(ctx context.Context) error
}

// Deactivator is called every time the plugin is disabled, after its hooks are removed.
type Deactivator interface {
	Plugin
	Deactivate(ctx context.Context) error
}

// PluginFactory creates a plugin instance from its arguments.
type PluginFactory func(args PluginArgs) (Plugin, error)

// PluginArgs carries per-plugin configuration into a PluginFactory.
type PluginArgs map[string]interface{}

// Translator looks up a translated string by key. Implementations return the
// key itself when no translation exists.
type Translator interface {
	Translate(key string) string
}

// TranslatorFunc adapts a function to Translator.
type TranslatorFunc func(key string) string

func (f TranslatorFunc) Translate(key string) string { return f(key) }
