// Package builtin lists the in-tree plugins and resolves their arguments
// from the plugins configuration.
package builtin

import (
	"embed"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/kiosk404/hookmind/internal/hookmind/service/i18n"
	"github.com/kiosk404/hookmind/internal/hookmind/service/plugin"
	"github.com/kiosk404/hookmind/internal/hookmind/service/plugin/builtin/live"
	"github.com/kiosk404/hookmind/internal/hookmind/service/plugin/builtin/visitorinterest"
	genericoptions "github.com/kiosk404/hookmind/internal/pkg/options"
	"github.com/kiosk404/hookmind/pkg/logger"
)

// Dependencies are the runtime values handed to every in-tree plugin.
type Dependencies struct {
	// DataDir holds plugin-owned databases.
	DataDir    string
	Translator plugin.Translator
}

type definition struct {
	name         string
	factory      plugin.PluginFactory
	translations embed.FS
	// dbFile is the default SQLite file under DataDir, if the plugin has one.
	dbFile string
}

// In registration order; it is also the default activation order.
var definitions = []definition{
	{name: live.PluginName, factory: live.Factory, translations: live.Translations},
	{name: visitorinterest.PluginName, factory: visitorinterest.Factory, translations: visitorinterest.Translations, dbFile: "visitorinterest.db"},
}

// Names returns the in-tree plugin names in registration order.
func Names() []string {
	names := make([]string, len(definitions))
	for i, d := range definitions {
		names[i] = d.name
	}
	return names
}

// NewInTreeRegistry creates the in-tree plugin registry. Plugins filtered by
// the allow/deny lists or their entry switch are skipped. Each plugin
// receives plugins.entries.<name>.config as PluginArgs, completed with
// "dir", "db_path" and "translator" when not set.
// The in-tree plugins are:
// - Live: real-time visitor widgets and visitor log menu
// - VisitorInterest: engagement reports and their SQLite archive
func NewInTreeRegistry(opts *genericoptions.PluginsOptions, deps Dependencies) *plugin.InTreeRegistry {
	registry := plugin.NewInTreeRegistry()
	if opts == nil {
		opts = genericoptions.NewPluginsOptions()
	}
	if !opts.Enabled {
		logger.Info("[Builtin] plugin system disabled (plugins.enabled=false), no plugin registered")
		return registry
	}

	for _, d := range definitions {
		if !opts.IsAllowed(d.name) {
			logger.Info("[Builtin] plugin %q disabled by configuration, skipping", d.name)
			continue
		}
		registry.Register(d.name, d.factory, resolveArgs(opts, deps, d))
	}
	return registry
}

func resolveArgs(opts *genericoptions.PluginsOptions, deps Dependencies, d definition) plugin.PluginArgs {
	args := plugin.PluginArgs{}
	for k, v := range opts.EntryConfig(d.name) {
		args[k] = v
	}
	if _, ok := args["dir"]; !ok && opts.Dir != "" {
		args["dir"] = filepath.Join(opts.Dir, d.name)
	}
	if _, ok := args["db_path"]; !ok && d.dbFile != "" && deps.DataDir != "" {
		args["db_path"] = filepath.Join(deps.DataDir, d.dbFile)
	}
	if deps.Translator != nil {
		args["translator"] = deps.Translator
	}
	return args
}

// LoadTranslations loads the core messages, every in-tree plugin's embedded
// messages and then <pluginsDir>/<name>/lang/*.json, which override them.
// It must run before the plugins are loaded so default descriptions resolve.
func LoadTranslations(tr *i18n.Translator, pluginsDir string) error {
	if err := tr.LoadCore(); err != nil {
		return fmt.Errorf("load core translations: %w", err)
	}

	var errs []string
	for _, d := range definitions {
		if err := tr.LoadFS(d.translations, "lang"); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", d.name, err))
			continue
		}
		if pluginsDir == "" {
			continue
		}
		if err := tr.LoadDir(filepath.Join(pluginsDir, d.name, "lang")); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", d.name, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("load plugin translations: %s", strings.Join(errs, "; "))
	}
	logger.Info("[Builtin] translations loaded for languages %v", tr.Languages())
	return nil
}
