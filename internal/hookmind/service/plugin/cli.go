package plugin

import (
	"github.com/spf13/cobra"
)

// CLIRegistrar adds plugin-specific subcommands to a parent command.
type CLIRegistrar interface {
	RegisterCommands(parent *cobra.Command)
}

// CLIProvider is an optional plugin interface for plugins that provide CLI commands.
type CLIProvider interface {
	Plugin
	CLIRegistrars() []CLIRegistrar
}

// RegisterCLICommands lets every loaded, not uninstalled plugin add its
// subcommands to parent, in load order.
func (r *Registry) RegisterCLICommands(parent *cobra.Command) {
	for _, d := range r.List() {
		if d.State() == StateUninstalled {
			continue
		}
		cp, ok := d.Plugin().(CLIProvider)
		if !ok {
			continue
		}
		for _, registrar := range cp.CLIRegistrars() {
			registrar.RegisterCommands(parent)
		}
	}
}
