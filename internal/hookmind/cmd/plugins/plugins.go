// Package plugins implements the "hookmind plugins" commands.
package plugins

import (
	"context"
	"fmt"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/kiosk404/hookmind/internal/hookmind"
	cmdutil "github.com/kiosk404/hookmind/internal/hookmind/cmd/util"
	"github.com/kiosk404/hookmind/internal/hookmind/service/plugin"
	"github.com/mitchellh/go-wordwrap"
	"github.com/spf13/cobra"
)

const descriptionWidth = 72

// Options is the options struct shared by the plugins subcommands.
type Options struct {
	f cmdutil.Factory
	cmdutil.IOStreams
}

// NewCmdPlugins returns the "plugins" command group.
func NewCmdPlugins(f cmdutil.Factory, ioStreams cmdutil.IOStreams) *cobra.Command {
	o := &Options{f: f, IOStreams: ioStreams}

	cmd := &cobra.Command{
		Use:   "plugins",
		Short: "Inspect and manage the plugin lifecycle",
		Long: heredoc.Doc(`
			Inspect and manage plugins.

			A plugin moves through loaded, activated, deactivated and uninstalled.
			Install runs once; uninstall is only allowed once the plugin is
			deactivated and cannot be undone.
		`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List loaded plugins",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return o.withRuntime(cmd.Context(), false, o.list)
			},
		},
		&cobra.Command{
			Use:     "info NAME",
			Short:   "Show a plugin's metadata and hook declarations",
			Example: "  hookmind plugins info VisitorInterest",
			Args:    cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return o.withRuntime(cmd.Context(), false, func(ctx context.Context, rt *hookmind.Runtime) error {
					return o.info(rt, args[0])
				})
			},
		},
		o.transitionCmd("install", "Run a plugin's one-time install step", false, func(ctx context.Context, rt *hookmind.Runtime, name string) error {
			return rt.Registry.Install(ctx, name)
		}),
		o.transitionCmd("activate", "Activate a plugin, installing it first if needed", false, func(ctx context.Context, rt *hookmind.Runtime, name string) error {
			return rt.Activate(ctx, name)
		}),
		o.transitionCmd("deactivate", "Deactivate a plugin; stays deactivated across restarts", true, func(ctx context.Context, rt *hookmind.Runtime, name string) error {
			return rt.Registry.Deactivate(ctx, name)
		}),
		o.transitionCmd("uninstall", "Uninstall a deactivated plugin", false, func(ctx context.Context, rt *hookmind.Runtime, name string) error {
			return rt.Registry.Uninstall(ctx, name)
		}),
	)
	return cmd
}

func (o *Options) transitionCmd(op, short string, start bool, fn func(context.Context, *hookmind.Runtime, string) error) *cobra.Command {
	return &cobra.Command{
		Use:     op + " NAME",
		Short:   short,
		Example: fmt.Sprintf("  hookmind plugins %s Live", op),
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.withRuntime(cmd.Context(), start, func(ctx context.Context, rt *hookmind.Runtime) error {
				name := args[0]
				if err := fn(ctx, rt, name); err != nil {
					return err
				}
				d, _ := rt.Registry.Get(name)
				fmt.Fprintf(o.Out, "plugin %s: %s\n", name, cmdutil.StateColor(d.State().String()))
				return nil
			})
		},
	}
}

func (o *Options) withRuntime(ctx context.Context, start bool, fn func(context.Context, *hookmind.Runtime) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	rt, err := o.f.Runtime(ctx, start)
	if err != nil {
		return err
	}
	defer rt.Close(ctx)
	return fn(ctx, rt)
}

func (o *Options) list(_ context.Context, rt *hookmind.Runtime) error {
	descriptors := rt.Registry.List()
	if len(descriptors) == 0 {
		fmt.Fprintln(o.Out, "No plugins loaded.")
		return nil
	}
	table := cmdutil.NewTable("NAME", "STATE", "INSTALLED", "VERSION", "THEME", "DESCRIPTION")
	for _, d := range descriptors {
		table.AddRow(d.Name(), cmdutil.StateColor(d.State().String()), d.Installed(), d.Version(), d.IsTheme(), firstLine(d.Metadata().Description))
	}
	fmt.Fprintln(o.Out, table)
	return nil
}

func (o *Options) info(rt *hookmind.Runtime, name string) error {
	d, ok := rt.Registry.Get(name)
	if !ok {
		return fmt.Errorf("plugin %q: %w", name, plugin.ErrPluginNotFound)
	}
	meta := d.Metadata()

	fmt.Fprintf(o.Out, "%-12s %s\n", "Name:", d.Name())
	fmt.Fprintf(o.Out, "%-12s %s\n", "State:", cmdutil.StateColor(d.State().String()))
	fmt.Fprintf(o.Out, "%-12s %t\n", "Installed:", d.Installed())
	fmt.Fprintf(o.Out, "%-12s %s\n", "Version:", meta.Version)
	fmt.Fprintf(o.Out, "%-12s %s (%s)\n", "Author:", meta.Author, meta.AuthorHomepage)
	fmt.Fprintf(o.Out, "%-12s %s (%s)\n", "License:", meta.License, meta.LicenseHomepage)
	fmt.Fprintf(o.Out, "%-12s %s\n", "Homepage:", meta.Homepage)
	fmt.Fprintf(o.Out, "%-12s %t\n", "Theme:", meta.IsTheme())
	if path := d.DocumentPath(); path != "" {
		fmt.Fprintf(o.Out, "%-12s %s\n", "Document:", path)
	}
	fmt.Fprintf(o.Out, "Description:\n%s\n", indent(wordwrap.WrapString(meta.Description, descriptionWidth), "  "))

	decls := d.Declarations()
	if len(decls) == 0 {
		return nil
	}
	fmt.Fprintln(o.Out, "Hooks:")
	table := cmdutil.NewTable("EVENT", "ORDER")
	for _, decl := range decls {
		table.AddRow(decl.Event, decl.Order.String())
	}
	fmt.Fprintln(o.Out, table)
	return nil
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(wordwrap.WrapString(s, descriptionWidth), "\n")
	if len(line) < len(s) {
		return line + "..."
	}
	return line
}

func indent(s, prefix string) string {
	return prefix + strings.ReplaceAll(s, "\n", "\n"+prefix)
}
