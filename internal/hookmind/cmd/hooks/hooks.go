// Package hooks implements the "hookmind hooks" commands.
package hooks

import (
	"context"
	"fmt"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/kiosk404/hookmind/internal/hookmind"
	cmdutil "github.com/kiosk404/hookmind/internal/hookmind/cmd/util"
	"github.com/kiosk404/hookmind/internal/hookmind/events"
	"github.com/kiosk404/hookmind/pkg/utils/json"
	"github.com/spf13/cobra"
)

// Options is the options struct shared by the hooks subcommands.
type Options struct {
	f cmdutil.Factory
	cmdutil.IOStreams

	data string
}

// NewCmdHooks returns the "hooks" command group.
func NewCmdHooks(f cmdutil.Factory, ioStreams cmdutil.IOStreams) *cobra.Command {
	o := &Options{f: f, IOStreams: ioStreams}

	cmd := &cobra.Command{
		Use:   "hooks",
		Short: "Inspect the hook table and dispatch events",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	dispatch := &cobra.Command{
		Use:   "dispatch EVENT",
		Short: "Dispatch an event to the activated plugins and print the resulting context",
		Long: heredoc.Doc(`
			Dispatch an event to every activated plugin in resolved order and print
			the context afterwards. --data seeds the context with JSON.
		`),
		Example: heredoc.Doc(`
			# Collect the menu
			hookmind hooks dispatch Menu.add

			# Archive one day of visits
			hookmind hooks dispatch ArchiveProcessing_Day.compute \
			  --data '{"site_id":1,"period":"day","date":"2026-10-14","visits":[{"duration_seconds":42,"actions":3,"visit_count":1}]}'
		`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.withRuntime(cmd.Context(), func(ctx context.Context, rt *hookmind.Runtime) error {
				return o.dispatch(ctx, rt, args[0])
			})
		},
	}
	dispatch.Flags().StringVar(&o.data, "data", "", "JSON used to seed the event context.")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List hooked events with their handler count and failure policy",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return o.withRuntime(cmd.Context(), o.list)
			},
		},
		&cobra.Command{
			Use:     "order EVENT",
			Short:   "Show the resolved handler order of an event",
			Example: "  hookmind hooks order Menu.add",
			Args:    cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return o.withRuntime(cmd.Context(), func(_ context.Context, rt *hookmind.Runtime) error {
					return o.order(rt, args[0])
				})
			},
		},
		dispatch,
	)
	return cmd
}

func (o *Options) withRuntime(ctx context.Context, fn func(context.Context, *hookmind.Runtime) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	rt, err := o.f.Runtime(ctx, true)
	if err != nil {
		return err
	}
	defer rt.Close(ctx)
	return fn(ctx, rt)
}

func (o *Options) list(_ context.Context, rt *hookmind.Runtime) error {
	table := cmdutil.NewTable("EVENT", "HANDLERS", "POLICY")
	for _, event := range rt.Registry.Table().Events() {
		table.AddRow(event, rt.Registry.Table().Len(event), rt.Dispatcher.Policy(event).String())
	}
	fmt.Fprintln(o.Out, table)
	return nil
}

func (o *Options) order(rt *hookmind.Runtime, event string) error {
	regs := rt.Registry.Table().ResolvedOrder(event)
	if len(regs) == 0 {
		fmt.Fprintf(o.Out, "No handler registered for %s.\n", event)
		return nil
	}
	table := cmdutil.NewTable("#", "PLUGIN", "ORDER", "SEQUENCE")
	for i, reg := range regs {
		table.AddRow(i+1, reg.Plugin, reg.Order.String(), reg.Sequence)
	}
	fmt.Fprintln(o.Out, table)
	return nil
}

func (o *Options) dispatch(ctx context.Context, rt *hookmind.Runtime, event string) error {
	data := events.NewContext(event)
	if data == nil {
		return fmt.Errorf("event %q has no dispatch context; known events: %v", event, events.Known())
	}
	if o.data != "" {
		if err := json.Unmarshal([]byte(o.data), data); err != nil {
			return fmt.Errorf("parse --data: %w", err)
		}
	}
	out, err := rt.Dispatcher.Dispatch(ctx, event, data)
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(o.Out, string(b))
	return nil
}
