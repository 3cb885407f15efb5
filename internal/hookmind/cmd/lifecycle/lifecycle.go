// Package lifecycle implements the "hookmind lifecycle" command.
package lifecycle

import (
	"context"
	"fmt"

	cmdutil "github.com/kiosk404/hookmind/internal/hookmind/cmd/util"
	"github.com/spf13/cobra"
)

// Options is an options struct to support 'lifecycle' sub command.
type Options struct {
	f     cmdutil.Factory
	limit int
	cmdutil.IOStreams
}

// NewCmdLifecycle returns new initialized instance of 'lifecycle' sub command.
func NewCmdLifecycle(f cmdutil.Factory, ioStreams cmdutil.IOStreams) *cobra.Command {
	o := &Options{f: f, IOStreams: ioStreams}

	cmd := &cobra.Command{
		Use:     "lifecycle",
		Short:   "Show the most recent plugin lifecycle events",
		Example: "  hookmind lifecycle --limit 10",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.Run(cmd.Context())
		},
	}
	cmd.Flags().IntVar(&o.limit, "limit", 20, "Number of events to show; 0 shows all.")
	return cmd
}

// Run executes the lifecycle sub command.
func (o *Options) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	rt, err := o.f.Runtime(ctx, false)
	if err != nil {
		return err
	}
	defer rt.Close(ctx)

	entries, err := rt.Lifecycle.Recent(ctx, o.limit)
	if err != nil {
		return err
	}
	table := cmdutil.NewTable("SEQ", "TIME", "PLUGIN", "EVENT")
	for _, e := range entries {
		table.AddRow(e.Seq, e.Time.Local().Format("2006-01-02 15:04:05"), e.Plugin, e.Type)
	}
	fmt.Fprintln(o.Out, table)
	return nil
}
