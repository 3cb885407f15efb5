package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/kiosk404/hookmind/internal/hookmind/cmd/hooks"
	"github.com/kiosk404/hookmind/internal/hookmind/cmd/lifecycle"
	"github.com/kiosk404/hookmind/internal/hookmind/cmd/plugins"
	"github.com/kiosk404/hookmind/internal/hookmind/cmd/serve"
	cmdutil "github.com/kiosk404/hookmind/internal/hookmind/cmd/util"
	"github.com/kiosk404/hookmind/internal/hookmind/options"
	"github.com/kiosk404/hookmind/internal/hookmind/service/i18n"
	"github.com/kiosk404/hookmind/internal/hookmind/service/plugin"
	"github.com/kiosk404/hookmind/internal/hookmind/service/plugin/builtin"
	genericapiserver "github.com/kiosk404/hookmind/internal/pkg/server"
	"github.com/kiosk404/hookmind/pkg/logger"
	"github.com/kiosk404/hookmind/pkg/version"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewDefaultHookmindCommand creates the `hookmind` command with default arguments.
func NewDefaultHookmindCommand() *cobra.Command {
	return NewHookmindCommand(os.Stdin, os.Stdout, os.Stderr, os.Args[1:])
}

// NewHookmindCommand creates the `hookmind` command. args are only scanned
// for --config; cobra still parses them on Execute.
func NewHookmindCommand(in io.Reader, out, errOut io.Writer, args []string) *cobra.Command {
	opts := options.NewOptions()
	if cfgFile := lookupConfigFlag(args); cfgFile != "" {
		globalConfigFile = cfgFile
		genericapiserver.LoadConfig(cfgFile, "hookmind")
		if err := viper.Unmarshal(opts); err != nil {
			fmt.Fprintf(errOut, "warning: ignoring configuration file %s: %v\n", cfgFile, err)
		}
	}

	// Parent command to which all subcommands are added.
	cmds := &cobra.Command{
		Use:   "hookmind",
		Short: "hookmind runs and manages event hook plugins",
		Long: fmt.Sprintf("%s\n%s", Banner(), heredoc.Doc(`
			hookmind loads plugins, tracks their lifecycle and dispatches host events
			to the hooks they declare.

			Run "hookmind serve" for the admin API, or use the subcommands below to
			inspect and change plugin state offline.
		`)),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return initLogging(opts)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			logger.FlushLog()
		},
	}
	cmds.SetIn(in)
	cmds.SetOut(out)
	cmds.SetErr(errOut)

	flags := cmds.PersistentFlags()
	addGlobalFlags(flags)
	opts.AddFlags(flags)

	ioStreams := cmdutil.IOStreams{In: in, Out: out, ErrOut: errOut}
	cmdutil.SetupColor(out)
	f := cmdutil.NewFactory(opts)

	cmds.AddCommand(
		serve.NewCmdServe(f, ioStreams),
		plugins.NewCmdPlugins(f, ioStreams),
		hooks.NewCmdHooks(f, ioStreams),
		lifecycle.NewCmdLifecycle(f, ioStreams),
		newCmdVersion(ioStreams),
	)
	addPluginCommands(cmds, opts)

	return cmds
}

func initLogging(opts *options.Options) error {
	if opts.LogOptions.File != "" {
		if err := logger.InitLog(opts.LogOptions.File); err != nil {
			return err
		}
	}
	return logger.SetLevel(opts.LogOptions.Level)
}

// addPluginCommands loads the in-tree plugins into a registry of their own
// and lets them contribute subcommands. Plugins are not activated.
func addPluginCommands(parent *cobra.Command, opts *options.Options) {
	// Loading is logged by serve; keep it out of every CLI invocation.
	std := logger.StandardLogger()
	level := std.GetLevel()
	std.SetLevel(logrus.WarnLevel)
	defer std.SetLevel(level)

	tr, err := i18n.New(opts.I18nOptions.Language)
	if err != nil {
		logger.Debug("[CLI] no translator for plugin commands: %v", err)
		return
	}
	if err := builtin.LoadTranslations(tr, opts.PluginOptions.Dir); err != nil {
		logger.Debug("[CLI] %v", err)
	}

	registry := plugin.NewRegistry(plugin.NewHookTable(), plugin.WithTranslator(tr))
	in := builtin.NewInTreeRegistry(opts.PluginOptions, builtin.Dependencies{
		DataDir:    opts.StoreOptions.DataDir,
		Translator: tr,
	})
	if err := registry.LoadAll(context.Background(), in); err != nil {
		logger.Debug("[CLI] %v", err)
	}
	registry.RegisterCLICommands(parent)
}

func newCmdVersion(ioStreams cmdutil.IOStreams) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version information",
		Args:  cobra.NoArgs,
		Run: func(*cobra.Command, []string) {
			fmt.Fprintln(ioStreams.Out, version.Get().String())
		},
	}
}
