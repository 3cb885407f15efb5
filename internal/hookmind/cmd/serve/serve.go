// Package serve implements the "hookmind serve" command.
package serve

import (
	"github.com/MakeNowJust/heredoc/v2"
	"github.com/kiosk404/hookmind/internal/hookmind"
	cmdutil "github.com/kiosk404/hookmind/internal/hookmind/cmd/util"
	"github.com/kiosk404/hookmind/internal/hookmind/config"
	"github.com/kiosk404/hookmind/pkg/logger"
	"github.com/spf13/cobra"
)

// NewCmdServe returns the command running the admin server.
func NewCmdServe(f cmdutil.Factory, _ cmdutil.IOStreams) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the plugin runtime and its admin HTTP API",
		Long: heredoc.Doc(`
			Load, install and activate the configured plugins, then serve the admin
			API until interrupted. Plugins are shut down in reverse order on exit.
		`),
		Args: cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			cfg, err := config.CreateConfigFromOptions(f.Options())
			if err != nil {
				return err
			}
			logger.Debug("[Hookmind] options: %s", cfg.String())
			return hookmind.Run(cfg)
		},
	}
}
