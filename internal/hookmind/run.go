package hookmind

import (
	"github.com/kiosk404/hookmind/internal/hookmind/config"
)

// Run starts the admin server and blocks until it stops.
func Run(cfg *config.Config) error {
	server, err := createAPIServer(cfg)
	if err != nil {
		return err
	}

	return server.PrepareRun().Run()
}
