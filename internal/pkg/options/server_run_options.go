package options

import (
	"fmt"
	"net"

	"github.com/gin-gonic/gin"
	"github.com/kiosk404/hookmind/internal/pkg/server"
	"github.com/spf13/pflag"
)

// ServerRunOptions contains the options of the admin HTTP server.
type ServerRunOptions struct {
	BindAddress     string `json:"bind-address" mapstructure:"bind-address"`
	BindPort        int    `json:"bind-port"    mapstructure:"bind-port"`
	Mode            string `json:"mode"         mapstructure:"mode"`
	Healthz         bool   `json:"healthz"      mapstructure:"healthz"`
	EnableProfiling bool   `json:"profiling"    mapstructure:"profiling"`
	EnableMetrics   bool   `json:"metrics"      mapstructure:"metrics"`
}

// NewServerRunOptions creates a new ServerRunOptions object with default parameters.
func NewServerRunOptions() *ServerRunOptions {
	return &ServerRunOptions{
		BindAddress:     "127.0.0.1",
		BindPort:        11790,
		Mode:            gin.ReleaseMode,
		Healthz:         true,
		EnableProfiling: false,
		EnableMetrics:   true,
	}
}

// Address returns host:port.
func (s *ServerRunOptions) Address() string {
	return net.JoinHostPort(s.BindAddress, fmt.Sprintf("%d", s.BindPort))
}

// ApplyTo applies the run options to the method receiver and returns self.
func (s *ServerRunOptions) ApplyTo(c *server.Config) error {
	c.BindAddress = s.BindAddress
	c.BindPort = s.BindPort
	c.Mode = s.Mode
	c.Healthz = s.Healthz
	c.EnableProfiling = s.EnableProfiling
	c.EnableMetrics = s.EnableMetrics

	return nil
}

// Validate checks validation of ServerRunOptions.
func (s *ServerRunOptions) Validate() []error {
	var errs []error

	if s.BindPort < 0 || s.BindPort > 65535 {
		errs = append(errs, fmt.Errorf("--server.bind-port %v must be between 0 and 65535", s.BindPort))
	}
	switch s.Mode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
	default:
		errs = append(errs, fmt.Errorf("--server.mode %q must be one of debug, release, test", s.Mode))
	}

	return errs
}

// AddFlags adds flags for a specific APIServer to the specified FlagSet.
func (s *ServerRunOptions) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&s.BindAddress, "server.bind-address", s.BindAddress, "The IP address on which to serve the admin API.")
	fs.IntVar(&s.BindPort, "server.bind-port", s.BindPort, "The port on which to serve the admin API.")
	fs.StringVar(&s.Mode, "server.mode", s.Mode, "Start the server in a specified server mode. Supported server mode: debug, test, release.")
	fs.BoolVar(&s.Healthz, "server.healthz", s.Healthz, "Add self readiness check and install /healthz router.")
	fs.BoolVar(&s.EnableProfiling, "server.profiling", s.EnableProfiling, "Enable profiling via web interface host:port/debug/pprof/.")
	fs.BoolVar(&s.EnableMetrics, "server.metrics", s.EnableMetrics, "Expose prometheus metrics on /metrics.")
}
