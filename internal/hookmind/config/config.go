package config

import (
	"github.com/kiosk404/hookmind/internal/hookmind/options"
)

// Config is the running configuration structure of the hookmind service.
type Config struct {
	*options.Options
}

// CreateConfigFromOptions creates a running configuration instance based
// on a given hookmind command line or configuration file option.
func CreateConfigFromOptions(opts *options.Options) (*Config, error) {
	if err := opts.Complete(); err != nil {
		return nil, err
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Config{opts}, nil
}
