package options

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
)

// LogOptions configures the process logger.
type LogOptions struct {
	Level string `json:"level" mapstructure:"level"`
	// File is the log file path. Empty logs to stderr only.
	File string `json:"file" mapstructure:"file"`
}

// NewLogOptions returns the default log options.
func NewLogOptions() *LogOptions {
	return &LogOptions{
		Level: logrus.InfoLevel.String(),
	}
}

// Validate checks LogOptions fields.
func (o *LogOptions) Validate() []error {
	var errs []error

	if _, err := logrus.ParseLevel(o.Level); err != nil {
		errs = append(errs, fmt.Errorf("--log.level: %w", err))
	}

	return errs
}

// AddFlags adds flags for the log options.
func (o *LogOptions) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.Level, "log.level", o.Level, "Minimum log level: debug, info, warn, error.")
	fs.StringVar(&o.File, "log.file", o.File, "Log file path. Empty logs to stderr only.")
}
