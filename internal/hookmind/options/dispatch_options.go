package options

import (
	"errors"
	"time"

	"github.com/spf13/pflag"
)

// DispatchOptions configures the event dispatcher.
type DispatchOptions struct {
	// HandlerTimeout bounds each handler invocation. Zero disables it.
	HandlerTimeout time.Duration `json:"handler-timeout" mapstructure:"handler-timeout"`
	// MetadataDebounce delays metadata reloads after a file change.
	MetadataDebounce time.Duration `json:"metadata-debounce" mapstructure:"metadata-debounce"`
}

func NewDispatchOptions() *DispatchOptions {
	return &DispatchOptions{
		MetadataDebounce: 500 * time.Millisecond,
	}
}

func (o *DispatchOptions) Validate() []error {
	var errs []error
	if o.HandlerTimeout < 0 {
		errs = append(errs, errors.New("--dispatch.handler-timeout must not be negative"))
	}
	if o.MetadataDebounce < 0 {
		errs = append(errs, errors.New("--dispatch.metadata-debounce must not be negative"))
	}
	return errs
}

func (o *DispatchOptions) AddFlags(fs *pflag.FlagSet) {
	fs.DurationVar(&o.HandlerTimeout, "dispatch.handler-timeout", o.HandlerTimeout, "Per-handler timeout; 0 disables it.")
	fs.DurationVar(&o.MetadataDebounce, "dispatch.metadata-debounce", o.MetadataDebounce, "Delay before reloading a changed override document.")
}
