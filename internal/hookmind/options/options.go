package options

import (
	"errors"

	genericoptions "github.com/kiosk404/hookmind/internal/pkg/options"
	"github.com/kiosk404/hookmind/pkg/utils/json"
	"github.com/spf13/pflag"
)

type Options struct {
	GenericServerRunOptions *genericoptions.ServerRunOptions `json:"server"   mapstructure:"server"`
	StoreOptions            *genericoptions.StoreOptions     `json:"store"    mapstructure:"store"`
	LogOptions              *genericoptions.LogOptions       `json:"log"      mapstructure:"log"`
	PluginOptions           *genericoptions.PluginsOptions   `json:"plugins"  mapstructure:"plugins"`
	I18nOptions             *I18nOptions                     `json:"i18n"     mapstructure:"i18n"`
	DispatchOptions         *DispatchOptions                 `json:"dispatch" mapstructure:"dispatch"`
}

// AddFlags registers every option group on fs.
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	o.GenericServerRunOptions.AddFlags(fs)
	o.StoreOptions.AddFlags(fs)
	o.LogOptions.AddFlags(fs)
	o.PluginOptions.AddFlags(fs)
	o.I18nOptions.AddFlags(fs)
	o.DispatchOptions.AddFlags(fs)
}

func NewOptions() *Options {
	return &Options{
		GenericServerRunOptions: genericoptions.NewServerRunOptions(),
		StoreOptions:            genericoptions.NewStoreOptions(),
		LogOptions:              genericoptions.NewLogOptions(),
		PluginOptions:           genericoptions.NewPluginsOptions(),
		I18nOptions:             NewI18nOptions(),
		DispatchOptions:         NewDispatchOptions(),
	}
}

// Validate checks every option group and joins the errors.
func (o *Options) Validate() error {
	var errs []error
	errs = append(errs, o.GenericServerRunOptions.Validate()...)
	errs = append(errs, o.StoreOptions.Validate()...)
	errs = append(errs, o.LogOptions.Validate()...)
	errs = append(errs, o.PluginOptions.Validate()...)
	errs = append(errs, o.I18nOptions.Validate()...)
	errs = append(errs, o.DispatchOptions.Validate()...)
	return errors.Join(errs...)
}

func (o *Options) String() string {
	data, _ := json.Marshal(o)

	return string(data)
}

// Complete set default Options.
func (o *Options) Complete() error {
	if o.PluginOptions.Entries == nil {
		o.PluginOptions.Entries = make(map[string]genericoptions.PluginEntryConfig)
	}
	return nil
}
