package options

import (
	"fmt"

	"github.com/spf13/pflag"
)

// Store backends.
const (
	StoreBoltDB = "boltdb"
	StoreMemory = "memory"
)

// StoreOptions configures where install records, the lifecycle log and
// plugin-owned databases live.
type StoreOptions struct {
	Type     string `json:"type"      mapstructure:"type"`
	BoltPath string `json:"bolt-path" mapstructure:"bolt-path"`
	// DataDir holds plugin-owned SQLite files, one per plugin.
	DataDir string `json:"data-dir" mapstructure:"data-dir"`
}

// NewStoreOptions returns the default store options.
func NewStoreOptions() *StoreOptions {
	return &StoreOptions{
		Type:     StoreBoltDB,
		BoltPath: "data/hookmind.db",
		DataDir:  "data",
	}
}

// Validate checks StoreOptions fields.
func (o *StoreOptions) Validate() []error {
	var errs []error

	switch o.Type {
	case StoreBoltDB:
		if o.BoltPath == "" {
			errs = append(errs, fmt.Errorf("--store.bolt-path is required for the %s store", StoreBoltDB))
		}
	case StoreMemory:
	default:
		errs = append(errs, fmt.Errorf("--store.type %q must be %s or %s", o.Type, StoreBoltDB, StoreMemory))
	}

	return errs
}

// AddFlags adds flags for the store options.
func (o *StoreOptions) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.Type, "store.type", o.Type, "Install record backend: boltdb or memory.")
	fs.StringVar(&o.BoltPath, "store.bolt-path", o.BoltPath, "BoltDB file holding install records and the lifecycle log.")
	fs.StringVar(&o.DataDir, "store.data-dir", o.DataDir, "Directory of plugin-owned databases.")
}
