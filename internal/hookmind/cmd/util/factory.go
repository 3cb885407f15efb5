package util

import (
	"context"
	"fmt"
	"io"

	"github.com/kiosk404/hookmind/internal/hookmind"
	"github.com/kiosk404/hookmind/internal/hookmind/config"
	"github.com/kiosk404/hookmind/internal/hookmind/options"
)

// IOStreams provides the standard names for iostreams.
type IOStreams struct {
	In     io.Reader
	Out    io.Writer
	ErrOut io.Writer
}

// Factory builds the plugin runtime the subcommands operate on.
type Factory interface {
	// Options returns the options bound to the command line.
	Options() *options.Options
	// Runtime assembles a runtime. With start, plugins are installed and
	// activated the way the server does it.
	Runtime(ctx context.Context, start bool) (*hookmind.Runtime, error)
}

type defaultFactory struct {
	opts *options.Options
}

// NewFactory creates a Factory over opts.
func NewFactory(opts *options.Options) Factory {
	return &defaultFactory{opts: opts}
}

func (f *defaultFactory) Options() *options.Options {
	return f.opts
}

func (f *defaultFactory) Runtime(ctx context.Context, start bool) (*hookmind.Runtime, error) {
	cfg, err := config.CreateConfigFromOptions(f.opts)
	if err != nil {
		return nil, err
	}
	rt, err := hookmind.NewRuntime(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w (is a hookmind server holding %s?)", err, cfg.StoreOptions.BoltPath)
	}
	if start {
		if err := rt.Start(ctx); err != nil {
			rt.Close(ctx)
			return nil, err
		}
	}
	return rt, nil
}
