package hookmind

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kiosk404/hookmind/internal/hookmind/config"
	genericapiserver "github.com/kiosk404/hookmind/internal/pkg/server"
	"github.com/kiosk404/hookmind/pkg/logger"
)

type apiServer struct {
	genericAPIServer *genericapiserver.GenericAPIServer
	runtime          *Runtime
}

type preparedAPIServer struct {
	*apiServer
}

func createAPIServer(cfg *config.Config) (*apiServer, error) {
	genericConfig, err := buildGenericConfig(cfg)
	if err != nil {
		return nil, err
	}
	genericServer, err := genericConfig.Complete().New()
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	rt, err := NewRuntime(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize plugin runtime: %w", err)
	}
	if err := rt.Start(ctx); err != nil {
		// A plugin that fails to activate does not stop the others.
		logger.Error("[Hookmind] %v", err)
	}
	logger.Info("[Hookmind] plugin runtime started (%d plugins, %d events hooked)",
		rt.Registry.Len(), len(rt.Registry.Table().Events()))

	return &apiServer{
		genericAPIServer: genericServer,
		runtime:          rt,
	}, nil
}

func (s *apiServer) PrepareRun() preparedAPIServer {
	initRouter(s.genericAPIServer.Engine, s.runtime)
	return preparedAPIServer{s}
}

// Run serves until SIGINT or SIGTERM, then stops the server and the
// plugin runtime.
func (s preparedAPIServer) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.genericAPIServer.Run()
	}()

	var err error
	select {
	case <-ctx.Done():
		logger.Info("[Hookmind] shutdown signal received")
		s.genericAPIServer.Close()
		err = <-errCh
	case err = <-errCh:
	}

	// Reverse lifecycle: hooks are removed before the stores close.
	s.runtime.Close(context.Background())
	return err
}

func buildGenericConfig(cfg *config.Config) (genericConfig *genericapiserver.Config, lastErr error) {
	genericConfig = genericapiserver.NewConfig()
	if lastErr = cfg.GenericServerRunOptions.ApplyTo(genericConfig); lastErr != nil {
		return
	}

	return
}
