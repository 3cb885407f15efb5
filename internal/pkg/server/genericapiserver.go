package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/kiosk404/hookmind/pkg/logger"
	"github.com/kiosk404/hookmind/pkg/version"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// GenericAPIServer contains state for a hookmind api server.
type GenericAPIServer struct {
	*gin.Engine

	// Address is host:port of the insecure listener.
	Address string

	middlewares     []gin.HandlerFunc
	healthz         bool
	enableProfiling bool
	enableMetrics   bool

	httpServer *http.Server
}

func initGenericAPIServer(s *GenericAPIServer) {
	s.Setup()
	s.InstallMiddlewares()
	s.InstallAPIs()
}

// InstallAPIs installs the generic endpoints.
func (s *GenericAPIServer) InstallAPIs() {
	if s.healthz {
		s.GET("/healthz", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})
	}

	if s.enableMetrics {
		s.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	if s.enableProfiling {
		pprof.Register(s.Engine)
	}

	s.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, version.Get())
	})
}

// Setup do some setup work for gin engine.
func (s *GenericAPIServer) Setup() {
	gin.DebugPrintRouteFunc = func(httpMethod, absolutePath, handlerName string, nuHandlers int) {
		logger.Debug("[API] %-6s %-s --> %s (%d handlers)", httpMethod, absolutePath, handlerName, nuHandlers)
	}
}

// InstallMiddlewares installs the configured middlewares.
func (s *GenericAPIServer) InstallMiddlewares() {
	s.Use(gin.Recovery())
	for _, m := range s.middlewares {
		s.Use(m)
	}
}

// Run spawns the http server. It returns once the server is closed.
func (s *GenericAPIServer) Run() error {
	s.httpServer = &http.Server{
		Addr:              s.Address,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("[API] start to listening the incoming requests on http address: %s", s.Address)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	logger.Info("[API] server on %s stopped", s.Address)
	return nil
}

// Close graceful shutdown the api server.
func (s *GenericAPIServer) Close() {
	if s.httpServer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		logger.Warn("[API] shutdown server failed: %v", err)
	}
}
