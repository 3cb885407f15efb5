package server

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, mutate func(*Config)) *GenericAPIServer {
	t.Helper()
	cfg := NewConfig()
	cfg.Mode = gin.TestMode
	if mutate != nil {
		mutate(cfg)
	}
	s, err := cfg.Complete().New()
	require.NoError(t, err)
	return s
}

func TestGenericAPIServer_Healthz(t *testing.T) {
	s := newTestServer(t, nil)

	w := httptest.NewRecorder()
	s.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestGenericAPIServer_Metrics(t *testing.T) {
	s := newTestServer(t, nil)

	w := httptest.NewRecorder()
	s.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func TestGenericAPIServer_ProfilingDisabled(t *testing.T) {
	s := newTestServer(t, func(c *Config) { c.EnableMetrics = false })

	for _, path := range []string{"/debug/pprof/", "/metrics"} {
		w := httptest.NewRecorder()
		s.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusNotFound, w.Code, path)
	}
}

func TestGenericAPIServer_Profiling(t *testing.T) {
	s := newTestServer(t, func(c *Config) { c.EnableProfiling = true })

	w := httptest.NewRecorder()
	s.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/debug/pprof/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGenericAPIServer_Address(t *testing.T) {
	s := newTestServer(t, func(c *Config) {
		c.BindAddress = "0.0.0.0"
		c.BindPort = 8080
	})
	assert.Equal(t, "0.0.0.0:8080", s.Address)
}

func TestLoadConfig(t *testing.T) {
	defer viper.Reset()

	path := filepath.Join(t.TempDir(), "hookmind.yaml")
	require.NoError(t, os.WriteFile(path, []byte("plugins:\n  dir: /opt/plugins\n"), 0o644))

	LoadConfig(path, "hookmind")
	assert.Equal(t, "/opt/plugins", viper.GetString("plugins.dir"))
}
