package server

import (
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kiosk404/hookmind/pkg/logger"
	"github.com/spf13/viper"
)

const (
	// RecommendedHomeDir defines the default directory used to place all hookmind service configurations.
	RecommendedHomeDir = ".hookmind"

	// RecommendedEnvPrefix defines the ENV prefix used by all hookmind service.
	RecommendedEnvPrefix = "HOOKMIND"
)

// Config is a structure used to configure a GenericAPIServer.
type Config struct {
	BindAddress     string
	BindPort        int
	Mode            string
	Middlewares     []gin.HandlerFunc
	Healthz         bool
	EnableProfiling bool
	EnableMetrics   bool
}

// NewConfig returns a Config struct with the default values.
func NewConfig() *Config {
	return &Config{
		BindAddress:     "127.0.0.1",
		BindPort:        11790,
		Mode:            gin.ReleaseMode,
		Healthz:         true,
		EnableProfiling: false,
		EnableMetrics:   true,
	}
}

// CompletedConfig is the completed configuration for GenericAPIServer.
type CompletedConfig struct {
	*Config
}

// Complete fills in any fields not set that are required to have valid data.
func (c *Config) Complete() CompletedConfig {
	if c.Mode == "" {
		c.Mode = gin.ReleaseMode
	}
	return CompletedConfig{c}
}

// New returns a new instance of GenericAPIServer from the given config.
func (c CompletedConfig) New() (*GenericAPIServer, error) {
	gin.SetMode(c.Mode)

	s := &GenericAPIServer{
		Address:         net.JoinHostPort(c.BindAddress, strconv.Itoa(c.BindPort)),
		middlewares:     c.Middlewares,
		healthz:         c.Healthz,
		enableProfiling: c.EnableProfiling,
		enableMetrics:   c.EnableMetrics,
		Engine:          gin.New(),
	}
	initGenericAPIServer(s)

	return s, nil
}

// LoadConfig reads in config file and ENV variables if set.
func LoadConfig(cfg string, defaultName string) {
	if cfg != "" {
		viper.SetConfigFile(cfg)
	} else {
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(filepath.Join(home, RecommendedHomeDir))
		}
		viper.AddConfigPath("/etc/hookmind")
		viper.SetConfigName(defaultName)
	}

	// Use config file from the flag.
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()
	viper.SetEnvPrefix(RecommendedEnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok && cfg == "" {
			logger.Debug("[Config] no %s config file found, using flags and environment", defaultName)
			return
		}
		logger.Warn("[Config] failed to read configuration file(%s): %v", cfg, err)
		return
	}
	logger.Info("[Config] using config file %s", viper.ConfigFileUsed())
}
