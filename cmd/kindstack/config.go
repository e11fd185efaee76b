package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/lukecassidy/kind-stack-dev/internal/core/catalog"
)

// =============================================================================
// Config Types
// =============================================================================

// Config holds all harness configuration.
type Config struct {
	Cluster  ClusterConfig  `mapstructure:"cluster"`
	Stack    StackConfig    `mapstructure:"stack"`
	Database DatabaseConfig `mapstructure:"database"`
	Checks   ChecksConfig   `mapstructure:"checks"`
	History  HistoryConfig  `mapstructure:"history"`
	Serve    ServeConfig    `mapstructure:"serve"`
	Log      LogConfig      `mapstructure:"log"`
}

// ClusterConfig holds kind cluster configuration.
type ClusterConfig struct {
	Name       string `mapstructure:"name"`
	Kubeconfig string `mapstructure:"kubeconfig"`
	NodeImage  string `mapstructure:"node_image"`
	ConfigPath string `mapstructure:"config_path"`
}

// StackConfig holds stack deployment configuration.
type StackConfig struct {
	Namespace            string          `mapstructure:"namespace"`
	ReleasePrefix        string          `mapstructure:"release_prefix"`
	Services             []ServiceConfig `mapstructure:"services"`
	DatabaseReadyTimeout time.Duration   `mapstructure:"database_ready_timeout"`
	ServiceReadyTimeout  time.Duration   `mapstructure:"service_ready_timeout"`
}

// ServiceConfig overrides one catalog service. When stack.services is empty
// the built-in catalog is used.
type ServiceConfig struct {
	Name          string `mapstructure:"name"`
	Chart         string `mapstructure:"chart"`
	Port          int    `mapstructure:"port"`
	HealthPath    string `mapstructure:"health_path"`
	Workload      string `mapstructure:"workload"`
	NeedsDatabase bool   `mapstructure:"needs_database"`
}

// DatabaseConfig holds database chart configuration.
type DatabaseConfig struct {
	Chart    string `mapstructure:"chart"`
	Workload string `mapstructure:"workload"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
}

// ChecksConfig holds connectivity check configuration.
type ChecksConfig struct {
	Host     string        `mapstructure:"host"`
	Timeout  time.Duration `mapstructure:"timeout"`
	Attempts int           `mapstructure:"attempts"`
	Interval time.Duration `mapstructure:"interval"`
}

// HistoryConfig holds run history configuration.
type HistoryConfig struct {
	Path string `mapstructure:"path"`
}

// ServeConfig holds status API configuration.
type ServeConfig struct {
	Addr string `mapstructure:"addr"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// =============================================================================
// Config Loading
// =============================================================================

// LoadConfig loads configuration from file and environment. With no explicit
// path it looks for kindstack.yaml in the working directory, which is what
// `kindstack init` writes.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("cluster.name", "dev")
	v.SetDefault("cluster.kubeconfig", "")
	v.SetDefault("cluster.node_image", "")
	v.SetDefault("cluster.config_path", "")
	v.SetDefault("stack.namespace", "kindstack")
	v.SetDefault("stack.release_prefix", "kindstack")
	v.SetDefault("stack.database_ready_timeout", "2m")
	v.SetDefault("stack.service_ready_timeout", "90s")
	v.SetDefault("database.chart", "charts/postgres")
	v.SetDefault("database.workload", "postgres")
	v.SetDefault("database.host", "postgres")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "appdb")
	v.SetDefault("database.user", "appuser")
	v.SetDefault("database.password", "devpassword")
	v.SetDefault("checks.host", "127.0.0.1")
	v.SetDefault("checks.timeout", "5s")
	v.SetDefault("checks.attempts", 3)
	v.SetDefault("checks.interval", "2s")
	v.SetDefault("history.path", "data/kindstack.db")
	v.SetDefault("serve.addr", "127.0.0.1:7788")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		v.SetConfigName("kindstack")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			// Only parse errors are fatal; a missing default file means
			// defaults apply.
			if _, ok := err.(viper.ConfigParseError); ok {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	// Enable environment variable overrides
	v.SetEnvPrefix("KINDSTACK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// =============================================================================
// Catalog Conversion
// =============================================================================

// Catalog builds the service catalog for this configuration. Database
// settings always apply; the service list applies only when overridden.
func (c *Config) Catalog() catalog.Catalog {
	cat := catalog.Default()

	cat.Database = catalog.Database{
		Chart:    c.Database.Chart,
		Workload: c.Database.Workload,
		Host:     c.Database.Host,
		Port:     c.Database.Port,
		Name:     c.Database.Name,
		User:     c.Database.User,
		Password: c.Database.Password,
	}

	if len(c.Stack.Services) > 0 {
		services := make([]catalog.Service, 0, len(c.Stack.Services))
		for _, sc := range c.Stack.Services {
			services = append(services, catalog.Service{
				Name:          sc.Name,
				Chart:         sc.Chart,
				Port:          sc.Port,
				HealthPath:    sc.HealthPath,
				Workload:      sc.Workload,
				NeedsDatabase: sc.NeedsDatabase,
			})
		}
		cat.Services = services
	}

	return cat
}

// =============================================================================
// Logger Setup
// =============================================================================

// SetupLogger creates a logger with the configured level and format.
func SetupLogger(cfg *Config) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Log.Level) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if strings.ToLower(cfg.Log.Format) == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	return slog.New(handler)
}
