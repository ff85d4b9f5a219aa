// Package config provides configuration management for the VideoCraft
// agent. Defaults are overlaid first by an optional TOML config file,
// then by environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
)

const (
	// Default values
	DefaultPort           = 8790
	DefaultLogLevel       = "info"
	DefaultDataDir        = ".videocraft"
	DefaultMaxUploadBytes = 2 << 30 // 2GB

	// Environment variable names
	EnvPort       = "VIDEOCRAFT_PORT"
	EnvLogLevel   = "VIDEOCRAFT_LOG_LEVEL"
	EnvDataDir    = "VIDEOCRAFT_DATA_DIR"
	EnvHeadless   = "VIDEOCRAFT_HEADLESS"
	EnvConfigFile = "VIDEOCRAFT_CONFIG"
	EnvMaxUpload  = "VIDEOCRAFT_MAX_UPLOAD_BYTES"

	// Database filename
	DBFilename = "videocraft.db"
)

// Config defines the application configuration interface
type Config interface {
	Port() int
	LogLevel() string
	DataDir() string
	DBPath() string
	UploadDir() string
	MaxUploadBytes() int64
	Headless() bool
	CORSOrigins() []string
}

// AppConfig holds the resolved configuration.
type AppConfig struct {
	port           int
	logLevel       string
	dataDir        string
	maxUploadBytes int64
	headless       bool
	corsOrigins    []string
}

// fileConfig is the TOML config file shape.
type fileConfig struct {
	Port           int      `toml:"port"`
	LogLevel       string   `toml:"log_level"`
	DataDir        string   `toml:"data_dir"`
	MaxUploadBytes int64    `toml:"max_upload_bytes"`
	Headless       bool     `toml:"headless"`
	CORSOrigins    []string `toml:"cors_origins"`
}

// New resolves the configuration: defaults, then the TOML file named
// by VIDEOCRAFT_CONFIG (when set), then environment variables.
func New() (*AppConfig, error) {
	cfg := &AppConfig{
		port:           DefaultPort,
		logLevel:       DefaultLogLevel,
		dataDir:        defaultDataDir(),
		maxUploadBytes: DefaultMaxUploadBytes,
		corsOrigins:    []string{"*"},
	}

	if path := os.Getenv(EnvConfigFile); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	// Override port from environment
	if p := os.Getenv(EnvPort); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvPort, err)
		}
		cfg.port = port
	}

	// Override log level from environment
	if ll := os.Getenv(EnvLogLevel); ll != "" {
		cfg.logLevel = ll
	}

	// Override data directory from environment
	if dd := os.Getenv(EnvDataDir); dd != "" {
		cfg.dataDir = dd
	}

	if h := os.Getenv(EnvHeadless); h != "" {
		headless, err := strconv.ParseBool(h)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvHeadless, err)
		}
		cfg.headless = headless
	}

	if mu := os.Getenv(EnvMaxUpload); mu != "" {
		maxUpload, err := strconv.ParseInt(mu, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvMaxUpload, err)
		}
		cfg.maxUploadBytes = maxUpload
	}

	if cfg.port < 1 || cfg.port > 65535 {
		return nil, fmt.Errorf("invalid port %d: must be between 1 and 65535", cfg.port)
	}
	if cfg.maxUploadBytes < 1 {
		return nil, fmt.Errorf("invalid max upload size %d", cfg.maxUploadBytes)
	}

	return cfg, nil
}

func (c *AppConfig) loadFile(path string) error {
	var fc fileConfig
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		return fmt.Errorf("failed to load config file %s: %w", path, err)
	}
	if fc.Port != 0 {
		c.port = fc.Port
	}
	if fc.LogLevel != "" {
		c.logLevel = fc.LogLevel
	}
	if fc.DataDir != "" {
		c.dataDir = fc.DataDir
	}
	if fc.MaxUploadBytes != 0 {
		c.maxUploadBytes = fc.MaxUploadBytes
	}
	if len(fc.CORSOrigins) > 0 {
		c.corsOrigins = fc.CORSOrigins
	}
	c.headless = fc.Headless || c.headless
	return nil
}

// Port returns the HTTP server port
func (c *AppConfig) Port() int {
	return c.port
}

// LogLevel returns the log level (debug, info, warn, error)
func (c *AppConfig) LogLevel() string {
	return c.logLevel
}

// DataDir returns the data directory path
func (c *AppConfig) DataDir() string {
	return c.dataDir
}

// DBPath returns the full path to the SQLite database file
func (c *AppConfig) DBPath() string {
	return filepath.Join(c.dataDir, DBFilename)
}

// UploadDir returns the directory uploaded videos are stored under
func (c *AppConfig) UploadDir() string {
	return filepath.Join(c.dataDir, "uploads")
}

// MaxUploadBytes returns the maximum accepted upload size
func (c *AppConfig) MaxUploadBytes() int64 {
	return c.maxUploadBytes
}

// Headless reports whether the system tray should be skipped
func (c *AppConfig) Headless() bool {
	return c.headless
}

// CORSOrigins returns the origins the SPA may call the API from
func (c *AppConfig) CORSOrigins() []string {
	return c.corsOrigins
}

// defaultDataDir returns the default data directory path
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home is not available
		return DefaultDataDir
	}
	return filepath.Join(home, DefaultDataDir)
}

// Version information (set at build time via ldflags)
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)
