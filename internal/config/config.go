// Package config loads the server's settings from a JSON file and the
// environment.
package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/ironsheep/inpaint-studio-mcp/internal/mask"
)

// Environment variables that override file settings.
const (
	EnvEndpoint = "INPAINT_MCP_ENDPOINT"
	EnvLogLevel = "INPAINT_MCP_LOG_LEVEL"
)

// Service configures the processing service connection.
type Service struct {
	Endpoint       string `json:"endpoint"`       // base URL, e.g. http://localhost:5000
	Discover       bool   `json:"discover"`       // browse mDNS when no endpoint is set
	TimeoutSeconds int    `json:"timeoutSeconds"` // per processing request
}

// Mask configures the drawing feedback.
type Mask struct {
	Color   string  `json:"color"`   // hex, e.g. #FF0000
	Opacity float64 `json:"opacity"` // 0-1
}

// Config is the top-level settings structure.
type Config struct {
	Service   Service `json:"service"`
	Mask      Mask    `json:"mask"`
	OutputDir string  `json:"outputDir"` // where downloaded results are written
	LogLevel  string  `json:"logLevel"`  // debug, info, warn, error
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() *Config {
	return &Config{
		Service: Service{
			Endpoint:       "http://localhost:5000",
			Discover:       false,
			TimeoutSeconds: 600,
		},
		Mask: Mask{
			Color:   mask.DefaultColor,
			Opacity: mask.DefaultOpacity,
		},
		OutputDir: ".",
		LogLevel:  "info",
	}
}

// DefaultPath returns the per-user config file location.
func DefaultPath() string {
	var configDir string

	if runtime.GOOS == "windows" {
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			homeDir, _ := os.UserHomeDir()
			configDir = filepath.Join(homeDir, "AppData", "Roaming")
		}
	} else {
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "inpaint-mcp", "config.json")
}

// Load reads the config file at path (DefaultPath when empty). A missing
// file yields the defaults. Values are validated and repaired.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return DefaultConfig(), fmt.Errorf("failed to read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	cfg.Validate()
	return cfg, nil
}

// ApplyEnv overrides settings from the environment.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvEndpoint); v != "" {
		c.Service.Endpoint = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
}

// Validate repairs out-of-range values with their defaults.
func (c *Config) Validate() {
	defaults := DefaultConfig()

	c.Service.Endpoint = strings.TrimRight(strings.TrimSpace(c.Service.Endpoint), "/")
	if c.Service.Endpoint != "" &&
		!strings.HasPrefix(c.Service.Endpoint, "http://") &&
		!strings.HasPrefix(c.Service.Endpoint, "https://") {
		c.Service.Endpoint = "http://" + c.Service.Endpoint
	}

	if c.Service.TimeoutSeconds <= 0 {
		c.Service.TimeoutSeconds = defaults.Service.TimeoutSeconds
	}

	if _, err := mask.ParseStyle(c.Mask.Color, c.Mask.Opacity); err != nil {
		c.Mask = defaults.Mask
	}

	if c.OutputDir == "" {
		c.OutputDir = defaults.OutputDir
	}

	level := strings.ToLower(c.LogLevel)
	switch level {
	case "debug", "info", "warn", "error":
		c.LogLevel = level
	default:
		c.LogLevel = defaults.LogLevel
	}
}

// MaskStyle returns the drawing style described by the mask settings.
func (c *Config) MaskStyle() mask.Style {
	style, err := mask.ParseStyle(c.Mask.Color, c.Mask.Opacity)
	if err != nil {
		return mask.DefaultStyle()
	}
	return style
}

// SlogLevel maps LogLevel to a slog level.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
