package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable read by Load
const EnvPrefix = "SHIFTBOARD_"

// LogLevel represents the logging level
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// LogFormat selects the log encoder
type LogFormat string

const (
	LogFormatConsole LogFormat = "console"
	LogFormatJSON    LogFormat = "json"
)

// PersistenceType represents the key/value area implementation
type PersistenceType string

const (
	PersistenceMemory PersistenceType = "memory"
	PersistenceFile   PersistenceType = "file"
	PersistenceSQLite PersistenceType = "sqlite"
)

// Backend names, as registered by the storage package
const (
	BackendLocal = "local"
	BackendCloud = "cloud"
)

// Config holds the application configuration
type Config struct {
	HTTP    HTTPConfig    `yaml:"http" envPrefix:"HTTP_"`
	Log     LogConfig     `yaml:"log" envPrefix:"LOG_"`
	Storage StorageConfig `yaml:"storage" envPrefix:"STORAGE_"`
	Cloud   CloudConfig   `yaml:"cloud" envPrefix:"CLOUD_"`
}

// HTTPConfig configures the HTTP server
type HTTPConfig struct {
	Host string `yaml:"host" env:"HOST"`
	Port int    `yaml:"port" env:"PORT"`
}

// LogConfig configures pkg/logger
type LogConfig struct {
	Level  LogLevel  `yaml:"level" env:"LEVEL"`
	Format LogFormat `yaml:"format" env:"FORMAT"`
	// File, when set, receives a rotated copy of the logs
	File string `yaml:"file" env:"FILE"`
}

// StorageConfig configures the key/value area and the local backend
type StorageConfig struct {
	Type PersistenceType `yaml:"type" env:"TYPE"`
	// Path is the snapshot file (file) or database file (sqlite)
	Path         string        `yaml:"path" env:"PATH"`
	SaveInterval time.Duration `yaml:"save_interval" env:"SAVE_INTERVAL"`
	// Quota caps the area size in bytes; 0 means unlimited
	Quota int64 `yaml:"quota" env:"QUOTA"`
	// Backend is the backend selected at startup
	Backend string `yaml:"backend" env:"BACKEND"`
	// Capacity is the capacity reported by the local backend
	Capacity int64 `yaml:"capacity" env:"CAPACITY"`
}

// CloudConfig configures the simulated cloud backend
type CloudConfig struct {
	Prefix     string        `yaml:"prefix" env:"PREFIX"`
	MinLatency time.Duration `yaml:"min_latency" env:"MIN_LATENCY"`
	MaxLatency time.Duration `yaml:"max_latency" env:"MAX_LATENCY"`
	Capacity   int64         `yaml:"capacity" env:"CAPACITY"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Host: "localhost",
			Port: 8080,
		},
		Log: LogConfig{
			Level:  LogLevelInfo,
			Format: LogFormatConsole,
		},
		Storage: StorageConfig{
			Type:         PersistenceMemory,
			Path:         "./shiftboard.json",
			SaveInterval: 30 * time.Second,
			Backend:      BackendLocal,
			Capacity:     5 * 1024 * 1024,
		},
		Cloud: CloudConfig{
			Prefix:     "cloud_",
			MinLatency: 100 * time.Millisecond,
			MaxLatency: 400 * time.Millisecond,
			Capacity:   5 * 1024 * 1024,
		},
	}
}

// Load builds the configuration from the defaults, the YAML file at path
// (skipped when path is empty) and SHIFTBOARD_* environment variables, in
// that order, then validates it.
func Load(path string) (*Config, error) {
	config := Default()

	if path != "" {
		if err := config.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := env.ParseWithOptions(config, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	config.normalize()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) normalize() {
	c.Log.Level = LogLevel(strings.ToLower(string(c.Log.Level)))
	c.Log.Format = LogFormat(strings.ToLower(string(c.Log.Format)))
	c.Storage.Type = PersistenceType(strings.ToLower(string(c.Storage.Type)))
	c.Storage.Backend = strings.ToLower(c.Storage.Backend)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.HTTP.Port < 1 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}

	if c.HTTP.Host == "" {
		return fmt.Errorf("http.host cannot be empty")
	}

	if !isValidLogLevel(c.Log.Level) {
		return fmt.Errorf("invalid log.level: %s (must be debug, info, warn, or error)", c.Log.Level)
	}

	if c.Log.Format != LogFormatConsole && c.Log.Format != LogFormatJSON {
		return fmt.Errorf("invalid log.format: %s (must be console or json)", c.Log.Format)
	}

	if !isValidPersistenceType(c.Storage.Type) {
		return fmt.Errorf("invalid storage.type: %s (must be memory, file, or sqlite)", c.Storage.Type)
	}

	switch c.Storage.Type {
	case PersistenceFile, PersistenceSQLite:
		if c.Storage.Path == "" {
			return fmt.Errorf("storage.path is required when using %s persistence", c.Storage.Type)
		}
	}
	if c.Storage.Type == PersistenceFile && c.Storage.SaveInterval <= 0 {
		return fmt.Errorf("storage.save_interval must be positive, got %s", c.Storage.SaveInterval)
	}

	if c.Storage.Quota < 0 {
		return fmt.Errorf("storage.quota cannot be negative")
	}

	if c.Storage.Backend != BackendLocal && c.Storage.Backend != BackendCloud {
		return fmt.Errorf("invalid storage.backend: %s (must be local or cloud)", c.Storage.Backend)
	}

	if c.Cloud.MinLatency < 0 || c.Cloud.MaxLatency < c.Cloud.MinLatency {
		return fmt.Errorf("cloud latency range is invalid: [%s, %s]", c.Cloud.MinLatency, c.Cloud.MaxLatency)
	}

	return nil
}

// Address returns the HTTP server address
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.HTTP.Host, c.HTTP.Port)
}

// IsDebugEnabled returns true if debug logging is enabled
func (c *Config) IsDebugEnabled() bool {
	return c.Log.Level == LogLevelDebug
}

func isValidLogLevel(level LogLevel) bool {
	switch level {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return true
	default:
		return false
	}
}

// isValidPersistenceType checks if the persistence type is valid
func isValidPersistenceType(pType PersistenceType) bool {
	switch pType {
	case PersistenceMemory, PersistenceFile, PersistenceSQLite:
		return true
	default:
		return false
	}
}
