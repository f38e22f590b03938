package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for sqliteguard
type Config struct {
	// Storage settings for the embedded database
	Storage StorageConfig `yaml:"storage" json:"storage"`

	// Retry policy tuning per scope
	Retry RetryConfig `yaml:"retry" json:"retry"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// StorageConfig holds embedded-database settings
type StorageConfig struct {
	Path        string        `yaml:"path" json:"path"`
	BusyTimeout time.Duration `yaml:"busy_timeout" json:"busy_timeout"`
	WAL         bool          `yaml:"wal" json:"wal"`
}

// RetryConfig holds the two tuned policy scopes
type RetryConfig struct {
	Transaction PolicyConfig `yaml:"transaction" json:"transaction"`
	Connection  PolicyConfig `yaml:"connection" json:"connection"`
}

// PolicyConfig holds the tuning knobs for one retry policy
type PolicyConfig struct {
	MaxRetries    int           `yaml:"max_retries" json:"max_retries"`
	BaseDelay     time.Duration `yaml:"base_delay" json:"base_delay"`
	MaxDelay      time.Duration `yaml:"max_delay" json:"max_delay"`
	BackoffFactor float64       `yaml:"backoff_factor" json:"backoff_factor"`
	RetryOn       []string      `yaml:"retry_on" json:"retry_on"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults.
// The retry sections default to the transaction and connection presets.
func DefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			Path:        "sqliteguard.db",
			BusyTimeout: 0,
			WAL:         true,
		},
		Retry: RetryConfig{
			Transaction: PolicyConfig{
				MaxRetries:    8,
				BaseDelay:     50 * time.Millisecond,
				MaxDelay:      1 * time.Second,
				BackoffFactor: 1.5,
				RetryOn:       []string{"operational", "database"},
			},
			Connection: PolicyConfig{
				MaxRetries:    5,
				BaseDelay:     100 * time.Millisecond,
				MaxDelay:      2 * time.Second,
				BackoffFactor: 2.0,
				RetryOn:       []string{"operational"},
			},
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if path := os.Getenv("SQLITEGUARD_DB_PATH"); path != "" {
		c.Storage.Path = path
	}
	if timeout := os.Getenv("SQLITEGUARD_BUSY_TIMEOUT"); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return fmt.Errorf("invalid SQLITEGUARD_BUSY_TIMEOUT: %w", err)
		}
		c.Storage.BusyTimeout = d
	}
	if retries := os.Getenv("SQLITEGUARD_TXN_MAX_RETRIES"); retries != "" {
		val, err := strconv.Atoi(retries)
		if err != nil || val < 0 {
			return fmt.Errorf("invalid SQLITEGUARD_TXN_MAX_RETRIES: %q", retries)
		}
		c.Retry.Transaction.MaxRetries = val
	}
	if retries := os.Getenv("SQLITEGUARD_CONN_MAX_RETRIES"); retries != "" {
		val, err := strconv.Atoi(retries)
		if err != nil || val < 0 {
			return fmt.Errorf("invalid SQLITEGUARD_CONN_MAX_RETRIES: %q", retries)
		}
		c.Retry.Connection.MaxRetries = val
	}
	if logLevel := os.Getenv("SQLITEGUARD_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}
	if logFile := os.Getenv("SQLITEGUARD_LOG_FILE"); logFile != "" {
		c.Logging.File = logFile
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	// Check in order of precedence
	locations := []string{
		".sqliteguard.yaml",
		".sqliteguard.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "sqliteguard", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "sqliteguard", "config.yml"),
		filepath.Join(os.Getenv("HOME"), ".sqliteguard.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// knownCategories are the failure categories a retry_on list may name
var knownCategories = map[string]bool{
	"operational": true,
	"database":    true,
	"integrity":   true,
	"internal":    true,
	"unknown":     true,
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.Storage.Path == "" {
		errs = append(errs, errors.New("storage path is required"))
	}
	if c.Storage.BusyTimeout < 0 {
		errs = append(errs, errors.New("busy timeout cannot be negative"))
	}

	for name, pc := range map[string]PolicyConfig{
		"transaction": c.Retry.Transaction,
		"connection":  c.Retry.Connection,
	} {
		if pc.MaxRetries < 0 {
			errs = append(errs, fmt.Errorf("%s: max retries cannot be negative", name))
		}
		if pc.BaseDelay <= 0 {
			errs = append(errs, fmt.Errorf("%s: base delay must be positive", name))
		}
		if pc.MaxDelay < pc.BaseDelay {
			errs = append(errs, fmt.Errorf("%s: max delay must be at least base delay", name))
		}
		if pc.BackoffFactor < 1.0 {
			errs = append(errs, fmt.Errorf("%s: backoff factor must be at least 1.0", name))
		}
		for _, cat := range pc.RetryOn {
			if !knownCategories[cat] {
				errs = append(errs, fmt.Errorf("%s: unknown retry category %q", name, cat))
			}
		}
	}

	validLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "fatal": true, "disabled": true,
	}
	if !validLevels[c.Logging.Level] {
		errs = append(errs, fmt.Errorf("invalid log level: %s", c.Logging.Level))
	}

	if len(errs) > 0 {
		var msg string
		for i, err := range errs {
			if i > 0 {
				msg += "; "
			}
			msg += err.Error()
		}
		return errors.New(msg)
	}

	return nil
}

// Save writes the configuration to a YAML file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Load creates a configuration from defaults, config file, and environment.
// Precedence (lowest to highest): defaults, config file, environment.
func Load(configPath string) (*Config, error) {
	// Load .env files first so env overrides see them
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".sqliteguard.env"))

	cfg := DefaultConfig()

	if err := cfg.LoadFromFile(configPath); err != nil {
		return nil, err
	}

	if err := cfg.LoadFromEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}
