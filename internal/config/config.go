// Package config loads and validates the docstage configuration file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the configuration file commands look for when -c is not given.
const DefaultPath = "docstage.yaml"

// ErrNotFound reports a missing configuration file. Callers that can fall
// back to the built-in defaults branch on it.
var ErrNotFound = errors.New("configuration file not found")

// Config represents the application configuration.
type Config struct {
	Root    string        `yaml:"root,omitempty"`
	Output  OutputConfig  `yaml:"output"`
	Pages   []Page        `yaml:"pages,omitempty"`
	Check   CheckConfig   `yaml:"check,omitempty"`
	Watch   WatchConfig   `yaml:"watch,omitempty"`
	History HistoryConfig `yaml:"history,omitempty"`
	Events  EventsConfig  `yaml:"events,omitempty"`
}

// OutputConfig controls where staged pages land.
type OutputConfig struct {
	Directory string `yaml:"directory"`
	Clean     bool   `yaml:"clean"` // Replace the output directory atomically on success
}

// Page is one entry of the staging table: a destination path, its source
// file, and the rewrites applied on the way.
type Page struct {
	Destination string    `yaml:"destination"`
	Source      string    `yaml:"source"`
	Rewrites    []Rewrite `yaml:"rewrites,omitempty"`
}

// Rewrite is a literal substring replacement applied to one page.
type Rewrite struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// CheckConfig controls link verification of staged pages.
type CheckConfig struct {
	Roots    []string `yaml:"roots,omitempty"` // Directories link targets may live in, relative to root
	External bool     `yaml:"external"`
	Timeout  string   `yaml:"timeout,omitempty"`
}

// WatchConfig controls continuous restaging.
type WatchConfig struct {
	Debounce    string `yaml:"debounce,omitempty"`
	Interval    string `yaml:"interval,omitempty"` // Periodic full restage; empty or 0 disables
	MetricsAddr string `yaml:"metrics_addr,omitempty"`
}

// HistoryConfig controls run history persistence.
type HistoryConfig struct {
	Path string `yaml:"path,omitempty"` // SQLite file; empty disables persistence
}

// EventsConfig controls run event publishing.
type EventsConfig struct {
	NATSURL string `yaml:"nats_url,omitempty"` // Empty disables publishing
	Subject string `yaml:"subject,omitempty"`
}

// Load loads configuration from the specified file. Environment variables
// referenced in the file are expanded after .env/.env.local are loaded.
func Load(configPath string) (*Config, error) {
	loadEnvFiles()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var config Config
	if err := yaml.Unmarshal([]byte(expanded), &config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.applyDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// LoadOrDefault loads the given file, falling back to the built-in defaults
// when the default config file is absent. An explicitly requested file that
// does not exist is still an error.
func LoadOrDefault(configPath string) (*Config, error) {
	cfg, err := Load(configPath)
	if errors.Is(err, ErrNotFound) && configPath == DefaultPath {
		return Default(), nil
	}
	return cfg, err
}

func (c *Config) applyDefaults() {
	if c.Output.Directory == "" {
		c.Output.Directory = DefaultOutputDir
		c.Output.Clean = true
	}
	if len(c.Pages) == 0 {
		c.Pages = DefaultPages()
	}
	if len(c.Check.Roots) == 0 {
		c.Check.Roots = []string{"docs"}
	}
	if c.Check.Timeout == "" {
		c.Check.Timeout = "10s"
	}
	if c.Watch.Debounce == "" {
		c.Watch.Debounce = "300ms"
	}
	if c.Events.Subject == "" {
		c.Events.Subject = "docstage.runs"
	}
}

// CheckTimeout returns the parsed external-link probe timeout.
func (c *Config) CheckTimeout() time.Duration {
	return parseDuration(c.Check.Timeout, 10*time.Second)
}

// WatchDebounce returns the parsed change debounce window.
func (c *Config) WatchDebounce() time.Duration {
	return parseDuration(c.Watch.Debounce, 300*time.Millisecond)
}

// WatchInterval returns the parsed periodic restage interval, 0 when disabled.
func (c *Config) WatchInterval() time.Duration {
	return parseDuration(c.Watch.Interval, 0)
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" || s == "0" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

// Init writes a starter configuration file carrying the built-in staging
// table. licenseURL overrides the LICENSE rewrite target when non-empty.
func Init(configPath, licenseURL string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}
	if licenseURL == "" {
		licenseURL = DefaultLicenseURL
	}

	cfg := &Config{Pages: defaultPagesWithLicense(licenseURL)}
	cfg.applyDefaults()

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// loadEnvFiles loads .env/.env.local, stopping at the first file present.
// Existing process environment variables are never overridden.
func loadEnvFiles() {
	for _, envPath := range []string{".env", ".env.local"} {
		if _, err := os.Stat(envPath); err != nil {
			continue
		}
		if err := godotenv.Load(envPath); err != nil {
			slog.Warn("Failed to load env file", "path", envPath, "error", err)
			continue
		}
		slog.Debug("Loaded environment variables", "path", envPath)
		return
	}
}
