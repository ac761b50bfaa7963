// Package config loads factfed settings from ~/.factfed/config.yaml and the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pevans/factfed/logging"
	"github.com/pevans/factfed/report"
	"github.com/pevans/factfed/scraper"
	"gopkg.in/yaml.v3"
)

// Environment variables that override the config file.
const (
	EnvDB        = "FACTFED_DB"
	EnvOutputDir = "FACTFED_OUTPUT_DIR"
	EnvLogLevel  = "FACTFED_LOG_LEVEL"
	EnvAddr      = "FACTFED_ADDR"
)

// StorageConfig locates the report index.
type StorageConfig struct {
	DB string `yaml:"db"`
}

// OutputConfig controls where archives and load output are written.
type OutputConfig struct {
	Dir string `yaml:"dir"`
}

// APIConfig configures the HTTP server.
type APIConfig struct {
	Addr string `yaml:"addr"`
}

// CrawlConfig tunes the crawler. Zero values keep the site defaults.
type CrawlConfig struct {
	Parallelism int           `yaml:"parallelism"`
	Delay       time.Duration `yaml:"delay"`
	RandomDelay time.Duration `yaml:"random_delay"`
	UserAgent   string        `yaml:"user_agent"`
	ObeyRobots  *bool         `yaml:"obey_robots"`
	SkipKnown   bool          `yaml:"skip_known"`
	// Time between feed polls in watch mode
	WatchInterval time.Duration `yaml:"watch_interval"`
}

// LoadConfig controls the load command.
type LoadConfig struct {
	Limit int `yaml:"limit"`
}

// BatchConfig controls offline reprocessing.
type BatchConfig struct {
	Concurrency int `yaml:"concurrency"`
}

// FileConfig represents the structure of ~/.factfed/config.yaml.
type FileConfig struct {
	Storage StorageConfig  `yaml:"storage"`
	Output  OutputConfig   `yaml:"output"`
	Log     logging.Config `yaml:"log"`
	API     APIConfig      `yaml:"api"`
	Crawl   CrawlConfig    `yaml:"crawl"`
	Load    LoadConfig     `yaml:"load"`
	Batch   BatchConfig    `yaml:"batch"`
}

// Default returns the settings used when no file or environment overrides
// are present.
func Default() *FileConfig {
	return &FileConfig{
		Storage: StorageConfig{DB: "reports.db"},
		Output:  OutputConfig{Dir: "."},
		Log:     logging.Config{Level: "info"},
		API:     APIConfig{Addr: ":8080"},
		Load:    LoadConfig{Limit: report.DefaultLoadLimit},
		Batch:   BatchConfig{Concurrency: report.DefaultConcurrency},
	}
}

// DefaultPath returns ~/.factfed/config.yaml.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".factfed", "config.yaml"), nil
}

// LoadConfigFile loads configuration from ~/.factfed/config.yaml. Returns nil
// if the file doesn't exist (not an error). Returns error if the file exists
// but cannot be parsed.
func LoadConfigFile() (*FileConfig, error) {
	configPath, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return readFile(configPath)
}

// readFile parses path over the defaults. A missing file yields nil.
func readFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Load resolves the effective configuration: defaults, then the file at path
// (the default path when empty), then environment overrides.
func Load(path string) (*FileConfig, error) {
	var (
		cfg *FileConfig
		err error
	)
	if path == "" {
		cfg, err = LoadConfigFile()
	} else {
		cfg, err = readFile(path)
	}
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = Default()
	}

	cfg.ApplyEnv(os.Getenv)
	return cfg, nil
}

// ApplyEnv overrides settings from non-empty environment variables.
func (c *FileConfig) ApplyEnv(getenv func(string) string) {
	if v := getenv(EnvDB); v != "" {
		c.Storage.DB = v
	}
	if v := getenv(EnvOutputDir); v != "" {
		c.Output.Dir = v
	}
	if v := getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
	if v := getenv(EnvAddr); v != "" {
		c.API.Addr = v
	}
}

// ApplyTo copies the non-zero crawl settings onto site.
func (c CrawlConfig) ApplyTo(site *scraper.SiteConfig) {
	if c.Parallelism > 0 {
		site.Politeness.Parallelism = c.Parallelism
	}
	if c.Delay > 0 {
		site.Politeness.Delay = c.Delay
	}
	if c.RandomDelay > 0 {
		site.Politeness.RandomDelay = c.RandomDelay
	}
	if c.UserAgent != "" {
		site.Politeness.UserAgent = c.UserAgent
	}
	if c.ObeyRobots != nil {
		site.Politeness.ObeyRobots = *c.ObeyRobots
	}
}
