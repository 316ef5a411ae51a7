// Package config reads and writes the kala run configuration file.
//
// The file is TOML:
//
//	[store]
//	path = "kala_storage"
//
//	[ingest]
//	data = "products.csv"
//	collection = "products"
//	batch_size = 500
//	normalizer = "persian"
//
//	[embedding]
//	enabled = true
//	host = "http://localhost:11434/v1"
//	model = "embeddinggemma"
//
// Every field is optional. Command-line flags override file values.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
	"unicode/utf8"

	"github.com/pelletier/go-toml/v2"
)

// DefaultStorePath is the store directory used when none is configured.
const DefaultStorePath = "kala_storage"

// Normalizer names accepted in [ingest] normalizer.
const (
	NormalizerPersian = "persian"
	NormalizerNone    = "none"
)

var (
	// ErrInvalidConfig is wrapped by every validation error.
	ErrInvalidConfig = errors.New("invalid config")
)

// Config is the run configuration.
type Config struct {
	Store     StoreConfig     `toml:"store"`
	Ingest    IngestConfig    `toml:"ingest"`
	Embedding EmbeddingConfig `toml:"embedding"`
	Reembed   ReembedConfig   `toml:"reembed"`
}

// StoreConfig locates the collection store.
type StoreConfig struct {
	Path string `toml:"path"`
}

// IngestConfig holds the inputs of an ingest run. Empty values are asked
// for interactively when running in a terminal.
type IngestConfig struct {
	Data       string `toml:"data"`
	Collection string `toml:"collection"`
	BatchSize  int    `toml:"batch_size"`
	Upsert     bool   `toml:"upsert"`
	Normalizer string `toml:"normalizer"`
	Delimiter  string `toml:"delimiter,omitempty"`
}

// EmbeddingConfig configures the optional embedding service.
type EmbeddingConfig struct {
	Enabled     bool   `toml:"enabled"`
	Host        string `toml:"host"`
	Model       string `toml:"model"`
	Token       string `toml:"token,omitempty"`
	Concurrency int    `toml:"concurrency"`
}

// ReembedConfig tunes the reembed command.
type ReembedConfig struct {
	BatchSize  int    `toml:"batch_size"`
	MaxRetries int    `toml:"max_retries"`
	RetryDelay string `toml:"retry_delay"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Store: StoreConfig{Path: DefaultStorePath},
		Ingest: IngestConfig{
			Normalizer: NormalizerPersian,
		},
		Embedding: EmbeddingConfig{
			Host:        "http://localhost:11434/v1",
			Model:       "embeddinggemma",
			Concurrency: 4,
		},
		Reembed: ReembedConfig{
			BatchSize:  100,
			MaxRetries: 3,
			RetryDelay: "1s",
		},
	}
}

// Load reads the file at path over the defaults. An empty path returns
// the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path, creating parent directories as needed.
func (c *Config) Save(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate checks values that cannot be fixed up later. Zero values are
// valid and mean "not set".
func (c *Config) Validate() error {
	if c.Ingest.BatchSize < 0 {
		return fmt.Errorf("%w: ingest.batch_size must not be negative", ErrInvalidConfig)
	}
	switch c.Ingest.Normalizer {
	case "", NormalizerPersian, NormalizerNone:
	default:
		return fmt.Errorf("%w: unknown ingest.normalizer %q", ErrInvalidConfig, c.Ingest.Normalizer)
	}
	if c.Ingest.Delimiter != "" && utf8.RuneCountInString(c.Ingest.Delimiter) != 1 {
		return fmt.Errorf("%w: ingest.delimiter must be a single character", ErrInvalidConfig)
	}
	if c.Embedding.Concurrency < 0 {
		return fmt.Errorf("%w: embedding.concurrency must not be negative", ErrInvalidConfig)
	}
	if c.Reembed.BatchSize < 0 || c.Reembed.MaxRetries < 0 {
		return fmt.Errorf("%w: reembed values must not be negative", ErrInvalidConfig)
	}
	if _, err := c.RetryDelay(); err != nil {
		return err
	}
	return nil
}

// RetryDelay parses reembed.retry_delay. Empty means one second.
func (c *Config) RetryDelay() (time.Duration, error) {
	if c.Reembed.RetryDelay == "" {
		return time.Second, nil
	}
	d, err := time.ParseDuration(c.Reembed.RetryDelay)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("%w: reembed.retry_delay %q", ErrInvalidConfig, c.Reembed.RetryDelay)
	}
	return d, nil
}

// Delimiter returns the configured field delimiter, or ',' when unset.
func (c *Config) Delimiter() rune {
	if c.Ingest.Delimiter == "" {
		return ','
	}
	r, _ := utf8.DecodeRuneInString(c.Ingest.Delimiter)
	return r
}
