// Package config loads lexstore configuration from .lexstore.yaml with
// environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	lexerrors "github.com/lexstore/lexstore/internal/errors"
	"github.com/lexstore/lexstore/internal/store"
)

// ConfigFileName is the per-directory configuration file.
const ConfigFileName = ".lexstore.yaml"

// Config is the complete lexstore configuration.
type Config struct {
	Version   int             `yaml:"version" json:"version"`
	Corpus    CorpusConfig    `yaml:"corpus" json:"corpus"`
	Retrieval RetrievalConfig `yaml:"retrieval" json:"retrieval"`
	Build     BuildConfig     `yaml:"build" json:"build"`
	Server    ServerConfig    `yaml:"server" json:"server"`
}

// CorpusConfig locates and describes the corpus index.
type CorpusConfig struct {
	// Path is the corpus directory holding the index and manifest.
	Path string `yaml:"path" json:"path"`

	// Backend selects the index implementation: "bleve" or "sqlite".
	Backend string `yaml:"backend" json:"backend"`

	// Language is the stemmer language baked into the analyzer at build
	// time. "none" disables stemming.
	Language string `yaml:"language" json:"language"`
}

// RetrievalConfig tunes query behavior.
type RetrievalConfig struct {
	// TopK is the default number of documents returned per query.
	TopK int `yaml:"top_k" json:"top_k"`

	// CacheSize bounds the retriever's query result cache.
	// Negative disables caching.
	CacheSize int `yaml:"cache_size" json:"cache_size"`

	// LoadCorpus controls whether search hits carry stored content.
	LoadCorpus bool `yaml:"load_corpus" json:"load_corpus"`

	// MMap opens the index through memory-mapped segments where supported.
	MMap bool `yaml:"mmap" json:"mmap"`
}

// BuildConfig tunes offline index builds.
type BuildConfig struct {
	// BatchSize is the number of documents indexed per batch.
	BatchSize int `yaml:"batch_size" json:"batch_size"`
}

// ServerConfig configures the MCP serve surface.
type ServerConfig struct {
	// LogLevel sets logging verbosity: debug, info, warn, error.
	LogLevel string `yaml:"log_level" json:"log_level"`

	// WatchCorpus reloads the index when the corpus directory changes.
	WatchCorpus bool `yaml:"watch_corpus" json:"watch_corpus"`
}

// NewConfig returns the default configuration.
func NewConfig() *Config {
	return &Config{
		Version: 1,
		Corpus: CorpusConfig{
			Path:     ".",
			Backend:  string(store.BackendBleve),
			Language: store.DefaultLanguage,
		},
		Retrieval: RetrievalConfig{
			TopK:       10,
			CacheSize:  128,
			LoadCorpus: true,
			MMap:       true,
		},
		Build: BuildConfig{
			BatchSize: 256,
		},
		Server: ServerConfig{
			LogLevel:    "info",
			WatchCorpus: true,
		},
	}
}

// Load reads configuration for a directory: defaults, then the directory's
// .lexstore.yaml if present, then environment overrides, then validation.
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	if err := cfg.loadFromFile(filepath.Join(dir, ConfigFileName)); err != nil {
		return nil, err
	}
	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return lexerrors.New(lexerrors.ErrCodeConfigNotFound,
			fmt.Sprintf("cannot read config file %s", path), err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return lexerrors.ConfigError(
			fmt.Sprintf("config file %s is not valid YAML", path), err)
	}
	return nil
}

// Environment overrides take precedence over file values.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("LEXSTORE_CORPUS_PATH"); v != "" {
		c.Corpus.Path = v
	}
	if v := os.Getenv("LEXSTORE_BACKEND"); v != "" {
		c.Corpus.Backend = v
	}
	if v := os.Getenv("LEXSTORE_LANGUAGE"); v != "" {
		c.Corpus.Language = v
	}
	if v := os.Getenv("LEXSTORE_TOP_K"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Retrieval.TopK = n
		}
	}
	if v := os.Getenv("LEXSTORE_LOG_LEVEL"); v != "" {
		c.Server.LogLevel = v
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	switch store.Backend(c.Corpus.Backend) {
	case store.BackendBleve, store.BackendSQLite:
	default:
		return lexerrors.ConfigError(
			fmt.Sprintf("unknown backend %q (valid options: bleve, sqlite)", c.Corpus.Backend), nil)
	}

	if !store.SupportedLanguage(c.Corpus.Language) {
		return lexerrors.ConfigError(
			fmt.Sprintf("unsupported language %q", c.Corpus.Language), nil)
	}

	if c.Retrieval.TopK <= 0 {
		return lexerrors.ConfigError(
			fmt.Sprintf("retrieval.top_k must be positive, got %d", c.Retrieval.TopK), nil)
	}

	if c.Build.BatchSize <= 0 {
		return lexerrors.ConfigError(
			fmt.Sprintf("build.batch_size must be positive, got %d", c.Build.BatchSize), nil)
	}

	switch c.Server.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return lexerrors.ConfigError(
			fmt.Sprintf("unknown log level %q", c.Server.LogLevel), nil)
	}

	return nil
}

// Save writes the configuration to a directory's .lexstore.yaml.
func (c *Config) Save(dir string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return os.WriteFile(filepath.Join(dir, ConfigFileName), data, 0o644)
}
