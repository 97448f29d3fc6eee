// Package config loads and validates the cig configuration from .cig/config.json.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// CurrentVersion is the supported config schema version.
const CurrentVersion = 1

// ConfigDir is the directory holding config and graph documents.
const ConfigDir = ".cig"

// Config represents the complete cig configuration
type Config struct {
	Version int `json:"version" mapstructure:"version"`

	Store      StoreConfig      `json:"store" mapstructure:"store"`
	Scanner    ScannerConfig    `json:"scanner" mapstructure:"scanner"`
	Classifier ClassifierConfig `json:"classifier" mapstructure:"classifier"`
	Watcher    WatcherConfig    `json:"watcher" mapstructure:"watcher"`
	Logging    LoggingConfig    `json:"logging" mapstructure:"logging"`
}

// StoreConfig selects and configures the graph document backend
type StoreConfig struct {
	// Backend is one of "file", "sqlite", "memory"
	Backend string `json:"backend" mapstructure:"backend"`
	// Path is the document directory for the file backend, or the
	// database path for the sqlite backend
	Path string `json:"path" mapstructure:"path"`
}

// ScannerConfig bounds the semantic usage scan
type ScannerConfig struct {
	MaxFiles            int      `json:"maxFiles" mapstructure:"maxFiles"`
	ContextLines        int      `json:"contextLines" mapstructure:"contextLines"`
	MinIdentifierLength int      `json:"minIdentifierLength" mapstructure:"minIdentifierLength"`
	Extensions          []string `json:"extensions" mapstructure:"extensions"`
}

// ClassifierConfig configures the external change classifier
type ClassifierConfig struct {
	Enabled         bool   `json:"enabled" mapstructure:"enabled"`
	Model           string `json:"model" mapstructure:"model"`
	BaseURL         string `json:"baseUrl" mapstructure:"baseUrl"`
	APIKeyEnv       string `json:"apiKeyEnv" mapstructure:"apiKeyEnv"`
	MaxContentChars int    `json:"maxContentChars" mapstructure:"maxContentChars"`
	TimeoutMs       int    `json:"timeoutMs" mapstructure:"timeoutMs"`
}

// WatcherConfig configures the local change watcher
type WatcherConfig struct {
	PollIntervalMs int      `json:"pollIntervalMs" mapstructure:"pollIntervalMs"`
	DebounceMs     int      `json:"debounceMs" mapstructure:"debounceMs"`
	IgnorePatterns []string `json:"ignorePatterns" mapstructure:"ignorePatterns"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Format string `json:"format" mapstructure:"format"`
	Level  string `json:"level" mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: CurrentVersion,
		Store: StoreConfig{
			Backend: "file",
			Path:    filepath.Join(ConfigDir, "graphs"),
		},
		Scanner: ScannerConfig{
			MaxFiles:            500,
			ContextLines:        2,
			MinIdentifierLength: 3,
			Extensions: []string{
				".ts", ".tsx", ".js", ".jsx", ".mjs", ".cjs",
				".go", ".py", ".rb", ".java", ".kt", ".swift",
				".dart", ".cs", ".php", ".vue", ".svelte",
			},
		},
		Classifier: ClassifierConfig{
			Enabled:         true,
			Model:           "gpt-4o-mini",
			APIKeyEnv:       "OPENAI_API_KEY",
			MaxContentChars: 2000,
			TimeoutMs:       30000,
		},
		Watcher: WatcherConfig{
			PollIntervalMs: 2000,
			DebounceMs:     5000,
			IgnorePatterns: []string{
				".git", "node_modules", "build", "dist", "vendor", ".dart_tool",
			},
		},
		Logging: LoggingConfig{
			Format: "human",
			Level:  "info",
		},
	}
}

// LoadConfig loads configuration from <root>/.cig/config.json. A missing
// config file yields the defaults.
func LoadConfig(root string) (*Config, error) {
	v := viper.New()

	v.SetDefault("version", CurrentVersion)

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(filepath.Join(root, ConfigDir))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the configuration to <root>/.cig/config.json
func (c *Config) Save(root string) error {
	dir := filepath.Join(root, ConfigDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(dir, "config.json"), data, 0644)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Version != CurrentVersion {
		return &ConfigError{Field: "version", Message: "unsupported config version"}
	}
	switch c.Store.Backend {
	case "file", "sqlite", "memory":
	default:
		return &ConfigError{Field: "store.backend", Message: "must be one of file, sqlite, memory"}
	}
	if c.Scanner.MaxFiles <= 0 {
		return &ConfigError{Field: "scanner.maxFiles", Message: "must be positive"}
	}
	if c.Scanner.ContextLines < 0 {
		return &ConfigError{Field: "scanner.contextLines", Message: "must not be negative"}
	}
	if c.Classifier.MaxContentChars <= 0 {
		return &ConfigError{Field: "classifier.maxContentChars", Message: "must be positive"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
