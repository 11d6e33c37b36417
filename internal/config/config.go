package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	// configDir is resolved lazily; SetConfigDir overrides it when called
	// before the first load
	configDir     string
	configDirInit bool
)

// SetConfigDir sets a custom configuration directory
// Must be called before any config loading functions
func SetConfigDir(dir string) {
	configDir = dir
	configDirInit = true
}

// GetConfigDir returns the configuration directory, ~/.searchmate unless
// overridden via SetConfigDir
func GetConfigDir() string {
	if !configDirInit {
		if home, err := os.UserHomeDir(); err == nil {
			configDir = filepath.Join(home, ".searchmate")
		}
		configDirInit = true
	}
	return configDir
}

// Config application configuration structure
type Config struct {
	Search  SearchConfig  `yaml:"search"`
	Tavily  TavilyConfig  `yaml:"tavily"`
	SearXNG SearXNGConfig `yaml:"searxng"`
	History HistoryConfig `yaml:"history"`
	Logging LoggingConfig `yaml:"logging"`
}

// SearchConfig search behavior configuration
type SearchConfig struct {
	Provider           string `yaml:"provider"`
	MaxResults         int    `yaml:"max_results"`
	IncludeRawContent  bool   `yaml:"include_raw_content"`
	MaxTokensPerSource int    `yaml:"max_tokens_per_source"`
}

// TavilyConfig hosted search API configuration
type TavilyConfig struct {
	APIKey string `yaml:"api_key"`
}

// SearXNGConfig self-hosted SearXNG configuration
type SearXNGConfig struct {
	BaseURL string `yaml:"base_url"`
}

// HistoryConfig search history storage configuration
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	DBPath  string `yaml:"db_path"`
}

// LoggingConfig logging configuration
type LoggingConfig struct {
	Level   string `yaml:"level"`
	MaxDays int    `yaml:"max_days"`
	Console bool   `yaml:"console"`
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	return &Config{
		Search: SearchConfig{
			Provider:           "tavily",
			MaxResults:         3,
			IncludeRawContent:  true,
			MaxTokensPerSource: 1000,
		},
		Tavily: TavilyConfig{
			APIKey: "",
		},
		SearXNG: SearXNGConfig{
			BaseURL: "",
		},
		History: HistoryConfig{
			Enabled: true,
			DBPath:  filepath.Join(homeDir, ".searchmate", "history.db"),
		},
		Logging: LoggingConfig{
			Level:   "info",
			MaxDays: 7,
			Console: false,
		},
	}
}

// ConfigDir returns the configuration directory path
func ConfigDir() (string, error) {
	dir := GetConfigDir()
	if dir == "" {
		return "", fmt.Errorf("failed to determine config directory")
	}
	return dir, nil
}

// LogDir returns the log directory path
func LogDir() string {
	dir := GetConfigDir()
	if dir == "" {
		return "logs"
	}
	return filepath.Join(dir, "logs")
}

// ConfigPath returns the configuration file path
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load loads configuration from file and merges with secrets
func Load() (*Config, error) {
	configPath, err := ConfigPath()
	if err != nil {
		return nil, err
	}

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		// Config file doesn't exist, create default config
		cfg := DefaultConfig()

		// Merge API key from .secrets
		cfg.Tavily.APIKey = tavilyKeyFromSecrets()

		if err := Save(cfg); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		return cfg, nil
	}

	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse config
	cfg := DefaultConfig() // Use default values as base
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// The .secrets file fills the API key only when config.yaml has none
	if cfg.Tavily.APIKey == "" {
		cfg.Tavily.APIKey = tavilyKeyFromSecrets()
	}

	// Validate config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save saves configuration to file
func Save(cfg *Config) error {
	configPath, err := ConfigPath()
	if err != nil {
		return err
	}

	// Ensure config directory exists
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Serialize config
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	// Add header comment
	content := "# SearchMate Configuration File\n# For more info: https://github.com/hession/searchmate\n\n" + string(data)

	// Write file
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	provider := strings.ToLower(strings.TrimSpace(c.Search.Provider))
	if provider != "tavily" && provider != "searxng" {
		return fmt.Errorf("config error: search.provider must be tavily or searxng, got %q", c.Search.Provider)
	}
	if provider == "searxng" && strings.TrimSpace(c.SearXNG.BaseURL) == "" {
		return fmt.Errorf("config error: searxng.base_url cannot be empty for searxng provider")
	}
	if c.Search.MaxResults <= 0 {
		return fmt.Errorf("config error: search.max_results must be greater than 0")
	}
	if c.Search.MaxTokensPerSource <= 0 {
		return fmt.Errorf("config error: search.max_tokens_per_source must be greater than 0")
	}

	if c.History.Enabled && c.History.DBPath == "" {
		return fmt.Errorf("config error: history.db_path cannot be empty when history is enabled")
	}

	return nil
}

// IsAPIKeyConfigured checks if the hosted provider API key is configured
func (c *Config) IsAPIKeyConfigured() bool {
	return c.Tavily.APIKey != ""
}

// String returns string representation of config (hides sensitive info)
func (c *Config) String() string {
	return fmt.Sprintf(`SearchMate Configuration:
  Search:
    Provider: %s
    Max Results: %d
    Include Raw Content: %v
    Max Tokens Per Source: %d
  Tavily:
    API Key: %s
  SearXNG:
    Base URL: %s
  History:
    Enabled: %v
    DB Path: %s
  Logging:
    Level: %s
    Max Days: %d
    Console: %v`,
		c.Search.Provider,
		c.Search.MaxResults,
		c.Search.IncludeRawContent,
		c.Search.MaxTokensPerSource,
		redactAPIKey(c.Tavily.APIKey),
		c.SearXNG.BaseURL,
		c.History.Enabled,
		c.History.DBPath,
		c.Logging.Level,
		c.Logging.MaxDays,
		c.Logging.Console,
	)
}

func redactAPIKey(value string) string {
	if value == "" {
		return "(not configured)"
	}
	if len(value) > 8 {
		return value[:8] + "..."
	}
	return "***"
}
