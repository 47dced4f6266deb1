package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

const (
	configName = "config"
	configType = "yaml"
	envPrefix  = "INSTALIKE"
)

// Config holds all application configuration
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Storage StorageConfig `mapstructure:"storage"`
	UI      UIConfig      `mapstructure:"ui"`
	Logging LoggingConfig `mapstructure:"logging"`

	dir string
	v   *viper.Viper
}

// ServerConfig holds API connection settings
type ServerConfig struct {
	URL       string        `mapstructure:"url"`        // API base URL
	Timeout   time.Duration `mapstructure:"timeout"`    // Per-request timeout
	RateLimit float64       `mapstructure:"rate_limit"` // Requests per second, 0 disables throttling
	Burst     int           `mapstructure:"burst"`

	// RetryAfterRefresh re-issues a request that failed with 401 once the
	// token has been refreshed. Disabling it only refreshes for later calls.
	RetryAfterRefresh bool `mapstructure:"retry_after_refresh"`
}

// StorageConfig holds local persistence settings
type StorageConfig struct {
	Path string `mapstructure:"path"` // Directory of the session database, "" for memory only
}

// UIConfig holds UI configuration
type UIConfig struct {
	DefaultScreen string `mapstructure:"default_screen"` // "feed", "notifications" or "profile"
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			URL:               "",
			Timeout:           30 * time.Second,
			RateLimit:         10,
			Burst:             20,
			RetryAfterRefresh: true,
		},
		Storage: StorageConfig{
			Path: defaultDataPath(),
		},
		UI: UIConfig{
			DefaultScreen: "feed",
		},
		Logging: LoggingConfig{
			File:  filepath.Join(defaultDataPath(), "instalike.log"),
			Level: "INFO",
		},
	}
}

// defaultDataPath returns the default data directory for the current OS
func defaultDataPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "instalike")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "instalike")
	}
}

// DefaultConfigPath returns the default config directory for the current OS
func DefaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "instalike")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "instalike")
	}
}

// LoadConfig loads configuration from the default directory and environment
func LoadConfig() (*Config, error) {
	return Load(DefaultConfigPath())
}

// Load reads config.yaml from dir (if present) and applies INSTALIKE_*
// environment overrides on top of the defaults.
func Load(dir string) (*Config, error) {
	cfg := DefaultConfig()
	v := newViper(dir, cfg)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	cfg.Server.URL = strings.TrimRight(cfg.Server.URL, "/")
	cfg.dir = dir
	cfg.v = v
	return cfg, nil
}

func newViper(dir string, defaults *Config) *viper.Viper {
	v := viper.New()
	v.SetConfigName(configName)
	v.SetConfigType(configType)
	v.AddConfigPath(dir)

	// Environment variable overrides (INSTALIKE_SERVER_URL, ...)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults register every key so env overrides reach Unmarshal
	v.SetDefault("server.url", defaults.Server.URL)
	v.SetDefault("server.timeout", defaults.Server.Timeout)
	v.SetDefault("server.rate_limit", defaults.Server.RateLimit)
	v.SetDefault("server.burst", defaults.Server.Burst)
	v.SetDefault("server.retry_after_refresh", defaults.Server.RetryAfterRefresh)
	v.SetDefault("storage.path", defaults.Storage.Path)
	v.SetDefault("ui.default_screen", defaults.UI.DefaultScreen)
	v.SetDefault("logging.file", defaults.Logging.File)
	v.SetDefault("logging.level", defaults.Logging.Level)
	return v
}

// SaveConfig writes the configuration to config.yaml in its directory
func SaveConfig(cfg *Config) error {
	dir := cfg.dir
	if dir == "" {
		dir = DefaultConfigPath()
	}
	v := cfg.v
	if v == nil {
		v = newViper(dir, DefaultConfig())
	}

	// Ensure config directory exists
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Set fields individually to ensure correct key names (snake_case)
	v.Set("server.url", cfg.Server.URL)
	v.Set("server.timeout", cfg.Server.Timeout.String())
	v.Set("server.rate_limit", cfg.Server.RateLimit)
	v.Set("server.burst", cfg.Server.Burst)
	v.Set("server.retry_after_refresh", cfg.Server.RetryAfterRefresh)

	v.Set("storage.path", cfg.Storage.Path)

	v.Set("ui.default_screen", cfg.UI.DefaultScreen)

	v.Set("logging.file", cfg.Logging.File)
	v.Set("logging.level", cfg.Logging.Level)

	configFile := filepath.Join(dir, configName+"."+configType)
	if err := v.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	cfg.dir = dir
	cfg.v = v
	return nil
}

// Watch calls onChange with a freshly parsed copy of the configuration
// every time the config file is written. It returns false when no config
// file was loaded and there is nothing to watch.
func (c *Config) Watch(onChange func(*Config)) bool {
	if c.v == nil || c.v.ConfigFileUsed() == "" {
		return false
	}

	c.v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		next := DefaultConfig()
		if err := c.v.Unmarshal(next); err != nil {
			return
		}
		next.Server.URL = strings.TrimRight(next.Server.URL, "/")
		next.dir = c.dir
		next.v = c.v
		onChange(next)
	})
	c.v.WatchConfig()
	return true
}

// IsConfigured returns true if the API base URL is set
func (c *Config) IsConfigured() bool {
	return c.Server.URL != ""
}

// Dir returns the directory the configuration was loaded from
func (c *Config) Dir() string {
	return c.dir
}
