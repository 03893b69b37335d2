// Package config loads daemon configuration from file and environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/viper"

	"github.com/mmcdole/creatorstats/internal/domain"
)

// Config holds all application configuration.
type Config struct {
	Upstream UpstreamConfig `mapstructure:"upstream"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Refresh  RefreshConfig  `mapstructure:"refresh"`
	Server   ServerConfig   `mapstructure:"server"`
	Store    StoreConfig    `mapstructure:"store"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// UpstreamConfig holds the remote API endpoints and the retry policy.
type UpstreamConfig struct {
	GamesURL      string          `mapstructure:"games_url"`
	GroupsURL     string          `mapstructure:"groups_url"`
	ThumbnailsURL string          `mapstructure:"thumbnails_url"`
	UsersURL      string          `mapstructure:"users_url"`
	Timeout       time.Duration   `mapstructure:"timeout"`
	Backoff       []time.Duration `mapstructure:"backoff"` // rate-limit retry schedule
}

// CacheConfig holds cache lifetimes and batch sizing.
type CacheConfig struct {
	ContentTTL time.Duration `mapstructure:"content_ttl"`
	TotalsTTL  time.Duration `mapstructure:"totals_ttl"`
	ChunkSize  int           `mapstructure:"chunk_size"` // icon/live-counter batch size
}

// RefreshConfig holds background refresh tuning.
type RefreshConfig struct {
	Interval   time.Duration      `mapstructure:"interval"` // periodic refresh of active sessions
	JobTimeout time.Duration      `mapstructure:"job_timeout"`
	Milestones []domain.Milestone `mapstructure:"milestones"`
}

// ServerConfig holds the HTTP adapter configuration.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// StoreConfig holds the persistent store configuration.
type StoreConfig struct {
	Path string `mapstructure:"path"` // empty = memory-only
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Upstream: UpstreamConfig{
			GamesURL:      "https://games.roblox.com",
			GroupsURL:     "https://groups.roblox.com",
			ThumbnailsURL: "https://thumbnails.roblox.com",
			UsersURL:      "https://users.roblox.com",
			Timeout:       30 * time.Second,
			Backoff:       []time.Duration{500 * time.Millisecond, time.Second, 2 * time.Second},
		},
		Cache: CacheConfig{
			ContentTTL: 60 * time.Second,
			TotalsTTL:  15 * time.Second,
			ChunkSize:  100,
		},
		Refresh: RefreshConfig{
			Interval:   5 * time.Minute,
			JobTimeout: 30 * time.Second,
		},
		Server: ServerConfig{
			Addr: ":8460",
		},
		Store: StoreConfig{
			Path: defaultStorePath(),
		},
		Logging: LoggingConfig{
			File:  defaultLogPath(),
			Level: "INFO",
		},
	}
}

// defaultLogPath returns the default log file path for the current OS.
func defaultLogPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "creatorstats", "creatorstats.log")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "creatorstats", "creatorstats.log")
	}
}

// defaultStorePath returns the default BoltDB path for the current OS.
func defaultStorePath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "creatorstats", "creatorstats.db")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "creatorstats", "creatorstats.db")
	}
}

// defaultConfigPath returns the default config directory for the current OS.
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "creatorstats")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "creatorstats")
	}
}

// LoadConfig loads configuration from file and environment.
func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(defaultConfigPath())
	viper.AddConfigPath(".")

	// Environment variable overrides
	viper.SetEnvPrefix("CREATORSTATS")
	viper.AutomaticEnv()

	// Read config file if it exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}
