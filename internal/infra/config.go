package infra

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the optional file-based application settings.
// Secrets may appear here but environment variables and CLI flags
// are the recommended carriers (see ResolveCredential).
type Config struct {
	App struct {
		Name string `yaml:"name"`
	} `yaml:"app"`

	API struct {
		Binance struct {
			RestURL   string `yaml:"rest_url"`
			StreamURL string `yaml:"stream_url"`
			APIKey    string `yaml:"api_key"`
			SecretKey string `yaml:"secret_key"`
		} `yaml:"binance"`
	} `yaml:"api"`

	Logging struct {
		Level string `yaml:"level"`
		Dir   string `yaml:"dir"`
	} `yaml:"logging"`
}

// LoadConfig reads and parses the yaml settings file.
// A missing file is not an error when the path is the default one;
// the bot runs fine on flags and environment alone.
func LoadConfig(path string, required bool) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !required {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if cfg.API.Binance.SecretKey != "" {
		slog.Warn("API secret found in config file, prefer BINANCE_API_SECRET env or .env")
	}

	return &cfg, nil
}

// Validate checks configuration validity.
func (c *Config) Validate() error {
	if u := c.API.Binance.RestURL; u != "" && !hasPrefix(u, "http://") && !hasPrefix(u, "https://") {
		return fmt.Errorf("invalid Binance REST URL: %s", u)
	}
	if u := c.API.Binance.StreamURL; u != "" && !hasPrefix(u, "ws://") && !hasPrefix(u, "wss://") {
		return fmt.Errorf("invalid Binance stream URL: %s", u)
	}
	if lvl := c.Logging.Level; lvl != "" {
		if _, err := ParseLogLevel(lvl); err != nil {
			return err
		}
	}
	return nil
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[0:len(prefix)] == prefix
}

// ParseLogLevel maps a config string to a slog level.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level: %s", s)
	}
}
