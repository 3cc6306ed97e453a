package infra

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	yaml := `
app:
  name: primetrade
api:
  binance:
    rest_url: https://testnet.binancefuture.com
    stream_url: wss://stream.binancefuture.com
logging:
  level: debug
`
	if err := os.WriteFile(path, []byte(yaml), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path, true)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.API.Binance.RestURL != "https://testnet.binancefuture.com" {
		t.Errorf("RestURL = %q", cfg.API.Binance.RestURL)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q", cfg.Logging.Level)
	}
}

func TestLoadConfig_MissingOptional(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"), false)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v, want nil for optional missing file", err)
	}
	if cfg.API.Binance.RestURL != "" {
		t.Errorf("expected zero config, got %+v", cfg)
	}
}

func TestLoadConfig_MissingRequired(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"), true); err == nil {
		t.Fatal("LoadConfig() = nil error, want error for required missing file")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"empty is valid", func(c *Config) {}, false},
		{"bad rest url", func(c *Config) { c.API.Binance.RestURL = "ftp://x" }, true},
		{"bad stream url", func(c *Config) { c.API.Binance.StreamURL = "http://x" }, true},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, true},
		{"good urls", func(c *Config) {
			c.API.Binance.RestURL = "https://testnet.binancefuture.com"
			c.API.Binance.StreamURL = "wss://stream.binancefuture.com"
		}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cfg Config
			tt.mutate(&cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"", slog.LevelInfo, false},
		{"INFO", slog.LevelInfo, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"trace", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseLogLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLogLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
