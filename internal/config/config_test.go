package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig("", nil)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Server.Port != 9876 {
		t.Errorf("Expected default port 9876, got %d", cfg.Server.Port)
	}
	if cfg.Server.Address != "127.0.0.1" {
		t.Errorf("Expected default address 127.0.0.1, got %q", cfg.Server.Address)
	}
	if !cfg.DryRun {
		t.Error("Expected dry run to be enabled by default")
	}
	if cfg.Downloader.Binary != "yt-dlp" || cfg.Downloader.MaxHeight != "1080p" {
		t.Errorf("Unexpected downloader defaults: %+v", cfg.Downloader)
	}
	if cfg.Classifier.MaxForeignMarkers != 8 || cfg.Classifier.MinASCIIRatio != 0.9 {
		t.Errorf("Unexpected classifier defaults: %+v", cfg.Classifier)
	}
	if cfg.UserAgent != DefaultUserAgent {
		t.Errorf("Expected default user agent, got %q", cfg.UserAgent)
	}
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte("server:\n  port: 7000\noutput_dir: /srv/tv\ncache:\n  provider: redis\n")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("APP_METADATA_OMDB_API_KEY", "abc123")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadConfig(path, nil)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Server.Port != 7000 {
		t.Errorf("Expected port from file, got %d", cfg.Server.Port)
	}
	if cfg.OutputDir != "/srv/tv" {
		t.Errorf("Expected output dir from file, got %q", cfg.OutputDir)
	}
	if cfg.Cache.Provider != "redis" {
		t.Errorf("Expected redis cache provider, got %q", cfg.Cache.Provider)
	}
	if cfg.Metadata.OMDbAPIKey != "abc123" {
		t.Errorf("Expected OMDb key from env, got %q", cfg.Metadata.OMDbAPIKey)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("Expected log level from LOG_LEVEL, got %q", cfg.LogLevel)
	}
}

func TestLoadConfig_FlagsOverride(t *testing.T) {
	t.Chdir(t.TempDir())

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("port", 9876, "")
	flags.String("output-dir", "", "")
	if err := flags.Parse([]string{"--port", "9999", "--output-dir", "/tmp/out"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	cfg, err := LoadConfig("", flags)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("Expected port from flag, got %d", cfg.Server.Port)
	}
	if cfg.OutputDir != "/tmp/out" {
		t.Errorf("Expected output dir from flag, got %q", cfg.OutputDir)
	}
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	if err == nil {
		t.Fatal("Expected error for missing explicit config file")
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected time.Duration
	}{
		{"empty uses fallback", "", 5 * time.Second},
		{"valid", "250ms", 250 * time.Millisecond},
		{"invalid uses fallback", "soon", 5 * time.Second},
		{"negative uses fallback", "-1s", 5 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseDuration("test", tt.value, 5*time.Second); got != tt.expected {
				t.Errorf("ParseDuration(%q) = %v, want %v", tt.value, got, tt.expected)
			}
		})
	}
}

func TestSetConfig(t *testing.T) {
	SetConfig(&Config{LogLevel: "warn"})
	t.Cleanup(func() { SetConfig(&Config{LogLevel: "info"}) })

	if got := GetLogger().GetLevel(); got != zerolog.WarnLevel {
		t.Errorf("Expected logger level warn, got %v", got)
	}

	SetConfig(&Config{LogLevel: "loud"})
	if got := GetLogger().GetLevel(); got != zerolog.InfoLevel {
		t.Errorf("Expected invalid level to fall back to info, got %v", got)
	}
}
