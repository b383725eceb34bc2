package config

import (
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// DefaultUserAgent is the default User-Agent string sent with all HTTP requests.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:147.0) Gecko/20100101 Firefox/147.0"

type Config struct {
	ProxyConnectionString string `mapstructure:"proxy_connection_string"`
	ClientTimeout         string `mapstructure:"client_timeout"` // Go duration string like "30s", "1h", etc.
	UserAgent             string `mapstructure:"user_agent"`
	Server                struct {
		Port    int    `mapstructure:"port"`
		Address string `mapstructure:"address"`
	} `mapstructure:"server"`
	Metrics struct {
		Enabled bool `mapstructure:"enabled"`
		Port    int  `mapstructure:"port"`
	} `mapstructure:"metrics"`
	LogLevel   string `mapstructure:"log_level"`
	DryRun     bool   `mapstructure:"dry_run"`
	OutputDir  string `mapstructure:"output_dir"`
	StagingDir string `mapstructure:"staging_dir"`
	SentryDSN  string `mapstructure:"sentry_dsn"`
	Downloader struct {
		Binary       string `mapstructure:"binary"`
		MaxHeight    string `mapstructure:"max_height"`
		ProbeTimeout string `mapstructure:"probe_timeout"`
	} `mapstructure:"downloader"`
	Subtitles struct {
		FetchTimeout string `mapstructure:"fetch_timeout"`
		MaxBytes     int64  `mapstructure:"max_bytes"`
	} `mapstructure:"subtitles"`
	Metadata struct {
		OMDbAPIKey string `mapstructure:"omdb_api_key"`
		BaseURL    string `mapstructure:"base_url"`
		Timeout    string `mapstructure:"timeout"`
	} `mapstructure:"metadata"`
	Cache struct {
		Provider string `mapstructure:"provider"` // "memory" or "redis"
		Size     int    `mapstructure:"size"`     // Maximum number of entries in the LRU cache
		TTL      string `mapstructure:"ttl"`      // Go duration string like "1h", "24h", etc.
		Redis    struct {
			Address  string `mapstructure:"address"`
			Password string `mapstructure:"password"`
			DB       int    `mapstructure:"db"`
		} `mapstructure:"redis"`
	} `mapstructure:"cache"`
	Classifier struct {
		SampleLines       int     `mapstructure:"sample_lines"`
		MaxMojibake       int     `mapstructure:"max_mojibake"`
		MaxLatin1Symbols  int     `mapstructure:"max_latin1_symbols"`
		MaxAccentedRatio  float64 `mapstructure:"max_accented_ratio"`
		MaxForeignMarkers int     `mapstructure:"max_foreign_markers"`
		MinASCIIRatio     float64 `mapstructure:"min_ascii_ratio"`
	} `mapstructure:"classifier"`
}

var (
	mu     sync.RWMutex
	logger zerolog.Logger
)

func init() {
	// Initialize zerolog with console writer for human-readable output
	logger = zerolog.New(zerolog.ConsoleWriter{
		Out:     os.Stdout,
		NoColor: false,
	}).With().Timestamp().Logger()
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 9876)
	v.SetDefault("server.address", "127.0.0.1")
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.port", 9090)
	v.SetDefault("log_level", "info")
	v.SetDefault("dry_run", true)
	v.SetDefault("output_dir", "media/TV Shows")
	v.SetDefault("staging_dir", "media/_hls_tmp")
	v.SetDefault("client_timeout", "30s")
	v.SetDefault("downloader.binary", "yt-dlp")
	v.SetDefault("downloader.max_height", "1080p")
	v.SetDefault("downloader.probe_timeout", "30s")
	v.SetDefault("subtitles.fetch_timeout", "15s")
	v.SetDefault("subtitles.max_bytes", 10<<20)
	v.SetDefault("metadata.base_url", "https://www.omdbapi.com/")
	v.SetDefault("metadata.timeout", "10s")
	v.SetDefault("cache.provider", "memory")
	v.SetDefault("cache.size", 1000)
	v.SetDefault("cache.ttl", "24h")
	v.SetDefault("classifier.sample_lines", 50)
	v.SetDefault("classifier.max_mojibake", 2)
	v.SetDefault("classifier.max_latin1_symbols", 2)
	v.SetDefault("classifier.max_accented_ratio", 0.05)
	v.SetDefault("classifier.max_foreign_markers", 8)
	v.SetDefault("classifier.min_ascii_ratio", 0.9)

	// Keys without a meaningful default still need registering so that
	// AutomaticEnv picks them up during Unmarshal.
	v.SetDefault("proxy_connection_string", "")
	v.SetDefault("user_agent", "")
	v.SetDefault("sentry_dsn", "")
	v.SetDefault("metadata.omdb_api_key", "")
	v.SetDefault("cache.redis.address", "")
	v.SetDefault("cache.redis.password", "")
	v.SetDefault("cache.redis.db", 0)
}

// LoadConfig reads the configuration from defaults, an optional yaml file, APP_* environment
// variables and, when given, command line flags (flag names use dashes in place of the
// underscores and dots of the config keys).
// An empty configFile searches for config.yaml in the working directory and ./config.
func LoadConfig(configFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variable support
	v.AutomaticEnv()
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Add specific environment variable for log level
	_ = v.BindEnv("log_level", "LOG_LEVEL")

	if flags != nil {
		if err := bindFlags(v, flags); err != nil {
			return nil, err
		}
	}

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}
	if config.UserAgent == "" {
		config.UserAgent = DefaultUserAgent
	}

	return &config, nil
}

// flagKeys maps command line flags to the config keys they override.
var flagKeys = map[string]string{
	"port":       "server.port",
	"address":    "server.address",
	"output-dir": "output_dir",
	"log-level":  "log_level",
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for name, key := range flagKeys {
		flag := flags.Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return err
		}
	}
	return nil
}

// SetConfig applies the log level of cfg to the process logger.
func SetConfig(cfg *Config) {
	// Parse and set log level from config
	level := zerolog.InfoLevel // default
	if cfg.LogLevel != "" {
		if parsedLevel, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
			level = parsedLevel
		} else {
			logger.Warn().Str("invalid_level", cfg.LogLevel).Msg("Invalid log level, using default 'info'")
		}
	}

	// Set the global log level
	zerolog.SetGlobalLevel(level)

	mu.Lock()
	logger = logger.Level(level)
	mu.Unlock()

	logger.Info().Str("level", level.String()).Msg("Logging configured")
}

func GetLogger() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// ParseDuration parses a Go duration string, logging and returning fallback when the
// value is empty or invalid.
func ParseDuration(field, value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil || parsed <= 0 {
		log := GetLogger()
		log.Warn().Err(err).Str("field", field).Str("value", value).Dur("fallback", fallback).Msg("Invalid duration, using default")
		return fallback
	}
	return parsed
}
