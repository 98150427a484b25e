package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port           string
	HTTPTimeout    time.Duration
	LogLevel       slog.Level
	MaxUploadBytes int64
	CacheSize      int
	CORSOrigins    []string
	FetchRetries   int
}

// fileConfig is the YAML shape read from FUNNEL_CONFIG.
type fileConfig struct {
	Port               string   `yaml:"port"`
	HTTPTimeoutSeconds int      `yaml:"http_timeout_seconds"`
	LogLevel           string   `yaml:"log_level"`
	MaxUploadMB        int      `yaml:"max_upload_mb"`
	CacheSize          int      `yaml:"cache_size"`
	CORSOrigins        []string `yaml:"cors_origins"`
	FetchRetries       int      `yaml:"fetch_retries"`
}

func Default() Config {
	return Config{
		Port:           "8080",
		HTTPTimeout:    15 * time.Second,
		LogLevel:       slog.LevelInfo,
		MaxUploadBytes: 32 << 20,
		CacheSize:      64,
		CORSOrigins:    []string{"http://localhost:5173", "http://localhost:8080"},
		FetchRetries:   3,
	}
}

// FromEnv builds the config: defaults, then the optional YAML file named by
// FUNNEL_CONFIG, then environment variables. A .env file in the working
// directory is loaded first if present.
func FromEnv() Config {
	_ = godotenv.Load()

	cfg := Default()
	if p := os.Getenv("FUNNEL_CONFIG"); p != "" {
		if err := LoadFile(p, &cfg); err != nil {
			slog.Warn("config file ignored", slog.String("path", p), slog.String("err", err.Error()))
		}
	}
	applyEnv(&cfg)
	return cfg
}

// LoadFile overlays the non-zero values of a YAML file onto cfg.
func LoadFile(path string, cfg *Config) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(b, &fc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	if fc.Port != "" {
		cfg.Port = fc.Port
	}
	if fc.HTTPTimeoutSeconds > 0 {
		cfg.HTTPTimeout = time.Duration(fc.HTTPTimeoutSeconds) * time.Second
	}
	if fc.LogLevel != "" {
		cfg.LogLevel = parseLevel(fc.LogLevel)
	}
	if fc.MaxUploadMB > 0 {
		cfg.MaxUploadBytes = int64(fc.MaxUploadMB) << 20
	}
	if fc.CacheSize > 0 {
		cfg.CacheSize = fc.CacheSize
	}
	if len(fc.CORSOrigins) > 0 {
		cfg.CORSOrigins = fc.CORSOrigins
	}
	if fc.FetchRetries > 0 {
		cfg.FetchRetries = fc.FetchRetries
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.Port = envOr("PORT", cfg.Port)
	if v := os.Getenv("HTTP_TIMEOUT_SECONDS"); v != "" {
		if d, err := time.ParseDuration(v + "s"); err == nil {
			cfg.HTTPTimeout = d
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = parseLevel(v)
	}
	if n := envInt("MAX_UPLOAD_MB"); n > 0 {
		cfg.MaxUploadBytes = int64(n) << 20
	}
	if n := envInt("CACHE_SIZE"); n > 0 {
		cfg.CacheSize = n
	}
	if n := envInt("FETCH_RETRIES"); n > 0 {
		cfg.FetchRetries = n
	}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		cfg.CORSOrigins = origins
	}
}

func parseLevel(s string) slog.Level {
	if strings.EqualFold(strings.TrimSpace(s), "debug") {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envInt(k string) int {
	n, err := strconv.Atoi(os.Getenv(k))
	if err != nil {
		return 0
	}
	return n
}
