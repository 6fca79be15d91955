// Package config loads service configuration. Environment variables win;
// an optional YAML file (CONFIG_FILE) can supply non-secret defaults.
// Credentials only ever come from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port            string
	ContentURL      string
	AdminToken      string
	CacheTTL        time.Duration
	UpstreamTimeout time.Duration
	CORSOrigins     []string
	LogLevel        string
}

type fileConfig struct {
	Port                   string   `yaml:"port"`
	ContentURL             string   `yaml:"content_url"`
	CacheTTLSeconds        int      `yaml:"cache_ttl_seconds"`
	UpstreamTimeoutSeconds int      `yaml:"upstream_timeout_seconds"`
	CORSOrigins            []string `yaml:"cors_origins"`
	LogLevel               string   `yaml:"log_level"`
}

// Load builds the configuration from defaults, then the optional YAML file,
// then the environment.
func Load() (*Config, error) {
	cfg := &Config{
		Port:            "8081",
		CacheTTL:        60 * time.Second,
		UpstreamTimeout: 30 * time.Second,
		CORSOrigins:     []string{"*"},
		LogLevel:        "info",
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := applyFile(cfg, path); err != nil {
			return nil, err
		}
	}

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.ContentURL = getEnv("CONTEMBER_CONTENT_URL", cfg.ContentURL)
	cfg.AdminToken = getEnv("CONTEMBER_ADMIN_TOKEN", cfg.AdminToken)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	if seconds, ok := getEnvAsInt("CACHE_TTL_SECONDS"); ok {
		cfg.CacheTTL = time.Duration(seconds) * time.Second
	}
	if seconds, ok := getEnvAsInt("UPSTREAM_TIMEOUT_SECONDS"); ok {
		cfg.UpstreamTimeout = time.Duration(seconds) * time.Second
	}
	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		cfg.CORSOrigins = splitCSV(origins)
	}

	if cfg.ContentURL == "" {
		return nil, errors.New("CONTEMBER_CONTENT_URL is required")
	}
	if cfg.AdminToken == "" {
		return nil, errors.New("CONTEMBER_ADMIN_TOKEN is required")
	}
	return cfg, nil
}

func applyFile(cfg *Config, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	var file fileConfig
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if file.Port != "" {
		cfg.Port = file.Port
	}
	if file.ContentURL != "" {
		cfg.ContentURL = file.ContentURL
	}
	if file.CacheTTLSeconds > 0 {
		cfg.CacheTTL = time.Duration(file.CacheTTLSeconds) * time.Second
	}
	if file.UpstreamTimeoutSeconds > 0 {
		cfg.UpstreamTimeout = time.Duration(file.UpstreamTimeoutSeconds) * time.Second
	}
	if len(file.CORSOrigins) > 0 {
		cfg.CORSOrigins = file.CORSOrigins
	}
	if file.LogLevel != "" {
		cfg.LogLevel = file.LogLevel
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvAsInt(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

func splitCSV(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			result = append(result, part)
		}
	}
	return result
}
