package config

import (
	"fmt"
	"net/url"
	"strings"
)

// validateConfig validates the loaded configuration values
func validateConfig(config *Config) error {
	if err := validateServerConfig(&config.Server); err != nil {
		return fmt.Errorf("server config validation failed: %w", err)
	}

	if err := validateOriginConfig(&config.Origin); err != nil {
		return fmt.Errorf("origin config validation failed: %w", err)
	}

	if err := validateCacheConfig(&config.Cache); err != nil {
		return fmt.Errorf("cache config validation failed: %w", err)
	}

	if err := validateThumbnailConfig(&config.Thumbnail); err != nil {
		return fmt.Errorf("thumbnail config validation failed: %w", err)
	}

	if err := validateLoggingConfig(&config.Logging); err != nil {
		return fmt.Errorf("logging config validation failed: %w", err)
	}

	if config.OTel.TraceSampleRatio < 0 || config.OTel.TraceSampleRatio > 1 {
		return fmt.Errorf("otel config validation failed: sample ratio must be within [0,1], got %v", config.OTel.TraceSampleRatio)
	}

	return nil
}

func validateServerConfig(config *ServerConfig) error {
	if config.Port < 1 || config.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", config.Port)
	}

	if config.ReadTimeout <= 0 || config.WriteTimeout <= 0 || config.IdleTimeout <= 0 {
		return fmt.Errorf("timeout values must be positive, got read=%v write=%v idle=%v",
			config.ReadTimeout, config.WriteTimeout, config.IdleTimeout)
	}

	if config.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive, got %v", config.RequestTimeout)
	}

	return nil
}

func validateOriginConfig(config *OriginConfig) error {
	u, err := url.Parse(config.BaseURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("origin base url must be an absolute http(s) url, got %q", config.BaseURL)
	}

	if config.Timeout <= 0 {
		return fmt.Errorf("origin timeout must be positive, got %v", config.Timeout)
	}

	if config.MaxBytes <= 0 {
		return fmt.Errorf("origin max bytes must be positive, got %d", config.MaxBytes)
	}

	if config.RateInterval < 0 {
		return fmt.Errorf("origin rate interval must not be negative, got %v", config.RateInterval)
	}

	if config.FailureThreshold < 1 {
		return fmt.Errorf("breaker failure threshold must be at least 1, got %d", config.FailureThreshold)
	}

	if config.ResetTimeout <= 0 {
		return fmt.Errorf("breaker reset timeout must be positive, got %v", config.ResetTimeout)
	}

	return nil
}

func validateCacheConfig(config *CacheConfig) error {
	if strings.TrimSpace(config.Dir) == "" {
		return fmt.Errorf("cache dir must not be empty")
	}

	if config.MemoryEntries < 0 {
		return fmt.Errorf("memory cache entries must not be negative, got %d", config.MemoryEntries)
	}

	if config.MaxAge < 0 {
		return fmt.Errorf("cache max age must not be negative, got %v", config.MaxAge)
	}

	if config.ShardPrefix < 0 || config.ShardPrefix > 8 {
		return fmt.Errorf("cache shard prefix must be between 0 and 8, got %d", config.ShardPrefix)
	}

	return nil
}

func validateThumbnailConfig(config *ThumbnailConfig) error {
	if config.DefaultSize < 1 {
		return fmt.Errorf("default size must be positive, got %d", config.DefaultSize)
	}

	if config.BuildTimeout <= 0 {
		return fmt.Errorf("build timeout must be positive, got %v", config.BuildTimeout)
	}

	if config.MaxPixels < 1 {
		return fmt.Errorf("max pixels must be positive, got %d", config.MaxPixels)
	}

	return nil
}

func validateLoggingConfig(config *LoggingConfig) error {
	switch strings.ToLower(config.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log level: %s", config.Level)
	}

	switch strings.ToLower(config.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("invalid log format: %s", config.Format)
	}

	return nil
}
