package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig    `json:"server"`
	Origin    OriginConfig    `json:"origin"`
	Cache     CacheConfig     `json:"cache"`
	Thumbnail ThumbnailConfig `json:"thumbnail"`
	Logging   LoggingConfig   `json:"logging"`
	OTel      OTelConfig      `json:"otel"`
}

type ServerConfig struct {
	Port           int           `json:"port" env:"SERVER_PORT" default:"9000"`
	ReadTimeout    time.Duration `json:"read_timeout" env:"SERVER_READ_TIMEOUT" default:"60s"`
	WriteTimeout   time.Duration `json:"write_timeout" env:"SERVER_WRITE_TIMEOUT" default:"60s"`
	IdleTimeout    time.Duration `json:"idle_timeout" env:"SERVER_IDLE_TIMEOUT" default:"120s"`
	RequestTimeout time.Duration `json:"request_timeout" env:"SERVER_REQUEST_TIMEOUT" default:"30s"`
}

type OriginConfig struct {
	BaseURL          string        `json:"base_url" env:"THUMBS_ORIGIN_BASE_URL" default:"https://extensia-france.com/imgs"`
	Timeout          time.Duration `json:"timeout" env:"THUMBS_ORIGIN_TIMEOUT" default:"10s"`
	MaxBytes         int64         `json:"max_bytes" env:"THUMBS_ORIGIN_MAX_BYTES" default:"20971520"`
	RateInterval     time.Duration `json:"rate_interval" env:"THUMBS_ORIGIN_RATE_INTERVAL" default:"0s"`
	FailureThreshold int           `json:"failure_threshold" env:"THUMBS_BREAKER_FAILURE_THRESHOLD" default:"5"`
	ResetTimeout     time.Duration `json:"reset_timeout" env:"THUMBS_BREAKER_RESET_TIMEOUT" default:"30s"`
}

type CacheConfig struct {
	Dir           string        `json:"dir" env:"THUMBS_CACHE_DIR" default:"./imgs_cache"`
	MemoryEntries int           `json:"memory_entries" env:"THUMBS_MEMORY_CACHE_ENTRIES" default:"256"`
	MaxAge        time.Duration `json:"max_age" env:"THUMBS_CACHE_MAX_AGE" default:"86400s"`
	ShardPrefix   int           `json:"shard_prefix" env:"THUMBS_CACHE_SHARD_PREFIX" default:"0"`
}

type ThumbnailConfig struct {
	DefaultSize  int           `json:"default_size" env:"THUMBS_DEFAULT_SIZE" default:"500"`
	BuildTimeout time.Duration `json:"build_timeout" env:"THUMBS_BUILD_TIMEOUT" default:"30s"`
	MaxPixels    int64         `json:"max_pixels" env:"THUMBS_MAX_PIXELS" default:"50000000"`
}

type LoggingConfig struct {
	Level  string `json:"level" env:"LOG_LEVEL" default:"info"`
	Format string `json:"format" env:"LOG_FORMAT" default:"json"`
}

type OTelConfig struct {
	Enabled          bool    `json:"enabled" env:"OTEL_ENABLED" default:"false"`
	ServiceName      string  `json:"service_name" env:"OTEL_SERVICE_NAME" default:"thumbs"`
	ServiceVersion   string  `json:"service_version" env:"SERVICE_VERSION" default:"0.1.0"`
	Environment      string  `json:"environment" env:"DEPLOYMENT_ENV" default:"development"`
	OTLPEndpoint     string  `json:"otlp_endpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT" default:"http://localhost:4318"`
	TraceSampleRatio float64 `json:"trace_sample_ratio" env:"OTEL_TRACE_SAMPLE_RATIO" default:"1.0"`
}

// NewConfig creates a new configuration by loading from environment variables
// with fallback to default values
func NewConfig() (*Config, error) {
	config := &Config{}

	if err := loadFromEnvironment(config); err != nil {
		return nil, err
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// LoadDotEnv loads variables from the given .env files when they exist.
// Variables already present in the environment win.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	existing := make([]string, 0, len(files))
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("load dotenv: %w", err)
	}
	return nil
}
