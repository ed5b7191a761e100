// Package config provides configuration for the backend.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/clipforge/backend/media"
)

// Config holds the backend configuration.
type Config struct {
	// Server settings
	Port int

	// Media settings
	MediaRoot       string
	ChunkSize       int
	RateBytesPerSec int64

	// Session store bounds
	SessionCapacity int
	SessionTTL      time.Duration

	// Upstream completion API
	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string
	Temperature   float64
	LLMTimeout    time.Duration

	// Logging
	LogLevel string
}

// Load loads configuration from environment variables.
func Load() *Config {
	cfg := &Config{
		Port:            getEnvInt("PORT", 8900),
		MediaRoot:       getEnv("MEDIA_ROOT", "./media-files"),
		ChunkSize:       getEnvInt("CHUNK_SIZE", media.DefaultChunkSize),
		RateBytesPerSec: int64(getEnvInt("DOWNLOAD_RATE_BYTES", 1024*1024)),
		SessionCapacity: getEnvInt("SESSION_CAPACITY", 1024),
		SessionTTL:      time.Duration(getEnvInt("SESSION_TTL_MINUTES", 24*60)) * time.Minute,
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:   getEnv("OPENAI_BASE_URL", ""),
		OpenAIModel:     getEnv("OPENAI_MODEL", "gpt-3.5-turbo"),
		Temperature:     getEnvFloat("LLM_TEMPERATURE", 0.7),
		LLMTimeout:      time.Duration(getEnvInt("LLM_TIMEOUT_MS", 300000)) * time.Millisecond,
		LogLevel:        getEnv("LOG_LEVEL", "info"),
	}
	return cfg
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.MediaRoot == "" {
		return fmt.Errorf("media root must not be empty")
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("chunk size must be positive, got %d", c.ChunkSize)
	}
	if c.RateBytesPerSec <= 0 || c.RateBytesPerSec > media.MaxRateBytesPerSec {
		return fmt.Errorf("download rate %d out of range (0, %d]", c.RateBytesPerSec, int64(media.MaxRateBytesPerSec))
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature %g out of range [0, 2]", c.Temperature)
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if floatVal, err := strconv.ParseFloat(val, 64); err == nil {
			return floatVal
		}
	}
	return defaultVal
}
