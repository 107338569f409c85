package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server  ServerConfig
	Storage StorageConfig
	OCR     OCRConfig
	LLM     LLMConfig
	Batch   BatchConfig
}

// ServerConfig holds HTTP front-door configuration
type ServerConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// StorageConfig holds object-store configuration
type StorageConfig struct {
	Bucket    string
	URIScheme string // scheme used when composing storage_location URIs
	OpTimeout time.Duration
}

// OCRConfig holds text-extraction service configuration
type OCRConfig struct {
	Endpoint string
	Timeout  time.Duration
}

// LLMConfig holds structured-record service configuration
type LLMConfig struct {
	ProjectID   string
	Region      string
	Model       string
	Temperature float32
	Timeout     time.Duration
}

// BatchConfig holds per-request fan-out configuration
type BatchConfig struct {
	Workers        int
	PerFileTimeout time.Duration
	MaxBodyBytes   int64
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            getEnv("HTTP_ADDR", ":8080"),
			ReadTimeout:     getEnvAsDuration("HTTP_READ_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvAsDuration("HTTP_SHUTDOWN_TIMEOUT", 15*time.Second),
		},
		Storage: StorageConfig{
			Bucket:    getEnv("BUCKET_NAME", ""),
			URIScheme: getEnv("STORAGE_URI_SCHEME", "gs"),
			OpTimeout: getEnvAsDuration("STORAGE_OP_TIMEOUT", 10*time.Second),
		},
		OCR: OCRConfig{
			Endpoint: getEnv("OCR_ENDPOINT", ""),
			Timeout:  getEnvAsDuration("OCR_TIMEOUT", 30*time.Second),
		},
		LLM: LLMConfig{
			ProjectID:   getEnv("VERTEX_PROJECT_ID", ""),
			Region:      getEnv("VERTEX_REGION", "us-central1"),
			Model:       getEnv("VERTEX_MODEL", "gemini-1.5-flash"),
			Temperature: getEnvAsFloat32("VERTEX_TEMPERATURE", 0.0),
			Timeout:     getEnvAsDuration("VERTEX_TIMEOUT", 45*time.Second),
		},
		Batch: BatchConfig{
			Workers:        getEnvAsInt("BATCH_WORKERS", 4),
			PerFileTimeout: getEnvAsDuration("BATCH_PER_FILE_TIMEOUT", 3*time.Minute),
			MaxBodyBytes:   getEnvAsInt64("BATCH_MAX_BODY_BYTES", 32<<20),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Storage.Bucket == "" {
		return NewPipelineError("CONFIG_ERROR", "BUCKET_NAME is required", ErrStore)
	}
	if c.OCR.Endpoint == "" {
		return NewPipelineError("CONFIG_ERROR", "OCR_ENDPOINT is required", ErrExternalService)
	}
	if c.LLM.ProjectID == "" {
		return NewPipelineError("CONFIG_ERROR", "VERTEX_PROJECT_ID is required", ErrExternalService)
	}
	if c.Batch.Workers <= 0 {
		return NewPipelineError("CONFIG_ERROR", "BATCH_WORKERS must be positive", nil)
	}
	return nil
}
