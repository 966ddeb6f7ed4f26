package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	LLMBaseURL          string
	LLMModelName        string
	LLMAPIKey           string
	DescriptionCooldown time.Duration
	HTTPTimeout         time.Duration

	// Chat parameters of description requests. An empty model uses LLMModelName.
	DescribeModel       string
	DescribeMaxTokens   int
	DescribeTemperature float32

	ProductLookupURL string
	ProductCacheTTL  time.Duration
	FrameInterval    time.Duration

	DBPath    string
	PrefsPath string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	QdrantURL          string
	QdrantCollection   string
	QdrantVectorSize   int
	EmbeddingBaseURL   string
	EmbeddingModelName string

	APIPort   string
	LogLevel  slog.Level
	LogFormat string
}

// IndexEnabled reports whether the related-scan index is configured.
func (c *Config) IndexEnabled() bool {
	return c.QdrantURL != ""
}

// CacheEnabled reports whether the product lookup cache is configured.
func (c *Config) CacheEnabled() bool {
	return c.RedisAddr != ""
}

// Load reads configuration from environment variables and returns a Config struct.
// It applies defaults for optional fields and validates required fields.
// If a .env file exists in the current directory or a parent directory, it is loaded first.
// Environment variables already set take precedence over .env file values.
func Load() (*Config, error) {
	_ = godotenv.Load()

	wd, err := os.Getwd()
	if err == nil {
		dir := wd
		for i := 0; i < 5; i++ {
			envPath := filepath.Join(dir, ".env")
			if _, err := os.Stat(envPath); err == nil {
				_ = godotenv.Load(envPath)
				break
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	llmBaseURL := strings.TrimRight(getEnv("LLM_BASE_URL", "https://api.openai.com"), "/")

	cfg := &Config{
		LLMBaseURL:         llmBaseURL,
		LLMModelName:       getEnv("LLM_MODEL", "gpt-4o-mini"),
		LLMAPIKey:          getEnv("LLM_API_KEY", ""),
		DescribeModel:      getEnv("DESCRIBE_MODEL", ""),
		ProductLookupURL:   strings.TrimRight(getEnv("PRODUCT_LOOKUP_URL", "https://api.upcitemdb.com"), "/"),
		DBPath:             getEnv("DB_PATH", "./data/qrscanner.db"),
		PrefsPath:          getEnv("PREFS_PATH", "./data/settings.yaml"),
		RedisAddr:          getEnv("REDIS_ADDR", ""),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		QdrantURL:          getEnv("QDRANT_URL", ""),
		QdrantCollection:   getEnv("QDRANT_COLLECTION", "scans"),
		EmbeddingBaseURL:   strings.TrimRight(getEnv("EMBEDDING_BASE_URL", llmBaseURL), "/"),
		EmbeddingModelName: getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),
		APIPort:            getEnv("API_PORT", "9000"),
		LogFormat:          strings.ToLower(getEnv("LOG_FORMAT", "text")),
	}

	if cfg.LLMAPIKey == "" {
		return nil, fmt.Errorf("LLM_API_KEY is required")
	}

	durations := []struct {
		key  string
		def  time.Duration
		dest *time.Duration
	}{
		{"DESCRIPTION_COOLDOWN", 60 * time.Second, &cfg.DescriptionCooldown},
		{"HTTP_TIMEOUT", 30 * time.Second, &cfg.HTTPTimeout},
		{"PRODUCT_CACHE_TTL", 24 * time.Hour, &cfg.ProductCacheTTL},
		{"FRAME_INTERVAL", time.Second, &cfg.FrameInterval},
	}
	for _, d := range durations {
		v, err := getDuration(d.key, d.def)
		if err != nil {
			return nil, err
		}
		*d.dest = v
	}
	if cfg.HTTPTimeout <= 0 {
		return nil, fmt.Errorf("HTTP_TIMEOUT must be greater than 0")
	}

	if cfg.RedisDB, err = getInt("REDIS_DB", 0); err != nil {
		return nil, err
	}

	if cfg.DescribeMaxTokens, err = getInt("DESCRIBE_MAX_TOKENS", 150); err != nil {
		return nil, err
	}
	if cfg.DescribeMaxTokens < 0 {
		return nil, fmt.Errorf("DESCRIBE_MAX_TOKENS must not be negative")
	}
	if raw := os.Getenv("DESCRIBE_TEMPERATURE"); raw != "" {
		t, err := strconv.ParseFloat(raw, 32)
		if err != nil || t < 0 || t > 2 {
			return nil, fmt.Errorf("DESCRIBE_TEMPERATURE must be a number between 0 and 2")
		}
		cfg.DescribeTemperature = float32(t)
	}

	// The vector size must match the embedding model output; the collection is
	// validated against it on startup.
	if cfg.QdrantURL != "" {
		vectorSizeStr := getEnv("QDRANT_VECTOR_SIZE", "")
		if vectorSizeStr == "" {
			return nil, fmt.Errorf("QDRANT_VECTOR_SIZE is required when QDRANT_URL is set")
		}
		vectorSize, err := strconv.Atoi(vectorSizeStr)
		if err != nil {
			return nil, fmt.Errorf("QDRANT_VECTOR_SIZE must be a valid integer: %w", err)
		}
		if vectorSize <= 0 {
			return nil, fmt.Errorf("QDRANT_VECTOR_SIZE must be greater than 0")
		}
		cfg.QdrantVectorSize = vectorSize
	}

	if cfg.LogLevel, err = parseLevel(getEnv("LOG_LEVEL", "info")); err != nil {
		return nil, err
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("LOG_FORMAT must be text or json, got %q", cfg.LogFormat)
	}

	for _, p := range []string{cfg.DBPath, cfg.PrefsPath} {
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	return cfg, nil
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid duration: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s must not be negative", key)
	}
	return d, nil
}

func getInt(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
	}
	return v, nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("LOG_LEVEL is invalid: %w", err)
	}
	return level, nil
}
