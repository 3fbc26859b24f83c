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

	"mga-chatbot/internal/domain"
)

// Responder strategies.
const (
	ResponderTemplate   = "template"
	ResponderDelegating = "delegating"
)

// Chat backends used by the delegating responder.
const (
	LLMProviderOpenAI    = "openai"
	LLMProviderAnthropic = "anthropic"
)

// Embedding providers.
const (
	EmbeddingProviderHashing = "hashing"
	EmbeddingProviderOpenAI  = "openai"
)

// Index backends.
const (
	IndexBackendMemory = "memory"
	IndexBackendQdrant = "qdrant"
)

// Config holds all configuration for the application.
type Config struct {
	LogLevel  slog.Level
	LogFormat string

	APIPort    string
	DataDir    string
	DBPath     string
	UsersFile  string
	SessionTTL time.Duration

	ChunkSize    int
	ChunkOverlap int
	TopK         int

	Responder    string
	LLMProvider  string
	LLMBaseURL   string
	LLMModelName string
	LLMAPIKey    string
	LLMTimeout   time.Duration
	LLMRateLimit float64

	EmbeddingProvider  string
	EmbeddingBaseURL   string
	EmbeddingModelName string
	EmbeddingDimension int

	IndexBackend           string
	QdrantURL              string
	QdrantCollectionPrefix string
}

// Load reads configuration from environment variables and returns a Config struct.
// It applies defaults for optional fields and validates the rest.
// A .env file in the current directory or one of its parents is loaded first;
// variables already set in the environment take precedence.
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

	cfg := &Config{
		LogFormat:              getEnv("LOG_FORMAT", "text"),
		APIPort:                getEnv("API_PORT", "9000"),
		DataDir:                getEnv("DATA_DIR", "./Chatbot_Files"),
		DBPath:                 getEnv("DB_PATH", "./data/mga-chatbot.db"),
		UsersFile:              getEnv("USERS_FILE", "./users.yaml"),
		Responder:              strings.ToLower(getEnv("RESPONDER", ResponderTemplate)),
		LLMProvider:            strings.ToLower(getEnv("LLM_PROVIDER", LLMProviderOpenAI)),
		LLMBaseURL:             getEnv("LLM_BASE_URL", "http://localhost:8080"),
		LLMModelName:           getEnv("LLM_MODEL", "gpt-4o-mini"),
		LLMAPIKey:              getEnv("LLM_API_KEY", ""),
		EmbeddingProvider:      strings.ToLower(getEnv("EMBEDDING_PROVIDER", EmbeddingProviderHashing)),
		EmbeddingBaseURL:       getEnv("EMBEDDING_BASE_URL", "http://localhost:8081"),
		EmbeddingModelName:     getEnv("EMBEDDING_MODEL_NAME", "all-MiniLM-L6-v2"),
		IndexBackend:           strings.ToLower(getEnv("INDEX_BACKEND", IndexBackendMemory)),
		QdrantURL:              getEnv("QDRANT_URL", "http://localhost:6333"),
		QdrantCollectionPrefix: getEnv("QDRANT_COLLECTION_PREFIX", "chatbot"),
	}

	if cfg.LogLevel, err = parseLevel(getEnv("LOG_LEVEL", "info")); err != nil {
		return nil, err
	}
	if cfg.SessionTTL, err = getEnvDuration("SESSION_TTL", 8*time.Hour); err != nil {
		return nil, err
	}
	if cfg.ChunkSize, err = getEnvInt("CHUNK_SIZE", 500); err != nil {
		return nil, err
	}
	if cfg.ChunkOverlap, err = getEnvInt("CHUNK_OVERLAP", 50); err != nil {
		return nil, err
	}
	if cfg.TopK, err = getEnvInt("TOP_K", 3); err != nil {
		return nil, err
	}
	if cfg.LLMTimeout, err = getEnvDuration("LLM_TIMEOUT", 60*time.Second); err != nil {
		return nil, err
	}
	if cfg.LLMRateLimit, err = getEnvFloat("LLM_RATE_LIMIT", 0); err != nil {
		return nil, err
	}

	// The hashing embedder has no server to dictate a size, so it gets a default.
	defaultDim := 0
	if cfg.EmbeddingProvider == EmbeddingProviderHashing {
		defaultDim = 256
	}
	if cfg.EmbeddingDimension, err = getEnvInt("EMBEDDING_DIMENSION", defaultDim); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return cfg, nil
}

// Validate checks that every value is usable. Chunk parameters are checked
// here so a bad deployment fails at startup rather than on the first upload.
func (c *Config) Validate() error {
	if c.ChunkSize <= 0 {
		return &domain.ConfigError{Field: "CHUNK_SIZE", Message: "must be greater than 0"}
	}
	if c.ChunkOverlap < 0 {
		return &domain.ConfigError{Field: "CHUNK_OVERLAP", Message: "must not be negative"}
	}
	if c.ChunkOverlap >= c.ChunkSize {
		return &domain.ConfigError{
			Field:   "CHUNK_OVERLAP",
			Message: fmt.Sprintf("must be less than CHUNK_SIZE (%d >= %d)", c.ChunkOverlap, c.ChunkSize),
		}
	}
	if c.TopK <= 0 {
		return &domain.ConfigError{Field: "TOP_K", Message: "must be greater than 0"}
	}
	if c.EmbeddingDimension <= 0 {
		return &domain.ConfigError{Field: "EMBEDDING_DIMENSION", Message: "is required and must be greater than 0"}
	}
	if c.LLMTimeout <= 0 {
		return &domain.ConfigError{Field: "LLM_TIMEOUT", Message: "must be greater than 0"}
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return &domain.ConfigError{Field: "LOG_FORMAT", Message: "must be text or json"}
	}

	switch c.Responder {
	case ResponderTemplate, ResponderDelegating:
	default:
		return &domain.ConfigError{Field: "RESPONDER", Message: fmt.Sprintf("unknown responder %q", c.Responder)}
	}
	switch c.LLMProvider {
	case LLMProviderOpenAI, LLMProviderAnthropic:
	default:
		return &domain.ConfigError{Field: "LLM_PROVIDER", Message: fmt.Sprintf("unknown provider %q", c.LLMProvider)}
	}
	if c.Responder == ResponderDelegating && c.LLMProvider == LLMProviderAnthropic && c.LLMAPIKey == "" {
		return &domain.ConfigError{Field: "LLM_API_KEY", Message: "is required for the anthropic provider"}
	}
	switch c.EmbeddingProvider {
	case EmbeddingProviderHashing, EmbeddingProviderOpenAI:
	default:
		return &domain.ConfigError{Field: "EMBEDDING_PROVIDER", Message: fmt.Sprintf("unknown provider %q", c.EmbeddingProvider)}
	}
	switch c.IndexBackend {
	case IndexBackendMemory, IndexBackendQdrant:
	default:
		return &domain.ConfigError{Field: "INDEX_BACKEND", Message: fmt.Sprintf("unknown backend %q", c.IndexBackend)}
	}

	return nil
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &domain.ConfigError{Field: key, Message: fmt.Sprintf("must be a valid integer: %v", err)}
	}
	return v, nil
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		return 0, &domain.ConfigError{Field: key, Message: "must be a non-negative number"}
	}
	return v, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, &domain.ConfigError{Field: key, Message: fmt.Sprintf("must be a duration like 30s: %v", err)}
	}
	return v, nil
}

func parseLevel(raw string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(raw)); err != nil {
		return 0, &domain.ConfigError{Field: "LOG_LEVEL", Message: fmt.Sprintf("unknown level %q", raw)}
	}
	return level, nil
}
