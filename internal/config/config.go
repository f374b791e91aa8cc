package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	PostgreSQL PostgreSQLConfig
	Server     ServerConfig
	Model      ModelConfig
	Pipeline   PipelineConfig
}

// PostgreSQLConfig holds PostgreSQL database configuration
type PostgreSQLConfig struct {
	DSN                string // full connection string, takes precedence
	Host               string
	Port               int
	User               string
	Password           string
	Database           string
	SSLMode            string
	MaxConnections     int
	MaxIdleConnections int
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           int
	Host           string
	GinMode        string
	AllowedOrigins string
}

// ModelConfig holds the generative-model API configuration. The client speaks
// the OpenAI-compatible chat-completions protocol, which Gemini also exposes.
type ModelConfig struct {
	APIKey              string
	APIBase             string
	ChatModel           string
	ChatTemperature     float64
	ChatTopP            float64
	ChatMaxTokens       int
	EmbeddingModel      string
	EmbeddingDimensions int
	BatchSize           int
	Timeout             int
	Enabled             bool
}

// PipelineConfig holds the grounded-response pipeline tunables.
type PipelineConfig struct {
	ContextCacheTTL  int // seconds a catalog snapshot stays fresh
	ResponseCacheTTL int // seconds a cached answer stays valid
	MaxDailyRequests int // admission-control budget, no rollover
	MaxTurns         int // conversation window bound per caller
	ContextTurns     int // turns rendered into the prompt
	MaxStreamChunks  int // cap on outbound fragments per response
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	_ = godotenv.Load()

	cfg := &Config{
		PostgreSQL: PostgreSQLConfig{
			DSN:                getEnv("DATABASE_URL", getEnv("POSTGRESQL_URI", getEnv("PG_DSN", ""))),
			Host:               getEnv("PG_HOST", "localhost"),
			Port:               getEnvAsInt("PG_PORT", 5432),
			User:               getEnv("PG_USER", "postgres"),
			Password:           getEnv("PG_PASSWORD", ""),
			Database:           getEnv("PG_DATABASE", "turismo_huancayo"),
			SSLMode:            getEnv("PG_SSLMODE", "disable"),
			MaxConnections:     getEnvAsInt("PG_MAX_CONNECTIONS", 25),
			MaxIdleConnections: getEnvAsInt("PG_MAX_IDLE_CONNECTIONS", 5),
		},
		Server: ServerConfig{
			Port:           getEnvAsInt("SERVER_PORT", 8080),
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			GinMode:        getEnv("GIN_MODE", "release"),
			AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
		},
		Model: ModelConfig{
			APIKey:              getEnv("MODEL_API_KEY", getEnv("GEMINI_API_KEY", "")),
			APIBase:             getEnv("MODEL_API_BASE", "https://generativelanguage.googleapis.com/v1beta/openai"),
			ChatModel:           getEnv("MODEL_CHAT_MODEL", "gemini-1.5-flash"),
			ChatTemperature:     getEnvAsFloat("MODEL_CHAT_TEMPERATURE", 0.7),
			ChatTopP:            getEnvAsFloat("MODEL_CHAT_TOP_P", 0.9),
			ChatMaxTokens:       getEnvAsInt("MODEL_CHAT_MAX_TOKENS", 1024),
			EmbeddingModel:      getEnv("MODEL_EMBEDDING_MODEL", "text-embedding-004"),
			EmbeddingDimensions: getEnvAsInt("MODEL_EMBEDDING_DIMENSIONS", 768),
			BatchSize:           getEnvAsInt("MODEL_BATCH_SIZE", 100),
			Timeout:             getEnvAsInt("MODEL_TIMEOUT", 30),
			Enabled:             getEnv("MODEL_API_KEY", getEnv("GEMINI_API_KEY", "")) != "",
		},
		Pipeline: PipelineConfig{
			ContextCacheTTL:  getEnvAsInt("CONTEXT_CACHE_TTL", 300),
			ResponseCacheTTL: getEnvAsInt("RESPONSE_CACHE_TTL", 3600),
			MaxDailyRequests: getEnvAsInt("MAX_DAILY_REQUESTS", 45),
			MaxTurns:         getEnvAsInt("CONVERSATION_MAX_TURNS", 10),
			ContextTurns:     getEnvAsInt("CONVERSATION_CONTEXT_TURNS", 5),
			MaxStreamChunks:  getEnvAsInt("MAX_STREAM_CHUNKS", 500),
		},
	}

	return cfg, nil
}

// GetPostgreSQLDSN returns PostgreSQL connection string
func (c *Config) GetPostgreSQLDSN() string {
	if c.PostgreSQL.DSN != "" {
		return c.PostgreSQL.DSN
	}

	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgreSQL.Host,
		c.PostgreSQL.Port,
		c.PostgreSQL.User,
		c.PostgreSQL.Password,
		c.PostgreSQL.Database,
		c.PostgreSQL.SSLMode,
	)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer value for %s, using default %d", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Warning: Invalid float value for %s, using default %f", key, defaultValue)
		return defaultValue
	}
	return value
}
