// Package config loads this server's configuration from environment
// variables (with an optional .env file), in the teacher's
// getEnvOrDefault/getEnvAsInt style.
package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config is the fully-resolved runtime configuration.
type Config struct {
	Port    string
	GinMode string

	DatabaseURL string

	// Auth
	ValidatorType string // "jwks" or "dev"
	JWTJWKSURL    string

	// LLM adapters (QA, note, and title generation all go through OpenAI)
	OpenAIAPIKey    string
	QAModel         string
	NoteModel       string
	TitleModel      string
	LLMTimeout      time.Duration
	LLMMaxRetries   int
	LLMRetryBackoff time.Duration

	// Speech adapters
	WhisperServerURL string
	TTSServerURL     string
	SpeechTimeout    time.Duration

	// Database Connection Pool
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxIdleTime int // minutes
	DBConnMaxLifetime int // minutes

	// Server
	ServerShutdownTimeoutSeconds int
	CORSAllowedOrigins           string

	// Logging
	LogLevel  string
	LogFormat string

	// Observability
	OTelEnabled     bool
	OTelServiceName string
	MetricsPort     string
}

// AppConfig is the process-wide resolved configuration, populated by
// LoadConfig.
var AppConfig *Config

// LoadConfig reads environment variables (loading a ".env" file first, if
// present) and populates AppConfig.
func LoadConfig() {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	AppConfig = &Config{
		Port:    getEnvOrDefault("PORT", "8080"),
		GinMode: getEnvOrDefault("GIN_MODE", "release"),

		DatabaseURL: getEnvOrDefault("DATABASE_URL", "postgres://localhost/reading_assistant?sslmode=disable"),

		ValidatorType: getEnvOrDefault("VALIDATOR_TYPE", "dev"),
		JWTJWKSURL:    getEnvOrDefault("JWT_JWKS_URL", ""),

		OpenAIAPIKey:    getEnvOrDefault("OPENAI_API_KEY", ""),
		QAModel:         getEnvOrDefault("QA_MODEL", "gpt-4o-mini"),
		NoteModel:       getEnvOrDefault("NOTE_MODEL", "gpt-4o-mini"),
		TitleModel:      getEnvOrDefault("TITLE_MODEL", "gpt-4o-mini"),
		LLMTimeout:      getEnvAsDuration("LLM_TIMEOUT", 30*time.Second),
		LLMMaxRetries:   getEnvAsInt("LLM_MAX_RETRIES", 3),
		LLMRetryBackoff: getEnvAsDuration("LLM_RETRY_BACKOFF", 1*time.Second),

		WhisperServerURL: getEnvOrDefault("WHISPER_SERVER_URL", "http://localhost:8081"),
		TTSServerURL:     getEnvOrDefault("TTS_SERVER_URL", "http://localhost:8082"),
		SpeechTimeout:    getEnvAsDuration("SPEECH_TIMEOUT", 15*time.Second),

		DBMaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 15),
		DBMaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
		DBConnMaxIdleTime: getEnvAsInt("DB_CONN_MAX_IDLE_TIME_MINUTES", 1),
		DBConnMaxLifetime: getEnvAsInt("DB_CONN_MAX_LIFETIME_MINUTES", 30),

		ServerShutdownTimeoutSeconds: getEnvAsInt("SERVER_SHUTDOWN_TIMEOUT_SECONDS", 30),
		CORSAllowedOrigins:           getEnvOrDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),

		LogLevel:  getEnvOrDefault("LOG_LEVEL", "debug"),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "text"),

		OTelEnabled:     getEnvOrDefault("OTEL_ENABLED", "true") == "true",
		OTelServiceName: getEnvOrDefault("OTEL_SERVICE_NAME", "reading-assistant"),
		MetricsPort:     getEnvOrDefault("METRICS_PORT", "9090"),
	}

	if AppConfig.ValidatorType == "jwks" && AppConfig.JWTJWKSURL == "" {
		log.Println("Warning: VALIDATOR_TYPE=jwks but JWT_JWKS_URL is empty; auth will fail closed")
	}

	if AppConfig.OpenAIAPIKey == "" {
		log.Println("Warning: OPENAI_API_KEY is missing; QA/note/title generation will fail")
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		} else {
			log.Printf("Warning: failed to parse %s=%q as duration, using default %v: %v", key, value, defaultValue, err)
		}
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		} else {
			log.Printf("Warning: failed to parse %s=%q as int, using default %d: %v", key, value, defaultValue, err)
		}
	}
	return defaultValue
}
