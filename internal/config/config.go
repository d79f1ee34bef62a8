package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Ai       AIConfig
	Pipeline PipelineConfig
	Artifact ArtifactConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	SessionBackend     string // "redis" or "memory"
}

type DatabaseConfig struct {
	Connection string
}

type AIConfig struct {
	// Ordered provider preference used when a job does not name one.
	ProviderOrder []string // e.g. ["gemini", "perplexity", "openai", "anthropic"]

	OpenAIKey     string
	AnthropicKey  string
	GeminiKey     string
	PerplexityKey string

	OpenAIModel     string
	AnthropicModel  string
	GeminiModel     string
	PerplexityModel string

	EmbeddingProvider string // "gemini" or "ollama"
	OllamaBaseURL     string
	OllamaModel       string
}

type PipelineConfig struct {
	// WorkerLimit caps simultaneous question pipelines.
	WorkerLimit int
	// ConcurrencyScope is "job" (a fresh semaphore per job) or "global"
	// (one semaphore shared by every job this worker runs).
	ConcurrencyScope string
	JobTimeout       time.Duration
	SessionTTL       time.Duration
	MaxRetries       int
	RetryBaseDelay   time.Duration
	ContextBudget    int // max characters of retrieved context per prompt
	TopK             int
	ScoreThreshold   float64
	JobTopic         string
}

type ArtifactConfig struct {
	Dir           string
	RetentionDays int
	MaxUploadSize int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			SessionBackend:     getEnv("SESSION_BACKEND", "redis"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Ai: AIConfig{
			ProviderOrder:     getEnvAsList("LLM_PROVIDER_ORDER", "gemini,perplexity,openai,anthropic"),
			OpenAIKey:         getEnv("OPENAI_API_KEY", ""),
			AnthropicKey:      getEnv("ANTHROPIC_API_KEY", ""),
			GeminiKey:         getEnv("GEMINI_API_KEY", ""),
			PerplexityKey:     getEnv("PERPLEXITY_API_KEY", ""),
			OpenAIModel:       getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			AnthropicModel:    getEnv("ANTHROPIC_MODEL", "claude-3-5-sonnet-20241022"),
			GeminiModel:       getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
			PerplexityModel:   getEnv("PERPLEXITY_MODEL", "llama-3.1-sonar-small-128k-online"),
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "gemini"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:       getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
		},
		Pipeline: PipelineConfig{
			WorkerLimit:      getEnvAsInt("PIPELINE_WORKER_LIMIT", 3),
			ConcurrencyScope: getEnv("PIPELINE_CONCURRENCY_SCOPE", "job"),
			JobTimeout:       getEnvAsDuration("PIPELINE_JOB_TIMEOUT", 15*time.Minute),
			SessionTTL:       getEnvAsDuration("SESSION_TTL", time.Hour),
			MaxRetries:       getEnvAsInt("LLM_MAX_RETRIES", 3),
			RetryBaseDelay:   getEnvAsDuration("LLM_RETRY_BASE_DELAY", time.Second),
			ContextBudget:    getEnvAsInt("PIPELINE_CONTEXT_BUDGET", 6000),
			TopK:             getEnvAsInt("KNOWLEDGE_TOP_K", 5),
			ScoreThreshold:   getEnvAsFloat("KNOWLEDGE_SCORE_THRESHOLD", 0.35),
			JobTopic:         getEnv("JOB_TOPIC_NAME", "PROCESS_QUESTION_PAPER"),
		},
		Artifact: ArtifactConfig{
			Dir:           getEnv("ARTIFACT_DIR", "artifacts"),
			RetentionDays: getEnvAsInt("ARTIFACT_RETENTION_DAYS", 7),
			MaxUploadSize: getEnvAsInt("MAX_UPLOAD_SIZE", 10*1024*1024),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsList(key, fallback string) []string {
	raw := getEnv(key, fallback)
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
