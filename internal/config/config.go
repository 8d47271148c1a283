package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Qdrant    QdrantConfig
	LLM       LLMConfig
	Speech    SpeechConfig
	Interview InterviewConfig
	Storage   StorageConfig
	Worker    WorkerConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type DatabaseConfig struct {
	Driver     string
	Host       string
	Port       string
	User       string
	Password   string
	DBName     string
	SQLitePath string
}

type QdrantConfig struct {
	URL        string
	APIKey     string
	Collection string
}

type LLMConfig struct {
	Provider        string
	GeminiAPIKey    string
	OpenAIAPIKey    string
	OpenAIBaseURL   string
	ChatModel       string
	EmbedModel      string
	EmbedDimensions int
	Timeout         time.Duration
}

type SpeechConfig struct {
	ElevenLabsAPIKey  string
	ElevenLabsVoiceID string
	ElevenLabsModelID string
}

type InterviewConfig struct {
	MaxQuestions int
	ChunkSize    int
	ChunkOverlap int
	RetrievalK   int
	MinSkills    int
	MaxSkills    int
}

type StorageConfig struct {
	UploadPath  string
	MaxFileSize int64
}

type WorkerConfig struct {
	Concurrency         int
	RetryMaxAttempts    int
	RetryInitialDelay   time.Duration
	SubmitRecoveryAfter time.Duration
	PollInterval        time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using default values.")
	}

	provider := strings.ToLower(getEnv("LLM_PROVIDER", "gemini"))

	return &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "3000"),
			Env:  getEnv("ENV", "development"),
		},
		Database: DatabaseConfig{
			Driver:     strings.ToLower(getEnv("DB_DRIVER", "postgres")),
			Host:       getEnv("DB_HOST", "localhost"),
			Port:       getEnv("DB_PORT", "5432"),
			User:       getEnv("DB_USER", "postgres"),
			Password:   getEnv("DB_PASSWORD", "postgres"),
			DBName:     getEnv("DB_NAME", "ai_interviewer"),
			SQLitePath: getEnv("SQLITE_PATH", "./interviews.db"),
		},
		Qdrant: QdrantConfig{
			URL:        getEnv("QDRANT_URL", ""),
			APIKey:     getEnv("QDRANT_API_KEY", ""),
			Collection: getEnv("QDRANT_COLLECTION", "interview_context"),
		},
		LLM: LLMConfig{
			Provider:        provider,
			GeminiAPIKey:    getEnv("GEMINI_API_KEY", ""),
			OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
			OpenAIBaseURL:   getEnv("OPENAI_BASE_URL", ""),
			ChatModel:       getEnv("CHAT_MODEL", defaultChatModel(provider)),
			EmbedModel:      getEnv("EMBED_MODEL", defaultEmbedModel(provider)),
			EmbedDimensions: getEnvAsInt("EMBED_DIMENSIONS", 768),
			Timeout:         getEnvAsDuration("LLM_TIMEOUT", "60s"),
		},
		Speech: SpeechConfig{
			ElevenLabsAPIKey:  getEnv("ELEVENLABS_API_KEY", ""),
			ElevenLabsVoiceID: getEnv("ELEVENLABS_VOICE_ID", "pNInz6obpgDQGcFmaJgB"),
			ElevenLabsModelID: getEnv("ELEVENLABS_MODEL_ID", "eleven_turbo_v2"),
		},
		Interview: InterviewConfig{
			MaxQuestions: getEnvAsInt("MAX_QUESTIONS", 7),
			ChunkSize:    getEnvAsInt("CHUNK_SIZE", 1500),
			ChunkOverlap: getEnvAsInt("CHUNK_OVERLAP", 20),
			RetrievalK:   getEnvAsInt("RETRIEVAL_K", 2),
			MinSkills:    getEnvAsInt("MIN_SKILLS", 1),
			MaxSkills:    getEnvAsInt("MAX_SKILLS", 20),
		},
		Storage: StorageConfig{
			UploadPath:  getEnv("UPLOAD_PATH", "./uploads"),
			MaxFileSize: getEnvAsInt64("MAX_FILE_SIZE", 10485760),
		},
		Worker: WorkerConfig{
			Concurrency:         getEnvAsInt("WORKER_CONCURRENCY", 2),
			RetryMaxAttempts:    getEnvAsInt("RETRY_MAX_ATTEMPTS", 3),
			RetryInitialDelay:   getEnvAsDuration("RETRY_INITIAL_DELAY", "500ms"),
			SubmitRecoveryAfter: getEnvAsDuration("SUBMIT_RECOVERY_AFTER", "2m"),
			PollInterval:        getEnvAsDuration("WORKER_POLL_INTERVAL", "30s"),
		},
	}
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}

func defaultChatModel(provider string) string {
	if provider == "openai" {
		return "gpt-4o-mini"
	}
	return "gemini-2.5-flash"
}

func defaultEmbedModel(provider string) string {
	if provider == "openai" {
		return "text-embedding-3-small"
	}
	return "text-embedding-004"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
