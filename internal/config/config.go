package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server      ServerConfig
	BallDontLie BallDontLieConfig
	Gemini      GeminiConfig
	OpenAI      OpenAIConfig
	X           XConfig
	Redis       RedisConfig
	Postgres    PostgresConfig
	Dedup       DedupConfig
	Logging     LoggingConfig
	Client      ClientConfig
}

type ServerConfig struct {
	Port           int
	StaticDir      string
	AllowedOrigins []string
	RateLimitRPS   float64
	RateLimitBurst int
}

type BallDontLieConfig struct {
	APIKey          string
	BaseURL         string
	RequestsPerMin  int
	Timeout         time.Duration
	ProfileDeadline time.Duration
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

type OpenAIConfig struct {
	APIKey         string
	Model          string
	EnableFallback bool
}

type XConfig struct {
	APIKey       string
	APISecret    string
	AccessToken  string
	AccessSecret string
	BaseURL      string
	TokenURL     string
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

// DedupBackend selects where the daily post ledger lives.
type DedupBackend string

const (
	DedupMemory   DedupBackend = "memory"
	DedupRedis    DedupBackend = "redis"
	DedupPostgres DedupBackend = "postgres"
)

type DedupConfig struct {
	Backend   DedupBackend
	Retention time.Duration
}

type LoggingConfig struct {
	Level string
	File  string
}

type ClientConfig struct {
	ServerURL string
	DataDir   string
	LogFile   string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnvInt("PORT", 5050),
			StaticDir:      getEnv("STATIC_DIR", "client"),
			AllowedOrigins: parseCommaSeparated(getEnv("CORS_ALLOWED_ORIGINS", "")),
			RateLimitRPS:   getEnvFloat("RATE_LIMIT_RPS", 5),
			RateLimitBurst: getEnvInt("RATE_LIMIT_BURST", 20),
		},
		BallDontLie: BallDontLieConfig{
			APIKey:          getEnv("BALLDONTLIE_API_KEY", ""),
			BaseURL:         getEnv("BALLDONTLIE_BASE_URL", "https://api.balldontlie.io/v1"),
			RequestsPerMin:  getEnvInt("BALLDONTLIE_REQUESTS_PER_MINUTE", 30),
			Timeout:         time.Duration(getEnvInt("BALLDONTLIE_TIMEOUT_SECONDS", 10)) * time.Second,
			ProfileDeadline: time.Duration(getEnvInt("PROFILE_LOOKUP_TIMEOUT_SECONDS", 12)) * time.Second,
		},
		Gemini: GeminiConfig{
			APIKey: getEnv("GOOGLE_API_KEY", getEnv("GEMINI_API_KEY", "")),
			Model:  getEnv("GEMINI_MODEL", "gemini-2.5-pro"),
		},
		OpenAI: OpenAIConfig{
			APIKey:         getEnv("OPENAI_API_KEY", ""),
			Model:          getEnv("OPENAI_MODEL", "gpt-4.1-mini"),
			EnableFallback: getEnvBool("OPENAI_ENABLE_FALLBACK", false),
		},
		X: XConfig{
			APIKey:       getEnv("X_API_KEY", ""),
			APISecret:    getEnv("X_API_SECRET", ""),
			AccessToken:  getEnv("X_ACCESS_TOKEN", ""),
			AccessSecret: getEnv("X_ACCESS_SECRET", ""),
			BaseURL:      getEnv("X_BASE_URL", "https://api.twitter.com/2"),
			TokenURL:     getEnv("X_TOKEN_URL", "https://api.twitter.com/oauth2/token"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Postgres: PostgresConfig{
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnvInt("POSTGRES_PORT", 5432),
			User:     getEnv("POSTGRES_USER", "courtside"),
			Password: getEnv("POSTGRES_PASSWORD", ""),
			Database: getEnv("POSTGRES_DB", "courtside"),
		},
		Dedup: DedupConfig{
			Backend:   DedupBackend(strings.ToLower(getEnv("DEDUP_BACKEND", string(DedupMemory)))),
			Retention: time.Duration(getEnvInt("DEDUP_RETENTION_HOURS", 48)) * time.Hour,
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			File:  getEnv("LOG_FILE", ""),
		},
		Client: ClientConfig{
			ServerURL: getEnv("COURTSIDE_SERVER_URL", "http://localhost:5050"),
			DataDir:   getEnv("COURTSIDE_DATA_DIR", defaultDataDir()),
			LogFile:   getEnv("COURTSIDE_LOG_FILE", "logs/courtside.log"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks settings every binary needs. Collaborator credentials are not
// required here: a missing key disables that feature only.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535")
	}
	if c.BallDontLie.BaseURL == "" {
		return fmt.Errorf("BALLDONTLIE_BASE_URL is required")
	}
	if c.BallDontLie.RequestsPerMin <= 0 {
		return fmt.Errorf("BALLDONTLIE_REQUESTS_PER_MINUTE must be positive")
	}
	switch c.Dedup.Backend {
	case DedupMemory, DedupRedis, DedupPostgres:
	default:
		return fmt.Errorf("DEDUP_BACKEND must be one of memory, redis, postgres (got %q)", c.Dedup.Backend)
	}
	if c.Dedup.Retention < 24*time.Hour {
		return fmt.Errorf("DEDUP_RETENTION_HOURS must cover at least one calendar day")
	}
	if c.Client.ServerURL == "" {
		return fmt.Errorf("COURTSIDE_SERVER_URL is required")
	}
	return nil
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".courtside"
	}
	return home + string(os.PathSeparator) + ".courtside"
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func parseCommaSeparated(value string) []string {
	if value == "" {
		return []string{}
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
