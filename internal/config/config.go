package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Quote source selections
const (
	QuoteSourceAuto       = "auto"
	QuoteSourcePolygon    = "polygon"
	QuoteSourceSimulation = "simulation"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Quotes   QuotesConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port           string
	Host           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	AllowedOrigins []string
}

// QuotesConfig holds market data and refresh configuration
type QuotesConfig struct {
	Source          string
	PolygonAPIKey   string
	RequestDelay    time.Duration
	CacheTTL        time.Duration
	RefreshInterval time.Duration
	RefreshTimeout  time.Duration
}

// DatabaseConfig holds PostgreSQL configuration. An empty URL disables the refresh audit log.
type DatabaseConfig struct {
	URL            string
	RestoreOnStart bool
}

// RedisConfig holds Redis configuration. An empty Addr selects the in-memory quote cache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// KafkaConfig holds Kafka configuration. No brokers disables event publishing.
type KafkaConfig struct {
	Brokers      []string
	Topic        string
	RefreshTopic string
	GroupID      string
}

// LoggingConfig holds logger configuration
type LoggingConfig struct {
	Level    string
	Format   string
	FilePath string
}

// Load reads configuration from a .env file, if present, and environment variables
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Port:           getEnv("SERVER_PORT", "5000"),
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			ReadTimeout:    getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:   getEnvDuration("SERVER_WRITE_TIMEOUT", 90*time.Second),
			AllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		},
		Quotes: QuotesConfig{
			Source:          strings.ToLower(getEnv("QUOTE_SOURCE", QuoteSourceAuto)),
			PolygonAPIKey:   getEnv("POLYGON_API_KEY", ""),
			RequestDelay:    getEnvDuration("POLYGON_REQUEST_DELAY", 2*time.Second),
			CacheTTL:        getEnvPositiveDuration("QUOTE_CACHE_TTL", 15*time.Minute),
			RefreshInterval: getEnvDuration("REFRESH_INTERVAL", 0),
			RefreshTimeout:  getEnvDuration("REFRESH_TIMEOUT", 60*time.Second),
		},
		Database: DatabaseConfig{
			URL:            getEnv("DATABASE_URL", ""),
			RestoreOnStart: getEnvBool("RESTORE_ON_START", false),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Kafka: KafkaConfig{
			Brokers:      getEnvList("KAFKA_BROKERS", nil),
			Topic:        getEnv("KAFKA_TOPIC", "stock-events"),
			RefreshTopic: getEnv("KAFKA_REFRESH_TOPIC", ""),
			GroupID:      getEnv("KAFKA_GROUP_ID", "stock-dashboard"),
		},
		Logging: LoggingConfig{
			Level:    getEnv("LOG_LEVEL", "info"),
			Format:   getEnv("LOG_FORMAT", "pretty"),
			FilePath: getEnv("LOG_FILE_PATH", ""),
		},
	}
}

// Addr returns the host:port the HTTP server listens on
func (s *ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

// ResolvedSource turns "auto" into polygon when an API key is present and
// simulation otherwise
func (q *QuotesConfig) ResolvedSource() string {
	switch q.Source {
	case QuoteSourcePolygon, QuoteSourceSimulation:
		return q.Source
	default:
		if q.PolygonAPIKey != "" {
			return QuoteSourcePolygon
		}
		return QuoteSourceSimulation
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}
	return defaultValue
}

func getEnvPositiveDuration(key string, defaultValue time.Duration) time.Duration {
	if d := getEnvDuration(key, defaultValue); d > 0 {
		return d
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
