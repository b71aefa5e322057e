package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	SQLitePath string

	RedisURL string

	JWTSecret string
	JWTExpiry time.Duration

	// ConversationsFile is the single JSON document holding all chat
	// conversations (the localStorage analog from the web client).
	ConversationsFile string

	ChatbotURL string
	OCRBaseURL string

	ImageBaseURL    string
	ExternalSinkURL string
	ExternalSinkKey string

	// UX pacing, not timeouts. The chat reply is never surfaced before
	// ChatMinRoundTrip has elapsed, and recognition waits
	// OCRProcessingDelay before calling the recognizer.
	ChatMinRoundTrip   time.Duration
	OCRProcessingDelay time.Duration

	AutoAdvanceInterval time.Duration
	ProgressTick        time.Duration

	HTTPTimeout time.Duration

	AllowedOrigins []string

	AdminUsername string
	AdminPassword string
}

func Load() *Config {
	godotenv.Load()
	godotenv.Load("../.env")

	return &Config{
		Port: getEnv("PORT", "8080"),

		DBHost:     getEnv("DB_HOST", ""),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "innova"),
		DBPassword: getEnv("DB_PASSWORD", "innova"),
		DBName:     getEnv("DB_NAME", "innova"),
		SQLitePath: getEnv("SQLITE_PATH", "innova.db"),

		RedisURL: getEnv("REDIS_URL", "localhost:6379"),

		JWTSecret: getEnv("JWT_SECRET", "dev-secret-change-in-production"),
		JWTExpiry: parseDuration(getEnv("JWT_EXPIRY", "24h"), 24*time.Hour),

		ConversationsFile: getEnv("CONVERSATIONS_FILE", filepath.Join("data", "innova_conversations.json")),

		ChatbotURL: getEnv("CHATBOT_URL", "http://localhost:8080/chatbot/message"),
		OCRBaseURL: getEnv("OCR_BASE_URL", "http://localhost:8080"),

		ImageBaseURL:    getEnv("IMAGE_BASE_URL", "https://res.cloudinary.com/innova/image/upload/innova-plates"),
		ExternalSinkURL: getEnv("EXTERNAL_SINK_URL", "https://external-api.example.com/plate-readings"),
		ExternalSinkKey: getEnv("EXTERNAL_SINK_KEY", "fake-api-key-12345"),

		ChatMinRoundTrip:   parseDuration(getEnv("CHAT_MIN_ROUND_TRIP", "1500ms"), 1500*time.Millisecond),
		OCRProcessingDelay: parseDuration(getEnv("OCR_PROCESSING_DELAY", "800ms"), 800*time.Millisecond),

		AutoAdvanceInterval: parseDuration(getEnv("AUTO_ADVANCE_INTERVAL", "20s"), 20*time.Second),
		ProgressTick:        parseDuration(getEnv("PROGRESS_TICK", "100ms"), 100*time.Millisecond),

		HTTPTimeout: parseDuration(getEnv("HTTP_TIMEOUT", "30s"), 30*time.Second),

		AllowedOrigins: parseOrigins(getEnv("ALLOWED_ORIGINS", defaultOrigins())),

		AdminUsername: getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),
	}
}

// UsePostgres reports whether a postgres host is configured. Without one
// the service falls back to a local sqlite file.
func (c *Config) UsePostgres() bool {
	return c.DBHost != ""
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=disable TimeZone=UTC"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

func defaultOrigins() string {
	if os.Getenv("GIN_MODE") != "release" {
		return "http://localhost:5173,http://localhost:8080"
	}
	return "https://innova-ocr.app"
}

func parseOrigins(s string) []string {
	parts := strings.Split(s, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			origins = append(origins, p)
		}
	}
	return origins
}
