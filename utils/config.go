package utils

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the process-wide settings read at startup.
type Config struct {
	Env           string
	Port          string
	StoreDriver   string
	MongoURI      string
	MongoDB       string
	JWTSecret     string
	SessionTTL    time.Duration
	PostmarkToken string
	EmailSender   string
	CORSOrigins   []string
}

// LoadConfig loads .env when present and reads the environment.
func LoadConfig() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Proceeding with environment variables.")
	}

	return Config{
		Env:           GetString("APP_ENV", "development"),
		Port:          GetString("PORT", "8000"),
		StoreDriver:   GetString("STORE_DRIVER", "mongo"),
		MongoURI:      GetString("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:       GetString("MONGO_DB", "farmmarket"),
		JWTSecret:     GetString("JWT_SECRET", ""),
		SessionTTL:    GetDuration("JWT_TTL", DefaultSessionTTL),
		PostmarkToken: GetString("POSTMARK_API_TOKEN", ""),
		EmailSender:   GetString("EMAIL_SENDER", ""),
		CORSOrigins:   GetList("CORS_ORIGINS", []string{"*"}),
	}
}

// GetString retrieves an environment variable or returns a fallback when unset.
func GetString(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

// GetDuration parses an environment variable with time.ParseDuration.
func GetDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("invalid value for %s: %v", key, err)
		return fallback
	}
	return parsed
}

// GetList splits a comma separated environment variable.
func GetList(key string, fallback []string) []string {
	value, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(value) == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
