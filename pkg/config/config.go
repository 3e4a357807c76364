package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port            string
	MongoURI        string
	DatabaseName    string
	Auth0Domain     string
	Auth0Audience   string
	Auth0Algorithms string
	AuthDevMode     bool
	UploadDir       string
	MaxVideoSize    int64
}

// Load reads configuration from the environment. AUTH_DEV_MODE must be set
// to "true" explicitly to run without a configured identity provider; an
// empty Auth0 domain is otherwise a configuration error.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, assuming environment variables are set.")
	}

	cfg := &Config{
		Port:            getEnv("PORT", "8080"),
		MongoURI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
		DatabaseName:    getEnv("DATABASE_NAME", "sluggram"),
		Auth0Domain:     getEnv("AUTH0_DOMAIN", ""),
		Auth0Audience:   getEnv("AUTH0_AUDIENCE", ""),
		Auth0Algorithms: getEnv("AUTH0_ALGORITHMS", "RS256"),
		AuthDevMode:     getEnv("AUTH_DEV_MODE", "false") == "true",
		UploadDir:       getEnv("UPLOAD_DIR", "uploads"),
		MaxVideoSize:    getEnvInt64("MAX_VIDEO_SIZE", 100<<20),
	}

	if cfg.Auth0Domain == "" && !cfg.AuthDevMode {
		return nil, fmt.Errorf("AUTH0_DOMAIN is not set; set it or opt in to AUTH_DEV_MODE=true")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.ParseInt(value, 10, 64); err == nil && n > 0 {
			return n
		}
	}
	return defaultValue
}
