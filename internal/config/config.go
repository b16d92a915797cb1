package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL       string
	DBLog             bool
	JWTSecret         string
	Port              string
	LogLevel          string
	RedisAddr         string
	RedisPassword     string
	RedisDB           int
	AMQPURL           string
	AMQPExchange      string
	FCMServiceAccount string
	GoalsFile         string
	LegacyNotesOnLoad bool
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; real environment variables win.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		DatabaseURL:       getEnv("DATABASE_URL", "roadmap.db"),
		DBLog:             getBool("DB_LOG", false),
		JWTSecret:         getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		Port:              getEnv("PORT", "8080"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		RedisAddr:         getEnv("REDIS_ADDR", ""),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		RedisDB:           getInt("REDIS_DB", 0),
		AMQPURL:           getEnv("AMQP_URL", ""),
		AMQPExchange:      getEnv("AMQP_EXCHANGE", "roadmap.events"),
		FCMServiceAccount: getEnv("FCM_SERVICE_ACCOUNT", ""),
		GoalsFile:         getEnv("GOALS_FILE", ""),
		LegacyNotesOnLoad: getBool("LEGACY_NOTES_ON_LOAD", false),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return v
}

func getBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return v
}
