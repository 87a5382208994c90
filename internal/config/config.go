// internal/config/config.go
//
// Runtime configuration for the WordHeat server.
// Responsibilities:
//   - Load a local .env file if present (godotenv; a missing file is fine).
//   - Read every setting from the environment with a development default.
//
// WORDS_FILE is read by the words package itself.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

type Config struct {
	Port     string
	LogLevel zerolog.Level
	DBPath   string

	JWTSecret      string
	JWTExpiresDays int
	CookieName     string
	ClientOrigin   string
	Production     bool

	DailySalt string

	OracleAPIKey  string
	OracleModel   string
	OracleBaseURL string
	OracleTimeout time.Duration
	OracleRetries int
	OracleRate    float64

	SurrenderWindow time.Duration
	BlitzSeconds    int
	SessionIdle     time.Duration
}

// Load reads .env (if any) and the environment.
func Load() Config {
	_ = godotenv.Load()

	lvl, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return Config{
		Port:     getEnv("PORT", "5175"),
		LogLevel: lvl,
		DBPath:   getEnv("DB_PATH", "./data/wordheat.db"),

		JWTSecret:      getEnv("JWT_SECRET", "dev_secret_change_me"),
		JWTExpiresDays: envInt("JWT_EXPIRES_DAYS", 14),
		CookieName:     getEnv("COOKIE_NAME", "wordheat_token"),
		ClientOrigin:   getEnv("CLIENT_ORIGIN", "http://localhost:5173"),
		Production:     strings.EqualFold(os.Getenv("APP_ENV"), "production"),

		DailySalt: getEnv("DAILY_SALT", "local_dev_salt"),

		OracleAPIKey:  os.Getenv("OPENAI_API_KEY"),
		OracleModel:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OracleBaseURL: getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OracleTimeout: time.Duration(envInt("ORACLE_TIMEOUT_SECONDS", 20)) * time.Second,
		OracleRetries: envInt("ORACLE_RETRIES", 2),
		OracleRate:    envFloat("ORACLE_RATE_PER_SECOND", 5),

		SurrenderWindow: time.Duration(envInt("SURRENDER_WINDOW_SECONDS", 3)) * time.Second,
		BlitzSeconds:    envInt("BLITZ_SECONDS", 60),
		SessionIdle:     time.Duration(envInt("SESSION_IDLE_MINUTES", 30)) * time.Minute,
	}
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	if v, err := strconv.Atoi(os.Getenv(k)); err == nil {
		return v
	}
	return def
}

func envFloat(k string, def float64) float64 {
	if v, err := strconv.ParseFloat(os.Getenv(k), 64); err == nil {
		return v
	}
	return def
}
