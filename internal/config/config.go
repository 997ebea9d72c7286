package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port                 string
	BotToken             string
	MiniAppURL           string
	BotUsername          string
	BackendURL           string
	RequestTimeout       time.Duration
	PollTimeout          int
	MaxReconnectAttempts int
	ReconnectDelay       time.Duration
	DBDriver             string
	DBPath               string
	DBDSN                string
	LogLevel             string
	LogFormat            string
}

var (
	ErrMissingBotToken   = errors.New("BOT_TOKEN is not set")
	ErrMissingMiniAppURL = errors.New("MINI_APP_URL is not set")
	ErrMissingDBDSN      = errors.New("DB_DSN is required when DB_DRIVER=postgres")
	ErrUnknownDBDriver   = errors.New("DB_DRIVER must be sqlite or postgres")
)

func LoadConfig() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: Error loading .env file")
	}

	return FromEnv()
}

// FromEnv reads the configuration from the process environment only.
func FromEnv() *Config {
	return &Config{
		Port:                 getEnv("PORT", "3000"),
		BotToken:             getEnv("BOT_TOKEN", ""),
		MiniAppURL:           getEnv("MINI_APP_URL", ""),
		BotUsername:          getEnv("BOT_USERNAME", ""),
		BackendURL:           getEnv("BACKEND_URL", ""),
		RequestTimeout:       getDuration("REQUEST_TIMEOUT", 30*time.Second),
		PollTimeout:          getInt("POLL_TIMEOUT", 30),
		MaxReconnectAttempts: getInt("MAX_RECONNECT_ATTEMPTS", 5),
		ReconnectDelay:       getDuration("RECONNECT_DELAY", 5*time.Second),
		DBDriver:             getEnv("DB_DRIVER", ""),
		DBPath:               getEnv("DB_PATH", "./memeindex.db"),
		DBDSN:                getEnv("DB_DSN", ""),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		LogFormat:            getEnv("LOG_FORMAT", "text"),
	}
}

// Validate reports the first missing or inconsistent startup setting.
// BOT_USERNAME is not checked here: only inline queries and the trigger
// endpoint need it, and they report its absence themselves.
func (c *Config) Validate() error {
	if c.BotToken == "" {
		return ErrMissingBotToken
	}
	if c.MiniAppURL == "" {
		return ErrMissingMiniAppURL
	}
	switch c.DBDriver {
	case "", "sqlite":
	case "postgres":
		if c.DBDSN == "" {
			return ErrMissingDBDSN
		}
	default:
		return ErrUnknownDBDriver
	}
	return nil
}

// JournalEnabled reports whether deliveries should be persisted.
func (c *Config) JournalEnabled() bool {
	return c.DBDriver != ""
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		log.Printf("Warning: invalid %s=%q, using %d", key, value, fallback)
		return fallback
	}
	return n
}

func getDuration(key string, fallback time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		log.Printf("Warning: invalid %s=%q, using %s", key, value, fallback)
		return fallback
	}
	return d
}
