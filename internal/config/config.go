// Package config reads settings from the environment, loading .env first when present.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	TelegramToken string
	Debug         bool
	LogLevel      slog.Level
	CatalogImport string
	DB            dbConfig
	AI            aiConfig
	Notify        notifyConfig
	Session       sessionConfig
	Training      trainingConfig
}

type dbConfig struct {
	Type string
	Path string
	URL  string
}

type aiConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

type notifyConfig struct {
	Interval time.Duration
	FirstRun time.Duration
}

type sessionConfig struct {
	Backend       string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	TTL           time.Duration
}

type trainingConfig struct {
	Threshold int
}

// Load reads .env (if any) into the process environment and builds the Config.
// Variables already set in the environment win over .env values.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := FromEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// FromEnv builds the Config from the environment. It panics when TELEGRAM_BOT_TOKEN is missing.
func FromEnv() Config {
	return Config{
		TelegramToken: RequireString("TELEGRAM_BOT_TOKEN"),
		Debug:         Bool("DEBUG", false),
		LogLevel:      parseLevel(String("LOG_LEVEL", "info")),
		CatalogImport: String("CATALOG_IMPORT", ""),
		DB: dbConfig{
			Type: String("DB_TYPE", "sqlite"),
			Path: String("DB_PATH", "data/phrasebot.db"),
			URL:  String("DATABASE_URL", ""),
		},
		AI: aiConfig{
			APIKey:  String("AI_API_KEY", ""),
			BaseURL: String("AI_BASE_URL", "https://api.openai.com/v1"),
			Model:   String("AI_MODEL", "gpt-4o-mini"),
			Timeout: Duration("AI_TIMEOUT", 30*time.Second),
		},
		Notify: notifyConfig{
			Interval: Duration("NOTIFY_INTERVAL", time.Minute),
			FirstRun: Duration("NOTIFY_FIRST_RUN", 10*time.Second),
		},
		Session: sessionConfig{
			Backend:       String("SESSION_BACKEND", "memory"),
			RedisAddr:     String("REDIS_ADDR", "localhost:6379"),
			RedisPassword: String("REDIS_PASSWORD", ""),
			RedisDB:       Int("REDIS_DB", 0),
			TTL:           Duration("SESSION_TTL", 24*time.Hour),
		},
		Training: trainingConfig{
			Threshold: Int("REPETITION_THRESHOLD", 90),
		},
	}
}

func (c Config) Validate() error {
	switch c.DB.Type {
	case "sqlite":
	case "postgres":
		if c.DB.URL == "" {
			return errors.New("DATABASE_URL is required when DB_TYPE=postgres")
		}
	default:
		return fmt.Errorf("unsupported DB_TYPE %q", c.DB.Type)
	}

	switch c.Session.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("unsupported SESSION_BACKEND %q", c.Session.Backend)
	}

	if c.Training.Threshold < 1 || c.Training.Threshold > 100 {
		return fmt.Errorf("REPETITION_THRESHOLD must be within 1..100, got %d", c.Training.Threshold)
	}
	if c.AI.Timeout <= 0 {
		return errors.New("AI_TIMEOUT must be positive")
	}
	if c.Notify.Interval < time.Second {
		return errors.New("NOTIFY_INTERVAL must be at least 1s")
	}
	return nil
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
