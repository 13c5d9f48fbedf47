package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Store backends for planner state.
const (
	StoreSQLite = "sqlite"
	StoreFile   = "file"
)

// Config holds the configuration for the application.
type Config struct {
	DBPath         string
	StoreBackend   string
	DataDir        string
	CatalogPath    string
	ImportsPath    string
	FallbackBudget int

	GhostURL        string
	GhostContentKey string
	GhostAdminKey   string
	GeminiAPIKey    string

	// Telegram Config
	TelegramBotToken     string
	TelegramWebhookURL   string
	TelegramAllowUserIDs []int64
	AdminTelegramID      int64
}

// LoadDotEnv loads a .env file from the working directory if there is one.
func LoadDotEnv() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Warning: failed to load .env file: %v", err)
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// NewFromEnv creates a new Config object from environment variables. Only
// the planner settings are read here; integrations are checked on demand by
// the Require methods.
func NewFromEnv() (*Config, error) {
	cfg := &Config{
		DBPath:       getEnv("MEAL_PLANNER_DB", "data/meal-planner.db"),
		StoreBackend: getEnv("MEAL_PLANNER_STORE", StoreSQLite),
		DataDir:      getEnv("MEAL_PLANNER_DATA_DIR", "data/state"),
		CatalogPath:  os.Getenv("MEAL_PLANNER_CATALOG"),
		ImportsPath:  getEnv("MEAL_PLANNER_IMPORTS", "data/imported_recipes.json"),

		GhostURL:        os.Getenv("GHOST_API_URL"),
		GhostContentKey: os.Getenv("GHOST_CONTENT_API_KEY"),
		GhostAdminKey:   os.Getenv("GHOST_ADMIN_API_KEY"),
		GeminiAPIKey:    os.Getenv("GEMINI_API_KEY"),

		TelegramBotToken:   os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramWebhookURL: os.Getenv("TELEGRAM_WEBHOOK_URL"),
	}

	if cfg.StoreBackend != StoreSQLite && cfg.StoreBackend != StoreFile {
		return nil, fmt.Errorf("MEAL_PLANNER_STORE must be %q or %q, got %q", StoreSQLite, StoreFile, cfg.StoreBackend)
	}

	budget := getEnv("MEAL_PLANNER_FALLBACK_BUDGET", "4")
	n, err := strconv.Atoi(budget)
	if err != nil || n < 0 {
		return nil, fmt.Errorf("MEAL_PLANNER_FALLBACK_BUDGET must be a non-negative integer, got %q", budget)
	}
	cfg.FallbackBudget = n

	if s := os.Getenv("TELEGRAM_ALLOW_USER_ID"); s != "" {
		for _, part := range strings.Split(s, ",") {
			id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("TELEGRAM_ALLOW_USER_ID contains an invalid id %q", part)
			}
			cfg.TelegramAllowUserIDs = append(cfg.TelegramAllowUserIDs, id)
		}
	}
	if s := os.Getenv("ADMIN_TELEGRAM_ID"); s != "" {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("ADMIN_TELEGRAM_ID is not a valid id: %q", s)
		}
		cfg.AdminTelegramID = id
	}

	return cfg, nil
}

// RequireGhost checks the Ghost settings. The admin key falls back to the
// content key if only one is provided.
func (c *Config) RequireGhost() error {
	if c.GhostURL == "" {
		return fmt.Errorf("GHOST_API_URL environment variable not set")
	}
	if c.GhostContentKey == "" {
		return fmt.Errorf("GHOST_CONTENT_API_KEY environment variable not set")
	}
	if c.GhostAdminKey == "" {
		c.GhostAdminKey = c.GhostContentKey
	}
	return nil
}

// RequireGemini checks the Gemini settings.
func (c *Config) RequireGemini() error {
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}
	return nil
}

// RequireTelegram checks the bot settings.
func (c *Config) RequireTelegram() error {
	if c.TelegramBotToken == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN environment variable not set")
	}
	if c.TelegramWebhookURL == "" {
		return fmt.Errorf("TELEGRAM_WEBHOOK_URL environment variable not set")
	}
	if len(c.TelegramAllowUserIDs) == 0 {
		return fmt.Errorf("TELEGRAM_ALLOW_USER_ID environment variable not set")
	}
	return nil
}
