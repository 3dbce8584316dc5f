package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	// Gemini API
	GeminiAPIKey     string
	GeminiAPIBaseURL string
	GeminiModel      string

	// Partner directory
	SheetCSVURL string
	DatabaseURL string

	// Supabase
	SupabaseURL            string
	SupabasePublishableKey string
	SupabaseJWTSecret      string
	SupabaseStorageBucket  string
	BackupRootFolder       string

	// Local layout
	OutputRoot   string
	TemplatesDir string

	// Runner
	RunnerIntervalSeconds int

	// Server
	Port        string
	Environment string
}

func Load() (*Config, error) {
	cfg := &Config{
		GeminiAPIKey:     getEnv("GEMINI_API_KEY", ""),
		GeminiAPIBaseURL: getEnv("GEMINI_API_BASE_URL", "https://generativelanguage.googleapis.com/v1beta/"),
		GeminiModel:      getEnv("GEMINI_MODEL", "models/gemini-3-pro-image-preview"),

		SheetCSVURL: getEnv("SHEET_CSV_URL", ""),
		DatabaseURL: getEnv("DATABASE_URL", ""),

		SupabaseURL:            getEnv("SUPABASE_URL", ""),
		SupabasePublishableKey: getEnv("SUPABASE_PUBLISHABLE_KEY", ""),
		SupabaseJWTSecret:      getEnv("SUPABASE_JWT_SECRET", ""),
		SupabaseStorageBucket:  getEnv("SUPABASE_STORAGE_BUCKET", "calendar-backups"),
		BackupRootFolder:       getEnv("BACKUP_ROOT_FOLDER", "AI_Calendar_Final"),

		OutputRoot:   getEnv("OUTPUT_ROOT", "calendar_outputs"),
		TemplatesDir: getEnv("TEMPLATES_DIR", "assets/calendar_templates"),

		RunnerIntervalSeconds: getEnvInt("RUNNER_INTERVAL_SECONDS", 0),

		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required")
	}
	if c.SheetCSVURL == "" && c.DatabaseURL == "" {
		return fmt.Errorf("SHEET_CSV_URL or DATABASE_URL is required")
	}
	if c.SupabaseURL == "" {
		return fmt.Errorf("SUPABASE_URL is required")
	}
	if c.SupabasePublishableKey == "" {
		return fmt.Errorf("SUPABASE_PUBLISHABLE_KEY is required")
	}
	if c.SupabaseJWTSecret == "" {
		return fmt.Errorf("SUPABASE_JWT_SECRET is required")
	}
	if c.RunnerIntervalSeconds < 0 {
		return fmt.Errorf("RUNNER_INTERVAL_SECONDS must not be negative")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}
