package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendSQLite   = "sqlite"
	BackendSupabase = "supabase"
)

type Config struct {
	Port           string
	StorageBackend string
	DBPath         string
	SupabaseURL    string
	SupabaseKey    string

	WhatsAppToken         string
	WhatsAppPhoneNumberID string
	WhatsAppAPIBase       string
	VerifyToken           string

	TelegramToken string

	UploadDir     string
	ReceiptDir    string
	PublicBaseURL string

	ResendAPIKey   string
	AlertEmailFrom string
	AlertEmailTo   string

	ChatLogTTL         time.Duration
	ChatLogMaxMessages int

	LogLevel slog.Level
}

// LoadConfig читает .env (если он есть) и переменные окружения
func LoadConfig(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := &Config{
		Port:           getEnv("PORT", "8000"),
		StorageBackend: strings.ToLower(getEnv("STORAGE_BACKEND", BackendSQLite)),
		DBPath:         getEnv("DB_PATH", "./data/civic.db"),
		SupabaseURL:    os.Getenv("SUPABASE_URL"),
		SupabaseKey:    os.Getenv("SUPABASE_KEY"),

		WhatsAppToken:         os.Getenv("WHATSAPP_TOKEN"),
		WhatsAppPhoneNumberID: os.Getenv("WHATSAPP_PHONE_NUMBER_ID"),
		WhatsAppAPIBase:       getEnv("WHATSAPP_API_BASE", "https://graph.facebook.com/v18.0"),
		VerifyToken:           os.Getenv("VERIFY_TOKEN"),

		TelegramToken: os.Getenv("TELEGRAM_TOKEN"),

		UploadDir:     getEnv("UPLOAD_DIR", "./uploads"),
		ReceiptDir:    getEnv("RECEIPT_DIR", "./receipts"),
		PublicBaseURL: strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:8000"), "/"),

		ResendAPIKey:   os.Getenv("RESEND_API_KEY"),
		AlertEmailFrom: os.Getenv("ALERT_EMAIL_FROM"),
		AlertEmailTo:   os.Getenv("ALERT_EMAIL_TO"),

		ChatLogTTL:         getEnvDuration("CHATLOG_TTL", time.Hour),
		ChatLogMaxMessages: getEnvInt("CHATLOG_MAX_MESSAGES", 10),

		LogLevel: getEnvLevel("LOG_LEVEL", slog.LevelInfo),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	switch c.StorageBackend {
	case BackendSQLite:
		if c.DBPath == "" {
			return fmt.Errorf("DB_PATH cannot be empty")
		}
	case BackendSupabase:
		if c.SupabaseURL == "" || c.SupabaseKey == "" {
			return fmt.Errorf("SUPABASE_URL and SUPABASE_KEY are required for the supabase backend")
		}
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.StorageBackend)
	}
	if c.UploadDir == "" || c.ReceiptDir == "" {
		return fmt.Errorf("UPLOAD_DIR and RECEIPT_DIR cannot be empty")
	}
	if c.ChatLogTTL <= 0 {
		return fmt.Errorf("CHATLOG_TTL must be > 0")
	}
	if c.ChatLogMaxMessages <= 0 {
		return fmt.Errorf("CHATLOG_MAX_MESSAGES must be > 0")
	}
	return nil
}

// ValidateWhatsApp проверяет настройки, нужные вебхук-серверу
func (c *Config) ValidateWhatsApp() error {
	if c.WhatsAppToken == "" || c.WhatsAppPhoneNumberID == "" {
		return fmt.Errorf("WHATSAPP_TOKEN and WHATSAPP_PHONE_NUMBER_ID are required")
	}
	if c.VerifyToken == "" {
		return fmt.Errorf("VERIFY_TOKEN is required")
	}
	return nil
}

func (c *Config) ValidateTelegram() error {
	if c.TelegramToken == "" {
		return fmt.Errorf("TELEGRAM_TOKEN is required")
	}
	return nil
}

// AlertsEnabled сообщает, настроена ли почта для бэк-офиса
func (c *Config) AlertsEnabled() bool {
	return c.ResendAPIKey != "" && c.AlertEmailFrom != "" && c.AlertEmailTo != ""
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return d
}

func getEnvLevel(key string, fallback slog.Level) slog.Level {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(value))); err != nil {
		return fallback
	}
	return lvl
}
