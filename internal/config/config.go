package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the full application configuration surface.
type Config struct {
	Server    ServerConfig
	WhatsApp  WhatsAppConfig
	RapidPro  RapidProConfig
	MongoDB   MongoDBConfig
	Redis     RedisConfig
	Screening ScreeningConfig
	SMTP      SMTPConfig
	Sheets    SheetsConfig
	Scheduler SchedulerConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port     string
	LogLevel string
}

// WhatsAppConfig contains credentials and options for the Meta WhatsApp Cloud API.
// AppSecret enables X-Hub-Signature-256 checks on inbound webhooks when set.
// ForwardExtendedTypes also forwards location pins and orders to RapidPro.
type WhatsAppConfig struct {
	AccessToken          string
	VerifyToken          string
	AppSecret            string
	BaseURL              string
	APIVersion           string
	ForwardExtendedTypes bool
}

// RapidProConfig points at the RapidPro external channel receive endpoint.
type RapidProConfig struct {
	BaseURL string
	Timeout time.Duration
}

// MongoDBConfig holds settings for MongoDB.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// RedisConfig enables the redelivery guard when URL is set.
type RedisConfig struct {
	URL      string
	DedupTTL time.Duration
}

// ScreeningConfig holds Pangea URL intel settings. Screening is off without a token.
type ScreeningConfig struct {
	Token     string
	Domain    string
	Provider  string
	Threshold int
}

// SMTPConfig holds settings used to e-mail survey results.
type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	To       []string
}

// SheetsConfig contains configuration required to interact with Google Sheets.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
	Range           string
	Columns         []string
}

// SchedulerConfig holds cron expressions for background jobs.
type SchedulerConfig struct {
	HealthCron string
}

// ScreeningEnabled reports whether URL screening should run.
func (c *Config) ScreeningEnabled() bool {
	return c.Screening.Token != "" && c.Screening.Domain != ""
}

// SMTPEnabled reports whether survey e-mails can be sent.
func (c *Config) SMTPEnabled() bool {
	return c.SMTP.Host != "" && len(c.SMTP.To) > 0
}

// SheetsEnabled reports whether survey rows can be appended to a sheet.
func (c *Config) SheetsEnabled() bool {
	return c.Sheets.CredentialsPath != "" && c.Sheets.SpreadsheetID != ""
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Ignore the returned error here; missing .env files are acceptable when
		// configuration comes from the environment directly.
		_ = godotenv.Load()
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:     getenvWithDefault("APP_PORT", "8080"),
			LogLevel: getenvWithDefault("LOG_LEVEL", "info"),
		},
		WhatsApp: WhatsAppConfig{
			AccessToken:          os.Getenv("WHATSAPP_TOKEN"),
			VerifyToken:          os.Getenv("META_VERIFY_TOKEN"),
			AppSecret:            os.Getenv("WHATSAPP_APP_SECRET"),
			BaseURL:              getenvWithDefault("WHATSAPP_BASE_URL", "https://graph.facebook.com"),
			APIVersion:           getenvWithDefault("WHATSAPP_API_VERSION", "v22.0"),
			ForwardExtendedTypes: getenvBool("RELAY_FORWARD_EXTENDED_TYPES", false),
		},
		RapidPro: RapidProConfig{
			BaseURL: strings.TrimSuffix(os.Getenv("RAPIDPRO_URL"), "/"),
			Timeout: getenvDuration("RAPIDPRO_TIMEOUT", 10*time.Second),
		},
		MongoDB: MongoDBConfig{
			URI:    getenvWithDefault("MONGODB_URI", "mongodb://localhost:27017"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "relay"),
		},
		Redis: RedisConfig{
			URL:      os.Getenv("REDIS_URL"),
			DedupTTL: getenvDuration("DEDUP_TTL", 24*time.Hour),
		},
		Screening: ScreeningConfig{
			Token:     os.Getenv("PANGEA_INTEL_TOKEN"),
			Domain:    os.Getenv("PANGEA_DOMAIN"),
			Provider:  getenvWithDefault("PANGEA_URL_PROVIDER", "crowdstrike"),
			Threshold: getenvInt("SCREENING_SCORE_THRESHOLD", 80),
		},
		SMTP: SMTPConfig{
			Host:     os.Getenv("SMTP_SERVER"),
			Port:     getenvWithDefault("SMTP_PORT", "587"),
			Username: os.Getenv("EMAIL_ADDRESS"),
			Password: os.Getenv("EMAIL_PASSWORD"),
			From:     getenvWithDefault("EMAIL_FROM", os.Getenv("EMAIL_ADDRESS")),
			To:       splitList(os.Getenv("TO_EMAIL_ADDRESS")),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_ID"),
			Range:           getenvWithDefault("SURVEY_SHEET_RANGE", "Sheet1"),
			Columns:         splitList(os.Getenv("SURVEY_SHEET_COLUMNS")),
		},
		Scheduler: SchedulerConfig{
			HealthCron: getenvWithDefault("HEALTH_CRON", "0 */6 * * *"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	switch {
	case c.WhatsApp.AccessToken == "":
		return errors.New("WHATSAPP_TOKEN must be provided")
	case c.WhatsApp.VerifyToken == "":
		return errors.New("META_VERIFY_TOKEN must be provided")
	}

	if c.WhatsApp.BaseURL == "" {
		return errors.New("WHATSAPP_BASE_URL must not be empty")
	}

	if c.WhatsApp.APIVersion == "" {
		return errors.New("WHATSAPP_API_VERSION must not be empty")
	}

	if c.RapidPro.BaseURL == "" {
		return errors.New("RAPIDPRO_URL must be provided")
	}

	if c.MongoDB.URI == "" || c.MongoDB.DBName == "" {
		return errors.New("MONGODB_URI and MONGODB_DB_NAME must not be empty")
	}

	if c.Screening.Threshold < 0 || c.Screening.Threshold > 100 {
		return fmt.Errorf("SCREENING_SCORE_THRESHOLD must be between 0 and 100, got %d", c.Screening.Threshold)
	}

	if c.SMTP.Host != "" && c.SMTP.Username == "" {
		return errors.New("EMAIL_ADDRESS must be provided when SMTP_SERVER is set")
	}

	if c.Sheets.SpreadsheetID != "" && c.Sheets.CredentialsPath == "" {
		return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH must be provided when GOOGLE_SHEET_ID is set")
	}

	if c.Scheduler.HealthCron == "" {
		return errors.New("HEALTH_CRON must not be empty")
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getenvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func splitList(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
