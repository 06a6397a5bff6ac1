package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the full application configuration surface.
type Config struct {
	Server  ServerConfig
	MongoDB MongoDBConfig
	Auth    AuthConfig
	Digest  DigestConfig
	Sheets  SheetsConfig
	SMS     SMSConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// MongoDBConfig holds settings for MongoDB.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// AuthConfig holds JWT signing settings.
type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

// DigestConfig holds the nightly collection-digest schedule.
type DigestConfig struct {
	CronSchedule string
	Timezone     string
}

// SheetsConfig contains configuration for the optional Google Sheets export.
// The export is disabled when either field is empty.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
}

// SMSConfig contains settings for the optional SMS gateway notification.
// Notifications are disabled when APIKey or OperatorPhone is empty.
type SMSConfig struct {
	BaseURL       string
	APIKey        string
	SenderID      string
	OperatorPhone string
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

	tokenTTL, err := time.ParseDuration(getenvWithDefault("JWT_TOKEN_TTL", "720h"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_TOKEN_TTL: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		MongoDB: MongoDBConfig{
			URI:    getenvWithDefault("MONGODB_URI", "mongodb://localhost:27017"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "milkledger"),
		},
		Auth: AuthConfig{
			JWTSecret: os.Getenv("JWT_SECRET"),
			TokenTTL:  tokenTTL,
		},
		Digest: DigestConfig{
			CronSchedule: getenvWithDefault("DIGEST_CRON_SCHEDULE", "0 21 * * *"),
			Timezone:     getenvWithDefault("TIMEZONE", "Asia/Kolkata"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_DATABASE_ID"),
		},
		SMS: SMSConfig{
			BaseURL:       getenvWithDefault("SMS_BASE_URL", "https://api.smsgateway.example"),
			APIKey:        os.Getenv("SMS_API_KEY"),
			SenderID:      getenvWithDefault("SMS_SENDER_ID", "MILKLD"),
			OperatorPhone: os.Getenv("SMS_OPERATOR_PHONE"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated. Sheets
// and SMS settings are optional; the corresponding features stay disabled
// when they are missing.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	switch {
	case c.MongoDB.URI == "":
		return errors.New("MONGODB_URI must be provided")
	case c.MongoDB.DBName == "":
		return errors.New("MONGODB_DB_NAME must be provided")
	}

	if c.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET must be provided")
	}

	if c.Auth.TokenTTL <= 0 {
		return errors.New("JWT_TOKEN_TTL must be positive")
	}

	if c.Digest.CronSchedule == "" {
		return errors.New("DIGEST_CRON_SCHEDULE must be provided")
	}

	if c.Digest.Timezone == "" {
		return errors.New("TIMEZONE must be provided")
	}

	return nil
}

// SheetsEnabled reports whether the Google Sheets export is configured.
func (c *Config) SheetsEnabled() bool {
	return c.Sheets.CredentialsPath != "" && c.Sheets.SpreadsheetID != ""
}

// SMSEnabled reports whether the SMS notification is configured.
func (c *Config) SMSEnabled() bool {
	return c.SMS.APIKey != "" && c.SMS.OperatorPhone != ""
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
