package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config holds all configuration for the application, loaded once at
// startup and passed explicitly to the components that need it.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	WhatsApp  WhatsAppConfig
	Email     EmailConfig
	Telegram  TelegramConfig
	Xendit    XenditConfig
	Scheduler SchedulerConfig
	AppKey    string `env:"APPKEY,required"`
}

type ServerConfig struct {
	Host string `env:"HOST,default=0.0.0.0"`
	Port string `env:"PORT,default=8080"`
	Env  string `env:"ENV,default=development"`
	// PublicBaseURL is the externally reachable origin verification links
	// point back at.
	PublicBaseURL string `env:"PUBLIC_BASE_URL,default=http://localhost:8080"`
}

type DatabaseConfig struct {
	URL             string        `env:"DATABASE_URL,required"`
	MaxConns        int32         `env:"DB_MAX_CONNS,default=25"`
	MinConns        int32         `env:"DB_MIN_CONNS,default=5"`
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME,default=1h"`
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME,default=30m"`
}

type RedisConfig struct {
	URL string `env:"REDIS_CONNECTION,default=redis://localhost:6379"`
}

type WhatsAppConfig struct {
	BaseURL string `env:"WHATSAPP_BASE_URL"`
	APIKey  string `env:"WHATSAPP_API_KEY"`
}

type EmailConfig struct {
	SendgridAPIKey string `env:"EMAIL_SENDGRID_API_KEY"`
	SMTPHost       string `env:"EMAIL_SMTP_HOST,default=smtp.sendgrid.net"`
	SMTPPort       string `env:"EMAIL_SMTP_PORT,default=587"`
	FromAddress    string `env:"EMAIL_FROM_ADDRESS,default=no-reply@verify.local"`
}

type TelegramConfig struct {
	BaseURL     string `env:"TELEGRAM_BASE_URL,default=https://api.telegram.org"`
	BotToken    string `env:"TELEGRAM_BOT_TOKEN"`
	SecretToken string `env:"TELEGRAM_SECRET_TOKEN"`
}

type XenditConfig struct {
	BaseURL   string `env:"XENDIT_BASE_URL,default=https://api.xendit.co"`
	SecretKey string `env:"XENDIT_SECRET_KEY"`
}

type SchedulerConfig struct {
	// CronExpr gates dispatcher channel fan-out to at most one tick per
	// window. Six fields, seconds-enabled.
	CronExpr         string        `env:"DISPATCH_CRON_EXPR,default=*/30 * * * * *"`
	PromoteInterval  time.Duration `env:"PROMOTE_INTERVAL,default=15s"`
	DispatchInterval time.Duration `env:"DISPATCH_INTERVAL,default=1s"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Env == "production" {
		if c.Telegram.BotToken == "" {
			return fmt.Errorf("TELEGRAM_BOT_TOKEN is required in production")
		}
		if c.Telegram.SecretToken == "" {
			return fmt.Errorf("TELEGRAM_SECRET_TOKEN is required in production")
		}
		if c.Xendit.SecretKey == "" {
			return fmt.Errorf("XENDIT_SECRET_KEY is required in production")
		}
	}
	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}
