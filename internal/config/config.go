// Package config loads configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aldianriski/portfolioapi/pkg/utils/zaplogger"
)

// Environments accepted by PORTFOLIO_ENV
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"
)

// Config represents the application configuration
type Config struct {
	APIName        string `env:"PORTFOLIO_APP_NAME" default:"Portfolio API"`
	APIVersion     string `env:"PORTFOLIO_APP_VERSION" default:"v1"`
	Environment    string `env:"PORTFOLIO_ENV" default:"development"`
	ServerPort     string `env:"PORTFOLIO_SERVER_PORT" default:"3007"`
	ServerLogLevel string `env:"PORTFOLIO_SERVER_LOG_LEVEL" default:"info"`
	SiteURL        string `env:"PORTFOLIO_SITE_URL" default:"http://localhost:3000"`

	PostgresDsn      string `env:"PORTFOLIO_PG_DSN" required:"true"`
	PostgresSchema   string `env:"PORTFOLIO_PG_SCHEMA" default:"portfolio"`
	PostgresLogLevel string `env:"PORTFOLIO_PG_LOG_LEVEL" default:"warn"`

	RedisHost     string `env:"PORTFOLIO_REDIS_HOST"`
	RedisPort     string `env:"PORTFOLIO_REDIS_PORT" default:"6379"`
	RedisPassword string `env:"PORTFOLIO_REDIS_PASSWORD"`

	AdminPassword   string `env:"PORTFOLIO_ADMIN_PASSWORD" required:"true"`
	AdminTotpSecret string `env:"PORTFOLIO_ADMIN_TOTP_SECRET"`

	SessionSecret           string        `env:"PORTFOLIO_SESSION_SECRET" required:"true"`
	SessionDuration         time.Duration `env:"PORTFOLIO_SESSION_DURATION" default:"8h"`
	SessionRefreshThreshold time.Duration `env:"PORTFOLIO_SESSION_REFRESH_THRESHOLD" default:"30m"`
	SessionLegacyCookie     bool          `env:"PORTFOLIO_SESSION_LEGACY_COOKIE" default:"false"`

	CsrfTTL    time.Duration `env:"PORTFOLIO_CSRF_TTL" default:"24h"`
	CsrfHeader string        `env:"PORTFOLIO_CSRF_HEADER" default:"x-csrf-token"`

	AdminRateLimit    int           `env:"PORTFOLIO_ADMIN_RATE_LIMIT" default:"100"`
	AdminRateWindow   time.Duration `env:"PORTFOLIO_ADMIN_RATE_WINDOW" default:"15m"`
	LoginRateLimit    int           `env:"PORTFOLIO_LOGIN_RATE_LIMIT" default:"10"`
	LoginRateWindow   time.Duration `env:"PORTFOLIO_LOGIN_RATE_WINDOW" default:"15m"`
	ContactRateLimit  int           `env:"PORTFOLIO_CONTACT_RATE_LIMIT" default:"5"`
	ContactRateWindow time.Duration `env:"PORTFOLIO_CONTACT_RATE_WINDOW" default:"10m"`

	S3Endpoint  string `env:"PORTFOLIO_S3_ENDPOINT"`
	S3AccessKey string `env:"PORTFOLIO_S3_ACCESS_KEY"`
	S3SecretKey string `env:"PORTFOLIO_S3_SECRET_KEY"`
	S3Bucket    string `env:"PORTFOLIO_S3_BUCKET" default:"portfolio-images"`
	S3UseSSL    bool   `env:"PORTFOLIO_S3_USE_SSL" default:"true"`
	S3PublicURL string `env:"PORTFOLIO_S3_PUBLIC_URL"`

	ResendAPIKey      string `env:"PORTFOLIO_RESEND_API_KEY"`
	ResendFromEmail   string `env:"PORTFOLIO_RESEND_FROM_EMAIL" default:"Portfolio <onboarding@resend.dev>"`
	NotificationEmail string `env:"PORTFOLIO_NOTIFICATION_EMAIL"`
	ContactAutoReply  bool   `env:"PORTFOLIO_CONTACT_AUTO_REPLY" default:"false"`
}

var (
	SingleLine string = "--------------------------------------------------"
)

var (
	instance *Config
	once     sync.Once
	err      error
)

// Get returns the application configuration, loading it on first use
func Get() (*Config, error) {
	once.Do(func() {
		zaplogger.Info(SingleLine)
		zaplogger.Info("Loading Configuration")
		instance, err = Load()
	})
	return instance, err
}

// Load reads and validates the configuration from the environment
func Load() (*Config, error) {
	cfg := &Config{}
	if err := cfg.loadFromEnv(os.Getenv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFromEnv loads configuration from environment variables
func (c *Config) loadFromEnv(getenv func(string) string) error {
	t := reflect.TypeOf(*c)
	v := reflect.ValueOf(c).Elem()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		envTag := field.Tag.Get("env")
		if envTag == "" {
			return fmt.Errorf("missing env tag for field %s", field.Name)
		}

		value := getenv(envTag)
		if value == "" {
			if field.Tag.Get("required") == "true" {
				return fmt.Errorf("env variable %s is required but not set", envTag)
			}
			value = field.Tag.Get("default")
		}
		if value == "" {
			continue
		}

		if err := setField(v.Field(i), value); err != nil {
			return fmt.Errorf("env variable %s: %w", envTag, err)
		}
	}

	return nil
}

func setField(f reflect.Value, value string) error {
	switch {
	case f.Type() == reflect.TypeOf(time.Duration(0)):
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration %q", value)
		}
		f.SetInt(int64(d))
	case f.Kind() == reflect.String:
		f.SetString(value)
	case f.Kind() == reflect.Int:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer %q", value)
		}
		f.SetInt(int64(n))
	case f.Kind() == reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean %q", value)
		}
		f.SetBool(b)
	default:
		return fmt.Errorf("unsupported field kind %s", f.Kind())
	}
	return nil
}

// Validate checks values that parse fine but are unusable
func (c *Config) Validate() error {
	switch c.Environment {
	case EnvDevelopment, EnvProduction, EnvTest:
	default:
		return fmt.Errorf("PORTFOLIO_ENV must be one of development, production, test; got %q", c.Environment)
	}
	if len(c.AdminPassword) < 8 {
		return fmt.Errorf("PORTFOLIO_ADMIN_PASSWORD must be at least 8 characters")
	}
	if len(c.SessionSecret) < 32 {
		return fmt.Errorf("PORTFOLIO_SESSION_SECRET must be at least 32 characters")
	}
	if c.SessionDuration <= 0 || c.SessionRefreshThreshold <= 0 || c.CsrfTTL <= 0 {
		return fmt.Errorf("session and csrf durations must be positive")
	}
	if c.AdminRateLimit <= 0 || c.LoginRateLimit <= 0 || c.ContactRateLimit <= 0 {
		return fmt.Errorf("rate limits must be positive")
	}
	if c.AdminRateWindow <= 0 || c.LoginRateWindow <= 0 || c.ContactRateWindow <= 0 {
		return fmt.Errorf("rate limit windows must be positive")
	}
	if c.S3Endpoint != "" && (c.S3AccessKey == "" || c.S3SecretKey == "") {
		return fmt.Errorf("PORTFOLIO_S3_ACCESS_KEY and PORTFOLIO_S3_SECRET_KEY are required when PORTFOLIO_S3_ENDPOINT is set")
	}
	return nil
}

// IsProduction reports whether cookies must be marked Secure
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// RedisEnabled reports whether a shared Redis store is configured
func (c *Config) RedisEnabled() bool {
	return c.RedisHost != ""
}

// String returns the configuration as a string
func (c *Config) String() string {
	var sb strings.Builder
	sb.WriteString("\n--------------------------------------\n")
	sb.WriteString("Configuration:\n")
	sb.WriteString("--------------------------------------\n")

	t := reflect.TypeOf(*c)
	v := reflect.ValueOf(*c)

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		value := fmt.Sprint(v.Field(i).Interface())

		// Mask sensitive fields
		value = maskSensitiveField(field.Name, value)
		sb.WriteString(fmt.Sprintf("  %s:  %s\n", field.Name, value))
	}

	sb.WriteString("--------------------------------------\n")

	return sb.String()
}

func maskSensitiveField(fieldName, value string) string {
	sensitiveFields := []string{"token", "dsn", "secret", "password", "key"}

	fieldNameLower := strings.ToLower(fieldName)
	for _, sensitive := range sensitiveFields {
		if strings.Contains(fieldNameLower, sensitive) {
			return maskValue(value)
		}
	}

	return value
}

func maskValue(value string) string {
	if len(value) <= 3 {
		return strings.Repeat("*", 7)
	}
	return value[:3] + strings.Repeat("*", 7)
}
