// Package config loads process settings from the environment.
//
// Sources, lowest precedence first: built-in defaults, an optional YAML file
// named by CONFIG_FILE, a .env file, then real environment variables. The
// .env file never overrides a variable that is already set.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"

	"github.com/prilive-com/welcomebot/tg"
)

// PlaceholderToken is the token value shipped in .env.example.
const PlaceholderToken = "your_bot_token_here"

// Config holds every setting the bot process reads.
type Config struct {
	Token      tg.SecretToken `mapstructure:"telegram_bot_token" validate:"required,ne=your_bot_token_here"`
	APIBaseURL string         `mapstructure:"telegram_api_base_url" validate:"required,url"`

	LogLevel  string `mapstructure:"log_level" validate:"omitempty,oneof=debug info warn error"`
	LogFormat string `mapstructure:"log_format" validate:"omitempty,oneof=text json"`

	PollingTimeout       int  `mapstructure:"polling_timeout" validate:"gte=0,lte=60"`
	PollingLimit         int  `mapstructure:"polling_limit" validate:"gte=1,lte=100"`
	PollingMaxErrors     int  `mapstructure:"polling_max_errors" validate:"gte=0"`
	PollingDeleteWebhook bool `mapstructure:"polling_delete_webhook"`

	SenderMaxRetries int     `mapstructure:"sender_max_retries" validate:"gte=0,lte=10"`
	RateLimitRPS     float64 `mapstructure:"rate_limit_rps" validate:"gt=0"`
	RateLimitBurst   int     `mapstructure:"rate_limit_burst" validate:"gte=1"`

	DeliveryMaxRetries    int           `mapstructure:"delivery_max_retries" validate:"gte=1"`
	DeliveryRetryDelay    time.Duration `mapstructure:"delivery_retry_delay" validate:"gt=0"`
	DeliveryOuterAttempts int           `mapstructure:"delivery_outer_attempts" validate:"gte=1"`
	DeliveryOuterDelay    time.Duration `mapstructure:"delivery_outer_delay" validate:"gt=0"`

	// MetricsAddr is the ops server listen address. Empty disables it.
	MetricsAddr      string `mapstructure:"metrics_addr" validate:"omitempty,hostname_port|startswith=:"`
	RolloverSchedule string `mapstructure:"rollover_schedule" validate:"required,cronspec"`
	ContentFile      string `mapstructure:"content_file" validate:"omitempty,file"`
}

var defaults = map[string]any{
	"telegram_bot_token":      "",
	"telegram_api_base_url":   "https://api.telegram.org",
	"log_level":               "info",
	"log_format":              "text",
	"polling_timeout":         30,
	"polling_limit":           100,
	"polling_max_errors":      10,
	"polling_delete_webhook":  true,
	"sender_max_retries":      3,
	"rate_limit_rps":          30.0,
	"rate_limit_burst":        10,
	"delivery_max_retries":    5,
	"delivery_retry_delay":    500 * time.Millisecond,
	"delivery_outer_attempts": 3,
	"delivery_outer_delay":    time.Second,
	"metrics_addr":            ":9090",
	"rollover_schedule":       "0 0 * * *",
	"content_file":            "",
}

type loader struct {
	envFile    string
	envFileSet bool
	configFile string
}

// Option configures Load.
type Option func(*loader)

// WithEnvFile loads path instead of ./.env. A missing explicit file is an error.
func WithEnvFile(path string) Option {
	return func(l *loader) {
		l.envFile = path
		l.envFileSet = true
	}
}

// WithConfigFile reads path instead of the file named by CONFIG_FILE.
func WithConfigFile(path string) Option {
	return func(l *loader) {
		l.configFile = path
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("mapstructure"), ",")
		return strings.ToUpper(name)
	})
	_ = v.RegisterValidation("cronspec", func(fl validator.FieldLevel) bool {
		_, err := cron.ParseStandard(fl.Field().String())
		return err == nil
	})
	return v
}

// Load reads, merges and validates the configuration. Validation failures are
// returned as joined *tg.ConfigError values keyed by environment variable.
func Load(opts ...Option) (*Config, error) {
	l := loader{envFile: ".env"}
	for _, opt := range opts {
		opt(&l)
	}

	if err := godotenv.Load(l.envFile); err != nil {
		if l.envFileSet || !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("welcomebot/config: load %s: %w", l.envFile, err)
		}
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AllowEmptyEnv(true)
	v.AutomaticEnv()

	configFile := l.configFile
	if configFile == "" {
		configFile = os.Getenv("CONFIG_FILE")
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("welcomebot/config: read %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("welcomebot/config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every field and reports all failures at once.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("welcomebot/config: %w", err)
	}
	errs := make([]error, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		errs = append(errs, tg.NewConfigError(fe.Field(), describe(fe)))
	}
	return errors.Join(errs...)
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "ne":
		return "still holds the example value"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "url":
		return "must be an absolute URL"
	case "cronspec":
		return "must be a five-field cron expression"
	case "file":
		return "file does not exist"
	case "hostname_port|startswith=:":
		return "must be host:port or :port"
	default:
		return fmt.Sprintf("failed %q check", fe.Tag())
	}
}
