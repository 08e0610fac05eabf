// Package config loads, defaults, and validates the application configuration
// from config.yaml and BOT_* environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// SessionConfig binds one chat session to a bot credential and a market locale.
type SessionConfig struct {
	Token  string `mapstructure:"token"`
	Locale string `mapstructure:"locale" validate:"required,bcp47_language_tag"`
}

// LoggerConfig controls log level and output format.
type LoggerConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// DatabaseConfig holds persistence settings.
type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// GeminiConfig holds LLM backend settings.
type GeminiConfig struct {
	APIKey      string        `mapstructure:"api_key"     validate:"required"`
	ModelName   string        `mapstructure:"model_name"  validate:"required"`
	Temperature float32       `mapstructure:"temperature" validate:"min=0,max=2"`
	Timeout     time.Duration `mapstructure:"timeout"     validate:"min=1s,max=10m"`
}

// QuotaConfig holds the free-usage policy.
type QuotaConfig struct {
	FreeLimit     int `mapstructure:"free_limit"     validate:"gt=0"`
	HistoryWindow int `mapstructure:"history_window" validate:"gt=0"`
}

// PaymentConfig holds the merchant identity used to build purchase references.
type PaymentConfig struct {
	MerchantUsername string `mapstructure:"merchant_username" validate:"required"`
}

// SupportConfig holds the operator side of the escalation flow.
type SupportConfig struct {
	OperatorID     int64  `mapstructure:"operator_id"     validate:"required,gt=0"`
	OperatorLocale string `mapstructure:"operator_locale" validate:"required"`
	FallbackLocale string `mapstructure:"fallback_locale" validate:"required"`
}

// SchedulerConfig holds cron expressions for background maintenance.
type SchedulerConfig struct {
	MaintenanceSchedule string `mapstructure:"maintenance_schedule" validate:"required"`
	SupportLogRetention int    `mapstructure:"support_log_retention_days" validate:"gt=0"`
}

// Config is the root application configuration, assembled once in main and
// injected into every component that needs it.
type Config struct {
	Logger    LoggerConfig    `mapstructure:"logger"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Gemini    GeminiConfig    `mapstructure:"gemini"`
	Quota     QuotaConfig     `mapstructure:"quota"`
	Payment   PaymentConfig   `mapstructure:"payment"`
	Support   SupportConfig   `mapstructure:"support"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Sessions  []SessionConfig `mapstructure:"sessions" validate:"required,min=1,dive"`
}

// LoadConfig reads configuration from the given YAML file, applies defaults
// and BOT_* environment overrides, and validates the result. A missing config
// file is not an error as long as the required values arrive via environment.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetEnvPrefix("BOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.json", true)

	v.SetDefault("database.path", "storage.db")

	v.SetDefault("gemini.model_name", "gemini-2.0-flash")
	v.SetDefault("gemini.temperature", 1.0)
	v.SetDefault("gemini.timeout", 2*time.Minute)

	v.SetDefault("quota.free_limit", 10)
	v.SetDefault("quota.history_window", 10)

	v.SetDefault("support.operator_locale", "en")
	v.SetDefault("support.fallback_locale", "en")

	v.SetDefault("scheduler.maintenance_schedule", "0 4 * * *")
	v.SetDefault("scheduler.support_log_retention_days", 90)
}
