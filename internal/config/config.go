package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	ierr "github.com/remindly/remindly/internal/errors"
	"github.com/remindly/remindly/internal/types"
	"github.com/spf13/viper"
)

// Configuration holds every runtime setting of the service. Values come from
// config.yaml (optional) with environment variable overrides, REMINDLY_
// prefixed.
type Configuration struct {
	Deployment DeploymentConfig `mapstructure:"deployment"`
	Server     ServerConfig     `mapstructure:"server"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Sentry     SentryConfig     `mapstructure:"sentry"`
	Billing    BillingConfig    `mapstructure:"billing"`
	Family     FamilyConfig     `mapstructure:"family"`
}

type DeploymentConfig struct {
	Mode types.DeploymentMode `mapstructure:"mode"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
}

type LoggingConfig struct {
	Level          types.LogLevel `mapstructure:"level"`
	FluentdEnabled bool           `mapstructure:"fluentd_enabled"`
	FluentdHost    string         `mapstructure:"fluentd_host"`
	FluentdPort    int            `mapstructure:"fluentd_port"`
}

type SentryConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	DSN         string  `mapstructure:"dsn"`
	Environment string  `mapstructure:"environment"`
	SampleRate  float64 `mapstructure:"sample_rate"`
}

// BillingConfig configures the HTTP billing provider integration.
type BillingConfig struct {
	BaseURL    string        `mapstructure:"base_url"`
	APIKey     string        `mapstructure:"api_key"`
	AppUserID  string        `mapstructure:"app_user_id"`
	Timeout    time.Duration `mapstructure:"timeout"`
	MaxRetries int           `mapstructure:"max_retries"`
}

// FamilyConfig configures family-plan override resolution.
type FamilyConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	BaseURL         string        `mapstructure:"base_url"`
	APIKey          string        `mapstructure:"api_key"`
	Timeout         time.Duration `mapstructure:"timeout"`
	MemberStatusTTL time.Duration `mapstructure:"member_status_ttl"`
}

// NewConfig loads the configuration from config.yaml (when present) and the
// environment. A missing config file is not an error; env vars alone are a
// complete configuration.
func NewConfig() (*Configuration, error) {
	// Load .env if present, same as the local dev flow.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix("REMINDLY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, ierr.WithError(err).
				WithHint("Failed to read config file").
				Mark(ierr.ErrValidation)
		}
	}

	var cfg Configuration
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to unmarshal configuration").
			Mark(ierr.ErrValidation)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("deployment.mode", string(types.DeploymentModeAPI))
	v.SetDefault("server.address", ":8080")
	v.SetDefault("logging.level", string(types.LogLevelInfo))
	v.SetDefault("logging.fluentd_enabled", false)
	v.SetDefault("sentry.enabled", false)
	v.SetDefault("sentry.sample_rate", 1.0)
	v.SetDefault("billing.timeout", 30*time.Second)
	v.SetDefault("billing.max_retries", 3)
	v.SetDefault("family.enabled", true)
	v.SetDefault("family.timeout", 10*time.Second)
	v.SetDefault("family.member_status_ttl", 5*time.Minute)
}

func (c *Configuration) Validate() error {
	if c.Server.Address == "" {
		return ierr.NewError("server address is required").
			WithHint("Set server.address or REMINDLY_SERVER_ADDRESS").
			Mark(ierr.ErrValidation)
	}
	if c.Billing.Timeout <= 0 {
		return ierr.NewError("billing timeout must be positive").
			WithHint("Set billing.timeout to a positive duration").
			Mark(ierr.ErrValidation)
	}
	if c.Family.MemberStatusTTL <= 0 {
		return ierr.NewError("family member status TTL must be positive").
			WithHint("Set family.member_status_ttl to a positive duration").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// GetDefaultConfig returns a configuration suitable for scripts and tests
// without touching the environment.
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Deployment: DeploymentConfig{Mode: types.DeploymentModeLocal},
		Server:     ServerConfig{Address: ":8080"},
		Logging:    LoggingConfig{Level: types.LogLevelDebug},
		Sentry:     SentryConfig{SampleRate: 1.0},
		Billing: BillingConfig{
			Timeout:    30 * time.Second,
			MaxRetries: 3,
		},
		Family: FamilyConfig{
			Enabled:         true,
			Timeout:         10 * time.Second,
			MemberStatusTTL: 5 * time.Minute,
		},
	}
}
