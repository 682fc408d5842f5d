package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"
)

// Resolver strategies for locating a patient's practitioner(s).
const (
	ResolverCareTeam = "careteam"
	ResolverDirect   = "direct"
)

type Config struct {
	Port             string `mapstructure:"PORT"`
	Env              string `mapstructure:"ENV"`
	FHIRBaseURL      string `mapstructure:"FHIR_BASE_URL"`
	FHIRToken        string `mapstructure:"FHIR_TOKEN"`
	AWSRegion        string `mapstructure:"AWS_REGION"`
	AWSAccessKeyID   string `mapstructure:"AWS_ACCESS_KEY_ID"`
	AWSSecretKey     string `mapstructure:"AWS_SECRET_ACCESS_KEY"`
	AlertFromEmail   string `mapstructure:"ALERT_FROM_EMAIL"`
	AdminEmail       string `mapstructure:"ADMIN_EMAIL"`
	WebhookSecret    string `mapstructure:"WEBHOOK_SECRET"`
	ResolverStrategy string `mapstructure:"RESOLVER_STRATEGY"`
	EmailAlerts      bool   `mapstructure:"EMAIL_ALERTS_ENABLED"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("AWS_REGION", "us-east-1")
	v.SetDefault("AWS_ACCESS_KEY_ID", "")
	v.SetDefault("AWS_SECRET_ACCESS_KEY", "")
	v.SetDefault("ALERT_FROM_EMAIL", "alertas@epa-bienestar.com.ar")
	v.SetDefault("ADMIN_EMAIL", "admin@epa-bienestar.com.ar")
	v.SetDefault("RESOLVER_STRATEGY", ResolverCareTeam)
	v.SetDefault("EMAIL_ALERTS_ENABLED", true)

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("FHIR_BASE_URL")
	v.BindEnv("FHIR_TOKEN")
	v.BindEnv("AWS_REGION")
	v.BindEnv("AWS_ACCESS_KEY_ID")
	v.BindEnv("AWS_SECRET_ACCESS_KEY")
	v.BindEnv("ALERT_FROM_EMAIL")
	v.BindEnv("ADMIN_EMAIL")
	v.BindEnv("WEBHOOK_SECRET")
	v.BindEnv("RESOLVER_STRATEGY")
	v.BindEnv("EMAIL_ALERTS_ENABLED")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.FHIRBaseURL == "" {
		return nil, fmt.Errorf("FHIR_BASE_URL is required")
	}
	cfg.FHIRBaseURL = strings.TrimRight(cfg.FHIRBaseURL, "/")

	if cfg.IsDev() && cfg.WebhookSecret == "" {
		log.Println("WARNING: Server is running without WEBHOOK_SECRET (ENV=development).")
		log.Println("WARNING: Event deliveries are unauthenticated. Do NOT use this in production.")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the service is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate checks that the configuration is safe to run. In production a
// webhook secret is mandatory so that event deliveries are authenticated, and
// email alerting requires SES credentials.
func (c *Config) Validate() error {
	switch c.ResolverStrategy {
	case ResolverCareTeam, ResolverDirect:
	default:
		return fmt.Errorf("RESOLVER_STRATEGY must be %q or %q, got %q",
			ResolverCareTeam, ResolverDirect, c.ResolverStrategy)
	}

	if c.IsProduction() && c.WebhookSecret == "" {
		return fmt.Errorf("WEBHOOK_SECRET is required in production")
	}

	if c.EmailAlerts {
		if c.AlertFromEmail == "" {
			return fmt.Errorf("ALERT_FROM_EMAIL is required when EMAIL_ALERTS_ENABLED is true")
		}
		if c.AdminEmail == "" {
			return fmt.Errorf("ADMIN_EMAIL is required when EMAIL_ALERTS_ENABLED is true")
		}
		if c.IsProduction() && (c.AWSAccessKeyID == "" || c.AWSSecretKey == "") {
			return fmt.Errorf("AWS credentials are required in production when EMAIL_ALERTS_ENABLED is true")
		}
	}

	return nil
}
