package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"go.opentelemetry.io/otel/attribute"
)

// Config holds all configuration for the service and the CLI.
type Config struct {
	// Server
	Port        int           `envconfig:"PORT" default:"8080" validate:"min=1,max=65535"`
	LogLevel    string        `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error DEBUG INFO WARN ERROR"`
	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"30s"`
	// Debug keeps carrier requests and responses on results.
	Debug bool `envconfig:"DEBUG" default:"false"`

	// USPS Web Tools, shared by the domestic and international clients
	USPSEnabled     bool   `envconfig:"USPS_ENABLED" default:"false"`
	USPSIntlEnabled bool   `envconfig:"USPS_INTL_ENABLED" default:"false"`
	USPSUserID      string `envconfig:"USPS_USER_ID" validate:"required_if=USPSEnabled true,required_if=USPSIntlEnabled true"`
	USPSBaseURL     string `envconfig:"USPS_BASE_URL" validate:"omitempty,url"`

	// USPS APIs v3
	USPSShipEnabled      bool   `envconfig:"USPS_SHIP_ENABLED" default:"false"`
	USPSShipClientID     string `envconfig:"USPS_SHIP_CLIENT_ID" validate:"required_if=USPSShipEnabled true"`
	USPSShipClientSecret string `envconfig:"USPS_SHIP_CLIENT_SECRET" validate:"required_if=USPSShipEnabled true"`
	USPSShipPaymentToken string `envconfig:"USPS_SHIP_PAYMENT_TOKEN"`
	USPSShipBaseURL      string `envconfig:"USPS_SHIP_BASE_URL" validate:"omitempty,url"`

	// TForce Freight
	TForceEnabled      bool   `envconfig:"TFORCE_ENABLED" default:"false"`
	TForceClientID     string `envconfig:"TFORCE_CLIENT_ID" validate:"required_if=TForceEnabled true"`
	TForceClientSecret string `envconfig:"TFORCE_CLIENT_SECRET" validate:"required_if=TForceEnabled true"`
	TForceTokenURL     string `envconfig:"TFORCE_TOKEN_URL" validate:"required_if=TForceEnabled true,omitempty,url"`
	TForceScope        string `envconfig:"TFORCE_SCOPE"`
	TForceBaseURL      string `envconfig:"TFORCE_BASE_URL" validate:"omitempty,url"`

	// Canada Post
	CanadaPostEnabled    bool   `envconfig:"CANADAPOST_ENABLED" default:"false"`
	CanadaPostAPIKey     string `envconfig:"CANADAPOST_API_KEY" validate:"required_if=CanadaPostEnabled true"`
	CanadaPostAPISecret  string `envconfig:"CANADAPOST_API_SECRET" validate:"required_if=CanadaPostEnabled true"`
	CanadaPostAccountID  string `envconfig:"CANADAPOST_ACCOUNT_ID"`
	CanadaPostContractID string `envconfig:"CANADAPOST_CONTRACT_ID"`
	CanadaPostBaseURL    string `envconfig:"CANADAPOST_BASE_URL" validate:"omitempty,url"`

	// Mock carrier with fixed prices, for local development
	MockEnabled bool `envconfig:"MOCK_CARRIER_ENABLED" default:"false"`

	// Telemetry
	OTELEnabled  bool   `envconfig:"OTEL_ENABLED" default:"false"`
	OTELEndpoint string `envconfig:"OTEL_ENDPOINT" default:"http://localhost:4318" validate:"required_if=OTELEnabled true,omitempty,url"`
	ServiceName  string `envconfig:"SERVICE_NAME" default:"carrierkit"`
	Version      string `envconfig:"SERVICE_VERSION" default:"0.0.1"`
}

// Load reads configuration from environment variables. Variables from the
// given env files are loaded first without overriding the environment; with
// no files, a missing .env is ignored.
func Load(envFiles ...string) (*Config, error) {
	if err := loadEnvFiles(envFiles); err != nil {
		return nil, err
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadEnvFiles(files []string) error {
	if len(files) == 0 {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading .env: %w", err)
		}
		return nil
	}
	if err := godotenv.Load(files...); err != nil {
		return fmt.Errorf("loading env files: %w", err)
	}
	return nil
}

// Validate checks credentials of enabled carriers and value formats.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Attributes returns OpenTelemetry attributes for this configuration.
func (c *Config) Attributes() []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("service.name", c.ServiceName),
		attribute.String("service.version", c.Version),
		attribute.Bool("usps.enabled", c.USPSEnabled),
		attribute.Bool("uspsintl.enabled", c.USPSIntlEnabled),
		attribute.Bool("uspsship.enabled", c.USPSShipEnabled),
		attribute.Bool("tforce.enabled", c.TForceEnabled),
		attribute.Bool("canadapost.enabled", c.CanadaPostEnabled),
		attribute.Bool("debug", c.Debug),
	}
}
