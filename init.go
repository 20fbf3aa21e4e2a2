package main

import (
	"context"

	"github.com/tournevent/carrierkit/internal/config"
	"github.com/tournevent/carrierkit/internal/telemetry"
	"github.com/tournevent/carrierkit/pkg/shipper"
	"github.com/tournevent/carrierkit/pkg/shipper/canadapost"
	"github.com/tournevent/carrierkit/pkg/shipper/mock"
	"github.com/tournevent/carrierkit/pkg/shipper/tforce"
	"github.com/tournevent/carrierkit/pkg/shipper/usps"
	"github.com/tournevent/carrierkit/pkg/shipper/uspsintl"
	"github.com/tournevent/carrierkit/pkg/shipper/uspsship"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/trace"
)

func loadConfig() (*config.Config, error) {
	return config.Load(envFiles...)
}

func initLogger(level string) (*otelzap.Logger, error) {
	return telemetry.NewLogger(level)
}

// initTracer returns a nil tracer when tracing is disabled; carrier clients
// fall back to a no-op tracer.
func initTracer(ctx context.Context, cfg *config.Config) (trace.Tracer, func(context.Context) error, error) {
	if !cfg.OTELEnabled {
		return nil, func(context.Context) error { return nil }, nil
	}
	return telemetry.InitTracer(ctx, cfg.OTELEndpoint, cfg.ServiceName, cfg.Version, cfg.Attributes()...)
}

type carrierEntry struct {
	enabled bool
	shipper shipper.Shipper
}

// carriers builds every carrier client from cfg, enabled or not.
func carriers(cfg *config.Config, logger *otelzap.Logger, tracer trace.Tracer) []carrierEntry {
	return []carrierEntry{
		{cfg.USPSEnabled, usps.New(usps.Config{
			UserID:  cfg.USPSUserID,
			BaseURL: cfg.USPSBaseURL,
			Timeout: cfg.HTTPTimeout,
			Debug:   cfg.Debug,
		}, logger, tracer)},
		{cfg.USPSIntlEnabled, uspsintl.New(uspsintl.Config{
			UserID:  cfg.USPSUserID,
			BaseURL: cfg.USPSBaseURL,
			Timeout: cfg.HTTPTimeout,
			Debug:   cfg.Debug,
		}, logger, tracer)},
		{cfg.USPSShipEnabled, uspsship.New(uspsship.Config{
			ClientID:     cfg.USPSShipClientID,
			ClientSecret: cfg.USPSShipClientSecret,
			PaymentToken: cfg.USPSShipPaymentToken,
			BaseURL:      cfg.USPSShipBaseURL,
			Timeout:      cfg.HTTPTimeout,
			Debug:        cfg.Debug,
		}, logger, tracer)},
		{cfg.TForceEnabled, tforce.New(tforce.Config{
			ClientID:     cfg.TForceClientID,
			ClientSecret: cfg.TForceClientSecret,
			TokenURL:     cfg.TForceTokenURL,
			Scope:        cfg.TForceScope,
			BaseURL:      cfg.TForceBaseURL,
			Timeout:      cfg.HTTPTimeout,
			Debug:        cfg.Debug,
		}, logger, tracer)},
		{cfg.CanadaPostEnabled, canadapost.New(canadapost.Config{
			APIKey:     cfg.CanadaPostAPIKey,
			APISecret:  cfg.CanadaPostAPISecret,
			AccountID:  cfg.CanadaPostAccountID,
			ContractID: cfg.CanadaPostContractID,
			BaseURL:    cfg.CanadaPostBaseURL,
			Timeout:    cfg.HTTPTimeout,
			Debug:      cfg.Debug,
		}, logger, tracer)},
		{cfg.MockEnabled, mock.New("mock")},
	}
}

func initShipperRegistry(cfg *config.Config, logger *otelzap.Logger, tracer trace.Tracer) *shipper.Registry {
	registry := shipper.NewRegistry()
	for _, c := range carriers(cfg, logger, tracer) {
		if c.enabled {
			registry.Register(c.shipper)
		}
	}
	return registry
}
