// Package usps provides domestic rate quotes from the USPS Web Tools RateV4 API.
package usps

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/tournevent/carrierkit/pkg/shipper"
	"github.com/tournevent/carrierkit/pkg/shipper/httpapi"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
)

const carrierName = "usps"

// DefaultBaseURL is the production Web Tools endpoint.
const DefaultBaseURL = "https://secure.shippingapis.com/ShippingAPI.dll"

// Config holds USPS Web Tools configuration.
type Config struct {
	UserID  string
	BaseURL string
	Timeout time.Duration
	Debug   bool
}

// Client is the USPS domestic shipper client.
type Client struct {
	config Config
	doer   httpapi.Doer
	logger *otelzap.Logger
	tracer trace.Tracer
}

// New creates a new USPS client.
func New(cfg Config, logger *otelzap.Logger, tracer trace.Tracer) *Client {
	return NewWithDoer(cfg, httpapi.New(httpapi.Config{Carrier: carrierName, Timeout: cfg.Timeout}), logger, tracer)
}

// NewWithDoer creates a new USPS client with a custom transport.
func NewWithDoer(cfg Config, doer httpapi.Doer, logger *otelzap.Logger, tracer trace.Tracer) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer(carrierName)
	}
	return &Client{
		config: cfg,
		doer:   doer,
		logger: logger,
		tracer: tracer,
	}
}

// Name returns the carrier name.
func (c *Client) Name() string {
	return carrierName
}

// Carrier returns the USPS carrier description.
func (c *Client) Carrier() shipper.Carrier {
	return shipper.Carrier{Code: carrierName, Name: "United States Postal Service", ShippingMethods: ShippingMethods.All()}
}

// FindRates quotes every service at retail prices.
func (c *Client) FindRates(ctx context.Context, shipment *shipper.Shipment) (*shipper.APIResult[[]shipper.Rate], error) {
	return c.RateEstimates(ctx, shipment, NewRateEstimateOptions())
}

// RateEstimates quotes a shipment with explicit options. Nil opts quotes
// like FindRates.
func (c *Client) RateEstimates(ctx context.Context, shipment *shipper.Shipment, opts *RateEstimateOptions) (*shipper.APIResult[[]shipper.Rate], error) {
	if opts == nil {
		opts = NewRateEstimateOptions()
	}
	ctx, span := c.tracer.Start(ctx, "usps.RateEstimates", trace.WithAttributes(
		attribute.String("carrier", carrierName),
		attribute.Int("package_count", len(shipment.Packages)),
	))
	defer span.End()

	c.logger.Ctx(ctx).Info("Getting USPS rate estimates",
		zap.String("origin_zip", shipment.Origin.PostalCode),
		zap.String("destination_zip", shipment.Destination.PostalCode),
		zap.Int("package_count", len(shipment.Packages)),
	)

	body, err := SerializeRateRequest(shipment, opts, c.config.UserID)
	if err != nil {
		return nil, c.fail(ctx, span, err)
	}

	req := &shipper.Request{
		Method: http.MethodGet,
		URL:    c.config.BaseURL + "?API=RateV4&XML=" + url.QueryEscape(body),
		Debug:  c.config.Debug,
	}
	resp, err := c.doer.Do(ctx, req)
	if err != nil {
		return nil, c.fail(ctx, span, err)
	}

	result, err := ParseRateResponse(req, resp, shipment, opts)
	if err != nil {
		return nil, c.fail(ctx, span, err)
	}
	span.SetAttributes(attribute.Int("rate_count", len(result.Data)))
	return result, nil
}

func (c *Client) fail(ctx context.Context, span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	c.logger.Ctx(ctx).Error("USPS API error", zap.Error(err))
	return err
}

var _ shipper.Shipper = (*Client)(nil)
