// Package tforce provides LTL freight rating through the TForce Freight
// rating API.
package tforce

import (
	"context"
	"net/http"
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

const carrierName = "tforce"

// DefaultBaseURL is the production rating API.
const DefaultBaseURL = "https://api.tforcefreight.com/rating"

// Config holds TForce Freight configuration. TokenURL and Scope come from
// the TForce developer portal.
type Config struct {
	ClientID     string
	ClientSecret string
	TokenURL     string
	Scope        string
	BaseURL      string
	Timeout      time.Duration
	Debug        bool
}

// Client is the TForce Freight shipper client.
type Client struct {
	config Config
	doer   httpapi.Doer
	tokens *httpapi.TokenSource
	logger *otelzap.Logger
	tracer trace.Tracer
	now    func() time.Time
}

// New creates a new client.
func New(cfg Config, logger *otelzap.Logger, tracer trace.Tracer) *Client {
	return NewWithDoer(cfg, httpapi.New(httpapi.Config{Carrier: carrierName, Timeout: cfg.Timeout}), logger, tracer)
}

// NewWithDoer creates a new client with a custom transport.
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
		tokens: httpapi.NewTokenSource(carrierName, doer, func() *shipper.Request {
			return httpapi.ClientCredentialsForm(cfg.TokenURL, cfg.ClientID, cfg.ClientSecret, cfg.Scope)
		}),
		logger: logger,
		tracer: tracer,
		now:    time.Now,
	}
}

func (c *Client) Name() string {
	return carrierName
}

func (c *Client) Carrier() shipper.Carrier {
	return shipper.Carrier{Code: carrierName, Name: "TForce Freight", ShippingMethods: ShippingMethods.All()}
}

// FindRates rates the shipment's structures with default options, picking
// up on the ship date or today.
func (c *Client) FindRates(ctx context.Context, shipment *shipper.Shipment) (*shipper.APIResult[[]shipper.Rate], error) {
	return c.Rates(ctx, shipment, nil)
}

// Rates rates a freight shipment with explicit options. Nil opts rates like
// FindRates.
func (c *Client) Rates(ctx context.Context, shipment *shipper.Shipment, opts *RatesOptions) (*shipper.APIResult[[]shipper.Rate], error) {
	if opts == nil {
		pickup := c.now()
		if shipment.ShipDate != nil {
			pickup = *shipment.ShipDate
		}
		opts = NewRatesOptions(pickup)
	}
	ctx, span := c.tracer.Start(ctx, "tforce.Rates", trace.WithAttributes(
		attribute.String("carrier", carrierName),
		attribute.Int("structure_count", len(shipment.Structures)),
	))
	defer span.End()

	c.logger.Ctx(ctx).Info("Getting TForce freight rates",
		zap.String("origin_postal_code", shipment.Origin.PostalCode),
		zap.String("destination_postal_code", shipment.Destination.PostalCode),
		zap.Int("structure_count", len(shipment.Structures)),
	)

	body, err := SerializeRateRequest(shipment, opts)
	if err != nil {
		return nil, c.fail(ctx, span, err)
	}
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, c.fail(ctx, span, err)
	}

	req := &shipper.Request{
		Method:  http.MethodPost,
		URL:     c.config.BaseURL + "/getRate?api-version=v1",
		Body:    body,
		Headers: map[string]string{"Content-Type": "application/json", "Accept": "application/json"},
		Debug:   c.config.Debug,
	}
	httpapi.Authorize(req, token)

	resp, err := c.doer.Do(ctx, req)
	if err != nil {
		return nil, c.fail(ctx, span, err)
	}

	rates, err := ParseRateResponse(req, resp, opts.PickupDate)
	if err != nil {
		return nil, c.fail(ctx, span, err)
	}
	span.SetAttributes(attribute.Int("rate_count", len(rates)))
	return shipper.NewAPIResult(rates, req, resp), nil
}

// SetClock overrides time.Now, for tests.
func (c *Client) SetClock(now func() time.Time) {
	c.now = now
	c.tokens.SetClock(now)
}

func (c *Client) fail(ctx context.Context, span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	c.logger.Ctx(ctx).Error("TForce API error", zap.Error(err))
	return err
}

var _ shipper.Shipper = (*Client)(nil)
