// Package canadapost provides Canada Post rating through the REST rating
// service (rate-v4, XML).
package canadapost

import (
	"context"
	"encoding/base64"
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
	"golang.org/x/sync/errgroup"
)

const carrierName = "canadapost"

const rateMediaType = "application/vnd.cpc.ship.rate-v4+xml"

// DefaultBaseURL is the production gateway.
const DefaultBaseURL = "https://soa-gw.canadapost.ca"

// Config holds Canada Post configuration.
type Config struct {
	APIKey    string
	APISecret string
	// AccountID is the customer number. When set, FindRates asks for
	// commercial prices.
	AccountID  string
	ContractID string
	// Language is sent as Accept-language; en-CA by default.
	Language string
	BaseURL  string
	Timeout  time.Duration
	Debug    bool
}

// Client is the Canada Post shipper client.
type Client struct {
	config Config
	doer   httpapi.Doer
	logger *otelzap.Logger
	tracer trace.Tracer
	now    func() time.Time
}

// New creates a new Canada Post client.
func New(cfg Config, logger *otelzap.Logger, tracer trace.Tracer) *Client {
	return NewWithDoer(cfg, httpapi.New(httpapi.Config{Carrier: carrierName, Timeout: cfg.Timeout}), logger, tracer)
}

// NewWithDoer creates a new Canada Post client with a custom transport.
func NewWithDoer(cfg Config, doer httpapi.Doer, logger *otelzap.Logger, tracer trace.Tracer) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Language == "" {
		cfg.Language = "en-CA"
	}
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer(carrierName)
	}
	return &Client{
		config: cfg,
		doer:   doer,
		logger: logger,
		tracer: tracer,
		now:    time.Now,
	}
}

// Name returns the carrier name.
func (c *Client) Name() string {
	return carrierName
}

func (c *Client) Carrier() shipper.Carrier {
	return shipper.Carrier{Code: carrierName, Name: "Canada Post", ShippingMethods: ShippingMethods.All()}
}

// DefaultRatesOptions returns counter pricing, or commercial pricing for the
// configured customer number.
func (c *Client) DefaultRatesOptions() *RatesOptions {
	opts := NewRatesOptions()
	if c.config.AccountID != "" {
		opts.QuoteType = QuoteCommercial
		opts.CustomerNumber = c.config.AccountID
		opts.ContractID = c.config.ContractID
	}
	return opts
}

// FindRates quotes every service for the shipment.
func (c *Client) FindRates(ctx context.Context, shipment *shipper.Shipment) (*shipper.APIResult[[]shipper.Rate], error) {
	return c.Rates(ctx, shipment, c.DefaultRatesOptions())
}

// Rates quotes each package with one request and merges the quotes. The
// result carries the first package's request and response. Nil opts uses
// DefaultRatesOptions.
func (c *Client) Rates(ctx context.Context, shipment *shipper.Shipment, opts *RatesOptions) (*shipper.APIResult[[]shipper.Rate], error) {
	if opts == nil {
		opts = c.DefaultRatesOptions()
	}
	ctx, span := c.tracer.Start(ctx, "canadapost.Rates", trace.WithAttributes(
		attribute.String("carrier", carrierName),
		attribute.String("quote_type", string(opts.QuoteType)),
		attribute.Int("package_count", len(shipment.Packages)),
	))
	defer span.End()

	c.logger.Ctx(ctx).Info("Getting Canada Post quotes",
		zap.String("origin_postal", shipment.Origin.PostalCode),
		zap.String("destination_postal", shipment.Destination.PostalCode),
		zap.Int("package_count", len(shipment.Packages)),
	)

	mailingDate := c.mailingDate(shipment)
	bodies, err := SerializeRateRequests(shipment, opts, mailingDate)
	if err != nil {
		return nil, c.fail(ctx, span, err)
	}

	quoted := make([]shipper.PackageRates, len(bodies))
	exchanges := make([]exchange, len(bodies))
	g, gctx := errgroup.WithContext(ctx)
	for i, body := range bodies {
		g.Go(func() error {
			req := c.rateRequest(body.Body)
			resp, err := c.doer.Do(gctx, req)
			if err != nil {
				return err
			}
			exchanges[i] = exchange{req, resp}

			pkg, _ := shipment.Package(body.PackageID)
			rates, err := ParseRateResponse(req, resp, pkg, opts.PackageOptionsFor(pkg), mailingDate)
			if err != nil {
				return err
			}
			quoted[i] = shipper.PackageRates{PackageID: body.PackageID, Rates: rates}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, c.fail(ctx, span, err)
	}

	merged, err := shipper.MergePackageRates(shipment, quoted)
	if err != nil {
		return nil, c.fail(ctx, span, err)
	}
	span.SetAttributes(attribute.Int("rate_count", len(merged)))
	return shipper.NewAPIResult(merged, exchanges[0].req, exchanges[0].resp), nil
}

// FindTimings returns the service standards for the shipment's route. Transit
// times do not depend on the parcel, so only the first package is quoted.
func (c *Client) FindTimings(ctx context.Context, shipment *shipper.Shipment) (*shipper.APIResult[[]shipper.Timing], error) {
	ctx, span := c.tracer.Start(ctx, "canadapost.FindTimings", trace.WithAttributes(
		attribute.String("carrier", carrierName),
	))
	defer span.End()

	c.logger.Ctx(ctx).Info("Getting Canada Post service standards",
		zap.String("origin_postal", shipment.Origin.PostalCode),
		zap.String("destination_postal", shipment.Destination.PostalCode),
	)

	if len(shipment.Packages) == 0 {
		return nil, c.fail(ctx, span, shipper.ErrNoPackages)
	}
	mailingDate := c.mailingDate(shipment)
	body, err := SerializeRateRequest(shipment, shipment.Packages[0], c.DefaultRatesOptions(), mailingDate)
	if err != nil {
		return nil, c.fail(ctx, span, err)
	}

	req := c.rateRequest(body)
	resp, err := c.doer.Do(ctx, req)
	if err != nil {
		return nil, c.fail(ctx, span, err)
	}

	timings, err := ParseTimingsResponse(req, resp, mailingDate)
	if err != nil {
		return nil, c.fail(ctx, span, err)
	}
	span.SetAttributes(attribute.Int("timing_count", len(timings)))
	return shipper.NewAPIResult(timings, req, resp), nil
}

// SetClock overrides time.Now, for tests.
func (c *Client) SetClock(now func() time.Time) {
	c.now = now
}

type exchange struct {
	req  *shipper.Request
	resp *shipper.Response
}

func (c *Client) mailingDate(shipment *shipper.Shipment) time.Time {
	if shipment.ShipDate != nil {
		return *shipment.ShipDate
	}
	return c.now()
}

func (c *Client) rateRequest(body string) *shipper.Request {
	credentials := base64.StdEncoding.EncodeToString([]byte(c.config.APIKey + ":" + c.config.APISecret))
	return &shipper.Request{
		Method: http.MethodPost,
		URL:    c.config.BaseURL + "/rs/ship/price",
		Body:   body,
		Headers: map[string]string{
			"Authorization":   "Basic " + credentials,
			"Accept":          rateMediaType,
			"Content-Type":    rateMediaType,
			"Accept-language": c.config.Language,
		},
		Debug: c.config.Debug,
	}
}

func (c *Client) fail(ctx context.Context, span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	c.logger.Ctx(ctx).Error("Canada Post API error", zap.Error(err))
	return err
}

var (
	_ shipper.Shipper       = (*Client)(nil)
	_ shipper.TimingsFinder = (*Client)(nil)
)
