// Package uspsship integrates the USPS v3 REST APIs: prices, service
// standards, labels and addresses.
package uspsship

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
	"golang.org/x/sync/errgroup"
)

const carrierName = "uspsship"

// DefaultBaseURL is the production API host.
const DefaultBaseURL = "https://apis.usps.com"

// Config holds USPS v3 configuration.
type Config struct {
	ClientID     string
	ClientSecret string
	// PaymentToken is the payment authorization token required for labels.
	PaymentToken string
	BaseURL      string
	Timeout      time.Duration
	Debug        bool
}

// Client is the USPS v3 shipper client.
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

// NewWithDoer creates a new client with a custom transport. Token requests go
// through the same transport.
func NewWithDoer(cfg Config, doer httpapi.Doer, logger *otelzap.Logger, tracer trace.Tracer) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer(carrierName)
	}
	tokenURL := cfg.BaseURL + "/oauth2/v3/token"
	return &Client{
		config: cfg,
		doer:   doer,
		tokens: httpapi.NewTokenSource(carrierName, doer, func() *shipper.Request {
			return httpapi.ClientCredentialsJSON(tokenURL, cfg.ClientID, cfg.ClientSecret, "")
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
	return shipper.Carrier{Code: carrierName, Name: "USPS", ShippingMethods: ShippingMethods.All()}
}

// FindRates quotes every outbound mail class at retail prices.
func (c *Client) FindRates(ctx context.Context, shipment *shipper.Shipment) (*shipper.APIResult[[]shipper.Rate], error) {
	return c.Rates(ctx, shipment, NewRatesOptions())
}

// Rates quotes each package with one request and merges the quotes. The
// result carries the first package's request and response. Nil opts quotes
// like FindRates.
func (c *Client) Rates(ctx context.Context, shipment *shipper.Shipment, opts *RatesOptions) (*shipper.APIResult[[]shipper.Rate], error) {
	if opts == nil {
		opts = NewRatesOptions()
	}
	ctx, span := c.tracer.Start(ctx, "uspsship.Rates", trace.WithAttributes(
		attribute.String("carrier", carrierName),
		attribute.Int("package_count", len(shipment.Packages)),
	))
	defer span.End()

	c.logger.Ctx(ctx).Info("Getting USPS prices",
		zap.String("origin_zip", shipment.Origin.PostalCode),
		zap.String("destination_zip", shipment.Destination.PostalCode),
		zap.Int("package_count", len(shipment.Packages)),
	)

	bodies, err := SerializeRateRequests(shipment, opts, c.mailingDate(shipment))
	if err != nil {
		return nil, c.fail(ctx, span, err)
	}
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, c.fail(ctx, span, err)
	}

	quoted := make([]shipper.PackageRates, len(bodies))
	exchanges := make([]exchange, len(bodies))
	g, gctx := errgroup.WithContext(ctx)
	for i, body := range bodies {
		g.Go(func() error {
			req := c.jsonRequest(http.MethodPost, "/prices/v3/total-rates/search", body.Body, token)
			resp, err := c.doer.Do(gctx, req)
			if err != nil {
				return err
			}
			exchanges[i] = exchange{req, resp}

			pkg, _ := shipment.Package(body.PackageID)
			rates, err := ParseRateResponse(req, resp, pkg, opts.PackageOptionsFor(pkg))
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

// FindTimings returns delivery estimates for every mail class.
func (c *Client) FindTimings(ctx context.Context, shipment *shipper.Shipment) (*shipper.APIResult[[]shipper.Timing], error) {
	return c.ServiceStandards(ctx, shipment, "")
}

// ServiceStandards returns delivery estimates for one mail class, or all of
// them when mailClass is empty.
func (c *Client) ServiceStandards(ctx context.Context, shipment *shipper.Shipment, mailClass string) (*shipper.APIResult[[]shipper.Timing], error) {
	ctx, span := c.tracer.Start(ctx, "uspsship.ServiceStandards", trace.WithAttributes(
		attribute.String("carrier", carrierName),
		attribute.String("mail_class", mailClass),
	))
	defer span.End()

	c.logger.Ctx(ctx).Info("Getting USPS service standards",
		zap.String("origin_zip", shipment.Origin.PostalCode),
		zap.String("destination_zip", shipment.Destination.PostalCode),
	)

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, c.fail(ctx, span, err)
	}

	acceptance := c.mailingDate(shipment)
	req := c.jsonRequest(http.MethodGet, "/service-standards/v3/estimates?"+ServiceStandardsQuery(shipment, mailClass, acceptance), "", token)
	resp, err := c.doer.Do(ctx, req)
	if err != nil {
		return nil, c.fail(ctx, span, err)
	}

	timings, err := ParseTimingsResponse(req, resp, acceptance)
	if err != nil {
		return nil, c.fail(ctx, span, err)
	}
	span.SetAttributes(attribute.Int("timing_count", len(timings)))
	return shipper.NewAPIResult(timings, req, resp), nil
}

// CreateLabels buys one label per package, in package order.
func (c *Client) CreateLabels(ctx context.Context, shipment *shipper.Shipment, opts *LabelOptions) (*shipper.APIResult[[]shipper.Label], error) {
	ctx, span := c.tracer.Start(ctx, "uspsship.CreateLabels", trace.WithAttributes(
		attribute.String("carrier", carrierName),
		attribute.Int("package_count", len(shipment.Packages)),
	))
	defer span.End()

	c.logger.Ctx(ctx).Info("Creating USPS labels",
		zap.String("destination_zip", shipment.Destination.PostalCode),
		zap.Int("package_count", len(shipment.Packages)),
	)

	bodies, err := SerializeLabelRequests(shipment, opts, c.mailingDate(shipment))
	if err != nil {
		return nil, c.fail(ctx, span, err)
	}
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, c.fail(ctx, span, err)
	}

	var (
		labels []shipper.Label
		last   exchange
	)
	for _, body := range bodies {
		req := c.jsonRequest(http.MethodPost, "/labels/v3/label", body.Body, token)
		req.Headers["X-Payment-Authorization-Token"] = c.config.PaymentToken
		resp, err := c.doer.Do(ctx, req)
		if err != nil {
			return nil, c.fail(ctx, span, err)
		}
		last = exchange{req, resp}

		pkg, _ := shipment.Package(body.PackageID)
		method := *opts.PackageOptionsFor(pkg).ShippingMethod
		label, err := ParseLabelResponse(req, resp, method, opts.Format)
		if err != nil {
			return nil, c.fail(ctx, span, err)
		}
		c.logger.Ctx(ctx).Info("USPS label created",
			zap.String("package_id", body.PackageID),
			zap.String("tracking_number", label.TrackingNumber),
		)
		labels = append(labels, label)
	}
	return shipper.NewAPIResult(labels, last.req, last.resp), nil
}

// ValidateAddress standardizes a US address.
func (c *Client) ValidateAddress(ctx context.Context, address shipper.Address) (*shipper.APIResult[shipper.AddressValidation], error) {
	ctx, span := c.tracer.Start(ctx, "uspsship.ValidateAddress", trace.WithAttributes(
		attribute.String("carrier", carrierName),
	))
	defer span.End()

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, c.fail(ctx, span, err)
	}

	req := c.jsonRequest(http.MethodGet, "/addresses/v3/address?"+AddressQuery(address), "", token)
	resp, err := c.doer.Do(ctx, req)
	if err != nil {
		return nil, c.fail(ctx, span, err)
	}

	validation, err := ParseAddressResponse(req, resp, address)
	if err != nil {
		return nil, c.fail(ctx, span, err)
	}
	span.SetAttributes(attribute.Bool("valid", validation.Valid))
	return shipper.NewAPIResult(validation, req, resp), nil
}

// SetClock overrides time.Now for mailing dates and token expiry, for tests.
func (c *Client) SetClock(now func() time.Time) {
	c.now = now
	c.tokens.SetClock(now)
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

func (c *Client) jsonRequest(method, path, body string, token shipper.AccessToken) *shipper.Request {
	req := &shipper.Request{
		Method: method,
		URL:    c.config.BaseURL + path,
		Body:   body,
		Headers: map[string]string{
			"Accept": "application/json",
		},
		Debug: c.config.Debug,
	}
	if body != "" {
		req.Headers["Content-Type"] = "application/json"
	}
	httpapi.Authorize(req, token)
	return req
}

func (c *Client) fail(ctx context.Context, span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	c.logger.Ctx(ctx).Error("USPS API error", zap.Error(err))
	return err
}

var (
	_ shipper.Shipper          = (*Client)(nil)
	_ shipper.TimingsFinder    = (*Client)(nil)
	_ shipper.AddressValidator = (*Client)(nil)
)
