// Package httpapi executes carrier requests over HTTP.
//
// Carrier packages build a shipper.Request, hand it to a Doer and parse the
// shipper.Response they get back. Non-2xx replies are returned as responses,
// not errors, because carriers encode business errors in the body.
package httpapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tournevent/carrierkit/pkg/shipper"
)

// Doer executes a carrier request.
type Doer interface {
	Do(ctx context.Context, req *shipper.Request) (*shipper.Response, error)
}

// Config holds configuration for the HTTP client.
type Config struct {
	Carrier string
	Timeout time.Duration
}

// Client is the production Doer backed by net/http.
type Client struct {
	carrier    string
	httpClient *http.Client
}

// New creates a new HTTP client.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		carrier: cfg.Carrier,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// NewWithHTTPClient creates a client around an existing *http.Client.
func NewWithHTTPClient(carrier string, httpClient *http.Client) *Client {
	return &Client{carrier: carrier, httpClient: httpClient}
}

// Do sends the request. Transport failures are returned as *shipper.ShipperError
// with code HTTP_ERROR.
func (c *Client) Do(ctx context.Context, req *shipper.Request) (*shipper.Response, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
		if req.Body != "" {
			method = http.MethodPost
		}
	}

	var body io.Reader
	if req.Body != "" {
		body = strings.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, req.URL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, shipper.NewShipperError(c.carrier, shipper.CodeHTTPError, "request failed").WithCause(err)
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, shipper.NewShipperError(c.carrier, shipper.CodeHTTPError, "failed to read response body").
			WithCause(err).
			WithStatusCode(httpResp.StatusCode)
	}

	headers := make(map[string]string, len(httpResp.Header))
	for k := range httpResp.Header {
		headers[k] = httpResp.Header.Get(k)
	}

	return &shipper.Response{
		Status:  httpResp.StatusCode,
		Body:    string(data),
		Headers: headers,
	}, nil
}

var _ Doer = (*Client)(nil)
