// Package mock provides a mock shipper implementation for testing.
package mock

import (
	"context"
	"fmt"
	"time"

	"github.com/tournevent/carrierkit/pkg/shipper"
)

var catalog = shipper.NewCatalog(
	shipper.ShippingMethod{Name: "Standard", ServiceCode: "STANDARD", Domestic: true, MultiPackage: true},
	shipper.ShippingMethod{Name: "Express", ServiceCode: "EXPRESS", Domestic: true, International: true},
)

// Client is a mock shipper for testing.
type Client struct {
	name string

	// Err, when set, is returned by every call.
	Err error

	// Now is used for timings; defaults to time.Now.
	Now func() time.Time
}

// New creates a new mock shipper.
func New(name string) *Client {
	return &Client{name: name, Now: time.Now}
}

// Name returns the carrier name.
func (c *Client) Name() string {
	return c.name
}

// Carrier returns the mock carrier.
func (c *Client) Carrier() shipper.Carrier {
	return shipper.Carrier{Code: c.name, Name: c.name, ShippingMethods: catalog.All()}
}

// FindRates prices every package at 12.50 for Standard and 24.00 for Express.
func (c *Client) FindRates(ctx context.Context, shipment *shipper.Shipment) (*shipper.APIResult[[]shipper.Rate], error) {
	if c.Err != nil {
		return nil, c.Err
	}
	if len(shipment.Packages) == 0 {
		return nil, fmt.Errorf("%s: %w", c.name, shipper.ErrNoPackages)
	}

	prices := map[string]string{"STANDARD": "12.50", "EXPRESS": "24.00"}
	rates := make([]shipper.Rate, 0, catalog.Len())
	for _, m := range catalog.All() {
		amounts := make(map[string]shipper.Money, len(shipment.Packages))
		for _, p := range shipment.Packages {
			amounts[p.ID] = shipper.MustParseMoney(prices[m.ServiceCode], shipper.USD)
		}
		rates = append(rates, shipper.Rate{
			ShippingMethod: m,
			Amounts:        amounts,
			Guaranteed:     m.ServiceCode == "EXPRESS",
		})
	}

	return shipper.NewAPIResult(rates, &shipper.Request{URL: "mock://" + c.name + "/rates"}, nil), nil
}

// FindTimings returns a 5 day Standard and a 2 day Express estimate.
func (c *Client) FindTimings(ctx context.Context, shipment *shipper.Shipment) (*shipper.APIResult[[]shipper.Timing], error) {
	if c.Err != nil {
		return nil, c.Err
	}

	now := c.Now()
	days := map[string]int{"STANDARD": 5, "EXPRESS": 2}
	timings := make([]shipper.Timing, 0, catalog.Len())
	for _, m := range catalog.All() {
		timings = append(timings, shipper.Timing{
			ShippingMethod: m,
			Pickup:         now,
			Delivery:       now.AddDate(0, 0, days[m.ServiceCode]),
			Guaranteed:     m.ServiceCode == "EXPRESS",
		})
	}

	return shipper.NewAPIResult(timings, nil, nil), nil
}

var (
	_ shipper.Shipper       = (*Client)(nil)
	_ shipper.TimingsFinder = (*Client)(nil)
)
