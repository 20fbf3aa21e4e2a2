// Package shipper provides an abstraction layer for shipping carriers.
//
// Carrier packages turn a Shipment and an options tree into a carrier
// request, and parse the carrier response back into Rate, Timing, Label and
// AddressValidation values. Parsers and serializers are pure functions; the
// clients wrapping them are safe for concurrent use.
package shipper

import (
	"context"
)

// Shipper defines the interface that all shipping carriers must implement.
type Shipper interface {
	// Name returns the carrier identifier (e.g., "usps", "tforce", "canadapost").
	Name() string

	// Carrier returns the carrier description and its shipping methods.
	Carrier() Carrier

	// FindRates quotes a shipment with the carrier's default options.
	// Carrier reported errors are returned as *APIFailure.
	FindRates(ctx context.Context, shipment *Shipment) (*APIResult[[]Rate], error)
}

// TimingsFinder is implemented by carriers that provide delivery estimates.
type TimingsFinder interface {
	FindTimings(ctx context.Context, shipment *Shipment) (*APIResult[[]Timing], error)
}

// AddressValidator is implemented by carriers that validate addresses.
type AddressValidator interface {
	ValidateAddress(ctx context.Context, address Address) (*APIResult[AddressValidation], error)
}
