package shipper

import (
	"fmt"
	"sort"
	"time"
)

// TotalAmountKey is the amounts key used when a carrier prices the whole
// shipment instead of individual packages.
const TotalAmountKey = "total"

// Rate is one priced shipping option returned by a carrier.
//
// Amounts maps a charge component (a package ID or TotalAmountKey) to its
// price. Data holds carrier specific extras; each carrier package documents
// the keys it sets.
type Rate struct {
	ShippingMethod  ShippingMethod
	Amounts         map[string]Money
	RemoteServiceID string
	PickupDate      *time.Time
	DeliveryDate    *time.Time
	Guaranteed      bool
	Warnings        []string
	Errors          []string
	Data            map[string]any
}

// TotalAmount sums every component of the rate. Components are added in key
// order so the error for mixed currencies is stable.
func (r Rate) TotalAmount() (Money, error) {
	if len(r.Amounts) == 0 {
		return Money{}, ErrEmptyAmounts
	}

	keys := make([]string, 0, len(r.Amounts))
	for k := range r.Amounts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	total := r.Amounts[keys[0]]
	for _, k := range keys[1:] {
		sum, err := total.Add(r.Amounts[k])
		if err != nil {
			return Money{}, fmt.Errorf("summing %q: %w", k, err)
		}
		total = sum
	}
	return total, nil
}

// Timing is an estimated transit schedule for a shipping method.
type Timing struct {
	ShippingMethod ShippingMethod
	Pickup         time.Time
	Delivery       time.Time
	Guaranteed     bool
	Data           map[string]any
}

// TimeInTransit returns Delivery minus Pickup. The result is not validated
// and is negative when the carrier reports a delivery before pickup.
func (t Timing) TimeInTransit() time.Duration {
	return t.Delivery.Sub(t.Pickup)
}
