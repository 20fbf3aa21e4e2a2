package server

import (
	"errors"
	"time"

	"github.com/tournevent/carrierkit/pkg/shipper"
)

type carrierResponse struct {
	Code            string                   `json:"code"`
	Name            string                   `json:"name"`
	ShippingMethods []shippingMethodResponse `json:"shipping_methods"`
}

type shippingMethodResponse struct {
	Name          string `json:"name"`
	ServiceCode   string `json:"service_code"`
	Domestic      bool   `json:"domestic"`
	International bool   `json:"international"`
	MultiPackage  bool   `json:"multi_package"`
}

type moneyResponse struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

type rateResponse struct {
	Carrier         string                   `json:"carrier"`
	ShippingMethod  shippingMethodResponse   `json:"shipping_method"`
	Total           *moneyResponse           `json:"total,omitempty"`
	Amounts         map[string]moneyResponse `json:"amounts"`
	RemoteServiceID string                   `json:"remote_service_id,omitempty"`
	PickupDate      *time.Time               `json:"pickup_date,omitempty"`
	DeliveryDate    *time.Time               `json:"delivery_date,omitempty"`
	Guaranteed      bool                     `json:"guaranteed"`
	Warnings        []string                 `json:"warnings,omitempty"`
	Errors          []string                 `json:"errors,omitempty"`
}

type ratesResponse struct {
	Rates  []rateResponse  `json:"rates"`
	Errors []errorResponse `json:"errors"`
}

type timingResponse struct {
	Carrier        string                 `json:"carrier"`
	ShippingMethod shippingMethodResponse `json:"shipping_method"`
	Pickup         time.Time              `json:"pickup"`
	Delivery       time.Time              `json:"delivery"`
	TransitHours   float64                `json:"transit_hours"`
	Guaranteed     bool                   `json:"guaranteed"`
}

type timingsResponse struct {
	Timings []timingResponse `json:"timings"`
	Errors  []errorResponse  `json:"errors"`
}

type errorResponse struct {
	Carrier string `json:"carrier,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func carrierToResponse(c shipper.Carrier) carrierResponse {
	methods := make([]shippingMethodResponse, 0, len(c.ShippingMethods))
	for _, m := range c.ShippingMethods {
		methods = append(methods, methodToResponse(m))
	}
	return carrierResponse{Code: c.Code, Name: c.Name, ShippingMethods: methods}
}

func methodToResponse(m shipper.ShippingMethod) shippingMethodResponse {
	return shippingMethodResponse{
		Name:          m.Name,
		ServiceCode:   m.ServiceCode,
		Domestic:      m.Domestic,
		International: m.International,
		MultiPackage:  m.MultiPackage,
	}
}

func moneyToResponse(m shipper.Money) moneyResponse {
	return moneyResponse{Amount: m.Decimal(), Currency: m.Currency.Code}
}

func rateToResponse(carrier string, r shipper.Rate) rateResponse {
	out := rateResponse{
		Carrier:         carrier,
		ShippingMethod:  methodToResponse(r.ShippingMethod),
		Amounts:         make(map[string]moneyResponse, len(r.Amounts)),
		RemoteServiceID: r.RemoteServiceID,
		PickupDate:      r.PickupDate,
		DeliveryDate:    r.DeliveryDate,
		Guaranteed:      r.Guaranteed,
		Warnings:        r.Warnings,
		Errors:          r.Errors,
	}
	for k, m := range r.Amounts {
		out.Amounts[k] = moneyToResponse(m)
	}
	// Mixed currencies leave the total out.
	if total, err := r.TotalAmount(); err == nil {
		t := moneyToResponse(total)
		out.Total = &t
	}
	return out
}

func timingToResponse(carrier string, t shipper.Timing) timingResponse {
	return timingResponse{
		Carrier:        carrier,
		ShippingMethod: methodToResponse(t.ShippingMethod),
		Pickup:         t.Pickup,
		Delivery:       t.Delivery,
		TransitHours:   t.TimeInTransit().Hours(),
		Guaranteed:     t.Guaranteed,
	}
}

func errorToResponse(err error) errorResponse {
	out := errorResponse{Code: "error", Message: err.Error()}
	if ce, ok := isCarrierError(err); ok {
		out.Carrier = ce.Carrier
		out.Message = ce.Err.Error()
	}

	var se *shipper.ShipperError
	switch {
	case errors.As(err, &se):
		out.Code = se.Code
		out.Message = se.Message()
	case errors.Is(err, shipper.ErrCarrierNotFound):
		out.Code = "carrier_not_found"
	case errors.Is(err, shipper.ErrNotSupported):
		out.Code = "not_supported"
	case errors.Is(err, shipper.ErrNoPackages), errors.Is(err, shipper.ErrUnknownCode):
		out.Code = "invalid_request"
	}
	return out
}

func durationOf(err error) time.Duration {
	if ce, ok := isCarrierError(err); ok {
		return ce.Duration
	}
	return 0
}
