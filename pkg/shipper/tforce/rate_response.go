package tforce

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/tournevent/carrierkit/pkg/shipper"
)

// Rate.Data keys set by ParseRateResponse.
const (
	DataCostBreakdown  = "cost_breakdown"
	DataBillableWeight = "billable_weight"
	DataDaysInTransit  = "days_in_transit"
	DataQuoteNumber    = "quote_number"
)

// Charge is one line of a rate's cost breakdown.
type Charge struct {
	Code        string
	Description string
	Amount      shipper.Money
}

type rateResponse struct {
	// Gateway errors come back without a summary.
	StatusCode json.Number `json:"statusCode"`
	Message    string      `json:"message"`

	Summary *struct {
		QuoteNumber    string `json:"quoteNumber"`
		ResponseStatus struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"responseStatus"`
	} `json:"summary"`
	Detail []rateDetail `json:"detail"`
}

type rateDetail struct {
	Service struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"service"`
	Rate []struct {
		Code        string      `json:"code"`
		ChargeValue json.Number `json:"chargeValue"`
		Description string      `json:"description"`
	} `json:"rate"`
	ShipmentCharges struct {
		Total struct {
			Currency string      `json:"currency"`
			Value    json.Number `json:"value"`
		} `json:"total"`
	} `json:"shipmentCharges"`
	ShipmentWeights struct {
		Billable struct {
			Weight     json.Number `json:"weight"`
			WeightUnit string      `json:"weightUnit"`
		} `json:"billable"`
	} `json:"shipmentWeights"`
	TimeInTransit struct {
		TimeInTransit json.Number `json:"timeInTransit"`
	} `json:"timeInTransit"`
	Alerts []struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"alerts"`
}

// ParseRateResponse reads a getRate response. Any status other than "OK"
// makes the response a failure. Rates are quoted for the whole shipment, so
// each rate's Amounts holds a single "total" entry. Services without a
// total, or with a zero total, are dropped.
func ParseRateResponse(req *shipper.Request, resp *shipper.Response, pickup time.Time) ([]shipper.Rate, error) {
	var doc rateResponse
	if err := json.Unmarshal([]byte(resp.Body), &doc); err != nil {
		return nil, shipper.ParseFailure(carrierName, err, req, resp)
	}
	if doc.Summary == nil {
		message := doc.Message
		if message == "" {
			message = fmt.Sprintf("unexpected status %d", resp.Status)
		}
		return nil, shipper.CarrierFailure(carrierName, shipper.CodeHTTPError, []string{message}, req, resp)
	}
	if status := doc.Summary.ResponseStatus; status.Code != "OK" {
		return nil, shipper.CarrierFailure(carrierName, status.Code, []string{status.Message}, req, resp)
	}

	rates := make([]shipper.Rate, 0, len(doc.Detail))
	for _, d := range doc.Detail {
		if d.ShipmentCharges.Total.Value == "" {
			continue
		}
		rate, err := detailRate(d, pickup)
		if err != nil {
			return nil, shipper.ParseFailure(carrierName, err, req, resp)
		}
		if rate.Amounts[shipper.TotalAmountKey].IsZero() {
			continue
		}
		if doc.Summary.QuoteNumber != "" {
			rate.Data[DataQuoteNumber] = doc.Summary.QuoteNumber
		}
		rates = append(rates, rate)
	}
	return rates, nil
}

func detailRate(d rateDetail, pickup time.Time) (shipper.Rate, error) {
	currency := currencyFor(d.ShipmentCharges.Total.Currency)
	total, err := shipper.ParseMoney(d.ShipmentCharges.Total.Value.String(), currency)
	if err != nil {
		return shipper.Rate{}, fmt.Errorf("service %s total: %w", d.Service.Code, err)
	}

	breakdown := make([]Charge, 0, len(d.Rate))
	for _, line := range d.Rate {
		amount, err := shipper.ParseMoney(line.ChargeValue.String(), currency)
		if err != nil {
			return shipper.Rate{}, fmt.Errorf("service %s charge %s: %w", d.Service.Code, line.Code, err)
		}
		breakdown = append(breakdown, Charge{Code: line.Code, Description: line.Description, Amount: amount})
	}

	data := map[string]any{DataCostBreakdown: breakdown}
	if w := d.ShipmentWeights.Billable.Weight; w != "" {
		weight, err := w.Float64()
		if err != nil {
			return shipper.Rate{}, fmt.Errorf("service %s billable weight: %w", d.Service.Code, err)
		}
		data[DataBillableWeight] = weight
	}

	rate := shipper.Rate{
		ShippingMethod:  ShippingMethods.Resolve(d.Service.Code, d.Service.Description),
		Amounts:         map[string]shipper.Money{shipper.TotalAmountKey: total},
		RemoteServiceID: d.Service.Code,
		Guaranteed:      guaranteedServices[d.Service.Code],
		Data:            data,
	}
	if !pickup.IsZero() {
		p := pickup
		rate.PickupDate = &p
	}
	if t := d.TimeInTransit.TimeInTransit; t != "" {
		days, err := t.Int64()
		if err != nil {
			return shipper.Rate{}, fmt.Errorf("service %s time in transit: %w", d.Service.Code, err)
		}
		// Business days; no delivery date is derived from it.
		data[DataDaysInTransit] = int(days)
	}
	for _, a := range d.Alerts {
		rate.Warnings = append(rate.Warnings, a.Message)
	}
	return rate, nil
}

func currencyFor(code string) shipper.Currency {
	switch code {
	case "", shipper.USD.Code:
		return shipper.USD
	case shipper.CAD.Code:
		return shipper.CAD
	default:
		return shipper.Currency{Code: code, SubunitToUnit: 100}
	}
}
