package canadapost

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tournevent/carrierkit/pkg/shipper"
)

// Rate.Data keys set by ParseRateResponse.
const (
	DataBase        = "base"
	DataTaxes       = "taxes"
	DataAdjustments = "adjustments"
	DataTransitDays = "transit_days"
	DataAMDelivery  = "am_delivery"
)

// Adjustment is a surcharge or discount applied to the base price.
type Adjustment struct {
	Code string
	Name string
	Cost shipper.Money
}

// rateEnvelope decodes either a price-quotes or a messages document.
type rateEnvelope struct {
	XMLName  xml.Name
	Quotes   []priceQuote `xml:"price-quote"`
	Messages []message    `xml:"message"`
}

type message struct {
	Code        string `xml:"code"`
	Description string `xml:"description"`
}

type priceQuote struct {
	ServiceCode     string          `xml:"service-code"`
	ServiceName     string          `xml:"service-name"`
	PriceDetails    priceDetails    `xml:"price-details"`
	ServiceStandard serviceStandard `xml:"service-standard"`
}

type priceDetails struct {
	Base        string       `xml:"base"`
	Taxes       priceTaxes   `xml:"taxes"`
	Due         string       `xml:"due"`
	Adjustments []adjustment `xml:"adjustments>adjustment"`
}

type priceTaxes struct {
	GST string `xml:"gst"`
	PST string `xml:"pst"`
	HST string `xml:"hst"`
}

type adjustment struct {
	Code string `xml:"adjustment-code"`
	Name string `xml:"adjustment-name"`
	Cost string `xml:"adjustment-cost"`
}

type serviceStandard struct {
	AMDelivery           bool   `xml:"am-delivery"`
	GuaranteedDelivery   bool   `xml:"guaranteed-delivery"`
	ExpectedTransitTime  string `xml:"expected-transit-time"`
	ExpectedDeliveryDate string `xml:"expected-delivery-date"`
}

// ParseRateResponse reads the price quotes for one package. Each rate's
// Amounts is keyed by the package ID and holds the amount due, taxes
// included. Quotes with nothing due are dropped. A messages document is a
// carrier failure.
func ParseRateResponse(req *shipper.Request, resp *shipper.Response, pkg shipper.Package, opts *PackageOptions, mailingDate time.Time) ([]shipper.Rate, error) {
	quotes, err := decodeQuotes(req, resp)
	if err != nil {
		return nil, err
	}

	rates := make([]shipper.Rate, 0, len(quotes))
	for _, q := range quotes {
		if opts != nil && opts.ShippingMethod != nil && q.ServiceCode != opts.ShippingMethod.ServiceCode {
			continue
		}
		if strings.TrimSpace(q.PriceDetails.Due) == "" {
			continue
		}
		rate, err := quoteRate(q, pkg.ID, mailingDate)
		if err != nil {
			return nil, shipper.ParseFailure(carrierName, err, req, resp)
		}
		if rate.Amounts[pkg.ID].IsZero() {
			continue
		}
		rates = append(rates, rate)
	}
	return rates, nil
}

// ParseTimingsResponse reads the service standards of a price quotes
// document. Quotes without an expected delivery date are skipped.
func ParseTimingsResponse(req *shipper.Request, resp *shipper.Response, mailingDate time.Time) ([]shipper.Timing, error) {
	quotes, err := decodeQuotes(req, resp)
	if err != nil {
		return nil, err
	}

	var timings []shipper.Timing
	for _, q := range quotes {
		std := q.ServiceStandard
		if std.ExpectedDeliveryDate == "" {
			continue
		}
		delivery, err := time.Parse(time.DateOnly, std.ExpectedDeliveryDate)
		if err != nil {
			return nil, shipper.ParseFailure(carrierName, fmt.Errorf("service %s delivery date: %w", q.ServiceCode, err), req, resp)
		}
		t := shipper.Timing{
			ShippingMethod: ShippingMethods.Resolve(q.ServiceCode, q.ServiceName),
			Pickup:         mailingDate,
			Delivery:       delivery,
			Guaranteed:     std.GuaranteedDelivery,
			Data:           map[string]any{DataAMDelivery: std.AMDelivery},
		}
		if days, ok := transitDays(std.ExpectedTransitTime); ok {
			t.Data[DataTransitDays] = days
		}
		timings = append(timings, t)
	}
	return timings, nil
}

func decodeQuotes(req *shipper.Request, resp *shipper.Response) ([]priceQuote, error) {
	var doc rateEnvelope
	if err := xml.Unmarshal([]byte(resp.Body), &doc); err != nil {
		return nil, shipper.ParseFailure(carrierName, err, req, resp)
	}

	switch doc.XMLName.Local {
	case "price-quotes":
		return doc.Quotes, nil
	case "messages":
		code := ""
		descriptions := make([]string, 0, len(doc.Messages))
		for _, m := range doc.Messages {
			if code == "" {
				code = m.Code
			}
			descriptions = append(descriptions, m.Description)
		}
		return nil, shipper.CarrierFailure(carrierName, code, descriptions, req, resp)
	default:
		return nil, shipper.ParseFailure(carrierName, fmt.Errorf("unexpected root element %q", doc.XMLName.Local), req, resp)
	}
}

func quoteRate(q priceQuote, packageID string, mailingDate time.Time) (shipper.Rate, error) {
	pd := q.PriceDetails
	due, err := shipper.ParseMoney(pd.Due, shipper.CAD)
	if err != nil {
		return shipper.Rate{}, fmt.Errorf("service %s due: %w", q.ServiceCode, err)
	}
	base, err := optionalMoney(pd.Base)
	if err != nil {
		return shipper.Rate{}, fmt.Errorf("service %s base: %w", q.ServiceCode, err)
	}

	taxes := shipper.NewMoney(0, shipper.CAD)
	for _, raw := range []string{pd.Taxes.GST, pd.Taxes.PST, pd.Taxes.HST} {
		tax, err := optionalMoney(raw)
		if err != nil {
			return shipper.Rate{}, fmt.Errorf("service %s taxes: %w", q.ServiceCode, err)
		}
		if taxes, err = taxes.Add(tax); err != nil {
			return shipper.Rate{}, err
		}
	}

	adjustments := make([]Adjustment, 0, len(pd.Adjustments))
	for _, a := range pd.Adjustments {
		cost, err := optionalMoney(a.Cost)
		if err != nil {
			return shipper.Rate{}, fmt.Errorf("service %s adjustment %s: %w", q.ServiceCode, a.Code, err)
		}
		adjustments = append(adjustments, Adjustment{Code: a.Code, Name: a.Name, Cost: cost})
	}

	std := q.ServiceStandard
	rate := shipper.Rate{
		ShippingMethod:  ShippingMethods.Resolve(q.ServiceCode, q.ServiceName),
		Amounts:         map[string]shipper.Money{packageID: due},
		RemoteServiceID: q.ServiceCode,
		Guaranteed:      std.GuaranteedDelivery,
		Data: map[string]any{
			DataBase:        base,
			DataTaxes:       taxes,
			DataAdjustments: adjustments,
			DataAMDelivery:  std.AMDelivery,
		},
	}
	if !mailingDate.IsZero() {
		pickup := mailingDate
		rate.PickupDate = &pickup
	}
	if days, ok := transitDays(std.ExpectedTransitTime); ok {
		rate.Data[DataTransitDays] = days
	}
	if std.ExpectedDeliveryDate != "" {
		delivery, err := time.Parse(time.DateOnly, std.ExpectedDeliveryDate)
		if err != nil {
			return shipper.Rate{}, fmt.Errorf("service %s delivery date: %w", q.ServiceCode, err)
		}
		rate.DeliveryDate = &delivery
	}
	return rate, nil
}

// optionalMoney reads a CAD amount; a missing element is zero.
func optionalMoney(raw string) (shipper.Money, error) {
	if strings.TrimSpace(raw) == "" {
		return shipper.NewMoney(0, shipper.CAD), nil
	}
	return shipper.ParseMoney(raw, shipper.CAD)
}

func transitDays(raw string) (int, bool) {
	days, err := strconv.Atoi(strings.TrimSpace(raw))
	return days, err == nil
}
