package canadapost

import (
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/tournevent/carrierkit/pkg/shipper"
)

const rateNamespace = "http://www.canadapost.ca/ws/ship/rate-v4"

// mailingScenario elements follow the order of the rate-v4 schema.
type mailingScenario struct {
	XMLName             xml.Name              `xml:"mailing-scenario"`
	Xmlns               string                `xml:"xmlns,attr"`
	CustomerNumber      string                `xml:"customer-number,omitempty"`
	ContractID          string                `xml:"contract-id,omitempty"`
	PromoCode           string                `xml:"promo-code,omitempty"`
	QuoteType           string                `xml:"quote-type"`
	ExpectedMailingDate string                `xml:"expected-mailing-date,omitempty"`
	Options             *scenarioOptions      `xml:"options,omitempty"`
	Parcel              parcelCharacteristics `xml:"parcel-characteristics"`
	Services            *scenarioServices     `xml:"services,omitempty"`
	OriginPostalCode    string                `xml:"origin-postal-code"`
	Destination         scenarioDestination   `xml:"destination"`
}

type scenarioOptions struct {
	Option []scenarioOption `xml:"option"`
}

type scenarioOption struct {
	Code   string `xml:"option-code"`
	Amount string `xml:"option-amount,omitempty"`
}

type parcelCharacteristics struct {
	Weight      string         `xml:"weight"`
	Dimensions  *xmlDimensions `xml:"dimensions,omitempty"`
	Unpackaged  bool           `xml:"unpackaged,omitempty"`
	MailingTube bool           `xml:"mailing-tube,omitempty"`
}

type xmlDimensions struct {
	Length string `xml:"length"`
	Width  string `xml:"width"`
	Height string `xml:"height"`
}

type scenarioServices struct {
	ServiceCode []string `xml:"service-code"`
}

type scenarioDestination struct {
	Domestic      *xmlDomestic      `xml:"domestic,omitempty"`
	UnitedStates  *xmlUnitedStates  `xml:"united-states,omitempty"`
	International *xmlInternational `xml:"international,omitempty"`
}

type xmlDomestic struct {
	PostalCode string `xml:"postal-code"`
}

type xmlUnitedStates struct {
	ZipCode string `xml:"zip-code"`
}

type xmlInternational struct {
	CountryCode string `xml:"country-code"`
}

// PackageRequest is the mailing scenario for one parcel. The API quotes a
// single parcel per call.
type PackageRequest struct {
	PackageID string
	Body      string
}

// SerializeRateRequests builds one mailing scenario per package.
func SerializeRateRequests(shipment *shipper.Shipment, opts *RatesOptions, mailingDate time.Time) ([]PackageRequest, error) {
	if len(shipment.Packages) == 0 {
		return nil, shipper.ErrNoPackages
	}
	out := make([]PackageRequest, 0, len(shipment.Packages))
	for i, pkg := range shipment.Packages {
		if pkg.ID == "" {
			return nil, fmt.Errorf("package %d has no ID", i)
		}
		body, err := SerializeRateRequest(shipment, pkg, opts, mailingDate)
		if err != nil {
			return nil, fmt.Errorf("package %q: %w", pkg.ID, err)
		}
		out = append(out, PackageRequest{PackageID: pkg.ID, Body: body})
	}
	return out, nil
}

// SerializeRateRequest builds the mailing scenario for pkg. Weights are sent
// in kilograms to three decimals and dimensions in centimeters to one.
func SerializeRateRequest(shipment *shipper.Shipment, pkg shipper.Package, opts *RatesOptions, mailingDate time.Time) (string, error) {
	if err := opts.validate(); err != nil {
		return "", err
	}
	if country := strings.ToUpper(shipment.Origin.CountryCode); country != "" && country != "CA" {
		return "", fmt.Errorf("%w: canada post ships from CA, not %q", shipper.ErrUnknownCode, shipment.Origin.CountryCode)
	}
	po := opts.PackageOptionsFor(pkg)
	if err := po.validate(); err != nil {
		return "", err
	}

	doc := mailingScenario{
		Xmlns:            rateNamespace,
		CustomerNumber:   opts.CustomerNumber,
		ContractID:       opts.ContractID,
		PromoCode:        opts.PromoCode,
		QuoteType:        string(opts.QuoteType),
		Options:          scenarioOptionsFor(po),
		Parcel:           parcel(pkg, po),
		OriginPostalCode: normalizePostalCode(shipment.Origin.PostalCode),
		Destination:      destination(shipment.Destination),
	}
	if !mailingDate.IsZero() {
		doc.ExpectedMailingDate = mailingDate.Format(time.DateOnly)
	}
	if po.ShippingMethod != nil {
		doc.Services = &scenarioServices{ServiceCode: []string{po.ShippingMethod.ServiceCode}}
	}

	body, err := xml.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}
	return xml.Header + string(body), nil
}

func scenarioOptionsFor(po *PackageOptions) *scenarioOptions {
	if len(po.Options) == 0 {
		return nil
	}
	out := &scenarioOptions{}
	for _, code := range po.Options {
		opt := scenarioOption{Code: code}
		if code == OptionCoverage && po.Coverage != nil {
			opt.Amount = po.Coverage.Decimal()
		}
		out.Option = append(out.Option, opt)
	}
	return out
}

func parcel(pkg shipper.Package, po *PackageOptions) parcelCharacteristics {
	p := parcelCharacteristics{
		Weight:      shipper.FormatDecimal(pkg.WeightKg(), 3),
		Unpackaged:  po.Unpackaged,
		MailingTube: po.MailingTube,
	}
	d := pkg.Dimensions
	if d.Length > 0 && d.Width > 0 && d.Height > 0 {
		p.Dimensions = &xmlDimensions{
			Length: shipper.FormatDecimal(shipper.ToCentimeters(d.Length, d.Unit), 1),
			Width:  shipper.FormatDecimal(shipper.ToCentimeters(d.Width, d.Unit), 1),
			Height: shipper.FormatDecimal(shipper.ToCentimeters(d.Height, d.Unit), 1),
		}
	}
	return p
}

func destination(a shipper.Address) scenarioDestination {
	switch strings.ToUpper(a.CountryCode) {
	case "", "CA":
		return scenarioDestination{Domestic: &xmlDomestic{PostalCode: normalizePostalCode(a.PostalCode)}}
	case "US":
		return scenarioDestination{UnitedStates: &xmlUnitedStates{ZipCode: strings.TrimSpace(a.PostalCode)}}
	default:
		return scenarioDestination{International: &xmlInternational{CountryCode: strings.ToUpper(a.CountryCode)}}
	}
}

// normalizePostalCode removes spaces from postal codes
func normalizePostalCode(pc string) string {
	return strings.ReplaceAll(strings.ToUpper(pc), " ", "")
}
