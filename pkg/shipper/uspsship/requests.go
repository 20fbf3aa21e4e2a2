package uspsship

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/tournevent/carrierkit/pkg/shipper"
)

const dateLayout = "2006-01-02"

type ratesSearchRequest struct {
	OriginZIPCode                string   `json:"originZIPCode"`
	DestinationZIPCode           string   `json:"destinationZIPCode"`
	Weight                       float64  `json:"weight"`
	Length                       float64  `json:"length"`
	Width                        float64  `json:"width"`
	Height                       float64  `json:"height"`
	MailClasses                  []string `json:"mailClasses"`
	PriceType                    string   `json:"priceType,omitempty"`
	MailingDate                  string   `json:"mailingDate"`
	AccountType                  string   `json:"accountType,omitempty"`
	AccountNumber                string   `json:"accountNumber,omitempty"`
	ProcessingCategory           string   `json:"processingCategory,omitempty"`
	RateIndicator                string   `json:"rateIndicator,omitempty"`
	DestinationEntryFacilityType string   `json:"destinationEntryFacilityType,omitempty"`
}

// PackageRequest is a serialized request body for one package.
type PackageRequest struct {
	PackageID string
	Body      string
}

// SerializeRateRequests builds one total-rates search body per package. The
// v3 prices API quotes a single piece per call.
func SerializeRateRequests(shipment *shipper.Shipment, opts *RatesOptions, mailingDate time.Time) ([]PackageRequest, error) {
	if len(shipment.Packages) == 0 {
		return nil, shipper.ErrNoPackages
	}

	out := make([]PackageRequest, 0, len(shipment.Packages))
	for i, pkg := range shipment.Packages {
		if pkg.ID == "" {
			return nil, fmt.Errorf("package %d has no ID", i)
		}
		po := opts.PackageOptionsFor(pkg)
		if err := po.validate(); err != nil {
			return nil, fmt.Errorf("package %q: %w", pkg.ID, err)
		}

		body, err := json.Marshal(ratesSearchRequest{
			OriginZIPCode:                zip5(shipment.Origin.PostalCode),
			DestinationZIPCode:           zip5(shipment.Destination.PostalCode),
			Weight:                       shipper.Round(pkg.WeightLb(), 2),
			Length:                       shipper.Round(pkg.LengthIn(), 2),
			Width:                        shipper.Round(pkg.WidthIn(), 2),
			Height:                       shipper.Round(pkg.HeightIn(), 2),
			MailClasses:                  po.mailClasses(),
			PriceType:                    string(po.PriceType),
			MailingDate:                  mailingDate.Format(dateLayout),
			AccountType:                  po.AccountType,
			AccountNumber:                po.AccountNumber,
			ProcessingCategory:           string(po.processingCategory(pkg)),
			RateIndicator:                po.RateIndicator,
			DestinationEntryFacilityType: po.DestinationEntryFacilityType,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		out = append(out, PackageRequest{PackageID: pkg.ID, Body: string(body)})
	}
	return out, nil
}

// ServiceStandardsQuery builds the query string for a service standards
// estimate. An empty mailClass asks for every class.
func ServiceStandardsQuery(shipment *shipper.Shipment, mailClass string, acceptance time.Time) string {
	if mailClass == "" {
		mailClass = "ALL"
	}
	q := url.Values{}
	q.Set("originZIPCode", zip5(shipment.Origin.PostalCode))
	q.Set("destinationZIPCode", zip5(shipment.Destination.PostalCode))
	q.Set("acceptanceDate", acceptance.Format(dateLayout))
	q.Set("mailClass", mailClass)
	return q.Encode()
}

// AddressQuery builds the query string for an address lookup.
func AddressQuery(a shipper.Address) string {
	zip, plus4 := splitZIP(a.PostalCode)
	q := url.Values{}
	if a.Company != "" {
		q.Set("firm", a.Company)
	}
	q.Set("streetAddress", a.Line1)
	if a.Line2 != "" {
		q.Set("secondaryAddress", a.Line2)
	}
	if a.City != "" {
		q.Set("city", a.City)
	}
	q.Set("state", a.ProvinceCode)
	if zip != "" {
		q.Set("ZIPCode", zip)
	}
	if plus4 != "" {
		q.Set("ZIPPlus4", plus4)
	}
	return q.Encode()
}

type labelRequest struct {
	ImageInfo          labelImageInfo          `json:"imageInfo"`
	ToAddress          labelAddress            `json:"toAddress"`
	FromAddress        labelAddress            `json:"fromAddress"`
	PackageDescription labelPackageDescription `json:"packageDescription"`
}

type labelImageInfo struct {
	ImageType ImageType `json:"imageType"`
	LabelType string    `json:"labelType"`
}

type labelAddress struct {
	FirstName        string `json:"firstName,omitempty"`
	LastName         string `json:"lastName,omitempty"`
	Firm             string `json:"firm,omitempty"`
	StreetAddress    string `json:"streetAddress"`
	SecondaryAddress string `json:"secondaryAddress,omitempty"`
	City             string `json:"city"`
	State            string `json:"state"`
	ZIPCode          string `json:"ZIPCode"`
	ZIPPlus4         string `json:"ZIPPlus4,omitempty"`
	Phone            string `json:"phone,omitempty"`
	Email            string `json:"email,omitempty"`
}

type labelPackageDescription struct {
	MailClass                    string  `json:"mailClass"`
	RateIndicator                string  `json:"rateIndicator,omitempty"`
	WeightUOM                    string  `json:"weightUOM"`
	Weight                       float64 `json:"weight"`
	DimensionsUOM                string  `json:"dimensionsUOM"`
	Length                       float64 `json:"length"`
	Width                        float64 `json:"width"`
	Height                       float64 `json:"height"`
	ProcessingCategory           string  `json:"processingCategory,omitempty"`
	MailingDate                  string  `json:"mailingDate"`
	DestinationEntryFacilityType string  `json:"destinationEntryFacilityType,omitempty"`
}

// SerializeLabelRequests builds one label body per package. Every package
// needs a shipping method.
func SerializeLabelRequests(shipment *shipper.Shipment, opts *LabelOptions, mailingDate time.Time) ([]PackageRequest, error) {
	if len(shipment.Packages) == 0 {
		return nil, shipper.ErrNoPackages
	}
	imageType, err := opts.imageType()
	if err != nil {
		return nil, err
	}

	out := make([]PackageRequest, 0, len(shipment.Packages))
	for i, pkg := range shipment.Packages {
		if pkg.ID == "" {
			return nil, fmt.Errorf("package %d has no ID", i)
		}
		po := opts.PackageOptionsFor(pkg)
		if err := po.validate(); err != nil {
			return nil, fmt.Errorf("package %q: %w", pkg.ID, err)
		}
		if po.ShippingMethod == nil {
			return nil, fmt.Errorf("package %q: %w", pkg.ID, ErrMissingShippingMethod)
		}

		body, err := json.Marshal(labelRequest{
			ImageInfo:   labelImageInfo{ImageType: imageType, LabelType: opts.LabelType},
			ToAddress:   toLabelAddress(shipment.Destination),
			FromAddress: toLabelAddress(shipment.Origin),
			PackageDescription: labelPackageDescription{
				MailClass:                    po.ShippingMethod.ServiceCode,
				RateIndicator:                po.RateIndicator,
				WeightUOM:                    "lb",
				Weight:                       shipper.Round(pkg.WeightLb(), 2),
				DimensionsUOM:                "in",
				Length:                       shipper.Round(pkg.LengthIn(), 2),
				Width:                        shipper.Round(pkg.WidthIn(), 2),
				Height:                       shipper.Round(pkg.HeightIn(), 2),
				ProcessingCategory:           string(po.processingCategory(pkg)),
				MailingDate:                  mailingDate.Format(dateLayout),
				DestinationEntryFacilityType: po.DestinationEntryFacilityType,
			},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		out = append(out, PackageRequest{PackageID: pkg.ID, Body: string(body)})
	}
	return out, nil
}

func toLabelAddress(a shipper.Address) labelAddress {
	first, last := splitName(a.Name)
	zip, plus4 := splitZIP(a.PostalCode)
	return labelAddress{
		FirstName:        first,
		LastName:         last,
		Firm:             a.Company,
		StreetAddress:    a.Line1,
		SecondaryAddress: a.Line2,
		City:             a.City,
		State:            a.ProvinceCode,
		ZIPCode:          zip,
		ZIPPlus4:         plus4,
		Phone:            a.Phone,
		Email:            a.Email,
	}
}

func splitName(name string) (string, string) {
	name = strings.TrimSpace(name)
	i := strings.LastIndex(name, " ")
	if i < 0 {
		return name, ""
	}
	return strings.TrimSpace(name[:i]), name[i+1:]
}

func splitZIP(postal string) (string, string) {
	zip, plus4, _ := strings.Cut(strings.TrimSpace(postal), "-")
	return zip, plus4
}

func zip5(postal string) string {
	zip, _ := splitZIP(postal)
	if len(zip) > 5 {
		return zip[:5]
	}
	return zip
}
