package uspsintl

import (
	"encoding/xml"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/tournevent/carrierkit/pkg/shipper"
)

// Rate.Data keys set by ParseRateResponse.
const (
	DataSvcCommitments        = "svc_commitments"
	DataGuaranteeAvailability = "guarantee_availability"
	DataMaxWeight             = "max_weight"
	DataFullMailService       = "full_mail_service"
	DataPriceType             = "price_type"
)

// Price types reported under DataPriceType.
const (
	PriceRetail         = "retail"
	PriceCommercial     = "commercial"
	PriceCommercialPlus = "commercial_plus"
)

type intlRateV2Response struct {
	XMLName     xml.Name
	Number      string                `xml:"Number"`
	Description string                `xml:"Description"`
	Packages    []intlResponsePackage `xml:"Package"`
}

type intlResponsePackage struct {
	ID       string        `xml:"ID,attr"`
	Error    *xmlError     `xml:"Error"`
	Services []intlService `xml:"Service"`
}

type xmlError struct {
	Number      string `xml:"Number"`
	Description string `xml:"Description"`
}

type intlService struct {
	ID                    string `xml:"ID,attr"`
	Postage               string `xml:"Postage"`
	CommercialPostage     string `xml:"CommercialPostage"`
	CommercialPlusPostage string `xml:"CommercialPlusPostage"`
	SvcCommitments        string `xml:"SvcCommitments"`
	SvcDescription        string `xml:"SvcDescription"`
	MaxWeight             string `xml:"MaxWeight"`
	GuaranteeAvailability string `xml:"GuaranteeAvailability"`
}

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// ParseRateResponse turns an IntlRateV2Response into one rate per shipping
// method for the whole shipment.
func ParseRateResponse(req *shipper.Request, resp *shipper.Response, shipment *shipper.Shipment, opts *RateEstimateOptions) (*shipper.APIResult[[]shipper.Rate], error) {
	var doc intlRateV2Response
	if err := xml.Unmarshal([]byte(resp.Body), &doc); err != nil {
		return nil, shipper.ParseFailure(carrierName, err, req, resp)
	}
	if doc.XMLName.Local == "Error" {
		return nil, shipper.CarrierFailure(carrierName, doc.Number, []string{doc.Description}, req, resp)
	}

	var messages []string
	for _, p := range doc.Packages {
		if p.Error != nil {
			messages = append(messages, p.Error.Description)
		}
	}
	if len(messages) > 0 {
		return nil, shipper.CarrierFailure(carrierName, "", messages, req, resp)
	}

	quoted := make([]shipper.PackageRates, 0, len(doc.Packages))
	for _, p := range doc.Packages {
		pkg, ok := shipment.Package(p.ID)
		if !ok {
			return nil, fmt.Errorf("%w: %q", shipper.ErrUnknownPackage, p.ID)
		}
		quoted = append(quoted, shipper.PackageRates{
			PackageID: p.ID,
			Rates:     serviceRates(p, opts.PackageOptionsFor(pkg)),
		})
	}

	merged, err := shipper.MergePackageRates(shipment, quoted)
	if err != nil {
		return nil, err
	}
	return shipper.NewAPIResult(merged, req, resp), nil
}

func serviceRates(p intlResponsePackage, opts *PackageOptions) []shipper.Rate {
	rates := make([]shipper.Rate, 0, len(p.Services))
	for _, svc := range p.Services {
		description := cleanDescription(svc.SvcDescription)
		method := resolveMethod(svc.ID, description)
		if opts.ShippingMethod != nil && opts.ShippingMethod.ServiceCode != method.ServiceCode {
			continue
		}

		amount, priceType, ok := SelectPostage(svc.Postage, svc.CommercialPostage, svc.CommercialPlusPostage, opts)
		if !ok {
			continue
		}

		data := map[string]any{
			DataFullMailService: description,
			DataPriceType:       priceType,
		}
		if svc.SvcCommitments != "" {
			data[DataSvcCommitments] = svc.SvcCommitments
		}
		if svc.GuaranteeAvailability != "" {
			data[DataGuaranteeAvailability] = svc.GuaranteeAvailability
		}
		if svc.MaxWeight != "" {
			data[DataMaxWeight] = svc.MaxWeight
		}

		rates = append(rates, shipper.Rate{
			ShippingMethod:  method,
			Amounts:         map[string]shipper.Money{p.ID: amount},
			RemoteServiceID: svc.ID,
			Data:            data,
		})
	}
	return rates
}

// SelectPostage picks the price to quote for a service.
//
// The requested commercial tier wins when it has a price. A zero retail
// postage means retail pricing is not offered for the service, so the
// commercial and then the commercial plus price are used instead. When no
// tier has a price the service is not quoted.
func SelectPostage(retail, commercial, commercialPlus string, opts *PackageOptions) (shipper.Money, string, bool) {
	if opts.CommercialPlusPricing {
		if m, ok := positive(commercialPlus); ok {
			return m, PriceCommercialPlus, true
		}
	}
	if opts.CommercialPricing {
		if m, ok := positive(commercial); ok {
			return m, PriceCommercial, true
		}
	}
	if m, ok := positive(retail); ok {
		return m, PriceRetail, true
	}
	if m, ok := positive(commercial); ok {
		return m, PriceCommercial, true
	}
	if m, ok := positive(commercialPlus); ok {
		return m, PriceCommercialPlus, true
	}
	return shipper.Money{}, "", false
}

func positive(amount string) (shipper.Money, bool) {
	m, err := shipper.ParseMoney(amount, shipper.USD)
	if err != nil || m.Subunits <= 0 {
		return shipper.Money{}, false
	}
	return m, true
}

func cleanDescription(s string) string {
	s = html.UnescapeString(s)
	s = tagPattern.ReplaceAllString(s, "")
	s = strings.NewReplacer("™", "", "®", "").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}
