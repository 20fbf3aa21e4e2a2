package uspsship

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/tournevent/carrierkit/pkg/shipper"
)

// Rate.Data keys set by ParseRateResponse.
const (
	DataSKU           = "sku"
	DataZone          = "zone"
	DataRateIndicator = "rate_indicator"
	DataPriceType     = "price_type"
	DataDescription   = "description"
)

// Timing.Data keys set by ParseTimingsResponse.
const (
	DataServiceStandard        = "service_standard"
	DataServiceStandardMessage = "service_standard_message"
)

type errorResponse struct {
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Errors  []struct {
			Code   string `json:"code"`
			Title  string `json:"title"`
			Detail string `json:"detail"`
		} `json:"errors"`
	} `json:"error"`
}

// checkResponse decodes body into v after turning error replies into
// failures.
func checkResponse(req *shipper.Request, resp *shipper.Response, v any) error {
	if !json.Valid([]byte(resp.Body)) {
		return shipper.ParseFailure(carrierName, fmt.Errorf("response is not valid JSON"), req, resp)
	}

	var apiErr errorResponse
	if strings.HasPrefix(strings.TrimSpace(resp.Body), "{") {
		if err := json.Unmarshal([]byte(resp.Body), &apiErr); err != nil {
			return shipper.ParseFailure(carrierName, err, req, resp)
		}
	}
	if apiErr.Error != nil {
		var messages []string
		for _, e := range apiErr.Error.Errors {
			if e.Detail != "" {
				messages = append(messages, e.Detail)
			} else {
				messages = append(messages, e.Title)
			}
		}
		if len(messages) == 0 {
			messages = append(messages, apiErr.Error.Message)
		}
		return shipper.CarrierFailure(carrierName, apiErr.Error.Code, messages, req, resp)
	}
	if !resp.OK() {
		return shipper.CarrierFailure(carrierName, shipper.CodeHTTPError, []string{fmt.Sprintf("unexpected status %d", resp.Status)}, req, resp)
	}

	if err := json.Unmarshal([]byte(resp.Body), v); err != nil {
		return shipper.ParseFailure(carrierName, err, req, resp)
	}
	return nil
}

type ratesSearchResponse struct {
	RateOptions []struct {
		TotalBasePrice json.Number `json:"totalBasePrice"`
		TotalPrice     json.Number `json:"totalPrice"`
		Rates          []struct {
			SKU           string      `json:"SKU"`
			Description   string      `json:"description"`
			PriceType     string      `json:"priceType"`
			Price         json.Number `json:"price"`
			MailClass     string      `json:"mailClass"`
			Zone          string      `json:"zone"`
			RateIndicator string      `json:"rateIndicator"`
		} `json:"rates"`
	} `json:"rateOptions"`
}

// ParseRateResponse reads the rate options quoted for a single package. Each
// rate's Amounts is keyed by the package ID.
func ParseRateResponse(req *shipper.Request, resp *shipper.Response, pkg shipper.Package, opts *PackageOptions) ([]shipper.Rate, error) {
	var doc ratesSearchResponse
	if err := checkResponse(req, resp, &doc); err != nil {
		return nil, err
	}

	rates := make([]shipper.Rate, 0, len(doc.RateOptions))
	for _, option := range doc.RateOptions {
		if len(option.Rates) == 0 {
			continue
		}
		first := option.Rates[0]
		method := resolveMethod(first.MailClass, first.Description)
		if opts.ShippingMethod != nil && opts.ShippingMethod.ServiceCode != method.ServiceCode {
			continue
		}

		price := option.TotalPrice
		if price == "" {
			price = option.TotalBasePrice
		}
		if price == "" {
			price = first.Price
		}
		amount, err := shipper.ParseMoney(price.String(), shipper.USD)
		if err != nil {
			return nil, shipper.ParseFailure(carrierName, err, req, resp)
		}
		if amount.Subunits <= 0 {
			continue
		}

		rates = append(rates, shipper.Rate{
			ShippingMethod: method,
			Amounts:        map[string]shipper.Money{pkg.ID: amount},
			Data: map[string]any{
				DataSKU:           first.SKU,
				DataZone:          first.Zone,
				DataRateIndicator: first.RateIndicator,
				DataPriceType:     first.PriceType,
				DataDescription:   first.Description,
			},
		})
	}
	return rates, nil
}

type serviceStandard struct {
	MailClass              string `json:"mailClass"`
	ServiceStandard        string `json:"serviceStandard"`
	ServiceStandardMessage string `json:"serviceStandardMessage"`
	Delivery               struct {
		ScheduledDeliveryDateTime string `json:"scheduledDeliveryDateTime"`
		GuaranteedDelivery        bool   `json:"guaranteedDelivery"`
	} `json:"delivery"`
}

// ParseTimingsResponse reads a service standards estimate. An estimate
// without a scheduled delivery date makes the whole response a failure.
func ParseTimingsResponse(req *shipper.Request, resp *shipper.Response, acceptance time.Time) ([]shipper.Timing, error) {
	var doc []serviceStandard
	if err := checkResponse(req, resp, &doc); err != nil {
		return nil, err
	}

	timings := make([]shipper.Timing, 0, len(doc))
	for _, s := range doc {
		raw := strings.TrimSpace(s.Delivery.ScheduledDeliveryDateTime)
		if raw == "" {
			return nil, shipper.CarrierFailure(carrierName, "", []string{"no scheduled delivery date for " + s.MailClass}, req, resp)
		}
		delivery, err := parseDateTime(raw)
		if err != nil {
			return nil, shipper.ParseFailure(carrierName, err, req, resp)
		}

		timings = append(timings, shipper.Timing{
			ShippingMethod: resolveMethod(s.MailClass, ""),
			Pickup:         acceptance,
			Delivery:       delivery,
			Guaranteed:     s.Delivery.GuaranteedDelivery,
			Data: map[string]any{
				DataServiceStandard:        s.ServiceStandard,
				DataServiceStandardMessage: s.ServiceStandardMessage,
			},
		})
	}
	return timings, nil
}

func parseDateTime(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", dateLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date time %q", s)
}

type labelResponse struct {
	LabelMetadata struct {
		TrackingNumber     string      `json:"trackingNumber"`
		Postage            json.Number `json:"postage"`
		SKU                string      `json:"SKU"`
		RoutingInformation string      `json:"routingInformation"`
	} `json:"labelMetadata"`
	LabelImage string `json:"labelImage"`
}

// Label.Data keys set by ParseLabelResponse.
const (
	DataRoutingInformation = "routing_information"
)

// ParseLabelResponse reads a label purchase. The image is base64 in the
// response and decoded into Label.Image.
func ParseLabelResponse(req *shipper.Request, resp *shipper.Response, method shipper.ShippingMethod, format shipper.LabelFormat) (shipper.Label, error) {
	var doc labelResponse
	if err := checkResponse(req, resp, &doc); err != nil {
		return shipper.Label{}, err
	}
	if doc.LabelMetadata.TrackingNumber == "" {
		return shipper.Label{}, shipper.ParseFailure(carrierName, fmt.Errorf("label has no tracking number"), req, resp)
	}

	image, err := base64.StdEncoding.DecodeString(doc.LabelImage)
	if err != nil {
		return shipper.Label{}, shipper.ParseFailure(carrierName, fmt.Errorf("decoding label image: %w", err), req, resp)
	}

	label := shipper.Label{
		TrackingNumber: doc.LabelMetadata.TrackingNumber,
		ShippingMethod: method,
		Format:         format,
		Image:          image,
		Data: map[string]any{
			DataSKU:                doc.LabelMetadata.SKU,
			DataRoutingInformation: doc.LabelMetadata.RoutingInformation,
		},
	}
	if doc.LabelMetadata.Postage != "" {
		postage, err := shipper.ParseMoney(doc.LabelMetadata.Postage.String(), shipper.USD)
		if err != nil {
			return shipper.Label{}, shipper.ParseFailure(carrierName, err, req, resp)
		}
		label.Postage = &postage
	}
	return label, nil
}

type addressResponse struct {
	Firm    string `json:"firm"`
	Address struct {
		StreetAddress    string `json:"streetAddress"`
		SecondaryAddress string `json:"secondaryAddress"`
		City             string `json:"city"`
		State            string `json:"state"`
		ZIPCode          string `json:"ZIPCode"`
		ZIPPlus4         string `json:"ZIPPlus4"`
	} `json:"address"`
	AdditionalInfo struct {
		DeliveryPoint   string `json:"deliveryPoint"`
		CarrierRoute    string `json:"carrierRoute"`
		DPVConfirmation string `json:"DPVConfirmation"`
		Business        string `json:"business"`
		Vacant          string `json:"vacant"`
	} `json:"additionalInfo"`
	Corrections []addressNote `json:"corrections"`
	Matches     []addressNote `json:"matches"`
	Warnings    []string      `json:"warnings"`
}

type addressNote struct {
	Code string `json:"code"`
	Text string `json:"text"`
}

// AddressValidation.Data keys set by ParseAddressResponse.
const (
	DataDPVConfirmation = "dpv_confirmation"
	DataCarrierRoute    = "carrier_route"
	DataDeliveryPoint   = "delivery_point"
	DataVacant          = "vacant"
)

// ParseAddressResponse reads an address lookup. The address is valid when
// the delivery point is confirmed ("Y").
func ParseAddressResponse(req *shipper.Request, resp *shipper.Response, original shipper.Address) (shipper.AddressValidation, error) {
	var doc addressResponse
	if err := checkResponse(req, resp, &doc); err != nil {
		return shipper.AddressValidation{}, err
	}

	a := doc.Address
	postal := a.ZIPCode
	if a.ZIPPlus4 != "" {
		postal += "-" + a.ZIPPlus4
	}
	suggested := original
	suggested.Company = firstNonEmpty(doc.Firm, original.Company)
	suggested.Line1 = a.StreetAddress
	suggested.Line2 = a.SecondaryAddress
	suggested.City = a.City
	suggested.ProvinceCode = a.State
	suggested.PostalCode = postal
	suggested.CountryCode = "US"
	suggested.IsResidential = doc.AdditionalInfo.Business != "Y"

	v := shipper.AddressValidation{
		Original:  original,
		Suggested: &suggested,
		Valid:     doc.AdditionalInfo.DPVConfirmation == "Y",
		Warnings:  doc.Warnings,
		Data: map[string]any{
			DataDPVConfirmation: doc.AdditionalInfo.DPVConfirmation,
			DataCarrierRoute:    doc.AdditionalInfo.CarrierRoute,
			DataDeliveryPoint:   doc.AdditionalInfo.DeliveryPoint,
			DataVacant:          doc.AdditionalInfo.Vacant == "Y",
		},
	}
	for _, c := range doc.Corrections {
		if c.Text != "" {
			v.Corrections = append(v.Corrections, c.Text)
		}
	}
	return v, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
