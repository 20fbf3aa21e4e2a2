package usps

import (
	"encoding/xml"
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/tournevent/carrierkit/pkg/shipper"
)

// Rate.Data keys set by ParseRateResponse.
const (
	DataBoxName         = "box_name"
	DataHoldForPickup   = "hold_for_pickup"
	DataCommitment      = "commitment"
	DataDaysToDelivery  = "days_to_delivery"
	DataCommercial      = "commercial"
	DataFullMailService = "full_mail_service"
)

type rateV4Response struct {
	XMLName     xml.Name
	Number      string                  `xml:"Number"`
	Description string                  `xml:"Description"`
	Packages    []rateV4ResponsePackage `xml:"Package"`
}

type rateV4ResponsePackage struct {
	ID      string    `xml:"ID,attr"`
	Error   *xmlError `xml:"Error"`
	Postage []postage `xml:"Postage"`
}

type xmlError struct {
	Number      string `xml:"Number"`
	Source      string `xml:"Source"`
	Description string `xml:"Description"`
}

type postage struct {
	ClassID        string `xml:"CLASSID,attr"`
	MailService    string `xml:"MailService"`
	Rate           string `xml:"Rate"`
	CommercialRate string `xml:"CommercialRate"`
	CommitmentDate string `xml:"CommitmentDate"`
	CommitmentName string `xml:"CommitmentName"`
}

var (
	tagPattern     = regexp.MustCompile(`<[^>]*>`)
	boxPattern     = regexp.MustCompile(`(?i)(?:(?:small|medium|large|padded|legal|window|gift card) )?flat rate (?:envelope|box)`)
	commitmentDays = regexp.MustCompile(`^(\d+)-Day`)
)

// ParseRateResponse turns a RateV4Response into one rate per shipping method
// for the whole shipment. A package ID the shipment does not contain is
// returned as a plain error wrapping shipper.ErrUnknownPackage.
func ParseRateResponse(req *shipper.Request, resp *shipper.Response, shipment *shipper.Shipment, opts *RateEstimateOptions) (*shipper.APIResult[[]shipper.Rate], error) {
	var doc rateV4Response
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
		rates, err := packageRates(p, opts.PackageOptionsFor(pkg))
		if err != nil {
			return nil, err
		}
		quoted = append(quoted, shipper.PackageRates{PackageID: p.ID, Rates: rates})
	}

	merged, err := shipper.MergePackageRates(shipment, quoted)
	if err != nil {
		return nil, err
	}
	return shipper.NewAPIResult(merged, req, resp), nil
}

func packageRates(p rateV4ResponsePackage, opts *RateEstimatePackageOptions) ([]shipper.Rate, error) {
	wantBox, err := opts.Container.BoxName()
	if err != nil {
		return nil, err
	}

	rates := make([]shipper.Rate, 0, len(p.Postage))
	for _, pg := range p.Postage {
		service := cleanMailService(pg.MailService)
		box := boxName(service)
		hold := strings.Contains(strings.ToLower(service), "hold for pickup")
		if box != wantBox || hold != opts.HoldForPickup {
			continue
		}

		amount, commercial, ok := postagePrice(pg, opts.CommercialPricing)
		if !ok {
			continue
		}

		data := map[string]any{
			DataBoxName:         box,
			DataHoldForPickup:   hold,
			DataCommercial:      commercial,
			DataFullMailService: service,
		}
		if pg.CommitmentName != "" {
			data[DataCommitment] = pg.CommitmentName
			if m := commitmentDays.FindStringSubmatch(pg.CommitmentName); m != nil {
				days, _ := strconv.Atoi(m[1])
				data[DataDaysToDelivery] = days
			}
		}

		rate := shipper.Rate{
			ShippingMethod: resolveMethod(pg.ClassID, service),
			Amounts:        map[string]shipper.Money{p.ID: amount},
			Data:           data,
		}
		if d, err := time.Parse("2006-01-02", pg.CommitmentDate); err == nil {
			rate.DeliveryDate = &d
		}
		rates = append(rates, rate)
	}
	return rates, nil
}

// postagePrice picks the commercial price when requested and available,
// otherwise the retail price. A missing or zero price means the service
// cannot be bought this way.
func postagePrice(pg postage, commercial bool) (shipper.Money, bool, bool) {
	if commercial {
		if m, err := shipper.ParseMoney(pg.CommercialRate, shipper.USD); err == nil && !m.IsZero() {
			return m, true, true
		}
	}
	m, err := shipper.ParseMoney(pg.Rate, shipper.USD)
	if err != nil || m.IsZero() {
		return shipper.Money{}, false, false
	}
	return m, false, true
}

func resolveMethod(classID, service string) shipper.ShippingMethod {
	if code, ok := classIDs[classID]; ok {
		if m, ok := ShippingMethods.ByCode(code); ok {
			return m
		}
	}
	if m, ok := ShippingMethods.ByName(service); ok {
		return m
	}
	return shipper.AdHocShippingMethod(service, classID)
}

// cleanMailService removes the HTML markup USPS embeds in service names.
func cleanMailService(s string) string {
	s = html.UnescapeString(s)
	s = tagPattern.ReplaceAllString(s, "")
	s = strings.NewReplacer("™", "", "®", "").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

func boxName(service string) string {
	if m := boxPattern.FindString(service); m != "" {
		return strings.ToLower(m)
	}
	return "variable"
}
