package uspsintl

import (
	"encoding/xml"
	"fmt"
	"strconv"

	"github.com/tournevent/carrierkit/pkg/shipper"
)

type intlRateV2Request struct {
	XMLName  xml.Name      `xml:"IntlRateV2Request"`
	UserID   string        `xml:"USERID,attr"`
	Revision string        `xml:"Revision"`
	Packages []intlPackage `xml:"Package"`
}

type intlPackage struct {
	ID                    string `xml:"ID,attr"`
	Pounds                string `xml:"Pounds"`
	Ounces                string `xml:"Ounces"`
	Machinable            string `xml:"Machinable"`
	MailType              string `xml:"MailType"`
	ValueOfContents       string `xml:"ValueOfContents,omitempty"`
	Country               string `xml:"Country"`
	Container             string `xml:"Container"`
	Width                 string `xml:"Width"`
	Length                string `xml:"Length"`
	Height                string `xml:"Height"`
	Girth                 string `xml:"Girth"`
	OriginZip             string `xml:"OriginZip"`
	CommercialFlag        string `xml:"CommercialFlag"`
	CommercialPlusFlag    string `xml:"CommercialPlusFlag"`
	DestinationPostalCode string `xml:"DestinationPostalCode,omitempty"`
}

// SerializeRateRequest builds the IntlRateV2Request document. An unknown
// destination country, mail type or container is an error.
func SerializeRateRequest(shipment *shipper.Shipment, opts *RateEstimateOptions, userID string) (string, error) {
	if len(shipment.Packages) == 0 {
		return "", shipper.ErrNoPackages
	}
	country, err := CountryName(shipment.Destination.CountryCode)
	if err != nil {
		return "", err
	}

	doc := intlRateV2Request{UserID: userID, Revision: "2"}
	for i, pkg := range shipment.Packages {
		if pkg.ID == "" {
			return "", fmt.Errorf("package %d has no ID", i)
		}
		po := opts.PackageOptionsFor(pkg)
		if err := po.validate(); err != nil {
			return "", fmt.Errorf("package %q: %w", pkg.ID, err)
		}

		pounds, ounces := shipper.SplitOunces(pkg.WeightOz())
		p := intlPackage{
			ID:                    pkg.ID,
			Pounds:                strconv.Itoa(pounds),
			Ounces:                shipper.FormatDecimal(ounces, 1),
			Machinable:            yesNo(shipper.IsMachinable(pkg), "True", "False"),
			MailType:              string(po.MailType),
			Country:               country,
			Container:             string(po.Container),
			Width:                 shipper.FormatDecimal(pkg.WidthIn(), 2),
			Length:                shipper.FormatDecimal(pkg.LengthIn(), 2),
			Height:                shipper.FormatDecimal(pkg.HeightIn(), 2),
			Girth:                 "0",
			OriginZip:             shipment.Origin.PostalCode,
			CommercialFlag:        yesNo(po.CommercialPricing, "Y", "N"),
			CommercialPlusFlag:    yesNo(po.CommercialPlusPricing, "Y", "N"),
			DestinationPostalCode: shipment.Destination.PostalCode,
		}
		if po.Container == ContainerNonRectangular {
			p.Girth = shipper.FormatDecimal(2*(pkg.WidthIn()+pkg.HeightIn()), 2)
		}
		if po.ValueOfContents != nil {
			p.ValueOfContents = po.ValueOfContents.Decimal()
		}
		doc.Packages = append(doc.Packages, p)
	}

	out, err := xml.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}
	return string(out), nil
}

func yesNo(b bool, yes, no string) string {
	if b {
		return yes
	}
	return no
}
