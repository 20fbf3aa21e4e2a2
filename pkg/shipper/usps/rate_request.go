package usps

import (
	"encoding/xml"
	"fmt"
	"strconv"

	"github.com/tournevent/carrierkit/pkg/shipper"
)

type rateV4Request struct {
	XMLName  xml.Name        `xml:"RateV4Request"`
	UserID   string          `xml:"USERID,attr"`
	Revision string          `xml:"Revision"`
	Packages []rateV4Package `xml:"Package"`
}

type rateV4Package struct {
	ID                 string `xml:"ID,attr"`
	Service            string `xml:"Service"`
	FirstClassMailType string `xml:"FirstClassMailType,omitempty"`
	ZipOrigination     string `xml:"ZipOrigination"`
	ZipDestination     string `xml:"ZipDestination"`
	Pounds             string `xml:"Pounds"`
	Ounces             string `xml:"Ounces"`
	Container          string `xml:"Container"`
	Width              string `xml:"Width,omitempty"`
	Length             string `xml:"Length,omitempty"`
	Height             string `xml:"Height,omitempty"`
	Girth              string `xml:"Girth,omitempty"`
	Machinable         bool   `xml:"Machinable"`
}

// SerializeRateRequest builds the RateV4Request document for a shipment.
// Unknown service, container or mail type codes fail before any request is
// made.
func SerializeRateRequest(shipment *shipper.Shipment, opts *RateEstimateOptions, userID string) (string, error) {
	if len(shipment.Packages) == 0 {
		return "", shipper.ErrNoPackages
	}

	doc := rateV4Request{UserID: userID, Revision: "2"}
	for i, pkg := range shipment.Packages {
		if pkg.ID == "" {
			return "", fmt.Errorf("package %d has no ID", i)
		}
		p, err := serializePackage(shipment, pkg, opts.PackageOptionsFor(pkg))
		if err != nil {
			return "", fmt.Errorf("package %q: %w", pkg.ID, err)
		}
		doc.Packages = append(doc.Packages, p)
	}

	out, err := xml.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}
	return string(out), nil
}

func serializePackage(shipment *shipper.Shipment, pkg shipper.Package, opts *RateEstimatePackageOptions) (rateV4Package, error) {
	service, err := opts.ServiceCode()
	if err != nil {
		return rateV4Package{}, err
	}
	if _, err := opts.Container.BoxName(); err != nil {
		return rateV4Package{}, err
	}

	pounds, ounces := shipper.SplitOunces(pkg.WeightOz())
	p := rateV4Package{
		ID:             pkg.ID,
		Service:        service,
		ZipOrigination: zip5(shipment.Origin.PostalCode),
		ZipDestination: zip5(shipment.Destination.PostalCode),
		Pounds:         strconv.Itoa(pounds),
		Ounces:         shipper.FormatDecimal(ounces, 1),
		Container:      string(opts.Container),
		Width:          optionalDecimal(pkg.WidthIn(), 2),
		Length:         optionalDecimal(pkg.LengthIn(), 2),
		Height:         optionalDecimal(pkg.HeightIn(), 2),
		Machinable:     opts.machinable(pkg),
	}

	if service == ServiceFirstClass {
		if err := opts.FirstClassMailType.validate(); err != nil {
			return rateV4Package{}, err
		}
		p.FirstClassMailType = string(opts.FirstClassMailType)
	}
	if !opts.Rectangular {
		p.Girth = optionalDecimal(2*(pkg.WidthIn()+pkg.HeightIn()), 2)
	}
	return p, nil
}

// optionalDecimal is shipper.FormatDecimal, but empty for zero so the
// element is omitted.
func optionalDecimal(v float64, places int) string {
	if shipper.Round(v, places) == 0 {
		return ""
	}
	return shipper.FormatDecimal(v, places)
}

func zip5(zip string) string {
	if len(zip) > 5 {
		return zip[:5]
	}
	return zip
}
