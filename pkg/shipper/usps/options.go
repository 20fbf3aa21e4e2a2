package usps

import (
	"fmt"
	"strings"

	"github.com/tournevent/carrierkit/pkg/shipper"
)

// Container is a RateV4 <Container> value.
type Container string

const (
	ContainerVariable              Container = "VARIABLE"
	ContainerRectangular           Container = "RECTANGULAR"
	ContainerNonRectangular        Container = "NONRECTANGULAR"
	ContainerFlatRateEnvelope      Container = "FLAT RATE ENVELOPE"
	ContainerPaddedFlatRateEnv     Container = "PADDED FLAT RATE ENVELOPE"
	ContainerLegalFlatRateEnvelope Container = "LEGAL FLAT RATE ENVELOPE"
	ContainerSmallFlatRateEnvelope Container = "SM FLAT RATE ENVELOPE"
	ContainerSmallFlatRateBox      Container = "SM FLAT RATE BOX"
	ContainerMediumFlatRateBox     Container = "MD FLAT RATE BOX"
	ContainerLargeFlatRateBox      Container = "LG FLAT RATE BOX"
)

// boxNames maps each container to the box name USPS prints in <MailService>.
var boxNames = map[Container]string{
	ContainerVariable:              "variable",
	ContainerRectangular:           "variable",
	ContainerNonRectangular:        "variable",
	ContainerFlatRateEnvelope:      "flat rate envelope",
	ContainerPaddedFlatRateEnv:     "padded flat rate envelope",
	ContainerLegalFlatRateEnvelope: "legal flat rate envelope",
	ContainerSmallFlatRateEnvelope: "small flat rate envelope",
	ContainerSmallFlatRateBox:      "small flat rate box",
	ContainerMediumFlatRateBox:     "medium flat rate box",
	ContainerLargeFlatRateBox:      "large flat rate box",
}

// BoxName returns the box name for the container.
func (c Container) BoxName() (string, error) {
	name, ok := boxNames[c]
	if !ok {
		return "", fmt.Errorf("%w: usps container %q", shipper.ErrUnknownCode, string(c))
	}
	return name, nil
}

// FirstClassMailType is a RateV4 <FirstClassMailType> value.
type FirstClassMailType string

const (
	FirstClassLetter   FirstClassMailType = "LETTER"
	FirstClassFlat     FirstClassMailType = "FLAT"
	FirstClassParcel   FirstClassMailType = "PARCEL"
	FirstClassPostcard FirstClassMailType = "POSTCARD"
)

func (t FirstClassMailType) validate() error {
	switch t {
	case FirstClassLetter, FirstClassFlat, FirstClassParcel, FirstClassPostcard:
		return nil
	}
	return fmt.Errorf("%w: usps first class mail type %q", shipper.ErrUnknownCode, string(t))
}

// RateEstimatePackageOptions configure a single package.
type RateEstimatePackageOptions struct {
	shipper.PackageOptions[shipper.ItemOptions]

	// ShippingMethod restricts the quote to one service; empty quotes all.
	ShippingMethod     *shipper.ShippingMethod
	Container          Container
	FirstClassMailType FirstClassMailType
	Rectangular        bool
	CommercialPricing  bool
	HoldForPickup      bool
	// Machinable overrides the flag derived from the package measurements.
	Machinable         *bool
}

// DefaultPackageOptions returns options for a variable, rectangular package
// quoted at retail prices for every service.
func DefaultPackageOptions() *RateEstimatePackageOptions {
	return &RateEstimatePackageOptions{
		PackageOptions: shipper.PackageOptions[shipper.ItemOptions]{
			Items: shipper.NewOptionSet[shipper.ItemOptions](nil, func() shipper.ItemOptions { return shipper.ItemOptions{} }),
		},
		Container:          ContainerVariable,
		FirstClassMailType: FirstClassParcel,
		Rectangular:        true,
	}
}

// NewPackageOptions returns default options for packageID.
func NewPackageOptions(packageID string) *RateEstimatePackageOptions {
	o := DefaultPackageOptions()
	o.PackageID = packageID
	return o
}

// ServiceCode returns the <Service> value for the package.
func (o *RateEstimatePackageOptions) ServiceCode() (string, error) {
	if o.ShippingMethod == nil || o.ShippingMethod.ServiceCode == "" {
		return ServiceAll, nil
	}
	code := strings.ToUpper(o.ShippingMethod.ServiceCode)
	if !requestableServices[code] {
		return "", fmt.Errorf("%w: usps service %q", shipper.ErrUnknownCode, o.ShippingMethod.ServiceCode)
	}
	return code, nil
}

// RateEstimateOptions is the options tree for a RateV4 quote.
type RateEstimateOptions struct {
	shipper.ShipmentOptions[*RateEstimatePackageOptions]
}

// NewRateEstimateOptions builds an options tree. Packages without explicit
// options are quoted with defaults.
func NewRateEstimateOptions(packages ...*RateEstimatePackageOptions) *RateEstimateOptions {
	return NewRateEstimateOptionsWithDefaults(DefaultPackageOptions, packages...)
}

// NewRateEstimateOptionsWithDefaults is like NewRateEstimateOptions with a
// custom default factory for packages.
func NewRateEstimateOptionsWithDefaults(defaults func() *RateEstimatePackageOptions, packages ...*RateEstimatePackageOptions) *RateEstimateOptions {
	return &RateEstimateOptions{
		ShipmentOptions: shipper.ShipmentOptions[*RateEstimatePackageOptions]{
			Packages: shipper.NewOptionSet(packages, defaults),
		},
	}
}

func (o *RateEstimatePackageOptions) machinable(pkg shipper.Package) bool {
	if o.Machinable != nil {
		return *o.Machinable
	}
	return shipper.IsMachinable(pkg)
}
