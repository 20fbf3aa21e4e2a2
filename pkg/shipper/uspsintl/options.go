package uspsintl

import (
	"fmt"

	"github.com/tournevent/carrierkit/pkg/shipper"
)

// MailType is an IntlRateV2 <MailType> value.
type MailType string

const (
	MailTypeAll           MailType = "ALL"
	MailTypePackage       MailType = "PACKAGE"
	MailTypeEnvelope      MailType = "ENVELOPE"
	MailTypeLetter        MailType = "LETTER"
	MailTypeLargeEnvelope MailType = "LARGEENVELOPE"
	MailTypeFlatRate      MailType = "FLATRATE"
	MailTypePostcards     MailType = "POSTCARDS"
)

// Container is an IntlRateV2 <Container> value.
type Container string

const (
	ContainerRectangular    Container = "RECTANGULAR"
	ContainerNonRectangular Container = "NONRECTANGULAR"
	ContainerVariable       Container = "VARIABLE"
)

// PackageOptions configure a single international package.
type PackageOptions struct {
	shipper.PackageOptions[shipper.ItemOptions]

	// ShippingMethod keeps only rates for this method when set.
	ShippingMethod        *shipper.ShippingMethod
	MailType              MailType
	Container             Container
	CommercialPricing     bool
	CommercialPlusPricing bool
	ValueOfContents       *shipper.Money
}

func (o *PackageOptions) validate() error {
	switch o.MailType {
	case MailTypeAll, MailTypePackage, MailTypeEnvelope, MailTypeLetter,
		MailTypeLargeEnvelope, MailTypeFlatRate, MailTypePostcards:
	default:
		return fmt.Errorf("%w: usps mail type %q", shipper.ErrUnknownCode, string(o.MailType))
	}
	switch o.Container {
	case ContainerRectangular, ContainerNonRectangular, ContainerVariable:
	default:
		return fmt.Errorf("%w: usps international container %q", shipper.ErrUnknownCode, string(o.Container))
	}
	return nil
}

// DefaultPackageOptions returns retail pricing for a rectangular parcel of
// any mail type.
func DefaultPackageOptions() *PackageOptions {
	return &PackageOptions{
		PackageOptions: shipper.PackageOptions[shipper.ItemOptions]{
			Items: shipper.NewOptionSet[shipper.ItemOptions](nil, func() shipper.ItemOptions { return shipper.ItemOptions{} }),
		},
		MailType:  MailTypeAll,
		Container: ContainerRectangular,
	}
}

// NewPackageOptions returns default options for packageID.
func NewPackageOptions(packageID string) *PackageOptions {
	o := DefaultPackageOptions()
	o.PackageID = packageID
	return o
}

// RateEstimateOptions is the options tree for an IntlRateV2 quote.
type RateEstimateOptions struct {
	shipper.ShipmentOptions[*PackageOptions]
}

// NewRateEstimateOptions builds an options tree with default package options.
func NewRateEstimateOptions(packages ...*PackageOptions) *RateEstimateOptions {
	return NewRateEstimateOptionsWithDefaults(DefaultPackageOptions, packages...)
}

// NewRateEstimateOptionsWithDefaults uses defaults for packages without
// explicit options.
func NewRateEstimateOptionsWithDefaults(defaults func() *PackageOptions, packages ...*PackageOptions) *RateEstimateOptions {
	return &RateEstimateOptions{
		ShipmentOptions: shipper.ShipmentOptions[*PackageOptions]{
			Packages: shipper.NewOptionSet(packages, defaults),
		},
	}
}
