package uspsship

import (
	"errors"
	"fmt"

	"github.com/tournevent/carrierkit/pkg/shipper"
)

// ErrMissingShippingMethod is returned when a label is requested for a
// package without a shipping method.
var ErrMissingShippingMethod = errors.New("shipping method required")

// PriceType selects the price list.
type PriceType string

const (
	PriceRetail     PriceType = "RETAIL"
	PriceCommercial PriceType = "COMMERCIAL"
	PriceContract   PriceType = "CONTRACT"
)

// ProcessingCategory is the USPS handling category of a mail piece.
type ProcessingCategory string

const (
	ProcessingLetters       ProcessingCategory = "LETTERS"
	ProcessingFlats         ProcessingCategory = "FLATS"
	ProcessingMachinable    ProcessingCategory = "MACHINABLE"
	ProcessingIrregular     ProcessingCategory = "IRREGULAR"
	ProcessingNonMachinable ProcessingCategory = "NON_MACHINABLE"
)

// ImageType is the label image format.
type ImageType string

const (
	ImagePDF  ImageType = "PDF"
	ImageTIFF ImageType = "TIFF"
	ImageZPL  ImageType = "ZPL203DPI"
	ImageNone ImageType = "NONE"
)

var imageTypes = map[shipper.LabelFormat]ImageType{
	shipper.LabelPDF: ImagePDF,
	shipper.LabelTIF: ImageTIFF,
	shipper.LabelZPL: ImageZPL,
}

// PackageOptions configure a single package for prices and labels.
type PackageOptions struct {
	shipper.PackageOptions[shipper.ItemOptions]

	// ShippingMethod restricts quotes to one mail class. Labels require it.
	ShippingMethod *shipper.ShippingMethod
	PriceType      PriceType
	// ProcessingCategory is derived from the package size when empty.
	ProcessingCategory           ProcessingCategory
	RateIndicator                string
	DestinationEntryFacilityType string
	AccountType                  string
	AccountNumber                string
}

// DefaultPackageOptions returns retail single-piece pricing for all mail
// classes.
func DefaultPackageOptions() *PackageOptions {
	return &PackageOptions{
		PackageOptions: shipper.PackageOptions[shipper.ItemOptions]{
			Items: shipper.NewOptionSet[shipper.ItemOptions](nil, func() shipper.ItemOptions { return shipper.ItemOptions{} }),
		},
		PriceType:                    PriceRetail,
		RateIndicator:                "SP",
		DestinationEntryFacilityType: "NONE",
	}
}

// NewPackageOptions returns default options for packageID.
func NewPackageOptions(packageID string) *PackageOptions {
	o := DefaultPackageOptions()
	o.PackageID = packageID
	return o
}

func (o *PackageOptions) validate() error {
	switch o.PriceType {
	case PriceRetail, PriceCommercial, PriceContract:
	default:
		return fmt.Errorf("%w: usps price type %q", shipper.ErrUnknownCode, string(o.PriceType))
	}
	switch o.ProcessingCategory {
	case "", ProcessingLetters, ProcessingFlats, ProcessingMachinable, ProcessingIrregular, ProcessingNonMachinable:
	default:
		return fmt.Errorf("%w: usps processing category %q", shipper.ErrUnknownCode, string(o.ProcessingCategory))
	}
	if o.ShippingMethod != nil {
		if _, ok := ShippingMethods.ByCode(o.ShippingMethod.ServiceCode); !ok {
			return fmt.Errorf("%w: usps mail class %q", shipper.ErrUnknownCode, o.ShippingMethod.ServiceCode)
		}
	}
	return nil
}

// mailClasses returns the mail classes to quote.
func (o *PackageOptions) mailClasses() []string {
	if o.ShippingMethod == nil {
		return []string{MailClassAllOutbound}
	}
	return []string{o.ShippingMethod.ServiceCode}
}

// processingCategory returns the category to send for pkg. MACHINABLE and
// NON_MACHINABLE follow the package's measurements whatever was requested;
// other categories are sent as given.
func (o *PackageOptions) processingCategory(pkg shipper.Package) ProcessingCategory {
	switch o.ProcessingCategory {
	case "", ProcessingMachinable, ProcessingNonMachinable:
		if shipper.IsMachinable(pkg) {
			return ProcessingMachinable
		}
		return ProcessingNonMachinable
	}
	return o.ProcessingCategory
}

// RatesOptions is the options tree for v3 price and label requests.
type RatesOptions struct {
	shipper.ShipmentOptions[*PackageOptions]
}

// NewRatesOptions builds an options tree with default package options.
func NewRatesOptions(packages ...*PackageOptions) *RatesOptions {
	return NewRatesOptionsWithDefaults(DefaultPackageOptions, packages...)
}

// NewRatesOptionsWithDefaults uses defaults for packages without explicit
// options.
func NewRatesOptionsWithDefaults(defaults func() *PackageOptions, packages ...*PackageOptions) *RatesOptions {
	return &RatesOptions{
		ShipmentOptions: shipper.ShipmentOptions[*PackageOptions]{
			Packages: shipper.NewOptionSet(packages, defaults),
		},
	}
}

// LabelOptions add image settings to the options tree.
type LabelOptions struct {
	RatesOptions

	Format    shipper.LabelFormat
	LabelType string
}

// NewLabelOptions returns 4x6 PDF label options.
func NewLabelOptions(packages ...*PackageOptions) *LabelOptions {
	return &LabelOptions{
		RatesOptions: *NewRatesOptions(packages...),
		Format:       shipper.LabelPDF,
		LabelType:    "4X6LABEL",
	}
}

func (o *LabelOptions) imageType() (ImageType, error) {
	t, ok := imageTypes[o.Format]
	if !ok {
		return "", fmt.Errorf("%w: usps label format %q", shipper.ErrUnknownCode, string(o.Format))
	}
	return t, nil
}
