package canadapost

import (
	"fmt"

	"github.com/tournevent/carrierkit/pkg/shipper"
)

// QuoteType selects contract or counter pricing.
type QuoteType string

const (
	QuoteCommercial QuoteType = "commercial"
	QuoteCounter    QuoteType = "counter"
)

// Option codes accepted by the rating API.
const (
	OptionSignature            = "SO"
	OptionCoverage             = "COV"
	OptionProofOfAge18         = "PA18"
	OptionProofOfAge19         = "PA19"
	OptionCardForPickup        = "HFP"
	OptionDoNotSafeDrop        = "DNS"
	OptionLeaveAtDoor          = "LAD"
	OptionDeliveryConfirmation = "DC"
)

var optionCodes = map[string]bool{
	OptionSignature:            true,
	OptionCoverage:             true,
	OptionProofOfAge18:         true,
	OptionProofOfAge19:         true,
	OptionCardForPickup:        true,
	OptionDoNotSafeDrop:        true,
	OptionLeaveAtDoor:          true,
	OptionDeliveryConfirmation: true,
}

// PackageOptions configure the quote for one parcel.
type PackageOptions struct {
	shipper.PackageOptions[shipper.ItemOptions]

	// ShippingMethod restricts the quote to one service.
	ShippingMethod *shipper.ShippingMethod
	Options        []string
	// Coverage is the declared value for the COV option.
	Coverage    *shipper.Money
	Unpackaged  bool
	MailingTube bool
}

// DefaultPackageOptions quotes every service without options.
func DefaultPackageOptions() *PackageOptions {
	return &PackageOptions{
		PackageOptions: shipper.PackageOptions[shipper.ItemOptions]{
			Items: shipper.NewOptionSet[shipper.ItemOptions](nil, func() shipper.ItemOptions { return shipper.ItemOptions{} }),
		},
	}
}

// NewPackageOptions returns default options for packageID.
func NewPackageOptions(packageID string) *PackageOptions {
	o := DefaultPackageOptions()
	o.PackageID = packageID
	return o
}

func (o *PackageOptions) validate() error {
	for _, code := range o.Options {
		if !optionCodes[code] {
			return fmt.Errorf("%w: canada post option %q", shipper.ErrUnknownCode, code)
		}
	}
	if o.ShippingMethod != nil {
		if _, ok := ShippingMethods.ByCode(o.ShippingMethod.ServiceCode); !ok {
			return fmt.Errorf("%w: canada post service %q", shipper.ErrUnknownCode, o.ShippingMethod.ServiceCode)
		}
	}
	return nil
}

// RatesOptions is the options tree for mailing scenario quotes.
type RatesOptions struct {
	shipper.ShipmentOptions[*PackageOptions]

	// CustomerNumber is the mailed-by customer. Commercial quotes need it.
	CustomerNumber string
	ContractID     string
	PromoCode      string
	QuoteType      QuoteType
}

// NewRatesOptions builds a counter quote options tree.
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
		QuoteType: QuoteCounter,
	}
}

func (o *RatesOptions) validate() error {
	switch o.QuoteType {
	case QuoteCounter:
		if o.ContractID != "" {
			return fmt.Errorf("canada post counter quotes cannot carry a contract id")
		}
	case QuoteCommercial:
		if o.CustomerNumber == "" {
			return fmt.Errorf("canada post commercial quotes need a customer number")
		}
	default:
		return fmt.Errorf("%w: canada post quote type %q", shipper.ErrUnknownCode, string(o.QuoteType))
	}
	return nil
}
