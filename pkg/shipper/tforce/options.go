package tforce

import (
	"fmt"
	"time"

	"github.com/tournevent/carrierkit/pkg/shipper"
)

// Handling unit type codes.
const (
	HandlingUnitPallet = "PLT"
	HandlingUnitSkid   = "SKD"
	HandlingUnitCrate  = "CRT"
	HandlingUnitLoose  = "LOO"
	HandlingUnitOther  = "OTH"
)

var handlingUnitTypes = map[string]bool{
	HandlingUnitPallet: true,
	HandlingUnitSkid:   true,
	HandlingUnitCrate:  true,
	HandlingUnitLoose:  true,
	HandlingUnitOther:  true,
}

// Packaging codes for commodities.
const (
	PackagingBox    = "BOX"
	PackagingBag    = "BAG"
	PackagingBundle = "BDL"
	PackagingCarton = "CTN"
	PackagingDrum   = "DRM"
	PackagingPallet = "PLT"
	PackagingRoll   = "ROL"
	PackagingTube   = "TBE"
)

var packagingCodes = map[string]bool{
	PackagingBox: true, PackagingBag: true, PackagingBundle: true, PackagingCarton: true,
	PackagingDrum: true, PackagingPallet: true, PackagingRoll: true, PackagingTube: true,
}

var freightClasses = map[string]bool{
	"50": true, "55": true, "60": true, "65": true, "70": true, "77.5": true, "85": true,
	"92.5": true, "100": true, "110": true, "125": true, "150": true, "175": true,
	"200": true, "250": true, "300": true, "400": true, "500": true,
}

// Billing codes for the payment section.
const (
	BillingPrepaid    = "10"
	BillingThirdParty = "30"
	BillingFreightCol = "40"
)

// ItemOptions carry the freight classification of a commodity.
type ItemOptions struct {
	shipper.ItemOptions

	FreightClass    string
	NMFCPrimaryCode string
	NMFCSubCode     string
	PackagingCode   string
	Hazardous       bool
}

// DefaultItemOptions returns class 92.5 boxes.
func DefaultItemOptions() *ItemOptions {
	return &ItemOptions{FreightClass: "92.5", PackagingCode: PackagingBox}
}

// NewItemOptions returns default options for itemID.
func NewItemOptions(itemID string) *ItemOptions {
	o := DefaultItemOptions()
	o.ItemID = itemID
	return o
}

func (o *ItemOptions) validate() error {
	if !freightClasses[o.FreightClass] {
		return fmt.Errorf("%w: freight class %q", shipper.ErrUnknownCode, o.FreightClass)
	}
	if !packagingCodes[o.PackagingCode] {
		return fmt.Errorf("%w: packaging code %q", shipper.ErrUnknownCode, o.PackagingCode)
	}
	return nil
}

// PackageOptions hold the item options of a package.
type PackageOptions struct {
	shipper.PackageOptions[*ItemOptions]
}

// NewPackageOptions returns options for packageID whose unlisted items use
// itemDefaults. A nil itemDefaults means DefaultItemOptions.
func NewPackageOptions(packageID string, itemDefaults func() *ItemOptions, items ...*ItemOptions) *PackageOptions {
	if itemDefaults == nil {
		itemDefaults = DefaultItemOptions
	}
	return &PackageOptions{
		PackageOptions: shipper.PackageOptions[*ItemOptions]{
			PackageID: packageID,
			Items:     shipper.NewOptionSet(items, itemDefaults),
		},
	}
}

// commodityOptions returns the options describing pkg as a commodity: those
// of its first item, or the item defaults for a package without items.
func (o *PackageOptions) commodityOptions(pkg shipper.Package) *ItemOptions {
	var first shipper.Item
	if len(pkg.Items) > 0 {
		first = pkg.Items[0]
	}
	return o.ItemOptionsFor(first)
}

// StructureOptions set the handling unit type of a structure.
type StructureOptions struct {
	shipper.StructureOptions[*PackageOptions]

	HandlingUnitType string
}

// NewStructureOptions returns pallet options for structureID whose unlisted
// packages use packageDefaults. A nil packageDefaults means default package
// options.
func NewStructureOptions(structureID string, packageDefaults func() *PackageOptions, packages ...*PackageOptions) *StructureOptions {
	if packageDefaults == nil {
		packageDefaults = func() *PackageOptions { return NewPackageOptions("", nil) }
	}
	return &StructureOptions{
		StructureOptions: shipper.StructureOptions[*PackageOptions]{
			StructureID: structureID,
			Packages:    shipper.NewOptionSet(packages, packageDefaults),
		},
		HandlingUnitType: HandlingUnitPallet,
	}
}

// RatesOptions is the root of a TForce rating options tree.
type RatesOptions struct {
	shipper.FreightShipmentOptions[*StructureOptions]

	// ShippingMethod asks for one service. Empty means the standard LTL
	// service.
	ShippingMethod *shipper.ShippingMethod
	PickupDate     time.Time
	// BillingAddress defaults to the shipment origin.
	BillingAddress  *shipper.Address
	BillingCode     string
	PickupOptions   []string
	DeliveryOptions []string
	DensityEligible bool
	TimeInTransit   bool
	CustomerContext string

	Generators RateRequestGenerators
}

// NewRatesOptions returns prepaid, time in transit rating options. Unlisted
// structures are pallets of default packages.
func NewRatesOptions(pickup time.Time, structures ...*StructureOptions) *RatesOptions {
	return NewRatesOptionsWithDefaults(pickup, func() *StructureOptions { return NewStructureOptions("", nil) }, structures...)
}

// NewRatesOptionsWithDefaults uses structureDefaults for unlisted structures.
func NewRatesOptionsWithDefaults(pickup time.Time, structureDefaults func() *StructureOptions, structures ...*StructureOptions) *RatesOptions {
	return &RatesOptions{
		FreightShipmentOptions: shipper.FreightShipmentOptions[*StructureOptions]{
			Structures: shipper.NewOptionSet(structures, structureDefaults),
		},
		PickupDate:    pickup,
		BillingCode:   BillingPrepaid,
		TimeInTransit: true,
		Generators:    DefaultRateRequestGenerators(),
	}
}

func (o *RatesOptions) serviceCode() (string, error) {
	if o.ShippingMethod == nil {
		return ServiceLTL, nil
	}
	if _, ok := ShippingMethods.ByCode(o.ShippingMethod.ServiceCode); !ok {
		return "", fmt.Errorf("%w: tforce service %q", shipper.ErrUnknownCode, o.ShippingMethod.ServiceCode)
	}
	return o.ShippingMethod.ServiceCode, nil
}
