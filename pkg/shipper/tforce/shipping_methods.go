package tforce

import "github.com/tournevent/carrierkit/pkg/shipper"

// Service codes.
const (
	ServiceLTL               = "308"
	ServiceLTLGuaranteed     = "309"
	ServiceLTLGuaranteedAM   = "334"
	ServiceLTLGuaranteedExcl = "349"
	ServiceStandardLTL       = "312"
)

// ShippingMethods is the TForce Freight LTL catalog.
var ShippingMethods = shipper.NewCatalog(
	shipper.ShippingMethod{Name: "TForce Freight LTL", ServiceCode: ServiceLTL, Domestic: true, International: true, MultiPackage: true, OriginCountries: []string{"US", "CA", "MX"}},
	shipper.ShippingMethod{Name: "TForce Freight LTL - Guaranteed", ServiceCode: ServiceLTLGuaranteed, Domestic: true, International: true, MultiPackage: true, OriginCountries: []string{"US", "CA", "MX"}},
	shipper.ShippingMethod{Name: "TForce Freight LTL - Guaranteed A.M.", ServiceCode: ServiceLTLGuaranteedAM, Domestic: true, International: true, MultiPackage: true, OriginCountries: []string{"US", "CA", "MX"}},
	shipper.ShippingMethod{Name: "TForce Freight LTL - Guaranteed Exclusive", ServiceCode: ServiceLTLGuaranteedExcl, Domestic: true, International: true, MultiPackage: true, OriginCountries: []string{"US", "CA", "MX"}},
	shipper.ShippingMethod{Name: "TForce Standard LTL", ServiceCode: ServiceStandardLTL, Domestic: true, International: true, MultiPackage: true, OriginCountries: []string{"US", "CA", "MX"}},
)

var guaranteedServices = map[string]bool{
	ServiceLTLGuaranteed:     true,
	ServiceLTLGuaranteedAM:   true,
	ServiceLTLGuaranteedExcl: true,
}
