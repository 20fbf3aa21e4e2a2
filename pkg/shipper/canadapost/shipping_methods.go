package canadapost

import "github.com/tournevent/carrierkit/pkg/shipper"

// Service codes.
const (
	ServiceRegularParcel       = "DOM.RP"
	ServiceExpeditedParcel     = "DOM.EP"
	ServiceXpresspost          = "DOM.XP"
	ServicePriority            = "DOM.PC"
	ServiceLibraryMaterials    = "DOM.LIB"
	ServiceExpeditedParcelUSA  = "USA.EP"
	ServiceSmallPacketUSAAir   = "USA.SP.AIR"
	ServiceTrackedPacketUSA    = "USA.TP"
	ServiceXpresspostUSA       = "USA.XP"
	ServiceXpresspostIntl      = "INT.XP"
	ServiceIntlParcelAir       = "INT.IP.AIR"
	ServiceIntlParcelSurface   = "INT.IP.SURF"
	ServiceSmallPacketIntlAir  = "INT.SP.AIR"
	ServiceTrackedPacketIntl   = "INT.TP"
	ServiceSmallPacketIntlSurf = "INT.SP.SURF"
)

var canada = []string{"CA"}

// ShippingMethods is the Canada Post catalog.
var ShippingMethods = shipper.NewCatalog(
	shipper.ShippingMethod{Name: "Regular Parcel", ServiceCode: ServiceRegularParcel, Domestic: true, MultiPackage: true, OriginCountries: canada},
	shipper.ShippingMethod{Name: "Expedited Parcel", ServiceCode: ServiceExpeditedParcel, Domestic: true, MultiPackage: true, OriginCountries: canada},
	shipper.ShippingMethod{Name: "Xpresspost", ServiceCode: ServiceXpresspost, Domestic: true, MultiPackage: true, OriginCountries: canada},
	shipper.ShippingMethod{Name: "Priority", ServiceCode: ServicePriority, Domestic: true, MultiPackage: true, OriginCountries: canada},
	shipper.ShippingMethod{Name: "Library Materials", ServiceCode: ServiceLibraryMaterials, Domestic: true, OriginCountries: canada},
	shipper.ShippingMethod{Name: "Expedited Parcel USA", ServiceCode: ServiceExpeditedParcelUSA, International: true, MultiPackage: true, OriginCountries: canada},
	shipper.ShippingMethod{Name: "Small Packet USA Air", ServiceCode: ServiceSmallPacketUSAAir, International: true, OriginCountries: canada},
	shipper.ShippingMethod{Name: "Tracked Packet USA", ServiceCode: ServiceTrackedPacketUSA, International: true, OriginCountries: canada},
	shipper.ShippingMethod{Name: "Xpresspost USA", ServiceCode: ServiceXpresspostUSA, International: true, MultiPackage: true, OriginCountries: canada},
	shipper.ShippingMethod{Name: "Xpresspost International", ServiceCode: ServiceXpresspostIntl, International: true, MultiPackage: true, OriginCountries: canada},
	shipper.ShippingMethod{Name: "International Parcel Air", ServiceCode: ServiceIntlParcelAir, International: true, MultiPackage: true, OriginCountries: canada},
	shipper.ShippingMethod{Name: "International Parcel Surface", ServiceCode: ServiceIntlParcelSurface, International: true, MultiPackage: true, OriginCountries: canada},
	shipper.ShippingMethod{Name: "Small Packet International Air", ServiceCode: ServiceSmallPacketIntlAir, International: true, OriginCountries: canada},
	shipper.ShippingMethod{Name: "Tracked Packet International", ServiceCode: ServiceTrackedPacketIntl, International: true, OriginCountries: canada},
	shipper.ShippingMethod{Name: "Small Packet International Surface", ServiceCode: ServiceSmallPacketIntlSurf, International: true, OriginCountries: canada},
)
