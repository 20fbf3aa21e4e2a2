package uspsintl

import "github.com/tournevent/carrierkit/pkg/shipper"

// Service IDs of the main international services.
const (
	ServicePriorityExpressIntl = "1"
	ServicePriorityIntl        = "2"
	ServiceGlobalExpress       = "4"
	ServiceFirstClassLetter    = "13"
	ServiceFirstClassLargeEnv  = "14"
	ServiceFirstClassPackage   = "15"
)

// ShippingMethods is the USPS international catalog, keyed by service ID.
var ShippingMethods = shipper.NewCatalog(
	shipper.ShippingMethod{Name: "Priority Mail Express International", ServiceCode: ServicePriorityExpressIntl, International: true, OriginCountries: []string{"US"}},
	shipper.ShippingMethod{Name: "Priority Mail International", ServiceCode: ServicePriorityIntl, International: true, OriginCountries: []string{"US"}},
	shipper.ShippingMethod{Name: "Global Express Guaranteed", ServiceCode: ServiceGlobalExpress, International: true, OriginCountries: []string{"US"}},
	shipper.ShippingMethod{Name: "First-Class Mail International Letter", ServiceCode: ServiceFirstClassLetter, International: true, OriginCountries: []string{"US"}},
	shipper.ShippingMethod{Name: "First-Class Mail International Large Envelope", ServiceCode: ServiceFirstClassLargeEnv, International: true, OriginCountries: []string{"US"}},
	shipper.ShippingMethod{Name: "First-Class Package International Service", ServiceCode: ServiceFirstClassPackage, International: true, OriginCountries: []string{"US"}},
)

// serviceVariants maps flat rate and packaging variants to their base service.
var serviceVariants = map[string]string{
	"5":  ServiceGlobalExpress,
	"6":  ServiceGlobalExpress,
	"7":  ServiceGlobalExpress,
	"8":  ServicePriorityIntl,
	"9":  ServicePriorityIntl,
	"10": ServicePriorityExpressIntl,
	"11": ServicePriorityIntl,
	"12": ServiceGlobalExpress,
	"16": ServicePriorityIntl,
	"17": ServicePriorityExpressIntl,
	"20": ServicePriorityIntl,
	"22": ServicePriorityIntl,
	"23": ServicePriorityIntl,
	"24": ServicePriorityIntl,
	"25": ServicePriorityIntl,
	"26": ServicePriorityExpressIntl,
	"27": ServicePriorityExpressIntl,
	"28": ServicePriorityIntl,
	"29": ServicePriorityIntl,
}

func resolveMethod(serviceID, description string) shipper.ShippingMethod {
	code := serviceID
	if base, ok := serviceVariants[serviceID]; ok {
		code = base
	}
	return ShippingMethods.Resolve(code, description)
}
