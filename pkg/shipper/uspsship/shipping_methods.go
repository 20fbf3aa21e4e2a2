package uspsship

import "github.com/tournevent/carrierkit/pkg/shipper"

// Mail classes accepted by the v3 prices, service standards and labels APIs.
const (
	MailClassPriorityExpress = "PRIORITY_MAIL_EXPRESS"
	MailClassPriority        = "PRIORITY_MAIL"
	MailClassGroundAdvantage = "USPS_GROUND_ADVANTAGE"
	MailClassParcelSelect    = "PARCEL_SELECT"
	MailClassMedia           = "MEDIA_MAIL"
	MailClassLibrary         = "LIBRARY_MAIL"
	MailClassBoundPrinted    = "BOUND_PRINTED_MATTER"
	MailClassConnectLocal    = "USPS_CONNECT_LOCAL"
	MailClassAllOutbound     = "ALL_OUTBOUND"
	mailClassPriorityLegacy  = "PRIORITY"
	mailClassFirstClassPkg   = "FIRST-CLASS_PACKAGE_SERVICE"
)

// ShippingMethods is the domestic v3 catalog, keyed by mail class.
var ShippingMethods = shipper.NewCatalog(
	shipper.ShippingMethod{Name: "Priority Mail Express", ServiceCode: MailClassPriorityExpress, Domestic: true, MultiPackage: true, OriginCountries: []string{"US"}},
	shipper.ShippingMethod{Name: "Priority Mail", ServiceCode: MailClassPriority, Domestic: true, MultiPackage: true, OriginCountries: []string{"US"}},
	shipper.ShippingMethod{Name: "Ground Advantage", ServiceCode: MailClassGroundAdvantage, Domestic: true, MultiPackage: true, OriginCountries: []string{"US"}},
	shipper.ShippingMethod{Name: "Parcel Select", ServiceCode: MailClassParcelSelect, Domestic: true, MultiPackage: true, OriginCountries: []string{"US"}},
	shipper.ShippingMethod{Name: "Media Mail", ServiceCode: MailClassMedia, Domestic: true, MultiPackage: true, OriginCountries: []string{"US"}},
	shipper.ShippingMethod{Name: "Library Mail", ServiceCode: MailClassLibrary, Domestic: true, MultiPackage: true, OriginCountries: []string{"US"}},
	shipper.ShippingMethod{Name: "Bound Printed Matter", ServiceCode: MailClassBoundPrinted, Domestic: true, MultiPackage: true, OriginCountries: []string{"US"}},
	shipper.ShippingMethod{Name: "Connect Local", ServiceCode: MailClassConnectLocal, Domestic: true, OriginCountries: []string{"US"}},
)

// mailClassAliases maps older mail class names still returned by some
// endpoints to their current code.
var mailClassAliases = map[string]string{
	mailClassPriorityLegacy: MailClassPriority,
	mailClassFirstClassPkg:  MailClassGroundAdvantage,
}

func resolveMethod(mailClass, description string) shipper.ShippingMethod {
	if current, ok := mailClassAliases[mailClass]; ok {
		mailClass = current
	}
	return ShippingMethods.Resolve(mailClass, description)
}
