package usps

import "github.com/tournevent/carrierkit/pkg/shipper"

// Service codes accepted by the RateV4 <Service> element.
const (
	ServiceAll             = "ALL"
	ServiceOnline          = "ONLINE"
	ServicePriority        = "PRIORITY"
	ServicePriorityExpress = "PRIORITY MAIL EXPRESS"
	ServiceFirstClass      = "FIRST CLASS"
	ServiceGroundAdvantage = "USPS GROUND ADVANTAGE"
	ServiceMedia           = "MEDIA"
	ServiceLibrary         = "LIBRARY"
)

// ShippingMethods is the USPS domestic catalog.
var ShippingMethods = shipper.NewCatalog(
	shipper.ShippingMethod{Name: "First-Class", ServiceCode: ServiceFirstClass, Domestic: true, OriginCountries: []string{"US"}},
	shipper.ShippingMethod{Name: "Ground Advantage", ServiceCode: ServiceGroundAdvantage, Domestic: true, OriginCountries: []string{"US"}},
	shipper.ShippingMethod{Name: "Library Mail", ServiceCode: ServiceLibrary, Domestic: true, OriginCountries: []string{"US"}},
	shipper.ShippingMethod{Name: "Media Mail", ServiceCode: ServiceMedia, Domestic: true, OriginCountries: []string{"US"}},
	shipper.ShippingMethod{Name: "Priority Mail", ServiceCode: ServicePriority, Domestic: true, OriginCountries: []string{"US"}},
	shipper.ShippingMethod{Name: "Priority Mail Express", ServiceCode: ServicePriorityExpress, Domestic: true, OriginCountries: []string{"US"}},
)

// classIDs maps the CLASSID attribute of <Postage> to a catalog service code.
// Flat rate and hold-for-pickup variants share the code of their base service.
var classIDs = map[string]string{
	"0":    ServiceFirstClass,
	"1":    ServicePriority,
	"2":    ServicePriorityExpress,
	"3":    ServicePriorityExpress,
	"6":    ServiceMedia,
	"7":    ServiceLibrary,
	"13":   ServicePriorityExpress,
	"16":   ServicePriority,
	"17":   ServicePriority,
	"22":   ServicePriority,
	"27":   ServicePriorityExpress,
	"28":   ServicePriority,
	"29":   ServicePriority,
	"30":   ServicePriorityExpress,
	"38":   ServicePriority,
	"40":   ServicePriority,
	"42":   ServicePriority,
	"44":   ServicePriority,
	"53":   ServiceFirstClass,
	"62":   ServicePriorityExpress,
	"63":   ServicePriorityExpress,
	"1058": ServiceGroundAdvantage,
	"1096": ServiceGroundAdvantage,
}

// requestableServices lists every accepted <Service> value.
var requestableServices = map[string]bool{
	ServiceAll:             true,
	ServiceOnline:          true,
	ServicePriority:        true,
	ServicePriorityExpress: true,
	ServiceFirstClass:      true,
	ServiceGroundAdvantage: true,
	ServiceMedia:           true,
	ServiceLibrary:         true,
}
