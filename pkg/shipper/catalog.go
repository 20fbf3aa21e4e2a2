package shipper

import (
	"slices"
	"strings"
)

// ShippingMethod is a carrier service level.
type ShippingMethod struct {
	Name            string
	ServiceCode     string
	Domestic        bool
	International   bool
	MultiPackage    bool
	OriginCountries []string
}

// ShipsFrom reports whether the method accepts shipments from country. An
// empty OriginCountries list accepts any origin.
func (m ShippingMethod) ShipsFrom(country string) bool {
	if len(m.OriginCountries) == 0 {
		return true
	}
	return slices.Contains(m.OriginCountries, strings.ToUpper(country))
}

// AdHocShippingMethod builds a method for a service the catalog does not know
// about, so the rate is kept instead of dropped.
func AdHocShippingMethod(name, code string) ShippingMethod {
	if name == "" {
		name = code
	}
	return ShippingMethod{Name: name, ServiceCode: code}
}

// Catalog is an ordered, read-only list of a carrier's shipping methods.
// Catalogs are built once at package init and never modified.
type Catalog struct {
	methods []ShippingMethod
}

// NewCatalog builds a catalog. The slice is copied.
func NewCatalog(methods ...ShippingMethod) Catalog {
	return Catalog{methods: slices.Clone(methods)}
}

// All returns a copy of every method in catalog order.
func (c Catalog) All() []ShippingMethod {
	return slices.Clone(c.methods)
}

// Len returns the number of methods.
func (c Catalog) Len() int {
	return len(c.methods)
}

// ByCode returns the method with the exact service code.
func (c Catalog) ByCode(code string) (ShippingMethod, bool) {
	for _, m := range c.methods {
		if m.ServiceCode == code {
			return m, true
		}
	}
	return ShippingMethod{}, false
}

// ByName returns the method whose name is contained in name, ignoring case.
// The longest matching name wins so "Priority Mail Express" is not taken for
// "Priority Mail"; ties go to the earlier method.
func (c Catalog) ByName(name string) (ShippingMethod, bool) {
	haystack := strings.ToLower(name)

	best := -1
	for i, m := range c.methods {
		if m.Name == "" || !strings.Contains(haystack, strings.ToLower(m.Name)) {
			continue
		}
		if best < 0 || len(m.Name) > len(c.methods[best].Name) {
			best = i
		}
	}
	if best < 0 {
		return ShippingMethod{}, false
	}
	return c.methods[best], true
}

// Resolve looks the method up by code, then by name, and otherwise returns an
// ad-hoc method built from the raw values.
func (c Catalog) Resolve(code, name string) ShippingMethod {
	if code != "" {
		if m, ok := c.ByCode(code); ok {
			return m
		}
	}
	if name != "" {
		if m, ok := c.ByName(name); ok {
			return m
		}
	}
	return AdHocShippingMethod(name, code)
}
