package shipper

import (
	"math"
	"strconv"
	"time"
)

// WeightUnit represents weight measurement unit.
type WeightUnit string

const (
	WeightKG WeightUnit = "kg"
	WeightG  WeightUnit = "g"
	WeightLB WeightUnit = "lb"
	WeightOZ WeightUnit = "oz"
)

// DimensionUnit represents dimension measurement unit.
type DimensionUnit string

const (
	DimensionCM DimensionUnit = "cm"
	DimensionMM DimensionUnit = "mm"
	DimensionIN DimensionUnit = "in"
)

// LabelFormat represents the format of shipping labels.
type LabelFormat string

const (
	LabelPDF LabelFormat = "pdf"
	LabelPNG LabelFormat = "png"
	LabelZPL LabelFormat = "zpl"
	LabelTIF LabelFormat = "tif"
)

// Carrier describes a shipping carrier and its service catalog.
type Carrier struct {
	Code            string
	Name            string
	ShippingMethods []ShippingMethod
}

// Address represents a shipping address.
type Address struct {
	Name          string `json:"name,omitempty" yaml:"name"`
	Company       string `json:"company,omitempty" yaml:"company"`
	Line1         string `json:"line1,omitempty" yaml:"line1"`
	Line2         string `json:"line2,omitempty" yaml:"line2"`
	City          string `json:"city,omitempty" yaml:"city"`
	ProvinceCode  string `json:"province_code,omitempty" yaml:"province_code"` // e.g., "ON", "NY"
	PostalCode    string `json:"postal_code,omitempty" yaml:"postal_code"`
	CountryCode   string `json:"country_code,omitempty" yaml:"country_code"` // ISO 3166-1 alpha-2
	Phone         string `json:"phone,omitempty" yaml:"phone"`
	Email         string `json:"email,omitempty" yaml:"email"`
	IsResidential bool   `json:"is_residential,omitempty" yaml:"is_residential"`
}

// Domestic reports whether both addresses are in the same country.
func (a Address) Domestic(other Address) bool {
	return countryOrDefault(a.CountryCode) == countryOrDefault(other.CountryCode)
}

func countryOrDefault(code string) string {
	if code == "" {
		return "US"
	}
	return code
}

// Dimensions is a box size with its unit. An empty unit means inches.
type Dimensions struct {
	Length float64       `json:"length" yaml:"length"`
	Width  float64       `json:"width" yaml:"width"`
	Height float64       `json:"height" yaml:"height"`
	Unit   DimensionUnit `json:"unit,omitempty" yaml:"unit"`
}

// Weight is a mass with its unit. An empty unit means pounds.
type Weight struct {
	Value float64    `json:"value" yaml:"value"`
	Unit  WeightUnit `json:"unit,omitempty" yaml:"unit"`
}

// Item is a line item inside a package.
type Item struct {
	ID            string `json:"id" yaml:"id"`
	Description   string `json:"description,omitempty" yaml:"description"`
	Quantity      int    `json:"quantity,omitempty" yaml:"quantity"`
	Weight        Weight `json:"weight" yaml:"weight"`
	SKU           string `json:"sku,omitempty" yaml:"sku"`
	HSCode        string `json:"hs_code,omitempty" yaml:"hs_code"`
	OriginCountry string `json:"origin_country,omitempty" yaml:"origin_country"`
}

// Package represents a package to be shipped.
type Package struct {
	ID          string     `json:"id" yaml:"id"`
	Dimensions  Dimensions `json:"dimensions" yaml:"dimensions"`
	Weight      Weight     `json:"weight" yaml:"weight"`
	Description string     `json:"description,omitempty" yaml:"description"`
	Items       []Item     `json:"items,omitempty" yaml:"items"`
}

// LengthIn returns the length in inches.
func (p Package) LengthIn() float64 { return ToInches(p.Dimensions.Length, p.Dimensions.Unit) }

// WidthIn returns the width in inches.
func (p Package) WidthIn() float64 { return ToInches(p.Dimensions.Width, p.Dimensions.Unit) }

// HeightIn returns the height in inches.
func (p Package) HeightIn() float64 { return ToInches(p.Dimensions.Height, p.Dimensions.Unit) }

// WeightOz returns the weight in ounces.
func (p Package) WeightOz() float64 { return ToOunces(p.Weight.Value, p.Weight.Unit) }

// WeightLb returns the weight in pounds.
func (p Package) WeightLb() float64 { return ToOunces(p.Weight.Value, p.Weight.Unit) / 16 }

// WeightKg returns the weight in kilograms.
func (p Package) WeightKg() float64 { return ToGrams(p.Weight.Value, p.Weight.Unit) / 1000 }

// Structure is a freight handling unit (pallet, skid, crate) holding packages.
type Structure struct {
	ID         string     `json:"id" yaml:"id"`
	Dimensions Dimensions `json:"dimensions" yaml:"dimensions"`
	Weight     Weight     `json:"weight" yaml:"weight"`
	Stackable  bool       `json:"stackable,omitempty" yaml:"stackable"`
	Packages   []Package  `json:"packages,omitempty" yaml:"packages"`
}

// TotalWeightLb returns the structure weight, or the sum of its packages when
// no structure weight is set.
func (s Structure) TotalWeightLb() float64 {
	if s.Weight.Value > 0 {
		return ToOunces(s.Weight.Value, s.Weight.Unit) / 16
	}
	var total float64
	for _, p := range s.Packages {
		total += p.WeightLb()
	}
	return total
}

// Shipment is a set of packages, or structures for freight, moving between
// two addresses.
type Shipment struct {
	ID          string      `json:"id,omitempty" yaml:"id"`
	Origin      Address     `json:"origin" yaml:"origin"`
	Destination Address     `json:"destination" yaml:"destination"`
	Packages    []Package   `json:"packages,omitempty" yaml:"packages"`
	Structures  []Structure `json:"structures,omitempty" yaml:"structures"`
	ShipDate    *time.Time  `json:"ship_date,omitempty" yaml:"ship_date"`
}

// Package returns the package with the given ID.
func (s *Shipment) Package(id string) (Package, bool) {
	for _, p := range s.Packages {
		if p.ID == id {
			return p, true
		}
	}
	return Package{}, false
}

// Label is a purchased shipping label.
type Label struct {
	TrackingNumber string
	ShippingMethod ShippingMethod
	Format         LabelFormat
	Image          []byte
	URL            string
	Postage        *Money
	Data           map[string]any
}

// AccessToken is an OAuth bearer token issued by a carrier.
type AccessToken struct {
	Token     string
	TokenType string
	Scope     string
	ExpiresAt time.Time
}

// Expired reports whether the token is expired at now.
func (t AccessToken) Expired(now time.Time) bool {
	return t.Token == "" || !now.Before(t.ExpiresAt)
}

// AddressValidation is the carrier's verdict on an address.
type AddressValidation struct {
	Original    Address
	Suggested   *Address
	Valid       bool
	Corrections []string
	Warnings    []string
	Data        map[string]any
}

// ============================================================================
// Unit conversion
// ============================================================================

// ToInches converts a length to inches. An empty unit is treated as inches.
func ToInches(v float64, unit DimensionUnit) float64 {
	switch unit {
	case DimensionCM:
		return v / 2.54
	case DimensionMM:
		return v / 25.4
	default:
		return v
	}
}

// ToCentimeters converts a length to centimeters.
func ToCentimeters(v float64, unit DimensionUnit) float64 {
	switch unit {
	case DimensionCM:
		return v
	case DimensionMM:
		return v / 10
	default:
		return v * 2.54
	}
}

// ToOunces converts a weight to ounces. An empty unit is treated as pounds.
func ToOunces(v float64, unit WeightUnit) float64 {
	switch unit {
	case WeightOZ:
		return v
	case WeightKG:
		return v * 1000 / 28.349523125
	case WeightG:
		return v / 28.349523125
	default:
		return v * 16
	}
}

// ToGrams converts a weight to grams.
func ToGrams(v float64, unit WeightUnit) float64 {
	switch unit {
	case WeightG:
		return v
	case WeightKG:
		return v * 1000
	default:
		return ToOunces(v, unit) * 28.349523125
	}
}

// Round rounds v half away from zero to the given number of decimals.
func Round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}

// Ceil rounds v up to the given number of decimals.
func Ceil(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Ceil(v*p) / p
}

// FormatDecimal rounds v to places decimals and formats it without trailing
// zeros.
func FormatDecimal(v float64, places int) string {
	return strconv.FormatFloat(Round(v, places), 'f', -1, 64)
}

// SplitOunces splits a weight in ounces into whole pounds and the remaining
// ounces rounded to one decimal.
func SplitOunces(oz float64) (int, float64) {
	oz = Round(oz, 1)
	pounds := math.Floor(oz / 16)
	return int(pounds), Round(oz-pounds*16, 1)
}
