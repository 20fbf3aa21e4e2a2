package tforce

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/tournevent/carrierkit/pkg/shipper"
)

// RateRequest is the getRate request body.
type RateRequest struct {
	RequestOptions  RequestOptions  `json:"requestOptions"`
	ShipFrom        Location        `json:"shipFrom"`
	ShipTo          Location        `json:"shipTo"`
	Payment         Payment         `json:"payment"`
	ServiceOptions  *ServiceOptions `json:"serviceOptions,omitempty"`
	Commodities     []Commodity     `json:"commodities"`
	HandlingUnitOne *HandlingUnit   `json:"handlingUnitOne,omitempty"`
	HandlingUnitTwo *HandlingUnit   `json:"handlingUnitTwo,omitempty"`
}

type RequestOptions struct {
	ServiceCode     string `json:"serviceCode"`
	PickupDate      string `json:"pickupDate"`
	Type            string `json:"type"`
	DensityEligible bool   `json:"densityEligible"`
	TimeInTransit   bool   `json:"timeInTransit"`
	QuoteNumber     bool   `json:"quoteNumber"`
	CustomerContext string `json:"customerContext,omitempty"`
}

type Location struct {
	Address       Address `json:"address"`
	IsResidential bool    `json:"isResidential"`
}

type Address struct {
	City              string `json:"city,omitempty"`
	StateProvinceCode string `json:"stateProvinceCode,omitempty"`
	PostalCode        string `json:"postalCode"`
	Country           string `json:"country"`
}

type Payment struct {
	Payer       Payer  `json:"payer"`
	BillingCode string `json:"billingCode"`
}

type Payer struct {
	Address Address `json:"address"`
}

type ServiceOptions struct {
	Pickup   []string `json:"pickup,omitempty"`
	Delivery []string `json:"delivery,omitempty"`
}

type Commodity struct {
	Class          string      `json:"class"`
	NMFC           *NMFC       `json:"nmfc,omitempty"`
	Pieces         int         `json:"pieces"`
	Weight         WeightValue `json:"weight"`
	PackagingType  string      `json:"packagingType"`
	DangerousGoods bool        `json:"dangerousGoods"`
	Dimensions     *Dimensions `json:"dimensions,omitempty"`
	Description    string      `json:"description,omitempty"`
}

type NMFC struct {
	Prime string `json:"prime"`
	Sub   string `json:"sub,omitempty"`
}

type WeightValue struct {
	Weight     float64 `json:"weight"`
	WeightUnit string  `json:"weightUnit"`
}

type Dimensions struct {
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Unit   string  `json:"unit"`
}

type HandlingUnit struct {
	Quantity int    `json:"quantity"`
	TypeCode string `json:"typeCode"`
}

// RateRequestGenerators build the sections of a RateRequest. Replace a
// field to customise one section and keep the others.
type RateRequestGenerators struct {
	RequestOptions func(*shipper.Shipment, *RatesOptions) (RequestOptions, error)
	ShipFrom       func(*shipper.Shipment, *RatesOptions) Location
	ShipTo         func(*shipper.Shipment, *RatesOptions) Location
	Payment        func(*shipper.Shipment, *RatesOptions) Payment
	ServiceOptions func(*shipper.Shipment, *RatesOptions) *ServiceOptions
	Commodities    func(*shipper.Shipment, *RatesOptions) ([]Commodity, error)
	HandlingUnits  func(*shipper.Shipment, *RatesOptions) (one, two *HandlingUnit, err error)
}

// DefaultRateRequestGenerators returns the standard generators.
func DefaultRateRequestGenerators() RateRequestGenerators {
	return RateRequestGenerators{
		RequestOptions: GenerateRequestOptions,
		ShipFrom: func(s *shipper.Shipment, _ *RatesOptions) Location {
			return GenerateLocation(s.Origin)
		},
		ShipTo: func(s *shipper.Shipment, _ *RatesOptions) Location {
			return GenerateLocation(s.Destination)
		},
		Payment:        GeneratePayment,
		ServiceOptions: GenerateServiceOptions,
		Commodities:    GenerateCommodities,
		HandlingUnits:  GenerateHandlingUnits,
	}
}

// SerializeRateRequest builds the getRate body. Nil generators fall back to
// the defaults.
func SerializeRateRequest(shipment *shipper.Shipment, opts *RatesOptions) (string, error) {
	if len(shipment.Structures) == 0 {
		return "", fmt.Errorf("%w: freight shipments need structures", shipper.ErrNoPackages)
	}
	gen := opts.Generators.withDefaults()

	requestOptions, err := gen.RequestOptions(shipment, opts)
	if err != nil {
		return "", err
	}
	commodities, err := gen.Commodities(shipment, opts)
	if err != nil {
		return "", err
	}
	one, two, err := gen.HandlingUnits(shipment, opts)
	if err != nil {
		return "", err
	}

	body, err := json.Marshal(RateRequest{
		RequestOptions:  requestOptions,
		ShipFrom:        gen.ShipFrom(shipment, opts),
		ShipTo:          gen.ShipTo(shipment, opts),
		Payment:         gen.Payment(shipment, opts),
		ServiceOptions:  gen.ServiceOptions(shipment, opts),
		Commodities:     commodities,
		HandlingUnitOne: one,
		HandlingUnitTwo: two,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}
	return string(body), nil
}

func (g RateRequestGenerators) withDefaults() RateRequestGenerators {
	d := DefaultRateRequestGenerators()
	if g.RequestOptions == nil {
		g.RequestOptions = d.RequestOptions
	}
	if g.ShipFrom == nil {
		g.ShipFrom = d.ShipFrom
	}
	if g.ShipTo == nil {
		g.ShipTo = d.ShipTo
	}
	if g.Payment == nil {
		g.Payment = d.Payment
	}
	if g.ServiceOptions == nil {
		g.ServiceOptions = d.ServiceOptions
	}
	if g.Commodities == nil {
		g.Commodities = d.Commodities
	}
	if g.HandlingUnits == nil {
		g.HandlingUnits = d.HandlingUnits
	}
	return g
}

// GenerateRequestOptions fills the requestOptions section.
func GenerateRequestOptions(_ *shipper.Shipment, opts *RatesOptions) (RequestOptions, error) {
	code, err := opts.serviceCode()
	if err != nil {
		return RequestOptions{}, err
	}
	return RequestOptions{
		ServiceCode:     code,
		PickupDate:      opts.PickupDate.Format("2006-01-02"),
		Type:            "L",
		DensityEligible: opts.DensityEligible,
		TimeInTransit:   opts.TimeInTransit,
		QuoteNumber:     true,
		CustomerContext: opts.CustomerContext,
	}, nil
}

// GenerateLocation converts an address into a location.
func GenerateLocation(a shipper.Address) Location {
	return Location{Address: generateAddress(a), IsResidential: a.IsResidential}
}

func generateAddress(a shipper.Address) Address {
	country := a.CountryCode
	if country == "" {
		country = "US"
	}
	return Address{
		City:              a.City,
		StateProvinceCode: a.ProvinceCode,
		PostalCode:        a.PostalCode,
		Country:           country,
	}
}

// GeneratePayment bills the billing address, or the origin when none is set.
func GeneratePayment(s *shipper.Shipment, opts *RatesOptions) Payment {
	payer := s.Origin
	if opts.BillingAddress != nil {
		payer = *opts.BillingAddress
	}
	return Payment{Payer: Payer{Address: generateAddress(payer)}, BillingCode: opts.BillingCode}
}

// GenerateServiceOptions returns the accessorials, or nil without any.
func GenerateServiceOptions(_ *shipper.Shipment, opts *RatesOptions) *ServiceOptions {
	if len(opts.PickupOptions) == 0 && len(opts.DeliveryOptions) == 0 {
		return nil
	}
	return &ServiceOptions{Pickup: opts.PickupOptions, Delivery: opts.DeliveryOptions}
}

// GenerateCommodities turns every package into a commodity. A structure
// without packages becomes a single commodity of its own size and weight.
// Dimensions are rounded up to whole inches and weights to hundredths of a
// pound.
func GenerateCommodities(s *shipper.Shipment, opts *RatesOptions) ([]Commodity, error) {
	var out []Commodity
	for _, structure := range s.Structures {
		so := opts.StructureOptionsFor(structure)

		if len(structure.Packages) == 0 {
			itemOpts := so.PackageOptionsFor(shipper.Package{}).commodityOptions(shipper.Package{})
			c, err := commodity(itemOpts, structure.Dimensions, structure.TotalWeightLb(), "")
			if err != nil {
				return nil, fmt.Errorf("structure %q: %w", structure.ID, err)
			}
			out = append(out, c)
			continue
		}

		for _, pkg := range structure.Packages {
			itemOpts := so.PackageOptionsFor(pkg).commodityOptions(pkg)
			c, err := commodity(itemOpts, pkg.Dimensions, pkg.WeightLb(), pkg.Description)
			if err != nil {
				return nil, fmt.Errorf("package %q: %w", pkg.ID, err)
			}
			out = append(out, c)
		}
	}
	return out, nil
}

func commodity(itemOpts *ItemOptions, dims shipper.Dimensions, weightLb float64, description string) (Commodity, error) {
	if err := itemOpts.validate(); err != nil {
		return Commodity{}, err
	}
	c := Commodity{
		Class:          itemOpts.FreightClass,
		Pieces:         1,
		Weight:         WeightValue{Weight: shipper.Round(weightLb, 2), WeightUnit: "LBS"},
		PackagingType:  itemOpts.PackagingCode,
		DangerousGoods: itemOpts.Hazardous,
		Description:    description,
	}
	if itemOpts.NMFCPrimaryCode != "" {
		c.NMFC = &NMFC{Prime: itemOpts.NMFCPrimaryCode, Sub: itemOpts.NMFCSubCode}
	}
	if dims.Length > 0 || dims.Width > 0 || dims.Height > 0 {
		c.Dimensions = &Dimensions{
			Length: math.Ceil(shipper.ToInches(dims.Length, dims.Unit)),
			Width:  math.Ceil(shipper.ToInches(dims.Width, dims.Unit)),
			Height: math.Ceil(shipper.ToInches(dims.Height, dims.Unit)),
			Unit:   "IN",
		}
	}
	return c, nil
}

// GenerateHandlingUnits counts structures per handling unit type. The API
// accepts at most two types.
func GenerateHandlingUnits(s *shipper.Shipment, opts *RatesOptions) (*HandlingUnit, *HandlingUnit, error) {
	var units []*HandlingUnit
	byType := make(map[string]*HandlingUnit)
	for _, structure := range s.Structures {
		typeCode := opts.StructureOptionsFor(structure).HandlingUnitType
		if !handlingUnitTypes[typeCode] {
			return nil, nil, fmt.Errorf("%w: handling unit type %q", shipper.ErrUnknownCode, typeCode)
		}
		hu, ok := byType[typeCode]
		if !ok {
			hu = &HandlingUnit{TypeCode: typeCode}
			byType[typeCode] = hu
			units = append(units, hu)
		}
		hu.Quantity++
	}

	switch len(units) {
	case 0:
		return nil, nil, nil
	case 1:
		return units[0], nil, nil
	case 2:
		return units[0], units[1], nil
	default:
		return nil, nil, fmt.Errorf("tforce accepts at most two handling unit types, got %d", len(units))
	}
}
