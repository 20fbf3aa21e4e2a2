package shipper

// Identified is implemented by every options record. OptionsID returns the
// ID of the shipment part (structure, package, item) the record applies to.
type Identified interface {
	OptionsID() string
}

// LookupFunc selects the options record for id, falling back to a record
// built by fallback when none matches.
type LookupFunc[T Identified] func(options []T, id string, fallback func() T) T

// FindOptions returns the first record whose OptionsID equals id. When none
// matches it returns fallback(), or the zero value when fallback is nil.
// Duplicate IDs are not rejected; the first one in order wins.
func FindOptions[T Identified](options []T, id string, fallback func() T) T {
	for _, o := range options {
		if o.OptionsID() == id {
			return o
		}
	}
	if fallback == nil {
		var zero T
		return zero
	}
	return fallback()
}

// OptionSet is an ordered collection of options records together with the
// lookup strategy and the default factory used for missing entries.
type OptionSet[T Identified] struct {
	Options []T
	Lookup  LookupFunc[T]
	Default func() T
}

// NewOptionSet builds an OptionSet using FindOptions as lookup strategy.
func NewOptionSet[T Identified](options []T, defaults func() T) OptionSet[T] {
	return OptionSet[T]{
		Options: options,
		Lookup:  FindOptions[T],
		Default: defaults,
	}
}

// For returns the options record for id.
func (s OptionSet[T]) For(id string) T {
	lookup := s.Lookup
	if lookup == nil {
		lookup = FindOptions[T]
	}
	return lookup(s.Options, id, s.Default)
}

// Each calls fn for every explicitly configured record.
func (s OptionSet[T]) Each(fn func(T)) {
	for _, o := range s.Options {
		fn(o)
	}
}

// ItemOptions is the leaf of the options tree. Carrier item options embed it.
type ItemOptions struct {
	ItemID string
}

// OptionsID implements Identified.
func (o ItemOptions) OptionsID() string { return o.ItemID }

// PackageOptions holds per package settings and the options of the items in
// the package.
type PackageOptions[I Identified] struct {
	PackageID string
	Items     OptionSet[I]
}

// OptionsID implements Identified.
func (o PackageOptions[I]) OptionsID() string { return o.PackageID }

// ItemOptionsFor returns the options for an item of this package.
func (o PackageOptions[I]) ItemOptionsFor(item Item) I {
	return o.Items.For(item.ID)
}

// StructureOptions holds per structure (pallet, skid, crate) settings and the
// options of the packages it carries.
type StructureOptions[P Identified] struct {
	StructureID string
	Packages    OptionSet[P]
}

// OptionsID implements Identified.
func (o StructureOptions[P]) OptionsID() string { return o.StructureID }

// PackageOptionsFor returns the options for a package on this structure.
func (o StructureOptions[P]) PackageOptionsFor(pkg Package) P {
	return o.Packages.For(pkg.ID)
}

// ShipmentOptions is the root of a parcel options tree.
type ShipmentOptions[P Identified] struct {
	Packages OptionSet[P]
}

// PackageOptionsFor returns the options for a package of the shipment.
func (o ShipmentOptions[P]) PackageOptionsFor(pkg Package) P {
	return o.Packages.For(pkg.ID)
}

// FreightShipmentOptions is the root of an options tree for shipments built
// from structures.
type FreightShipmentOptions[S Identified] struct {
	Structures OptionSet[S]
}

// StructureOptionsFor returns the options for a structure of the shipment.
func (o FreightShipmentOptions[S]) StructureOptionsFor(s Structure) S {
	return o.Structures.For(s.ID)
}
