package shipper

// Machinable package limits, inclusive.
const (
	MachinableMinLengthIn = 6.0
	MachinableMaxLengthIn = 22.0
	MachinableMinWidthIn  = 3.0
	MachinableMaxWidthIn  = 18.0
	MachinableMinHeightIn = 0.25
	MachinableMaxHeightIn = 15.0
	MachinableMinWeightOz = 6.0
	MachinableMaxWeightOz = 25.0 * 16
)

// IsMachinable reports whether a package can be processed by postal sorting
// equipment. Dimensions are compared in inches and weight in ounces.
func IsMachinable(pkg Package) bool {
	length, width, height := pkg.LengthIn(), pkg.WidthIn(), pkg.HeightIn()
	weight := pkg.WeightOz()

	return within(length, MachinableMinLengthIn, MachinableMaxLengthIn) &&
		within(width, MachinableMinWidthIn, MachinableMaxWidthIn) &&
		within(height, MachinableMinHeightIn, MachinableMaxHeightIn) &&
		within(weight, MachinableMinWeightOz, MachinableMaxWeightOz)
}

func within(v, lo, hi float64) bool {
	return v >= lo && v <= hi
}
