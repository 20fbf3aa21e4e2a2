package shipper

import (
	"fmt"
	"maps"
	"slices"
)

// PackageRates are the rates a carrier quoted for a single package. Each
// rate's Amounts is keyed by PackageID.
type PackageRates struct {
	PackageID string
	Rates     []Rate
}

// MergePackageRates combines per package quotes into one rate per shipping
// method for the whole shipment. A method is kept only when every package of
// the shipment was quoted for it. A package ID the shipment does not contain
// aborts the merge with ErrUnknownPackage.
func MergePackageRates(shipment *Shipment, quoted []PackageRates) ([]Rate, error) {
	byPackage := make(map[string]map[string]Rate, len(quoted))
	var order []string

	for _, pr := range quoted {
		if _, ok := shipment.Package(pr.PackageID); !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownPackage, pr.PackageID)
		}
		methods, ok := byPackage[pr.PackageID]
		if !ok {
			methods = make(map[string]Rate)
			byPackage[pr.PackageID] = methods
		}
		for _, r := range pr.Rates {
			key := methodKey(r.ShippingMethod)
			if _, seen := methods[key]; seen {
				continue
			}
			methods[key] = r
			if !slices.Contains(order, key) {
				order = append(order, key)
			}
		}
	}

	merged := make([]Rate, 0, len(order))
	for _, key := range order {
		rate, ok := mergeMethod(shipment, byPackage, key)
		if ok {
			merged = append(merged, rate)
		}
	}
	return merged, nil
}

func mergeMethod(shipment *Shipment, byPackage map[string]map[string]Rate, key string) (Rate, bool) {
	var out Rate
	for i, pkg := range shipment.Packages {
		r, ok := byPackage[pkg.ID][key]
		if !ok {
			return Rate{}, false
		}
		if i == 0 {
			out = r
			out.Amounts = make(map[string]Money, len(shipment.Packages))
			out.Warnings = slices.Clone(r.Warnings)
			out.Errors = slices.Clone(r.Errors)
			out.Data = maps.Clone(r.Data)
		} else {
			out.Warnings = append(out.Warnings, r.Warnings...)
			out.Errors = append(out.Errors, r.Errors...)
			out.Guaranteed = out.Guaranteed && r.Guaranteed
			if r.DeliveryDate != nil && (out.DeliveryDate == nil || r.DeliveryDate.After(*out.DeliveryDate)) {
				out.DeliveryDate = r.DeliveryDate
			}
		}
		maps.Copy(out.Amounts, r.Amounts)
	}
	return out, len(shipment.Packages) > 0
}

func methodKey(m ShippingMethod) string {
	if m.ServiceCode != "" {
		return m.ServiceCode
	}
	return "name:" + m.Name
}
