package uspsintl

import (
	"fmt"
	"strings"

	"github.com/tournevent/carrierkit/pkg/shipper"
)

// countryNames maps ISO 3166-1 alpha-2 codes to the country names the
// IntlRateV2 API expects.
var countryNames = map[string]string{
	"AE": "United Arab Emirates",
	"AR": "Argentina",
	"AT": "Austria",
	"AU": "Australia",
	"BE": "Belgium",
	"BR": "Brazil",
	"CA": "Canada",
	"CH": "Switzerland",
	"CL": "Chile",
	"CN": "China",
	"CO": "Colombia",
	"CR": "Costa Rica",
	"CZ": "Czech Republic",
	"DE": "Germany",
	"DK": "Denmark",
	"DO": "Dominican Republic",
	"EG": "Egypt",
	"ES": "Spain",
	"FI": "Finland",
	"FR": "France",
	"GB": "Great Britain and Northern Ireland",
	"GR": "Greece",
	"HK": "Hong Kong",
	"HU": "Hungary",
	"ID": "Indonesia",
	"IE": "Ireland",
	"IL": "Israel",
	"IN": "India",
	"IS": "Iceland",
	"IT": "Italy",
	"JM": "Jamaica",
	"JP": "Japan",
	"KR": "South Korea",
	"LU": "Luxembourg",
	"MX": "Mexico",
	"MY": "Malaysia",
	"NG": "Nigeria",
	"NL": "Netherlands",
	"NO": "Norway",
	"NZ": "New Zealand",
	"PE": "Peru",
	"PH": "Philippines",
	"PL": "Poland",
	"PT": "Portugal",
	"RO": "Romania",
	"SA": "Saudi Arabia",
	"SE": "Sweden",
	"SG": "Singapore",
	"TH": "Thailand",
	"TR": "Turkey",
	"TW": "Taiwan",
	"UA": "Ukraine",
	"VN": "Vietnam",
	"ZA": "South Africa",
}

// CountryName returns the USPS name of an ISO country code.
func CountryName(code string) (string, error) {
	name, ok := countryNames[strings.ToUpper(code)]
	if !ok {
		return "", fmt.Errorf("%w: usps international country %q", shipper.ErrUnknownCode, code)
	}
	return name, nil
}
