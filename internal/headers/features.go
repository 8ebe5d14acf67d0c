package headers

import "strings"

// Features carries the per-request feature flags parsed from the Features
// header.
type Features struct {
	Recommendations bool
}

// ParseFeatures reads the Features header value. An absent header means
// all flags off.
func ParseFeatures(value string) Features {
	return Features{
		Recommendations: strings.Contains(value, "recommendations"),
	}
}
