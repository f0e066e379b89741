// Package phone normalizes business phone numbers for display.
package phone

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// DefaultRegion is used when the caller does not name one.
const DefaultRegion = "IN"

// Format renders raw in international format for the given region. Numbers that do not
// parse or are not valid are returned trimmed but otherwise untouched, so nothing the
// search service sent is lost.
func Format(raw, region string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	region = strings.ToUpper(strings.TrimSpace(region))
	if region == "" {
		region = DefaultRegion
	}

	number, err := phonenumbers.Parse(raw, region)
	if err != nil {
		return raw
	}
	if !phonenumbers.IsPossibleNumber(number) || !phonenumbers.IsValidNumber(number) {
		return raw
	}
	return phonenumbers.Format(number, phonenumbers.INTERNATIONAL)
}
