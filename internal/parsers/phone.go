package parsers

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nyaruka/phonenumbers"

	"github.com/mrlokans/memberimport/internal/apperrors"
)

// supportedRegions is sorted so suggestions are deterministic.
var supportedRegions = func() []string {
	regions := make([]string, 0, len(phonenumbers.GetSupportedRegions()))
	for region := range phonenumbers.GetSupportedRegions() {
		regions = append(regions, region)
	}
	sort.Strings(regions)
	return regions
}()

// ParsePhone parses a phone number for the organization's country and
// returns it in international format. When the number is not valid there,
// every other supported region is tried to suggest the right country code.
func ParsePhone(text, country string) (string, error) {
	text = strings.TrimSpace(text)
	country = strings.ToUpper(country)

	if formatted, ok := formatPhone(text, country); ok {
		return formatted, nil
	}

	if !strings.HasPrefix(text, "+") && !strings.HasPrefix(text, "00") {
		for _, region := range supportedRegions {
			if region == country {
				continue
			}
			if _, ok := formatPhone(text, region); ok {
				return "", apperrors.InvalidType(fmt.Sprintf(
					"Invalid phone number for %s. Is this a number from %s? Add the country code (+%d)",
					country, region, phonenumbers.GetCountryCodeForRegion(region),
				))
			}
		}
	}

	return "", apperrors.InvalidType(fmt.Sprintf("Invalid phone number '%s'", text))
}

func formatPhone(text, region string) (string, bool) {
	number, err := phonenumbers.Parse(text, region)
	if err != nil || !phonenumbers.IsValidNumber(number) {
		return "", false
	}
	return phonenumbers.Format(number, phonenumbers.INTERNATIONAL), true
}
