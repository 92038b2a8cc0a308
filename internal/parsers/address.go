package parsers

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/mrlokans/memberimport/internal/apperrors"
	"github.com/mrlokans/memberimport/internal/entities"
	"github.com/mrlokans/memberimport/internal/utils"
)

const invalidAddressMessage = "Invalid address. Use a format like 'Kerkstraat 12, 9000 Gent'"

var (
	// "bus 3", "b 3", "box 3" suffix after a house number
	boxSuffix = regexp.MustCompile(`(?i)\s+(?:bus|box|b)\s*([0-9a-z]+)$`)
	// street name followed by a house number that starts with a digit
	streetNumber = regexp.MustCompile(`^(.+?)\s+(\d+[a-zA-Z]?(?:[-/]\d+[a-zA-Z]?)?)$`)
	// postal code followed by the city; Dutch codes contain a space ("1234 AB")
	postalCity = regexp.MustCompile(`^(\d{4}\s?[A-Za-z]{2}|[A-Za-z]{0,2}-?\d[0-9A-Za-z-]*)\s+(.+)$`)
)

// ParseAddressLine parses "street number, postal city[, country]". Without
// a country part defaultCountry is used. Countries are matched by exact slug.
func ParseAddressLine(text, defaultCountry string) (entities.Address, error) {
	parts := strings.Split(text, ",")
	for i := range parts {
		parts[i] = utils.CollapseSpaces(parts[i])
	}
	if len(parts) < 2 || len(parts) > 3 {
		return entities.Address{}, apperrors.InvalidType(invalidAddressMessage)
	}

	street, number, err := ParseStreetLine(parts[0])
	if err != nil {
		return entities.Address{}, err
	}

	match := postalCity.FindStringSubmatch(parts[1])
	if match == nil {
		return entities.Address{}, apperrors.InvalidType(invalidAddressMessage)
	}

	country := strings.ToUpper(defaultCountry)
	if len(parts) == 3 && parts[2] != "" {
		code, ok := LookupCountry(parts[2])
		if !ok {
			return entities.Address{}, apperrors.InvalidField("country", fmt.Sprintf("Unknown country '%s'", parts[2]))
		}
		country = code
	}

	return entities.Address{
		Street:     street,
		Number:     number,
		PostalCode: strings.ToUpper(match[1]),
		City:       match[2],
		Country:    country,
	}, nil
}

// ParseStreetLine splits "Kerkstraat 12 bus 3" into street and number.
func ParseStreetLine(text string) (street, number string, err error) {
	text = utils.CollapseSpaces(text)

	box := ""
	if m := boxSuffix.FindStringSubmatchIndex(text); m != nil && utils.ContainsDigit(text[:m[0]]) {
		box = text[m[2]:m[3]]
		text = text[:m[0]]
	}

	match := streetNumber.FindStringSubmatch(text)
	if match == nil {
		return "", "", apperrors.InvalidType("Missing house number. Use a format like 'Kerkstraat 12'")
	}

	street, number = match[1], match[2]
	if box != "" {
		number += " bus " + box
	}
	return street, number, nil
}
