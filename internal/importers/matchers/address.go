package matchers

import (
	"fmt"
	"strings"

	"github.com/mrlokans/memberimport/internal/apperrors"
	"github.com/mrlokans/memberimport/internal/importers"
	"github.com/mrlokans/memberimport/internal/parsers"
	"github.com/mrlokans/memberimport/internal/sheet"
)

var streetWords = []string{"straat", "street", "rue", "adres", "address", "adresse"}

// AddressMatcher reads a full address line: "Kerkstraat 12, 9000 Gent".
type AddressMatcher struct {
	detector
	country string
}

func Address(category importers.Category, country string, opts ...Option) AddressMatcher {
	d := personDetector("address", "Address", category, []string{"adres", "address", "adresse"}, opts...)
	d.negative = append(append([]string{}, d.negative...), "mail", "courriel")
	d.shape = anyHasComma
	return AddressMatcher{detector: d, country: country}
}

func (m AddressMatcher) Apply(cell *sheet.Cell, result *importers.ImportMemberResult) error {
	text, ok, err := m.text(cell)
	if !ok {
		return err
	}
	address, err := parsers.ParseAddressLine(text, m.country)
	if err != nil {
		return err
	}
	result.UpdatePerson(m.category, func(p *importers.PersonPatch) {
		p.EnsureAddress().SetAddress(address)
	})
	return nil
}

// StreetWithNumberMatcher reads "Kerkstraat 12" from one column. It only
// matches columns whose examples contain house numbers.
type StreetWithNumberMatcher struct{ detector }

func StreetWithNumber(category importers.Category, opts ...Option) StreetWithNumberMatcher {
	d := personDetector("street_with_number", "Street with number", category, streetWords, opts...)
	d.negative = append(append([]string{}, d.negative...), "mail", "courriel")
	d.shape = allHaveDigit
	return StreetWithNumberMatcher{d}
}

func (m StreetWithNumberMatcher) Apply(cell *sheet.Cell, result *importers.ImportMemberResult) error {
	text, ok, err := m.text(cell)
	if !ok {
		return err
	}
	street, number, err := parsers.ParseStreetLine(text)
	if err != nil {
		return err
	}
	result.UpdatePerson(m.category, func(p *importers.PersonPatch) {
		address := p.EnsureAddress()
		address.Street = &street
		address.Number = &number
	})
	return nil
}

// StreetMatcher reads a street name when the house number has its own
// column. It only matches columns whose examples contain no digits.
type StreetMatcher struct{ detector }

func Street(category importers.Category, opts ...Option) StreetMatcher {
	d := personDetector("street", "Street", category, []string{"straat", "street", "rue"}, opts...)
	d.shape = func(examples []string) bool { return !anyHasDigit(examples) }
	return StreetMatcher{d}
}

func (m StreetMatcher) Apply(cell *sheet.Cell, result *importers.ImportMemberResult) error {
	street, ok, err := m.text(cell)
	if !ok {
		return err
	}
	result.UpdatePerson(m.category, func(p *importers.PersonPatch) {
		p.EnsureAddress().Street = &street
	})
	return nil
}

// HouseNumberMatcher reads the house number (and box) of a separate column.
type HouseNumberMatcher struct{ detector }

func HouseNumber(category importers.Category, opts ...Option) HouseNumberMatcher {
	d := personDetector("house_number", "House number", category,
		[]string{"huisnummer", "house number", "numero", "nummer", "number", "nr"}, opts...)
	d.negative = append(append([]string{}, d.negative...),
		"lid", "member", "telefoon", "gsm", "phone", "rijksregister", "national", "insz", "postcode", "postal", "rekening")
	return HouseNumberMatcher{d}
}

func (m HouseNumberMatcher) Apply(cell *sheet.Cell, result *importers.ImportMemberResult) error {
	number, ok, err := m.text(cell)
	if !ok {
		return err
	}
	if !strings.ContainsAny(number, "0123456789") {
		return apperrors.InvalidType(fmt.Sprintf("'%s' is not a house number", number))
	}
	result.UpdatePerson(m.category, func(p *importers.PersonPatch) {
		p.EnsureAddress().Number = &number
	})
	return nil
}

// PostalCodeMatcher reads a postal code.
type PostalCodeMatcher struct{ detector }

func PostalCode(category importers.Category, opts ...Option) PostalCodeMatcher {
	return PostalCodeMatcher{personDetector("postal_code", "Postal code", category,
		[]string{"postcode", "postal", "zip", "code postal"}, opts...)}
}

func (m PostalCodeMatcher) Apply(cell *sheet.Cell, result *importers.ImportMemberResult) error {
	code, ok, err := m.text(cell)
	if !ok {
		return err
	}
	code = strings.ToUpper(code)
	result.UpdatePerson(m.category, func(p *importers.PersonPatch) {
		p.EnsureAddress().PostalCode = &code
	})
	return nil
}

// CityMatcher reads a city.
type CityMatcher struct{ detector }

func City(category importers.Category, opts ...Option) CityMatcher {
	d := personDetector("city", "City", category,
		[]string{"gemeente", "stad", "city", "woonplaats", "plaats", "ville", "localite"}, opts...)
	d.negative = append(append([]string{}, d.negative...), "geboorte", "birth", "naissance")
	return CityMatcher{d}
}

func (m CityMatcher) Apply(cell *sheet.Cell, result *importers.ImportMemberResult) error {
	city, ok, err := m.text(cell)
	if !ok {
		return err
	}
	result.UpdatePerson(m.category, func(p *importers.PersonPatch) {
		p.EnsureAddress().City = &city
	})
	return nil
}

// CountryMatcher reads a country name or code.
type CountryMatcher struct{ detector }

func Country(category importers.Category, opts ...Option) CountryMatcher {
	d := personDetector("country", "Country", category, []string{"land", "country", "pays"}, opts...)
	d.negative = append(append([]string{}, d.negative...), "geboorte", "birth", "naissance", "nationaliteit")
	return CountryMatcher{d}
}

func (m CountryMatcher) Apply(cell *sheet.Cell, result *importers.ImportMemberResult) error {
	text, ok, err := m.text(cell)
	if !ok {
		return err
	}
	code, found := parsers.LookupCountry(text)
	if !found {
		return apperrors.InvalidType(fmt.Sprintf("Unknown country '%s'", text))
	}
	result.UpdatePerson(m.category, func(p *importers.PersonPatch) {
		p.EnsureAddress().Country = &code
	})
	return nil
}
