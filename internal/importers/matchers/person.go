package matchers

import (
	"strings"
	"time"

	"github.com/mrlokans/memberimport/internal/importers"
	"github.com/mrlokans/memberimport/internal/parsers"
	"github.com/mrlokans/memberimport/internal/sheet"
)

// FirstNameMatcher reads a first name.
type FirstNameMatcher struct{ detector }

func FirstName(category importers.Category, opts ...Option) FirstNameMatcher {
	return FirstNameMatcher{personDetector("first_name", "First name", category,
		[]string{"voornaam", "first name", "firstname", "prenom", "given name"}, opts...)}
}

func (m FirstNameMatcher) Apply(cell *sheet.Cell, result *importers.ImportMemberResult) error {
	name, ok, err := m.text(cell)
	if !ok {
		return err
	}
	result.UpdatePerson(m.category, func(p *importers.PersonPatch) {
		p.FirstName = &name
	})
	return nil
}

func (m FirstNameMatcher) ApplyBase(cell *sheet.Cell, base *importers.ImportMemberBaseResult) error {
	if m.category.Kind != importers.KindMember {
		return nil
	}
	name, ok, err := m.text(cell)
	if ok {
		base.SetFirstName(name)
	}
	return err
}

// LastNameMatcher reads a last name.
type LastNameMatcher struct{ detector }

func LastName(category importers.Category, opts ...Option) LastNameMatcher {
	return LastNameMatcher{personDetector("last_name", "Last name", category,
		[]string{"achternaam", "familienaam", "last name", "lastname", "surname", "family name", "nom de famille"}, opts...)}
}

func (m LastNameMatcher) Apply(cell *sheet.Cell, result *importers.ImportMemberResult) error {
	name, ok, err := m.text(cell)
	if !ok {
		return err
	}
	result.UpdatePerson(m.category, func(p *importers.PersonPatch) {
		p.LastName = &name
	})
	return nil
}

func (m LastNameMatcher) ApplyBase(cell *sheet.Cell, base *importers.ImportMemberBaseResult) error {
	if m.category.Kind != importers.KindMember {
		return nil
	}
	name, ok, err := m.text(cell)
	if ok {
		base.SetLastName(name)
	}
	return err
}

// FullNameMatcher reads "first last" from one column. The first word is
// the first name, the rest the last name.
type FullNameMatcher struct{ detector }

func FullName(category importers.Category, opts ...Option) FullNameMatcher {
	d := personDetector("full_name", "Name", category, []string{"naam", "name", "nom"}, opts...)
	d.negative = append(append([]string{}, d.negative...),
		"voornaam", "achternaam", "familienaam", "first", "last", "prenom", "surname", "family", "famille", "groep", "group", "tak", "straat", "street")
	return FullNameMatcher{d}
}

func (m FullNameMatcher) split(cell *sheet.Cell) (first, last string, ok bool, err error) {
	text, ok, err := m.text(cell)
	if !ok {
		return "", "", false, err
	}
	parts := strings.SplitN(text, " ", 2)
	first = parts[0]
	if len(parts) == 2 {
		last = strings.TrimSpace(parts[1])
	}
	return first, last, true, nil
}

func (m FullNameMatcher) Apply(cell *sheet.Cell, result *importers.ImportMemberResult) error {
	first, last, ok, err := m.split(cell)
	if !ok {
		return err
	}
	result.UpdatePerson(m.category, func(p *importers.PersonPatch) {
		p.FirstName = &first
		if last != "" {
			p.LastName = &last
		}
	})
	return nil
}

func (m FullNameMatcher) ApplyBase(cell *sheet.Cell, base *importers.ImportMemberBaseResult) error {
	if m.category.Kind != importers.KindMember {
		return nil
	}
	first, last, ok, err := m.split(cell)
	if ok {
		base.SetFirstName(first)
		base.SetLastName(last)
	}
	return err
}

// EmailMatcher reads an email address.
type EmailMatcher struct{ detector }

func Email(category importers.Category, opts ...Option) EmailMatcher {
	return EmailMatcher{personDetector("email", "Email", category, []string{"e-mail", "email", "mail", "courriel"}, opts...)}
}

func (m EmailMatcher) Apply(cell *sheet.Cell, result *importers.ImportMemberResult) error {
	text, ok, err := m.text(cell)
	if !ok {
		return err
	}
	email, err := parsers.ParseEmail(text)
	if err != nil {
		return err
	}
	result.UpdatePerson(m.category, func(p *importers.PersonPatch) {
		p.Email = &email
	})
	return nil
}

// PhoneMatcher reads a phone number for the organization's country.
type PhoneMatcher struct {
	detector
	country string
}

func Phone(category importers.Category, country string, opts ...Option) PhoneMatcher {
	return PhoneMatcher{
		detector: personDetector("phone", "Phone", category,
			[]string{"gsm", "telefoon", "phone", "mobile", "mobiel", "telephone", "tel.", "portable"}, opts...),
		country: country,
	}
}

func (m PhoneMatcher) Apply(cell *sheet.Cell, result *importers.ImportMemberResult) error {
	text, ok, err := m.text(cell)
	if !ok {
		return err
	}
	phone, err := parsers.ParsePhone(text, m.country)
	if err != nil {
		return err
	}
	result.UpdatePerson(m.category, func(p *importers.PersonPatch) {
		p.Phone = &phone
	})
	return nil
}

// NationalRegisterNumberMatcher reads a Belgian national register number.
// For members the number is checked against the birth day, so it has to
// be applied after the birth day column.
type NationalRegisterNumberMatcher struct{ detector }

func NationalRegisterNumber(category importers.Category, opts ...Option) NationalRegisterNumberMatcher {
	return NationalRegisterNumberMatcher{personDetector("national_register_number", "National register number", category,
		[]string{"rijksregister", "national register", "insz", "numero national", "registre national", "nrn"}, opts...)}
}

func (m NationalRegisterNumberMatcher) Apply(cell *sheet.Cell, result *importers.ImportMemberResult) error {
	text, ok, err := m.text(cell)
	if !ok {
		return err
	}

	var birthDay *time.Time
	if m.category.Kind == importers.KindMember {
		birthDay = result.PatchedDetails().BirthDay
	}
	nrn, err := parsers.ParseNationalRegisterNumber(text, birthDay)
	if err != nil {
		return err
	}

	formatted := nrn.String()
	result.UpdatePerson(m.category, func(p *importers.PersonPatch) {
		p.NationalRegisterNumber = &formatted
	})
	return nil
}

func (m NationalRegisterNumberMatcher) ApplyBase(cell *sheet.Cell, base *importers.ImportMemberBaseResult) error {
	if m.category.Kind != importers.KindMember {
		return nil
	}
	text, ok, err := m.text(cell)
	if !ok {
		return err
	}
	nrn, err := parsers.ParseNationalRegisterNumber(text, base.BirthDay())
	if err != nil {
		return err
	}
	base.SetNationalRegisterNumber(nrn.String())
	return nil
}
