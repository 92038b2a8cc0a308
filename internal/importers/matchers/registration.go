package matchers

import (
	"fmt"
	"time"

	"github.com/mrlokans/memberimport/internal/apperrors"
	"github.com/mrlokans/memberimport/internal/entities"
	"github.com/mrlokans/memberimport/internal/importers"
	"github.com/mrlokans/memberimport/internal/sheet"
	"github.com/mrlokans/memberimport/internal/utils"
)

// GroupMatcher reads the group a member registers for, by name, from the
// groups of the import period.
type GroupMatcher struct {
	detector
	period *entities.RegistrationPeriod
}

func Group(period *entities.RegistrationPeriod, opts ...Option) GroupMatcher {
	d := personDetector("group", "Group", importers.CategoryMember,
		[]string{"groep", "group", "tak", "afdeling", "leeftijdsgroep", "section", "groupe"}, opts...)
	d.id = "registration.group"
	return GroupMatcher{detector: d, period: period}
}

func (m GroupMatcher) Apply(cell *sheet.Cell, result *importers.ImportMemberResult) error {
	name, ok, err := m.text(cell)
	if !ok {
		return err
	}
	if m.period == nil {
		return apperrors.NotFound("There is no registration period to look up groups in")
	}
	group, found := m.period.GroupByName(name)
	if !found {
		return apperrors.NotFound(fmt.Sprintf("Group '%s' does not exist", name))
	}
	result.Registration.Group = &group
	return nil
}

// PriceNameMatcher selects one of the group's prices by name. When the
// row's group is known the name is checked right away.
type PriceNameMatcher struct{ detector }

func PriceName(opts ...Option) PriceNameMatcher {
	d := personDetector("price_name", "Price name", importers.CategoryMember,
		[]string{"tarief", "price name", "tarif", "prijscategorie", "price type"}, opts...)
	d.id = "registration.price_name"
	d.negative = append(append([]string{}, d.negative...), "kansentarief", "verminderd", "reduced", "reduit", "sociaal")
	return PriceNameMatcher{d}
}

func (m PriceNameMatcher) Apply(cell *sheet.Cell, result *importers.ImportMemberResult) error {
	name, ok, err := m.text(cell)
	if !ok {
		return err
	}
	if group := result.Registration.Group; group != nil {
		found := false
		for _, price := range group.Prices {
			if utils.IsTypoEqual(price.Name, name) {
				name = price.Name
				found = true
				break
			}
		}
		if !found {
			return apperrors.NotFound(fmt.Sprintf("Price '%s' does not exist for %s", name, group.Name))
		}
	}
	result.Registration.PriceName = name
	return nil
}

// PriceMatcher reads the price of the registration, overriding the group's price.
type PriceMatcher struct{ detector }

func Price(opts ...Option) PriceMatcher {
	d := personDetector("price", "Price", importers.CategoryMember,
		[]string{"prijs", "price", "lidgeld", "inschrijvingsgeld", "prix", "cotisation", "fee"}, opts...)
	d.id = "registration.price"
	d.negative = append(append([]string{}, d.negative...), "betaald", "paid", "paye", "naam", "name")
	return PriceMatcher{d}
}

func (m PriceMatcher) Apply(cell *sheet.Cell, result *importers.ImportMemberResult) error {
	price, err := m.price(cell)
	if price == nil {
		return err
	}
	result.Registration.Price = price
	return nil
}

// RegistrationDateMatcher reads the start or end date of the registration.
type RegistrationDateMatcher struct {
	detector
	now   func() time.Time
	start bool
}

func StartDate(now func() time.Time, opts ...Option) RegistrationDateMatcher {
	d := personDetector("start_date", "Start date", importers.CategoryMember,
		[]string{"startdatum", "start date", "begindatum", "inschrijvingsdatum", "date de debut", "lid sinds", "member since"}, opts...)
	d.id = "registration.start_date"
	d.negative = []string{}
	return RegistrationDateMatcher{detector: d, now: now, start: true}
}

func EndDate(now func() time.Time, opts ...Option) RegistrationDateMatcher {
	d := personDetector("end_date", "End date", importers.CategoryMember,
		[]string{"einddatum", "end date", "date de fin", "uitschrijvingsdatum"}, opts...)
	d.id = "registration.end_date"
	d.negative = []string{}
	return RegistrationDateMatcher{detector: d, now: now}
}

func (m RegistrationDateMatcher) Apply(cell *sheet.Cell, result *importers.ImportMemberResult) error {
	date, err := m.date(cell, m.now())
	if date == nil {
		return err
	}
	if m.start {
		result.Registration.StartDate = date
	} else {
		result.Registration.EndDate = date
	}
	return nil
}
