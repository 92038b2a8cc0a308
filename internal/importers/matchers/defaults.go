package matchers

import (
	"time"

	"github.com/mrlokans/memberimport/internal/entities"
	"github.com/mrlokans/memberimport/internal/importers"
)

// Options configures the default matcher set.
type Options struct {
	// Country is the default country for phone numbers and addresses.
	Country string
	// Now is used to resolve two digit years.
	Now func() time.Time
	// Period holds the groups the group column refers to.
	Period           *entities.RegistrationPeriod
	RecordCategories []entities.RecordCategory
}

// Default returns every matcher in priority order. Earlier matchers win
// column detection and are applied first to each row, so the birth day
// comes before the national register number that is checked against it,
// and the group before the price name.
func Default(opts Options) []importers.ColumnMatcher {
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	list := []importers.ColumnMatcher{
		FirstName(importers.CategoryMember, Required()),
		LastName(importers.CategoryMember, Required()),
		FullName(importers.CategoryMember, Required()),
		BirthDay(now),
		NationalRegisterNumber(importers.CategoryMember),
		MemberNumber(),
		Gender(),
		Email(importers.CategoryMember),
		Phone(importers.CategoryMember, opts.Country),
	}
	list = append(list, addressMatchers(importers.CategoryMember, opts.Country)...)
	list = append(list,
		FinancialSupport(),
		Notes(),
	)

	for _, parent := range []importers.Category{importers.CategoryParent1, importers.CategoryParent2} {
		list = append(list,
			FirstName(parent),
			LastName(parent),
			FullName(parent),
			Email(parent),
			Phone(parent, opts.Country),
		)
		list = append(list, addressMatchers(parent, opts.Country)...)
		list = append(list, NationalRegisterNumber(parent))
	}

	list = append(list,
		Group(opts.Period),
		PriceName(),
		Price(),
		StartDate(now),
		EndDate(now),
		PaidAmount(),
		Paid(),
	)

	return append(list, Records(opts.RecordCategories, opts.Country, now)...)
}

// addressMatchers lists the address matchers. A combined street and
// number column is preferred over a street only column.
func addressMatchers(category importers.Category, country string) []importers.ColumnMatcher {
	return []importers.ColumnMatcher{
		Address(category, country),
		StreetWithNumber(category),
		Street(category),
		PostalCode(category),
		City(category),
		Country(category),
		HouseNumber(category),
	}
}
