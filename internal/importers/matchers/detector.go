// Package matchers holds the column matchers for every importable field.
package matchers

import (
	"regexp"
	"strings"
	"time"

	"github.com/mrlokans/memberimport/internal/apperrors"
	"github.com/mrlokans/memberimport/internal/importers"
	"github.com/mrlokans/memberimport/internal/parsers"
	"github.com/mrlokans/memberimport/internal/sheet"
	"github.com/mrlokans/memberimport/internal/utils"
)

var parenthetical = regexp.MustCompile(`\([^)]*\)`)

// Header words that mark a parent column, and the ones for the second parent.
var (
	parentWords       = []string{"ouder", "parent", "mama", "papa", "moeder", "vader", "voogd", "tuteur", "guardian"}
	secondParentWords = []string{"2", "tweede", "second", "deuxieme"}
	notFirstParent    = append([]string{"lid", "member"}, secondParentWords...)
)

// detector holds the configuration shared by all matchers: identity and
// the header rules used by DoesMatch.
type detector struct {
	id       string
	name     string
	category importers.Category
	required bool
	// keywords accept a header that contains any of them
	keywords []string
	// negative rejects a header that contains any of them
	negative []string
	// context requires every group to have at least one word in the header
	context [][]string
	// shape checks example values before a keyword match is accepted
	shape func(examples []string) bool
}

// Option changes a matcher's configuration.
type Option func(*detector)

// Required makes empty cells an error.
func Required() Option {
	return func(d *detector) {
		d.required = true
	}
}

// Optional makes empty cells a no-op.
func Optional() Option {
	return func(d *detector) {
		d.required = false
	}
}

func (d detector) ID() string {
	return d.id
}

func (d detector) Name() string {
	return d.name
}

func (d detector) Category() importers.Category {
	return d.category
}

func (d detector) Required() bool {
	return d.required
}

func (d detector) DoesMatch(header string, examples []string) bool {
	cleaned := utils.Fold(header)
	if cleaned == "" {
		return false
	}

	if containsAny(cleaned, d.negative) {
		return false
	}
	for _, group := range d.context {
		if !containsAny(cleaned, group) {
			return false
		}
	}

	canonical := utils.Fold(parenthetical.ReplaceAllString(d.name, ""))
	named := canonical != "" && strings.Contains(cleaned, canonical)
	if !named && !containsAny(cleaned, d.keywords) {
		return false
	}
	// The shape also gates the canonical name, so "Address" over
	// "Kerkstraat 12" is left to the street matchers.
	return d.shape == nil || d.shape(examples)
}

// text returns the displayed cell text. ok is false for empty cells, which
// are an error when the matcher is required.
func (d detector) text(cell *sheet.Cell) (value string, ok bool, err error) {
	if cell.IsEmpty() {
		if d.required {
			return "", false, apperrors.EmptyCell()
		}
		return "", false, nil
	}
	return cell.Display(), true, nil
}

// date reads a date cell: a real date, an Excel serial number or free text.
func (d detector) date(cell *sheet.Cell, now time.Time) (*time.Time, error) {
	text, ok, err := d.text(cell)
	if !ok {
		return nil, err
	}

	var parsed time.Time
	switch cell.Type {
	case sheet.CellDate:
		parsed = parsers.DateOnly(cell.Time)
	case sheet.CellNumber:
		parsed = parsers.DateOnly(parsers.ParseExcelDate(cell.Number))
	default:
		parsed, err = parsers.ParseDate(text, now)
		if err != nil {
			return nil, err
		}
	}
	return &parsed, nil
}

// price reads an amount in cents from a number or text cell.
func (d detector) price(cell *sheet.Cell) (*int64, error) {
	text, ok, err := d.text(cell)
	if !ok {
		return nil, err
	}

	var cents int64
	if cell.Type == sheet.CellNumber {
		cents, err = parsers.PriceFromNumber(cell.Number)
	} else {
		cents, err = parsers.ParsePrice(text)
	}
	if err != nil {
		return nil, err
	}
	return &cents, nil
}

// boolean reads a yes/no cell.
func (d detector) boolean(cell *sheet.Cell) (*bool, error) {
	text, ok, err := d.text(cell)
	if !ok {
		return nil, err
	}
	value, err := parsers.ParseBool(text)
	if err != nil {
		return nil, err
	}
	return &value, nil
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// anyHasDigit reports whether at least one example contains a digit.
func anyHasDigit(examples []string) bool {
	for _, e := range examples {
		if utils.ContainsDigit(e) {
			return true
		}
	}
	return false
}

// allHaveDigit reports whether there are examples and all contain a digit.
func allHaveDigit(examples []string) bool {
	if len(examples) == 0 {
		return false
	}
	for _, e := range examples {
		if !utils.ContainsDigit(e) {
			return false
		}
	}
	return true
}

func anyHasComma(examples []string) bool {
	for _, e := range examples {
		if strings.Contains(e, ",") {
			return true
		}
	}
	return false
}

// personDetector configures a member or parent field. Parent fields need a
// parent word in the header; member fields reject it.
func personDetector(field, name string, category importers.Category, keywords []string, opts ...Option) detector {
	d := detector{
		id:       category.String() + "." + field,
		name:     name,
		category: category,
		keywords: keywords,
	}
	switch category.Kind {
	case importers.KindMember:
		d.negative = parentWords
	case importers.KindParent1:
		d.name = name + " (parent 1)"
		d.context = [][]string{parentWords}
		d.negative = notFirstParent
	case importers.KindParent2:
		d.name = name + " (parent 2)"
		d.context = [][]string{parentWords, secondParentWords}
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}
