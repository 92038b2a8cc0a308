package importers

import (
	"github.com/mrlokans/memberimport/internal/sheet"
)

// ExampleCount is the number of sample values shown to matchers.
const ExampleCount = 5

// ColumnMatcher maps one spreadsheet column to one field. Implementations
// are shared by all rows and must not keep per-row state.
type ColumnMatcher interface {
	// ID is a stable identifier, unique per matcher set.
	ID() string
	// Name is the field name shown to users.
	Name() string
	Category() Category
	// Required matchers reject empty cells.
	Required() bool
	// DoesMatch decides from the header and a few example values whether
	// the column holds this field.
	DoesMatch(header string, examples []string) bool
	// Apply parses the cell and merges the value into result. An empty cell
	// is an error for required matchers and a no-op otherwise.
	Apply(cell *sheet.Cell, result *ImportMemberResult) error
}

// BaseMatcher is implemented by matchers of identity fields. ApplyBase runs
// during the identity pass, before the existing member is known.
type BaseMatcher interface {
	ColumnMatcher
	ApplyBase(cell *sheet.Cell, base *ImportMemberBaseResult) error
}

// MatchedColumn binds a spreadsheet column to at most one matcher.
type MatchedColumn struct {
	Index    int           `json:"index"`
	Header   string        `json:"header"`
	Examples []string      `json:"examples"`
	Matcher  ColumnMatcher `json:"-"`
}

// MatcherID returns the id of the selected matcher or "".
func (c *MatchedColumn) MatcherID() string {
	if c.Matcher == nil {
		return ""
	}
	return c.Matcher.ID()
}

// DetectColumns selects a matcher for every column. Matchers are tried in
// list order and the first one that accepts the column wins. A matcher is
// only auto-selected for the first column it accepts.
func DetectColumns(s *sheet.Sheet, matchers []ColumnMatcher) []*MatchedColumn {
	used := make(map[string]bool)
	columns := make([]*MatchedColumn, 0, len(s.Headers))

	for index, header := range s.Headers {
		column := &MatchedColumn{
			Index:    index,
			Header:   header,
			Examples: s.Examples(index, ExampleCount),
		}
		for _, m := range matchers {
			if used[m.ID()] {
				continue
			}
			if m.DoesMatch(header, column.Examples) {
				column.Matcher = m
				used[m.ID()] = true
				break
			}
		}
		columns = append(columns, column)
	}

	return columns
}

// FindMatcher returns the matcher with the given id.
func FindMatcher(matchers []ColumnMatcher, id string) (ColumnMatcher, bool) {
	for _, m := range matchers {
		if m.ID() == id {
			return m, true
		}
	}
	return nil, false
}
