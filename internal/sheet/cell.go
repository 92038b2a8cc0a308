// Package sheet holds the in-memory spreadsheet model used by the importer
// and the readers that produce it from XLSX and CSV uploads.
package sheet

import (
	"strconv"
	"strings"
	"time"
)

// CellType is the storage type declared by the spreadsheet for a cell.
type CellType int

const (
	CellEmpty CellType = iota
	CellString
	CellNumber
	CellDate
	CellBool
)

func (t CellType) String() string {
	switch t {
	case CellString:
		return "string"
	case CellNumber:
		return "number"
	case CellDate:
		return "date"
	case CellBool:
		return "bool"
	default:
		return "empty"
	}
}

// Cell is an immutable spreadsheet cell. Text is the raw stored value,
// Formatted the value as displayed by the spreadsheet (may be empty).
type Cell struct {
	Type      CellType
	Text      string
	Number    float64
	Time      time.Time
	Formatted string
}

// StringCell builds a text cell.
func StringCell(text string) *Cell {
	return &Cell{Type: CellString, Text: text}
}

// NumberCell builds a numeric cell; formatted is the displayed value.
func NumberCell(n float64, formatted string) *Cell {
	return &Cell{
		Type:      CellNumber,
		Text:      strconv.FormatFloat(n, 'f', -1, 64),
		Number:    n,
		Formatted: formatted,
	}
}

// DateCell builds a date cell.
func DateCell(t time.Time) *Cell {
	return &Cell{Type: CellDate, Text: t.Format(time.RFC3339), Time: t}
}

// IsEmpty reports whether c is nil or holds only whitespace.
func (c *Cell) IsEmpty() bool {
	if c == nil || c.Type == CellEmpty {
		return true
	}
	return c.Type == CellString && strings.TrimSpace(c.Text) == ""
}

// Display returns the formatted value when present, the raw text otherwise.
func (c *Cell) Display() string {
	if c == nil {
		return ""
	}
	if c.Formatted != "" {
		return strings.TrimSpace(c.Formatted)
	}
	return strings.TrimSpace(c.Text)
}
