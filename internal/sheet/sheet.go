package sheet

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported spreadsheet format, use .xlsx or .csv")
	ErrEmptySheet        = errors.New("spreadsheet has no header row")
)

// Sheet is a header row followed by data rows. Data rows are 0-indexed;
// row 0 is the first line below the headers.
type Sheet struct {
	Name    string
	Headers []string
	Rows    [][]*Cell
}

// Cell returns the cell at (row, col) or nil when it does not exist.
func (s *Sheet) Cell(row, col int) *Cell {
	if row < 0 || row >= len(s.Rows) {
		return nil
	}
	cells := s.Rows[row]
	if col < 0 || col >= len(cells) {
		return nil
	}
	return cells[col]
}

// Examples returns up to limit non-empty displayed values of a column.
func (s *Sheet) Examples(col, limit int) []string {
	examples := make([]string, 0, limit)
	for row := range s.Rows {
		if len(examples) >= limit {
			break
		}
		if c := s.Cell(row, col); !c.IsEmpty() {
			examples = append(examples, c.Display())
		}
	}
	return examples
}

// CellAddress converts a 0-indexed data row and column to A1 notation.
// The header occupies spreadsheet row 1, so data row 0 is row 2.
func CellAddress(row, col int) string {
	name, err := excelize.CoordinatesToCellName(col+1, row+2)
	if err != nil {
		return fmt.Sprintf("R%dC%d", row+2, col+1)
	}
	return name
}

// Read picks a reader by file extension.
func Read(filename string, r io.Reader) (*Sheet, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		return ReadXLSX(r)
	case ".csv", ".txt":
		return ReadCSV(r)
	default:
		return nil, ErrUnsupportedFormat
	}
}

// trimTrailingEmpty drops trailing rows without any content.
func trimTrailingEmpty(rows [][]*Cell) [][]*Cell {
	for len(rows) > 0 {
		empty := true
		for _, c := range rows[len(rows)-1] {
			if !c.IsEmpty() {
				empty = false
				break
			}
		}
		if !empty {
			break
		}
		rows = rows[:len(rows)-1]
	}
	return rows
}
