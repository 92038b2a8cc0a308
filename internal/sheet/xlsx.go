package sheet

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// ReadXLSX reads the first worksheet of an XLSX workbook.
func ReadXLSX(r io.Reader) (*Sheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptySheet
	}
	name := sheets[0]

	formatted, err := f.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	raw, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read raw rows: %w", err)
	}
	if len(formatted) == 0 {
		return nil, ErrEmptySheet
	}

	s := &Sheet{Name: name}
	for _, h := range formatted[0] {
		s.Headers = append(s.Headers, strings.TrimSpace(h))
	}

	for i := 1; i < len(formatted); i++ {
		row := make([]*Cell, 0, len(formatted[i]))
		for j, display := range formatted[i] {
			rawValue := display
			if i < len(raw) && j < len(raw[i]) {
				rawValue = raw[i][j]
			}
			cell, err := readXLSXCell(f, name, i, j, rawValue, display)
			if err != nil {
				return nil, err
			}
			row = append(row, cell)
		}
		s.Rows = append(s.Rows, row)
	}
	s.Rows = trimTrailingEmpty(s.Rows)

	return s, nil
}

func readXLSXCell(f *excelize.File, sheetName string, row, col int, rawValue, display string) (*Cell, error) {
	if strings.TrimSpace(rawValue) == "" {
		return nil, nil
	}

	axis, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return nil, err
	}
	cellType, err := f.GetCellType(sheetName, axis)
	if err != nil {
		return nil, fmt.Errorf("failed to read cell %s: %w", axis, err)
	}

	switch cellType {
	case excelize.CellTypeBool:
		return &Cell{Type: CellBool, Text: rawValue, Formatted: display}, nil
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString:
		return &Cell{Type: CellString, Text: rawValue, Formatted: display}, nil
	case excelize.CellTypeDate:
		if t, err := time.Parse(time.RFC3339, rawValue); err == nil {
			return &Cell{Type: CellDate, Text: rawValue, Time: t, Formatted: display}, nil
		}
		if n, err := strconv.ParseFloat(rawValue, 64); err == nil {
			return NumberCell(n, display), nil
		}
	case excelize.CellTypeNumber, excelize.CellTypeUnset, excelize.CellTypeFormula:
		// Dates are usually stored as serial numbers with a date style;
		// parsers decode them from Number.
		if n, err := strconv.ParseFloat(rawValue, 64); err == nil {
			return NumberCell(n, display), nil
		}
	}
	return &Cell{Type: CellString, Text: rawValue, Formatted: display}, nil
}
