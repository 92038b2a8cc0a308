package sheet

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// ReadCSV reads a CSV file with a header row. Both comma and semicolon
// separated files are accepted; the separator is sniffed from the header.
// All cells are read as text.
func ReadCSV(r io.Reader) (*Sheet, error) {
	buffered := bufio.NewReader(r)
	firstLine, err := buffered.Peek(4096)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	reader := csv.NewReader(buffered)
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	reader.LazyQuotes = true
	reader.Comma = sniffSeparator(string(firstLine))

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrEmptySheet
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	s := &Sheet{Name: "csv"}
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		s.Headers = append(s.Headers, strings.TrimSpace(h))
	}

	lineNum := 1
	for {
		lineNum++
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}

		row := make([]*Cell, len(record))
		for i, value := range record {
			if strings.TrimSpace(value) != "" {
				row[i] = StringCell(value)
			}
		}
		s.Rows = append(s.Rows, row)
	}
	s.Rows = trimTrailingEmpty(s.Rows)

	return s, nil
}

func sniffSeparator(sample string) rune {
	if idx := strings.IndexAny(sample, "\r\n"); idx >= 0 {
		sample = sample[:idx]
	}
	if strings.Count(sample, ";") > strings.Count(sample, ",") {
		return ';'
	}
	return ','
}
