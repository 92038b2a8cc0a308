package parsers

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/mrlokans/memberimport/internal/apperrors"
	"github.com/mrlokans/memberimport/internal/utils"
)

// MaxAge is the oldest age (in years) accepted for a four digit year.
const MaxAge = 125

var numericPart = regexp.MustCompile(`^\s*[0-9]+\s*$`)

const invalidDateMessage = "Invalid date. Use a format like 20/08/1995"

// Month names per locale and length. Lookup stops at the first list that
// yields a match, so long names are preferred over abbreviations.
var monthLists = [][]string{
	{"januari", "februari", "maart", "april", "mei", "juni", "juli", "augustus", "september", "oktober", "november", "december"},
	{"january", "february", "march", "april", "may", "june", "july", "august", "september", "october", "november", "december"},
	{"jan", "feb", "mrt", "apr", "mei", "jun", "jul", "aug", "sep", "okt", "nov", "dec"},
	{"jan", "feb", "mar", "apr", "may", "jun", "jul", "aug", "sep", "oct", "nov", "dec"},
}

// Month typo tolerance. Names longer than monthTypoMinLength may differ by
// up to maxMonthTypos edits, shorter names must match exactly.
const (
	maxMonthTypos      = 2
	monthTypoMinLength = 3
)

// ParseDate parses free text such as "10/5/2018", "2018-05-10",
// "10 mei 2018" or "10.05.18". now provides the current year used to
// validate four digit years and to resolve two digit years.
func ParseDate(text string, now time.Time) (time.Time, error) {
	sep, ok := dateSeparator(text)
	if !ok {
		return time.Time{}, apperrors.InvalidType(invalidDateMessage)
	}

	parts := strings.Split(strings.TrimSpace(text), sep)
	if len(parts) != 3 {
		return time.Time{}, apperrors.InvalidType(invalidDateMessage)
	}

	numbers := make([]int, 0, 3)
	hadMonth := false
	for _, part := range parts {
		if numericPart.MatchString(part) {
			n, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil {
				return time.Time{}, apperrors.InvalidType(invalidDateMessage)
			}
			numbers = append(numbers, n)
			continue
		}

		if hadMonth {
			return time.Time{}, apperrors.InvalidType(invalidDateMessage)
		}
		hadMonth = true

		month, err := ParseMonth(part)
		if err != nil {
			return time.Time{}, err
		}
		numbers = append(numbers, month)
	}

	currentYear := now.Year()

	// Year first: 2018-05-10
	if first := numbers[0]; first > 999 {
		if err := validateYear(first, currentYear); err != nil {
			return time.Time{}, err
		}
		return buildDate(first, numbers[1], numbers[2])
	}

	// Year last: 10/05/2018
	last := numbers[2]
	if last > 999 {
		if err := validateYear(last, currentYear); err != nil {
			return time.Time{}, err
		}
		return buildDate(last, numbers[1], numbers[0])
	}

	if last > 99 {
		return time.Time{}, apperrors.InvalidType("Invalid year. Use a format like 20/08/1995")
	}

	return buildDate(ResolveTwoDigitYear(last, currentYear), numbers[1], numbers[0])
}

// ResolveTwoDigitYear maps a two digit year to the nearest century that does
// not lie in the future: with current year 2024, 24 becomes 2024 and 25 becomes 1925.
func ResolveTwoDigitYear(yy, currentYear int) int {
	if yy > currentYear-2000 {
		return 1900 + yy
	}
	return 2000 + yy
}

// ParseExcelDate decodes an Excel 1900 date system serial number (days
// since 1899-12-30). The fractional part is the time of day.
func ParseExcelDate(serial float64) time.Time {
	if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
		return t.UTC()
	}
	// Negative serials are rejected by excelize.
	const unixEpochSerial = 25569
	seconds := math.Round((serial - unixEpochSerial) * 86400)
	return time.Unix(int64(seconds), 0).UTC()
}

// ParseMonth resolves a month name, tolerating small typos, to 1..12.
func ParseMonth(text string) (int, error) {
	candidate := utils.Fold(text)

	for _, names := range monthLists {
		best := -1
		bestScore := 0
		for index, name := range names {
			typos := utils.TypoCount(name, candidate)
			acceptable := typos == 0 || (typos <= maxMonthTypos && len(name) > monthTypoMinLength)
			if acceptable && (best == -1 || typos < bestScore) {
				best = index
				bestScore = typos
			}
		}
		if best != -1 {
			return best + 1, nil
		}
	}

	return 0, apperrors.InvalidType(fmt.Sprintf("Invalid date. Could not convert '%s' to a month", strings.TrimSpace(text)))
}

func dateSeparator(text string) (string, bool) {
	for _, sep := range []string{"/", "-", ".", " "} {
		if strings.Contains(strings.TrimSpace(text), sep) {
			return sep, true
		}
	}
	return "", false
}

func validateYear(year, currentYear int) error {
	if year < currentYear-MaxAge || year > currentYear {
		return apperrors.InvalidType(fmt.Sprintf("Invalid year. '%d' is not a valid year. Use a format like 20/08/1995", year))
	}
	return nil
}

// buildDate validates month and day ranges and returns a UTC calendar date. Days are not checked against
// the month length, so 31/02 rolls over like a calendar would.
func buildDate(year, month, day int) (time.Time, error) {
	if month < 1 || month > 12 {
		return time.Time{}, apperrors.InvalidType(fmt.Sprintf("Invalid date. '%d' is not a valid month. Use a format like 20/08/1995", month))
	}
	if day < 1 || day > 31 {
		return time.Time{}, apperrors.InvalidType(fmt.Sprintf("Invalid date. '%d' is not a valid day. Use a format like 20/08/1995", day))
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), nil
}

// DateOnly truncates t to midnight UTC of the same calendar day.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
