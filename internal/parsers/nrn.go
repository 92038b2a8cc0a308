package parsers

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/mrlokans/memberimport/internal/apperrors"
)

// FieldNationalRegisterNumber is the field name used in invalid_field errors.
const FieldNationalRegisterNumber = "nationalRegisterNumber"

// NationalRegisterNumber is a validated Belgian national register number.
type NationalRegisterNumber struct {
	digits        string
	bornAfter2000 bool
}

// ParseNationalRegisterNumber validates the format and checksum of a Belgian
// national register number ("YY.MM.DD-XXX.CC"). When birthDay is not nil the
// date encoded in the number must match it.
func ParseNationalRegisterNumber(text string, birthDay *time.Time) (NationalRegisterNumber, error) {
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		if r == '.' || r == '-' || r == ' ' || r == '/' {
			return -1
		}
		return 'x'
	}, text)

	if len(digits) != 11 || strings.ContainsRune(digits, 'x') {
		return NationalRegisterNumber{}, apperrors.InvalidType("Invalid national register number. Use a format like 95.08.20-123.45")
	}

	base, _ := strconv.Atoi(digits[:9])
	check, _ := strconv.Atoi(digits[9:])

	nrn := NationalRegisterNumber{digits: digits}
	switch {
	case 97-base%97 == check:
	case 97-(2_000_000_000+base)%97 == check:
		nrn.bornAfter2000 = true
	default:
		return NationalRegisterNumber{}, apperrors.InvalidType("Invalid national register number. The check digits do not match")
	}

	if birthDay != nil {
		if encoded, ok := nrn.BirthDay(); ok && !sameDay(encoded, *birthDay) {
			return NationalRegisterNumber{}, apperrors.InvalidField(FieldNationalRegisterNumber, fmt.Sprintf(
				"The national register number does not match the birth day (%s)", birthDay.Format("02/01/2006"),
			))
		}
	}

	return nrn, nil
}

// BirthDay returns the birth day encoded in the number. It reports false
// when the number does not encode a full date.
func (n NationalRegisterNumber) BirthDay() (time.Time, bool) {
	if len(n.digits) != 11 {
		return time.Time{}, false
	}
	yy, _ := strconv.Atoi(n.digits[0:2])
	mm, _ := strconv.Atoi(n.digits[2:4])
	dd, _ := strconv.Atoi(n.digits[4:6])

	// BIS numbers add 20 or 40 to the month
	if mm > 40 {
		mm -= 40
	} else if mm > 20 {
		mm -= 20
	}
	if mm < 1 || mm > 12 || dd < 1 || dd > 31 {
		return time.Time{}, false
	}

	year := 1900 + yy
	if n.bornAfter2000 {
		year = 2000 + yy
	}
	return time.Date(year, time.Month(mm), dd, 0, 0, 0, 0, time.UTC), true
}

// String formats the number as YY.MM.DD-XXX.CC.
func (n NationalRegisterNumber) String() string {
	if len(n.digits) != 11 {
		return ""
	}
	d := n.digits
	return d[0:2] + "." + d[2:4] + "." + d[4:6] + "-" + d[6:9] + "." + d[9:11]
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
