package parsers

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mrlokans/memberimport/internal/apperrors"
)

var hundred = decimal.NewFromInt(100)

// ParsePrice parses an amount such as "€ 12,50", "12.50" or "1.250,00"
// and returns it in cents.
func ParsePrice(text string) (int64, error) {
	cleaned := strings.NewReplacer("€", "", "EUR", "", "eur", "", " ", "", "\u00a0", "").Replace(strings.TrimSpace(text))

	lastComma := strings.LastIndex(cleaned, ",")
	lastDot := strings.LastIndex(cleaned, ".")
	switch {
	case lastComma > lastDot:
		// 1.250,00 or 12,5
		cleaned = strings.ReplaceAll(cleaned, ".", "")
		cleaned = strings.Replace(cleaned, ",", ".", 1)
	case lastDot > lastComma && lastComma >= 0:
		// 1,250.00
		cleaned = strings.ReplaceAll(cleaned, ",", "")
	}

	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0, apperrors.InvalidType(fmt.Sprintf("'%s' is not a valid amount", strings.TrimSpace(text)))
	}
	return CentsFromDecimal(amount)
}

// PriceFromNumber converts a numeric spreadsheet cell to cents.
func PriceFromNumber(n float64) (int64, error) {
	return CentsFromDecimal(decimal.NewFromFloat(n))
}

// CentsFromDecimal rounds an amount to whole cents. Negative amounts are rejected.
func CentsFromDecimal(amount decimal.Decimal) (int64, error) {
	if amount.IsNegative() {
		return 0, apperrors.InvalidField("price", "An amount cannot be negative")
	}
	return amount.Mul(hundred).Round(0).IntPart(), nil
}

// FormatPrice formats cents as "€ 12,50".
func FormatPrice(cents int64) string {
	return "€ " + strings.Replace(decimal.New(cents, -2).StringFixed(2), ".", ",", 1)
}
