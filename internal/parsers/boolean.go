package parsers

import (
	"fmt"

	"github.com/mrlokans/memberimport/internal/apperrors"
	"github.com/mrlokans/memberimport/internal/utils"
)

var booleanWords = map[string]bool{
	"x":                true,
	"1":                true,
	"ja":               true,
	"j":                true,
	"yes":              true,
	"y":                true,
	"true":             true,
	"waar":             true,
	"betaald":          true,
	"paid":             true,
	"0":                false,
	"nee":              false,
	"n":                false,
	"no":               false,
	"false":            false,
	"onwaar":           false,
	"niet betaald":     false,
	"nog niet betaald": false,
	"not paid":         false,
	"unpaid":           false,
}

// ParseBool maps yes/no style words to a boolean. Unknown text is an error.
func ParseBool(text string) (bool, error) {
	value, ok := booleanWords[utils.Fold(text)]
	if !ok {
		return false, apperrors.InvalidType(fmt.Sprintf("'%s' is not a valid value. Use 'ja' or 'nee'", text))
	}
	return value, nil
}
