package parsers

import (
	"fmt"

	"github.com/mrlokans/memberimport/internal/apperrors"
	"github.com/mrlokans/memberimport/internal/entities"
	"github.com/mrlokans/memberimport/internal/utils"
)

var genderWords = map[string]entities.Gender{
	"m":          entities.GenderMale,
	"man":        entities.GenderMale,
	"male":       entities.GenderMale,
	"mannelijk":  entities.GenderMale,
	"jongen":     entities.GenderMale,
	"boy":        entities.GenderMale,
	"h":          entities.GenderMale,
	"homme":      entities.GenderMale,
	"v":          entities.GenderFemale,
	"f":          entities.GenderFemale,
	"vrouw":      entities.GenderFemale,
	"female":     entities.GenderFemale,
	"vrouwelijk": entities.GenderFemale,
	"meisje":     entities.GenderFemale,
	"girl":       entities.GenderFemale,
	"femme":      entities.GenderFemale,
	"x":          entities.GenderOther,
	"ander":      entities.GenderOther,
	"anders":     entities.GenderOther,
	"other":      entities.GenderOther,
}

// ParseGender maps Dutch, English and French gender words.
func ParseGender(text string) (entities.Gender, error) {
	gender, ok := genderWords[utils.Fold(text)]
	if !ok {
		return "", apperrors.InvalidType(fmt.Sprintf("'%s' is not a valid gender. Use M, V or X", text))
	}
	return gender, nil
}
