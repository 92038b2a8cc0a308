package parsers

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/mrlokans/memberimport/internal/apperrors"
)

var validate = validator.New()

// ParseEmail validates an email address and returns it in lower case.
func ParseEmail(text string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(text))
	if err := validate.Var(email, "required,email"); err != nil {
		return "", apperrors.InvalidType(fmt.Sprintf("'%s' is not a valid email address", strings.TrimSpace(text)))
	}
	return email, nil
}
