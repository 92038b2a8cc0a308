package importers

import (
	"errors"
	"fmt"
	"sort"

	"github.com/mrlokans/memberimport/internal/apperrors"
	"github.com/mrlokans/memberimport/internal/sheet"
)

var (
	// ErrNoGroup is returned by Import when a new member has no group to be registered in.
	ErrNoGroup = apperrors.New(apperrors.CodeNoGroup, "Some new members have no group. Add a group column or choose a group")
	// ErrNoRegistration is returned when a payment cannot be linked to a registration.
	ErrNoRegistration = apperrors.New(apperrors.CodeNoRegistration, "No registration found to link the payment to")
	ErrNoMember       = errors.New("member was not imported")
)

// ImportError is a cell level problem found while parsing. Row and Column
// are 0-indexed, Row 0 is the first row below the headers.
type ImportError struct {
	Row     int            `json:"row"`
	Column  int            `json:"column"`
	Cell    string         `json:"cell"`
	Code    apperrors.Code `json:"code"`
	Message string         `json:"message"`
}

func newImportError(row, column int, err error) ImportError {
	return ImportError{
		Row:     row,
		Column:  column,
		Cell:    sheet.CellAddress(row, column),
		Code:    apperrors.CodeOf(err),
		Message: apperrors.HumanMessage(err),
	}
}

func (e ImportError) Error() string {
	return fmt.Sprintf("%s: %s", e.Cell, e.Message)
}

func sortImportErrors(errs []ImportError) {
	sort.Slice(errs, func(i, j int) bool {
		if errs[i].Row != errs[j].Row {
			return errs[i].Row < errs[j].Row
		}
		return errs[i].Column < errs[j].Column
	})
}
