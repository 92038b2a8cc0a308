// Package apperrors provides coded, user-presentable errors.
//
// Every error that can reach a user carries a machine code (see the Code
// constants) and a human-readable message. Composite errors are built with
// go.uber.org/multierr and flattened for display with HumanMessage.
package apperrors

import (
	"errors"
	"strings"

	"go.uber.org/multierr"
)

// Code is a machine-readable error classification.
type Code string

const (
	// CodeInvalidType means the cell content does not parse as the expected type.
	CodeInvalidType Code = "invalid_type"
	// CodeInvalidField means a parsed value fails a semantic check.
	CodeInvalidField Code = "invalid_field"
	// CodeNotFound means a referenced entity (group, price, record) does not exist.
	CodeNotFound Code = "not_found"
	// CodeNoGroup means a new member has no group to be registered in.
	CodeNoGroup Code = "no_group"
	// CodeNoRegistration means the registration to pay for could not be found.
	CodeNoRegistration Code = "no_registration"
	// CodeInvalidState means the operation does not fit the current state,
	// for example committing an import that was not previewed.
	CodeInvalidState Code = "invalid_state"
)

// EmptyCellMessage is used for required cells that are absent or empty.
const EmptyCellMessage = "This cell is empty"

// Error is a coded error. Message is meant for logs, Human for people; when
// Human is empty Message is shown instead. Field optionally names the data
// field the error relates to (for example a record id).
type Error struct {
	Code    Code
	Message string
	Human   string
	Field   string
}

func (e *Error) Error() string {
	if e.Field != "" {
		return string(e.Code) + ": " + e.Message + " (field " + e.Field + ")"
	}
	return string(e.Code) + ": " + e.Message
}

// HumanText returns the message meant for end users.
func (e *Error) HumanText() string {
	if e.Human != "" {
		return e.Human
	}
	return e.Message
}

// New creates a coded error.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// InvalidType creates an invalid_type error.
func InvalidType(message string) *Error {
	return &Error{Code: CodeInvalidType, Message: message}
}

// InvalidField creates an invalid_field error for the given field.
func InvalidField(field, message string) *Error {
	return &Error{Code: CodeInvalidField, Message: message, Field: field}
}

// NotFound creates a not_found error.
func NotFound(message string) *Error {
	return &Error{Code: CodeNotFound, Message: message}
}

// InvalidState creates an invalid_state error.
func InvalidState(message string) *Error {
	return &Error{Code: CodeInvalidState, Message: message}
}

// EmptyCell is the error raised for required cells without content.
func EmptyCell() *Error {
	return InvalidType(EmptyCellMessage)
}

// CodeOf returns the code of the first coded error in err's chain, or "".
func CodeOf(err error) Code {
	var coded *Error
	if errors.As(err, &coded) {
		return coded.Code
	}
	return ""
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	return CodeOf(err) == code
}

// Append combines errors into a composite error. Nil errors are dropped.
func Append(left, right error) error {
	return multierr.Append(left, right)
}

// HumanMessage flattens err into a single display string. Composite errors
// are flattened recursively and their messages joined with single spaces.
func HumanMessage(err error) string {
	if err == nil {
		return ""
	}

	if parts := multierr.Errors(err); len(parts) > 1 {
		messages := make([]string, 0, len(parts))
		for _, part := range parts {
			if msg := HumanMessage(part); msg != "" {
				messages = append(messages, msg)
			}
		}
		return strings.Join(messages, " ")
	}

	var coded *Error
	if errors.As(err, &coded) {
		return coded.HumanText()
	}
	return err.Error()
}
