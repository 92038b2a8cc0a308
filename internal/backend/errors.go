package backend

import (
	"errors"
	"fmt"

	"github.com/mrlokans/memberimport/internal/apperrors"
)

// ErrInvalidToken indicates the backend API rejected the token
var ErrInvalidToken = errors.New("invalid or expired backend API token")

// ErrRateLimited indicates the backend API rate limit was exceeded
var ErrRateLimited = errors.New("backend API rate limit exceeded")

// ServerError represents a 5xx error from the backend API
type ServerError struct {
	StatusCode int
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("backend server error: HTTP %d", e.StatusCode)
}

// RequestError is a rejected request. The coded error sent by the API is
// available through errors.As.
type RequestError struct {
	StatusCode int
	Err        *apperrors.Error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("backend rejected request (HTTP %d): %s", e.StatusCode, e.Err.Error())
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// ErrorResponse is the body of a failed backend API call.
type ErrorResponse struct {
	Code    apperrors.Code `json:"code"`
	Message string         `json:"message"`
	Field   string         `json:"field,omitempty"`
}

// NewErrorResponse converts err for the wire. Uncoded errors keep only
// their message.
func NewErrorResponse(err error) ErrorResponse {
	var coded *apperrors.Error
	if errors.As(err, &coded) {
		return ErrorResponse{Code: coded.Code, Message: coded.HumanText(), Field: coded.Field}
	}
	return ErrorResponse{Message: err.Error()}
}

func (r ErrorResponse) toError() *apperrors.Error {
	return &apperrors.Error{Code: r.Code, Message: r.Message, Field: r.Field}
}

func isRetryableError(err error, idempotent bool) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var serverErr *ServerError
	return idempotent && errors.As(err, &serverErr)
}
