package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mrlokans/memberimport/internal/apperrors"
	"github.com/mrlokans/memberimport/internal/backend"
)

// --- Response Types ---

// PaginatedResponse wraps paginated data with metadata.
type PaginatedResponse struct {
	Data       any   `json:"data"`
	Total      int64 `json:"total"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
	HasMore    bool  `json:"has_more"`
	TotalPages int   `json:"total_pages,omitempty"`
}

// --- Error Response Helpers ---

// statusFor maps an error to the HTTP status it is reported with.
func statusFor(err error) int {
	switch apperrors.CodeOf(err) {
	case apperrors.CodeNotFound:
		return http.StatusNotFound
	case apperrors.CodeInvalidState:
		return http.StatusConflict
	case apperrors.CodeInvalidType, apperrors.CodeInvalidField:
		return http.StatusBadRequest
	case apperrors.CodeNoGroup, apperrors.CodeNoRegistration:
		return http.StatusUnprocessableEntity
	}

	var serverErr *backend.ServerError
	switch {
	case errors.Is(err, backend.ErrInvalidToken), errors.As(err, &serverErr):
		return http.StatusBadGateway
	case errors.Is(err, backend.ErrRateLimited):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// respondError sends err as a backend.ErrorResponse. Internal errors are
// logged and not exposed to the client.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
	}
	if status == http.StatusInternalServerError {
		c.JSON(status, backend.ErrorResponse{Message: "internal server error"})
		return
	}
	c.JSON(status, backend.NewErrorResponse(err))
}

// respondBadRequest sends a 400 Bad Request response.
func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, backend.ErrorResponse{Code: apperrors.CodeInvalidType, Message: message})
}

// --- Parameter Parsing ---

// parseIndexParam extracts a non-negative integer from URL parameters.
// Returns the parsed value or responds with a 400 error and returns 0, false.
func parseIndexParam(c *gin.Context, paramName string) (int, bool) {
	value, err := strconv.Atoi(c.Param(paramName))
	if err != nil || value < 0 {
		respondBadRequest(c, "invalid "+paramName)
		return 0, false
	}
	return value, true
}

// parsePagination reads page and limit query parameters.
func parsePagination(c *gin.Context, defaultLimit, maxLimit int) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > maxLimit {
		limit = defaultLimit
	}
	return page, limit
}
