package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mrlokans/memberimport/internal/apperrors"
	"github.com/mrlokans/memberimport/internal/backend"
	"github.com/mrlokans/memberimport/internal/logging"
	"github.com/mrlokans/memberimport/internal/services"
)

// ImportsController drives import sessions: upload, column mapping,
// preview, duplicate decisions and commit.
type ImportsController struct {
	service        *services.ImportService
	maxUploadBytes int64
	logger         *zap.Logger
}

func NewImportsController(service *services.ImportService, maxUploadBytes int64, logger *zap.Logger) *ImportsController {
	return &ImportsController{
		service:        service,
		maxUploadBytes: maxUploadBytes,
		logger:         logging.OrNop(logger).Named("imports"),
	}
}

// UploadResponse is a new session together with the column types a
// column can be mapped to.
type UploadResponse struct {
	*services.SessionView
	Matchers []services.MatcherView `json:"matchers"`
}

type SetColumnRequest struct {
	MatcherID string `json:"matcher_id"`
}

type DecideRequest struct {
	Equal *bool `json:"equal" binding:"required"`
}

type CommitRequest struct {
	WaitingList bool  `json:"waiting_list"`
	Paid        *bool `json:"paid"`
}

// Matchers handles GET /api/matchers
func (ic *ImportsController) Matchers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"matchers": ic.service.Matchers()})
}

// Upload handles POST /api/imports
// Expects a multipart form with a "file" (.xlsx or .csv) and an optional
// "period_id".
func (ic *ImportsController) Upload(c *gin.Context) {
	if ic.maxUploadBytes > 0 {
		if c.Request.ContentLength > ic.maxUploadBytes {
			respondTooLarge(c)
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, ic.maxUploadBytes)
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondTooLarge(c)
			return
		}
		respondBadRequest(c, "file is required")
		return
	}
	defer file.Close()

	view, err := ic.service.Upload(c.Request.Context(), header.Filename, file, c.PostForm("period_id"))
	if err != nil {
		respondError(c, ic.logger, err)
		return
	}

	c.JSON(http.StatusCreated, UploadResponse{
		SessionView: view,
		Matchers:    ic.service.Matchers(),
	})
}

// GetSession handles GET /api/imports/:id
func (ic *ImportsController) GetSession(c *gin.Context) {
	view, err := ic.service.Session(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, ic.logger, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// SetColumn handles PUT /api/imports/:id/columns/:index
// An empty matcher_id leaves the column unmatched.
func (ic *ImportsController) SetColumn(c *gin.Context) {
	index, ok := parseIndexParam(c, "index")
	if !ok {
		return
	}

	var req SetColumnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	view, err := ic.service.SetColumn(c.Request.Context(), c.Param("id"), index, req.MatcherID)
	if err != nil {
		respondError(c, ic.logger, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Preview handles POST /api/imports/:id/preview
func (ic *ImportsController) Preview(c *gin.Context) {
	preview, err := ic.service.Preview(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, ic.logger, err)
		return
	}
	c.JSON(http.StatusOK, preview)
}

// Decide handles POST /api/imports/:id/existing/:row
// Confirms (equal: true) or denies a probable duplicate.
func (ic *ImportsController) Decide(c *gin.Context) {
	row, ok := parseIndexParam(c, "row")
	if !ok {
		return
	}

	var req DecideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "equal is required")
		return
	}

	preview, err := ic.service.Decide(c.Request.Context(), c.Param("id"), row, *req.Equal)
	if err != nil {
		respondError(c, ic.logger, err)
		return
	}
	c.JSON(http.StatusOK, preview)
}

// DecideAll handles POST /api/imports/:id/existing
func (ic *ImportsController) DecideAll(c *gin.Context) {
	var req DecideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "equal is required")
		return
	}

	preview, err := ic.service.DecideAll(c.Request.Context(), c.Param("id"), *req.Equal)
	if err != nil {
		respondError(c, ic.logger, err)
		return
	}
	c.JSON(http.StatusOK, preview)
}

// Commit handles POST /api/imports/:id/commit
// Responds 202 with the task id when the commit runs in the background and
// 200 with the row reports otherwise.
func (ic *ImportsController) Commit(c *gin.Context) {
	var req CommitRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, "invalid request body")
			return
		}
	}

	result, err := ic.service.Commit(c.Request.Context(), c.Param("id"), services.CommitRequest{
		WaitingList: req.WaitingList,
		Paid:        req.Paid,
	})
	if err != nil {
		respondError(c, ic.logger, err)
		return
	}

	if result.TaskID != "" {
		c.JSON(http.StatusAccepted, result)
		return
	}
	c.JSON(http.StatusOK, result)
}

func respondTooLarge(c *gin.Context) {
	c.JSON(http.StatusRequestEntityTooLarge, backend.ErrorResponse{
		Code:    apperrors.CodeInvalidField,
		Message: "The file is too large",
		Field:   "file",
	})
}
