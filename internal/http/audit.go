package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mrlokans/memberimport/internal/audit"
	auditrepo "github.com/mrlokans/memberimport/internal/database/audit"
	"github.com/mrlokans/memberimport/internal/entities"
	"github.com/mrlokans/memberimport/internal/logging"
)

type AuditController struct {
	auditService   *audit.Service
	organizationID string
	logger         *zap.Logger
}

func NewAuditController(auditService *audit.Service, organizationID string, logger *zap.Logger) *AuditController {
	return &AuditController{
		auditService:   auditService,
		organizationID: organizationID,
		logger:         logging.OrNop(logger).Named("audit"),
	}
}

// GetAuditEvents returns paginated audit events as JSON
// GET /api/audit?type=import_commit&session_id=...&page=1&limit=25
func (ac *AuditController) GetAuditEvents(c *gin.Context) {
	page, limit := parsePagination(c, 25, 100)
	offset := (page - 1) * limit

	events, total, err := ac.auditService.GetEvents(c.Request.Context(), auditrepo.Filter{
		OrganizationID: ac.organizationID,
		EventType:      entities.AuditEventType(c.Query("type")),
		EntityID:       c.Query("session_id"),
		Limit:          limit,
		Offset:         offset,
	})
	if err != nil {
		respondError(c, ac.logger, err)
		return
	}
	if events == nil {
		events = []entities.AuditEvent{}
	}

	totalPages := (int(total) + limit - 1) / limit
	if totalPages < 1 {
		totalPages = 1
	}

	c.JSON(http.StatusOK, PaginatedResponse{
		Data:       events,
		Total:      total,
		Limit:      limit,
		Offset:     offset,
		HasMore:    int64(offset+len(events)) < total,
		TotalPages: totalPages,
	})
}
