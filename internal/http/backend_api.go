package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mrlokans/memberimport/internal/apperrors"
	"github.com/mrlokans/memberimport/internal/backend"
	"github.com/mrlokans/memberimport/internal/entities"
	"github.com/mrlokans/memberimport/internal/importers"
	"github.com/mrlokans/memberimport/internal/logging"
)

// BackendController serves the members database to remote importers. It is
// the server side of backend.Remote.
type BackendController struct {
	backend *backend.Local
	logger  *zap.Logger
}

func NewBackendController(local *backend.Local, logger *zap.Logger) *BackendController {
	return &BackendController{
		backend: local,
		logger:  logging.OrNop(logger).Named("backend_api"),
	}
}

// GetMembers handles GET /api/members?organization_id=
func (bc *BackendController) GetMembers(c *gin.Context) {
	organizationID := c.Query("organization_id")
	if organizationID == "" {
		respondBadRequest(c, "organization_id is required")
		return
	}

	members, err := bc.backend.Members(c.Request.Context(), organizationID)
	if err != nil {
		respondError(c, bc.logger, err)
		return
	}
	if members == nil {
		members = []entities.Member{}
	}
	c.JSON(http.StatusOK, members)
}

// CreateMember handles POST /api/members
// The member always gets a new id.
func (bc *BackendController) CreateMember(c *gin.Context) {
	var member entities.Member
	if err := c.ShouldBindJSON(&member); err != nil {
		respondBadRequest(c, "invalid member")
		return
	}
	member.ID = ""
	member.Registrations = nil

	saved, err := bc.backend.SaveMember(c.Request.Context(), &member)
	if err != nil {
		respondError(c, bc.logger, err)
		return
	}
	c.JSON(http.StatusCreated, saved)
}

// UpdateMember handles PUT /api/members/:id
// An unknown id creates the member with that id, so a retried save of a new
// member never stores it twice.
func (bc *BackendController) UpdateMember(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	var member entities.Member
	if err := c.ShouldBindJSON(&member); err != nil {
		respondBadRequest(c, "invalid member")
		return
	}

	status := http.StatusOK
	existing, err := bc.backend.Member(ctx, id)
	switch {
	case err == nil:
		member.OrganizationID = existing.OrganizationID
	case apperrors.Is(err, apperrors.CodeNotFound):
		if member.OrganizationID == "" {
			respondError(c, bc.logger, apperrors.InvalidField("organization_id", "A new member needs an organization"))
			return
		}
		status = http.StatusCreated
	default:
		respondError(c, bc.logger, err)
		return
	}
	member.ID = id
	member.Registrations = nil

	saved, err := bc.backend.SaveMember(ctx, &member)
	if err != nil {
		respondError(c, bc.logger, err)
		return
	}
	c.JSON(status, saved)
}

// GetPeriod handles GET /api/periods/:id
func (bc *BackendController) GetPeriod(c *gin.Context) {
	period, err := bc.backend.Period(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, bc.logger, err)
		return
	}
	c.JSON(http.StatusOK, period)
}

// Register handles POST /api/members/register
func (bc *BackendController) Register(c *gin.Context) {
	var checkout importers.Checkout
	if err := c.ShouldBindJSON(&checkout); err != nil {
		respondBadRequest(c, "invalid checkout")
		return
	}
	if checkout.MemberID == "" {
		respondBadRequest(c, "member_id is required")
		return
	}

	registrations, err := bc.backend.Register(c.Request.Context(), checkout)
	if err != nil {
		respondError(c, bc.logger, err)
		return
	}
	c.JSON(http.StatusCreated, registrations)
}

// GetBalanceItems handles GET /api/receivable-balances/registration/:id
func (bc *BackendController) GetBalanceItems(c *gin.Context) {
	items, err := bc.backend.BalanceItems(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, bc.logger, err)
		return
	}
	if items == nil {
		items = []entities.BalanceItem{}
	}
	c.JSON(http.StatusOK, items)
}

// CreatePayments handles PATCH /api/organization/payments
func (bc *BackendController) CreatePayments(c *gin.Context) {
	var payments []importers.PaymentRequest
	if err := c.ShouldBindJSON(&payments); err != nil {
		respondBadRequest(c, "invalid payments")
		return
	}

	if err := bc.backend.CreatePayments(c.Request.Context(), payments); err != nil {
		respondError(c, bc.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
