package http

import (
	"database/sql"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/memberimport/internal/auth"
	"github.com/mrlokans/memberimport/internal/logging"
)

// NewRouter creates and configures the HTTP router with all endpoints.
// Uses RouterConfig to receive all dependencies.
func NewRouter(cfg RouterConfig) *gin.Engine {
	logger := logging.OrNop(cfg.Logger).Named("http")

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Apply security headers to all responses
	router.Use(auth.SecurityHeadersMiddleware())
	router.Use(auth.StrictTransportSecurityMiddleware())

	if cfg.MaxUploadBytes > 0 {
		router.MaxMultipartMemory = cfg.MaxUploadBytes
	}

	var queueDB *sql.DB
	if cfg.TaskClient != nil {
		queueDB = cfg.TaskClient.DB()
	}
	health := NewHealthController(cfg.Database, queueDB, cfg.Version)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", health.Ping)

	api := router.Group("/api")

	// Import session endpoints
	if cfg.ImportService != nil {
		imports := NewImportsController(cfg.ImportService, cfg.MaxUploadBytes, logger)
		api.GET("/matchers", imports.Matchers)
		api.POST("/imports", imports.Upload)
		api.GET("/imports/:id", imports.GetSession)
		api.PUT("/imports/:id/columns/:index", imports.SetColumn)
		api.POST("/imports/:id/preview", imports.Preview)
		api.POST("/imports/:id/existing", imports.DecideAll)
		api.POST("/imports/:id/existing/:row", imports.Decide)
		api.POST("/imports/:id/commit", imports.Commit)
	}

	// Backend API consumed by remote importers
	if cfg.Backend != nil && cfg.APIToken != "" {
		backendAPI := router.Group("/api", auth.NewMiddleware(cfg.APIToken, cfg.RateLimiter, logger).Handler())
		members := NewBackendController(cfg.Backend, logger)
		backendAPI.GET("/members", members.GetMembers)
		backendAPI.POST("/members", members.CreateMember)
		backendAPI.PUT("/members/:id", members.UpdateMember)
		backendAPI.POST("/members/register", members.Register)
		backendAPI.GET("/periods/:id", members.GetPeriod)
		backendAPI.GET("/receivable-balances/registration/:id", members.GetBalanceItems)
		backendAPI.PATCH("/organization/payments", members.CreatePayments)
	}

	// Task management endpoints
	if cfg.TaskClient != nil {
		tasksController := NewTasksController(cfg.TaskClient, logger)
		api.GET("/tasks/:id", tasksController.GetTaskStatus)
	}

	// Audit log
	if cfg.AuditService != nil {
		auditController := NewAuditController(cfg.AuditService, cfg.OrganizationID, logger)
		api.GET("/audit", auditController.GetAuditEvents)
	}

	return router
}
