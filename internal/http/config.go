package http

import (
	"go.uber.org/zap"

	"github.com/mrlokans/memberimport/internal/audit"
	"github.com/mrlokans/memberimport/internal/auth"
	"github.com/mrlokans/memberimport/internal/backend"
	"github.com/mrlokans/memberimport/internal/database"
	"github.com/mrlokans/memberimport/internal/services"
	"github.com/mrlokans/memberimport/internal/tasks"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	ImportService *services.ImportService
	Database      *database.Database
	AuditService  *audit.Service

	// Local members database served to remote importers. Nil when this
	// instance itself imports into a remote backend.
	Backend *backend.Local

	// Bearer token for the backend API; empty leaves it unmounted.
	APIToken string

	// Locks out clients presenting wrong tokens. Optional.
	RateLimiter *auth.RateLimiter

	// Task queue (nil when disabled)
	TaskClient *tasks.Client

	OrganizationID string
	MaxUploadBytes int64

	// Application info
	Version string

	Logger *zap.Logger
}
