package interfaces

// Compile-time checks that the concrete types wired in entrypoint satisfy
// the interfaces their consumers declare.

import (
	"github.com/mrlokans/memberimport/internal/audit"
	"github.com/mrlokans/memberimport/internal/backend"
	"github.com/mrlokans/memberimport/internal/http"
	"github.com/mrlokans/memberimport/internal/importers"
	"github.com/mrlokans/memberimport/internal/scheduler"
	"github.com/mrlokans/memberimport/internal/services"
	"github.com/mrlokans/memberimport/internal/tasks"
)

// =============================================================================
// Members Backend
// =============================================================================

var _ importers.Backend = (*backend.Local)(nil)
var _ importers.Backend = (*backend.Remote)(nil)

// =============================================================================
// Import Service
// =============================================================================

var _ services.Auditor = (*audit.Service)(nil)
var _ services.CommitEnqueuer = (*tasks.Client)(nil)

// =============================================================================
// Background Work
// =============================================================================

var _ tasks.ImportCommitter = (*services.ImportService)(nil)
var _ tasks.AuditEventCleaner = (*audit.Service)(nil)
var _ scheduler.SessionExpirer = (*services.ImportService)(nil)
var _ scheduler.CleanupAuditor = (*audit.Service)(nil)
var _ http.TaskStatusReader = (*tasks.Client)(nil)
