// Package audit records what imports did to the member administration.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mrlokans/memberimport/internal/database/audit"
	"github.com/mrlokans/memberimport/internal/entities"
	"github.com/mrlokans/memberimport/internal/logging"
)

const entityImportSession = "import_session"

// Service provides high-level audit logging functionality.
type Service struct {
	repo   *audit.Repository
	logger *zap.Logger
	wg     sync.WaitGroup
}

// NewService creates a new audit service.
func NewService(repo *audit.Repository, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logging.OrNop(logger).Named("audit")}
}

// Log records a generic audit event.
func (s *Service) Log(ctx context.Context, event *entities.AuditEvent) error {
	return s.repo.LogEvent(ctx, event)
}

// LogAsync records an audit event in the background (non-blocking).
func (s *Service) LogAsync(event *entities.AuditEvent) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.repo.LogEvent(context.Background(), event); err != nil {
			s.logger.Warn("failed to log audit event",
				zap.String("event_type", string(event.EventType)),
				zap.Error(err),
			)
		}
	}()
}

// Wait blocks until all asynchronous events are written.
func (s *Service) Wait() {
	s.wg.Wait()
}

// LogUpload records an uploaded spreadsheet.
func (s *Service) LogUpload(organizationID, sessionID, fileName string, rows int, err error) {
	event := s.sessionEvent(organizationID, sessionID, entities.AuditEventImportUpload, "upload",
		fmt.Sprintf("Uploaded %s with %d rows", fileName, rows), err)
	event.Metadata = metadata(map[string]any{"file_name": fileName, "rows": rows})
	s.LogAsync(event)
}

// LogPreview records a preview run.
func (s *Service) LogPreview(organizationID, sessionID string, members, errorCount, probable int) {
	event := s.sessionEvent(organizationID, sessionID, entities.AuditEventImportPreview, "preview",
		fmt.Sprintf("Previewed %d members with %d errors", members, errorCount), nil)
	event.Metadata = metadata(map[string]any{"members": members, "errors": errorCount, "probable_duplicates": probable})
	s.LogAsync(event)
}

// LogCommit records a finished commit.
func (s *Service) LogCommit(organizationID, sessionID string, succeeded, failed int, err error) {
	event := s.sessionEvent(organizationID, sessionID, entities.AuditEventImportCommit, "commit",
		fmt.Sprintf("Imported %d members, %d failed", succeeded, failed), err)
	event.Metadata = metadata(map[string]any{"succeeded": succeeded, "failed": failed})
	if err == nil && failed > 0 {
		event.Status = entities.AuditStatusFailed
	}
	s.LogAsync(event)
}

// LogCleanup records a cleanup run, for example expired import sessions.
func (s *Service) LogCleanup(action string, removed int64, err error) {
	event := &entities.AuditEvent{
		EventType:   entities.AuditEventCleanup,
		Action:      action,
		Description: fmt.Sprintf("Removed %d items", removed),
		Status:      entities.AuditStatusSuccess,
	}
	if err != nil {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(err.Error(), 500)
	}
	s.LogAsync(event)
}

// GetEvents retrieves paginated audit events.
func (s *Service) GetEvents(ctx context.Context, filter audit.Filter) ([]entities.AuditEvent, int64, error) {
	return s.repo.GetEvents(ctx, filter)
}

// DeleteOldEvents removes events older than the specified duration.
func (s *Service) DeleteOldEvents(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	return s.repo.DeleteOldEvents(ctx, cutoff)
}

func (s *Service) sessionEvent(organizationID, sessionID string, eventType entities.AuditEventType, action, description string, err error) *entities.AuditEvent {
	event := &entities.AuditEvent{
		OrganizationID: organizationID,
		EventType:      eventType,
		Action:         action,
		Description:    truncate(description, 500),
		EntityType:     entityImportSession,
		EntityID:       sessionID,
		Status:         entities.AuditStatusSuccess,
	}
	if err != nil {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(err.Error(), 500)
	}
	return event
}

func metadata(values map[string]any) string {
	data, err := json.Marshal(values)
	if err != nil {
		return ""
	}
	return string(data)
}

// truncate shortens a string to max length.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
