package entities

import "time"

type AuditEventType string

const (
	AuditEventImportUpload  AuditEventType = "import_upload"
	AuditEventImportPreview AuditEventType = "import_preview"
	AuditEventImportCommit  AuditEventType = "import_commit"
	AuditEventMemberSave    AuditEventType = "member_save"
	AuditEventRegistration  AuditEventType = "registration"
	AuditEventPayment       AuditEventType = "payment"
	AuditEventCleanup       AuditEventType = "cleanup"
)

type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusFailed  AuditStatus = "failed"
)

type AuditEvent struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	OrganizationID string         `gorm:"index;size:64" json:"organization_id"`
	EventType      AuditEventType `gorm:"index;size:50" json:"event_type"`
	Action         string         `gorm:"size:100" json:"action"`      // e.g., "commit", "upload"
	Description    string         `gorm:"size:500" json:"description"` // Human-readable summary
	EntityType     string         `gorm:"size:50" json:"entity_type"`  // "import_session", "member", etc.
	EntityID       string         `gorm:"index;size:36" json:"entity_id,omitempty"`
	Metadata       string         `gorm:"type:text" json:"metadata,omitempty"` // JSON for extra data
	Status         AuditStatus    `gorm:"size:20" json:"status"`
	ErrorMsg       string         `gorm:"size:500" json:"error_msg,omitempty"`
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`
}

func (AuditEvent) TableName() string {
	return "audit_events"
}
