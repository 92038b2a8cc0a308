package entities

import (
	"time"
)

type ImportStatus string

const (
	ImportStatusUploaded   ImportStatus = "uploaded"
	ImportStatusPreviewed  ImportStatus = "previewed"
	ImportStatusCommitting ImportStatus = "committing"
	ImportStatusCompleted  ImportStatus = "completed"
	ImportStatusFailed     ImportStatus = "failed"
	ImportStatusExpired    ImportStatus = "expired"
)

// ImportSession tracks the progress of one spreadsheet import. The parsed
// rows live in memory; this record survives restarts for reporting.
type ImportSession struct {
	ID             string       `gorm:"primaryKey;size:36" json:"id"`
	OrganizationID string       `gorm:"index;size:64" json:"organization_id"`
	PeriodID       string       `gorm:"size:36" json:"period_id"`
	FileName       string       `gorm:"size:512" json:"file_name"`
	Status         ImportStatus `gorm:"index;size:20" json:"status"`
	TotalRows      int          `json:"total_rows"`
	Processed      int          `json:"processed"`
	Succeeded      int          `json:"succeeded"`
	Failed         int          `json:"failed"`
	CurrentMember  string       `gorm:"size:512" json:"current_member,omitempty"`
	TaskID         string       `gorm:"size:64" json:"task_id,omitempty"`
	Error          string       `gorm:"type:text" json:"error,omitempty"`
	StartedAt      time.Time    `json:"started_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
	CompletedAt    *time.Time   `json:"completed_at,omitempty"`
}

func (ImportSession) TableName() string {
	return "import_sessions"
}

func (s ImportSession) IsFinished() bool {
	return s.Status == ImportStatusCompleted || s.Status == ImportStatusFailed || s.Status == ImportStatusExpired
}
