// Package sessions provides database operations for import session progress.
//
// The parsed spreadsheet of a session lives in memory; this repository keeps
// the status and counters so progress can be polled and reported after a
// restart.
//
// # Usage
//
//	repo := sessions.NewRepository(db)
//	session, err := repo.Create(ctx, organizationID, periodID, "leden.xlsx", rows)
//	err = repo.StartCommit(ctx, session.ID, taskID)
package sessions

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mrlokans/memberimport/internal/entities"
)

var ErrNotFound = errors.New("import session not found")

// staleAfter marks a committing session as interrupted when it was not
// updated for this long.
const staleAfter = 10 * time.Minute

type Repository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db, now: time.Now}
}

// Create stores a new uploaded session.
func (r *Repository) Create(ctx context.Context, organizationID, periodID, fileName string, totalRows int) (*entities.ImportSession, error) {
	now := r.now()
	session := &entities.ImportSession{
		ID:             uuid.NewString(),
		OrganizationID: organizationID,
		PeriodID:       periodID,
		FileName:       fileName,
		Status:         entities.ImportStatusUploaded,
		TotalRows:      totalRows,
		StartedAt:      now,
		UpdatedAt:      now,
	}
	if err := r.db.WithContext(ctx).Create(session).Error; err != nil {
		return nil, err
	}
	return session, nil
}

func (r *Repository) Get(ctx context.Context, id string) (*entities.ImportSession, error) {
	var session entities.ImportSession
	err := r.db.WithContext(ctx).First(&session, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// List returns the organization's sessions, newest first.
func (r *Repository) List(ctx context.Context, organizationID string, limit int) ([]entities.ImportSession, error) {
	if limit <= 0 {
		limit = 50
	}
	var list []entities.ImportSession
	err := r.db.WithContext(ctx).
		Where("organization_id = ?", organizationID).
		Order("started_at DESC").
		Limit(limit).
		Find(&list).Error
	return list, err
}

// SetStatus changes the status of a session that is not finished.
func (r *Repository) SetStatus(ctx context.Context, id string, status entities.ImportStatus) error {
	return r.update(ctx, id, map[string]any{"status": status})
}

// StartCommit resets the counters and marks the session as committing.
func (r *Repository) StartCommit(ctx context.Context, id, taskID string) error {
	return r.update(ctx, id, map[string]any{
		"status":         entities.ImportStatusCommitting,
		"task_id":        taskID,
		"processed":      0,
		"succeeded":      0,
		"failed":         0,
		"current_member": "",
		"error":          "",
		"completed_at":   nil,
	})
}

// SetTaskID links the session to the task running its commit.
func (r *Repository) SetTaskID(ctx context.Context, id, taskID string) error {
	return r.update(ctx, id, map[string]any{"task_id": taskID})
}

// UpdateProgress stores the counters of an ongoing commit.
func (r *Repository) UpdateProgress(ctx context.Context, id string, processed, succeeded, failed int, current string) error {
	return r.update(ctx, id, map[string]any{
		"processed":      processed,
		"succeeded":      succeeded,
		"failed":         failed,
		"current_member": current,
	})
}

// Complete marks a commit as completed or failed.
func (r *Repository) Complete(ctx context.Context, id string, succeeded bool, errorMsg string) error {
	status := entities.ImportStatusCompleted
	if !succeeded {
		status = entities.ImportStatusFailed
	}
	updates := map[string]any{
		"status":         status,
		"current_member": "",
		"completed_at":   r.now(),
	}
	if errorMsg != "" {
		updates["error"] = errorMsg
	}
	return r.update(ctx, id, updates)
}

// IsCommitting reports whether a commit is running for the session. A
// commit that stopped reporting progress is marked failed.
func (r *Repository) IsCommitting(ctx context.Context, id string) (bool, error) {
	session, err := r.Get(ctx, id)
	if err != nil {
		return false, err
	}
	if session.Status != entities.ImportStatusCommitting {
		return false, nil
	}
	if session.UpdatedAt.Before(r.now().Add(-staleAfter)) {
		_ = r.Complete(ctx, id, false, "import was interrupted")
		return false, nil
	}
	return true, nil
}

// ExpireOlderThan marks unfinished sessions that were not touched since
// cutoff as expired and returns their ids.
func (r *Repository) ExpireOlderThan(ctx context.Context, cutoff time.Time) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&entities.ImportSession{}).
		Where("status IN ? AND updated_at < ?", []entities.ImportStatus{entities.ImportStatusUploaded, entities.ImportStatusPreviewed}, cutoff).
		Pluck("id", &ids).Error
	if err != nil || len(ids) == 0 {
		return nil, err
	}

	err = r.db.WithContext(ctx).Model(&entities.ImportSession{}).
		Where("id IN ?", ids).
		Updates(map[string]any{"status": entities.ImportStatusExpired, "updated_at": r.now()}).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *Repository) update(ctx context.Context, id string, updates map[string]any) error {
	updates["updated_at"] = r.now()
	result := r.db.WithContext(ctx).Model(&entities.ImportSession{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
