package audit

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/memberimport/internal/entities"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "audit.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.AuditEvent{})
	require.NoError(t, err)

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})
	return db
}

func TestRepository_LogEvent(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	event := &entities.AuditEvent{
		OrganizationID: "org-1",
		EventType:      entities.AuditEventImportCommit,
		Action:         "commit",
		Description:    "Imported 10 members from leden.xlsx",
		Status:         entities.AuditStatusSuccess,
	}

	err := repo.LogEvent(context.Background(), event)
	require.NoError(t, err)
	assert.NotZero(t, event.ID)
	assert.False(t, event.CreatedAt.IsZero())
}

func TestRepository_GetEvents(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	ctx := context.Background()

	for i := range 15 {
		event := &entities.AuditEvent{
			OrganizationID: "org-1",
			EventType:      entities.AuditEventImportCommit,
			Action:         "commit",
			EntityID:       "session-1",
			Status:         entities.AuditStatusSuccess,
			CreatedAt:      time.Now().Add(time.Duration(-i) * time.Hour),
		}
		require.NoError(t, repo.LogEvent(ctx, event))
	}
	for range 5 {
		event := &entities.AuditEvent{
			OrganizationID: "org-2",
			EventType:      entities.AuditEventPayment,
			Action:         "payment",
			Status:         entities.AuditStatusFailed,
		}
		require.NoError(t, repo.LogEvent(ctx, event))
	}

	t.Run("get all events", func(t *testing.T) {
		events, total, err := repo.GetEvents(ctx, Filter{})
		require.NoError(t, err)
		assert.Equal(t, int64(20), total)
		assert.Len(t, events, 20)
	})

	t.Run("filter by organization with pagination", func(t *testing.T) {
		events, total, err := repo.GetEvents(ctx, Filter{OrganizationID: "org-1", Limit: 10, Offset: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(15), total)
		assert.Len(t, events, 5)
	})

	t.Run("newest first", func(t *testing.T) {
		events, _, err := repo.GetEvents(ctx, Filter{OrganizationID: "org-1", Limit: 2})
		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.True(t, events[0].CreatedAt.After(events[1].CreatedAt))
	})

	t.Run("filter by type and entity", func(t *testing.T) {
		_, total, err := repo.GetEvents(ctx, Filter{EventType: entities.AuditEventPayment})
		require.NoError(t, err)
		assert.Equal(t, int64(5), total)

		_, total, err = repo.GetEvents(ctx, Filter{EntityID: "session-1"})
		require.NoError(t, err)
		assert.Equal(t, int64(15), total)
	})
}

func TestRepository_RecentAndDelete(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	ctx := context.Background()

	old := &entities.AuditEvent{OrganizationID: "org-1", EventType: entities.AuditEventCleanup, CreatedAt: time.Now().Add(-48 * time.Hour)}
	recent := &entities.AuditEvent{OrganizationID: "org-1", EventType: entities.AuditEventCleanup}
	require.NoError(t, repo.LogEvent(ctx, old))
	require.NoError(t, repo.LogEvent(ctx, recent))

	events, err := repo.GetRecentEvents(ctx, "org-1", time.Now().Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, recent.ID, events[0].ID)

	deleted, err := repo.DeleteOldEvents(ctx, time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, total, err := repo.GetEvents(ctx, Filter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}
