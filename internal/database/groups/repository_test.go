package groups

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

func setupTestDB(t *testing.T) *Repository {
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "groups.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.RegistrationPeriod{}, &entities.Group{}, &entities.GroupCategory{}))

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})
	return NewRepository(db)
}

func TestRepository_SaveAndLoadPeriod(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()
	limit := 1

	period := &entities.RegistrationPeriod{
		OrganizationID: "org-1",
		Name:           "2024-2025",
		StartDate:      time.Date(2024, time.September, 1, 0, 0, 0, 0, time.UTC),
		EndDate:        time.Date(2025, time.August, 31, 0, 0, 0, 0, time.UTC),
		Groups: []entities.Group{
			{ID: "g-kapoenen", Name: "Kapoenen", Prices: []entities.GroupPrice{{ID: "p-1", Name: "Standaard", Price: 4500}}},
			{ID: "g-welpen", Name: "Welpen"},
		},
		Categories: []entities.GroupCategory{
			{Name: "Takken", GroupIDs: []string{"g-kapoenen", "g-welpen"}, MaximumRegistrations: &limit},
		},
	}
	require.NoError(t, repo.SavePeriod(ctx, period))
	require.NotEmpty(t, period.ID)

	loaded, err := repo.Period(ctx, period.ID)
	require.NoError(t, err)
	assert.Len(t, loaded.Groups, 2)
	require.Len(t, loaded.Categories, 1)
	assert.Equal(t, []string{"g-kapoenen", "g-welpen"}, loaded.Categories[0].GroupIDs)

	group, ok := loaded.GroupByName("kapoenen")
	require.True(t, ok)
	require.Len(t, group.Prices, 1)
	assert.Equal(t, int64(4500), group.Prices[0].Price)
	assert.Equal(t, "org-1", group.OrganizationID)

	periods, err := repo.Periods(ctx, "org-1")
	require.NoError(t, err)
	assert.Len(t, periods, 1)
}

func TestRepository_NotFound(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	_, err := repo.Period(ctx, "missing")
	assert.ErrorIs(t, err, ErrPeriodNotFound)

	_, err = repo.Group(ctx, "missing")
	assert.ErrorIs(t, err, ErrGroupNotFound)
}
