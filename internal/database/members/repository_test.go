package members

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
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "members.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.Member{}, &entities.Registration{}))

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})
	return NewRepository(db)
}

func TestRepository_SaveAndList(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()
	birthDay := time.Date(2015, time.August, 20, 0, 0, 0, 0, time.UTC)

	saved, err := repo.Save(ctx, &entities.Member{
		OrganizationID: "org-1",
		Details: entities.MemberDetails{
			FirstName: "Emma",
			LastName:  "Peeters",
			BirthDay:  &birthDay,
			Parents:   []entities.Parent{{ID: "p-1", FirstName: "Lies", Email: "lies@example.com"}},
		},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)
	assert.NotEmpty(t, saved.FamilyID)

	_, err = repo.Save(ctx, &entities.Member{OrganizationID: "org-2", Details: entities.MemberDetails{FirstName: "Other"}})
	require.NoError(t, err)

	list, err := repo.List(ctx, "org-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Emma", list[0].Details.FirstName)
	require.NotNil(t, list[0].Details.BirthDay)
	assert.True(t, birthDay.Equal(*list[0].Details.BirthDay))
	require.Len(t, list[0].Details.Parents, 1)
	assert.Equal(t, "lies@example.com", list[0].Details.Parents[0].Email)

	count, err := repo.Count(ctx, "org-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestRepository_SaveReplacesDetails(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	saved, err := repo.Save(ctx, &entities.Member{OrganizationID: "org-1", Details: entities.MemberDetails{FirstName: "Emma"}})
	require.NoError(t, err)

	saved.Details.LastName = "Peeters"
	updated, err := repo.Save(ctx, saved)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, updated.ID)
	assert.Equal(t, "Peeters", updated.Details.LastName)

	family, err := repo.Family(ctx, saved.FamilyID)
	require.NoError(t, err)
	assert.Len(t, family, 1)
}

func TestRepository_GetNotFound(t *testing.T) {
	repo := setupTestDB(t)
	_, err := repo.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
