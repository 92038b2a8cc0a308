package registrations

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
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "registrations.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.Registration{}, &entities.BalanceItem{}))

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})
	return NewRepository(db)
}

func TestRepository_Checkout(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	old := entities.Registration{ID: "reg-old", MemberID: "m-1", GroupID: "g-kapoenen", PeriodID: "p-1"}
	require.NoError(t, repo.Checkout(ctx, []entities.Registration{old}, nil, nil))

	registrationID := "reg-new"
	registrations := []entities.Registration{{ID: registrationID, MemberID: "m-1", GroupID: "g-welpen", PeriodID: "p-1", Price: 4500}}
	items := []entities.BalanceItem{{MemberID: "m-1", RegistrationID: &registrationID, Price: 4500, Status: entities.BalanceItemStatusDue}}
	require.NoError(t, repo.Checkout(ctx, registrations, items, []string{"reg-old"}))

	list, err := repo.ForMember(ctx, "m-1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	for _, reg := range list {
		switch reg.ID {
		case "reg-old":
			assert.False(t, reg.IsActive())
		case "reg-new":
			assert.True(t, reg.IsActive())
		}
	}

	balance, err := repo.BalanceItems(ctx, registrationID)
	require.NoError(t, err)
	require.Len(t, balance, 1)
	assert.NotEmpty(t, balance[0].ID)
	assert.Equal(t, int64(4500), balance[0].PriceOpen())
}

func TestRepository_CheckoutIsAtomic(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	duplicate := []entities.Registration{
		{ID: "reg-1", MemberID: "m-1", GroupID: "g-1", CreatedAt: time.Now()},
		{ID: "reg-1", MemberID: "m-1", GroupID: "g-2", CreatedAt: time.Now()},
	}
	require.Error(t, repo.Checkout(ctx, duplicate, nil, nil))

	list, err := repo.ForMember(ctx, "m-1")
	require.NoError(t, err)
	assert.Empty(t, list)
}
