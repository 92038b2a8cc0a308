package backend

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/memberimport/internal/apperrors"
	"github.com/mrlokans/memberimport/internal/database"
	"github.com/mrlokans/memberimport/internal/database/fixtures"
	"github.com/mrlokans/memberimport/internal/entities"
	"github.com/mrlokans/memberimport/internal/importers"
)

func setupLocal(t *testing.T) (*Local, *entities.RegistrationPeriod) {
	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "backend.db"), database.WithLogLevel(logger.Silent))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	period, err := fixtures.Seed(context.Background(), db.DB, "org-1")
	require.NoError(t, err)
	return NewLocal(db.DB, nil), period
}

func TestLocal_RegisterAndPay(t *testing.T) {
	local, period := setupLocal(t)
	ctx := context.Background()

	member, err := local.SaveMember(ctx, &entities.Member{
		OrganizationID: "org-1",
		Details:        entities.MemberDetails{FirstName: "Emma", LastName: "Peeters"},
	})
	require.NoError(t, err)

	group, ok := period.GroupByName("Welpen")
	require.True(t, ok)

	registrations, err := local.Register(ctx, importers.Checkout{
		OrganizationID: "org-1",
		MemberID:       member.ID,
		Items:          []importers.CheckoutItem{{GroupID: group.ID, PeriodID: period.ID, PriceName: "Standaard", Price: 4500}},
	})
	require.NoError(t, err)
	require.Len(t, registrations, 1)
	assert.NotNil(t, registrations[0].RegisteredAt)

	items, err := local.BalanceItems(ctx, registrations[0].ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(4500), items[0].Price)
	assert.Equal(t, "Welpen", items[0].Description)

	err = local.CreatePayments(ctx, []importers.PaymentRequest{{
		OrganizationID: "org-1",
		Method:         entities.PaymentMethodUnknown,
		Status:         entities.PaymentStatusSucceeded,
		Items:          []importers.PaymentItem{{BalanceItemID: items[0].ID, Price: 4500}},
	}})
	require.NoError(t, err)

	items, err = local.BalanceItems(ctx, registrations[0].ID)
	require.NoError(t, err)
	assert.Equal(t, entities.BalanceItemStatusPaid, items[0].Status)

	list, err := local.Payments(ctx, "org-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, int64(4500), list[0].Price)

	err = local.CreatePayments(ctx, []importers.PaymentRequest{{
		OrganizationID: "org-1",
		Items:          []importers.PaymentItem{{BalanceItemID: items[0].ID, Price: 1}},
	}})
	assert.True(t, apperrors.Is(err, apperrors.CodeInvalidField))

	members, err := local.Members(ctx, "org-1")
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Len(t, members[0].Registrations, 1)
}

func TestLocal_WaitingListHasNoBalance(t *testing.T) {
	local, period := setupLocal(t)
	ctx := context.Background()

	member, err := local.SaveMember(ctx, &entities.Member{OrganizationID: "org-1"})
	require.NoError(t, err)

	kapoenen, ok := period.GroupByName("Kapoenen")
	require.True(t, ok)
	waitingList, ok := period.Group(*kapoenen.WaitingListID)
	require.True(t, ok)

	registrations, err := local.Register(ctx, importers.Checkout{
		OrganizationID: "org-1",
		MemberID:       member.ID,
		Items:          []importers.CheckoutItem{{GroupID: waitingList.ID, PeriodID: period.ID, WaitingList: true}},
	})
	require.NoError(t, err)
	require.Len(t, registrations, 1)
	assert.True(t, registrations[0].WaitingList)
	assert.Nil(t, registrations[0].RegisteredAt)

	items, err := local.BalanceItems(ctx, registrations[0].ID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestLocal_NotFound(t *testing.T) {
	local, _ := setupLocal(t)
	ctx := context.Background()

	_, err := local.Register(ctx, importers.Checkout{
		MemberID: "m-1",
		Items:    []importers.CheckoutItem{{GroupID: "missing"}},
	})
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))
	assert.Equal(t, "Group 'missing' does not exist", apperrors.HumanMessage(err))

	_, err = local.Period(ctx, "missing")
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))

	_, err = local.Member(ctx, "missing")
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))

	period, err := local.Period(ctx, fixtures.PeriodID)
	require.NoError(t, err)
	assert.Len(t, period.Groups, 5)
}
