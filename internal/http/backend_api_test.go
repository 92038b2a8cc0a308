package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/memberimport/internal/apperrors"
	"github.com/mrlokans/memberimport/internal/backend"
	"github.com/mrlokans/memberimport/internal/database"
	"github.com/mrlokans/memberimport/internal/database/fixtures"
	"github.com/mrlokans/memberimport/internal/entities"
	"github.com/mrlokans/memberimport/internal/importers"
)

const testAPIToken = "test-token"

func setupDatabase(t *testing.T) *database.Database {
	t.Helper()

	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "http.db"), database.WithLogLevel(logger.Silent))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = fixtures.Seed(context.Background(), db.DB, "org-1")
	require.NoError(t, err)
	return db
}

// setupBackendServer serves a seeded local database through the backend API.
func setupBackendServer(t *testing.T) *httptest.Server {
	t.Helper()

	db := setupDatabase(t)
	router := NewRouter(RouterConfig{
		Database: db,
		Backend:  backend.NewLocal(db.DB, nil),
		APIToken: testAPIToken,
	})
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func newRemote(server *httptest.Server, token string) *backend.Remote {
	return backend.NewRemote(server.URL+"/api", token, 5*time.Second, backend.WithRetryDelay(time.Millisecond))
}

func TestBackendAPI_RemoteRoundTrip(t *testing.T) {
	server := setupBackendServer(t)
	remote := newRemote(server, testAPIToken)
	ctx := context.Background()

	period, err := remote.Period(ctx, fixtures.PeriodID)
	require.NoError(t, err)
	welpen, ok := period.GroupByName("Welpen")
	require.True(t, ok)

	member, err := remote.SaveMember(ctx, &entities.Member{
		OrganizationID: "org-1",
		Details:        entities.MemberDetails{FirstName: "Emma", LastName: "Peeters"},
	})
	require.NoError(t, err)
	require.NotEmpty(t, member.ID)

	member.Details.LastName = "Peeters-Maes"
	updated, err := remote.SaveMember(ctx, member)
	require.NoError(t, err)
	assert.Equal(t, member.ID, updated.ID)
	assert.Equal(t, "Peeters-Maes", updated.Details.LastName)

	registrations, err := remote.Register(ctx, importers.Checkout{
		OrganizationID: "org-1",
		MemberID:       member.ID,
		Items:          []importers.CheckoutItem{{GroupID: welpen.ID, PeriodID: period.ID, PriceName: "Standaard", Price: 4500}},
	})
	require.NoError(t, err)
	require.Len(t, registrations, 1)

	items, err := remote.BalanceItems(ctx, registrations[0].ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(4500), items[0].Price)

	payment := importers.PaymentRequest{
		OrganizationID: "org-1",
		Method:         entities.PaymentMethodUnknown,
		Status:         entities.PaymentStatusSucceeded,
		Items:          []importers.PaymentItem{{BalanceItemID: items[0].ID, Price: 4500}},
	}
	require.NoError(t, remote.CreatePayments(ctx, []importers.PaymentRequest{payment}))

	err = remote.CreatePayments(ctx, []importers.PaymentRequest{payment})
	var requestErr *backend.RequestError
	require.True(t, errors.As(err, &requestErr))
	assert.Equal(t, http.StatusBadRequest, requestErr.StatusCode)
	assert.True(t, apperrors.Is(err, apperrors.CodeInvalidField))
	assert.Equal(t, "price", requestErr.Err.Field)

	members, err := remote.Members(ctx, "org-1")
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "Emma", members[0].Details.FirstName)
	assert.Len(t, members[0].Registrations, 1)
}

func TestBackendAPI_NotFound(t *testing.T) {
	server := setupBackendServer(t)
	remote := newRemote(server, testAPIToken)
	ctx := context.Background()

	_, err := remote.Period(ctx, "missing")
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))

	_, err = remote.Register(ctx, importers.Checkout{
		MemberID: "m-1",
		Items:    []importers.CheckoutItem{{GroupID: "missing"}},
	})
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))
	assert.Equal(t, "Group 'missing' does not exist", apperrors.HumanMessage(err))
}

func TestBackendAPI_PutCreatesUnknownMember(t *testing.T) {
	server := setupBackendServer(t)
	remote := newRemote(server, testAPIToken)
	ctx := context.Background()

	member := &entities.Member{
		ID:             "8f14e45f-ceea-4e7a-9d6c-3a1b2c3d4e5f",
		OrganizationID: "org-1",
		Details:        entities.MemberDetails{FirstName: "Noah", LastName: "Maes"},
	}
	created, err := remote.SaveMember(ctx, member)
	require.NoError(t, err)
	assert.Equal(t, member.ID, created.ID)

	again, err := remote.SaveMember(ctx, member)
	require.NoError(t, err)
	assert.Equal(t, member.ID, again.ID)

	members, err := remote.Members(ctx, "org-1")
	require.NoError(t, err)
	assert.Len(t, members, 1)

	_, err = remote.SaveMember(ctx, &entities.Member{ID: "no-organization"})
	var requestErr *backend.RequestError
	require.True(t, errors.As(err, &requestErr))
	assert.Equal(t, http.StatusBadRequest, requestErr.StatusCode)
	assert.Equal(t, "organization_id", requestErr.Err.Field)
}

func TestBackendAPI_ImporterOverRemote(t *testing.T) {
	server := setupBackendServer(t)
	remote := newRemote(server, testAPIToken)
	ctx := context.Background()

	period, err := remote.Period(ctx, fixtures.PeriodID)
	require.NoError(t, err)
	welpen, ok := period.GroupByName("Welpen")
	require.True(t, ok)

	row := importers.NewImportMemberResult(0, nil)
	first, last := "Emma", "Peeters"
	row.Update(func(p *importers.DetailsPatch) {
		p.FirstName = &first
		p.LastName = &last
	})
	row.Registration.Group = &welpen
	paid := true
	row.Registration.Paid = &paid

	importer := importers.NewImporter(remote, importers.WithOrganization("org-1"), importers.WithRowDelay(0))
	rows := []*importers.ImportMemberResult{row}

	reports, err := importer.Import(ctx, rows, importers.ImportContext{Period: period})
	require.NoError(t, err)
	require.Len(t, reports, 1)
	require.True(t, reports[0].Succeeded(), reports[0].Error)

	members, err := remote.Members(ctx, "org-1")
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "Emma", members[0].Details.FirstName)
	require.Len(t, members[0].Registrations, 1)
	assert.Equal(t, welpen.ID, members[0].Registrations[0].GroupID)

	items, err := remote.BalanceItems(ctx, members[0].Registrations[0].ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, entities.BalanceItemStatusPaid, items[0].Status)

	reports, err = importer.Import(ctx, rows, importers.ImportContext{Period: period})
	require.NoError(t, err)
	assert.True(t, reports[0].Succeeded())

	members, err = remote.Members(ctx, "org-1")
	require.NoError(t, err)
	assert.Len(t, members, 1)
}

func TestBackendAPI_RequiresToken(t *testing.T) {
	server := setupBackendServer(t)

	_, err := newRemote(server, "wrong").Members(context.Background(), "org-1")
	assert.ErrorIs(t, err, backend.ErrInvalidToken)
}

func TestBackendAPI_NotMountedWithoutToken(t *testing.T) {
	db := setupDatabase(t)
	router := NewRouter(RouterConfig{Database: db, Backend: backend.NewLocal(db.DB, nil)})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/members?organization_id=org-1", nil)
	req.Header.Set("Authorization", "Bearer ")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBackendAPI_MembersRequiresOrganization(t *testing.T) {
	server := setupBackendServer(t)

	req, err := http.NewRequest(http.MethodGet, server.URL+"/api/members", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+testAPIToken)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
