package services

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/memberimport/internal/apperrors"
	"github.com/mrlokans/memberimport/internal/backend"
	"github.com/mrlokans/memberimport/internal/database"
	"github.com/mrlokans/memberimport/internal/database/fixtures"
	"github.com/mrlokans/memberimport/internal/database/sessions"
	"github.com/mrlokans/memberimport/internal/entities"
	"github.com/mrlokans/memberimport/internal/importers"
	"github.com/mrlokans/memberimport/internal/importers/matchers"
)

const membersCSV = "Voornaam;Achternaam;Geboortedatum;Tak\n" +
	"Emma;Peeters;20/08/2015;Welpen\n" +
	"Noah;Maes;03/02/2017;Kapoenen\n"

type fakeAuditor struct {
	mu      sync.Mutex
	uploads int
	preview int
	commits []int
}

func (a *fakeAuditor) LogUpload(string, string, string, int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.uploads++
}

func (a *fakeAuditor) LogPreview(string, string, int, int, int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.preview++
}

func (a *fakeAuditor) LogCommit(_, _ string, succeeded, _ int, _ error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.commits = append(a.commits, succeeded)
}

type fakeEnqueuer struct {
	sessionIDs []string
}

func (e *fakeEnqueuer) EnqueueCommit(_ context.Context, sessionID string, _ bool, _ *bool) (string, error) {
	e.sessionIDs = append(e.sessionIDs, sessionID)
	return "task-1", nil
}

type testEnv struct {
	service *ImportService
	local   *backend.Local
	store   *SessionStore
	auditor *fakeAuditor
}

func newTestEnv(t *testing.T, defaultPeriodID string) testEnv {
	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "imports.db"), database.WithLogLevel(logger.Silent))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = fixtures.Seed(context.Background(), db.DB, "org-1")
	require.NoError(t, err)

	local := backend.NewLocal(db.DB, nil)
	store := NewSessionStore(time.Hour)
	auditor := &fakeAuditor{}

	pipelines := func(period *entities.RegistrationPeriod) *importers.Pipeline {
		return importers.NewPipeline(matchers.Default(matchers.Options{Country: "BE", Period: period}), importers.WithWorkers(2))
	}
	service := NewImportService(pipelines, local, sessions.NewRepository(db.DB), store, Options{
		OrganizationID:  "org-1",
		DefaultPeriodID: defaultPeriodID,
		ImporterOptions: []importers.ImporterOption{importers.WithRowDelay(0)},
		Auditor:         auditor,
	})
	return testEnv{service: service, local: local, store: store, auditor: auditor}
}

func upload(t *testing.T, service *ImportService, csv string) *SessionView {
	view, err := service.Upload(context.Background(), "leden.csv", strings.NewReader(csv), "")
	require.NoError(t, err)
	return view
}

func matcherIDs(view *SessionView) []string {
	ids := make([]string, len(view.Columns))
	for i, column := range view.Columns {
		ids[i] = column.MatcherID
	}
	return ids
}

func TestImportService_UploadPreviewCommit(t *testing.T) {
	env := newTestEnv(t, fixtures.PeriodID)
	ctx := context.Background()

	view := upload(t, env.service, membersCSV)
	assert.Equal(t, entities.ImportStatusUploaded, view.Status)
	assert.Equal(t, 2, view.TotalRows)
	assert.Equal(t, fixtures.PeriodID, view.PeriodID)
	assert.Equal(t, []string{"member.first_name", "member.last_name", "member.birth_day", "registration.group"}, matcherIDs(view))

	_, err := env.service.Commit(ctx, view.ID, CommitRequest{})
	assert.ErrorIs(t, err, ErrNotPreviewed)

	preview, err := env.service.Preview(ctx, view.ID)
	require.NoError(t, err)
	assert.Empty(t, preview.Errors)
	require.Len(t, preview.Members, 2)
	assert.Equal(t, "Emma Peeters", preview.Members[0].Name)
	assert.Equal(t, MemberStatusNew, preview.Members[0].Status)
	assert.Equal(t, "Welpen", preview.Members[0].Group)
	assert.False(t, preview.Members[0].AutoAssigned)
	assert.Equal(t, "Kapoenen", preview.Members[1].Group)

	paid := true
	result, err := env.service.Commit(ctx, view.ID, CommitRequest{Paid: &paid})
	require.NoError(t, err)
	assert.Empty(t, result.TaskID)
	require.Len(t, result.Reports, 2)
	for _, report := range result.Reports {
		assert.Empty(t, report.Error)
	}
	assert.Equal(t, 2, result.Reports[0].Line)

	session, err := env.service.Session(ctx, view.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.ImportStatusCompleted, session.Status)
	assert.Equal(t, 2, session.Succeeded)
	assert.Len(t, session.Reports, 2)

	members, err := env.local.Members(ctx, "org-1")
	require.NoError(t, err)
	require.Len(t, members, 2)
	for _, member := range members {
		assert.Len(t, member.Registrations, 1)
	}

	payments, err := env.local.Payments(ctx, "org-1")
	require.NoError(t, err)
	assert.Len(t, payments, 2)

	_, err = env.service.Commit(ctx, view.ID, CommitRequest{})
	assert.ErrorIs(t, err, ErrAlreadyCommitted)

	env.auditor.mu.Lock()
	defer env.auditor.mu.Unlock()
	assert.Equal(t, 1, env.auditor.uploads)
	assert.Equal(t, 1, env.auditor.preview)
	assert.Equal(t, []int{2}, env.auditor.commits)
}

func TestImportService_ProbableDuplicate(t *testing.T) {
	env := newTestEnv(t, fixtures.PeriodID)
	ctx := context.Background()

	birthDay := time.Date(2015, time.August, 20, 0, 0, 0, 0, time.UTC)
	existing, err := env.local.SaveMember(ctx, &entities.Member{
		OrganizationID: "org-1",
		Details:        entities.MemberDetails{FirstName: "Lena", LastName: "Boss", BirthDay: &birthDay},
	})
	require.NoError(t, err)

	view := upload(t, env.service, "Voornaam;Achternaam;Geboortedatum;Tak\nLena;Bos;20/08/2015;Welpen\n")

	preview, err := env.service.Preview(ctx, view.ID)
	require.NoError(t, err)
	require.Len(t, preview.Members, 1)
	assert.Equal(t, MemberStatusProbable, preview.Members[0].Status)
	assert.Equal(t, existing.ID, preview.Members[0].ExistingID)
	assert.Equal(t, 1, preview.ProbableCount())

	_, err = env.service.Commit(ctx, view.ID, CommitRequest{})
	assert.ErrorIs(t, err, ErrUnconfirmedDuplicates)

	_, err = env.service.Decide(ctx, view.ID, 5, true)
	assert.True(t, apperrors.Is(err, apperrors.CodeInvalidField))

	preview, err = env.service.Decide(ctx, view.ID, 0, true)
	require.NoError(t, err)
	assert.Equal(t, MemberStatusExisting, preview.Members[0].Status)

	_, err = env.service.Commit(ctx, view.ID, CommitRequest{})
	require.NoError(t, err)

	members, err := env.local.Members(ctx, "org-1")
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, existing.ID, members[0].ID)
	assert.Len(t, members[0].Registrations, 1)
}

func TestImportService_DecideAllNotEqual(t *testing.T) {
	env := newTestEnv(t, fixtures.PeriodID)
	ctx := context.Background()

	birthDay := time.Date(2015, time.August, 20, 0, 0, 0, 0, time.UTC)
	_, err := env.local.SaveMember(ctx, &entities.Member{
		OrganizationID: "org-1",
		Details:        entities.MemberDetails{FirstName: "Lena", LastName: "Boss", BirthDay: &birthDay},
	})
	require.NoError(t, err)

	view := upload(t, env.service, "Voornaam;Achternaam;Geboortedatum;Tak\nLena;Bos;20/08/2015;Welpen\n")

	_, err = env.service.DecideAll(ctx, view.ID, false)
	assert.ErrorIs(t, err, ErrNotPreviewed)

	_, err = env.service.Preview(ctx, view.ID)
	require.NoError(t, err)

	preview, err := env.service.DecideAll(ctx, view.ID, false)
	require.NoError(t, err)
	assert.Equal(t, MemberStatusNew, preview.Members[0].Status)
	assert.Zero(t, preview.ProbableCount())

	_, err = env.service.Commit(ctx, view.ID, CommitRequest{})
	require.NoError(t, err)

	members, err := env.local.Members(ctx, "org-1")
	require.NoError(t, err)
	assert.Len(t, members, 2)
}

func TestImportService_SetColumn(t *testing.T) {
	env := newTestEnv(t, fixtures.PeriodID)
	ctx := context.Background()

	view := upload(t, env.service, membersCSV)
	_, err := env.service.Preview(ctx, view.ID)
	require.NoError(t, err)

	view, err = env.service.SetColumn(ctx, view.ID, 3, "")
	require.NoError(t, err)
	assert.Equal(t, "", view.Columns[3].MatcherID)
	assert.Equal(t, entities.ImportStatusUploaded, view.Status)

	view, err = env.service.SetColumn(ctx, view.ID, 0, "member.last_name")
	require.NoError(t, err)
	assert.Equal(t, []string{"member.last_name", "", "member.birth_day", ""}, matcherIDs(view))

	_, err = env.service.SetColumn(ctx, view.ID, 0, "member.shoe_size")
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))

	_, err = env.service.SetColumn(ctx, view.ID, 9, "member.first_name")
	assert.True(t, apperrors.Is(err, apperrors.CodeInvalidField))

	_, err = env.service.Commit(ctx, view.ID, CommitRequest{})
	assert.ErrorIs(t, err, ErrNotPreviewed, "changing a column discards the preview")
}

func TestImportService_NoGroup(t *testing.T) {
	env := newTestEnv(t, "")
	ctx := context.Background()

	view := upload(t, env.service, "Voornaam;Achternaam\nEmma;Peeters\n")
	_, err := env.service.Preview(ctx, view.ID)
	require.NoError(t, err)

	_, err = env.service.Commit(ctx, view.ID, CommitRequest{})
	assert.True(t, apperrors.Is(err, apperrors.CodeNoGroup))

	session, err := env.service.Session(ctx, view.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.ImportStatusPreviewed, session.Status)
}

func TestImportService_BackgroundCommit(t *testing.T) {
	env := newTestEnv(t, fixtures.PeriodID)
	enqueuer := &fakeEnqueuer{}
	env.service.SetEnqueuer(enqueuer)
	ctx := context.Background()

	view := upload(t, env.service, membersCSV)
	_, err := env.service.Preview(ctx, view.ID)
	require.NoError(t, err)

	result, err := env.service.Commit(ctx, view.ID, CommitRequest{})
	require.NoError(t, err)
	assert.Equal(t, "task-1", result.TaskID)
	assert.Equal(t, []string{view.ID}, enqueuer.sessionIDs)

	session, err := env.service.Session(ctx, view.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.ImportStatusCommitting, session.Status)
	assert.Equal(t, "task-1", session.TaskID)

	_, err = env.service.Commit(ctx, view.ID, CommitRequest{})
	assert.ErrorIs(t, err, ErrCommitRunning)
	_, err = env.service.SetColumn(ctx, view.ID, 0, "")
	assert.ErrorIs(t, err, ErrCommitRunning)

	require.NoError(t, env.service.RunCommit(ctx, view.ID, false, nil))

	session, err = env.service.Session(ctx, view.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.ImportStatusCompleted, session.Status)
	assert.Equal(t, 2, session.Processed)

	err = env.service.RunCommit(ctx, "gone", false, nil)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestImportService_ExpireSessions(t *testing.T) {
	env := newTestEnv(t, fixtures.PeriodID)
	ctx := context.Background()

	view := upload(t, env.service, membersCSV)

	expired, err := env.service.ExpireSessions(ctx)
	require.NoError(t, err)
	assert.Zero(t, expired)

	env.store.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	expired, err = env.service.ExpireSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, expired)
	assert.Zero(t, env.store.Len())

	session, err := env.service.Session(ctx, view.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.ImportStatusExpired, session.Status)
	assert.Empty(t, session.Columns)

	_, err = env.service.Preview(ctx, view.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestImportService_UploadErrors(t *testing.T) {
	env := newTestEnv(t, fixtures.PeriodID)
	ctx := context.Background()

	_, err := env.service.Upload(ctx, "leden.pdf", strings.NewReader("%PDF"), "")
	assert.True(t, apperrors.Is(err, apperrors.CodeInvalidType))

	_, err = env.service.Upload(ctx, "leden.csv", strings.NewReader(membersCSV), "missing-period")
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))

	_, err = env.service.Session(ctx, "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	assert.NotEmpty(t, env.service.Matchers())
}
