// Package services implements the import session workflow: upload a
// spreadsheet, adjust the detected columns, preview the outcome, settle
// probable duplicates and commit.
package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/mrlokans/memberimport/internal/apperrors"
	"github.com/mrlokans/memberimport/internal/database/sessions"
	"github.com/mrlokans/memberimport/internal/entities"
	"github.com/mrlokans/memberimport/internal/importers"
	"github.com/mrlokans/memberimport/internal/logging"
	"github.com/mrlokans/memberimport/internal/sheet"
)

var (
	ErrSessionNotFound       = apperrors.NotFound("Import session not found or expired")
	ErrNotPreviewed          = apperrors.InvalidState("Preview the import before committing it")
	ErrCommitRunning         = apperrors.InvalidState("The import is already being committed")
	ErrAlreadyCommitted      = apperrors.InvalidState("The import was already committed")
	ErrUnconfirmedDuplicates = apperrors.InvalidState("Some rows may be existing members. Confirm or deny them first")
	ErrNoProbableMatch       = apperrors.InvalidState("This row has no probable match to decide on")
)

// Auditor records what happens to import sessions.
type Auditor interface {
	LogUpload(organizationID, sessionID, fileName string, rows int, err error)
	LogPreview(organizationID, sessionID string, members, errorCount, probable int)
	LogCommit(organizationID, sessionID string, succeeded, failed int, err error)
}

// CommitEnqueuer runs commits in the background.
type CommitEnqueuer interface {
	EnqueueCommit(ctx context.Context, sessionID string, waitingList bool, paid *bool) (string, error)
}

// PipelineFactory builds the phase 1 pipeline for a registration period.
// period is nil for imports without registrations.
type PipelineFactory func(period *entities.RegistrationPeriod) *importers.Pipeline

// CommitRequest holds the choices for a whole commit.
type CommitRequest struct {
	WaitingList bool  `json:"waiting_list"`
	Paid        *bool `json:"paid,omitempty"`
}

type Options struct {
	OrganizationID  string
	DefaultPeriodID string
	ImporterOptions []importers.ImporterOption
	Auditor         Auditor
	Logger          *zap.Logger
}

// ImportService drives import sessions. Parsed sheets live in the
// SessionStore; progress is persisted through the sessions repository.
type ImportService struct {
	pipelines PipelineFactory
	backend   importers.Backend
	sessions  *sessions.Repository
	store     *SessionStore
	enqueuer  CommitEnqueuer

	organizationID  string
	defaultPeriodID string
	importerOptions []importers.ImporterOption
	auditor         Auditor
	logger          *zap.Logger
}

func NewImportService(pipelines PipelineFactory, backend importers.Backend, repo *sessions.Repository, store *SessionStore, opts Options) *ImportService {
	return &ImportService{
		pipelines:       pipelines,
		backend:         backend,
		sessions:        repo,
		store:           store,
		organizationID:  opts.OrganizationID,
		defaultPeriodID: opts.DefaultPeriodID,
		importerOptions: opts.ImporterOptions,
		auditor:         opts.Auditor,
		logger:          logging.OrNop(opts.Logger).Named("imports"),
	}
}

// SetEnqueuer makes Commit run in the background. Without an enqueuer
// commits run inside the Commit call.
func (s *ImportService) SetEnqueuer(enqueuer CommitEnqueuer) {
	s.enqueuer = enqueuer
}

// Matchers lists every matcher a column can be assigned to.
func (s *ImportService) Matchers() []MatcherView {
	matchers := s.pipelines(nil).Matchers()
	views := make([]MatcherView, 0, len(matchers))
	for _, m := range matchers {
		views = append(views, newMatcherView(m))
	}
	return views
}

// Upload reads a spreadsheet and starts a session with detected columns.
func (s *ImportService) Upload(ctx context.Context, fileName string, r io.Reader, periodID string) (*SessionView, error) {
	parsed, err := sheet.Read(fileName, r)
	if err != nil {
		s.audit(func(a Auditor) { a.LogUpload(s.organizationID, "", fileName, 0, err) })
		return nil, apperrors.InvalidType(fmt.Sprintf("Could not read %s: %v", fileName, err))
	}
	if periodID == "" {
		periodID = s.defaultPeriodID
	}
	var period *entities.RegistrationPeriod
	if periodID != "" {
		period, err = s.backend.Period(ctx, periodID)
		if err != nil {
			return nil, fmt.Errorf("failed to load registration period: %w", err)
		}
	}
	pipeline := s.pipelines(period)

	session, err := s.sessions.Create(ctx, s.organizationID, periodID, fileName, len(parsed.Rows))
	if err != nil {
		return nil, fmt.Errorf("failed to create import session: %w", err)
	}

	ws := &Workspace{
		ID:             session.ID,
		OrganizationID: s.organizationID,
		PeriodID:       periodID,
		Sheet:          parsed,
		Columns:        pipeline.DetectColumns(parsed),
		Period:         period,
		pipeline:       pipeline,
	}
	s.store.Put(ws)

	s.logger.Info("spreadsheet uploaded",
		zap.String("session_id", session.ID),
		zap.String("file", fileName),
		zap.Int("rows", len(parsed.Rows)),
		zap.Int("columns", len(parsed.Headers)),
	)
	s.audit(func(a Auditor) { a.LogUpload(s.organizationID, session.ID, fileName, len(parsed.Rows), nil) })

	return s.view(session, ws), nil
}

// Session returns the state of a session. The columns and reports are only
// present while the session is kept in memory.
func (s *ImportService) Session(ctx context.Context, id string) (*SessionView, error) {
	session, err := s.getSession(ctx, id)
	if err != nil {
		return nil, err
	}
	ws, _ := s.store.Get(id)
	return s.view(session, ws), nil
}

// SetColumn assigns a matcher to a column. An empty matcherID leaves the
// column unmatched. A matcher can only be assigned to one column; the
// column that had it before loses it. The preview is discarded.
func (s *ImportService) SetColumn(ctx context.Context, id string, index int, matcherID string) (*SessionView, error) {
	ws, err := s.workspace(id)
	if err != nil {
		return nil, err
	}

	var matcher importers.ColumnMatcher
	if matcherID != "" {
		var ok bool
		matcher, ok = importers.FindMatcher(ws.pipeline.Matchers(), matcherID)
		if !ok {
			return nil, apperrors.NotFound(fmt.Sprintf("Unknown column type '%s'", matcherID))
		}
	}

	ws.mu.Lock()
	if ws.committing {
		ws.mu.Unlock()
		return nil, ErrCommitRunning
	}
	if index < 0 || index >= len(ws.Columns) {
		ws.mu.Unlock()
		return nil, apperrors.InvalidField("index", fmt.Sprintf("Column %d does not exist", index))
	}
	for _, column := range ws.Columns {
		if matcher != nil && column.MatcherID() == matcher.ID() {
			column.Matcher = nil
		}
	}
	ws.Columns[index].Matcher = matcher
	ws.Preview = nil
	ws.mu.Unlock()

	if err := s.sessions.SetStatus(ctx, id, entities.ImportStatusUploaded); err != nil {
		return nil, err
	}
	return s.Session(ctx, id)
}

// Preview parses every row (phase 1) and looks for existing members.
func (s *ImportService) Preview(ctx context.Context, id string) (*PreviewView, error) {
	ws, err := s.workspace(id)
	if err != nil {
		return nil, err
	}

	ws.mu.Lock()
	defer ws.mu.Unlock()
	if ws.committing {
		return nil, ErrCommitRunning
	}

	existing, err := s.backend.Members(ctx, ws.OrganizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load members: %w", err)
	}

	preview, err := ws.pipeline.Preview(ctx, ws.Sheet, ws.Columns, existing, ws.Period)
	if err != nil {
		return nil, err
	}
	ws.Preview = preview
	ws.Reports = nil

	if err := s.sessions.SetStatus(ctx, id, entities.ImportStatusPreviewed); err != nil {
		return nil, err
	}

	view := newPreviewView(preview)
	s.audit(func(a Auditor) {
		a.LogPreview(ws.OrganizationID, id, len(preview.Results), len(preview.Errors), len(preview.ProbableDuplicates()))
	})
	return view, nil
}

// Decide settles a probable duplicate. row is the 0-indexed data row. The
// rows are rebuilt so a confirmed match becomes an update.
func (s *ImportService) Decide(ctx context.Context, id string, row int, equal bool) (*PreviewView, error) {
	ws, err := s.workspace(id)
	if err != nil {
		return nil, err
	}

	ws.mu.Lock()
	defer ws.mu.Unlock()
	if ws.committing {
		return nil, ErrCommitRunning
	}
	if ws.Preview == nil {
		return nil, ErrNotPreviewed
	}
	if row < 0 || row >= len(ws.Preview.Identities) {
		return nil, apperrors.InvalidField("row", fmt.Sprintf("Row %d does not exist", row+1))
	}

	identity := ws.Preview.Identities[row]
	if identity == nil || !identity.IsProbablyEqual() {
		return nil, ErrNoProbableMatch
	}
	if equal {
		identity.MarkEqual()
	} else {
		identity.MarkNotEqual()
	}

	results, errs, err := ws.pipeline.Build(ctx, ws.Sheet, ws.Columns, ws.Preview.Identities, ws.Period)
	if err != nil {
		return nil, err
	}
	ws.Preview.Results = results
	ws.Preview.Errors = errs

	return newPreviewView(ws.Preview), nil
}

// DecideAll settles every pending probable duplicate the same way.
func (s *ImportService) DecideAll(ctx context.Context, id string, equal bool) (*PreviewView, error) {
	ws, err := s.workspace(id)
	if err != nil {
		return nil, err
	}

	ws.mu.Lock()
	var rows []int
	if ws.Preview != nil {
		for _, identity := range ws.Preview.ProbableDuplicates() {
			rows = append(rows, identity.Base.Row)
		}
	}
	previewed := ws.Preview != nil
	ws.mu.Unlock()

	if !previewed {
		return nil, ErrNotPreviewed
	}

	var view *PreviewView
	for _, row := range rows {
		if view, err = s.Decide(ctx, id, row, equal); err != nil {
			return nil, err
		}
	}
	if view == nil {
		ws.mu.Lock()
		view = newPreviewView(ws.Preview)
		ws.mu.Unlock()
	}
	return view, nil
}

// Commit stores the previewed rows (phase 2). With an enqueuer the commit
// runs as a background task and the returned result only holds its id.
func (s *ImportService) Commit(ctx context.Context, id string, req CommitRequest) (*CommitResult, error) {
	ws, err := s.workspace(id)
	if err != nil {
		return nil, err
	}
	session, err := s.getSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.Status == entities.ImportStatusCompleted {
		return nil, ErrAlreadyCommitted
	}

	ws.mu.Lock()
	if err := checkCommittable(ws); err != nil {
		ws.mu.Unlock()
		return nil, err
	}
	ws.committing = true
	ws.mu.Unlock()

	if err := s.sessions.StartCommit(ctx, id, ""); err != nil {
		s.finishWorkspace(ws, nil)
		return nil, err
	}

	if s.enqueuer == nil {
		reports, err := s.runCommit(ctx, ws, req)
		if err != nil {
			return nil, err
		}
		return &CommitResult{Reports: newReportViews(reports)}, nil
	}

	taskID, err := s.enqueuer.EnqueueCommit(ctx, id, req.WaitingList, req.Paid)
	if err != nil {
		s.finishWorkspace(ws, nil)
		_ = s.sessions.Complete(ctx, id, false, "could not start the import")
		return nil, fmt.Errorf("failed to enqueue commit: %w", err)
	}
	if err := s.sessions.SetTaskID(ctx, id, taskID); err != nil {
		s.logger.Warn("failed to store task id", zap.String("session_id", id), zap.Error(err))
	}
	return &CommitResult{TaskID: taskID}, nil
}

// RunCommit executes a commit started by Commit. It is called by the
// background task.
func (s *ImportService) RunCommit(ctx context.Context, id string, waitingList bool, paid *bool) error {
	ws, ok := s.store.Get(id)
	if !ok {
		_ = s.sessions.Complete(ctx, id, false, "the uploaded spreadsheet is no longer available")
		return ErrSessionNotFound
	}
	_, err := s.runCommit(ctx, ws, CommitRequest{WaitingList: waitingList, Paid: paid})
	return err
}

func (s *ImportService) runCommit(ctx context.Context, ws *Workspace, req CommitRequest) ([]importers.MemberImportReport, error) {
	ws.mu.Lock()
	results := ws.Preview.Results
	period := ws.Period
	organizationID := ws.OrganizationID
	ws.mu.Unlock()

	opts := append([]importers.ImporterOption{
		importers.WithOrganization(organizationID),
		importers.WithImporterLogger(s.logger),
		importers.WithProgress(func(p importers.Progress) {
			if err := s.sessions.UpdateProgress(ctx, ws.ID, p.Processed, p.Succeeded, p.Failed, p.Current); err != nil {
				s.logger.Warn("failed to store import progress", zap.String("session_id", ws.ID), zap.Error(err))
			}
		}),
	}, s.importerOptions...)
	importer := importers.NewImporter(s.backend, opts...)

	reports, err := importer.Import(ctx, results, importers.ImportContext{
		Period:        period,
		IsWaitingList: req.WaitingList,
		Paid:          req.Paid,
	})
	s.finishWorkspace(ws, reports)

	// The commit may have been cancelled; its outcome is still stored.
	storeCtx := context.WithoutCancel(ctx)
	succeeded, failed := countReports(reports)
	if err != nil {
		_ = s.sessions.Complete(storeCtx, ws.ID, false, apperrors.HumanMessage(err))
		s.audit(func(a Auditor) { a.LogCommit(organizationID, ws.ID, succeeded, failed, err) })
		return reports, err
	}

	if err := s.sessions.Complete(storeCtx, ws.ID, failed == 0, failureSummary(failed)); err != nil {
		s.logger.Warn("failed to complete import session", zap.String("session_id", ws.ID), zap.Error(err))
	}
	s.audit(func(a Auditor) { a.LogCommit(organizationID, ws.ID, succeeded, failed, nil) })
	return reports, nil
}

// ExpireSessions drops idle workspaces and marks unfinished sessions that
// were not used since the TTL as expired. It returns how many sessions
// expired.
func (s *ImportService) ExpireSessions(ctx context.Context) (int, error) {
	dropped := s.store.Expire()
	expired, err := s.sessions.ExpireOlderThan(ctx, s.store.Cutoff())
	if err != nil {
		return len(dropped), fmt.Errorf("failed to expire import sessions: %w", err)
	}
	for _, id := range expired {
		s.store.Delete(id)
	}
	return max(len(dropped), len(expired)), nil
}

func (s *ImportService) finishWorkspace(ws *Workspace, reports []importers.MemberImportReport) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	ws.committing = false
	if reports != nil {
		ws.Reports = reports
	}
}

func (s *ImportService) workspace(id string) (*Workspace, error) {
	ws, ok := s.store.Get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return ws, nil
}

func (s *ImportService) getSession(ctx context.Context, id string) (*entities.ImportSession, error) {
	session, err := s.sessions.Get(ctx, id)
	if errors.Is(err, sessions.ErrNotFound) {
		return nil, ErrSessionNotFound
	}
	return session, err
}

func (s *ImportService) audit(fn func(Auditor)) {
	if s.auditor != nil {
		fn(s.auditor)
	}
}

func checkCommittable(ws *Workspace) error {
	if ws.committing {
		return ErrCommitRunning
	}
	if ws.Preview == nil {
		return ErrNotPreviewed
	}
	if len(ws.Preview.ProbableDuplicates()) > 0 {
		return ErrUnconfirmedDuplicates
	}
	return importers.CheckGroups(ws.Preview.Results)
}

func countReports(reports []importers.MemberImportReport) (succeeded, failed int) {
	for _, r := range reports {
		if r.Succeeded() {
			succeeded++
		} else {
			failed++
		}
	}
	return succeeded, failed
}

func failureSummary(failed int) string {
	if failed == 0 {
		return ""
	}
	return fmt.Sprintf("%d rows could not be imported", failed)
}
