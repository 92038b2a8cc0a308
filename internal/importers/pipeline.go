package importers

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mrlokans/memberimport/internal/entities"
	"github.com/mrlokans/memberimport/internal/sheet"
)

// Preview is the outcome of phase 1.
type Preview struct {
	Identities []*FindExistingMemberResult
	Results    []*ImportMemberResult
	Errors     []ImportError
}

// ProbableDuplicates returns the rows waiting for a duplicate decision.
func (p *Preview) ProbableDuplicates() []*FindExistingMemberResult {
	var pending []*FindExistingMemberResult
	for _, identity := range p.Identities {
		if identity != nil && identity.NeedsConfirmation() {
			pending = append(pending, identity)
		}
	}
	return pending
}

// Pipeline parses a sheet into import results (phase 1). It never talks to
// the backend, so rows are processed in parallel.
type Pipeline struct {
	matchers []ColumnMatcher
	priority map[string]int
	workers  int
	now      func() time.Time
	logger   *zap.Logger
}

type PipelineOption func(*Pipeline)

// WithWorkers sets how many rows are parsed at the same time.
func WithWorkers(workers int) PipelineOption {
	return func(p *Pipeline) {
		if workers > 0 {
			p.workers = workers
		}
	}
}

func WithClock(now func() time.Time) PipelineOption {
	return func(p *Pipeline) {
		p.now = now
	}
}

func WithLogger(logger *zap.Logger) PipelineOption {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewPipeline creates a pipeline. The order of matchers is their priority,
// both for column detection and for the order cells of a row are applied.
func NewPipeline(matchers []ColumnMatcher, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		matchers: matchers,
		priority: make(map[string]int, len(matchers)),
		workers:  4,
		now:      time.Now,
		logger:   zap.NewNop(),
	}
	for i, m := range matchers {
		p.priority[m.ID()] = i
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Matchers returns the matchers in priority order.
func (p *Pipeline) Matchers() []ColumnMatcher {
	return p.matchers
}

// DetectColumns selects a matcher for every column of the sheet.
func (p *Pipeline) DetectColumns(s *sheet.Sheet) []*MatchedColumn {
	return DetectColumns(s, p.matchers)
}

// Identify reads the identity columns of every row and looks for the row's
// member among existing. Cell errors are left to Build.
func (p *Pipeline) Identify(ctx context.Context, s *sheet.Sheet, columns []*MatchedColumn, existing []entities.Member) ([]*FindExistingMemberResult, error) {
	ordered := p.orderColumns(columns)
	identities := make([]*FindExistingMemberResult, len(s.Rows))

	err := p.forEachRow(ctx, len(s.Rows), func(row int) {
		base := NewImportMemberBaseResult(row)
		for _, column := range ordered {
			bm, ok := column.Matcher.(BaseMatcher)
			if !ok {
				continue
			}
			_ = bm.ApplyBase(s.Cell(row, column.Index), base)
		}
		identities[row] = FindExistingMember(base, existing)
	})
	if err != nil {
		return nil, err
	}

	return identities, nil
}

// Build applies every matched column to a result per row. identities must
// come from Identify on the same sheet; confirmed matches become updates.
// Rows without any content are skipped.
func (p *Pipeline) Build(ctx context.Context, s *sheet.Sheet, columns []*MatchedColumn, identities []*FindExistingMemberResult, period *entities.RegistrationPeriod) ([]*ImportMemberResult, []ImportError, error) {
	ordered := p.orderColumns(columns)
	rowResults := make([]*ImportMemberResult, len(s.Rows))
	rowErrors := make([][]ImportError, len(s.Rows))

	err := p.forEachRow(ctx, len(s.Rows), func(row int) {
		if rowIsEmpty(s, row, ordered) {
			return
		}

		var existing *entities.Member
		if row < len(identities) && identities[row] != nil {
			existing = identities[row].ConfirmedMember()
		}

		result := NewImportMemberResult(row, existing)
		for _, column := range ordered {
			if err := column.Matcher.Apply(s.Cell(row, column.Index), result); err != nil {
				rowErrors[row] = append(rowErrors[row], newImportError(row, column.Index, err))
			}
		}
		p.autoAssignGroup(result, period)
		rowResults[row] = result
	})
	if err != nil {
		return nil, nil, err
	}

	results := make([]*ImportMemberResult, 0, len(rowResults))
	for _, r := range rowResults {
		if r != nil {
			results = append(results, r)
		}
	}
	var errs []ImportError
	for _, e := range rowErrors {
		errs = append(errs, e...)
	}
	sortImportErrors(errs)

	return results, errs, nil
}

// Preview runs Identify and Build.
func (p *Pipeline) Preview(ctx context.Context, s *sheet.Sheet, columns []*MatchedColumn, existing []entities.Member, period *entities.RegistrationPeriod) (*Preview, error) {
	identities, err := p.Identify(ctx, s, columns, existing)
	if err != nil {
		return nil, err
	}
	results, errs, err := p.Build(ctx, s, columns, identities, period)
	if err != nil {
		return nil, err
	}

	p.logger.Info("import preview built",
		zap.Int("rows", len(s.Rows)),
		zap.Int("results", len(results)),
		zap.Int("errors", len(errs)),
	)

	return &Preview{Identities: identities, Results: results, Errors: errs}, nil
}

// autoAssignGroup picks a group by age at the start of the period when the
// row has no group column.
func (p *Pipeline) autoAssignGroup(result *ImportMemberResult, period *entities.RegistrationPeriod) {
	if period == nil || result.Registration.Group != nil {
		return
	}
	reference := period.StartDate
	if reference.IsZero() {
		reference = p.now()
	}
	age, ok := result.PatchedDetails().Age(reference)
	if !ok {
		return
	}
	if group, ok := period.GroupForAge(age); ok {
		result.Registration.AutoAssignedGroup = &group
	}
}

// orderColumns returns the matched columns sorted by matcher priority.
func (p *Pipeline) orderColumns(columns []*MatchedColumn) []*MatchedColumn {
	ordered := make([]*MatchedColumn, 0, len(columns))
	for _, c := range columns {
		if c != nil && c.Matcher != nil {
			ordered = append(ordered, c)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return p.rank(ordered[i].Matcher) < p.rank(ordered[j].Matcher)
	})
	return ordered
}

func (p *Pipeline) rank(m ColumnMatcher) int {
	if rank, ok := p.priority[m.ID()]; ok {
		return rank
	}
	return len(p.priority)
}

// forEachRow runs fn for every row with at most p.workers rows in flight.
func (p *Pipeline) forEachRow(ctx context.Context, rows int, fn func(row int)) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	for row := 0; row < rows; row++ {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fn(row)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

func rowIsEmpty(s *sheet.Sheet, row int, columns []*MatchedColumn) bool {
	for _, c := range columns {
		if !s.Cell(row, c.Index).IsEmpty() {
			return false
		}
	}
	return true
}
