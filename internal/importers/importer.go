package importers

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mrlokans/memberimport/internal/apperrors"
	"github.com/mrlokans/memberimport/internal/entities"
	"github.com/mrlokans/memberimport/internal/records"
	"github.com/mrlokans/memberimport/internal/utils"
)

// DefaultRowDelay is the pause between two committed rows.
const DefaultRowDelay = 100 * time.Millisecond

// ImportContext holds the choices made for the whole commit.
type ImportContext struct {
	Period *entities.RegistrationPeriod
	// IsWaitingList registers members on the waiting list of their group.
	IsWaitingList bool
	// Paid applies to rows without a paid column.
	Paid *bool
}

// Progress is reported after every row.
type Progress struct {
	Processed int    `json:"processed"`
	Total     int    `json:"total"`
	Succeeded int    `json:"succeeded"`
	Failed    int    `json:"failed"`
	Current   string `json:"current,omitempty"`
}

// MemberImportReport is the commit outcome of one row.
type MemberImportReport struct {
	Row    int                 `json:"row"`
	Name   string              `json:"name"`
	Error  string              `json:"error,omitempty"`
	Result *ImportMemberResult `json:"-"`
}

func (r MemberImportReport) Succeeded() bool {
	return r.Error == ""
}

// Importer commits import results to a Backend (phase 2). Rows are handled
// one after the other; a failing row never stops the others.
type Importer struct {
	backend        Backend
	organizationID string
	rowDelay       time.Duration
	records        []entities.RecordCategory
	onProgress     func(Progress)
	now            func() time.Time
	logger         *zap.Logger
}

type ImporterOption func(*Importer)

func WithOrganization(organizationID string) ImporterOption {
	return func(i *Importer) {
		i.organizationID = organizationID
	}
}

// WithRowDelay sets the pause between rows. Zero disables it.
func WithRowDelay(delay time.Duration) ImporterOption {
	return func(i *Importer) {
		i.rowDelay = delay
	}
}

// WithRecordCategories lets error messages name the record they are about.
func WithRecordCategories(categories []entities.RecordCategory) ImporterOption {
	return func(i *Importer) {
		i.records = categories
	}
}

// WithProgress registers a callback invoked after every row.
func WithProgress(fn func(Progress)) ImporterOption {
	return func(i *Importer) {
		i.onProgress = fn
	}
}

func WithImporterClock(now func() time.Time) ImporterOption {
	return func(i *Importer) {
		i.now = now
	}
}

func WithImporterLogger(logger *zap.Logger) ImporterOption {
	return func(i *Importer) {
		if logger != nil {
			i.logger = logger
		}
	}
}

func NewImporter(backend Backend, opts ...ImporterOption) *Importer {
	i := &Importer{
		backend:  backend,
		rowDelay: DefaultRowDelay,
		now:      time.Now,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// CheckGroups returns ErrNoGroup when a new member has no group.
func CheckGroups(results []*ImportMemberResult) error {
	for _, r := range results {
		if r.IsExisting() || r.IsMemberImported() {
			continue
		}
		if r.Registration.ResolvedGroup() == nil {
			return fmt.Errorf("row %d: %w", r.Row+1, ErrNoGroup)
		}
	}
	return nil
}

// Import saves the members, registrations and payments of every result.
// Steps that already succeeded are skipped, so Import can be called again
// with the same results to retry failed rows. The returned error is only
// set when the import could not start or ctx was cancelled.
func (i *Importer) Import(ctx context.Context, results []*ImportMemberResult, ic ImportContext) ([]MemberImportReport, error) {
	if err := CheckGroups(results); err != nil {
		return nil, err
	}

	families := newFamilyIndex(results)
	reports := make([]MemberImportReport, 0, len(results))
	progress := Progress{Total: len(results)}

	for n, r := range results {
		if err := ctx.Err(); err != nil {
			return reports, err
		}

		pending := !r.IsMemberImported() || !r.IsRegistrationImported() || !r.IsPaymentImported()
		report := MemberImportReport{Row: r.Row, Name: r.PatchedDetails().Name(), Result: r}

		if err := i.importMember(ctx, r, ic, families); err != nil {
			report.Error = i.describeError(r, err)
			progress.Failed++
			i.logger.Warn("import row failed",
				zap.Int("row", r.Row),
				zap.String("member", report.Name),
				zap.Error(err),
			)
		} else {
			progress.Succeeded++
		}
		reports = append(reports, report)

		progress.Processed++
		progress.Current = report.Name
		if i.onProgress != nil {
			i.onProgress(progress)
		}

		if pending && i.rowDelay > 0 && n < len(results)-1 {
			select {
			case <-ctx.Done():
				return reports, ctx.Err()
			case <-time.After(i.rowDelay):
			}
		}
	}

	i.logger.Info("import committed",
		zap.Int("rows", progress.Total),
		zap.Int("succeeded", progress.Succeeded),
		zap.Int("failed", progress.Failed),
	)

	return reports, nil
}

func (i *Importer) importMember(ctx context.Context, r *ImportMemberResult, ic ImportContext, families *familyIndex) error {
	if !r.IsMemberImported() {
		if r.IsExisting() && !r.HasChanges() {
			r.SetImportedMember(r.ExistingMember())
		} else {
			member := r.PatchedMember(i.organizationID)
			if !r.IsExisting() {
				families.assign(member)
			}
			saved, err := i.backend.SaveMember(ctx, member)
			if err != nil {
				return err
			}
			r.SetImportedMember(saved)
			families.add(saved)
		}
	}

	if !r.IsRegistrationImported() {
		if err := i.importRegistration(ctx, r, ic); err != nil {
			return err
		}
		r.MarkRegistrationImported()
	}

	if !r.IsPaymentImported() {
		if err := i.importPayment(ctx, r, ic); err != nil {
			return err
		}
		r.MarkPaymentImported()
	}

	return nil
}

func (i *Importer) importRegistration(ctx context.Context, r *ImportMemberResult, ic ImportContext) error {
	group := r.Registration.ResolvedGroup()
	if group == nil || ic.Period == nil {
		return nil
	}
	member, err := r.CheckoutMember()
	if err != nil {
		return err
	}
	period := ic.Period

	target := *group
	if ic.IsWaitingList {
		waitingList, err := waitingListOf(period, group)
		if err != nil {
			return err
		}
		if reg, ok := activeRegistration(member, group.ID, period.ID); ok {
			r.setCheckedOut(group, reg.ID)
			return nil
		}
		if reg, ok := activeRegistration(member, waitingList.ID, period.ID); ok {
			r.setCheckedOut(&waitingList, reg.ID)
			return nil
		}
		target = waitingList
	} else if reg, ok := activeRegistration(member, group.ID, period.ID); ok {
		r.setCheckedOut(group, reg.ID)
		return nil
	}

	item := CheckoutItem{
		GroupID:       target.ID,
		PeriodID:      period.ID,
		WaitingList:   ic.IsWaitingList,
		StartDate:     r.Registration.StartDate,
		EndDate:       r.Registration.EndDate,
		RecordAnswers: r.Registration.RecordAnswers,
	}
	if !ic.IsWaitingList {
		name, price, err := GroupPrice(*group, &r.Registration, member.Details.RequiresFinancialSupport)
		if err != nil {
			return err
		}
		item.PriceName = name
		item.Price = price
	}

	checkout := Checkout{
		OrganizationID: i.organizationID,
		MemberID:       member.ID,
		Items:          []CheckoutItem{item},
	}
	if !ic.IsWaitingList {
		checkout.DeactivateRegistrationIDs = overriddenRegistrations(member, target.ID, period)
	}

	registrations, err := i.backend.Register(ctx, checkout)
	if err != nil {
		return err
	}

	registrationID := ""
	for _, reg := range registrations {
		if reg.GroupID == target.ID {
			registrationID = reg.ID
			break
		}
	}
	r.setCheckedOut(&target, registrationID)
	return nil
}

func (i *Importer) importPayment(ctx context.Context, r *ImportMemberResult, ic ImportContext) error {
	paidPrice := r.Registration.PaidPrice
	paid := r.Registration.Paid
	explicit := paidPrice != nil || paid != nil
	if paid == nil {
		paid = ic.Paid
	}
	if paidPrice == nil && (paid == nil || !*paid) {
		return nil
	}

	if r.registrationID == "" {
		if !explicit {
			return nil
		}
		return ErrNoRegistration
	}

	items, err := i.backend.BalanceItems(ctx, r.registrationID)
	if err != nil {
		return err
	}

	paymentItems := SplitPayment(items, paidPrice)
	if len(paymentItems) == 0 {
		return nil
	}

	paidAt := i.now()
	return i.backend.CreatePayments(ctx, []PaymentRequest{{
		OrganizationID: i.organizationID,
		Method:         entities.PaymentMethodUnknown,
		Status:         entities.PaymentStatusSucceeded,
		PaidAt:         &paidAt,
		Items:          paymentItems,
	}})
}

// SplitPayment spreads a payment over open balance items, oldest and then
// smallest open amount first. With a nil paidPrice every open item is paid
// in full; otherwise only the part of paidPrice not paid yet is spread.
func SplitPayment(items []entities.BalanceItem, paidPrice *int64) []PaymentItem {
	open := make([]entities.BalanceItem, 0, len(items))
	var alreadyPaid int64
	for _, item := range items {
		if item.Status == entities.BalanceItemStatusHidden {
			continue
		}
		alreadyPaid += item.PricePaid
		if item.PriceOpen() > 0 {
			open = append(open, item)
		}
	}
	sort.SliceStable(open, func(a, b int) bool {
		if !open[a].CreatedAt.Equal(open[b].CreatedAt) {
			return open[a].CreatedAt.Before(open[b].CreatedAt)
		}
		return open[a].PriceOpen() < open[b].PriceOpen()
	})

	var paymentItems []PaymentItem
	if paidPrice == nil {
		for _, item := range open {
			paymentItems = append(paymentItems, PaymentItem{BalanceItemID: item.ID, Price: item.PriceOpen()})
		}
		return paymentItems
	}

	left := *paidPrice - alreadyPaid
	for _, item := range open {
		if left <= 0 {
			break
		}
		amount := min(item.PriceOpen(), left)
		paymentItems = append(paymentItems, PaymentItem{BalanceItemID: item.ID, Price: amount})
		left -= amount
	}
	return paymentItems
}

// GroupPrice resolves the price of a registration: an explicit price, a
// price selected by name, the group's first price, or a free default.
func GroupPrice(group entities.Group, reg *ImportRegistrationResult, financialSupport bool) (string, int64, error) {
	if reg.Price != nil {
		return reg.PriceName, *reg.Price, nil
	}
	if reg.PriceName != "" {
		for _, p := range group.Prices {
			if utils.IsTypoEqual(p.Name, reg.PriceName) {
				return p.Name, p.For(financialSupport), nil
			}
		}
		return "", 0, apperrors.NotFound(fmt.Sprintf("Price '%s' does not exist for %s", reg.PriceName, group.Name))
	}
	if len(group.Prices) > 0 {
		return group.Prices[0].Name, group.Prices[0].For(financialSupport), nil
	}
	return "Default", 0, nil
}

// overriddenRegistrations lists the member's registrations in sibling
// groups of categories that allow only one registration.
func overriddenRegistrations(member *entities.Member, groupID string, period *entities.RegistrationPeriod) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, category := range period.ParentCategories(groupID) {
		if category.MaximumRegistrations == nil || *category.MaximumRegistrations != 1 {
			continue
		}
		for _, reg := range member.ActiveRegistrations() {
			if reg.PeriodID != period.ID || reg.GroupID == groupID || reg.WaitingList || seen[reg.ID] {
				continue
			}
			if category.Contains(reg.GroupID) {
				seen[reg.ID] = true
				ids = append(ids, reg.ID)
			}
		}
	}
	return ids
}

func activeRegistration(member *entities.Member, groupID, periodID string) (entities.Registration, bool) {
	for _, reg := range member.ActiveRegistrations() {
		if reg.GroupID == groupID && reg.PeriodID == periodID {
			return reg, true
		}
	}
	return entities.Registration{}, false
}

func waitingListOf(period *entities.RegistrationPeriod, group *entities.Group) (entities.Group, error) {
	if group.WaitingListID == nil {
		return entities.Group{}, apperrors.NotFound(fmt.Sprintf("%s has no waiting list", group.Name))
	}
	waitingList, ok := period.Group(*group.WaitingListID)
	if !ok {
		return entities.Group{}, apperrors.NotFound(fmt.Sprintf("The waiting list of %s does not exist", group.Name))
	}
	return waitingList, nil
}

// describeError builds the report message for a failed row, naming the step
// that failed.
func (i *Importer) describeError(r *ImportMemberResult, err error) string {
	message := apperrors.HumanMessage(err)

	var coded *apperrors.Error
	if errors.As(err, &coded) && coded.Code == apperrors.CodeInvalidField && coded.Field != "" {
		if record, ok := records.Find(i.records, coded.Field); ok {
			message += " (" + record.Name + ")"
		}
	}

	switch {
	case r.IsRegistrationImported():
		return "Error during payment: " + message
	case r.IsMemberImported():
		return "Error during registration: " + message
	default:
		return "Error during member save: " + message
	}
}

// familyIndex groups members of one household. New members sharing a parent
// (same name or email) with a member seen earlier join that member's family.
type familyIndex struct {
	byKey map[string]string
}

func newFamilyIndex(results []*ImportMemberResult) *familyIndex {
	f := &familyIndex{byKey: make(map[string]string)}
	for _, r := range results {
		if member := r.ExistingMember(); member != nil {
			f.add(member)
		}
	}
	return f
}

func familyKeys(details entities.MemberDetails) []string {
	var keys []string
	for _, p := range details.Parents {
		if name := utils.Fold(p.Name()); name != "" {
			keys = append(keys, "name:"+name)
		}
		if email := strings.ToLower(strings.TrimSpace(p.Email)); email != "" {
			keys = append(keys, "email:"+email)
		}
	}
	return keys
}

func (f *familyIndex) assign(member *entities.Member) {
	for _, key := range familyKeys(member.Details) {
		if familyID, ok := f.byKey[key]; ok {
			member.FamilyID = familyID
			return
		}
	}
	if member.FamilyID == "" {
		member.FamilyID = uuid.NewString()
	}
}

func (f *familyIndex) add(member *entities.Member) {
	if member == nil || member.FamilyID == "" {
		return
	}
	for _, key := range familyKeys(member.Details) {
		if _, ok := f.byKey[key]; !ok {
			f.byKey[key] = member.FamilyID
		}
	}
}
