package importers

import (
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"

	"github.com/mrlokans/memberimport/internal/entities"
)

// ImportRegistrationResult is what a row asks for in terms of registration
// and payment.
type ImportRegistrationResult struct {
	// Group from a group column.
	Group *entities.Group
	// AutoAssignedGroup is picked by age when there is no group column.
	AutoAssignedGroup *entities.Group
	// PriceName selects a price of the group by name.
	PriceName string
	// Price overrides the price of the group.
	Price *int64
	// Paid marks the whole registration as paid or unpaid.
	Paid *bool
	// PaidPrice is the amount already paid; it takes precedence over Paid.
	PaidPrice     *int64
	StartDate     *time.Time
	EndDate       *time.Time
	RecordAnswers map[string]entities.RecordAnswer
}

// ResolvedGroup returns the explicit group, else the auto-assigned one.
func (r *ImportRegistrationResult) ResolvedGroup() *entities.Group {
	if r.Group != nil {
		return r.Group
	}
	return r.AutoAssignedGroup
}

// SetRecordAnswer stores an answer to a registration scoped record.
func (r *ImportRegistrationResult) SetRecordAnswer(answer entities.RecordAnswer) {
	if r.RecordAnswers == nil {
		r.RecordAnswers = make(map[string]entities.RecordAnswer)
	}
	r.RecordAnswers[answer.RecordID] = answer
}

// ImportMemberResult accumulates everything one row contributes: a patch for
// the member details and the registration and payment the row asks for.
// It refers to exactly one existing member, or creates one new member.
type ImportMemberResult struct {
	Row          int
	Registration ImportRegistrationResult

	existing    *entities.Member
	baseDetails entities.MemberDetails
	patch       DetailsPatch

	cachedDetails  *entities.MemberDetails
	changedParents []string

	newMember              *entities.Member
	importedMember         *entities.Member
	isRegistrationImported bool
	isPaymentImported      bool
	checkedOutGroup        *entities.Group
	registrationID         string
}

// NewImportMemberResult starts a result for a row. existing is nil for new members.
func NewImportMemberResult(row int, existing *entities.Member) *ImportMemberResult {
	r := &ImportMemberResult{Row: row, existing: existing}
	if existing != nil {
		r.baseDetails = existing.Details.Clone()
	}
	return r
}

// IsExisting reports whether the row updates an existing member.
func (r *ImportMemberResult) IsExisting() bool {
	return r.existing != nil
}

// ExistingMember returns the member being updated, or nil.
func (r *ImportMemberResult) ExistingMember() *entities.Member {
	return r.existing
}

// Update changes the details patch.
func (r *ImportMemberResult) Update(fn func(patch *DetailsPatch)) {
	fn(&r.patch)
	r.cachedDetails = nil
}

// UpdatePerson changes the member or parent patch selected by category. It
// reports false for categories that do not describe a person.
func (r *ImportMemberResult) UpdatePerson(category Category, fn func(person *PersonPatch)) bool {
	person, ok := r.patch.Person(category)
	if !ok {
		return false
	}
	fn(person)
	r.cachedDetails = nil
	return true
}

// PatchedDetails returns the base details with the row's patch applied.
func (r *ImportMemberResult) PatchedDetails() entities.MemberDetails {
	if r.cachedDetails == nil {
		details, changed := r.patch.Apply(r.baseDetails)
		r.cachedDetails = &details
		r.changedParents = changed
	}
	return r.cachedDetails.Clone()
}

// HasChanges reports whether saving the member would change anything.
// New members always have changes.
func (r *ImportMemberResult) HasChanges() bool {
	if r.existing == nil {
		return true
	}
	return !cmp.Equal(r.baseDetails, r.PatchedDetails(), cmpopts.EquateEmpty())
}

// ChangedParents returns the parents the row added or changed.
func (r *ImportMemberResult) ChangedParents() []entities.Parent {
	details := r.PatchedDetails()
	var parents []entities.Parent
	for _, id := range r.changedParents {
		for _, p := range details.Parents {
			if p.ID == id {
				parents = append(parents, p)
				break
			}
		}
	}
	return parents
}

// ChangedRecordAnswers returns the member record answers set by the row.
func (r *ImportMemberResult) ChangedRecordAnswers() []entities.RecordAnswer {
	answers := make([]entities.RecordAnswer, 0, len(r.patch.RecordAnswers))
	for _, answer := range r.patch.RecordAnswers {
		answers = append(answers, answer)
	}
	return answers
}

// PatchedMember returns the member to save: the existing member with patched
// details, or a new member created on first use.
func (r *ImportMemberResult) PatchedMember(organizationID string) *entities.Member {
	var member entities.Member
	switch {
	case r.existing != nil:
		member = *r.existing
	case r.newMember != nil:
		member = *r.newMember
	default:
		r.newMember = &entities.Member{
			ID:             uuid.NewString(),
			OrganizationID: organizationID,
		}
		member = *r.newMember
	}
	member.Details = r.PatchedDetails()
	return &member
}

// NewMember returns the member created for a new row, or nil.
func (r *ImportMemberResult) NewMember() *entities.Member {
	return r.newMember
}

// CheckoutMember is the member registrations and payments are made for.
func (r *ImportMemberResult) CheckoutMember() (*entities.Member, error) {
	if r.importedMember != nil {
		return r.importedMember, nil
	}
	if r.existing != nil {
		return r.existing, nil
	}
	return nil, ErrNoMember
}

func (r *ImportMemberResult) IsMemberImported() bool {
	return r.importedMember != nil
}

func (r *ImportMemberResult) IsRegistrationImported() bool {
	return r.isRegistrationImported
}

func (r *ImportMemberResult) IsPaymentImported() bool {
	return r.isPaymentImported
}

// ImportedMember returns the member as saved by the backend.
func (r *ImportMemberResult) ImportedMember() *entities.Member {
	return r.importedMember
}

func (r *ImportMemberResult) SetImportedMember(member *entities.Member) {
	r.importedMember = member
}

func (r *ImportMemberResult) MarkRegistrationImported() {
	r.isRegistrationImported = true
}

func (r *ImportMemberResult) MarkPaymentImported() {
	r.isPaymentImported = true
}

// CheckedOutGroup is the group the row was registered in during commit.
func (r *ImportMemberResult) CheckedOutGroup() *entities.Group {
	return r.checkedOutGroup
}

func (r *ImportMemberResult) setCheckedOut(group *entities.Group, registrationID string) {
	r.checkedOutGroup = group
	r.registrationID = registrationID
}
