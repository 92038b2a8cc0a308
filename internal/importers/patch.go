package importers

import (
	"time"

	"github.com/google/uuid"

	"github.com/mrlokans/memberimport/internal/entities"
)

// AddressPatch holds the address parts read from separate columns or from
// one full address column.
type AddressPatch struct {
	Street     *string
	Number     *string
	PostalCode *string
	City       *string
	Country    *string
}

func (p *AddressPatch) apply(base *entities.Address) *entities.Address {
	if p == nil {
		return base
	}
	address := entities.Address{}
	if base != nil {
		address = *base
	}
	setString(&address.Street, p.Street)
	setString(&address.Number, p.Number)
	setString(&address.PostalCode, p.PostalCode)
	setString(&address.City, p.City)
	setString(&address.Country, p.Country)
	return &address
}

// SetAddress replaces every part of the patch with a full address.
func (p *AddressPatch) SetAddress(a entities.Address) {
	p.Street = &a.Street
	p.Number = &a.Number
	p.PostalCode = &a.PostalCode
	p.City = &a.City
	p.Country = &a.Country
}

// PersonPatch holds the fields shared by members and parents.
type PersonPatch struct {
	FirstName              *string
	LastName               *string
	Email                  *string
	Phone                  *string
	NationalRegisterNumber *string
	Address                *AddressPatch
}

// EnsureAddress returns the address patch, creating it when needed.
func (p *PersonPatch) EnsureAddress() *AddressPatch {
	if p.Address == nil {
		p.Address = &AddressPatch{}
	}
	return p.Address
}

func (p *PersonPatch) isEmpty() bool {
	return p.FirstName == nil && p.LastName == nil && p.Email == nil && p.Phone == nil &&
		p.NationalRegisterNumber == nil && p.Address == nil
}

// ParentPatch is a PersonPatch for a parent. ID is used when the parent
// turns out to be new.
type ParentPatch struct {
	PersonPatch
	ID string
}

func (p *ParentPatch) parent(base *entities.Address) entities.Parent {
	parent := entities.Parent{ID: p.ID}
	setString(&parent.FirstName, p.FirstName)
	setString(&parent.LastName, p.LastName)
	setString(&parent.Email, p.Email)
	setString(&parent.Phone, p.Phone)
	setString(&parent.NationalRegisterNumber, p.NationalRegisterNumber)
	if p.Address != nil {
		parent.Address = p.Address.apply(base)
	}
	return parent
}

// DetailsPatch is the change one spreadsheet row makes to member details.
// Nil fields are left untouched.
type DetailsPatch struct {
	PersonPatch
	BirthDay                 *time.Time
	Gender                   *entities.Gender
	MemberNumber             *string
	Notes                    *string
	RequiresFinancialSupport *bool
	Parents                  [2]*ParentPatch
	RecordAnswers            map[string]entities.RecordAnswer
}

// Person returns the person patch for a member or parent category.
func (p *DetailsPatch) Person(category Category) (*PersonPatch, bool) {
	if category.Kind == KindMember {
		return &p.PersonPatch, true
	}
	index, ok := category.ParentIndex()
	if !ok {
		return nil, false
	}
	if p.Parents[index] == nil {
		p.Parents[index] = &ParentPatch{ID: uuid.NewString()}
	}
	return &p.Parents[index].PersonPatch, true
}

// SetRecordAnswer stores an answer to a custom record.
func (p *DetailsPatch) SetRecordAnswer(answer entities.RecordAnswer) {
	if p.RecordAnswers == nil {
		p.RecordAnswers = make(map[string]entities.RecordAnswer)
	}
	p.RecordAnswers[answer.RecordID] = answer
}

// Apply returns a copy of base with the patch applied, plus the ids of the
// parents that were added or changed.
func (p *DetailsPatch) Apply(base entities.MemberDetails) (entities.MemberDetails, []string) {
	details := base.Clone()

	setString(&details.FirstName, p.FirstName)
	setString(&details.LastName, p.LastName)
	setString(&details.Email, p.Email)
	setString(&details.Phone, p.Phone)
	setString(&details.NationalRegisterNumber, p.NationalRegisterNumber)
	setString(&details.MemberNumber, p.MemberNumber)
	setString(&details.Notes, p.Notes)
	if p.Address != nil {
		details.Address = p.Address.apply(details.Address)
	}
	if p.BirthDay != nil {
		birthDay := *p.BirthDay
		details.BirthDay = &birthDay
	}
	if p.Gender != nil {
		details.Gender = *p.Gender
	}
	if p.RequiresFinancialSupport != nil {
		details.RequiresFinancialSupport = *p.RequiresFinancialSupport
	}

	var changedParents []string
	for _, parentPatch := range p.Parents {
		if parentPatch == nil || parentPatch.isEmpty() {
			continue
		}
		id := details.AddParent(parentPatch.parent(nil))
		changedParents = append(changedParents, id)
	}

	if len(p.RecordAnswers) > 0 {
		if details.RecordAnswers == nil {
			details.RecordAnswers = make(map[string]entities.RecordAnswer, len(p.RecordAnswers))
		}
		for id, answer := range p.RecordAnswers {
			details.RecordAnswers[id] = answer
		}
	}

	details.CleanData()
	return details, changedParents
}

func setString(target *string, value *string) {
	if value != nil {
		*target = *value
	}
}
