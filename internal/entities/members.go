package entities

import (
	"strings"
	"time"

	"github.com/mrlokans/memberimport/internal/utils"
)

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

type Address struct {
	Street     string `json:"street"`
	Number     string `json:"number"`
	PostalCode string `json:"postal_code"`
	City       string `json:"city"`
	Country    string `json:"country"` // ISO 3166 alpha-2
}

func (a Address) String() string {
	return strings.TrimSpace(a.Street+" "+a.Number) + ", " + strings.TrimSpace(a.PostalCode+" "+a.City) + ", " + a.Country
}

type Parent struct {
	ID                     string   `json:"id"`
	FirstName              string   `json:"first_name"`
	LastName               string   `json:"last_name"`
	Email                  string   `json:"email,omitempty"`
	Phone                  string   `json:"phone,omitempty"`
	Address                *Address `json:"address,omitempty"`
	NationalRegisterNumber string   `json:"national_register_number,omitempty"`
}

func (p Parent) Name() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// Merge copies the non-empty fields of other onto p. The id is kept.
func (p *Parent) Merge(other Parent) {
	if other.FirstName != "" {
		p.FirstName = other.FirstName
	}
	if other.LastName != "" {
		p.LastName = other.LastName
	}
	if other.Email != "" {
		p.Email = other.Email
	}
	if other.Phone != "" {
		p.Phone = other.Phone
	}
	if other.Address != nil {
		address := *other.Address
		p.Address = &address
	}
	if other.NationalRegisterNumber != "" {
		p.NationalRegisterNumber = other.NationalRegisterNumber
	}
}

// MemberDetails is the editable part of a member, stored as JSON.
type MemberDetails struct {
	FirstName                string                  `json:"first_name"`
	LastName                 string                  `json:"last_name"`
	BirthDay                 *time.Time              `json:"birth_day,omitempty"`
	Gender                   Gender                  `json:"gender,omitempty"`
	Email                    string                  `json:"email,omitempty"`
	Phone                    string                  `json:"phone,omitempty"`
	Address                  *Address                `json:"address,omitempty"`
	MemberNumber             string                  `json:"member_number,omitempty"`
	NationalRegisterNumber   string                  `json:"national_register_number,omitempty"`
	Parents                  []Parent                `json:"parents,omitempty"`
	RecordAnswers            map[string]RecordAnswer `json:"record_answers,omitempty"`
	RequiresFinancialSupport bool                    `json:"requires_financial_support"`
	Notes                    string                  `json:"notes,omitempty"`
}

func (d MemberDetails) Name() string {
	return strings.TrimSpace(d.FirstName + " " + d.LastName)
}

// Age returns the age in whole years at the given moment.
func (d MemberDetails) Age(at time.Time) (int, bool) {
	if d.BirthDay == nil {
		return 0, false
	}
	b := *d.BirthDay
	age := at.Year() - b.Year()
	if at.Month() < b.Month() || (at.Month() == b.Month() && at.Day() < b.Day()) {
		age--
	}
	return age, true
}

// Clone returns a deep copy.
func (d MemberDetails) Clone() MemberDetails {
	clone := d
	if d.BirthDay != nil {
		birthDay := *d.BirthDay
		clone.BirthDay = &birthDay
	}
	if d.Address != nil {
		address := *d.Address
		clone.Address = &address
	}
	if d.Parents != nil {
		clone.Parents = make([]Parent, len(d.Parents))
		for i, p := range d.Parents {
			clone.Parents[i] = p
			if p.Address != nil {
				address := *p.Address
				clone.Parents[i].Address = &address
			}
		}
	}
	if d.RecordAnswers != nil {
		clone.RecordAnswers = make(map[string]RecordAnswer, len(d.RecordAnswers))
		for id, answer := range d.RecordAnswers {
			clone.RecordAnswers[id] = answer
		}
	}
	return clone
}

// AddParent merges parent into an existing parent when it looks like the
// same person (same id, same name, a name with one typo, or the same email
// or phone), otherwise appends it. It returns the id of the stored parent.
func (d *MemberDetails) AddParent(parent Parent) string {
	if i := d.findParent(parent); i >= 0 {
		d.Parents[i].Merge(parent)
		return d.Parents[i].ID
	}
	d.Parents = append(d.Parents, parent)
	return parent.ID
}

func (d *MemberDetails) findParent(parent Parent) int {
	if parent.ID != "" {
		for i, p := range d.Parents {
			if p.ID == parent.ID {
				return i
			}
		}
	}

	name := parent.Name()
	if name != "" {
		for i, p := range d.Parents {
			if utils.TypoCount(p.Name(), name) == 0 {
				return i
			}
		}
		for i, p := range d.Parents {
			if utils.TypoCount(p.Name(), name) < 2 {
				return i
			}
		}
	}

	for i, p := range d.Parents {
		if parent.Email != "" && strings.EqualFold(p.Email, parent.Email) {
			return i
		}
		if parent.Phone != "" && p.Phone == parent.Phone {
			return i
		}
	}
	return -1
}

// CleanData normalizes whitespace in free text fields.
func (d *MemberDetails) CleanData() {
	d.FirstName = utils.CollapseSpaces(d.FirstName)
	d.LastName = utils.CollapseSpaces(d.LastName)
	d.Email = strings.ToLower(strings.TrimSpace(d.Email))
	d.Notes = strings.TrimSpace(d.Notes)
	for i := range d.Parents {
		d.Parents[i].FirstName = utils.CollapseSpaces(d.Parents[i].FirstName)
		d.Parents[i].LastName = utils.CollapseSpaces(d.Parents[i].LastName)
		d.Parents[i].Email = strings.ToLower(strings.TrimSpace(d.Parents[i].Email))
	}
}

type Member struct {
	ID             string         `gorm:"primaryKey;size:36" json:"id"`
	OrganizationID string         `gorm:"index;size:64" json:"organization_id"`
	FamilyID       string         `gorm:"index;size:36" json:"family_id"`
	Details        MemberDetails  `gorm:"serializer:json;type:text" json:"details"`
	Registrations  []Registration `gorm:"foreignKey:MemberID" json:"registrations,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

func (Member) TableName() string {
	return "members"
}

// ActiveRegistrations returns the registrations that are not deactivated.
func (m Member) ActiveRegistrations() []Registration {
	active := make([]Registration, 0, len(m.Registrations))
	for _, r := range m.Registrations {
		if r.IsActive() {
			active = append(active, r)
		}
	}
	return active
}
