package importers

import (
	"strings"
	"time"

	"github.com/mrlokans/memberimport/internal/entities"
)

// ImportMemberBaseResult holds the identity fields of one row, read before
// the row is matched to an existing member. Setters ignore empty values, so
// a field is never cleared once set.
type ImportMemberBaseResult struct {
	Row int

	firstName              string
	lastName               string
	birthDay               *time.Time
	memberNumber           string
	nationalRegisterNumber string
}

func NewImportMemberBaseResult(row int) *ImportMemberBaseResult {
	return &ImportMemberBaseResult{Row: row}
}

func (b *ImportMemberBaseResult) SetFirstName(name string) {
	if name = strings.TrimSpace(name); name != "" {
		b.firstName = name
	}
}

func (b *ImportMemberBaseResult) SetLastName(name string) {
	if name = strings.TrimSpace(name); name != "" {
		b.lastName = name
	}
}

func (b *ImportMemberBaseResult) SetBirthDay(birthDay time.Time) {
	if !birthDay.IsZero() {
		b.birthDay = &birthDay
	}
}

func (b *ImportMemberBaseResult) SetMemberNumber(number string) {
	if number = strings.TrimSpace(number); number != "" {
		b.memberNumber = number
	}
}

func (b *ImportMemberBaseResult) SetNationalRegisterNumber(number string) {
	if number = strings.TrimSpace(number); number != "" {
		b.nationalRegisterNumber = number
	}
}

func (b *ImportMemberBaseResult) FirstName() string {
	return b.firstName
}

func (b *ImportMemberBaseResult) LastName() string {
	return b.lastName
}

// BirthDay returns the birth day read so far, or nil.
func (b *ImportMemberBaseResult) BirthDay() *time.Time {
	if b.birthDay == nil {
		return nil
	}
	birthDay := *b.birthDay
	return &birthDay
}

func (b *ImportMemberBaseResult) MemberNumber() string {
	return b.memberNumber
}

func (b *ImportMemberBaseResult) NationalRegisterNumber() string {
	return b.nationalRegisterNumber
}

// IsEmpty reports whether no identity field was read.
func (b *ImportMemberBaseResult) IsEmpty() bool {
	return b.firstName == "" && b.lastName == "" && b.birthDay == nil &&
		b.memberNumber == "" && b.nationalRegisterNumber == ""
}

// Identity returns the fields used for duplicate detection.
func (b *ImportMemberBaseResult) Identity() Identity {
	return Identity{
		FirstName:              b.firstName,
		LastName:               b.lastName,
		BirthDay:               b.BirthDay(),
		MemberNumber:           b.memberNumber,
		NationalRegisterNumber: b.nationalRegisterNumber,
	}
}

// Identity is the part of a member used to recognize the same person.
type Identity struct {
	FirstName              string
	LastName               string
	BirthDay               *time.Time
	MemberNumber           string
	NationalRegisterNumber string
}

// IdentityOf extracts the identity of stored member details.
func IdentityOf(details entities.MemberDetails) Identity {
	return Identity{
		FirstName:              details.FirstName,
		LastName:               details.LastName,
		BirthDay:               details.BirthDay,
		MemberNumber:           details.MemberNumber,
		NationalRegisterNumber: details.NationalRegisterNumber,
	}
}

func (i Identity) FullName() string {
	return strings.TrimSpace(i.FirstName + " " + i.LastName)
}
