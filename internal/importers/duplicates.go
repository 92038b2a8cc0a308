package importers

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/mrlokans/memberimport/internal/entities"
	"github.com/mrlokans/memberimport/internal/utils"
)

// Probable match thresholds. Empirically tuned: the name and birth day may
// differ by at most maxCombinedTypos edits together, the birth day by at
// most maxBirthDayTypos, and the name edits must stay below
// maxNameTypoRatio of the shortest name.
const (
	maxCombinedTypos = 3
	maxBirthDayTypos = 1
	maxNameTypoRatio = 0.4
)

const compactDate = "20060102"

// IsMemberEqual reports whether a and b are certainly the same person.
// Matching national register numbers or member numbers are enough on their
// own. Otherwise birth day and full name must match exactly, even when the
// identifiers differ.
func IsMemberEqual(a, b Identity) bool {
	if identifiersMatch(a, b) {
		return true
	}

	if a.BirthDay == nil || b.BirthDay == nil {
		return false
	}
	if !a.BirthDay.Equal(*b.BirthDay) {
		return false
	}
	return utils.TypoCount(a.FullName(), b.FullName()) == 0
}

// IsMemberProbablyEqual reports whether a and b are likely the same person
// despite small typos. Callers check IsMemberEqual first. Identifiers
// present on both sides decide here, so different numbers never pair up
// two people with similar names.
func IsMemberProbablyEqual(a, b Identity) bool {
	if decided, equal := compareIdentifiers(a, b); decided {
		return equal
	}

	if a.BirthDay == nil || b.BirthDay == nil {
		return a.FullName() != "" && utils.TypoCount(a.FullName(), b.FullName()) == 0
	}

	t := utils.TypoCount(a.FullName(), b.FullName())
	y := utils.TypoCount(a.BirthDay.Format(compactDate), b.BirthDay.Format(compactDate))
	shortest := min(nameLength(a), nameLength(b))

	return t+y <= maxCombinedTypos && y <= maxBirthDayTypos && float64(t) < maxNameTypoRatio*float64(shortest)
}

func identifiersMatch(a, b Identity) bool {
	decided, equal := compareIdentifiers(a, b)
	return decided && equal
}

// compareIdentifiers compares the first identifier both sides have.
func compareIdentifiers(a, b Identity) (decided, equal bool) {
	if nrnA, nrnB := digitsOnly(a.NationalRegisterNumber), digitsOnly(b.NationalRegisterNumber); nrnA != "" && nrnB != "" {
		return true, nrnA == nrnB
	}
	if a.MemberNumber != "" && b.MemberNumber != "" {
		return true, strings.EqualFold(strings.TrimSpace(a.MemberNumber), strings.TrimSpace(b.MemberNumber))
	}
	return false, false
}

func nameLength(i Identity) int {
	return utf8.RuneCountInString(utils.Fold(i.FirstName)) + utf8.RuneCountInString(utils.Fold(i.LastName))
}

func digitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, s)
}

// FindExistingMemberResult is the outcome of duplicate detection for one row.
// Exact matches are confirmed automatically; probable matches wait for
// MarkEqual or MarkNotEqual.
type FindExistingMemberResult struct {
	Base *ImportMemberBaseResult

	existing        *entities.Member
	isEqual         bool
	isProbablyEqual bool
}

// FindExistingMember looks for the row's member among the existing members.
// An exact match anywhere wins over a probable match.
func FindExistingMember(base *ImportMemberBaseResult, members []entities.Member) *FindExistingMemberResult {
	result := &FindExistingMemberResult{Base: base}
	if base.IsEmpty() {
		return result
	}
	identity := base.Identity()

	for i := range members {
		if IsMemberEqual(identity, IdentityOf(members[i].Details)) {
			result.existing = &members[i]
			result.isEqual = true
			return result
		}
	}

	for i := range members {
		if IsMemberProbablyEqual(identity, IdentityOf(members[i].Details)) {
			result.existing = &members[i]
			result.isProbablyEqual = true
			return result
		}
	}

	return result
}

// Existing returns the matched member, confirmed or not.
func (r *FindExistingMemberResult) Existing() *entities.Member {
	return r.existing
}

func (r *FindExistingMemberResult) IsEqual() bool {
	return r.isEqual
}

func (r *FindExistingMemberResult) IsProbablyEqual() bool {
	return r.isProbablyEqual
}

// NeedsConfirmation reports whether a probable match awaits a decision.
func (r *FindExistingMemberResult) NeedsConfirmation() bool {
	return r.existing != nil && r.isProbablyEqual && !r.isEqual
}

// MarkEqual confirms the match.
func (r *FindExistingMemberResult) MarkEqual() {
	if r.existing != nil {
		r.isEqual = true
	}
}

// MarkNotEqual rejects the match; the row will create a new member.
func (r *FindExistingMemberResult) MarkNotEqual() {
	r.isEqual = false
	r.isProbablyEqual = false
}

// ConfirmedMember returns the existing member when the match is confirmed.
func (r *FindExistingMemberResult) ConfirmedMember() *entities.Member {
	if r.isEqual {
		return r.existing
	}
	return nil
}
