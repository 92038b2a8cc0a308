package matchers

import (
	"time"

	"github.com/mrlokans/memberimport/internal/importers"
	"github.com/mrlokans/memberimport/internal/parsers"
	"github.com/mrlokans/memberimport/internal/sheet"
)

// BirthDayMatcher reads the member's birth day.
type BirthDayMatcher struct {
	detector
	now func() time.Time
}

func BirthDay(now func() time.Time, opts ...Option) BirthDayMatcher {
	d := personDetector("birth_day", "Birth day", importers.CategoryMember,
		[]string{"geboortedatum", "geboorte", "birth", "geboren", "naissance", "dob"}, opts...)
	d.negative = append(append([]string{}, d.negative...), "plaats", "place", "lieu", "land", "country")
	return BirthDayMatcher{detector: d, now: now}
}

func (m BirthDayMatcher) Apply(cell *sheet.Cell, result *importers.ImportMemberResult) error {
	birthDay, err := m.date(cell, m.now())
	if birthDay == nil {
		return err
	}
	result.Update(func(p *importers.DetailsPatch) {
		p.BirthDay = birthDay
	})
	return nil
}

func (m BirthDayMatcher) ApplyBase(cell *sheet.Cell, base *importers.ImportMemberBaseResult) error {
	birthDay, err := m.date(cell, m.now())
	if birthDay == nil {
		return err
	}
	base.SetBirthDay(*birthDay)
	return nil
}

// GenderMatcher reads the member's gender.
type GenderMatcher struct{ detector }

func Gender(opts ...Option) GenderMatcher {
	return GenderMatcher{personDetector("gender", "Gender", importers.CategoryMember,
		[]string{"geslacht", "gender", "sexe", "sex", "m/v", "m/f"}, opts...)}
}

func (m GenderMatcher) Apply(cell *sheet.Cell, result *importers.ImportMemberResult) error {
	text, ok, err := m.text(cell)
	if !ok {
		return err
	}
	gender, err := parsers.ParseGender(text)
	if err != nil {
		return err
	}
	result.Update(func(p *importers.DetailsPatch) {
		p.Gender = &gender
	})
	return nil
}

// MemberNumberMatcher reads the organization's own member number.
type MemberNumberMatcher struct{ detector }

func MemberNumber(opts ...Option) MemberNumberMatcher {
	return MemberNumberMatcher{personDetector("member_number", "Member number", importers.CategoryMember,
		[]string{"lidnummer", "lidnr", "member number", "member id", "membership number", "numero de membre"}, opts...)}
}

func (m MemberNumberMatcher) Apply(cell *sheet.Cell, result *importers.ImportMemberResult) error {
	number, ok, err := m.text(cell)
	if !ok {
		return err
	}
	result.Update(func(p *importers.DetailsPatch) {
		p.MemberNumber = &number
	})
	return nil
}

func (m MemberNumberMatcher) ApplyBase(cell *sheet.Cell, base *importers.ImportMemberBaseResult) error {
	number, ok, err := m.text(cell)
	if ok {
		base.SetMemberNumber(number)
	}
	return err
}

// FinancialSupportMatcher reads whether the member gets reduced prices.
type FinancialSupportMatcher struct{ detector }

func FinancialSupport(opts ...Option) FinancialSupportMatcher {
	return FinancialSupportMatcher{personDetector("financial_support", "Financial support", importers.CategoryMember,
		[]string{"financiele", "financial", "kansentarief", "verminderd tarief", "reduced price", "tarif reduit", "sociaal tarief"}, opts...)}
}

func (m FinancialSupportMatcher) Apply(cell *sheet.Cell, result *importers.ImportMemberResult) error {
	value, err := m.boolean(cell)
	if value == nil {
		return err
	}
	result.Update(func(p *importers.DetailsPatch) {
		p.RequiresFinancialSupport = value
	})
	return nil
}

// NotesMatcher reads free text notes about the member.
type NotesMatcher struct{ detector }

func Notes(opts ...Option) NotesMatcher {
	return NotesMatcher{personDetector("notes", "Notes", importers.CategoryMember,
		[]string{"opmerking", "notitie", "notes", "note", "remark", "comment", "remarque"}, opts...)}
}

func (m NotesMatcher) Apply(cell *sheet.Cell, result *importers.ImportMemberResult) error {
	notes, ok, err := m.text(cell)
	if !ok {
		return err
	}
	result.Update(func(p *importers.DetailsPatch) {
		p.Notes = &notes
	})
	return nil
}
