package matchers

import (
	"fmt"
	"strings"
	"time"

	"github.com/mrlokans/memberimport/internal/apperrors"
	"github.com/mrlokans/memberimport/internal/entities"
	"github.com/mrlokans/memberimport/internal/importers"
	"github.com/mrlokans/memberimport/internal/parsers"
	"github.com/mrlokans/memberimport/internal/sheet"
	"github.com/mrlokans/memberimport/internal/utils"
)

// RecordMatcher fills in the answer to one custom record. Answers of
// registration scoped categories go to the registration, the others to
// the member details.
type RecordMatcher struct {
	detector
	record  entities.Record
	scope   entities.RecordScope
	country string
	now     func() time.Time
}

func Record(category entities.RecordCategory, record entities.Record, country string, now func() time.Time) RecordMatcher {
	keywords := make([]string, 0, len(record.Keywords))
	for _, k := range record.Keywords {
		if folded := utils.Fold(k); folded != "" {
			keywords = append(keywords, folded)
		}
	}
	return RecordMatcher{
		detector: detector{
			id:       "record." + record.ID,
			name:     record.Name,
			category: importers.CategoryRecords(category.ID),
			required: record.Required,
			keywords: keywords,
		},
		record:  record,
		scope:   category.Scope,
		country: country,
		now:     now,
	}
}

// Records returns a matcher for every record of every category.
func Records(categories []entities.RecordCategory, country string, now func() time.Time) []importers.ColumnMatcher {
	var list []importers.ColumnMatcher
	for _, category := range categories {
		for _, record := range category.Records {
			list = append(list, Record(category, record, country, now))
		}
	}
	return list
}

func (m RecordMatcher) Apply(cell *sheet.Cell, result *importers.ImportMemberResult) error {
	answer, err := m.answer(cell)
	if answer == nil {
		return err
	}
	if m.scope == entities.RecordScopeRegistration {
		result.Registration.SetRecordAnswer(*answer)
		return nil
	}
	result.Update(func(p *importers.DetailsPatch) {
		p.SetRecordAnswer(*answer)
	})
	return nil
}

func (m RecordMatcher) answer(cell *sheet.Cell) (*entities.RecordAnswer, error) {
	answer := &entities.RecordAnswer{RecordID: m.record.ID, Type: m.record.Type}

	switch m.record.Type {
	case entities.RecordTypeCheckbox:
		checked, err := m.boolean(cell)
		if checked == nil {
			return nil, err
		}
		answer.Checked = *checked
	case entities.RecordTypeDate:
		date, err := m.date(cell, m.now())
		if date == nil {
			return nil, err
		}
		answer.Date = date
	case entities.RecordTypePrice:
		price, err := m.price(cell)
		if price == nil {
			return nil, err
		}
		answer.Price = *price
	default:
		text, ok, err := m.text(cell)
		if !ok {
			return nil, err
		}
		text, err = m.parseText(text)
		if err != nil {
			return nil, err
		}
		answer.Text = text
	}

	return answer, nil
}

func (m RecordMatcher) parseText(text string) (string, error) {
	switch m.record.Type {
	case entities.RecordTypeEmail:
		return parsers.ParseEmail(text)
	case entities.RecordTypePhone:
		return parsers.ParsePhone(text, m.country)
	case entities.RecordTypeChoice:
		for _, choice := range m.record.Choices {
			if utils.IsTypoEqual(choice, text) {
				return choice, nil
			}
		}
		return "", apperrors.InvalidField(m.record.ID,
			fmt.Sprintf("'%s' is not one of the options: %s", text, strings.Join(m.record.Choices, ", ")))
	default:
		return text, nil
	}
}
