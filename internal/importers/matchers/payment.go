package matchers

import (
	"github.com/mrlokans/memberimport/internal/importers"
	"github.com/mrlokans/memberimport/internal/sheet"
)

var paidWords = []string{"betaald", "paid", "betaalde", "paye"}

// PaidAmountMatcher reads how much of the registration is already paid.
type PaidAmountMatcher struct{ detector }

func PaidAmount(opts ...Option) PaidAmountMatcher {
	d := detector{
		id:       "payment.paid_amount",
		name:     "Paid amount",
		category: importers.CategoryPayment,
		keywords: []string{"bedrag", "amount", "som", "montant", "prijs", "price"},
		context:  [][]string{paidWords},
	}
	for _, opt := range opts {
		opt(&d)
	}
	return PaidAmountMatcher{d}
}

func (m PaidAmountMatcher) Apply(cell *sheet.Cell, result *importers.ImportMemberResult) error {
	amount, err := m.price(cell)
	if amount == nil {
		return err
	}
	result.Registration.PaidPrice = amount
	return nil
}

// PaidMatcher reads whether the registration is paid in full.
type PaidMatcher struct{ detector }

func Paid(opts ...Option) PaidMatcher {
	d := detector{
		id:       "payment.paid",
		name:     "Paid",
		category: importers.CategoryPayment,
		keywords: paidWords,
		negative: []string{"bedrag", "amount", "som", "montant", "prijs", "price", "datum", "date"},
	}
	for _, opt := range opts {
		opt(&d)
	}
	return PaidMatcher{d}
}

func (m PaidMatcher) Apply(cell *sheet.Cell, result *importers.ImportMemberResult) error {
	paid, err := m.boolean(cell)
	if paid == nil {
		return err
	}
	result.Registration.Paid = paid
	return nil
}
