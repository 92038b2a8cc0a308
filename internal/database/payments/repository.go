// Package payments provides database operations for payments.
package payments

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mrlokans/memberimport/internal/entities"
)

// ErrOverpaid is returned when a payment exceeds what is open on a balance item.
var ErrOverpaid = errors.New("payment exceeds the open amount")

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create stores payments and adds them to the paid amount of the balance
// items they settle. Fully paid items are marked paid.
func (r *Repository) Create(ctx context.Context, payments []entities.Payment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range payments {
			payment := &payments[i]
			if payment.ID == "" {
				payment.ID = uuid.NewString()
			}

			var total int64
			for j := range payment.BalanceItemPayments {
				part := &payment.BalanceItemPayments[j]
				if part.ID == "" {
					part.ID = uuid.NewString()
				}
				part.PaymentID = payment.ID
				total += part.Price

				if err := settle(tx, part.BalanceItemID, part.Price); err != nil {
					return err
				}
			}
			payment.Price = total

			if err := tx.Create(payment).Error; err != nil {
				return fmt.Errorf("create payment: %w", err)
			}
		}
		return nil
	})
}

func settle(tx *gorm.DB, balanceItemID string, amount int64) error {
	var item entities.BalanceItem
	if err := tx.First(&item, "id = ?", balanceItemID).Error; err != nil {
		return fmt.Errorf("balance item %s: %w", balanceItemID, err)
	}
	if amount > item.PriceOpen() {
		return fmt.Errorf("balance item %s: %w", balanceItemID, ErrOverpaid)
	}

	item.PricePaid += amount
	if item.PriceOpen() == 0 {
		item.Status = entities.BalanceItemStatusPaid
	}
	return tx.Model(&item).Updates(map[string]any{
		"price_paid": item.PricePaid,
		"status":     item.Status,
	}).Error
}

// ForOrganization lists the organization's payments with their parts.
func (r *Repository) ForOrganization(ctx context.Context, organizationID string) ([]entities.Payment, error) {
	var payments []entities.Payment
	err := r.db.WithContext(ctx).
		Preload("BalanceItemPayments").
		Where("organization_id = ?", organizationID).
		Order("created_at ASC").
		Find(&payments).Error
	return payments, err
}
