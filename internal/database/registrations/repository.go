// Package registrations provides database operations for registrations and
// the balance items they create.
package registrations

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mrlokans/memberimport/internal/entities"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Checkout creates registrations and their balance items and deactivates
// the listed registrations, all in one transaction.
func (r *Repository) Checkout(ctx context.Context, registrations []entities.Registration, items []entities.BalanceItem, deactivateIDs []string) error {
	now := time.Now()

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(deactivateIDs) > 0 {
			err := tx.Model(&entities.Registration{}).
				Where("id IN ? AND deactivated_at IS NULL", deactivateIDs).
				Update("deactivated_at", now).Error
			if err != nil {
				return fmt.Errorf("deactivate registrations: %w", err)
			}
		}

		for i := range registrations {
			if registrations[i].ID == "" {
				registrations[i].ID = uuid.NewString()
			}
			if err := tx.Create(&registrations[i]).Error; err != nil {
				return fmt.Errorf("create registration: %w", err)
			}
		}

		for i := range items {
			if items[i].ID == "" {
				items[i].ID = uuid.NewString()
			}
			if err := tx.Create(&items[i]).Error; err != nil {
				return fmt.Errorf("create balance item: %w", err)
			}
		}
		return nil
	})
}

// ForMember returns the member's registrations, newest first.
func (r *Repository) ForMember(ctx context.Context, memberID string) ([]entities.Registration, error) {
	var registrations []entities.Registration
	err := r.db.WithContext(ctx).
		Where("member_id = ?", memberID).
		Order("created_at DESC").
		Find(&registrations).Error
	return registrations, err
}

// BalanceItems returns the balance items of a registration.
func (r *Repository) BalanceItems(ctx context.Context, registrationID string) ([]entities.BalanceItem, error) {
	var items []entities.BalanceItem
	err := r.db.WithContext(ctx).
		Where("registration_id = ?", registrationID).
		Order("created_at ASC").
		Find(&items).Error
	return items, err
}
