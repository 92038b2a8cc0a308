// Package groups provides database operations for registration periods,
// their groups and group categories.
package groups

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mrlokans/memberimport/internal/entities"
)

var (
	ErrPeriodNotFound = errors.New("registration period not found")
	ErrGroupNotFound  = errors.New("group not found")
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Period returns a period with its groups and categories.
func (r *Repository) Period(ctx context.Context, id string) (*entities.RegistrationPeriod, error) {
	var period entities.RegistrationPeriod
	err := r.db.WithContext(ctx).
		Preload("Groups", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, name ASC")
		}).
		Preload("Categories").
		First(&period, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPeriodNotFound
	}
	if err != nil {
		return nil, err
	}
	return &period, nil
}

// Periods lists the organization's periods, most recent first.
func (r *Repository) Periods(ctx context.Context, organizationID string) ([]entities.RegistrationPeriod, error) {
	var periods []entities.RegistrationPeriod
	err := r.db.WithContext(ctx).
		Where("organization_id = ?", organizationID).
		Order("start_date DESC").
		Find(&periods).Error
	return periods, err
}

// Group returns one group.
func (r *Repository) Group(ctx context.Context, id string) (*entities.Group, error) {
	var group entities.Group
	err := r.db.WithContext(ctx).First(&group, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrGroupNotFound
	}
	if err != nil {
		return nil, err
	}
	return &group, nil
}

// SavePeriod stores a period together with its groups and categories.
func (r *Repository) SavePeriod(ctx context.Context, period *entities.RegistrationPeriod) error {
	if period.ID == "" {
		period.ID = uuid.NewString()
	}
	for i := range period.Groups {
		if period.Groups[i].ID == "" {
			period.Groups[i].ID = uuid.NewString()
		}
		period.Groups[i].PeriodID = period.ID
		period.Groups[i].OrganizationID = period.OrganizationID
	}
	for i := range period.Categories {
		if period.Categories[i].ID == "" {
			period.Categories[i].ID = uuid.NewString()
		}
		period.Categories[i].PeriodID = period.ID
	}

	return r.db.WithContext(ctx).
		Session(&gorm.Session{FullSaveAssociations: true}).
		Save(period).Error
}
