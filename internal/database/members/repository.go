// Package members provides database operations for members.
package members

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mrlokans/memberimport/internal/entities"
)

// ErrNotFound is returned when a member does not exist.
var ErrNotFound = errors.New("member not found")

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// List returns the organization's members with their registrations.
func (r *Repository) List(ctx context.Context, organizationID string) ([]entities.Member, error) {
	var members []entities.Member
	err := r.db.WithContext(ctx).
		Preload("Registrations").
		Where("organization_id = ?", organizationID).
		Order("created_at ASC").
		Find(&members).Error
	return members, err
}

// Get returns one member with its registrations.
func (r *Repository) Get(ctx context.Context, id string) (*entities.Member, error) {
	var member entities.Member
	err := r.db.WithContext(ctx).Preload("Registrations").First(&member, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// Save creates the member or replaces its details. Registrations are
// managed by the registrations repository and are never written here.
func (r *Repository) Save(ctx context.Context, member *entities.Member) (*entities.Member, error) {
	if member.ID == "" {
		member.ID = uuid.NewString()
	}
	if member.FamilyID == "" {
		member.FamilyID = uuid.NewString()
	}

	if err := r.db.WithContext(ctx).Omit("Registrations").Save(member).Error; err != nil {
		return nil, fmt.Errorf("save member %s: %w", member.ID, err)
	}
	return r.Get(ctx, member.ID)
}

// Family returns the members sharing a family id.
func (r *Repository) Family(ctx context.Context, familyID string) ([]entities.Member, error) {
	var members []entities.Member
	err := r.db.WithContext(ctx).Where("family_id = ?", familyID).Find(&members).Error
	return members, err
}

func (r *Repository) Count(ctx context.Context, organizationID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Member{}).Where("organization_id = ?", organizationID).Count(&count).Error
	return count, err
}
