// Package fixtures seeds a database with a registration period that imports
// can be tested against. It replaces hand-crafted test data in production
// code paths; the seed command that exposes it is only built with the
// fixtures build tag.
package fixtures

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/memberimport/internal/database/groups"
	"github.com/mrlokans/memberimport/internal/entities"
)

// PeriodID is the id of the seeded period. Seeding is a no-op when it exists.
const PeriodID = "00000000-0000-4000-8000-000000000001"

// Seed stores the fixture period for organizationID and returns it.
func Seed(ctx context.Context, db *gorm.DB, organizationID string) (*entities.RegistrationPeriod, error) {
	repo := groups.NewRepository(db)

	existing, err := repo.Period(ctx, PeriodID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, groups.ErrPeriodNotFound) {
		return nil, fmt.Errorf("failed to look up fixture period: %w", err)
	}

	period := Period(organizationID, time.Now())
	if err := repo.SavePeriod(ctx, &period); err != nil {
		return nil, fmt.Errorf("failed to seed fixture period: %w", err)
	}
	return repo.Period(ctx, PeriodID)
}

// Period builds the fixture period running from September 1st of the
// current scouting year until the end of August.
func Period(organizationID string, now time.Time) entities.RegistrationPeriod {
	year := now.Year()
	if now.Month() < time.September {
		year--
	}

	waitingListID := "00000000-0000-4000-8000-000000000019"
	limit := 1

	group := func(id, name string, minAge, maxAge int) entities.Group {
		reduced := int64(1500)
		return entities.Group{
			ID:            id,
			Name:          name,
			Type:          entities.GroupTypeMembership,
			MinAge:        &minAge,
			MaxAge:        &maxAge,
			WaitingListID: &waitingListID,
			Prices: []entities.GroupPrice{
				{ID: id + "-standard", Name: "Standaard", Price: 4500, ReducedPrice: &reduced},
				{ID: id + "-sibling", Name: "Broer of zus", Price: 3500, ReducedPrice: &reduced},
			},
		}
	}

	kapoenen := group("00000000-0000-4000-8000-000000000011", "Kapoenen", 6, 7)
	welpen := group("00000000-0000-4000-8000-000000000012", "Welpen", 8, 10)
	jonggivers := group("00000000-0000-4000-8000-000000000013", "Jonggivers", 11, 13)
	givers := group("00000000-0000-4000-8000-000000000014", "Givers", 14, 16)

	return entities.RegistrationPeriod{
		ID:             PeriodID,
		OrganizationID: organizationID,
		Name:           fmt.Sprintf("%d-%d", year, year+1),
		StartDate:      time.Date(year, time.September, 1, 0, 0, 0, 0, time.UTC),
		EndDate:        time.Date(year+1, time.August, 31, 0, 0, 0, 0, time.UTC),
		Groups: []entities.Group{
			kapoenen,
			welpen,
			jonggivers,
			givers,
			{ID: waitingListID, Name: "Wachtlijst", Type: entities.GroupTypeWaitingList},
		},
		Categories: []entities.GroupCategory{
			{
				ID:                   "00000000-0000-4000-8000-000000000021",
				Name:                 "Takken",
				GroupIDs:             []string{kapoenen.ID, welpen.ID, jonggivers.ID, givers.ID},
				MaximumRegistrations: &limit,
			},
		},
	}
}
