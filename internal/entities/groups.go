package entities

import (
	"time"

	"github.com/mrlokans/memberimport/internal/utils"
)

type GroupType string

const (
	GroupTypeMembership  GroupType = "membership"
	GroupTypeWaitingList GroupType = "waiting_list"
)

// GroupPrice is one selectable price of a group. ReducedPrice applies to
// members that require financial support.
type GroupPrice struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Price        int64  `json:"price"`
	ReducedPrice *int64 `json:"reduced_price,omitempty"`
}

// For returns the amount due for a member with or without financial support.
func (p GroupPrice) For(financialSupport bool) int64 {
	if financialSupport && p.ReducedPrice != nil {
		return *p.ReducedPrice
	}
	return p.Price
}

type Group struct {
	ID             string       `gorm:"primaryKey;size:36" json:"id"`
	OrganizationID string       `gorm:"index;size:64" json:"organization_id"`
	PeriodID       string       `gorm:"index;size:36" json:"period_id"`
	Name           string       `gorm:"size:255" json:"name"`
	Type           GroupType    `gorm:"size:20" json:"type"`
	MinAge         *int         `json:"min_age,omitempty"`
	MaxAge         *int         `json:"max_age,omitempty"`
	Prices         []GroupPrice `gorm:"serializer:json;type:text" json:"prices"`
	WaitingListID  *string      `gorm:"size:36" json:"waiting_list_id,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
}

func (Group) TableName() string {
	return "groups"
}

// AcceptsAge reports whether a member of the given age fits the group's range.
// Groups without any age range never accept automatically.
func (g Group) AcceptsAge(age int) bool {
	if g.MinAge == nil && g.MaxAge == nil {
		return false
	}
	if g.MinAge != nil && age < *g.MinAge {
		return false
	}
	if g.MaxAge != nil && age > *g.MaxAge {
		return false
	}
	return true
}

// GroupCategory bundles groups. MaximumRegistrations limits how many groups
// of the category a member can be registered in at the same time.
type GroupCategory struct {
	ID                   string   `gorm:"primaryKey;size:36" json:"id"`
	PeriodID             string   `gorm:"index;size:36" json:"period_id"`
	Name                 string   `gorm:"size:255" json:"name"`
	GroupIDs             []string `gorm:"serializer:json;type:text" json:"group_ids"`
	MaximumRegistrations *int     `json:"maximum_registrations,omitempty"`
}

func (GroupCategory) TableName() string {
	return "group_categories"
}

func (c GroupCategory) Contains(groupID string) bool {
	for _, id := range c.GroupIDs {
		if id == groupID {
			return true
		}
	}
	return false
}

type RegistrationPeriod struct {
	ID             string          `gorm:"primaryKey;size:36" json:"id"`
	OrganizationID string          `gorm:"index;size:64" json:"organization_id"`
	Name           string          `gorm:"size:255" json:"name"`
	StartDate      time.Time       `json:"start_date"`
	EndDate        time.Time       `json:"end_date"`
	Groups         []Group         `gorm:"foreignKey:PeriodID" json:"groups"`
	Categories     []GroupCategory `gorm:"foreignKey:PeriodID" json:"categories"`
}

func (RegistrationPeriod) TableName() string {
	return "registration_periods"
}

func (p RegistrationPeriod) Group(id string) (Group, bool) {
	for _, g := range p.Groups {
		if g.ID == id {
			return g, true
		}
	}
	return Group{}, false
}

// GroupByName finds a group by name, ignoring case and diacritics.
func (p RegistrationPeriod) GroupByName(name string) (Group, bool) {
	for _, g := range p.Groups {
		if g.Type != GroupTypeWaitingList && utils.IsTypoEqual(g.Name, name) {
			return g, true
		}
	}
	return Group{}, false
}

// ParentCategories returns the categories that contain the group.
func (p RegistrationPeriod) ParentCategories(groupID string) []GroupCategory {
	var categories []GroupCategory
	for _, c := range p.Categories {
		if c.Contains(groupID) {
			categories = append(categories, c)
		}
	}
	return categories
}

// GroupForAge returns the first membership group whose age range fits.
func (p RegistrationPeriod) GroupForAge(age int) (Group, bool) {
	for _, g := range p.Groups {
		if g.Type != GroupTypeWaitingList && g.AcceptsAge(age) {
			return g, true
		}
	}
	return Group{}, false
}
