package importers

import (
	"context"
	"time"

	"github.com/mrlokans/memberimport/internal/entities"
)

// Backend is where phase 2 stores members, registrations and payments.
type Backend interface {
	// Members returns the organization's members with their registrations.
	Members(ctx context.Context, organizationID string) ([]entities.Member, error)
	// Period returns a registration period with its groups and categories.
	Period(ctx context.Context, periodID string) (*entities.RegistrationPeriod, error)
	// SaveMember creates or replaces a member and returns it with its registrations.
	SaveMember(ctx context.Context, member *entities.Member) (*entities.Member, error)
	// Register submits a checkout and returns the created registrations.
	Register(ctx context.Context, checkout Checkout) ([]entities.Registration, error)
	// BalanceItems returns what is owed for a registration.
	BalanceItems(ctx context.Context, registrationID string) ([]entities.BalanceItem, error)
	// CreatePayments stores payments settling balance items.
	CreatePayments(ctx context.Context, payments []PaymentRequest) error
}

// CheckoutItem is one registration in a checkout.
type CheckoutItem struct {
	GroupID       string                           `json:"group_id"`
	PeriodID      string                           `json:"period_id"`
	WaitingList   bool                             `json:"waiting_list"`
	PriceName     string                           `json:"price_name,omitempty"`
	Price         int64                            `json:"price"`
	StartDate     *time.Time                       `json:"start_date,omitempty"`
	EndDate       *time.Time                       `json:"end_date,omitempty"`
	RecordAnswers map[string]entities.RecordAnswer `json:"record_answers,omitempty"`
}

// Checkout registers one member. Registrations listed in
// DeactivateRegistrationIDs are ended when the new ones are created.
type Checkout struct {
	OrganizationID            string         `json:"organization_id"`
	MemberID                  string         `json:"member_id"`
	Items                     []CheckoutItem `json:"items"`
	DeactivateRegistrationIDs []string       `json:"deactivate_registration_ids,omitempty"`
}

// PaymentItem settles part of one balance item.
type PaymentItem struct {
	BalanceItemID string `json:"balance_item_id"`
	Price         int64  `json:"price"`
}

type PaymentRequest struct {
	OrganizationID string                 `json:"organization_id"`
	Method         entities.PaymentMethod `json:"method"`
	Status         entities.PaymentStatus `json:"status"`
	PaidAt         *time.Time             `json:"paid_at,omitempty"`
	Items          []PaymentItem          `json:"items"`
}

// Price is the total of the payment items.
func (p PaymentRequest) Price() int64 {
	var total int64
	for _, item := range p.Items {
		total += item.Price
	}
	return total
}
