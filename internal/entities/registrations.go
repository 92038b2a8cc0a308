package entities

import "time"

type Registration struct {
	ID             string                  `gorm:"primaryKey;size:36" json:"id"`
	OrganizationID string                  `gorm:"index;size:64" json:"organization_id"`
	MemberID       string                  `gorm:"index;size:36" json:"member_id"`
	GroupID        string                  `gorm:"index;size:36" json:"group_id"`
	PeriodID       string                  `gorm:"index;size:36" json:"period_id"`
	WaitingList    bool                    `json:"waiting_list"`
	PriceName      string                  `gorm:"size:255" json:"price_name,omitempty"`
	Price          int64                   `json:"price"`
	StartDate      *time.Time              `json:"start_date,omitempty"`
	EndDate        *time.Time              `json:"end_date,omitempty"`
	RecordAnswers  map[string]RecordAnswer `gorm:"serializer:json;type:text" json:"record_answers,omitempty"`
	RegisteredAt   *time.Time              `json:"registered_at,omitempty"`
	DeactivatedAt  *time.Time              `json:"deactivated_at,omitempty"`
	CreatedAt      time.Time               `json:"created_at"`
}

func (Registration) TableName() string {
	return "registrations"
}

func (r Registration) IsActive() bool {
	return r.DeactivatedAt == nil
}

type BalanceItemStatus string

const (
	BalanceItemStatusDue    BalanceItemStatus = "due"
	BalanceItemStatusPaid   BalanceItemStatus = "paid"
	BalanceItemStatusHidden BalanceItemStatus = "hidden"
)

// BalanceItem is an amount a member owes, usually for a registration.
type BalanceItem struct {
	ID             string            `gorm:"primaryKey;size:36" json:"id"`
	OrganizationID string            `gorm:"index;size:64" json:"organization_id"`
	MemberID       string            `gorm:"index;size:36" json:"member_id"`
	RegistrationID *string           `gorm:"index;size:36" json:"registration_id,omitempty"`
	Description    string            `gorm:"size:500" json:"description"`
	Price          int64             `json:"price"`
	PricePaid      int64             `json:"price_paid"`
	Status         BalanceItemStatus `gorm:"size:20" json:"status"`
	CreatedAt      time.Time         `json:"created_at"`
}

func (BalanceItem) TableName() string {
	return "balance_items"
}

func (b BalanceItem) PriceOpen() int64 {
	return b.Price - b.PricePaid
}

type PaymentMethod string

const (
	PaymentMethodUnknown     PaymentMethod = "unknown"
	PaymentMethodTransfer    PaymentMethod = "transfer"
	PaymentMethodPointOfSale PaymentMethod = "point_of_sale"
)

type PaymentStatus string

const (
	PaymentStatusCreated   PaymentStatus = "created"
	PaymentStatusSucceeded PaymentStatus = "succeeded"
)

type Payment struct {
	ID                  string               `gorm:"primaryKey;size:36" json:"id"`
	OrganizationID      string               `gorm:"index;size:64" json:"organization_id"`
	Method              PaymentMethod        `gorm:"size:20" json:"method"`
	Status              PaymentStatus        `gorm:"size:20" json:"status"`
	Price               int64                `json:"price"`
	PaidAt              *time.Time           `json:"paid_at,omitempty"`
	BalanceItemPayments []BalanceItemPayment `gorm:"foreignKey:PaymentID" json:"balance_item_payments"`
	CreatedAt           time.Time            `json:"created_at"`
}

func (Payment) TableName() string {
	return "payments"
}

// BalanceItemPayment is the part of a payment settling one balance item.
type BalanceItemPayment struct {
	ID            string `gorm:"primaryKey;size:36" json:"id"`
	PaymentID     string `gorm:"index;size:36" json:"payment_id"`
	BalanceItemID string `gorm:"index;size:36" json:"balance_item_id"`
	Price         int64  `json:"price"`
}

func (BalanceItemPayment) TableName() string {
	return "balance_item_payments"
}
