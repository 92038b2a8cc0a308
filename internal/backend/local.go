package backend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mrlokans/memberimport/internal/apperrors"
	"github.com/mrlokans/memberimport/internal/database/groups"
	"github.com/mrlokans/memberimport/internal/database/members"
	"github.com/mrlokans/memberimport/internal/database/payments"
	"github.com/mrlokans/memberimport/internal/database/registrations"
	"github.com/mrlokans/memberimport/internal/entities"
	"github.com/mrlokans/memberimport/internal/importers"
	"github.com/mrlokans/memberimport/internal/logging"
)

var _ importers.Backend = (*Local)(nil)

// Local stores everything in the service's own database.
type Local struct {
	members       *members.Repository
	groups        *groups.Repository
	registrations *registrations.Repository
	payments      *payments.Repository
	logger        *zap.Logger
	now           func() time.Time
}

func NewLocal(db *gorm.DB, logger *zap.Logger) *Local {
	return &Local{
		members:       members.NewRepository(db),
		groups:        groups.NewRepository(db),
		registrations: registrations.NewRepository(db),
		payments:      payments.NewRepository(db),
		logger:        logging.OrNop(logger).Named("backend"),
		now:           time.Now,
	}
}

func (l *Local) Members(ctx context.Context, organizationID string) ([]entities.Member, error) {
	return l.members.List(ctx, organizationID)
}

func (l *Local) Member(ctx context.Context, id string) (*entities.Member, error) {
	member, err := l.members.Get(ctx, id)
	if errors.Is(err, members.ErrNotFound) {
		return nil, apperrors.NotFound(fmt.Sprintf("Member '%s' does not exist", id))
	}
	return member, err
}

func (l *Local) Period(ctx context.Context, periodID string) (*entities.RegistrationPeriod, error) {
	period, err := l.groups.Period(ctx, periodID)
	if errors.Is(err, groups.ErrPeriodNotFound) {
		return nil, apperrors.NotFound(fmt.Sprintf("Registration period '%s' does not exist", periodID))
	}
	return period, err
}

func (l *Local) SaveMember(ctx context.Context, member *entities.Member) (*entities.Member, error) {
	return l.members.Save(ctx, member)
}

// Register creates the checkout's registrations. Paid registrations get a
// balance item for their price; waiting list registrations never cost
// anything.
func (l *Local) Register(ctx context.Context, checkout importers.Checkout) ([]entities.Registration, error) {
	now := l.now()
	created := make([]entities.Registration, 0, len(checkout.Items))
	var items []entities.BalanceItem

	for _, item := range checkout.Items {
		group, err := l.groups.Group(ctx, item.GroupID)
		if errors.Is(err, groups.ErrGroupNotFound) {
			return nil, apperrors.NotFound(fmt.Sprintf("Group '%s' does not exist", item.GroupID))
		}
		if err != nil {
			return nil, err
		}

		registration := entities.Registration{
			ID:             uuid.NewString(),
			OrganizationID: checkout.OrganizationID,
			MemberID:       checkout.MemberID,
			GroupID:        group.ID,
			PeriodID:       item.PeriodID,
			WaitingList:    item.WaitingList,
			PriceName:      item.PriceName,
			Price:          item.Price,
			StartDate:      item.StartDate,
			EndDate:        item.EndDate,
			RecordAnswers:  item.RecordAnswers,
		}
		if !item.WaitingList {
			registration.RegisteredAt = &now
		}
		created = append(created, registration)

		if item.WaitingList || item.Price <= 0 {
			continue
		}
		registrationID := registration.ID
		items = append(items, entities.BalanceItem{
			OrganizationID: checkout.OrganizationID,
			MemberID:       checkout.MemberID,
			RegistrationID: &registrationID,
			Description:    group.Name,
			Price:          item.Price,
			Status:         entities.BalanceItemStatusDue,
		})
	}

	if err := l.registrations.Checkout(ctx, created, items, checkout.DeactivateRegistrationIDs); err != nil {
		return nil, fmt.Errorf("failed to register member %s: %w", checkout.MemberID, err)
	}

	l.logger.Debug("member registered",
		zap.String("member_id", checkout.MemberID),
		zap.Int("registrations", len(created)),
		zap.Int("balance_items", len(items)),
		zap.Int("deactivated", len(checkout.DeactivateRegistrationIDs)),
	)
	return created, nil
}

func (l *Local) BalanceItems(ctx context.Context, registrationID string) ([]entities.BalanceItem, error) {
	return l.registrations.BalanceItems(ctx, registrationID)
}

func (l *Local) CreatePayments(ctx context.Context, requests []importers.PaymentRequest) error {
	list := make([]entities.Payment, 0, len(requests))
	for _, request := range requests {
		payment := entities.Payment{
			OrganizationID: request.OrganizationID,
			Method:         request.Method,
			Status:         request.Status,
			PaidAt:         request.PaidAt,
		}
		for _, item := range request.Items {
			payment.BalanceItemPayments = append(payment.BalanceItemPayments, entities.BalanceItemPayment{
				BalanceItemID: item.BalanceItemID,
				Price:         item.Price,
			})
		}
		list = append(list, payment)
	}

	err := l.payments.Create(ctx, list)
	if errors.Is(err, payments.ErrOverpaid) {
		return apperrors.InvalidField("price", "The payment is more than what is still open")
	}
	return err
}

// Payments lists the organization's payments.
func (l *Local) Payments(ctx context.Context, organizationID string) ([]entities.Payment, error) {
	return l.payments.ForOrganization(ctx, organizationID)
}
