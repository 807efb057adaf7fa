package booking

import (
	"context"
	"time"

	"github.com/trainhub/session-booking/internal/audit"
	domain "github.com/trainhub/session-booking/internal/domain/booking"
	"github.com/trainhub/session-booking/internal/httperr"
	"github.com/trainhub/session-booking/internal/models"
	"github.com/trainhub/session-booking/internal/payments"
)

type ReleasePayout struct {
	repo       domain.Repository
	settlement *payments.Settlement
	audit      *audit.Dispatcher
}

func NewReleasePayout(
	repo domain.Repository,
	settlement *payments.Settlement,
	audit *audit.Dispatcher,
) *ReleasePayout {
	return &ReleasePayout{
		repo:       repo,
		settlement: settlement,
		audit:      audit,
	}
}

// Execute marks the captured amount payout-eligible. The external payout
// process consumes the released flag; no money moves here.
func (uc *ReleasePayout) Execute(
	ctx context.Context,
	actor Actor,
	bookingID uint,
) (*models.PaymentRecord, error) {

	if err := requireRole(actor, models.RoleAdmin); err != nil {
		return nil, err
	}

	b, err := uc.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, httperr.ErrBusiness("booking_not_found")
	}

	if b.Status != string(domain.StatusCompleted) && b.Status != string(domain.StatusNoShow) {
		return nil, httperr.ErrBusiness("release_not_eligible")
	}

	rec, err := uc.settlement.Release(ctx, b.ID, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   &actor.UserID,
		Action:   "payment_released",
		Entity:   "booking",
		EntityID: &b.ID,
	})

	return rec, nil
}
