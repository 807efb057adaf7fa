package booking

import (
	"context"
	"time"

	"github.com/trainhub/session-booking/internal/audit"
	domain "github.com/trainhub/session-booking/internal/domain/booking"
	"github.com/trainhub/session-booking/internal/httperr"
	"github.com/trainhub/session-booking/internal/models"
	"github.com/trainhub/session-booking/internal/notify"
	"github.com/trainhub/session-booking/internal/payments"
	"github.com/trainhub/session-booking/internal/provisioning"
)

type DeclineBooking struct {
	repo       domain.Repository
	settlement *payments.Settlement
	prov       *provisioning.Orchestrator
	retrier    *provisioning.Retrier
	notifier   notify.Notifier
	audit      *audit.Dispatcher
}

func NewDeclineBooking(
	repo domain.Repository,
	settlement *payments.Settlement,
	prov *provisioning.Orchestrator,
	retrier *provisioning.Retrier,
	notifier notify.Notifier,
	audit *audit.Dispatcher,
) *DeclineBooking {
	return &DeclineBooking{
		repo:       repo,
		settlement: settlement,
		prov:       prov,
		retrier:    retrier,
		notifier:   notifier,
		audit:      audit,
	}
}

// Execute turns down a pending booking: full refund of anything held,
// teardown of anything provisioned.
func (uc *DeclineBooking) Execute(
	ctx context.Context,
	actor Actor,
	bookingID uint,
) (*models.Booking, error) {

	if err := requireRole(actor, models.RoleTrainer); err != nil {
		return nil, err
	}

	b, err := uc.repo.GetBookingForTrainer(ctx, bookingID, actor.UserID)
	if err != nil {
		return nil, httperr.ErrBusiness("booking_not_found")
	}

	now := time.Now().UTC()
	if err := domain.Decline(b, now); err != nil {
		return nil, err
	}

	if err := uc.repo.UpdateWithRevision(ctx, b); err != nil {
		return nil, err
	}

	payStatus, err := resolveCancelledPayment(ctx, uc.settlement, b.ID, 1, "declined_by_trainer")
	if err != nil {
		return nil, err
	}

	if err := uc.prov.Teardown(ctx, b.ID); err != nil {
		uc.retrier.EnqueueTeardown(b.ID)
	}

	b.PaymentStatus = payStatus
	if err := uc.repo.UpdateWithRevision(ctx, b); err != nil {
		return nil, err
	}

	uc.notifier.BookingCancelled(ctx, b)

	uc.audit.Dispatch(audit.Event{
		UserID:   &actor.UserID,
		Action:   "booking_declined",
		Entity:   "booking",
		EntityID: &b.ID,
	})

	return b, nil
}
