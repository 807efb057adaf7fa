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

type CancelBooking struct {
	repo       domain.Repository
	settlement *payments.Settlement
	prov       *provisioning.Orchestrator
	retrier    *provisioning.Retrier
	notifier   notify.Notifier
	audit      *audit.Dispatcher
	policy     domain.Policy
}

func NewCancelBooking(
	repo domain.Repository,
	settlement *payments.Settlement,
	prov *provisioning.Orchestrator,
	retrier *provisioning.Retrier,
	notifier notify.Notifier,
	audit *audit.Dispatcher,
	policy domain.Policy,
) *CancelBooking {
	return &CancelBooking{
		repo:       repo,
		settlement: settlement,
		prov:       prov,
		retrier:    retrier,
		notifier:   notifier,
		audit:      audit,
		policy:     policy,
	}
}

// Execute cancels a pending or confirmed booking. Inside the late
// cancellation window only the policy fraction is refunded; the remainder
// is captured for the trainer. Provisioned resources are always torn down.
func (uc *CancelBooking) Execute(
	ctx context.Context,
	actor Actor,
	bookingID uint,
) (*models.Booking, error) {

	if err := requireRole(actor, models.RoleClient, models.RoleTrainer, models.RoleAdmin); err != nil {
		return nil, err
	}

	b, err := uc.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, httperr.ErrBusiness("booking_not_found")
	}

	if actor.Role != models.RoleAdmin && actor.UserID != b.ClientID && actor.UserID != b.TrainerID {
		return nil, httperr.ErrBusiness("booking_not_found")
	}

	now := time.Now().UTC()
	if err := domain.Cancel(b, now); err != nil {
		return nil, err
	}

	if err := uc.repo.UpdateWithRevision(ctx, b); err != nil {
		return nil, err
	}

	fraction := uc.policy.RefundFraction(b.StartTime, now)
	payStatus, err := resolveCancelledPayment(ctx, uc.settlement, b.ID, fraction, "cancelled")
	if err != nil {
		return nil, err
	}

	if err := uc.prov.Teardown(ctx, b.ID); err != nil {
		uc.retrier.EnqueueTeardown(b.ID)
	}

	b.PaymentStatus = payStatus
	b.ProvisioningDegraded = false
	b.CalendarPending = false
	if err := uc.repo.UpdateWithRevision(ctx, b); err != nil {
		return nil, err
	}

	uc.notifier.BookingCancelled(ctx, b)

	uc.audit.Dispatch(audit.Event{
		UserID:   &actor.UserID,
		Action:   "booking_cancelled",
		Entity:   "booking",
		EntityID: &b.ID,
		Metadata: map[string]any{"refund_fraction": fraction},
	})

	return b, nil
}
