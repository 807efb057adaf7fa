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

type CompleteBooking struct {
	repo       domain.Repository
	settlement *payments.Settlement
	audit      *audit.Dispatcher
	policy     domain.Policy
}

func NewCompleteBooking(
	repo domain.Repository,
	settlement *payments.Settlement,
	audit *audit.Dispatcher,
	policy domain.Policy,
) *CompleteBooking {
	return &CompleteBooking{
		repo:       repo,
		settlement: settlement,
		audit:      audit,
		policy:     policy,
	}
}

// Execute finishes a held session: capture the funds if a webhook has not
// confirmed them already, and start the payout hold period. A capture
// failure does not undo the completion; the payment stays pending for the
// webhook reconciler to resolve.
func (uc *CompleteBooking) Execute(
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
	if now.Before(b.EndTime) {
		return nil, httperr.ErrBusiness("session_not_elapsed")
	}

	if err := domain.Complete(b, now); err != nil {
		return nil, err
	}

	if err := uc.repo.UpdateWithRevision(ctx, b); err != nil {
		return nil, err
	}

	rec, err := uc.settlement.Capture(ctx, b.ID)
	if err != nil {
		uc.audit.Dispatch(audit.Event{
			UserID:   &actor.UserID,
			Action:   "payment_capture_failed",
			Entity:   "booking",
			EntityID: &b.ID,
		})
		return b, nil
	}

	if err := uc.settlement.ScheduleRelease(ctx, b.ID, now.Add(uc.policy.PayoutHold)); err != nil {
		return nil, err
	}

	b.PaymentStatus = payments.ProjectStatus(rec.Status)
	if err := uc.repo.UpdateWithRevision(ctx, b); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   &actor.UserID,
		Action:   "booking_completed",
		Entity:   "booking",
		EntityID: &b.ID,
	})

	return b, nil
}
