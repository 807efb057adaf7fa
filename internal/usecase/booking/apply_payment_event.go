package booking

import (
	"context"
	"log"

	"github.com/trainhub/session-booking/internal/audit"
	domain "github.com/trainhub/session-booking/internal/domain/booking"
	"github.com/trainhub/session-booking/internal/httperr"
	"github.com/trainhub/session-booking/internal/models"
	"github.com/trainhub/session-booking/internal/payments"
)

// Payment event kinds delivered by the provider.
const (
	EventCaptureSucceeded = "capture.succeeded"
	EventCaptureFailed    = "capture.failed"
	EventRefundSucceeded  = "refund.succeeded"
	EventRefundFailed     = "refund.failed"
	EventDisputeOpened    = "dispute.opened"
)

type ApplyPaymentEventInput struct {
	BookingReference string
	Kind             string
	ProviderRef      string
	Reason           string
}

// ApplyPaymentEvent replays an asynchronous provider event into the
// booking state machine, behind the same revision compare-and-set as the
// synchronous user actions.
type ApplyPaymentEvent struct {
	repo       domain.Repository
	settlement *payments.Settlement
	audit      *audit.Dispatcher
}

func NewApplyPaymentEvent(
	repo domain.Repository,
	settlement *payments.Settlement,
	audit *audit.Dispatcher,
) *ApplyPaymentEvent {
	return &ApplyPaymentEvent{
		repo:       repo,
		settlement: settlement,
		audit:      audit,
	}
}

// Execute applies one event. Events for unknown bookings or for payment
// records already in a terminal state are accepted and discarded as
// no-ops; provider retries are expected, not errors.
func (uc *ApplyPaymentEvent) Execute(
	ctx context.Context,
	in ApplyPaymentEventInput,
) error {

	b, err := uc.repo.GetBookingByReference(ctx, in.BookingReference)
	if err != nil {
		log.Printf("payment event %s for unknown booking %s, ignoring", in.Kind, in.BookingReference)
		return nil
	}

	var (
		rec     *models.PaymentRecord
		changed bool
	)

	switch in.Kind {
	case EventCaptureSucceeded:
		rec, changed, err = uc.settlement.ConfirmCapture(ctx, b.ID, in.ProviderRef)
	case EventCaptureFailed:
		rec, changed, err = uc.settlement.FailCapture(ctx, b.ID)
	case EventRefundSucceeded:
		rec, changed, err = uc.settlement.ConfirmRefund(ctx, b.ID, in.ProviderRef)
	case EventRefundFailed:
		uc.audit.Dispatch(audit.Event{
			Action:   "payment_refund_failed",
			Entity:   "booking",
			EntityID: &b.ID,
			Metadata: map[string]any{"reason": in.Reason},
		})
		return nil
	case EventDisputeOpened:
		_, changed, err = uc.settlement.OpenDispute(ctx, b.ID)
		if err == nil && changed {
			uc.audit.Dispatch(audit.Event{
				Action:   "payment_dispute_opened",
				Entity:   "booking",
				EntityID: &b.ID,
			})
		}
		return err
	default:
		log.Printf("unhandled payment event kind %q, ignoring", in.Kind)
		return nil
	}

	if err != nil {
		if httperr.IsBusiness(err, "payment_not_found") {
			return nil
		}
		return err
	}
	if !changed {
		return nil
	}

	if err := uc.projectStatus(ctx, b, payments.ProjectStatus(rec.Status)); err != nil {
		return err
	}

	uc.audit.Dispatch(audit.Event{
		Action:   "payment_event_applied",
		Entity:   "booking",
		EntityID: &b.ID,
		Metadata: map[string]any{"kind": in.Kind},
	})

	return nil
}

// projectStatus refreshes the cached payment status on the booking,
// retrying the compare-and-set a bounded number of times when user
// actions race with the webhook.
func (uc *ApplyPaymentEvent) projectStatus(ctx context.Context, b *models.Booking, status string) error {
	var err error
	for i := 0; i < 3; i++ {
		b.PaymentStatus = status
		err = uc.repo.UpdateWithRevision(ctx, b)
		if err == nil {
			return nil
		}
		if !httperr.IsBusiness(err, "stale_booking_state") {
			return err
		}
		b, err = uc.repo.GetBooking(ctx, b.ID)
		if err != nil {
			return err
		}
	}
	return err
}
