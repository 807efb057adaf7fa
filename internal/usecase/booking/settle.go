package booking

import (
	"context"

	domain "github.com/trainhub/session-booking/internal/domain/booking"
	"github.com/trainhub/session-booking/internal/payments"
)

// resolveCancelledPayment settles the money side of a cancellation so the
// booking never stays cancelled with payment_status=pending: refund the
// policy fraction of whatever is still held, capture the remainder when
// the policy keeps it all, and mark records that never held funds failed.
func resolveCancelledPayment(
	ctx context.Context,
	settlement *payments.Settlement,
	bookingID uint,
	fraction float64,
	reason string,
) (string, error) {

	rec, err := settlement.Get(ctx, bookingID)
	if err != nil {
		return string(domain.PaymentFailed), nil
	}

	switch rec.Status {
	case payments.RecordRefunded, payments.RecordFailed:
		return payments.ProjectStatus(rec.Status), nil
	}

	if rec.AuthorizationID == "" && rec.CaptureID == "" {
		// the hold never succeeded
		rec, _, err = settlement.FailCapture(ctx, bookingID)
		if err != nil {
			return "", err
		}
		return payments.ProjectStatus(rec.Status), nil
	}

	remaining := rec.Amount - rec.RefundedAmount
	amount := remaining * fraction

	if amount < remaining {
		// the trainer keeps part of the hold. Capture must happen before
		// the record turns terminal: once Refund marks it refunded, an
		// uncaptured authorization would expire and the retained share
		// would be unrecoverable.
		rec, err = settlement.Capture(ctx, bookingID)
		if err != nil {
			return "", err
		}
	}

	if amount > 0 {
		rec, err = settlement.Refund(ctx, bookingID, amount, reason)
		if err != nil {
			return "", err
		}
	}

	return payments.ProjectStatus(rec.Status), nil
}
