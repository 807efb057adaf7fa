package payments

import (
	"context"

	"github.com/trainhub/session-booking/internal/models"
)

// Record statuses. Terminal states are refunded, failed, and
// completed with IsReleased set.
const (
	RecordPending    = "pending"
	RecordAuthorized = "authorized"
	RecordCompleted  = "completed"
	RecordRefunded   = "refunded"
	RecordFailed     = "failed"
)

type Repo interface {
	GetByBookingID(
		ctx context.Context,
		bookingID uint,
	) (*models.PaymentRecord, error)

	Create(
		ctx context.Context,
		rec *models.PaymentRecord,
	) error

	Update(
		ctx context.Context,
		rec *models.PaymentRecord,
	) error
}

// ProjectStatus maps a PaymentRecord status to the cached projection kept
// on the booking.
func ProjectStatus(recordStatus string) string {
	switch recordStatus {
	case RecordPending, RecordAuthorized:
		return "pending"
	case RecordCompleted:
		return "completed"
	case RecordRefunded:
		return "refunded"
	case RecordFailed:
		return "failed"
	}
	return "pending"
}
