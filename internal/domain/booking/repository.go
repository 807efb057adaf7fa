package booking

import (
	"context"
	"time"

	"github.com/trainhub/session-booking/internal/models"
)

type Repository interface {
	// -------- Read --------
	GetBooking(
		ctx context.Context,
		id uint,
	) (*models.Booking, error)

	GetBookingForTrainer(
		ctx context.Context,
		bookingID uint,
		trainerID uint,
	) (*models.Booking, error)

	GetBookingByReference(
		ctx context.Context,
		reference string,
	) (*models.Booking, error)

	// -------- Create (slot guard) --------
	// CreateWithSlotClaim checks the trainer's pending/confirmed bookings
	// for [start,end) overlap and inserts the new booking in the same
	// atomic step. Overlap fails with the slot_conflict business error.
	CreateWithSlotClaim(
		ctx context.Context,
		b *models.Booking,
	) error

	// -------- State change (optimistic lock) --------
	// UpdateWithRevision persists b only if the stored revision still
	// matches b.Revision, then bumps it. A losing writer gets the
	// stale_booking_state business error and must re-read and retry.
	UpdateWithRevision(
		ctx context.Context,
		b *models.Booking,
	) error

	// -------- Listing --------
	ListForTrainer(
		ctx context.Context,
		trainerID uint,
		start time.Time,
		end time.Time,
	) ([]models.Booking, error)
}

// UserReader resolves booking participants.
type UserReader interface {
	GetUserByID(
		ctx context.Context,
		id uint,
	) (*models.User, error)
}
