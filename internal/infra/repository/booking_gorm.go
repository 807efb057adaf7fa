package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/trainhub/session-booking/internal/domain/booking"
	"github.com/trainhub/session-booking/internal/httperr"
	"github.com/trainhub/session-booking/internal/models"
)

type BookingGormRepository struct {
	db *gorm.DB
}

func NewBookingGormRepository(db *gorm.DB) *BookingGormRepository {
	return &BookingGormRepository{db: db}
}

// --------------------------------------------------
// Read
// --------------------------------------------------

func (r *BookingGormRepository) GetBooking(
	ctx context.Context,
	id uint,
) (*models.Booking, error) {

	var b models.Booking
	if err := r.db.WithContext(ctx).First(&b, id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BookingGormRepository) GetBookingForTrainer(
	ctx context.Context,
	bookingID uint,
	trainerID uint,
) (*models.Booking, error) {

	var b models.Booking
	if err := r.db.WithContext(ctx).
		Where("id = ? AND trainer_id = ?", bookingID, trainerID).
		First(&b).Error; err != nil {
		return nil, err
	}

	return &b, nil
}

func (r *BookingGormRepository) GetBookingByReference(
	ctx context.Context,
	reference string,
) (*models.Booking, error) {

	var b models.Booking
	if err := r.db.WithContext(ctx).
		Where("reference = ?", reference).
		First(&b).Error; err != nil {
		return nil, err
	}

	return &b, nil
}

// --------------------------------------------------
// Create (slot guard)
// --------------------------------------------------

// CreateWithSlotClaim locks the trainer's pending/confirmed bookings that
// touch [start, end) and inserts the claim in the same transaction, so two
// concurrent creates for the same slot cannot both succeed.
func (r *BookingGormRepository) CreateWithSlotClaim(
	ctx context.Context,
	b *models.Booking,
) error {

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {

		var count int64
		if err := tx.
			Model(&models.Booking{}).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where(
				"trainer_id = ? AND status IN ('pending', 'confirmed') AND start_time < ? AND end_time > ?",
				b.TrainerID,
				b.EndTime,
				b.StartTime,
			).
			Count(&count).Error; err != nil {
			return err
		}

		if count > 0 {
			return httperr.ErrBusiness("slot_conflict")
		}

		return tx.Create(b).Error
	})
}

// --------------------------------------------------
// State change (optimistic lock)
// --------------------------------------------------

func (r *BookingGormRepository) UpdateWithRevision(
	ctx context.Context,
	b *models.Booking,
) error {

	expected := b.Revision
	b.Revision = expected + 1

	res := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ? AND revision = ?", b.ID, expected).
		Select(
			"status", "payment_status",
			"provisioning_degraded", "calendar_pending",
			"start_time", "end_time", "notes",
			"cancelled_at", "completed_at", "no_show_at",
			"revision",
		).
		Updates(b)

	if res.Error != nil {
		b.Revision = expected
		return res.Error
	}

	if res.RowsAffected == 0 {
		b.Revision = expected
		return httperr.ErrBusiness("stale_booking_state")
	}

	return nil
}

// --------------------------------------------------
// Listing
// --------------------------------------------------

func (r *BookingGormRepository) ListForTrainer(
	ctx context.Context,
	trainerID uint,
	start time.Time,
	end time.Time,
) ([]models.Booking, error) {

	var bookings []models.Booking

	err := r.db.WithContext(ctx).
		Preload("Client").
		Where(
			"trainer_id = ? AND start_time >= ? AND start_time < ?",
			trainerID,
			start,
			end,
		).
		Order("start_time ASC").
		Find(&bookings).Error

	if err != nil {
		return nil, err
	}

	return bookings, nil
}

// Compile-time check
var _ domain.Repository = (*BookingGormRepository)(nil)
