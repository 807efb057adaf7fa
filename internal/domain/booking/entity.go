package booking

import (
	"time"

	"github.com/trainhub/session-booking/internal/models"
)

// ===============================
// Domain Actions
// ===============================

func Confirm(b *models.Booking) error {
	if err := CanConfirm(Status(b.Status), PaymentStatus(b.PaymentStatus)); err != nil {
		return err
	}

	b.Status = string(StatusConfirmed)
	return nil
}

func Decline(b *models.Booking, now time.Time) error {
	if err := CanDecline(Status(b.Status)); err != nil {
		return err
	}

	b.Status = string(StatusCancelled)
	b.CancelledAt = &now
	return nil
}

func Cancel(b *models.Booking, now time.Time) error {
	if err := CanCancel(Status(b.Status)); err != nil {
		return err
	}

	b.Status = string(StatusCancelled)
	b.CancelledAt = &now
	return nil
}

func Complete(b *models.Booking, now time.Time) error {
	if err := CanComplete(Status(b.Status)); err != nil {
		return err
	}

	b.Status = string(StatusCompleted)
	b.CompletedAt = &now
	return nil
}

func MarkNoShow(b *models.Booking, now time.Time) error {
	if err := CanMarkNoShow(Status(b.Status)); err != nil {
		return err
	}

	b.Status = string(StatusNoShow)
	b.NoShowAt = &now
	return nil
}
