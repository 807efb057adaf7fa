package booking

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/trainhub/session-booking/internal/audit"
	domain "github.com/trainhub/session-booking/internal/domain/booking"
	"github.com/trainhub/session-booking/internal/httperr"
	"github.com/trainhub/session-booking/internal/models"
	"github.com/trainhub/session-booking/internal/payments"
)

// ======================================================
// INPUT
// ======================================================

type CreateBookingInput struct {
	TrainerID   uint
	SessionType string
	StartTime   time.Time
	EndTime     time.Time
	Amount      float64
	Currency    string
	Notes       string
}

// ======================================================
// USE CASE
// ======================================================

type CreateBooking struct {
	repo       domain.Repository
	users      domain.UserReader
	settlement *payments.Settlement
	audit      *audit.Dispatcher
}

func NewCreateBooking(
	repo domain.Repository,
	users domain.UserReader,
	settlement *payments.Settlement,
	audit *audit.Dispatcher,
) *CreateBooking {
	return &CreateBooking{
		repo:       repo,
		users:      users,
		settlement: settlement,
		audit:      audit,
	}
}

// ======================================================
// EXECUTE
// ======================================================

// Execute reserves the slot first, then asks the settlement coordinator
// to place the authorization hold. A failed hold still leaves a booking
// behind, in pending with payment_status=failed, so the client has a
// record to retry payment against.
func (uc *CreateBooking) Execute(
	ctx context.Context,
	actor Actor,
	in CreateBookingInput,
) (*models.Booking, error) {

	if err := requireRole(actor, models.RoleClient); err != nil {
		return nil, err
	}

	slot := domain.Slot{Start: in.StartTime, End: in.EndTime}
	if err := slot.Validate(); err != nil {
		return nil, err
	}

	if in.Amount <= 0 {
		return nil, httperr.ErrBusiness("invalid_amount")
	}

	trainer, err := uc.users.GetUserByID(ctx, in.TrainerID)
	if err != nil || trainer.Role != models.RoleTrainer {
		return nil, httperr.ErrBusiness("trainer_not_found")
	}

	client, err := uc.users.GetUserByID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}

	b := &models.Booking{
		Reference:     uuid.NewString(),
		ClientID:      actor.UserID,
		TrainerID:     in.TrainerID,
		SessionType:   in.SessionType,
		StartTime:     in.StartTime,
		EndTime:       in.EndTime,
		Status:        string(domain.InitialStatus()),
		PaymentStatus: string(domain.PaymentPending),
		Revision:      1,
		Notes:         in.Notes,
	}

	// Slot guard: overlap check and insert in one atomic step.
	// A second concurrent request for the slot fails with slot_conflict.
	if err := uc.repo.CreateWithSlotClaim(ctx, b); err != nil {
		return nil, err
	}

	rec, err := uc.settlement.Authorize(
		ctx,
		b.ID,
		in.Amount,
		in.Currency,
		client.Email,
		b.Reference,
	)
	if err != nil {
		if httperr.IsBusiness(err, "payment_authorization_failed") {
			b.PaymentStatus = string(domain.PaymentFailed)
			if uerr := uc.repo.UpdateWithRevision(ctx, b); uerr != nil {
				return nil, uerr
			}

			uc.audit.Dispatch(audit.Event{
				UserID:   &actor.UserID,
				Action:   "payment_authorization_failed",
				Entity:   "booking",
				EntityID: &b.ID,
			})

			return b, nil
		}
		return nil, err
	}

	b.PaymentStatus = payments.ProjectStatus(rec.Status)

	uc.audit.Dispatch(audit.Event{
		UserID:   &actor.UserID,
		Action:   "booking_created",
		Entity:   "booking",
		EntityID: &b.ID,
	})

	return b, nil
}
