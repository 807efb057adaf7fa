package booking

import (
	"context"

	"github.com/trainhub/session-booking/internal/audit"
	domain "github.com/trainhub/session-booking/internal/domain/booking"
	"github.com/trainhub/session-booking/internal/httperr"
	"github.com/trainhub/session-booking/internal/models"
	"github.com/trainhub/session-booking/internal/notify"
	"github.com/trainhub/session-booking/internal/provisioning"
)

type ConfirmBooking struct {
	repo     domain.Repository
	users    domain.UserReader
	prov     *provisioning.Orchestrator
	retrier  *provisioning.Retrier
	notifier notify.Notifier
	audit    *audit.Dispatcher
}

func NewConfirmBooking(
	repo domain.Repository,
	users domain.UserReader,
	prov *provisioning.Orchestrator,
	retrier *provisioning.Retrier,
	notifier notify.Notifier,
	audit *audit.Dispatcher,
) *ConfirmBooking {
	return &ConfirmBooking{
		repo:     repo,
		users:    users,
		prov:     prov,
		retrier:  retrier,
		notifier: notifier,
		audit:    audit,
	}
}

// Execute transitions pending -> confirmed, then provisions the meeting
// and calendar event. Provisioning failure never rolls the booking back:
// the reservation and payment hold stay valid, the booking carries a
// degraded flag and is queued for retry.
func (uc *ConfirmBooking) Execute(
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

	if err := domain.Confirm(b); err != nil {
		return nil, err
	}

	// Reserve the state first; the external calls come after and never
	// hold the booking row.
	if err := uc.repo.UpdateWithRevision(ctx, b); err != nil {
		return nil, err
	}

	joinURL := ""
	result, perr := uc.prov.Provision(ctx, b, uc.attendees(ctx, b))
	switch {
	case perr != nil:
		b.ProvisioningDegraded = true
		uc.retrier.EnqueueProvision(b.ID)
	case result.CalendarPending:
		b.ProvisioningDegraded = true
		b.CalendarPending = true
		joinURL = result.Resource.JoinURL
		uc.retrier.EnqueueProvision(b.ID)
	default:
		joinURL = result.Resource.JoinURL
	}

	if b.ProvisioningDegraded {
		if err := uc.repo.UpdateWithRevision(ctx, b); err != nil {
			// another writer moved the booking on; the retrier will
			// re-check the current state before acting
			if !httperr.IsBusiness(err, "stale_booking_state") {
				return nil, err
			}
		}
	}

	uc.notifier.BookingConfirmed(ctx, b, joinURL)

	uc.audit.Dispatch(audit.Event{
		UserID:   &actor.UserID,
		Action:   "booking_confirmed",
		Entity:   "booking",
		EntityID: &b.ID,
	})

	return b, nil
}

func (uc *ConfirmBooking) attendees(ctx context.Context, b *models.Booking) []string {
	var emails []string
	for _, id := range []uint{b.ClientID, b.TrainerID} {
		if u, err := uc.users.GetUserByID(ctx, id); err == nil {
			emails = append(emails, u.Email)
		}
	}
	return emails
}
