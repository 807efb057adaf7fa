package booking

import (
	"context"
	"time"

	"github.com/trainhub/session-booking/internal/audit"
	domain "github.com/trainhub/session-booking/internal/domain/booking"
	"github.com/trainhub/session-booking/internal/httperr"
	"github.com/trainhub/session-booking/internal/models"
	"github.com/trainhub/session-booking/internal/payments"
	"github.com/trainhub/session-booking/internal/provisioning"
)

type MarkNoShow struct {
	repo       domain.Repository
	settlement *payments.Settlement
	prov       *provisioning.Orchestrator
	retrier    *provisioning.Retrier
	audit      *audit.Dispatcher
	policy     domain.Policy
}

func NewMarkNoShow(
	repo domain.Repository,
	settlement *payments.Settlement,
	prov *provisioning.Orchestrator,
	retrier *provisioning.Retrier,
	audit *audit.Dispatcher,
	policy domain.Policy,
) *MarkNoShow {
	return &MarkNoShow{
		repo:       repo,
		settlement: settlement,
		prov:       prov,
		retrier:    retrier,
		audit:      audit,
		policy:     policy,
	}
}

// Execute records a client no-show. Per no-show policy the payment is
// captured, not refunded, and the provisioned resources are torn down.
func (uc *MarkNoShow) Execute(
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

	if err := domain.MarkNoShow(b, now); err != nil {
		return nil, err
	}

	if err := uc.repo.UpdateWithRevision(ctx, b); err != nil {
		return nil, err
	}

	rec, err := uc.settlement.Capture(ctx, b.ID)
	if err == nil {
		b.PaymentStatus = payments.ProjectStatus(rec.Status)
		if err := uc.settlement.ScheduleRelease(ctx, b.ID, now.Add(uc.policy.PayoutHold)); err != nil {
			return nil, err
		}
	}

	if err := uc.prov.Teardown(ctx, b.ID); err != nil {
		uc.retrier.EnqueueTeardown(b.ID)
	}

	b.ProvisioningDegraded = false
	b.CalendarPending = false
	if err := uc.repo.UpdateWithRevision(ctx, b); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   &actor.UserID,
		Action:   "booking_no_show",
		Entity:   "booking",
		EntityID: &b.ID,
	})

	return b, nil
}
