package provisioning

import (
	"context"
	"log"
	"time"

	domain "github.com/trainhub/session-booking/internal/domain/booking"
	"github.com/trainhub/session-booking/internal/httperr"
)

type taskKind int

const (
	taskProvision taskKind = iota
	taskTeardown
)

type task struct {
	kind      taskKind
	bookingID uint
	attempt   int
}

// Retrier drains a queue of degraded provisioning work. Each task re-reads
// the booking before touching external resources and aborts as a no-op if
// the booking has already left the expected state, so a cancel arriving
// while confirm's provisioning is still retrying wins.
type Retrier struct {
	orch     *Orchestrator
	bookings domain.Repository
	users    domain.UserReader

	queue       chan task
	maxAttempts int
	backoff     time.Duration
}

func NewRetrier(
	orch *Orchestrator,
	bookings domain.Repository,
	users domain.UserReader,
	maxAttempts int,
) *Retrier {
	r := &Retrier{
		orch:        orch,
		bookings:    bookings,
		users:       users,
		queue:       make(chan task, 100),
		maxAttempts: maxAttempts,
		backoff:     5 * time.Second,
	}

	go r.worker()
	return r
}

func (r *Retrier) EnqueueProvision(bookingID uint) {
	r.enqueue(task{kind: taskProvision, bookingID: bookingID})
}

func (r *Retrier) EnqueueTeardown(bookingID uint) {
	r.enqueue(task{kind: taskTeardown, bookingID: bookingID})
}

func (r *Retrier) enqueue(t task) {
	select {
	case r.queue <- t:
		// queued
	default:
		// queue full; the booking keeps its degraded flag and stays
		// visible for reconciliation
		log.Printf("provisioning retry queue full, dropping booking %d", t.bookingID)
	}
}

func (r *Retrier) worker() {
	for t := range r.queue {
		if t.attempt >= r.maxAttempts {
			log.Printf("provisioning retries exhausted for booking %d", t.bookingID)
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		done := r.run(ctx, t)
		cancel()

		if !done {
			t.attempt++
			delay := r.backoff << uint(t.attempt)
			time.AfterFunc(delay, func() { r.enqueue(t) })
		}
	}
}

// run returns true when the task is finished (success or permanent no-op).
func (r *Retrier) run(ctx context.Context, t task) bool {
	b, err := r.bookings.GetBooking(ctx, t.bookingID)
	if err != nil {
		return true
	}

	switch t.kind {
	case taskProvision:
		if b.Status != string(domain.StatusConfirmed) {
			return true
		}

		result, err := r.orch.Provision(ctx, b, r.attendees(ctx, b.ClientID, b.TrainerID))
		if err != nil {
			return false
		}

		for i := 0; i < 3; i++ {
			b.ProvisioningDegraded = result.CalendarPending
			b.CalendarPending = result.CalendarPending
			err := r.bookings.UpdateWithRevision(ctx, b)
			if err == nil {
				break
			}
			if !httperr.IsBusiness(err, "stale_booking_state") {
				return false
			}
			b, err = r.bookings.GetBooking(ctx, t.bookingID)
			if err != nil || b.Status != string(domain.StatusConfirmed) {
				return true
			}
		}

		return !result.CalendarPending

	case taskTeardown:
		if b.Status != string(domain.StatusCancelled) && b.Status != string(domain.StatusNoShow) {
			return true
		}
		if err := r.orch.Teardown(ctx, t.bookingID); err != nil {
			return false
		}
		return true
	}

	return true
}

func (r *Retrier) attendees(ctx context.Context, ids ...uint) []string {
	var emails []string
	for _, id := range ids {
		if u, err := r.users.GetUserByID(ctx, id); err == nil {
			emails = append(emails, u.Email)
		}
	}
	return emails
}
