// Package webhooks receives asynchronous payment-provider events and
// replays them into the booking state machine, with deduplication.
package webhooks

import (
	"context"
	"log"

	ucbooking "github.com/trainhub/session-booking/internal/usecase/booking"
)

// Event is the provider's notification payload. The provider assigns the
// event id and may deliver the same event more than once.
type Event struct {
	ID               string `json:"id"`
	Kind             string `json:"type"`
	BookingReference string `json:"external_reference"`
	ProviderRef      string `json:"provider_ref"`
	Reason           string `json:"reason,omitempty"`
}

// EventStore remembers which provider event ids were already processed.
// MarkSeen returns false for a duplicate. Unmark forgets an id again so a
// delivery that failed mid-flight stays retryable.
type EventStore interface {
	MarkSeen(ctx context.Context, eventID string) (bool, error)
	Unmark(ctx context.Context, eventID string) error
}

// Applier feeds one event into the booking state machine.
type Applier interface {
	Execute(ctx context.Context, in ucbooking.ApplyPaymentEventInput) error
}

type Reconciler struct {
	store EventStore
	apply Applier
}

func NewReconciler(store EventStore, apply Applier) *Reconciler {
	return &Reconciler{
		store: store,
		apply: apply,
	}
}

// Handle deduplicates by event id and applies the event. A duplicate is a
// success: the first delivery already changed whatever had to change.
func (r *Reconciler) Handle(ctx context.Context, ev Event) error {
	fresh, err := r.store.MarkSeen(ctx, ev.ID)
	if err != nil {
		return err
	}
	if !fresh {
		log.Printf("duplicate payment event %s, ignoring", ev.ID)
		return nil
	}

	err = r.apply.Execute(ctx, ucbooking.ApplyPaymentEventInput{
		BookingReference: ev.BookingReference,
		Kind:             ev.Kind,
		ProviderRef:      ev.ProviderRef,
		Reason:           ev.Reason,
	})
	if err != nil {
		// forget the id so the provider's redelivery is not dropped as a
		// duplicate of a delivery that never took effect
		if uerr := r.store.Unmark(ctx, ev.ID); uerr != nil {
			log.Printf("failed to unmark payment event %s: %v", ev.ID, uerr)
		}
		return err
	}
	return nil
}
