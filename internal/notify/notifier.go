// Package notify is the boundary to the external notification dispatcher.
package notify

import (
	"context"
	"log"

	"github.com/trainhub/session-booking/internal/models"
)

type Notifier interface {
	BookingConfirmed(ctx context.Context, b *models.Booking, joinURL string)
	BookingCancelled(ctx context.Context, b *models.Booking)
}

// LogNotifier stands in for the real dispatcher; delivery failures must
// never affect the booking workflow, so there is nothing to return.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) BookingConfirmed(ctx context.Context, b *models.Booking, joinURL string) {
	log.Printf("notify: booking %s confirmed, join %s", b.Reference, joinURL)
}

func (n *LogNotifier) BookingCancelled(ctx context.Context, b *models.Booking) {
	log.Printf("notify: booking %s cancelled", b.Reference)
}
