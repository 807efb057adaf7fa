// Package provisioning creates, updates and tears down the external meeting
// and calendar resources attached to a booking.
package provisioning

import (
	"context"
	"time"

	"github.com/trainhub/session-booking/internal/models"
)

type Meeting struct {
	ID          string
	JoinURL     string
	Credentials string
}

// Meetings is the video-meeting provider contract. Delete is idempotent:
// deleting an already-deleted meeting is success.
type Meetings interface {
	Create(ctx context.Context, topic string, scheduledAt time.Time, duration time.Duration) (*Meeting, error)
	Update(ctx context.Context, id string, scheduledAt time.Time, duration time.Duration) error
	Delete(ctx context.Context, id string) error
}

type CalendarEvent struct {
	ID string
}

// Calendar is the calendar provider contract. DeleteEvent is idempotent.
type Calendar interface {
	CreateEvent(ctx context.Context, start, end time.Time, attendees []string, description string) (*CalendarEvent, error)
	UpdateEvent(ctx context.Context, id string, start, end time.Time) error
	DeleteEvent(ctx context.Context, id string) error
}

type Repo interface {
	GetByBookingID(
		ctx context.Context,
		bookingID uint,
	) (*models.ProvisionedResource, error)

	Save(
		ctx context.Context,
		res *models.ProvisionedResource,
	) error

	Delete(
		ctx context.Context,
		bookingID uint,
	) error
}
