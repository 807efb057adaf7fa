package provisioning

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/trainhub/session-booking/internal/httperr"
	"github.com/trainhub/session-booking/internal/models"
)

// Orchestrator keeps the stored ProvisionedResource row in step with the
// live external resources, across partial failures and retries.
type Orchestrator struct {
	meetings Meetings
	calendar Calendar
	repo     Repo
}

func NewOrchestrator(meetings Meetings, calendar Calendar, repo Repo) *Orchestrator {
	return &Orchestrator{
		meetings: meetings,
		calendar: calendar,
		repo:     repo,
	}
}

// Result of a provisioning attempt. CalendarPending means the meeting is
// live but the calendar event still needs a retry.
type Result struct {
	Resource        *models.ProvisionedResource
	CalendarPending bool
}

// Provision creates the meeting first, then the calendar event referencing
// the meeting's join link. Each created resource is persisted immediately,
// so a retry resumes where the last attempt stopped instead of creating a
// second meeting. A calendar failure after a successful meeting keeps the
// meeting and reports CalendarPending.
func (o *Orchestrator) Provision(ctx context.Context, b *models.Booking, attendees []string) (*Result, error) {
	res, err := o.repo.GetByBookingID(ctx, b.ID)
	if err != nil {
		res = &models.ProvisionedResource{BookingID: b.ID}
	}

	if res.MeetingID == "" {
		m, err := o.meetings.Create(
			ctx,
			fmt.Sprintf("Training session %s", b.Reference),
			b.StartTime,
			b.EndTime.Sub(b.StartTime),
		)
		if err != nil {
			return nil, httperr.ErrBusiness("provisioning_failed")
		}

		res.MeetingID = m.ID
		res.JoinURL = m.JoinURL
		res.MeetingCredentials = m.Credentials

		if err := o.repo.Save(ctx, res); err != nil {
			return nil, err
		}
	}

	if res.CalendarEventID == "" {
		ev, err := o.calendar.CreateEvent(
			ctx,
			b.StartTime,
			b.EndTime,
			attendees,
			fmt.Sprintf("Training session %s, join: %s", b.SessionType, res.JoinURL),
		)
		if err != nil {
			log.Printf("calendar create failed for booking %d, keeping meeting %s: %v", b.ID, res.MeetingID, err)
			return &Result{Resource: res, CalendarPending: true}, nil
		}

		res.CalendarEventID = ev.ID
		if err := o.repo.Save(ctx, res); err != nil {
			return nil, err
		}
	}

	return &Result{Resource: res}, nil
}

// Update moves both resources to the new slot. A calendar failure after a
// successful meeting update leaves the calendar event stale and flagged;
// reverting a correct meeting to match a stale calendar entry is the wrong
// trade-off.
func (o *Orchestrator) Update(ctx context.Context, b *models.Booking, start, end time.Time) (calendarStale bool, err error) {
	res, err := o.repo.GetByBookingID(ctx, b.ID)
	if err != nil {
		return false, httperr.ErrBusiness("provisioning_failed")
	}

	if res.MeetingID != "" {
		if err := o.meetings.Update(ctx, res.MeetingID, start, end.Sub(start)); err != nil {
			return false, httperr.ErrBusiness("provisioning_failed")
		}
	}

	if res.CalendarEventID != "" {
		if err := o.calendar.UpdateEvent(ctx, res.CalendarEventID, start, end); err != nil {
			log.Printf("calendar update failed for booking %d, event %s left stale: %v", b.ID, res.CalendarEventID, err)
			return true, nil
		}
	}

	return false, nil
}

// Teardown deletes the calendar event, then the meeting, then forgets the
// row. Safe to retry after a partial failure: provider deletes treat
// already-deleted resources as success, and each external delete is
// persisted before moving on.
func (o *Orchestrator) Teardown(ctx context.Context, bookingID uint) error {
	res, err := o.repo.GetByBookingID(ctx, bookingID)
	if err != nil {
		// nothing provisioned
		return nil
	}

	if res.CalendarEventID != "" {
		if err := o.calendar.DeleteEvent(ctx, res.CalendarEventID); err != nil {
			return err
		}
		res.CalendarEventID = ""
		if err := o.repo.Save(ctx, res); err != nil {
			return err
		}
	}

	if res.MeetingID != "" {
		if err := o.meetings.Delete(ctx, res.MeetingID); err != nil {
			return err
		}
	}

	return o.repo.Delete(ctx, bookingID)
}
