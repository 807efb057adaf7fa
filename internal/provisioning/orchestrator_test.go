package provisioning

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trainhub/session-booking/internal/models"
)

// --------------------------------------------------
// Fakes
// --------------------------------------------------

type fakeMeetings struct {
	createCalls int
	deleteCalls int
	failCreate  bool
	failDelete  bool
}

func (m *fakeMeetings) Create(ctx context.Context, topic string, scheduledAt time.Time, duration time.Duration) (*Meeting, error) {
	m.createCalls++
	if m.failCreate {
		return nil, errors.New("meeting provider down")
	}
	return &Meeting{
		ID:          fmt.Sprintf("meet-%d", m.createCalls),
		JoinURL:     fmt.Sprintf("https://meet.example.com/meet-%d", m.createCalls),
		Credentials: "host-key",
	}, nil
}

func (m *fakeMeetings) Update(ctx context.Context, id string, scheduledAt time.Time, duration time.Duration) error {
	return nil
}

func (m *fakeMeetings) Delete(ctx context.Context, id string) error {
	m.deleteCalls++
	if m.failDelete {
		return errors.New("meeting provider down")
	}
	return nil
}

type fakeCalendar struct {
	createCalls int
	deleteCalls int
	failCreate  bool
	failUpdate  bool
}

func (c *fakeCalendar) CreateEvent(ctx context.Context, start, end time.Time, attendees []string, description string) (*CalendarEvent, error) {
	c.createCalls++
	if c.failCreate {
		return nil, errors.New("calendar provider down")
	}
	return &CalendarEvent{ID: fmt.Sprintf("event-%d", c.createCalls)}, nil
}

func (c *fakeCalendar) UpdateEvent(ctx context.Context, id string, start, end time.Time) error {
	if c.failUpdate {
		return errors.New("calendar provider down")
	}
	return nil
}

func (c *fakeCalendar) DeleteEvent(ctx context.Context, id string) error {
	c.deleteCalls++
	return nil
}

type memResourceRepo struct {
	rows map[uint]*models.ProvisionedResource
}

func newMemResourceRepo() *memResourceRepo {
	return &memResourceRepo{rows: map[uint]*models.ProvisionedResource{}}
}

func (r *memResourceRepo) GetByBookingID(ctx context.Context, bookingID uint) (*models.ProvisionedResource, error) {
	row, ok := r.rows[bookingID]
	if !ok {
		return nil, errors.New("not found")
	}
	cp := *row
	return &cp, nil
}

func (r *memResourceRepo) Save(ctx context.Context, res *models.ProvisionedResource) error {
	cp := *res
	r.rows[res.BookingID] = &cp
	return nil
}

func (r *memResourceRepo) Delete(ctx context.Context, bookingID uint) error {
	delete(r.rows, bookingID)
	return nil
}

func testBooking() *models.Booking {
	start := time.Now().UTC().Add(48 * time.Hour)
	return &models.Booking{
		ID:          7,
		Reference:   "ref-7",
		SessionType: "strength",
		StartTime:   start,
		EndTime:     start.Add(time.Hour),
	}
}

// --------------------------------------------------
// Provision
// --------------------------------------------------

func TestProvision(t *testing.T) {
	ctx := context.Background()
	attendees := []string{"client@example.com", "trainer@example.com"}

	t.Run("happy path creates meeting then calendar event", func(t *testing.T) {
		meetings := &fakeMeetings{}
		calendar := &fakeCalendar{}
		repo := newMemResourceRepo()
		o := NewOrchestrator(meetings, calendar, repo)

		result, err := o.Provision(ctx, testBooking(), attendees)
		require.NoError(t, err)
		assert.False(t, result.CalendarPending)
		assert.NotEmpty(t, result.Resource.MeetingID)
		assert.NotEmpty(t, result.Resource.CalendarEventID)
		assert.NotEmpty(t, result.Resource.JoinURL)
	})

	t.Run("calendar failure keeps the meeting", func(t *testing.T) {
		meetings := &fakeMeetings{}
		calendar := &fakeCalendar{failCreate: true}
		repo := newMemResourceRepo()
		o := NewOrchestrator(meetings, calendar, repo)

		result, err := o.Provision(ctx, testBooking(), attendees)
		require.NoError(t, err)
		assert.True(t, result.CalendarPending)
		assert.NotEmpty(t, result.Resource.MeetingID)
		assert.Empty(t, result.Resource.CalendarEventID)

		// the meeting survived the partial failure
		stored, err := repo.GetByBookingID(ctx, 7)
		require.NoError(t, err)
		assert.Equal(t, result.Resource.MeetingID, stored.MeetingID)
	})

	t.Run("retry resumes without creating a second meeting", func(t *testing.T) {
		meetings := &fakeMeetings{}
		calendar := &fakeCalendar{failCreate: true}
		repo := newMemResourceRepo()
		o := NewOrchestrator(meetings, calendar, repo)

		_, err := o.Provision(ctx, testBooking(), attendees)
		require.NoError(t, err)

		calendar.failCreate = false
		result, err := o.Provision(ctx, testBooking(), attendees)
		require.NoError(t, err)

		assert.False(t, result.CalendarPending)
		assert.Equal(t, 1, meetings.createCalls)
		assert.Equal(t, 2, calendar.createCalls)
	})

	t.Run("meeting failure provisions nothing", func(t *testing.T) {
		meetings := &fakeMeetings{failCreate: true}
		repo := newMemResourceRepo()
		o := NewOrchestrator(meetings, &fakeCalendar{}, repo)

		_, err := o.Provision(ctx, testBooking(), attendees)
		require.Error(t, err)

		_, err = repo.GetByBookingID(ctx, 7)
		assert.Error(t, err)
	})
}

// --------------------------------------------------
// Update
// --------------------------------------------------

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	b := testBooking()

	t.Run("calendar failure leaves the event stale, meeting moved", func(t *testing.T) {
		meetings := &fakeMeetings{}
		calendar := &fakeCalendar{}
		repo := newMemResourceRepo()
		o := NewOrchestrator(meetings, calendar, repo)

		_, err := o.Provision(ctx, b, nil)
		require.NoError(t, err)

		calendar.failUpdate = true
		stale, err := o.Update(ctx, b, b.StartTime.Add(time.Hour), b.EndTime.Add(time.Hour))
		require.NoError(t, err)
		assert.True(t, stale)
	})
}

// --------------------------------------------------
// Teardown
// --------------------------------------------------

func TestTeardown(t *testing.T) {
	ctx := context.Background()
	b := testBooking()

	t.Run("deletes calendar, meeting and the row", func(t *testing.T) {
		meetings := &fakeMeetings{}
		calendar := &fakeCalendar{}
		repo := newMemResourceRepo()
		o := NewOrchestrator(meetings, calendar, repo)

		_, err := o.Provision(ctx, b, nil)
		require.NoError(t, err)

		require.NoError(t, o.Teardown(ctx, b.ID))
		assert.Equal(t, 1, calendar.deleteCalls)
		assert.Equal(t, 1, meetings.deleteCalls)

		_, err = repo.GetByBookingID(ctx, b.ID)
		assert.Error(t, err)
	})

	t.Run("teardown without provisioned resources succeeds", func(t *testing.T) {
		o := NewOrchestrator(&fakeMeetings{}, &fakeCalendar{}, newMemResourceRepo())
		assert.NoError(t, o.Teardown(ctx, 99))
	})

	t.Run("retry after partial teardown does not repeat the calendar delete", func(t *testing.T) {
		meetings := &fakeMeetings{failDelete: true}
		calendar := &fakeCalendar{}
		repo := newMemResourceRepo()
		o := NewOrchestrator(meetings, calendar, repo)

		_, err := o.Provision(ctx, b, nil)
		require.NoError(t, err)

		require.Error(t, o.Teardown(ctx, b.ID))
		assert.Equal(t, 1, calendar.deleteCalls)

		meetings.failDelete = false
		require.NoError(t, o.Teardown(ctx, b.ID))
		assert.Equal(t, 1, calendar.deleteCalls)
		assert.Equal(t, 2, meetings.deleteCalls)
	})
}
