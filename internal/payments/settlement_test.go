package payments

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trainhub/session-booking/internal/httperr"
	"github.com/trainhub/session-booking/internal/models"
)

// --------------------------------------------------
// Fakes
// --------------------------------------------------

type fakeProvider struct {
	authorizeCalls int
	captureCalls   int
	refundCalls    int

	failAuthorize bool
	failCapture   bool
	failRefund    bool
}

func (p *fakeProvider) Authorize(ctx context.Context, in AuthorizeInput) (string, error) {
	p.authorizeCalls++
	if p.failAuthorize {
		return "", errors.New("card declined")
	}
	return fmt.Sprintf("auth-%d", p.authorizeCalls), nil
}

func (p *fakeProvider) Capture(ctx context.Context, authorizationID, idempotencyKey string) (string, error) {
	p.captureCalls++
	if p.failCapture {
		return "", errors.New("capture rejected")
	}
	return fmt.Sprintf("cap-%d", p.captureCalls), nil
}

func (p *fakeProvider) Refund(ctx context.Context, providerRef string, amount float64, reason, idempotencyKey string) (string, error) {
	p.refundCalls++
	if p.failRefund {
		return "", errors.New("refund rejected")
	}
	return fmt.Sprintf("ref-%d", p.refundCalls), nil
}

type fakeRecordRepo struct {
	records map[uint]*models.PaymentRecord
}

func newFakeRecordRepo() *fakeRecordRepo {
	return &fakeRecordRepo{records: map[uint]*models.PaymentRecord{}}
}

func (r *fakeRecordRepo) GetByBookingID(ctx context.Context, bookingID uint) (*models.PaymentRecord, error) {
	rec, ok := r.records[bookingID]
	if !ok {
		return nil, errors.New("record not found")
	}
	cp := *rec
	return &cp, nil
}

func (r *fakeRecordRepo) Create(ctx context.Context, rec *models.PaymentRecord) error {
	cp := *rec
	r.records[rec.BookingID] = &cp
	return nil
}

func (r *fakeRecordRepo) Update(ctx context.Context, rec *models.PaymentRecord) error {
	cp := *rec
	r.records[rec.BookingID] = &cp
	return nil
}

func authorized(t *testing.T, s *Settlement) *models.PaymentRecord {
	t.Helper()
	rec, err := s.Authorize(context.Background(), 1, 100, "BRL", "client@example.com", "ref-1")
	require.NoError(t, err)
	require.Equal(t, RecordAuthorized, rec.Status)
	return rec
}

// --------------------------------------------------
// Authorize
// --------------------------------------------------

func TestSettlementAuthorize(t *testing.T) {
	ctx := context.Background()

	t.Run("authorize is idempotent per booking", func(t *testing.T) {
		provider := &fakeProvider{}
		s := NewSettlement(provider, newFakeRecordRepo())

		first := authorized(t, s)

		second, err := s.Authorize(ctx, 1, 100, "BRL", "client@example.com", "ref-1")
		require.NoError(t, err)

		assert.Equal(t, 1, provider.authorizeCalls)
		assert.Equal(t, first.AuthorizationID, second.AuthorizationID)
	})

	t.Run("declined authorization marks the record failed", func(t *testing.T) {
		provider := &fakeProvider{failAuthorize: true}
		repo := newFakeRecordRepo()
		s := NewSettlement(provider, repo)

		rec, err := s.Authorize(ctx, 1, 100, "BRL", "client@example.com", "ref-1")
		assert.True(t, httperr.IsBusiness(err, "payment_authorization_failed"))
		assert.Equal(t, RecordFailed, rec.Status)

		stored, err := repo.GetByBookingID(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, RecordFailed, stored.Status)
	})
}

// --------------------------------------------------
// Capture
// --------------------------------------------------

func TestSettlementCapture(t *testing.T) {
	ctx := context.Background()

	t.Run("capture after authorize completes the record", func(t *testing.T) {
		provider := &fakeProvider{}
		s := NewSettlement(provider, newFakeRecordRepo())
		authorized(t, s)

		rec, err := s.Capture(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, RecordCompleted, rec.Status)
		assert.NotEmpty(t, rec.CaptureID)
	})

	t.Run("second capture does not reach the provider", func(t *testing.T) {
		provider := &fakeProvider{}
		s := NewSettlement(provider, newFakeRecordRepo())
		authorized(t, s)

		_, err := s.Capture(ctx, 1)
		require.NoError(t, err)
		_, err = s.Capture(ctx, 1)
		require.NoError(t, err)

		assert.Equal(t, 1, provider.captureCalls)
	})

	t.Run("capture without authorization fails", func(t *testing.T) {
		provider := &fakeProvider{failAuthorize: true}
		s := NewSettlement(provider, newFakeRecordRepo())
		_, _ = s.Authorize(ctx, 1, 100, "BRL", "client@example.com", "ref-1")

		_, err := s.Capture(ctx, 1)
		assert.True(t, httperr.IsBusiness(err, "payment_capture_failed"))
	})

	t.Run("capture for unknown booking fails with payment_not_found", func(t *testing.T) {
		s := NewSettlement(&fakeProvider{}, newFakeRecordRepo())
		_, err := s.Capture(ctx, 99)
		assert.True(t, httperr.IsBusiness(err, "payment_not_found"))
	})
}

// --------------------------------------------------
// Refund
// --------------------------------------------------

func TestSettlementRefund(t *testing.T) {
	ctx := context.Background()

	t.Run("full refund of an authorization", func(t *testing.T) {
		provider := &fakeProvider{}
		s := NewSettlement(provider, newFakeRecordRepo())
		authorized(t, s)

		rec, err := s.Refund(ctx, 1, 100, "cancelled")
		require.NoError(t, err)
		assert.Equal(t, RecordRefunded, rec.Status)
		assert.Equal(t, 100.0, rec.RefundedAmount)
		assert.Equal(t, 1, provider.refundCalls)
	})

	t.Run("refund above the held amount changes nothing", func(t *testing.T) {
		provider := &fakeProvider{}
		repo := newFakeRecordRepo()
		s := NewSettlement(provider, repo)
		authorized(t, s)

		_, err := s.Refund(ctx, 1, 150, "cancelled")
		assert.True(t, httperr.IsBusiness(err, "refund_exceeds_captured"))
		assert.Equal(t, 0, provider.refundCalls)

		stored, err := repo.GetByBookingID(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, RecordAuthorized, stored.Status)
		assert.Equal(t, 0.0, stored.RefundedAmount)
	})

	t.Run("refund on an already refunded record is a no-op", func(t *testing.T) {
		provider := &fakeProvider{}
		s := NewSettlement(provider, newFakeRecordRepo())
		authorized(t, s)

		_, err := s.Refund(ctx, 1, 100, "cancelled")
		require.NoError(t, err)
		_, err = s.Refund(ctx, 1, 100, "cancelled")
		require.NoError(t, err)

		assert.Equal(t, 1, provider.refundCalls)
	})

	t.Run("refund targets the capture when funds were captured", func(t *testing.T) {
		provider := &fakeProvider{}
		s := NewSettlement(provider, newFakeRecordRepo())
		authorized(t, s)
		_, err := s.Capture(ctx, 1)
		require.NoError(t, err)

		rec, err := s.Refund(ctx, 1, 50, "partial")
		require.NoError(t, err)
		assert.Equal(t, 50.0, rec.RefundedAmount)
	})
}

// --------------------------------------------------
// Release
// --------------------------------------------------

func TestSettlementRelease(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()

	setup := func(t *testing.T) *Settlement {
		s := NewSettlement(&fakeProvider{}, newFakeRecordRepo())
		authorized(t, s)
		_, err := s.Capture(ctx, 1)
		require.NoError(t, err)
		require.NoError(t, s.ScheduleRelease(ctx, 1, now.Add(48*time.Hour)))
		return s
	}

	t.Run("release before the hold elapses is rejected", func(t *testing.T) {
		s := setup(t)
		_, err := s.Release(ctx, 1, now.Add(time.Hour))
		assert.True(t, httperr.IsBusiness(err, "release_not_eligible"))
	})

	t.Run("release after the hold succeeds once", func(t *testing.T) {
		s := setup(t)

		rec, err := s.Release(ctx, 1, now.Add(72*time.Hour))
		require.NoError(t, err)
		assert.True(t, rec.IsReleased)
		require.NotNil(t, rec.ReleasedAt)

		_, err = s.Release(ctx, 1, now.Add(96*time.Hour))
		assert.True(t, httperr.IsBusiness(err, "release_not_eligible"))
	})

	t.Run("release without capture is rejected", func(t *testing.T) {
		s := NewSettlement(&fakeProvider{}, newFakeRecordRepo())
		authorized(t, s)
		require.NoError(t, s.ScheduleRelease(ctx, 1, now))

		_, err := s.Release(ctx, 1, now.Add(time.Hour))
		assert.True(t, httperr.IsBusiness(err, "release_not_eligible"))
	})

	t.Run("schedule release keeps the first eligibility time", func(t *testing.T) {
		s := setup(t)
		require.NoError(t, s.ScheduleRelease(ctx, 1, now.Add(500*time.Hour)))

		rec, err := s.Get(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, now.Add(48*time.Hour).Unix(), rec.ReleaseEligibleAt.Unix())
	})
}

// --------------------------------------------------
// Provider event reconciliation
// --------------------------------------------------

func TestSettlementEventAppliers(t *testing.T) {
	ctx := context.Background()

	t.Run("confirm capture on an authorized record", func(t *testing.T) {
		s := NewSettlement(&fakeProvider{}, newFakeRecordRepo())
		authorized(t, s)

		rec, changed, err := s.ConfirmCapture(ctx, 1, "cap-webhook")
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Equal(t, RecordCompleted, rec.Status)
		assert.Equal(t, "cap-webhook", rec.CaptureID)
	})

	t.Run("confirm capture keeps an existing capture id", func(t *testing.T) {
		s := NewSettlement(&fakeProvider{}, newFakeRecordRepo())
		authorized(t, s)
		captured, err := s.Capture(ctx, 1)
		require.NoError(t, err)

		rec, changed, err := s.ConfirmCapture(ctx, 1, "cap-other")
		require.NoError(t, err)
		assert.False(t, changed)
		assert.Equal(t, captured.CaptureID, rec.CaptureID)
	})

	t.Run("fail capture on a terminal record is a no-op", func(t *testing.T) {
		s := NewSettlement(&fakeProvider{}, newFakeRecordRepo())
		authorized(t, s)
		_, err := s.Refund(ctx, 1, 100, "cancelled")
		require.NoError(t, err)

		rec, changed, err := s.FailCapture(ctx, 1)
		require.NoError(t, err)
		assert.False(t, changed)
		assert.Equal(t, RecordRefunded, rec.Status)
	})

	t.Run("dispute is flagged once", func(t *testing.T) {
		s := NewSettlement(&fakeProvider{}, newFakeRecordRepo())
		authorized(t, s)

		_, changed, err := s.OpenDispute(ctx, 1)
		require.NoError(t, err)
		assert.True(t, changed)

		_, changed, err = s.OpenDispute(ctx, 1)
		require.NoError(t, err)
		assert.False(t, changed)
	})
}

func TestProjectStatus(t *testing.T) {
	assert.Equal(t, "pending", ProjectStatus(RecordPending))
	assert.Equal(t, "pending", ProjectStatus(RecordAuthorized))
	assert.Equal(t, "completed", ProjectStatus(RecordCompleted))
	assert.Equal(t, "refunded", ProjectStatus(RecordRefunded))
	assert.Equal(t, "failed", ProjectStatus(RecordFailed))
}
