package webhooks

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ucbooking "github.com/trainhub/session-booking/internal/usecase/booking"
)

// --------------------------------------------------
// Fakes
// --------------------------------------------------

type memEventStore struct {
	mu   sync.Mutex
	seen map[string]bool
}

func newMemEventStore() *memEventStore {
	return &memEventStore{seen: map[string]bool{}}
}

func (s *memEventStore) MarkSeen(ctx context.Context, eventID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seen[eventID] {
		return false, nil
	}
	s.seen[eventID] = true
	return true, nil
}

func (s *memEventStore) Unmark(ctx context.Context, eventID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.seen, eventID)
	return nil
}

type recordingApplier struct {
	mu       sync.Mutex
	inputs   []ucbooking.ApplyPaymentEventInput
	failNext bool
}

func (a *recordingApplier) Execute(ctx context.Context, in ucbooking.ApplyPaymentEventInput) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.inputs = append(a.inputs, in)
	if a.failNext {
		a.failNext = false
		return errors.New("booking lookup failed")
	}
	return nil
}

// --------------------------------------------------
// Reconciler
// --------------------------------------------------

func TestReconcilerDeduplicates(t *testing.T) {
	ctx := context.Background()
	applier := &recordingApplier{}
	r := NewReconciler(newMemEventStore(), applier)

	ev := Event{
		ID:               "evt-1",
		Kind:             "capture.succeeded",
		BookingReference: "ref-1",
		ProviderRef:      "cap-1",
	}

	require.NoError(t, r.Handle(ctx, ev))
	require.NoError(t, r.Handle(ctx, ev))
	require.NoError(t, r.Handle(ctx, ev))

	require.Len(t, applier.inputs, 1)
	assert.Equal(t, "capture.succeeded", applier.inputs[0].Kind)
	assert.Equal(t, "ref-1", applier.inputs[0].BookingReference)
	assert.Equal(t, "cap-1", applier.inputs[0].ProviderRef)
}

func TestReconcilerDistinctEvents(t *testing.T) {
	ctx := context.Background()
	applier := &recordingApplier{}
	r := NewReconciler(newMemEventStore(), applier)

	for i := 0; i < 3; i++ {
		ev := Event{
			ID:               fmt.Sprintf("evt-%d", i),
			Kind:             "refund.succeeded",
			BookingReference: "ref-1",
		}
		require.NoError(t, r.Handle(ctx, ev))
	}

	assert.Len(t, applier.inputs, 3)
}

func TestReconcilerRetriesAfterApplyFailure(t *testing.T) {
	ctx := context.Background()
	applier := &recordingApplier{failNext: true}
	r := NewReconciler(newMemEventStore(), applier)

	ev := Event{
		ID:               "evt-1",
		Kind:             "capture.succeeded",
		BookingReference: "ref-1",
		ProviderRef:      "cap-1",
	}

	// the first delivery fails mid-apply, so the id must not be burned:
	// the provider's redelivery has to reach the applier again
	require.Error(t, r.Handle(ctx, ev))
	require.NoError(t, r.Handle(ctx, ev))
	require.Len(t, applier.inputs, 2)

	// a third delivery is now a genuine duplicate
	require.NoError(t, r.Handle(ctx, ev))
	assert.Len(t, applier.inputs, 2)
}

// --------------------------------------------------
// Signature validation
// --------------------------------------------------

func sign(secret, eventID, requestID, ts string) string {
	manifest := fmt.Sprintf("id:%s;request-id:%s;ts:%s;", eventID, requestID, ts)
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(manifest))
	return hex.EncodeToString(h.Sum(nil))
}

func TestSignatureValidator(t *testing.T) {
	const secret = "whsec-test"
	v := NewSignatureValidator(secret)

	t.Run("valid signature passes", func(t *testing.T) {
		hash := sign(secret, "evt-1", "req-1", "1700000000")
		header := fmt.Sprintf("ts=1700000000,v1=%s", hash)
		assert.True(t, v.Validate(header, "req-1", "evt-1"))
	})

	t.Run("tampered event id fails", func(t *testing.T) {
		hash := sign(secret, "evt-1", "req-1", "1700000000")
		header := fmt.Sprintf("ts=1700000000,v1=%s", hash)
		assert.False(t, v.Validate(header, "req-1", "evt-2"))
	})

	t.Run("wrong secret fails", func(t *testing.T) {
		hash := sign("other-secret", "evt-1", "req-1", "1700000000")
		header := fmt.Sprintf("ts=1700000000,v1=%s", hash)
		assert.False(t, v.Validate(header, "req-1", "evt-1"))
	})

	t.Run("missing header fails", func(t *testing.T) {
		assert.False(t, v.Validate("", "req-1", "evt-1"))
	})

	t.Run("malformed header fails", func(t *testing.T) {
		assert.False(t, v.Validate("nonsense", "req-1", "evt-1"))
	})
}
