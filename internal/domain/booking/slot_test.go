package booking

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/trainhub/session-booking/internal/httperr"
)

func slotAt(base time.Time, startMin, endMin int) Slot {
	return Slot{
		Start: base.Add(time.Duration(startMin) * time.Minute),
		End:   base.Add(time.Duration(endMin) * time.Minute),
	}
}

func TestSlotValidate(t *testing.T) {
	base := time.Now().UTC()

	assert.NoError(t, slotAt(base, 0, 60).Validate())

	err := slotAt(base, 60, 60).Validate()
	assert.True(t, httperr.IsBusiness(err, "invalid_slot"))

	err = slotAt(base, 60, 0).Validate()
	assert.True(t, httperr.IsBusiness(err, "invalid_slot"))
}

func TestOverlapsBoundaries(t *testing.T) {
	base := time.Now().UTC()

	t.Run("back to back slots do not overlap", func(t *testing.T) {
		a := slotAt(base, 0, 60)
		b := slotAt(base, 60, 120)
		assert.False(t, Overlaps(a, b))
		assert.False(t, Overlaps(b, a))
	})

	t.Run("one minute of overlap conflicts", func(t *testing.T) {
		a := slotAt(base, 0, 61)
		b := slotAt(base, 60, 120)
		assert.True(t, Overlaps(a, b))
		assert.True(t, Overlaps(b, a))
	})

	t.Run("containment conflicts", func(t *testing.T) {
		a := slotAt(base, 0, 120)
		b := slotAt(base, 30, 60)
		assert.True(t, Overlaps(a, b))
		assert.True(t, Overlaps(b, a))
	})
}

// TestOverlapsProperty checks Overlaps against a brute-force ground truth
// on minute granularity: two half-open intervals intersect exactly when
// some minute belongs to both.
func TestOverlapsProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 1000; i++ {
		aStart := rng.Intn(200)
		aEnd := aStart + 1 + rng.Intn(120)
		bStart := rng.Intn(200)
		bEnd := bStart + 1 + rng.Intn(120)

		a := slotAt(base, aStart, aEnd)
		b := slotAt(base, bStart, bEnd)

		expected := false
		for m := aStart; m < aEnd; m++ {
			if m >= bStart && m < bEnd {
				expected = true
				break
			}
		}

		assert.Equal(t, expected, Overlaps(a, b),
			"a=[%d,%d) b=[%d,%d)", aStart, aEnd, bStart, bEnd)
		assert.Equal(t, Overlaps(a, b), Overlaps(b, a),
			"overlap must be symmetric")
	}
}
