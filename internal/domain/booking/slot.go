package booking

import (
	"time"

	"github.com/trainhub/session-booking/internal/httperr"
)

// Slot is a trainer's half-open time interval [Start, End).
type Slot struct {
	Start time.Time
	End   time.Time
}

func (s Slot) Validate() error {
	if !s.End.After(s.Start) {
		return httperr.ErrBusiness("invalid_slot")
	}
	return nil
}

// Overlaps tests half-open interval intersection.
// Two slots sharing only a boundary instant do not overlap.
func Overlaps(a, b Slot) bool {
	return a.Start.Before(b.End) && b.Start.Before(a.End)
}
