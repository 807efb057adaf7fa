package booking

import "time"

// Policy holds the business parameters that are deployment configuration,
// not code: cancellation window, late-cancellation refund and payout hold.
type Policy struct {
	// CancellationWindow before the session start inside which a
	// cancellation only earns a partial refund.
	CancellationWindow time.Duration

	// LateCancelRefundPercent in [0, 100], applied inside the window.
	LateCancelRefundPercent float64

	// PayoutHold after completion before the captured amount becomes
	// eligible for release to the trainer.
	PayoutHold time.Duration
}

// RefundFraction returns the fraction of the held amount to refund for a
// cancellation happening at now, for a session starting at start.
func (p Policy) RefundFraction(start, now time.Time) float64 {
	if now.Add(p.CancellationWindow).Before(start) {
		return 1
	}
	return p.LateCancelRefundPercent / 100
}
