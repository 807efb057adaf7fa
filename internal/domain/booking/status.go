package booking

import "github.com/trainhub/session-booking/internal/httperr"

// ===============================
// Booking Status
// ===============================

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusNoShow    Status = "no_show"
)

// PaymentStatus is the projection of the PaymentRecord kept on the booking.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentRefunded  PaymentStatus = "refunded"
	PaymentFailed    PaymentStatus = "failed"
)

// IsTerminal reports whether no further status transition is allowed.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

// ===============================
// Transition guards
// ===============================

// CanConfirm requires a pending booking whose funds are at least held.
func CanConfirm(current Status, pay PaymentStatus) error {
	if current != StatusPending {
		return httperr.ErrBusiness("invalid_transition")
	}
	if pay != PaymentPending && pay != PaymentCompleted {
		return httperr.ErrBusiness("invalid_transition")
	}
	return nil
}

func CanDecline(current Status) error {
	if current != StatusPending {
		return httperr.ErrBusiness("invalid_transition")
	}
	return nil
}

func CanCancel(current Status) error {
	if current != StatusPending && current != StatusConfirmed {
		return httperr.ErrBusiness("invalid_transition")
	}
	return nil
}

func CanComplete(current Status) error {
	if current != StatusConfirmed {
		return httperr.ErrBusiness("invalid_transition")
	}
	return nil
}

func CanMarkNoShow(current Status) error {
	if current != StatusConfirmed {
		return httperr.ErrBusiness("invalid_transition")
	}
	return nil
}

func InitialStatus() Status {
	return StatusPending
}
