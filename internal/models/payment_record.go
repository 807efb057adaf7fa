package models

import "time"

// PaymentRecord is the source of truth for money movement on a booking.
// Booking.PaymentStatus is a cached projection of it.
type PaymentRecord struct {
	ID uint `gorm:"primaryKey" json:"id"`

	BookingID uint `gorm:"uniqueIndex" json:"booking_id"`

	Amount   float64 `json:"amount"`
	Currency string  `gorm:"size:3" json:"currency"`

	Status string `gorm:"size:20;default:'pending'" json:"status"`

	// Provider references are append-only, never overwritten once set.
	AuthorizationID string `gorm:"size:64" json:"authorization_id"`
	CaptureID       string `gorm:"size:64" json:"capture_id"`
	RefundID        string `gorm:"size:64" json:"refund_id"`

	RefundedAmount float64 `json:"refunded_amount"`
	Disputed       bool    `json:"disputed"`

	IsReleased        bool       `json:"is_released"`
	ReleasedAt        *time.Time `json:"released_at"`
	ReleaseEligibleAt *time.Time `json:"release_eligible_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
