package models

import "time"

// ProvisionedResource tracks the external meeting and calendar event attached
// to a booking. No row means "not provisioned" or "torn down".
type ProvisionedResource struct {
	ID uint `gorm:"primaryKey" json:"id"`

	BookingID uint `gorm:"uniqueIndex" json:"booking_id"`

	MeetingID          string `gorm:"size:64" json:"meeting_id"`
	JoinURL            string `gorm:"size:255" json:"join_url"`
	MeetingCredentials string `gorm:"size:255" json:"-"`

	CalendarEventID string `gorm:"size:64" json:"calendar_event_id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
