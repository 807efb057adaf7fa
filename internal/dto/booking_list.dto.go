package dto

import "time"

type BookingListDTO struct {
	ID            uint      `json:"id"`
	Reference     string    `json:"reference"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"payment_status"`
	SessionType   string    `json:"session_type"`
	ClientName    string    `json:"client_name"`
}
