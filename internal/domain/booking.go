package domain

import (
	"time"
)

type BookingStatus string

const (
	BookingUpcoming  BookingStatus = "Upcoming"
	BookingCompleted BookingStatus = "Completed"
	BookingCancelled BookingStatus = "Cancelled"
)

type Booking struct {
	ID           uint          `json:"id"`
	Quantity     int           `json:"quantity"`
	TotalPrice   Money         `json:"total_price"`
	BookingDate  time.Time     `json:"booking_date"`
	Status       BookingStatus `json:"status"`
	AttendedDate *time.Time    `json:"attended_date,omitempty"`
	UserID       uint          `json:"user_id"`
	EventID      uint          `json:"event_id"`
	EventName    string        `json:"event_name,omitempty"`
}

func (b *Booking) IsValid() bool {
	if b.Quantity <= 0 {
		return false
	}
	if b.UserID == 0 || b.EventID == 0 {
		return false
	}

	return true
}
