package models

import "time"

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
	BookingCompleted BookingStatus = "completed"
	BookingNoShow    BookingStatus = "no_show"
)

// Active bookings count against seat availability and are the ones the
// unique active-allocation index guards.
func (s BookingStatus) Active() bool {
	return s == BookingPending || s == BookingConfirmed
}

// Booking references one seat allocation. Rows are never deleted, only
// status-transitioned.
type Booking struct {
	ID               int64
	SeatAllocationID int64
	CustomerName     string
	CustomerPhone    string

	Status        BookingStatus
	PaymentStatus string
	TotalPrice    int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// BookingInput is the create payload accepted from the booking collaborator.
type BookingInput struct {
	SeatAllocationID int64  `json:"seat_allocation_id"`
	CustomerName     string `json:"customer_name"`
	CustomerPhone    string `json:"customer_phone"`
	Status           string `json:"status"`
	PaymentStatus    string `json:"payment_status"`
	TotalPrice       int64  `json:"total_price"`
}
