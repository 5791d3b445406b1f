package models

import "time"

// Seat is a physical seat on a vehicle. Provisioned once to match the vehicle
// capacity and stable afterwards.
type Seat struct {
	ID         int64  `json:"id"`
	VehicleID  int64  `json:"vehicleId"`
	SeatNumber string `json:"seatNumber"`
	SeatType   string `json:"seatType"`
	RowNumber  int    `json:"rowNumber"`
	Position   int    `json:"position"`
	Active     bool   `json:"active"`
}

type AllocationStatus string

const (
	AllocationAvailable AllocationStatus = "available"
	AllocationReserved  AllocationStatus = "reserved"
	AllocationBooked    AllocationStatus = "booked"
	AllocationBlocked   AllocationStatus = "blocked"
)

// SeatAllocation binds one physical seat to one generated trip. Its status is
// independent of the seat's own active flag. (generated_trip_id, seat_id) is
// unique.
type SeatAllocation struct {
	ID              int64
	GeneratedTripID int64
	SeatID          int64

	Status AllocationStatus

	// Optional per-trip price delta in rupiah.
	PriceAdjustment int64

	BlockedReason string
	BlockedUntil  *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// SeatMapEntry is the seat-map read row (allocation joined with its seat).
type SeatMapEntry struct {
	AllocationID int64            `json:"allocationId"`
	SeatID       int64            `json:"seatId"`
	SeatNumber   string           `json:"seatNumber"`
	SeatType     string           `json:"seatType"`
	RowNumber    int              `json:"rowNumber"`
	Position     int              `json:"position"`
	Status       AllocationStatus `json:"status"`
}
