package models

import "time"

type TripStatus string

const (
	TripStatusScheduled TripStatus = "scheduled"
	TripStatusBoarding  TripStatus = "boarding"
	TripStatusDeparted  TripStatus = "departed"
	TripStatusArrived   TripStatus = "arrived"
	TripStatusCancelled TripStatus = "cancelled"
)

// Terminal reports whether the trip can no longer change status.
func (s TripStatus) Terminal() bool {
	return s == TripStatusArrived || s == TripStatusCancelled
}

// GeneratedTrip is one concrete, dated departure materialized from a template.
// (template_id, actual_departure_time) is unique, which is what makes
// generation re-runs no-ops instead of duplicates.
type GeneratedTrip struct {
	ID         int64
	TemplateID int64
	VehicleID  int64

	// The template's nominal time-of-day applied to the generated date.
	OriginalDeparture time.Time
	ActualDeparture   time.Time
	ActualArrival     time.Time

	// Cached counter, always recomputed from seat_allocations.
	AvailableSeats int

	Status TripStatus

	CreatedAt time.Time
	UpdatedAt time.Time
}

// GeneratedTripSummary is the read-path row: instance joined with template and
// vehicle fields for the back-office listing.
type GeneratedTripSummary struct {
	GeneratedTrip
	RouteFrom   string `json:"routeFrom"`
	RouteTo     string `json:"routeTo"`
	VehicleCode string `json:"vehicleCode"`
	VehicleName string `json:"vehicleName"`
	TotalSeats  int    `json:"totalSeats"`
}
