package models

import "time"

// RecurrenceType enumerates the supported repeat vocabularies. Anything else
// coming from the back-office is skipped by the evaluator, never fatal.
type RecurrenceType string

const (
	RecurrenceNone    RecurrenceType = "none"
	RecurrenceDaily   RecurrenceType = "daily"
	RecurrenceWeekly  RecurrenceType = "weekly"
	RecurrenceMonthly RecurrenceType = "monthly"
)

// RecurrencePattern is the typed form of the recurrence columns. DaysOfWeek and
// Exceptions are stored as JSON text in MySQL; the repository is the only place
// that marshals them.
type RecurrencePattern struct {
	Type     RecurrenceType
	Interval int

	// Weekly only. Must be non-empty for weekly templates.
	DaysOfWeek map[time.Weekday]struct{}

	EndDate *time.Time

	// Calendar dates (keyed YYYY-MM-DD) on which no instance may exist.
	Exceptions map[string]struct{}
}

// ExceptionOn reports whether day (any time-of-day) is excluded.
func (p *RecurrencePattern) ExceptionOn(day time.Time) bool {
	if p == nil || len(p.Exceptions) == 0 {
		return false
	}
	_, ok := p.Exceptions[day.Format("2006-01-02")]
	return ok
}

// TripTemplate mirrors trip_templates. Authored by the operations back-office;
// read-only to the generation core.
type TripTemplate struct {
	ID        int64
	RouteFrom string
	RouteTo   string

	// Time-of-day in "15:04:05" form, applied to each generated date.
	DepartureTime string
	ArrivalTime   string

	VehicleID  int64
	ValidFrom  time.Time
	ValidUntil *time.Time
	Active     bool

	Pattern *RecurrencePattern

	CreatedAt time.Time
	UpdatedAt time.Time
}

// RecurrenceTypeOrNone treats a missing pattern as a one-off departure.
func (t TripTemplate) RecurrenceTypeOrNone() RecurrenceType {
	if t.Pattern == nil || t.Pattern.Type == "" {
		return RecurrenceNone
	}
	return t.Pattern.Type
}
