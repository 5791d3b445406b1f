// Package recurrence decides, for a trip template and a calendar date, whether
// a concrete trip instance is due on that date, and where the next candidate
// date lies. Pure date math, no storage.
package recurrence

import (
	"time"

	"tripcore/internal/domain"
	"tripcore/internal/domain/models"
)

// DateOnly truncates t to calendar-day granularity in its own location.
func DateOnly(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

// Anchor is the date recurrence offsets are measured from: the template's
// valid_from, falling back to its creation date when valid_from is zero.
func Anchor(tpl models.TripTemplate) time.Time {
	if !tpl.ValidFrom.IsZero() {
		return DateOnly(tpl.ValidFrom)
	}
	return DateOnly(tpl.CreatedAt)
}

// ValidatePattern rejects templates the evaluator cannot walk. Violations are
// reported once per template by the orchestrator and the template is skipped.
func ValidatePattern(tpl models.TripTemplate) error {
	switch tpl.RecurrenceTypeOrNone() {
	case models.RecurrenceNone, models.RecurrenceDaily, models.RecurrenceMonthly:
		return nil
	case models.RecurrenceWeekly:
		if tpl.Pattern == nil || len(tpl.Pattern.DaysOfWeek) == 0 {
			return domain.ValidationError{Field: "days_of_week", Msg: "pola weekly tanpa hari"}
		}
		return nil
	default:
		return domain.ValidationError{Field: "recurrence_type", Msg: "tipe tidak dikenal: " + string(tpl.Pattern.Type)}
	}
}

// IsDue reports whether an instance of tpl should exist on candidate's date.
//
// Order matters: exception dates veto everything, then the validity window,
// then the pattern itself.
func IsDue(tpl models.TripTemplate, candidate time.Time) bool {
	day := DateOnly(candidate)

	if tpl.Pattern.ExceptionOn(day) {
		return false
	}
	if day.Before(Anchor(tpl)) {
		return false
	}
	if tpl.ValidUntil != nil && day.After(DateOnly(*tpl.ValidUntil)) {
		return false
	}
	if tpl.Pattern != nil && tpl.Pattern.EndDate != nil && day.After(DateOnly(*tpl.Pattern.EndDate)) {
		return false
	}

	switch tpl.RecurrenceTypeOrNone() {
	case models.RecurrenceNone:
		// Exactly one instance, on the template's own departure date.
		return day.Equal(Anchor(tpl))

	case models.RecurrenceDaily:
		interval := patternInterval(tpl)
		if interval <= 1 {
			return true
		}
		offset := daysBetween(Anchor(tpl), day)
		return offset >= 0 && offset%interval == 0

	case models.RecurrenceWeekly:
		// Interval is deliberately not applied here: every matching weekday in
		// every week is due. See NextCandidate.
		if tpl.Pattern == nil || len(tpl.Pattern.DaysOfWeek) == 0 {
			return false
		}
		_, ok := tpl.Pattern.DaysOfWeek[day.Weekday()]
		return ok

	case models.RecurrenceMonthly:
		return day.Day() == Anchor(tpl).Day()

	default:
		return false
	}
}

// NextCandidate advances from cur to the next date worth testing with IsDue.
// Daily steps by the interval, weekly by a single day (each day is tested
// against days_of_week independently), monthly by interval months.
func NextCandidate(tpl models.TripTemplate, cur time.Time) time.Time {
	day := DateOnly(cur)
	switch tpl.RecurrenceTypeOrNone() {
	case models.RecurrenceDaily:
		return day.AddDate(0, 0, patternInterval(tpl))
	case models.RecurrenceWeekly:
		return day.AddDate(0, 0, 1)
	case models.RecurrenceMonthly:
		return day.AddDate(0, patternInterval(tpl), 0)
	default:
		return day.AddDate(0, 0, 1)
	}
}

func patternInterval(tpl models.TripTemplate) int {
	if tpl.Pattern == nil || tpl.Pattern.Interval < 1 {
		return 1
	}
	return tpl.Pattern.Interval
}

// daysBetween counts calendar days between two dates. Both are re-anchored to
// UTC midnight first so a 23-hour spring-forward day still counts as one day.
func daysBetween(from, to time.Time) int {
	fy, fm, fd := from.Date()
	ty, tm, td := to.Date()
	f := time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)
	t := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	return int(t.Sub(f).Hours() / 24)
}
