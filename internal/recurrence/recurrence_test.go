package recurrence

import (
	"testing"
	"time"

	"tripcore/internal/domain/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dailyTemplate(interval int, from, until time.Time) models.TripTemplate {
	u := until
	return models.TripTemplate{
		ID:        1,
		ValidFrom: from,
		ValidUntil: func() *time.Time {
			if u.IsZero() {
				return nil
			}
			return &u
		}(),
		Active: true,
		Pattern: &models.RecurrencePattern{
			Type:     models.RecurrenceDaily,
			Interval: interval,
		},
	}
}

// walk simulates the orchestrator loop over [start, end] and returns the due
// dates found.
func walk(tpl models.TripTemplate, start, end time.Time) []time.Time {
	var due []time.Time
	cur := DateOnly(start)
	for i := 0; !cur.After(end) && i < 1000; i++ {
		if IsDue(tpl, cur) {
			due = append(due, cur)
		}
		cur = NextCandidate(tpl, cur)
	}
	return due
}

func TestDailyIntervalOne(t *testing.T) {
	tpl := dailyTemplate(1, date(2025, 1, 1), date(2025, 1, 10))
	due := walk(tpl, date(2025, 1, 1), date(2025, 1, 10))
	if len(due) != 10 {
		t.Fatalf("expected 10 due dates, got %d", len(due))
	}
}

func TestDailyIntervalThree(t *testing.T) {
	tpl := dailyTemplate(3, date(2025, 1, 1), date(2025, 1, 10))
	due := walk(tpl, date(2025, 1, 1), date(2025, 1, 10))
	want := []time.Time{date(2025, 1, 1), date(2025, 1, 4), date(2025, 1, 7), date(2025, 1, 10)}
	if len(due) != len(want) {
		t.Fatalf("expected %d due dates, got %d: %v", len(want), len(due), due)
	}
	for i := range want {
		if !due[i].Equal(want[i]) {
			t.Fatalf("due[%d] = %v, want %v", i, due[i], want[i])
		}
	}
}

func TestDailyIntervalAcrossSpringForward(t *testing.T) {
	// 2025-03-09 is the US spring-forward: a 23-hour day must still count as
	// one full day of offset from the anchor.
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	day := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 0, 0, 0, 0, loc)
	}

	tpl := dailyTemplate(3, day(2025, 3, 1), day(2025, 3, 31))
	if !IsDue(tpl, day(2025, 3, 13)) {
		t.Fatal("2025-03-13 is 12 days from the anchor, 12 %% 3 == 0, must be due")
	}

	due := walk(tpl, day(2025, 3, 1), day(2025, 3, 31))
	if len(due) != 11 {
		t.Fatalf("expected 11 due dates in March, got %d: %v", len(due), due)
	}
	for _, d := range due {
		if got := daysBetween(day(2025, 3, 1), d); got%3 != 0 {
			t.Fatalf("due date %v sits at offset %d, not a multiple of 3", d, got)
		}
	}
}

func TestDailyValidityWindowBounds(t *testing.T) {
	tpl := dailyTemplate(1, date(2025, 1, 5), date(2025, 1, 7))
	if IsDue(tpl, date(2025, 1, 4)) {
		t.Fatal("date before valid_from must not be due")
	}
	if !IsDue(tpl, date(2025, 1, 5)) {
		t.Fatal("valid_from itself must be due")
	}
	if IsDue(tpl, date(2025, 1, 8)) {
		t.Fatal("date after valid_until must not be due")
	}
}

func TestWeeklyMondayWednesday(t *testing.T) {
	// 2025-01-06 is a Monday.
	tpl := models.TripTemplate{
		ID:        2,
		ValidFrom: date(2025, 1, 6),
		Active:    true,
		Pattern: &models.RecurrencePattern{
			Type:     models.RecurrenceWeekly,
			Interval: 1,
			DaysOfWeek: map[time.Weekday]struct{}{
				time.Monday:    {},
				time.Wednesday: {},
			},
		},
	}
	due := walk(tpl, date(2025, 1, 6), date(2025, 1, 19))
	if len(due) != 4 {
		t.Fatalf("expected 4 due dates over 14 days, got %d: %v", len(due), due)
	}
	for _, d := range due {
		if wd := d.Weekday(); wd != time.Monday && wd != time.Wednesday {
			t.Fatalf("due date %v falls on %v", d, wd)
		}
	}
}

func TestWeeklyIgnoresInterval(t *testing.T) {
	// Interval 2 must not skip weeks; the stepping stays one day at a time.
	tpl := models.TripTemplate{
		ID:        3,
		ValidFrom: date(2025, 1, 6),
		Active:    true,
		Pattern: &models.RecurrencePattern{
			Type:       models.RecurrenceWeekly,
			Interval:   2,
			DaysOfWeek: map[time.Weekday]struct{}{time.Monday: {}},
		},
	}
	due := walk(tpl, date(2025, 1, 6), date(2025, 1, 26))
	if len(due) != 3 {
		t.Fatalf("expected Mondays of 3 consecutive weeks, got %d: %v", len(due), due)
	}
}

func TestExceptionDateSkipped(t *testing.T) {
	tpl := dailyTemplate(1, date(2025, 1, 1), date(2025, 1, 10))
	tpl.Pattern.Exceptions = map[string]struct{}{"2025-01-05": {}}
	due := walk(tpl, date(2025, 1, 1), date(2025, 1, 10))
	if len(due) != 9 {
		t.Fatalf("expected 9 due dates with one exception, got %d", len(due))
	}
	for _, d := range due {
		if d.Equal(date(2025, 1, 5)) {
			t.Fatal("exception date 2025-01-05 must never be due")
		}
	}
}

func TestNoneSingleInstance(t *testing.T) {
	tpl := models.TripTemplate{
		ID:        4,
		ValidFrom: date(2025, 2, 14),
		Active:    true,
	}
	due := walk(tpl, date(2025, 2, 1), date(2025, 2, 28))
	if len(due) != 1 || !due[0].Equal(date(2025, 2, 14)) {
		t.Fatalf("none pattern should yield exactly the departure date, got %v", due)
	}
}

func TestMonthlyDayOfMonth(t *testing.T) {
	tpl := models.TripTemplate{
		ID:        5,
		ValidFrom: date(2025, 1, 15),
		Active:    true,
		Pattern: &models.RecurrencePattern{
			Type:     models.RecurrenceMonthly,
			Interval: 1,
		},
	}
	due := walk(tpl, date(2025, 1, 15), date(2025, 4, 30))
	want := []time.Time{date(2025, 1, 15), date(2025, 2, 15), date(2025, 3, 15), date(2025, 4, 15)}
	if len(due) != len(want) {
		t.Fatalf("expected %d monthly dates, got %d: %v", len(want), len(due), due)
	}
	for i := range want {
		if !due[i].Equal(want[i]) {
			t.Fatalf("due[%d] = %v, want %v", i, due[i], want[i])
		}
	}
}

func TestMonthlyIntervalSkipsMonths(t *testing.T) {
	tpl := models.TripTemplate{
		ID:        6,
		ValidFrom: date(2025, 1, 10),
		Active:    true,
		Pattern: &models.RecurrencePattern{
			Type:     models.RecurrenceMonthly,
			Interval: 2,
		},
	}
	due := walk(tpl, date(2025, 1, 10), date(2025, 6, 30))
	want := []time.Time{date(2025, 1, 10), date(2025, 3, 10), date(2025, 5, 10)}
	if len(due) != len(want) {
		t.Fatalf("expected %d dates, got %d: %v", len(want), len(due), due)
	}
}

func TestPatternEndDateBounds(t *testing.T) {
	end := date(2025, 1, 5)
	tpl := dailyTemplate(1, date(2025, 1, 1), time.Time{})
	tpl.Pattern.EndDate = &end
	due := walk(tpl, date(2025, 1, 1), date(2025, 1, 31))
	if len(due) != 5 {
		t.Fatalf("pattern end_date should cap the series at 5, got %d", len(due))
	}
}

func TestValidatePattern(t *testing.T) {
	cases := []struct {
		name    string
		pattern *models.RecurrencePattern
		wantErr bool
	}{
		{"nil pattern is none", nil, false},
		{"daily ok", &models.RecurrencePattern{Type: models.RecurrenceDaily}, false},
		{"weekly without days", &models.RecurrencePattern{Type: models.RecurrenceWeekly}, true},
		{"weekly with days", &models.RecurrencePattern{
			Type:       models.RecurrenceWeekly,
			DaysOfWeek: map[time.Weekday]struct{}{time.Friday: {}},
		}, false},
		{"unknown type", &models.RecurrencePattern{Type: "fortnightly"}, true},
	}
	for _, tc := range cases {
		tpl := models.TripTemplate{ValidFrom: date(2025, 1, 1), Pattern: tc.pattern}
		err := ValidatePattern(tpl)
		if tc.wantErr && err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
		if !tc.wantErr && err != nil {
			t.Fatalf("%s: unexpected error %v", tc.name, err)
		}
	}
}

func TestUnknownTypeNeverDue(t *testing.T) {
	tpl := models.TripTemplate{
		ValidFrom: date(2025, 1, 1),
		Pattern:   &models.RecurrencePattern{Type: "lunar"},
	}
	if IsDue(tpl, date(2025, 1, 1)) {
		t.Fatal("unknown recurrence type must never be due")
	}
}
