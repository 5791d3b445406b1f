package services

import (
	"testing"
	"time"

	"tripcore/internal/domain/models"
	"tripcore/internal/utils"

	"github.com/DATA-DOG/go-sqlmock"
)

func templateRows(validFrom time.Time) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "route_from", "route_to", "departure_time", "arrival_time", "vehicle_id",
		"valid_from", "valid_until", "active",
		"recurrence_type", "recurrence_interval", "days_of_week", "recurrence_end_date", "exception_dates",
		"created_at", "updated_at",
	}).AddRow(1, "Jakarta", "Bandung", "08:00:00", "12:00:00", 1,
		validFrom, nil, true,
		"none", 1, nil, nil, nil,
		now, now)
}

func seatRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "vehicle_id", "seat_number", "seat_type", "row_num", "position", "active"}).
		AddRow(11, 1, "1A", "regular", 1, 1, true).
		AddRow(12, 1, "1B", "regular", 1, 2, true)
}

func vehicleRow(capacity int) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "vehicle_code", "name", "plate_number", "capacity", "active"}).
		AddRow(1, "BUS-01", "Hiace A", "B 1234 CD", capacity, true)
}

// A second run over the same window must create nothing: the unique
// (template_id, actual_departure_time) key turns the re-insert into a no-op.
func TestGenerateForPeriodIdempotent(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.Local)
	end := start.AddDate(0, 0, 2)

	// First run: one due instance, materialized with both seats.
	mock.ExpectQuery("FROM trip_templates").WillReturnRows(templateRows(start))
	mock.ExpectQuery("FROM vehicles WHERE id").WithArgs(int64(1)).WillReturnRows(vehicleRow(2))
	mock.ExpectQuery("FROM seats").WithArgs(int64(1)).WillReturnRows(seatRows())
	mock.ExpectBegin()
	mock.ExpectExec("INSERT IGNORE INTO generated_trips").
		WillReturnResult(sqlmock.NewResult(100, 1))
	mock.ExpectExec("INSERT IGNORE INTO seat_allocations").
		WithArgs(int64(100), int64(11), "available").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT IGNORE INTO seat_allocations").
		WithArgs(int64(100), int64(12), "available").
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectExec("UPDATE generated_trips SET available_seats").
		WithArgs(2, int64(100)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectExec("INSERT INTO generation_logs").
		WillReturnResult(sqlmock.NewResult(1, 1))

	svc := GenerationService{DB: db}
	created, err := svc.GenerateForPeriod(start, end, 1)
	if err != nil {
		t.Fatalf("first run error: %v", err)
	}
	if created != 1 {
		t.Fatalf("first run created %d, want 1", created)
	}

	// Second run: INSERT IGNORE reports zero affected rows.
	mock.ExpectQuery("FROM trip_templates").WillReturnRows(templateRows(start))
	mock.ExpectQuery("FROM vehicles WHERE id").WithArgs(int64(1)).WillReturnRows(vehicleRow(2))
	mock.ExpectQuery("FROM seats").WithArgs(int64(1)).WillReturnRows(seatRows())
	mock.ExpectBegin()
	mock.ExpectExec("INSERT IGNORE INTO generated_trips").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()
	mock.ExpectExec("INSERT INTO generation_logs").
		WillReturnResult(sqlmock.NewResult(2, 1))

	created, err = svc.GenerateForPeriod(start, end, 1)
	if err != nil {
		t.Fatalf("second run error: %v", err)
	}
	if created != 0 {
		t.Fatalf("second run created %d, want 0", created)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

// An arrival time-of-day earlier than the departure means the bus arrives the
// next calendar day.
func TestMaterializeOvernightArrival(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	day := time.Date(2025, 6, 1, 0, 0, 0, 0, time.Local)
	departure := time.Date(2025, 6, 1, 22, 0, 0, 0, time.Local)
	arrival := time.Date(2025, 6, 2, 4, 0, 0, 0, time.Local)

	mock.ExpectQuery("FROM vehicles WHERE id").WithArgs(int64(1)).WillReturnRows(vehicleRow(2))
	mock.ExpectQuery("FROM seats").WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "vehicle_id", "seat_number", "seat_type", "row_num", "position", "active"}))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT IGNORE INTO generated_trips").
		WithArgs(int64(1), int64(1), departure, departure, arrival, 0, "scheduled").
		WillReturnResult(sqlmock.NewResult(100, 1))
	mock.ExpectExec("UPDATE generated_trips SET available_seats").
		WithArgs(0, int64(100)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	depOffset, err := utils.ParseTimeOfDay("22:00:00")
	if err != nil {
		t.Fatalf("parse departure: %v", err)
	}
	arrOffset, err := utils.ParseTimeOfDay("04:00:00")
	if err != nil {
		t.Fatalf("parse arrival: %v", err)
	}

	svc := GenerationService{DB: db}
	inserted, err := svc.materialize(models.TripTemplate{ID: 1, VehicleID: 1}, day, depOffset, arrOffset)
	if err != nil {
		t.Fatalf("materialize error: %v", err)
	}
	if !inserted {
		t.Fatal("expected the trip to be inserted")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

// A template whose candidate walk never terminates inside the window must be
// abandoned at the iteration cap without taking the rest of the batch down.
func TestGenerateForPeriodIterationBound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	now := time.Now()
	start := time.Date(2025, 2, 1, 0, 0, 0, 0, time.Local)
	end := start.AddDate(110, 0, 0)

	// Template 1: monthly, anchored on the 31st; every candidate in the walk
	// lands on the 1st, so it is never due and the walk only stops at the cap.
	// Template 2: a one-off that materializes normally after template 1 is
	// abandoned.
	tpls := sqlmock.NewRows([]string{
		"id", "route_from", "route_to", "departure_time", "arrival_time", "vehicle_id",
		"valid_from", "valid_until", "active",
		"recurrence_type", "recurrence_interval", "days_of_week", "recurrence_end_date", "exception_dates",
		"created_at", "updated_at",
	}).AddRow(1, "Jakarta", "Bandung", "08:00:00", "12:00:00", 1,
		time.Date(2025, 1, 31, 0, 0, 0, 0, time.Local), nil, true,
		"monthly", 1, nil, nil, nil, now, now).
		AddRow(2, "Jakarta", "Bandung", "08:00:00", "12:00:00", 1,
			start, nil, true,
			"none", 1, nil, nil, nil, now, now)

	mock.ExpectQuery("FROM trip_templates").WillReturnRows(tpls)
	mock.ExpectQuery("FROM vehicles WHERE id").WithArgs(int64(1)).WillReturnRows(vehicleRow(2))
	mock.ExpectQuery("FROM seats").WithArgs(int64(1)).WillReturnRows(seatRows())
	mock.ExpectBegin()
	mock.ExpectExec("INSERT IGNORE INTO generated_trips").
		WillReturnResult(sqlmock.NewResult(200, 1))
	mock.ExpectExec("INSERT IGNORE INTO seat_allocations").
		WithArgs(int64(200), int64(11), "available").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT IGNORE INTO seat_allocations").
		WithArgs(int64(200), int64(12), "available").
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectExec("UPDATE generated_trips SET available_seats").
		WithArgs(2, int64(200)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectExec("INSERT INTO generation_logs").
		WillReturnResult(sqlmock.NewResult(1, 1))

	svc := GenerationService{DB: db}
	created, err := svc.GenerateForPeriod(start, end, 1)
	if err != nil {
		t.Fatalf("run error: %v", err)
	}
	if created != 1 {
		t.Fatalf("created %d, want 1 (capped template contributes nothing)", created)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGenerateForPeriodRejectsInvertedWindow(t *testing.T) {
	svc := GenerationService{}
	start := time.Date(2025, 6, 10, 0, 0, 0, 0, time.Local)
	if _, err := svc.GenerateForPeriod(start, start.AddDate(0, 0, -1), 1); err == nil {
		t.Fatal("expected validation error for end before start")
	}
}

func TestValidTripTransition(t *testing.T) {
	cases := []struct {
		from, to models.TripStatus
		want     bool
	}{
		{models.TripStatusScheduled, models.TripStatusBoarding, true},
		{models.TripStatusScheduled, models.TripStatusDeparted, true},
		{models.TripStatusScheduled, models.TripStatusArrived, false},
		{models.TripStatusBoarding, models.TripStatusDeparted, true},
		{models.TripStatusBoarding, models.TripStatusArrived, false},
		{models.TripStatusDeparted, models.TripStatusArrived, true},
		{models.TripStatusScheduled, models.TripStatusCancelled, true},
		{models.TripStatusBoarding, models.TripStatusCancelled, true},
		{models.TripStatusDeparted, models.TripStatusCancelled, true},
		{models.TripStatusArrived, models.TripStatusCancelled, false},
		{models.TripStatusCancelled, models.TripStatusScheduled, false},
		{models.TripStatusArrived, models.TripStatusDeparted, false},
		{models.TripStatusScheduled, models.TripStatusScheduled, false},
	}
	for _, c := range cases {
		if got := validTripTransition(c.from, c.to); got != c.want {
			t.Errorf("validTripTransition(%s, %s) = %v, want %v", c.from, c.to, got, c.want)
		}
	}
}
