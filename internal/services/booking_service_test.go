package services

import (
	"testing"
	"time"

	"tripcore/internal/domain"
	"tripcore/internal/domain/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
)

func TestAllocationStatusFor(t *testing.T) {
	cases := []struct {
		booking models.BookingStatus
		want    models.AllocationStatus
		ok      bool
	}{
		{models.BookingPending, models.AllocationReserved, true},
		{models.BookingConfirmed, models.AllocationBooked, true},
		{models.BookingCancelled, models.AllocationAvailable, true},
		{models.BookingCompleted, "", false},
		{models.BookingNoShow, "", false},
	}
	for _, c := range cases {
		got, ok := AllocationStatusFor(c.booking)
		if got != c.want || ok != c.ok {
			t.Errorf("AllocationStatusFor(%s) = (%s, %v), want (%s, %v)", c.booking, got, ok, c.want, c.ok)
		}
	}
}

func TestValidBookingTransition(t *testing.T) {
	allowed := map[[2]models.BookingStatus]bool{
		{models.BookingPending, models.BookingConfirmed}:   true,
		{models.BookingPending, models.BookingCancelled}:   true,
		{models.BookingConfirmed, models.BookingCancelled}: true,
		{models.BookingConfirmed, models.BookingCompleted}: true,
		{models.BookingConfirmed, models.BookingNoShow}:    true,
		{models.BookingCancelled, models.BookingPending}:   true,
		{models.BookingCancelled, models.BookingConfirmed}: true,
	}

	all := []models.BookingStatus{
		models.BookingPending, models.BookingConfirmed, models.BookingCancelled,
		models.BookingCompleted, models.BookingNoShow,
	}
	for _, from := range all {
		for _, to := range all {
			want := allowed[[2]models.BookingStatus{from, to}]
			if got := ValidBookingTransition(from, to); got != want {
				t.Errorf("ValidBookingTransition(%s, %s) = %v, want %v", from, to, got, want)
			}
		}
	}
}

func allocationRow(id, tripID, seatID int64, status models.AllocationStatus) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "generated_trip_id", "seat_id", "status", "price_adjustment",
		"blocked_reason", "blocked_until", "created_at", "updated_at",
	}).AddRow(id, tripID, seatID, string(status), 0, nil, nil, now, now)
}

func tripRow(id int64, status models.TripStatus) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "template_id", "vehicle_id", "original_departure_time", "actual_departure_time",
		"actual_arrival_time", "available_seats", "status", "created_at", "updated_at",
	}).AddRow(id, 1, 1, now, now, now, 10, string(status), now, now)
}

func TestBookingCreateClaimsSeat(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("FROM seat_allocations WHERE id").WithArgs(int64(5)).
		WillReturnRows(allocationRow(5, 10, 3, models.AllocationAvailable))
	mock.ExpectQuery("FROM generated_trips WHERE id").WithArgs(int64(10)).
		WillReturnRows(tripRow(10, models.TripStatusScheduled))
	mock.ExpectExec("INSERT INTO bookings").
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectExec("UPDATE seat_allocations SET status").
		WithArgs(string(models.AllocationReserved), int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE generated_trips").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	svc := BookingService{DB: db}
	booking, err := svc.Create(models.BookingInput{
		SeatAllocationID: 5,
		CustomerName:     "Budi",
		CustomerPhone:    "0812",
		TotalPrice:       150000,
	})
	if err != nil {
		t.Fatalf("create error: %v", err)
	}
	if booking.ID != 7 {
		t.Fatalf("booking id = %d, want 7", booking.ID)
	}
	if booking.Status != models.BookingPending {
		t.Fatalf("booking status = %s, want pending", booking.Status)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestBookingCreateSeatTakenConflict(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("FROM seat_allocations WHERE id").WithArgs(int64(5)).
		WillReturnRows(allocationRow(5, 10, 3, models.AllocationReserved))
	mock.ExpectQuery("FROM generated_trips WHERE id").WithArgs(int64(10)).
		WillReturnRows(tripRow(10, models.TripStatusScheduled))
	mock.ExpectExec("INSERT INTO bookings").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry '5' for key 'uq_bookings_active_allocation'"})
	mock.ExpectRollback()

	svc := BookingService{DB: db}
	_, err = svc.Create(models.BookingInput{
		SeatAllocationID: 5,
		CustomerName:     "Sari",
	})
	if !domain.IsConflict(err) {
		t.Fatalf("expected ConflictError, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestBookingCreateBlockedSeatRejected(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("FROM seat_allocations WHERE id").WithArgs(int64(9)).
		WillReturnRows(allocationRow(9, 10, 4, models.AllocationBlocked))
	mock.ExpectRollback()

	svc := BookingService{DB: db}
	_, err = svc.Create(models.BookingInput{
		SeatAllocationID: 9,
		CustomerName:     "Sari",
	})
	if !domain.IsConflict(err) {
		t.Fatalf("expected ConflictError for blocked seat, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestBookingCreateRejectsNonAcceptingTrip(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	for _, status := range []models.TripStatus{
		models.TripStatusCancelled, models.TripStatusDeparted, models.TripStatusArrived,
	} {
		mock.ExpectBegin()
		mock.ExpectQuery("FROM seat_allocations WHERE id").WithArgs(int64(5)).
			WillReturnRows(allocationRow(5, 10, 3, models.AllocationAvailable))
		mock.ExpectQuery("FROM generated_trips WHERE id").WithArgs(int64(10)).
			WillReturnRows(tripRow(10, status))
		mock.ExpectRollback()

		svc := BookingService{DB: db}
		_, err := svc.Create(models.BookingInput{
			SeatAllocationID: 5,
			CustomerName:     "Sari",
		})
		if !domain.IsConflict(err) {
			t.Fatalf("trip status %s: expected ConflictError, got %v", status, err)
		}
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestBookingUpdateStatusRejectsInvalidTransition(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery("FROM bookings WHERE id").WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "seat_allocation_id", "customer_name", "customer_phone",
			"status", "payment_status", "total_price", "created_at", "updated_at",
		}).AddRow(7, 5, "Budi", "0812", string(models.BookingCompleted), "paid", 150000, now, now))
	mock.ExpectRollback()

	svc := BookingService{DB: db}
	_, err = svc.UpdateStatus(7, models.BookingCancelled)
	if !domain.IsValidation(err) {
		t.Fatalf("expected ValidationError for completed → cancelled, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestBookingCancelFreesSeat(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery("FROM bookings WHERE id").WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "seat_allocation_id", "customer_name", "customer_phone",
			"status", "payment_status", "total_price", "created_at", "updated_at",
		}).AddRow(7, 5, "Budi", "0812", string(models.BookingConfirmed), "paid", 150000, now, now))
	mock.ExpectQuery("FROM seat_allocations WHERE id").WithArgs(int64(5)).
		WillReturnRows(allocationRow(5, 10, 3, models.AllocationBooked))
	mock.ExpectExec("UPDATE bookings SET status").
		WithArgs(string(models.BookingCancelled), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE seat_allocations SET status").
		WithArgs(string(models.AllocationAvailable), int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE generated_trips").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	svc := BookingService{DB: db}
	booking, err := svc.UpdateStatus(7, models.BookingCancelled)
	if err != nil {
		t.Fatalf("update error: %v", err)
	}
	if booking.Status != models.BookingCancelled {
		t.Fatalf("booking status = %s, want cancelled", booking.Status)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
