package repositories

import (
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestDeleteScheduledInWindowSingleTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.Local)
	end := start.AddDate(0, 0, 6)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE sa FROM seat_allocations sa").
		WillReturnResult(sqlmock.NewResult(0, 8))
	mock.ExpectExec("DELETE FROM generated_trips").
		WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectCommit()

	repo := TripRepository{DB: db}
	n, err := repo.DeleteScheduledInWindow(start, end)
	if err != nil {
		t.Fatalf("delete error: %v", err)
	}
	if n != 4 {
		t.Fatalf("deleted %d trips, want 4", n)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

// When the trip delete fails the allocation delete must roll back with it,
// otherwise a surviving trip keeps a stale available_seats over an emptied
// inventory.
func TestDeleteScheduledInWindowRollsBackOnFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.Local)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE sa FROM seat_allocations sa").
		WillReturnResult(sqlmock.NewResult(0, 8))
	mock.ExpectExec("DELETE FROM generated_trips").
		WillReturnError(errors.New("lock wait timeout exceeded"))
	mock.ExpectRollback()

	repo := TripRepository{DB: db}
	if _, err := repo.DeleteScheduledInWindow(start, start.AddDate(0, 0, 6)); err == nil {
		t.Fatal("expected the failed trip delete to surface")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDeleteScheduledBeforeSingleTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	cutoff := time.Date(2025, 5, 1, 0, 0, 0, 0, time.Local)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE sa FROM seat_allocations sa").
		WithArgs(cutoff).
		WillReturnResult(sqlmock.NewResult(0, 6))
	mock.ExpectExec("DELETE FROM generated_trips").
		WithArgs(cutoff).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	repo := TripRepository{DB: db}
	n, err := repo.DeleteScheduledBefore(cutoff)
	if err != nil {
		t.Fatalf("sweep error: %v", err)
	}
	if n != 3 {
		t.Fatalf("deleted %d trips, want 3", n)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
