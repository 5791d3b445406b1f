package services

import (
	"database/sql"
	"fmt"
	"strings"

	intconfig "tripcore/internal/config"
	intdb "tripcore/internal/db"
	"tripcore/internal/domain"
	"tripcore/internal/domain/models"
	"tripcore/internal/repositories"
	"tripcore/internal/utils"
)

// BookingService applies booking lifecycle transitions and keeps the seat
// allocation status plus the instance's available_seats counter consistent
// with them, all inside one transaction per change.
//
// The no-double-booking guarantee itself is not enforced here: the unique
// index over active bookings per allocation rejects the second claim at the
// storage layer, and this service translates that rejection into a
// ConflictError for the caller.
type BookingService struct {
	BookingRepo repositories.BookingRepository
	AllocRepo   repositories.AllocationRepository
	TripRepo    repositories.TripRepository
	DB          *sql.DB
	RequestID   string
}

func (s BookingService) db() *sql.DB {
	if s.DB != nil {
		return s.DB
	}
	return intconfig.DB
}

func (s BookingService) bookings() repositories.BookingRepository {
	if s.BookingRepo.DB != nil {
		return s.BookingRepo
	}
	return repositories.BookingRepository{DB: s.db()}
}

func (s BookingService) allocations() repositories.AllocationRepository {
	if s.AllocRepo.DB != nil {
		return s.AllocRepo
	}
	return repositories.AllocationRepository{DB: s.db()}
}

func (s BookingService) trips() repositories.TripRepository {
	if s.TripRepo.DB != nil {
		return s.TripRepo
	}
	return repositories.TripRepository{DB: s.db()}
}

// Create inserts a booking with status pending (default) or confirmed and
// claims the seat allocation. A seat already claimed by another active
// booking yields a ConflictError, never a silent retry. Seats on trips that
// already left (or were cancelled) are rejected the same way.
func (s BookingService) Create(input models.BookingInput) (models.Booking, error) {
	if input.SeatAllocationID <= 0 {
		return models.Booking{}, domain.ValidationError{Field: "seat_allocation_id", Msg: "id tidak valid"}
	}
	name := strings.TrimSpace(input.CustomerName)
	if name == "" {
		return models.Booking{}, domain.ValidationError{Field: "customer_name", Msg: "nama wajib diisi"}
	}

	status := models.BookingStatus(strings.TrimSpace(input.Status))
	if status == "" {
		status = models.BookingPending
	}
	if !status.Active() {
		return models.Booking{}, domain.ValidationError{Field: "status", Msg: "booking baru harus pending atau confirmed"}
	}

	paymentStatus := strings.TrimSpace(input.PaymentStatus)
	if paymentStatus == "" {
		paymentStatus = "unpaid"
	}

	tx, err := s.db().Begin()
	if err != nil {
		return models.Booking{}, domain.InternalError{Msg: "gagal mulai transaksi", Err: err}
	}
	defer tx.Rollback()

	alloc, err := s.allocations().GetByID(tx, input.SeatAllocationID)
	if err != nil {
		return models.Booking{}, err
	}
	if alloc.Status == models.AllocationBlocked {
		return models.Booking{}, domain.ConflictError{Resource: "seat", Msg: "kursi sedang diblokir"}
	}

	trip, err := s.trips().GetByID(tx, alloc.GeneratedTripID)
	if err != nil {
		return models.Booking{}, err
	}
	if trip.Status != models.TripStatusScheduled && trip.Status != models.TripStatusBoarding {
		return models.Booking{}, domain.ConflictError{Resource: "trip", Msg: "trip sudah tidak menerima booking"}
	}

	booking := models.Booking{
		SeatAllocationID: alloc.ID,
		CustomerName:     name,
		CustomerPhone:    strings.TrimSpace(input.CustomerPhone),
		Status:           status,
		PaymentStatus:    paymentStatus,
		TotalPrice:       input.TotalPrice,
	}
	id, err := s.bookings().Insert(tx, booking)
	if err != nil {
		if intdb.IsDuplicate(err) {
			return models.Booking{}, domain.ConflictError{Resource: "seat", Msg: "kursi sudah terisi", Err: err}
		}
		return models.Booking{}, domain.InternalError{Msg: "gagal insert booking", Err: err}
	}
	booking.ID = id

	if err := s.applyAllocationStatus(tx, alloc.ID, alloc.GeneratedTripID, status); err != nil {
		return models.Booking{}, err
	}

	if err := tx.Commit(); err != nil {
		return models.Booking{}, domain.InternalError{Msg: "gagal commit booking", Err: err}
	}
	utils.LogEvent(s.RequestID, "booking", "create",
		fmt.Sprintf("booking_id=%d allocation_id=%d status=%s", id, alloc.ID, status))
	return booking, nil
}

// UpdateStatus transitions one booking and derives the allocation status. The
// reactivation paths (cancelled → pending/confirmed) re-claim the seat and can
// lose the race like a fresh create.
func (s BookingService) UpdateStatus(id int64, next models.BookingStatus) (models.Booking, error) {
	if !knownBookingStatus(next) {
		return models.Booking{}, domain.ValidationError{Field: "status", Msg: "status tidak dikenal: " + string(next)}
	}

	tx, err := s.db().Begin()
	if err != nil {
		return models.Booking{}, domain.InternalError{Msg: "gagal mulai transaksi", Err: err}
	}
	defer tx.Rollback()

	booking, err := s.bookings().GetByID(tx, id)
	if err != nil {
		return models.Booking{}, err
	}
	if !ValidBookingTransition(booking.Status, next) {
		return models.Booking{}, domain.ValidationError{
			Field: "status",
			Msg:   fmt.Sprintf("transisi %s → %s tidak diizinkan", booking.Status, next),
		}
	}

	alloc, err := s.allocations().GetByID(tx, booking.SeatAllocationID)
	if err != nil {
		return models.Booking{}, err
	}

	if err := s.bookings().UpdateStatus(tx, id, next); err != nil {
		if intdb.IsDuplicate(err) {
			// Reactivation lost to another active booking on the same seat.
			return models.Booking{}, domain.ConflictError{Resource: "seat", Msg: "kursi sudah terisi", Err: err}
		}
		return models.Booking{}, domain.InternalError{Msg: "gagal update status booking", Err: err}
	}

	if err := s.applyAllocationStatus(tx, alloc.ID, alloc.GeneratedTripID, next); err != nil {
		return models.Booking{}, err
	}

	if err := tx.Commit(); err != nil {
		return models.Booking{}, domain.InternalError{Msg: "gagal commit status booking", Err: err}
	}
	utils.LogEvent(s.RequestID, "booking", "update_status",
		fmt.Sprintf("booking_id=%d %s→%s", id, booking.Status, next))

	booking.Status = next
	return booking, nil
}

// applyAllocationStatus writes the derived allocation status (when the
// transition prescribes one) and recomputes available_seats, inside the
// caller's transaction.
func (s BookingService) applyAllocationStatus(tx *sql.Tx, allocID, tripID int64, bookingStatus models.BookingStatus) error {
	if derived, ok := AllocationStatusFor(bookingStatus); ok {
		if err := s.allocations().UpdateStatus(tx, allocID, derived); err != nil {
			return domain.InternalError{Msg: "gagal update status alokasi", Err: err}
		}
	}
	if err := s.trips().RecountAvailable(tx, tripID); err != nil {
		return domain.InternalError{Msg: "gagal hitung ulang available_seats", Err: err}
	}
	return nil
}

// AllocationStatusFor maps a booking status to the allocation status it
// implies. completed and no_show leave the allocation untouched (the seat
// stays booked).
func AllocationStatusFor(status models.BookingStatus) (models.AllocationStatus, bool) {
	switch status {
	case models.BookingPending:
		return models.AllocationReserved, true
	case models.BookingConfirmed:
		return models.AllocationBooked, true
	case models.BookingCancelled:
		return models.AllocationAvailable, true
	default:
		return "", false
	}
}

// ValidBookingTransition encodes the lifecycle: pending → confirmed/cancelled,
// confirmed → cancelled/completed/no_show, cancelled → pending/confirmed
// (explicit reactivation). completed and no_show are terminal.
func ValidBookingTransition(from, to models.BookingStatus) bool {
	if from == to {
		return false
	}
	switch from {
	case models.BookingPending:
		return to == models.BookingConfirmed || to == models.BookingCancelled
	case models.BookingConfirmed:
		return to == models.BookingCancelled || to == models.BookingCompleted || to == models.BookingNoShow
	case models.BookingCancelled:
		return to == models.BookingPending || to == models.BookingConfirmed
	default:
		return false
	}
}

func knownBookingStatus(s models.BookingStatus) bool {
	switch s {
	case models.BookingPending, models.BookingConfirmed, models.BookingCancelled,
		models.BookingCompleted, models.BookingNoShow:
		return true
	default:
		return false
	}
}
