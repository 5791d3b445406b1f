package services

import (
	"database/sql"
	"fmt"
	"time"

	intconfig "tripcore/internal/config"
	"tripcore/internal/domain"
	"tripcore/internal/domain/models"
	"tripcore/internal/repositories"
	"tripcore/internal/utils"
)

// seatsPerRow fixes the 2+2 shuttle layout used when provisioning seats from
// a bare capacity number.
const seatsPerRow = 4

var seatColumns = [seatsPerRow]string{"A", "B", "C", "D"}

// SeatService provisions the physical seat rows of a vehicle and handles
// administrative holds on per-trip allocations.
type SeatService struct {
	SeatRepo    repositories.SeatRepository
	VehicleRepo repositories.VehicleRepository
	AllocRepo   repositories.AllocationRepository
	TripRepo    repositories.TripRepository
	DB          *sql.DB
	RequestID   string
}

func (s SeatService) db() *sql.DB {
	if s.DB != nil {
		return s.DB
	}
	return intconfig.DB
}

func (s SeatService) seats() repositories.SeatRepository {
	if s.SeatRepo.DB != nil {
		return s.SeatRepo
	}
	return repositories.SeatRepository{DB: s.db()}
}

func (s SeatService) vehicles() repositories.VehicleRepository {
	if s.VehicleRepo.DB != nil {
		return s.VehicleRepo
	}
	return repositories.VehicleRepository{DB: s.db()}
}

func (s SeatService) allocations() repositories.AllocationRepository {
	if s.AllocRepo.DB != nil {
		return s.AllocRepo
	}
	return repositories.AllocationRepository{DB: s.db()}
}

func (s SeatService) trips() repositories.TripRepository {
	if s.TripRepo.DB != nil {
		return s.TripRepo
	}
	return repositories.TripRepository{DB: s.db()}
}

// ProvisionForVehicle creates seat rows 1A..nD until the vehicle capacity is
// covered. Idempotent: seats that already exist are left alone.
func (s SeatService) ProvisionForVehicle(vehicleID int64) (int, error) {
	vehicle, err := s.vehicles().GetByID(vehicleID)
	if err != nil {
		return 0, err
	}
	if vehicle.Capacity <= 0 {
		return 0, domain.ValidationError{Field: "capacity", Msg: "kapasitas kendaraan belum diisi"}
	}

	seats := make([]models.Seat, 0, vehicle.Capacity)
	for i := 0; i < vehicle.Capacity; i++ {
		row := i/seatsPerRow + 1
		col := i % seatsPerRow
		seats = append(seats, models.Seat{
			VehicleID:  vehicleID,
			SeatNumber: fmt.Sprintf("%d%s", row, seatColumns[col]),
			SeatType:   "standard",
			RowNumber:  row,
			Position:   col + 1,
			Active:     true,
		})
	}

	created, err := s.seats().InsertIgnoreBatch(seats)
	if err != nil {
		return created, domain.InternalError{Msg: "gagal provisioning kursi", Err: err}
	}
	utils.LogEvent(s.RequestID, "seat", "provision",
		fmt.Sprintf("vehicle_id=%d capacity=%d created=%d", vehicleID, vehicle.Capacity, created))
	return created, nil
}

// BlockAllocation puts an administrative hold on one per-trip seat. Seats with
// an active claim cannot be blocked from under the passenger. blocked_until is
// informational; expiring it automatically is external housekeeping.
func (s SeatService) BlockAllocation(allocID int64, reason string, until *time.Time) error {
	tx, err := s.db().Begin()
	if err != nil {
		return domain.InternalError{Msg: "gagal mulai transaksi", Err: err}
	}
	defer tx.Rollback()

	alloc, err := s.allocations().GetByID(tx, allocID)
	if err != nil {
		return err
	}
	switch alloc.Status {
	case models.AllocationReserved, models.AllocationBooked:
		return domain.ConflictError{Resource: "seat", Msg: "kursi sedang dipakai booking aktif"}
	case models.AllocationBlocked:
		return nil
	}

	if err := s.allocations().SetBlocked(tx, allocID, reason, until); err != nil {
		return domain.InternalError{Msg: "gagal blokir kursi", Err: err}
	}
	if err := s.trips().RecountAvailable(tx, alloc.GeneratedTripID); err != nil {
		return domain.InternalError{Msg: "gagal hitung ulang available_seats", Err: err}
	}
	if err := tx.Commit(); err != nil {
		return domain.InternalError{Msg: "gagal commit blokir", Err: err}
	}
	utils.LogEvent(s.RequestID, "seat", "block",
		fmt.Sprintf("allocation_id=%d reason=%s", allocID, reason))
	return nil
}

// UnblockAllocation releases an administrative hold; a no-op when the
// allocation is not blocked.
func (s SeatService) UnblockAllocation(allocID int64) error {
	tx, err := s.db().Begin()
	if err != nil {
		return domain.InternalError{Msg: "gagal mulai transaksi", Err: err}
	}
	defer tx.Rollback()

	alloc, err := s.allocations().GetByID(tx, allocID)
	if err != nil {
		return err
	}
	if err := s.allocations().ClearBlock(tx, allocID); err != nil {
		return domain.InternalError{Msg: "gagal buka blokir kursi", Err: err}
	}
	if err := s.trips().RecountAvailable(tx, alloc.GeneratedTripID); err != nil {
		return domain.InternalError{Msg: "gagal hitung ulang available_seats", Err: err}
	}
	if err := tx.Commit(); err != nil {
		return domain.InternalError{Msg: "gagal commit buka blokir", Err: err}
	}
	utils.LogEvent(s.RequestID, "seat", "unblock", fmt.Sprintf("allocation_id=%d", allocID))
	return nil
}

// SeatMap returns the per-trip seat map in boarding order.
func (s SeatService) SeatMap(tripID int64) ([]models.SeatMapEntry, error) {
	if _, err := s.trips().GetByID(s.db(), tripID); err != nil {
		return nil, err
	}
	return s.allocations().ListSeatMap(tripID)
}
