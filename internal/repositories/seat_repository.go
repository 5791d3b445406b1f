package repositories

import (
	"database/sql"

	"tripcore/internal/domain"
	"tripcore/internal/domain/models"
)

// SeatRepository owns physical seats per vehicle.
type SeatRepository struct {
	DB *sql.DB
}

// ListActiveByVehicle returns the seats eligible for allocation, in boarding
// order (row, then position within the row).
func (r SeatRepository) ListActiveByVehicle(vehicleID int64) ([]models.Seat, error) {
	rows, err := r.DB.Query(`
		SELECT id, vehicle_id, seat_number, seat_type, row_num, position, active
		FROM seats
		WHERE vehicle_id = ? AND active = 1
		ORDER BY row_num, position`, vehicleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Seat
	for rows.Next() {
		var s models.Seat
		if err := rows.Scan(&s.ID, &s.VehicleID, &s.SeatNumber, &s.SeatType, &s.RowNumber, &s.Position, &s.Active); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r SeatRepository) CountByVehicle(vehicleID int64) (int, error) {
	var n int
	err := r.DB.QueryRow(`SELECT COUNT(*) FROM seats WHERE vehicle_id = ?`, vehicleID).Scan(&n)
	return n, err
}

// InsertIgnoreBatch provisions seat rows; (vehicle_id, seat_number) is unique
// so re-provisioning the same vehicle is a no-op per seat. Returns the number
// of rows actually created.
func (r SeatRepository) InsertIgnoreBatch(seats []models.Seat) (int, error) {
	created := 0
	for _, s := range seats {
		res, err := r.DB.Exec(`
			INSERT IGNORE INTO seats (vehicle_id, seat_number, seat_type, row_num, position, active)
			VALUES (?,?,?,?,?,?)`,
			s.VehicleID, s.SeatNumber, s.SeatType, s.RowNumber, s.Position, s.Active)
		if err != nil {
			return created, err
		}
		if n, _ := res.RowsAffected(); n > 0 {
			created++
		}
	}
	return created, nil
}

// VehicleRepository reads/writes vehicles.
type VehicleRepository struct {
	DB *sql.DB
}

func (r VehicleRepository) GetByID(id int64) (models.Vehicle, error) {
	var v models.Vehicle
	err := r.DB.QueryRow(`
		SELECT id, vehicle_code, name, plate_number, capacity, active
		FROM vehicles WHERE id = ?`, id).Scan(
		&v.ID, &v.VehicleCode, &v.Name, &v.PlateNumber, &v.Capacity, &v.Active)
	if err == sql.ErrNoRows {
		return v, domain.NotFoundError{Resource: "vehicle", Err: err}
	}
	return v, err
}

func (r VehicleRepository) Create(v models.Vehicle) (int64, error) {
	res, err := r.DB.Exec(`
		INSERT INTO vehicles (vehicle_code, name, plate_number, capacity, active)
		VALUES (?,?,?,?,1)`,
		v.VehicleCode, v.Name, v.PlateNumber, v.Capacity)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}
