package repositories

import (
	"database/sql"
	"time"

	intdb "tripcore/internal/db"
	"tripcore/internal/domain"
	"tripcore/internal/domain/models"
)

// TripRepository owns generated_trips. Inserts are INSERT IGNORE against the
// (template_id, actual_departure_time) unique key, which is what makes
// generation re-runs no-ops.
type TripRepository struct {
	DB *sql.DB
}

// InsertIgnore writes one generated trip. Returns (0, false, nil) when the
// instance already exists.
func (r TripRepository) InsertIgnore(q intdb.Execer, trip models.GeneratedTrip) (int64, bool, error) {
	res, err := q.Exec(`
		INSERT IGNORE INTO generated_trips
			(template_id, vehicle_id, original_departure_time, actual_departure_time, actual_arrival_time, available_seats, status)
		VALUES (?,?,?,?,?,?,?)`,
		trip.TemplateID, trip.VehicleID,
		trip.OriginalDeparture, trip.ActualDeparture, trip.ActualArrival,
		trip.AvailableSeats, string(models.TripStatusScheduled))
	if err != nil {
		return 0, false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, false, err
	}
	if affected == 0 {
		return 0, false, nil
	}
	id, err := res.LastInsertId()
	return id, true, err
}

func (r TripRepository) GetByID(q intdb.Execer, id int64) (models.GeneratedTrip, error) {
	var t models.GeneratedTrip
	err := q.QueryRow(`
		SELECT id, template_id, vehicle_id, original_departure_time, actual_departure_time,
		       actual_arrival_time, available_seats, status, created_at, updated_at
		FROM generated_trips WHERE id = ?`, id).Scan(
		&t.ID, &t.TemplateID, &t.VehicleID, &t.OriginalDeparture, &t.ActualDeparture,
		&t.ActualArrival, &t.AvailableSeats, &t.Status, &t.CreatedAt, &t.UpdatedAt)
	if err == sql.ErrNoRows {
		return t, domain.NotFoundError{Resource: "generated trip", Err: err}
	}
	return t, err
}

// SetAvailableSeats writes the counter after provisioning.
func (r TripRepository) SetAvailableSeats(q intdb.Execer, id int64, n int) error {
	_, err := q.Exec(`UPDATE generated_trips SET available_seats = ? WHERE id = ?`, n, id)
	return err
}

// RecountAvailable recomputes the cached counter from the allocation rows.
// Always a COUNT, never an increment, so concurrent writers cannot drift it.
func (r TripRepository) RecountAvailable(q intdb.Execer, tripID int64) error {
	_, err := q.Exec(`
		UPDATE generated_trips
		SET available_seats = (
			SELECT COUNT(*) FROM seat_allocations
			WHERE generated_trip_id = ? AND status = 'available'
		)
		WHERE id = ?`, tripID, tripID)
	return err
}

func (r TripRepository) UpdateStatus(id int64, status models.TripStatus) error {
	res, err := r.DB.Exec(`UPDATE generated_trips SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.GetByID(r.DB, id); err != nil {
			return err
		}
	}
	return nil
}

// DeleteScheduledInWindow removes never-departed instances before a forced
// regeneration. Allocations go first to keep no orphans behind; one
// transaction covers both deletes so a failure cannot leave a trip standing
// with its inventory already gone.
func (r TripRepository) DeleteScheduledInWindow(start, end time.Time) (int64, error) {
	tx, err := r.DB.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`
		DELETE sa FROM seat_allocations sa
		JOIN generated_trips gt ON gt.id = sa.generated_trip_id
		WHERE gt.status = 'scheduled'
		  AND gt.actual_departure_time >= ?
		  AND gt.actual_departure_time < ?`,
		start, end.AddDate(0, 0, 1)); err != nil {
		return 0, err
	}
	res, err := tx.Exec(`
		DELETE FROM generated_trips
		WHERE status = 'scheduled'
		  AND actual_departure_time >= ?
		  AND actual_departure_time < ?`,
		start, end.AddDate(0, 0, 1))
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return n, tx.Commit()
}

// DeleteScheduledBefore is the retention sweep: stale instances that never
// left 'scheduled' and whose departure is older than cutoff. Same transaction
// shape as DeleteScheduledInWindow.
func (r TripRepository) DeleteScheduledBefore(cutoff time.Time) (int64, error) {
	tx, err := r.DB.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`
		DELETE sa FROM seat_allocations sa
		JOIN generated_trips gt ON gt.id = sa.generated_trip_id
		WHERE gt.status = 'scheduled' AND gt.actual_departure_time < ?`, cutoff); err != nil {
		return 0, err
	}
	res, err := tx.Exec(`
		DELETE FROM generated_trips
		WHERE status = 'scheduled' AND actual_departure_time < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return n, tx.Commit()
}

// ListSummaries is the back-office read path: instances joined with template
// route and vehicle identity for a date range.
func (r TripRepository) ListSummaries(start, end time.Time) ([]models.GeneratedTripSummary, error) {
	rows, err := r.DB.Query(`
		SELECT gt.id, gt.template_id, gt.vehicle_id,
		       gt.original_departure_time, gt.actual_departure_time, gt.actual_arrival_time,
		       gt.available_seats, gt.status, gt.created_at, gt.updated_at,
		       tt.route_from, tt.route_to,
		       v.vehicle_code, v.name,
		       (SELECT COUNT(*) FROM seat_allocations sa WHERE sa.generated_trip_id = gt.id) AS total_seats
		FROM generated_trips gt
		JOIN trip_templates tt ON tt.id = gt.template_id
		JOIN vehicles v ON v.id = gt.vehicle_id
		WHERE gt.actual_departure_time >= ?
		  AND gt.actual_departure_time < ?
		ORDER BY gt.actual_departure_time, gt.id`,
		start, end.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.GeneratedTripSummary
	for rows.Next() {
		var s models.GeneratedTripSummary
		if err := rows.Scan(
			&s.ID, &s.TemplateID, &s.VehicleID,
			&s.OriginalDeparture, &s.ActualDeparture, &s.ActualArrival,
			&s.AvailableSeats, &s.Status, &s.CreatedAt, &s.UpdatedAt,
			&s.RouteFrom, &s.RouteTo,
			&s.VehicleCode, &s.VehicleName,
			&s.TotalSeats,
		); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r TripRepository) GetSummary(id int64) (models.GeneratedTripSummary, error) {
	var s models.GeneratedTripSummary
	err := r.DB.QueryRow(`
		SELECT gt.id, gt.template_id, gt.vehicle_id,
		       gt.original_departure_time, gt.actual_departure_time, gt.actual_arrival_time,
		       gt.available_seats, gt.status, gt.created_at, gt.updated_at,
		       tt.route_from, tt.route_to,
		       v.vehicle_code, v.name,
		       (SELECT COUNT(*) FROM seat_allocations sa WHERE sa.generated_trip_id = gt.id) AS total_seats
		FROM generated_trips gt
		JOIN trip_templates tt ON tt.id = gt.template_id
		JOIN vehicles v ON v.id = gt.vehicle_id
		WHERE gt.id = ?`, id).Scan(
		&s.ID, &s.TemplateID, &s.VehicleID,
		&s.OriginalDeparture, &s.ActualDeparture, &s.ActualArrival,
		&s.AvailableSeats, &s.Status, &s.CreatedAt, &s.UpdatedAt,
		&s.RouteFrom, &s.RouteTo,
		&s.VehicleCode, &s.VehicleName,
		&s.TotalSeats)
	if err == sql.ErrNoRows {
		return s, domain.NotFoundError{Resource: "generated trip", Err: err}
	}
	return s, err
}
