package repositories

import (
	"database/sql"
	"time"

	intdb "tripcore/internal/db"
	"tripcore/internal/domain"
	"tripcore/internal/domain/models"
)

// AllocationRepository owns seat_allocations, the per-trip seat inventory.
type AllocationRepository struct {
	DB *sql.DB
}

// InsertIgnore creates one allocation with status 'available'. The
// (generated_trip_id, seat_id) unique key makes re-entrant provisioning a
// per-row no-op.
func (r AllocationRepository) InsertIgnore(q intdb.Execer, tripID, seatID int64) (bool, error) {
	res, err := q.Exec(`
		INSERT IGNORE INTO seat_allocations (generated_trip_id, seat_id, status)
		VALUES (?,?,?)`, tripID, seatID, string(models.AllocationAvailable))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r AllocationRepository) GetByID(q intdb.Execer, id int64) (models.SeatAllocation, error) {
	var (
		a      models.SeatAllocation
		reason sql.NullString
		until  sql.NullTime
	)
	err := q.QueryRow(`
		SELECT id, generated_trip_id, seat_id, status, price_adjustment, blocked_reason, blocked_until, created_at, updated_at
		FROM seat_allocations WHERE id = ?`, id).Scan(
		&a.ID, &a.GeneratedTripID, &a.SeatID, &a.Status, &a.PriceAdjustment, &reason, &until, &a.CreatedAt, &a.UpdatedAt)
	if err == sql.ErrNoRows {
		return a, domain.NotFoundError{Resource: "seat allocation", Err: err}
	}
	if err != nil {
		return a, err
	}
	a.BlockedReason = reason.String
	if until.Valid {
		u := until.Time
		a.BlockedUntil = &u
	}
	return a, nil
}

func (r AllocationRepository) UpdateStatus(q intdb.Execer, id int64, status models.AllocationStatus) error {
	_, err := q.Exec(`UPDATE seat_allocations SET status = ? WHERE id = ?`, string(status), id)
	return err
}

// SetBlocked puts an administrative hold on a seat. Expiry of blocked_until is
// external housekeeping, not enforced here.
func (r AllocationRepository) SetBlocked(q intdb.Execer, id int64, reason string, until *time.Time) error {
	_, err := q.Exec(`
		UPDATE seat_allocations
		SET status = ?, blocked_reason = ?, blocked_until = ?
		WHERE id = ?`,
		string(models.AllocationBlocked), intdb.NullIfEmpty(reason), until, id)
	return err
}

func (r AllocationRepository) ClearBlock(q intdb.Execer, id int64) error {
	_, err := q.Exec(`
		UPDATE seat_allocations
		SET status = ?, blocked_reason = NULL, blocked_until = NULL
		WHERE id = ? AND status = ?`,
		string(models.AllocationAvailable), id, string(models.AllocationBlocked))
	return err
}

// ListSeatMap returns the seat map of one generated trip in boarding order.
func (r AllocationRepository) ListSeatMap(tripID int64) ([]models.SeatMapEntry, error) {
	rows, err := r.DB.Query(`
		SELECT sa.id, s.id, s.seat_number, s.seat_type, s.row_num, s.position, sa.status
		FROM seat_allocations sa
		JOIN seats s ON s.id = sa.seat_id
		WHERE sa.generated_trip_id = ?
		ORDER BY s.row_num, s.position`, tripID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.SeatMapEntry
	for rows.Next() {
		var e models.SeatMapEntry
		if err := rows.Scan(&e.AllocationID, &e.SeatID, &e.SeatNumber, &e.SeatType, &e.RowNumber, &e.Position, &e.Status); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// ManifestRow is one line of the departure manifest: a claimed seat with the
// active booking that claims it.
type ManifestRow struct {
	SeatNumber    string
	Status        models.AllocationStatus
	CustomerName  string
	CustomerPhone string
	PaymentStatus string
	TotalPrice    int64
}

// ListManifest lists reserved/booked seats joined with their active booking.
func (r AllocationRepository) ListManifest(tripID int64) ([]ManifestRow, error) {
	rows, err := r.DB.Query(`
		SELECT s.seat_number, sa.status,
		       COALESCE(b.customer_name, ''), COALESCE(b.customer_phone, ''),
		       COALESCE(b.payment_status, ''), COALESCE(b.total_price, 0)
		FROM seat_allocations sa
		JOIN seats s ON s.id = sa.seat_id
		LEFT JOIN bookings b
		       ON b.seat_allocation_id = sa.id
		      AND b.status IN ('pending','confirmed')
		WHERE sa.generated_trip_id = ?
		  AND sa.status IN ('reserved','booked')
		ORDER BY s.row_num, s.position`, tripID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ManifestRow
	for rows.Next() {
		var m ManifestRow
		if err := rows.Scan(&m.SeatNumber, &m.Status, &m.CustomerName, &m.CustomerPhone, &m.PaymentStatus, &m.TotalPrice); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
