package repositories

import (
	"database/sql"

	intdb "tripcore/internal/db"
	"tripcore/internal/domain"
	"tripcore/internal/domain/models"
)

// BookingRepository owns bookings. Inserts of active bookings can fail with a
// duplicate-entry error from the unique active-allocation index; callers must
// treat that as "seat taken", not as a storage failure.
type BookingRepository struct {
	DB *sql.DB
}

func (r BookingRepository) Insert(q intdb.Execer, b models.Booking) (int64, error) {
	res, err := q.Exec(`
		INSERT INTO bookings (seat_allocation_id, customer_name, customer_phone, status, payment_status, total_price)
		VALUES (?,?,?,?,?,?)`,
		b.SeatAllocationID, b.CustomerName, b.CustomerPhone,
		string(b.Status), b.PaymentStatus, b.TotalPrice)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r BookingRepository) GetByID(q intdb.Execer, id int64) (models.Booking, error) {
	var b models.Booking
	err := q.QueryRow(`
		SELECT id, seat_allocation_id, customer_name, customer_phone, status, payment_status, total_price, created_at, updated_at
		FROM bookings WHERE id = ?`, id).Scan(
		&b.ID, &b.SeatAllocationID, &b.CustomerName, &b.CustomerPhone,
		&b.Status, &b.PaymentStatus, &b.TotalPrice, &b.CreatedAt, &b.UpdatedAt)
	if err == sql.ErrNoRows {
		return b, domain.NotFoundError{Resource: "booking", Err: err}
	}
	return b, err
}

// UpdateStatus transitions one booking. Reactivating a cancelled booking can
// also hit the unique active-allocation index when someone else claimed the
// seat in between.
func (r BookingRepository) UpdateStatus(q intdb.Execer, id int64, status models.BookingStatus) error {
	_, err := q.Exec(`UPDATE bookings SET status = ? WHERE id = ?`, string(status), id)
	return err
}

// GenerationLogRepository appends the audit row per generation run.
type GenerationLogRepository struct {
	DB *sql.DB
}

func (r GenerationLogRepository) Insert(logRow models.GenerationLog) error {
	_, err := r.DB.Exec(`
		INSERT INTO generation_logs (generation_date, trips_generated, period_start, period_end, generated_by)
		VALUES (?,?,?,?,?)`,
		logRow.GenerationDate, logRow.TripsGenerated,
		logRow.PeriodStart.Format("2006-01-02"), logRow.PeriodEnd.Format("2006-01-02"),
		logRow.GeneratedBy)
	return err
}

// OperatorRepository resolves back-office logins.
type OperatorRepository struct {
	DB *sql.DB
}

func (r OperatorRepository) GetByLogin(login string) (models.Operator, error) {
	var op models.Operator
	err := r.DB.QueryRow(`
		SELECT id, name, username, email, password_hash, role, status
		FROM operators
		WHERE username = ? OR email = ?`, login, login).Scan(
		&op.ID, &op.Name, &op.Username, &op.Email, &op.PasswordHash, &op.Role, &op.Status)
	if err == sql.ErrNoRows {
		return op, domain.NotFoundError{Resource: "operator", Err: err}
	}
	return op, err
}
