package db

import (
	"database/sql"
	"fmt"
)

// EnsureSchema creates the core tables when missing. The unique keys here are
// load-bearing: they are the idempotency and no-double-booking guards, not
// just integrity niceties.
//
// bookings.active_allocation_id is a stored generated column that carries the
// allocation id only while the booking is active (pending/confirmed); the
// unique key over it rejects a second active booking for the same seat with a
// duplicate-entry error, regardless of what application code does.
func EnsureSchema(dbc *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS operators (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			username VARCHAR(64) NOT NULL,
			email VARCHAR(255) NOT NULL DEFAULT '',
			password_hash VARCHAR(255) NOT NULL,
			role VARCHAR(32) NOT NULL DEFAULT 'staff',
			status VARCHAR(32) NOT NULL DEFAULT 'active',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE KEY uq_operators_username (username)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

		`CREATE TABLE IF NOT EXISTS vehicles (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			vehicle_code VARCHAR(32) NOT NULL,
			name VARCHAR(255) NOT NULL DEFAULT '',
			plate_number VARCHAR(32) NOT NULL DEFAULT '',
			capacity INT NOT NULL DEFAULT 0,
			active TINYINT(1) NOT NULL DEFAULT 1,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE KEY uq_vehicles_code (vehicle_code)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

		`CREATE TABLE IF NOT EXISTS seats (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			vehicle_id BIGINT NOT NULL,
			seat_number VARCHAR(16) NOT NULL,
			seat_type VARCHAR(32) NOT NULL DEFAULT 'standard',
			row_num INT NOT NULL DEFAULT 0,
			position INT NOT NULL DEFAULT 0,
			active TINYINT(1) NOT NULL DEFAULT 1,
			UNIQUE KEY uq_seats_vehicle_number (vehicle_id, seat_number),
			KEY idx_seats_vehicle (vehicle_id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

		`CREATE TABLE IF NOT EXISTS trip_templates (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			route_from VARCHAR(128) NOT NULL,
			route_to VARCHAR(128) NOT NULL,
			departure_time VARCHAR(8) NOT NULL,
			arrival_time VARCHAR(8) NOT NULL,
			vehicle_id BIGINT NOT NULL,
			valid_from DATE NOT NULL,
			valid_until DATE NULL,
			active TINYINT(1) NOT NULL DEFAULT 1,
			recurrence_type VARCHAR(16) NOT NULL DEFAULT 'none',
			recurrence_interval INT NOT NULL DEFAULT 1,
			days_of_week TEXT NULL,
			recurrence_end_date DATE NULL,
			exception_dates TEXT NULL,
			deleted_at DATETIME NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			KEY idx_templates_vehicle (vehicle_id),
			KEY idx_templates_validity (valid_from, valid_until)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

		`CREATE TABLE IF NOT EXISTS generated_trips (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			template_id BIGINT NOT NULL,
			vehicle_id BIGINT NOT NULL,
			original_departure_time DATETIME NOT NULL,
			actual_departure_time DATETIME NOT NULL,
			actual_arrival_time DATETIME NOT NULL,
			available_seats INT NOT NULL DEFAULT 0,
			status VARCHAR(32) NOT NULL DEFAULT 'scheduled',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			UNIQUE KEY uq_generated_template_departure (template_id, actual_departure_time),
			KEY idx_generated_departure (actual_departure_time),
			KEY idx_generated_status (status)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

		`CREATE TABLE IF NOT EXISTS seat_allocations (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			generated_trip_id BIGINT NOT NULL,
			seat_id BIGINT NOT NULL,
			status VARCHAR(32) NOT NULL DEFAULT 'available',
			price_adjustment BIGINT NOT NULL DEFAULT 0,
			blocked_reason VARCHAR(255) NULL,
			blocked_until DATETIME NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			UNIQUE KEY uq_allocations_trip_seat (generated_trip_id, seat_id),
			KEY idx_allocations_trip_status (generated_trip_id, status)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

		`CREATE TABLE IF NOT EXISTS bookings (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			seat_allocation_id BIGINT NOT NULL,
			customer_name VARCHAR(255) NOT NULL,
			customer_phone VARCHAR(32) NOT NULL DEFAULT '',
			status VARCHAR(32) NOT NULL DEFAULT 'pending',
			payment_status VARCHAR(32) NOT NULL DEFAULT 'unpaid',
			total_price BIGINT NOT NULL DEFAULT 0,
			active_allocation_id BIGINT AS (IF(status IN ('pending','confirmed'), seat_allocation_id, NULL)) STORED,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			UNIQUE KEY uq_bookings_active_allocation (active_allocation_id),
			KEY idx_bookings_allocation (seat_allocation_id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

		`CREATE TABLE IF NOT EXISTS generation_logs (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			generation_date DATETIME NOT NULL,
			trips_generated INT NOT NULL DEFAULT 0,
			period_start DATE NOT NULL,
			period_end DATE NOT NULL,
			generated_by BIGINT NOT NULL DEFAULT 0
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	}

	// Older deployments created bookings before the generated-column guard
	// existed; CREATE TABLE IF NOT EXISTS leaves those untouched, so the
	// column and its unique key have to be retrofitted here.
	needsGuard := HasTable(dbc, "bookings") && !HasColumn(dbc, "bookings", "active_allocation_id")

	for _, stmt := range stmts {
		if _, err := dbc.Exec(stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}

	if needsGuard {
		alters := []string{
			`ALTER TABLE bookings
				ADD COLUMN active_allocation_id BIGINT AS (IF(status IN ('pending','confirmed'), seat_allocation_id, NULL)) STORED`,
			`ALTER TABLE bookings
				ADD UNIQUE KEY uq_bookings_active_allocation (active_allocation_id)`,
		}
		for _, stmt := range alters {
			if _, err := dbc.Exec(stmt); err != nil {
				return fmt.Errorf("upgrade bookings guard: %w", err)
			}
		}
	}
	return nil
}
