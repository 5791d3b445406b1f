package repositories

import (
	"database/sql"
	"encoding/json"
	"sort"
	"time"

	"tripcore/internal/db"
	"tripcore/internal/domain"
	"tripcore/internal/domain/models"
)

// TemplateRepository reads trip_templates. The recurrence day-of-week and
// exception sets live as JSON text columns; this repository is the only place
// they get (de)serialized.
type TemplateRepository struct {
	DB *sql.DB
}

const templateColumns = `
	id, route_from, route_to, departure_time, arrival_time, vehicle_id,
	valid_from, valid_until, active,
	recurrence_type, recurrence_interval, days_of_week, recurrence_end_date, exception_dates,
	created_at, updated_at`

// ListActiveIntersecting returns active, non-deleted templates whose validity
// window overlaps [start, end].
func (r TemplateRepository) ListActiveIntersecting(start, end time.Time) ([]models.TripTemplate, error) {
	rows, err := r.DB.Query(`
		SELECT`+templateColumns+`
		FROM trip_templates
		WHERE active = 1
		  AND deleted_at IS NULL
		  AND valid_from <= ?
		  AND (valid_until IS NULL OR valid_until >= ?)
		ORDER BY id`,
		end.Format("2006-01-02"), start.Format("2006-01-02"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.TripTemplate
	for rows.Next() {
		tpl, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, tpl)
	}
	return out, rows.Err()
}

func (r TemplateRepository) GetByID(id int64) (models.TripTemplate, error) {
	row := r.DB.QueryRow(`
		SELECT`+templateColumns+`
		FROM trip_templates
		WHERE id = ? AND deleted_at IS NULL`, id)
	tpl, err := scanTemplateRow(row)
	if err == sql.ErrNoRows {
		return models.TripTemplate{}, domain.NotFoundError{Resource: "template", Err: err}
	}
	return tpl, err
}

// Create inserts a template coming in over the authoring feed.
func (r TemplateRepository) Create(tpl models.TripTemplate) (int64, error) {
	pattern := tpl.Pattern
	recType := string(tpl.RecurrenceTypeOrNone())
	interval := 1
	var daysJSON, exceptionsJSON any
	var endDate any
	if pattern != nil {
		if pattern.Interval > 1 {
			interval = pattern.Interval
		}
		daysJSON = db.NullIfEmpty(encodeDaysOfWeek(pattern.DaysOfWeek))
		exceptionsJSON = db.NullIfEmpty(encodeDateSet(pattern.Exceptions))
		if pattern.EndDate != nil {
			endDate = pattern.EndDate.Format("2006-01-02")
		}
	}

	var validUntil any
	if tpl.ValidUntil != nil {
		validUntil = tpl.ValidUntil.Format("2006-01-02")
	}

	res, err := r.DB.Exec(`
		INSERT INTO trip_templates
			(route_from, route_to, departure_time, arrival_time, vehicle_id,
			 valid_from, valid_until, active,
			 recurrence_type, recurrence_interval, days_of_week, recurrence_end_date, exception_dates)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		tpl.RouteFrom, tpl.RouteTo, tpl.DepartureTime, tpl.ArrivalTime, tpl.VehicleID,
		tpl.ValidFrom.Format("2006-01-02"), validUntil, tpl.Active,
		recType, interval, daysJSON, endDate, exceptionsJSON)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTemplate(rows *sql.Rows) (models.TripTemplate, error) {
	return scanTemplateRow(rows)
}

func scanTemplateRow(row rowScanner) (models.TripTemplate, error) {
	var (
		tpl        models.TripTemplate
		validUntil sql.NullTime
		recType    string
		interval   int
		daysRaw    sql.NullString
		endDate    sql.NullTime
		excRaw     sql.NullString
	)
	err := row.Scan(
		&tpl.ID, &tpl.RouteFrom, &tpl.RouteTo, &tpl.DepartureTime, &tpl.ArrivalTime, &tpl.VehicleID,
		&tpl.ValidFrom, &validUntil, &tpl.Active,
		&recType, &interval, &daysRaw, &endDate, &excRaw,
		&tpl.CreatedAt, &tpl.UpdatedAt,
	)
	if err != nil {
		return models.TripTemplate{}, err
	}
	if validUntil.Valid {
		v := validUntil.Time
		tpl.ValidUntil = &v
	}

	pattern := &models.RecurrencePattern{
		Type:       models.RecurrenceType(recType),
		Interval:   interval,
		DaysOfWeek: decodeDaysOfWeek(daysRaw.String),
		Exceptions: decodeDateSet(excRaw.String),
	}
	if endDate.Valid {
		e := endDate.Time
		pattern.EndDate = &e
	}
	tpl.Pattern = pattern
	return tpl, nil
}

// decodeDaysOfWeek parses a JSON array of 0..6 (Sunday = 0) into a weekday set.
// Malformed or out-of-range entries are dropped rather than failing the scan.
func decodeDaysOfWeek(raw string) map[time.Weekday]struct{} {
	if raw == "" {
		return nil
	}
	var days []int
	if err := json.Unmarshal([]byte(raw), &days); err != nil {
		return nil
	}
	out := make(map[time.Weekday]struct{}, len(days))
	for _, d := range days {
		if d >= 0 && d <= 6 {
			out[time.Weekday(d)] = struct{}{}
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func encodeDaysOfWeek(days map[time.Weekday]struct{}) string {
	if len(days) == 0 {
		return ""
	}
	ints := make([]int, 0, len(days))
	for d := range days {
		ints = append(ints, int(d))
	}
	sort.Ints(ints)
	b, _ := json.Marshal(ints)
	return string(b)
}

// decodeDateSet parses a JSON array of YYYY-MM-DD strings into a set keyed by
// the same format. Entries that do not parse as dates are dropped.
func decodeDateSet(raw string) map[string]struct{} {
	if raw == "" {
		return nil
	}
	var dates []string
	if err := json.Unmarshal([]byte(raw), &dates); err != nil {
		return nil
	}
	out := make(map[string]struct{}, len(dates))
	for _, d := range dates {
		if _, err := time.Parse("2006-01-02", d); err == nil {
			out[d] = struct{}{}
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func encodeDateSet(dates map[string]struct{}) string {
	if len(dates) == 0 {
		return ""
	}
	list := make([]string, 0, len(dates))
	for d := range dates {
		list = append(list, d)
	}
	sort.Strings(list)
	b, _ := json.Marshal(list)
	return string(b)
}
