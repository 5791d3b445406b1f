package services

import (
	"database/sql"
	"fmt"
	"time"

	intconfig "tripcore/internal/config"
	"tripcore/internal/domain"
	"tripcore/internal/domain/models"
	"tripcore/internal/recurrence"
	"tripcore/internal/repositories"
	"tripcore/internal/utils"
)

// maxIterationsPerTemplate bounds the candidate-date walk so a malformed
// pattern can never spin the batch forever. Hitting the bound abandons the
// remaining dates of that template only.
const maxIterationsPerTemplate = 1000

// GenerationService expands trip templates into dated generated_trips rows
// and provisions their seat inventory. It is the only writer of those tables.
type GenerationService struct {
	TemplateRepo repositories.TemplateRepository
	TripRepo     repositories.TripRepository
	SeatRepo     repositories.SeatRepository
	AllocRepo    repositories.AllocationRepository
	VehicleRepo  repositories.VehicleRepository
	LogRepo      repositories.GenerationLogRepository
	DB           *sql.DB
	RequestID    string
}

func (s GenerationService) db() *sql.DB {
	if s.DB != nil {
		return s.DB
	}
	return intconfig.DB
}

func (s GenerationService) templates() repositories.TemplateRepository {
	if s.TemplateRepo.DB != nil {
		return s.TemplateRepo
	}
	return repositories.TemplateRepository{DB: s.db()}
}

func (s GenerationService) trips() repositories.TripRepository {
	if s.TripRepo.DB != nil {
		return s.TripRepo
	}
	return repositories.TripRepository{DB: s.db()}
}

func (s GenerationService) seats() repositories.SeatRepository {
	if s.SeatRepo.DB != nil {
		return s.SeatRepo
	}
	return repositories.SeatRepository{DB: s.db()}
}

func (s GenerationService) allocations() repositories.AllocationRepository {
	if s.AllocRepo.DB != nil {
		return s.AllocRepo
	}
	return repositories.AllocationRepository{DB: s.db()}
}

func (s GenerationService) vehicles() repositories.VehicleRepository {
	if s.VehicleRepo.DB != nil {
		return s.VehicleRepo
	}
	return repositories.VehicleRepository{DB: s.db()}
}

func (s GenerationService) logs() repositories.GenerationLogRepository {
	if s.LogRepo.DB != nil {
		return s.LogRepo
	}
	return repositories.GenerationLogRepository{DB: s.db()}
}

// GenerateForPeriod materializes every due trip instance in [start, end] and
// returns the number of instances actually created (idempotent re-runs add
// zero). One unexpected storage error aborts the whole batch; recurrence
// problems only skip their template.
func (s GenerationService) GenerateForPeriod(start, end time.Time, actorID int64) (int, error) {
	start = recurrence.DateOnly(start)
	end = recurrence.DateOnly(end)
	if end.Before(start) {
		return 0, domain.ValidationError{Field: "period", Msg: "tanggal akhir sebelum tanggal mulai"}
	}

	templates, err := s.templates().ListActiveIntersecting(start, end)
	if err != nil {
		return 0, domain.InternalError{Msg: "gagal memuat template", Err: err}
	}

	total := 0
	for _, tpl := range templates {
		created, err := s.generateForTemplate(tpl, start, end)
		total += created
		if err != nil {
			return total, fmt.Errorf("template %d window %s..%s: %w",
				tpl.ID, utils.FormatDate(start), utils.FormatDate(end), err)
		}
	}

	if err := s.logs().Insert(models.GenerationLog{
		GenerationDate: time.Now(),
		TripsGenerated: total,
		PeriodStart:    start,
		PeriodEnd:      end,
		GeneratedBy:    actorID,
	}); err != nil {
		return total, domain.InternalError{Msg: "gagal tulis audit generate", Err: err}
	}

	utils.LogEvent(s.RequestID, "generation", "generate_period",
		fmt.Sprintf("start=%s end=%s created=%d actor=%d", utils.FormatDate(start), utils.FormatDate(end), total, actorID))
	return total, nil
}

func (s GenerationService) generateForTemplate(tpl models.TripTemplate, start, end time.Time) (int, error) {
	if err := recurrence.ValidatePattern(tpl); err != nil {
		utils.LogWarn("generation", "skip_template",
			fmt.Sprintf("template_id=%d err=%v", tpl.ID, err))
		return 0, nil
	}

	depOffset, err := utils.ParseTimeOfDay(tpl.DepartureTime)
	if err != nil {
		utils.LogWarn("generation", "skip_template",
			fmt.Sprintf("template_id=%d jam berangkat rusak: %v", tpl.ID, err))
		return 0, nil
	}
	arrOffset, err := utils.ParseTimeOfDay(tpl.ArrivalTime)
	if err != nil {
		utils.LogWarn("generation", "skip_template",
			fmt.Sprintf("template_id=%d jam tiba rusak: %v", tpl.ID, err))
		return 0, nil
	}

	created := 0
	cur := start
	for iter := 0; !cur.After(end); iter++ {
		if iter >= maxIterationsPerTemplate {
			utils.LogWarn("generation", "safety_bound",
				fmt.Sprintf("template_id=%d berhenti di %s setelah %d iterasi", tpl.ID, utils.FormatDate(cur), iter))
			break
		}
		if recurrence.IsDue(tpl, cur) {
			inserted, err := s.materialize(tpl, cur, depOffset, arrOffset)
			if err != nil {
				return created, err
			}
			if inserted {
				created++
			}
		}
		next := recurrence.NextCandidate(tpl, cur)
		if !next.After(cur) {
			// Stepping must always advance; bail out instead of looping.
			utils.LogWarn("generation", "safety_bound",
				fmt.Sprintf("template_id=%d langkah tidak maju dari %s", tpl.ID, utils.FormatDate(cur)))
			break
		}
		cur = next
	}
	return created, nil
}

// materialize creates one generated trip plus its seat inventory, all in one
// transaction. Reports false without error when the instance already existed.
func (s GenerationService) materialize(tpl models.TripTemplate, day time.Time, depOffset, arrOffset time.Duration) (bool, error) {
	departure := utils.ApplyTimeOfDay(day, depOffset)
	arrival := utils.ApplyTimeOfDay(day, arrOffset)
	if arrival.Before(departure) {
		// Overnight trip: arrival time-of-day precedes departure time-of-day.
		arrival = arrival.AddDate(0, 0, 1)
	}

	vehicle, err := s.vehicles().GetByID(tpl.VehicleID)
	if err != nil {
		return false, err
	}
	seatRows, err := s.seats().ListActiveByVehicle(tpl.VehicleID)
	if err != nil {
		return false, err
	}
	limit := len(seatRows)
	if vehicle.Capacity > 0 && vehicle.Capacity < limit {
		limit = vehicle.Capacity
	}

	tx, err := s.db().Begin()
	if err != nil {
		return false, domain.InternalError{Msg: "gagal mulai transaksi", Err: err}
	}
	defer tx.Rollback()

	tripID, inserted, err := s.trips().InsertIgnore(tx, models.GeneratedTrip{
		TemplateID:        tpl.ID,
		VehicleID:         tpl.VehicleID,
		OriginalDeparture: departure,
		ActualDeparture:   departure,
		ActualArrival:     arrival,
	})
	if err != nil {
		return false, domain.InternalError{Msg: "gagal insert generated trip", Err: err}
	}
	if !inserted {
		// Already materialized by an earlier run (or a concurrent one).
		return false, nil
	}

	allocated := 0
	for _, seat := range seatRows[:limit] {
		createdAlloc, err := s.allocations().InsertIgnore(tx, tripID, seat.ID)
		if err != nil {
			return false, domain.InternalError{Msg: "gagal insert alokasi kursi", Err: err}
		}
		if createdAlloc {
			allocated++
		}
	}

	if err := s.trips().SetAvailableSeats(tx, tripID, allocated); err != nil {
		return false, domain.InternalError{Msg: "gagal set available_seats", Err: err}
	}

	if err := tx.Commit(); err != nil {
		return false, domain.InternalError{Msg: "gagal commit generate", Err: err}
	}
	return true, nil
}

// CleanupPeriod removes still-scheduled instances in [start, end], typically
// right before a forced regeneration.
func (s GenerationService) CleanupPeriod(start, end time.Time) (int64, error) {
	start = recurrence.DateOnly(start)
	end = recurrence.DateOnly(end)
	if end.Before(start) {
		return 0, domain.ValidationError{Field: "period", Msg: "tanggal akhir sebelum tanggal mulai"}
	}
	n, err := s.trips().DeleteScheduledInWindow(start, end)
	if err != nil {
		return 0, domain.InternalError{Msg: "gagal cleanup generated trips", Err: err}
	}
	utils.LogEvent(s.RequestID, "generation", "cleanup_period",
		fmt.Sprintf("start=%s end=%s deleted=%d", utils.FormatDate(start), utils.FormatDate(end), n))
	return n, nil
}

// RetentionSweep drops scheduled instances whose departure lies further in the
// past than the retention horizon.
func (s GenerationService) RetentionSweep(retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		return 0, nil
	}
	cutoff := recurrence.DateOnly(time.Now()).AddDate(0, 0, -retentionDays)
	n, err := s.trips().DeleteScheduledBefore(cutoff)
	if err != nil {
		return 0, domain.InternalError{Msg: "gagal retention sweep", Err: err}
	}
	if n > 0 {
		utils.LogEvent(s.RequestID, "generation", "retention_sweep",
			fmt.Sprintf("cutoff=%s deleted=%d", utils.FormatDate(cutoff), n))
	}
	return n, nil
}

// ListGenerated is the read path consumed by the back-office listing.
func (s GenerationService) ListGenerated(start, end time.Time) ([]models.GeneratedTripSummary, error) {
	start = recurrence.DateOnly(start)
	end = recurrence.DateOnly(end)
	if end.Before(start) {
		return nil, domain.ValidationError{Field: "period", Msg: "tanggal akhir sebelum tanggal mulai"}
	}
	return s.trips().ListSummaries(start, end)
}

// UpdateTripStatus moves one instance along scheduled → boarding → departed →
// arrived; cancel is allowed from any non-terminal status.
func (s GenerationService) UpdateTripStatus(id int64, status models.TripStatus) error {
	trip, err := s.trips().GetByID(s.db(), id)
	if err != nil {
		return err
	}
	if !validTripTransition(trip.Status, status) {
		return domain.ValidationError{
			Field: "status",
			Msg:   fmt.Sprintf("transisi %s → %s tidak diizinkan", trip.Status, status),
		}
	}
	if err := s.trips().UpdateStatus(id, status); err != nil {
		return domain.InternalError{Msg: "gagal update status trip", Err: err}
	}
	utils.LogEvent(s.RequestID, "generation", "trip_status",
		fmt.Sprintf("trip_id=%d %s→%s", id, trip.Status, status))
	return nil
}

func validTripTransition(from, to models.TripStatus) bool {
	if from == to {
		return false
	}
	if to == models.TripStatusCancelled {
		return !from.Terminal()
	}
	switch from {
	case models.TripStatusScheduled:
		return to == models.TripStatusBoarding || to == models.TripStatusDeparted
	case models.TripStatusBoarding:
		return to == models.TripStatusDeparted
	case models.TripStatusDeparted:
		return to == models.TripStatusArrived
	default:
		return false
	}
}
