package handlers

import (
	"net/http"
	"time"

	intconfig "tripcore/internal/config"
	"tripcore/internal/domain/models"
	"tripcore/internal/recurrence"
	"tripcore/internal/repositories"
	"tripcore/internal/utils"

	"github.com/gin-gonic/gin"
)

type recurrencePayload struct {
	Type       string   `json:"type"`
	Interval   int      `json:"interval"`
	DaysOfWeek []int    `json:"days_of_week"`
	EndDate    string   `json:"end_date"`
	Exceptions []string `json:"exceptions"`
}

type templatePayload struct {
	RouteFrom     string             `json:"route_from" binding:"required"`
	RouteTo       string             `json:"route_to" binding:"required"`
	DepartureTime string             `json:"departure_time" binding:"required"`
	ArrivalTime   string             `json:"arrival_time" binding:"required"`
	VehicleID     int64              `json:"vehicle_id" binding:"required"`
	ValidFrom     string             `json:"valid_from" binding:"required"`
	ValidUntil    string             `json:"valid_until"`
	Recurrence    *recurrencePayload `json:"recurrence"`
}

// POST /api/templates is the authoring feed boundary. Heavier template CRUD
// belongs to the back-office, this endpoint only lets the feed push rows in.
func CreateTemplate(c *gin.Context) {
	var payload templatePayload
	if !BindJSONOrError(c, &payload) {
		return
	}

	if _, err := utils.ParseTimeOfDay(payload.DepartureTime); err != nil {
		RespondError(c, http.StatusBadRequest, "departure_time tidak valid", err)
		return
	}
	if _, err := utils.ParseTimeOfDay(payload.ArrivalTime); err != nil {
		RespondError(c, http.StatusBadRequest, "arrival_time tidak valid", err)
		return
	}
	validFrom, err := utils.ParseDate(payload.ValidFrom)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "valid_from tidak valid", err)
		return
	}

	tpl := models.TripTemplate{
		RouteFrom:     payload.RouteFrom,
		RouteTo:       payload.RouteTo,
		DepartureTime: payload.DepartureTime,
		ArrivalTime:   payload.ArrivalTime,
		VehicleID:     payload.VehicleID,
		ValidFrom:     validFrom,
		Active:        true,
	}
	if payload.ValidUntil != "" {
		until, err := utils.ParseDate(payload.ValidUntil)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "valid_until tidak valid", err)
			return
		}
		tpl.ValidUntil = &until
	}

	if payload.Recurrence != nil {
		pattern, err := patternFromPayload(*payload.Recurrence)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "recurrence tidak valid", err)
			return
		}
		tpl.Pattern = pattern
	}
	if err := recurrence.ValidatePattern(tpl); err != nil {
		RespondDomainError(c, err)
		return
	}

	repo := repositories.TemplateRepository{DB: intconfig.DB}
	id, err := repo.Create(tpl)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "gagal simpan template", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func patternFromPayload(p recurrencePayload) (*models.RecurrencePattern, error) {
	pattern := &models.RecurrencePattern{
		Type:     models.RecurrenceType(p.Type),
		Interval: p.Interval,
	}
	if len(p.DaysOfWeek) > 0 {
		pattern.DaysOfWeek = make(map[time.Weekday]struct{}, len(p.DaysOfWeek))
		for _, d := range p.DaysOfWeek {
			if d >= 0 && d <= 6 {
				pattern.DaysOfWeek[time.Weekday(d)] = struct{}{}
			}
		}
	}
	if p.EndDate != "" {
		end, err := utils.ParseDate(p.EndDate)
		if err != nil {
			return nil, err
		}
		pattern.EndDate = &end
	}
	if len(p.Exceptions) > 0 {
		pattern.Exceptions = make(map[string]struct{}, len(p.Exceptions))
		for _, raw := range p.Exceptions {
			d, err := utils.ParseDate(raw)
			if err != nil {
				return nil, err
			}
			pattern.Exceptions[d.Format("2006-01-02")] = struct{}{}
		}
	}
	return pattern, nil
}
