package handlers

import (
	"net/http"
	"strconv"

	"tripcore/internal/domain/models"
	"tripcore/internal/http/middleware"
	"tripcore/internal/services"
	"tripcore/internal/utils"

	"github.com/gin-gonic/gin"
)

// GET /api/trips/generated?start=YYYY-MM-DD&end=YYYY-MM-DD
func ListGeneratedTrips(c *gin.Context) {
	start, err := utils.ParseDate(c.Query("start"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "start tidak valid", err)
		return
	}
	end, err := utils.ParseDate(c.Query("end"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "end tidak valid", err)
		return
	}

	svc := services.GenerationService{RequestID: middleware.GetRequestID(c)}
	trips, err := svc.ListGenerated(start, end)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	out := make([]gin.H, 0, len(trips))
	for _, t := range trips {
		out = append(out, gin.H{
			"id":             t.ID,
			"templateId":     t.TemplateID,
			"routeFrom":      t.RouteFrom,
			"routeTo":        t.RouteTo,
			"vehicleCode":    t.VehicleCode,
			"vehicleName":    t.VehicleName,
			"departure":      utils.FormatDateTime(t.ActualDeparture),
			"arrival":        utils.FormatDateTime(t.ActualArrival),
			"availableSeats": t.AvailableSeats,
			"totalSeats":     t.TotalSeats,
			"status":         t.Status,
		})
	}
	c.JSON(http.StatusOK, gin.H{"trips": out, "count": len(out)})
}

// GET /api/trips/generated/:id/seats
func TripSeatMap(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		RespondError(c, http.StatusBadRequest, "id tidak valid", err)
		return
	}
	svc := services.SeatService{RequestID: middleware.GetRequestID(c)}
	seats, err := svc.SeatMap(id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"seats": seats, "count": len(seats)})
}

type tripStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// POST /api/trips/generated/:id/status
func UpdateTripStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		RespondError(c, http.StatusBadRequest, "id tidak valid", err)
		return
	}
	var req tripStatusRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	svc := services.GenerationService{RequestID: middleware.GetRequestID(c)}
	if err := svc.UpdateTripStatus(id, models.TripStatus(req.Status)); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "status": req.Status})
}

// GET /api/trips/generated/:id/manifest
func TripManifest(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		RespondError(c, http.StatusBadRequest, "id tidak valid", err)
		return
	}
	svc := services.ManifestService{RequestID: middleware.GetRequestID(c)}
	pdf, filename, err := svc.DepartureManifest(id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}
