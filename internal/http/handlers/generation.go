package handlers

import (
	"net/http"

	"tripcore/internal/http/middleware"
	"tripcore/internal/services"
	"tripcore/internal/utils"

	"github.com/gin-gonic/gin"
)

type generateRequest struct {
	StartDate  string `json:"start_date" binding:"required"`
	EndDate    string `json:"end_date" binding:"required"`
	Regenerate bool   `json:"regenerate"`
}

// POST /api/trips/generate
//
// regenerate=true first clears still-scheduled instances in the window so the
// run rebuilds them; without it the run is a pure idempotent top-up.
func GenerateTrips(c *gin.Context) {
	var req generateRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	start, err := utils.ParseDate(req.StartDate)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "start_date tidak valid", err)
		return
	}
	end, err := utils.ParseDate(req.EndDate)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "end_date tidak valid", err)
		return
	}

	svc := services.GenerationService{RequestID: middleware.GetRequestID(c)}

	if req.Regenerate {
		if _, err := svc.CleanupPeriod(start, end); err != nil {
			RespondDomainError(c, err)
			return
		}
	}

	created, err := svc.GenerateForPeriod(start, end, middleware.OperatorID(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"trips_generated": created,
		"period_start":    utils.FormatDate(start),
		"period_end":      utils.FormatDate(end),
	})
}

// DELETE /api/trips/generated?start=YYYY-MM-DD&end=YYYY-MM-DD
func CleanupTrips(c *gin.Context) {
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
	deleted, err := svc.CleanupPeriod(start, end)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trips_deleted": deleted})
}
