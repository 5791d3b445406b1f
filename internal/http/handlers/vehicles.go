package handlers

import (
	"net/http"
	"strconv"

	intconfig "tripcore/internal/config"
	"tripcore/internal/domain/models"
	"tripcore/internal/http/middleware"
	"tripcore/internal/repositories"
	"tripcore/internal/services"

	"github.com/gin-gonic/gin"
)

// POST /api/vehicles
func CreateVehicle(c *gin.Context) {
	var payload models.VehiclePayload
	if !BindJSONOrError(c, &payload) {
		return
	}
	if payload.Capacity <= 0 {
		RespondError(c, http.StatusBadRequest, "kapasitas harus lebih dari 0", nil)
		return
	}

	repo := repositories.VehicleRepository{DB: intconfig.DB}
	id, err := repo.Create(models.Vehicle{
		VehicleCode: payload.VehicleCode,
		Name:        payload.Name,
		PlateNumber: payload.PlateNumber,
		Capacity:    payload.Capacity,
	})
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "gagal simpan kendaraan", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// POST /api/vehicles/:id/seats/provision
func ProvisionVehicleSeats(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		RespondError(c, http.StatusBadRequest, "id tidak valid", err)
		return
	}
	svc := services.SeatService{RequestID: middleware.GetRequestID(c)}
	created, err := svc.ProvisionForVehicle(id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"vehicle_id": id, "seats_created": created})
}
