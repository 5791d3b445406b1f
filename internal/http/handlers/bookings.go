package handlers

import (
	"net/http"
	"strconv"

	"tripcore/internal/domain/models"
	"tripcore/internal/http/middleware"
	"tripcore/internal/services"

	"github.com/gin-gonic/gin"
)

// POST /api/bookings
func CreateBooking(c *gin.Context) {
	var input models.BookingInput
	if !BindJSONOrError(c, &input) {
		return
	}

	svc := services.BookingService{RequestID: middleware.GetRequestID(c)}
	booking, err := svc.Create(input)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"id":                 booking.ID,
		"seat_allocation_id": booking.SeatAllocationID,
		"status":             booking.Status,
	})
}

type bookingStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// PATCH /api/bookings/:id/status
func UpdateBookingStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		RespondError(c, http.StatusBadRequest, "id tidak valid", err)
		return
	}
	var req bookingStatusRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	svc := services.BookingService{RequestID: middleware.GetRequestID(c)}
	booking, err := svc.UpdateStatus(id, models.BookingStatus(req.Status))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": booking.ID, "status": booking.Status})
}
