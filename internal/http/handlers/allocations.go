package handlers

import (
	"net/http"
	"strconv"
	"time"

	"tripcore/internal/http/middleware"
	"tripcore/internal/services"
	"tripcore/internal/utils"

	"github.com/gin-gonic/gin"
)

type blockRequest struct {
	Reason       string `json:"reason"`
	BlockedUntil string `json:"blocked_until"`
}

// POST /api/allocations/:id/block
func BlockAllocation(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		RespondError(c, http.StatusBadRequest, "id tidak valid", err)
		return
	}
	var req blockRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	var until *time.Time
	if req.BlockedUntil != "" {
		t, err := utils.ParseDate(req.BlockedUntil)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "blocked_until tidak valid", err)
			return
		}
		until = &t
	}

	svc := services.SeatService{RequestID: middleware.GetRequestID(c)}
	if err := svc.BlockAllocation(id, req.Reason, until); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "status": "blocked"})
}

// POST /api/allocations/:id/unblock
func UnblockAllocation(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		RespondError(c, http.StatusBadRequest, "id tidak valid", err)
		return
	}
	svc := services.SeatService{RequestID: middleware.GetRequestID(c)}
	if err := svc.UnblockAllocation(id); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "status": "available"})
}
