package handlers

import (
	"net/http"

	intconfig "tripcore/internal/config"

	"github.com/gin-gonic/gin"
)

// GET /api/health
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GET /api/db-check
func DBCheck(c *gin.Context) {
	if intconfig.DB == nil {
		RespondError(c, http.StatusServiceUnavailable, "database belum terhubung", nil)
		return
	}
	if err := intconfig.DB.Ping(); err != nil {
		RespondError(c, http.StatusServiceUnavailable, "database tidak merespons", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"database": "ok"})
}
