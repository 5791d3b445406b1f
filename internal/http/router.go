package api

import (
	"log"
	stdhttp "net/http"

	intconfig "tripcore/internal/config"
	h "tripcore/internal/http/handlers"
	"tripcore/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

func NewRouter(env intconfig.Env) *gin.Engine {
	h.SetJWTSecret(env.JWTSecret)

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery(), middleware.CORS())

	if err := r.SetTrustedProxies(nil); err != nil {
		log.Printf("warning: failed to set trusted proxies: %v", err)
	}

	r.OPTIONS("/*path", func(c *gin.Context) { c.AbortWithStatus(stdhttp.StatusNoContent) })

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":  "route tidak ditemukan",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	auth := middleware.RequireAuth([]byte(env.JWTSecret))

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/db-check", h.DBCheck)

		api.POST("/auth/login", h.Login)

		// Template feed (authoring boundary)
		api.POST("/templates", auth, h.CreateTemplate)

		// Generation
		trips := api.Group("/trips")
		trips.POST("/generate", auth, h.GenerateTrips)
		trips.GET("/generated", h.ListGeneratedTrips)
		trips.DELETE("/generated", auth, h.CleanupTrips)
		trips.GET("/generated/:id/seats", h.TripSeatMap)
		trips.POST("/generated/:id/status", auth, h.UpdateTripStatus)
		trips.GET("/generated/:id/manifest", auth, h.TripManifest)

		// Booking lifecycle (driven by the booking collaborator)
		bookings := api.Group("/bookings")
		bookings.POST("", h.CreateBooking)
		bookings.PATCH("/:id/status", h.UpdateBookingStatus)

		// Administrative seat holds
		allocations := api.Group("/allocations")
		allocations.POST("/:id/block", auth, h.BlockAllocation)
		allocations.POST("/:id/unblock", auth, h.UnblockAllocation)

		// Fleet
		vehicles := api.Group("/vehicles")
		vehicles.POST("", auth, h.CreateVehicle)
		vehicles.POST("/:id/seats/provision", auth, h.ProvisionVehicleSeats)
	}

	return r
}
