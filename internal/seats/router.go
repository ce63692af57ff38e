package seats

import (
	"shelfkeeper/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupSeatRoutes configures seat listing, seat reservation and the admin
// seat status routes
func SetupSeatRoutes(rg *gin.RouterGroup, controller *Controller) {
	RegisterValidators()

	// Public
	seats := rg.Group("/seats")
	{
		seats.GET("", controller.ListSeats)
		seats.GET("/time-slots", controller.ListTimeSlots)
	}

	reservations := rg.Group("/seat-reservations")
	reservations.Use(middleware.JWTAuth())
	{
		reservations.GET("/occupied", controller.GetOccupied)
		reservations.GET("/me", controller.ListMyReservations)
		reservations.POST("", controller.ReserveSeat)
		reservations.POST("/cancel", controller.CancelSeat)
	}

	admin := rg.Group("/admin")
	admin.Use(middleware.JWTAuth(), middleware.RequireAdmin())
	{
		admin.PATCH("/seats/:label/broken", controller.MarkBroken)
		admin.PATCH("/seats/:label/available", controller.MarkAvailable)
		admin.POST("/seat-reservations/sweep", controller.Sweep)
	}
}

// Route definitions for reference:
//
// GET    /api/v1/seats                                - All seats with status
// GET    /api/v1/seats/time-slots                     - Fixed daily time slots
// GET    /api/v1/seat-reservations/occupied           - ?date=2025-06-01&time_slot=09:00-11:00
// POST   /api/v1/seat-reservations                    - { "seat_label": "A1", "date": "2025-06-01", "time_slot": "SLOT_09_11" }
// POST   /api/v1/seat-reservations/cancel             - Same body as reserve
// GET    /api/v1/seat-reservations/me                 - Caller's seat reservations
//
// ADMIN
// PATCH  /api/v1/admin/seats/:label/broken            - Take a seat out of service
// PATCH  /api/v1/admin/seats/:label/available         - Return it (rejected while upcoming reservations exist)
// POST   /api/v1/admin/seat-reservations/sweep        - Run the expiry sweep now
