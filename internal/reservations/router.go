package reservations

import (
	"shelfkeeper/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupReservationRoutes configures the single-item book reservation routes.
// Batch routes share the /book-reservations prefix and live in the batches
// package.
func SetupReservationRoutes(rg *gin.RouterGroup, controller *Controller) {
	reservations := rg.Group("/book-reservations")
	reservations.Use(middleware.JWTAuth())
	{
		reservations.POST("", controller.CreateReservation)
		reservations.POST("/confirm", controller.ConfirmFromLog)
		reservations.GET("/me", controller.ListMyReservations)
		reservations.GET("/me/history", controller.MyHistory)
		reservations.GET("/:id", controller.GetReservation)
		reservations.POST("/:id/cancel", controller.CancelReservation)
	}

	admin := rg.Group("/admin/book-reservations")
	admin.Use(middleware.JWTAuth(), middleware.RequireAdmin())
	{
		admin.GET("/history", controller.AdminHistory)
		admin.GET("/book/:bookId", controller.ListByBook)
		admin.PATCH("/:id/status", controller.UpdateStatus)
	}
}

// Route definitions for reference:
//
// POST   /api/v1/book-reservations                    - Place a hold on a book
// Request body: { "book_id": "...", "reserve_time": "2025-06-01T10:00:00", "pickup_location": "..." }
//
// POST   /api/v1/book-reservations/confirm            - Promote a staged reservation log
// Request body: { "log_id": "...", "book_id": "..." }
//
// GET    /api/v1/book-reservations/me                 - Caller's reservations
// GET    /api/v1/book-reservations/me/history         - Caller's history (?include_cancelled=true)
// GET    /api/v1/book-reservations/:id                - One reservation (owner or admin)
// POST   /api/v1/book-reservations/:id/cancel         - Cancel a PENDING reservation
//
// ADMIN
// GET    /api/v1/admin/book-reservations/history      - All history (?user_id=&include_cancelled=)
// GET    /api/v1/admin/book-reservations/book/:bookId - Reservations for a book
// PATCH  /api/v1/admin/book-reservations/:id/status   - Audited status override
