package reservationlogs

import (
	"shelfkeeper/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupReservationLogRoutes registers the staging-log endpoints
func SetupReservationLogRoutes(rg *gin.RouterGroup, controller *Controller) {
	logs := rg.Group("/reservation-logs")
	logs.Use(middleware.JWTAuth())
	{
		logs.POST("", controller.CreateLog)                // POST /api/v1/reservation-logs
		logs.GET("/me", controller.ListMyLogs)             // GET /api/v1/reservation-logs/me
		logs.DELETE("/:id", controller.DeleteLog)          // DELETE /api/v1/reservation-logs/:id
		logs.POST("/batch-delete", controller.BatchDelete) // POST /api/v1/reservation-logs/batch-delete
	}
}
