package batches

import (
	"shelfkeeper/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupBatchRoutes configures the batch reservation routes
func SetupBatchRoutes(rg *gin.RouterGroup, controller *Controller) {
	batch := rg.Group("/book-reservations/batch")
	batch.Use(middleware.JWTAuth())
	{
		batch.POST("", controller.CreateBatch)                     // POST /api/v1/book-reservations/batch
		batch.POST("/cancel", controller.BatchCancel)              // POST /api/v1/book-reservations/batch/cancel
		batch.POST("/cancel-simple", controller.BatchCancelSimple) // POST /api/v1/book-reservations/batch/cancel-simple
	}

	admin := rg.Group("/admin/book-reservations/batch")
	admin.Use(middleware.JWTAuth(), middleware.RequireAdmin())
	{
		admin.POST("/delete", controller.BatchDelete) // POST /api/v1/admin/book-reservations/batch/delete
	}
}
