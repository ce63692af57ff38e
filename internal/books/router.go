package books

import (
	"github.com/gin-gonic/gin"
)

// SetupBookRoutes registers the public book lookup
func SetupBookRoutes(rg *gin.RouterGroup, controller *Controller) {
	books := rg.Group("/books")
	{
		books.GET("/:id", controller.GetBook) // GET /api/v1/books/:id
	}
}
