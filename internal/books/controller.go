package books

import (
	"net/http"

	"shelfkeeper/internal/shared/utils/response"
	"shelfkeeper/pkg/apperrors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// GetBook handles GET /api/v1/books/:id
func (c *Controller) GetBook(ctx *gin.Context) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondError(ctx, apperrors.Validation("invalid book id"))
		return
	}

	book, err := c.service.GetBook(ctx.Request.Context(), id)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondSuccess(ctx, http.StatusOK, "Book retrieved successfully", book)
}
