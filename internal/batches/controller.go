package batches

import (
	"net/http"

	"shelfkeeper/internal/shared/middleware"
	"shelfkeeper/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	coordinator Coordinator
}

func NewController(coordinator Coordinator) *Controller {
	return &Controller{coordinator: coordinator}
}

// CreateBatch handles POST /api/v1/book-reservations/batch
func (c *Controller) CreateBatch(ctx *gin.Context) {
	var req CreateBatchRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondBindError(ctx, err)
		return
	}

	result, err := c.coordinator.CreateBatch(ctx.Request.Context(), CreateBatchInput{
		UserID:         middleware.UserIDFromContext(ctx),
		Items:          req.Items,
		PickupLocation: req.PickupLocation,
		PickupMethod:   req.PickupMethod,
	})
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	// Partial failures are still a processed batch; callers read per-item status.
	message := "Batch reservation completed"
	if !result.Success {
		message = "Batch reservation completed with failures"
	}
	response.RespondSuccess(ctx, http.StatusOK, message, result)
}

// BatchCancel handles POST /api/v1/book-reservations/batch/cancel
func (c *Controller) BatchCancel(ctx *gin.Context) {
	var req ReservationIDsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondBindError(ctx, err)
		return
	}
	result, err := c.coordinator.BatchCancel(ctx.Request.Context(), callerFrom(ctx), req.ReservationIDs)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}
	response.RespondSuccess(ctx, http.StatusOK, result.Message, result)
}

// BatchCancelSimple handles POST /api/v1/book-reservations/batch/cancel-simple
func (c *Controller) BatchCancelSimple(ctx *gin.Context) {
	var req ReservationIDsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondBindError(ctx, err)
		return
	}
	result, err := c.coordinator.BatchCancelSimple(ctx.Request.Context(), callerFrom(ctx), req.ReservationIDs)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}
	response.RespondSuccess(ctx, http.StatusOK, "Reservations cancelled", result)
}

// BatchDelete handles POST /api/v1/admin/book-reservations/batch/delete
func (c *Controller) BatchDelete(ctx *gin.Context) {
	var req ReservationIDsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondBindError(ctx, err)
		return
	}
	result, err := c.coordinator.BatchDelete(ctx.Request.Context(), req.ReservationIDs)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}
	response.RespondSuccess(ctx, http.StatusOK, "Reservations deleted", result)
}

func callerFrom(ctx *gin.Context) Caller {
	return Caller{
		UserID: middleware.UserIDFromContext(ctx),
		Admin:  middleware.IsAdmin(ctx),
	}
}
