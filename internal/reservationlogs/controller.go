package reservationlogs

import (
	"net/http"
	"time"

	"shelfkeeper/internal/shared/middleware"
	"shelfkeeper/internal/shared/utils/response"
	"shelfkeeper/internal/shared/utils/timefmt"
	"shelfkeeper/pkg/apperrors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller struct {
	service  Service
	location *time.Location
}

func NewController(service Service, location *time.Location) *Controller {
	return &Controller{service: service, location: location}
}

// CreateLog handles POST /api/v1/reservation-logs
func (c *Controller) CreateLog(ctx *gin.Context) {
	var req CreateLogRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondBindError(ctx, err)
		return
	}

	input := CreateInput{
		UserID:  middleware.UserIDFromContext(ctx),
		BookID:  req.BookID,
		Action:  req.Action,
		Status:  Status(req.Status),
		Message: req.Message,
	}
	if req.ReserveTime != "" {
		t, err := timefmt.ParseDateTime(req.ReserveTime, c.location)
		if err != nil {
			response.RespondError(ctx, apperrors.Validation("invalid reserve_time"))
			return
		}
		input.ReserveTime = &t
	}

	log, err := c.service.Create(ctx.Request.Context(), input)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}
	response.RespondSuccess(ctx, http.StatusCreated, "Reservation log created", log)
}

// ListMyLogs handles GET /api/v1/reservation-logs/me
func (c *Controller) ListMyLogs(ctx *gin.Context) {
	logs, err := c.service.ListByUser(ctx.Request.Context(), middleware.UserIDFromContext(ctx))
	if err != nil {
		response.RespondError(ctx, err)
		return
	}
	response.RespondSuccess(ctx, http.StatusOK, "Reservation logs retrieved", logs)
}

// DeleteLog handles DELETE /api/v1/reservation-logs/:id
func (c *Controller) DeleteLog(ctx *gin.Context) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondError(ctx, apperrors.Validation("invalid reservation log id"))
		return
	}
	if err := c.service.Delete(ctx.Request.Context(), callerFrom(ctx), id); err != nil {
		response.RespondError(ctx, err)
		return
	}
	response.RespondSuccess(ctx, http.StatusOK, "Reservation log deleted", gin.H{"id": id})
}

// BatchDelete handles POST /api/v1/reservation-logs/batch-delete
func (c *Controller) BatchDelete(ctx *gin.Context) {
	var req BatchDeleteRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondBindError(ctx, err)
		return
	}
	result, err := c.service.BatchDelete(ctx.Request.Context(), callerFrom(ctx), req.IDs)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}
	response.RespondSuccess(ctx, http.StatusOK, "Reservation logs deleted", result)
}

func callerFrom(ctx *gin.Context) Caller {
	return Caller{
		UserID: middleware.UserIDFromContext(ctx),
		Admin:  middleware.IsAdmin(ctx),
	}
}
