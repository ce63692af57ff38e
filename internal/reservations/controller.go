package reservations

import (
	"net/http"
	"strconv"
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
	now      func() time.Time
}

func NewController(service Service, location *time.Location) *Controller {
	return &Controller{service: service, location: location, now: time.Now}
}

// CreateReservation handles POST /api/v1/book-reservations
func (c *Controller) CreateReservation(ctx *gin.Context) {
	var req CreateReservationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondBindError(ctx, err)
		return
	}

	reserveTime := c.now()
	if req.ReserveTime != "" {
		t, err := timefmt.ParseDateTime(req.ReserveTime, c.location)
		if err != nil {
			response.RespondError(ctx, apperrors.Validation("missing data"))
			return
		}
		reserveTime = t
	}

	reservation, err := c.service.Create(ctx.Request.Context(), CreateInput{
		UserID:         middleware.UserIDFromContext(ctx),
		BookID:         req.BookID,
		ReserveTime:    reserveTime,
		PickupLocation: req.PickupLocation,
		PickupMethod:   req.PickupMethod,
	})
	if err != nil {
		response.RespondError(ctx, err)
		return
	}
	response.RespondSuccess(ctx, http.StatusCreated, "Reservation created successfully", reservation)
}

// GetReservation handles GET /api/v1/book-reservations/:id
func (c *Controller) GetReservation(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	reservation, err := c.service.Get(ctx.Request.Context(), id)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}
	if !middleware.IsAdmin(ctx) && reservation.UserID != middleware.UserIDFromContext(ctx) {
		response.RespondError(ctx, apperrors.Forbidden("access denied"))
		return
	}
	response.RespondSuccess(ctx, http.StatusOK, "Reservation retrieved successfully", reservation)
}

// ListMyReservations handles GET /api/v1/book-reservations/me
func (c *Controller) ListMyReservations(ctx *gin.Context) {
	list, err := c.service.ListByUser(ctx.Request.Context(), middleware.UserIDFromContext(ctx))
	if err != nil {
		response.RespondError(ctx, err)
		return
	}
	response.RespondSuccess(ctx, http.StatusOK, "Reservations retrieved successfully", list)
}

// MyHistory handles GET /api/v1/book-reservations/me/history
func (c *Controller) MyHistory(ctx *gin.Context) {
	userID := middleware.UserIDFromContext(ctx)
	if userID == uuid.Nil {
		response.RespondError(ctx, apperrors.Validation("user identity is required"))
		return
	}
	c.history(ctx, &userID)
}

// AdminHistory handles GET /api/v1/admin/book-reservations/history
func (c *Controller) AdminHistory(ctx *gin.Context) {
	var userID *uuid.UUID
	if raw := ctx.Query("user_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.RespondError(ctx, apperrors.Validation("invalid user_id"))
			return
		}
		userID = &id
	}
	c.history(ctx, userID)
}

func (c *Controller) history(ctx *gin.Context, userID *uuid.UUID) {
	includeCancelled, err := strconv.ParseBool(ctx.DefaultQuery("include_cancelled", "false"))
	if err != nil {
		response.RespondError(ctx, apperrors.Validation("include_cancelled must be a boolean"))
		return
	}

	list, err := c.service.History(ctx.Request.Context(), HistoryFilter{
		UserID:           userID,
		IncludeCancelled: includeCancelled,
	})
	if err != nil {
		response.RespondError(ctx, err)
		return
	}
	response.RespondSuccess(ctx, http.StatusOK, "Reservation history retrieved successfully", list)
}

// ListByBook handles GET /api/v1/admin/book-reservations/book/:bookId
func (c *Controller) ListByBook(ctx *gin.Context) {
	bookID, ok := parseID(ctx, "bookId")
	if !ok {
		return
	}
	list, err := c.service.ListByBook(ctx.Request.Context(), bookID)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}
	response.RespondSuccess(ctx, http.StatusOK, "Reservations retrieved successfully", list)
}

// CancelReservation handles POST /api/v1/book-reservations/:id/cancel
func (c *Controller) CancelReservation(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	if !middleware.IsAdmin(ctx) {
		current, err := c.service.Get(ctx.Request.Context(), id)
		if err != nil {
			response.RespondError(ctx, err)
			return
		}
		if current.UserID != middleware.UserIDFromContext(ctx) {
			response.RespondError(ctx, apperrors.Forbidden("access denied"))
			return
		}
	}

	reservation, err := c.service.Cancel(ctx.Request.Context(), id)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}
	response.RespondSuccess(ctx, http.StatusOK, "Reservation cancelled successfully", reservation)
}

// ConfirmFromLog handles POST /api/v1/book-reservations/confirm
func (c *Controller) ConfirmFromLog(ctx *gin.Context) {
	var req ConfirmFromLogRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondBindError(ctx, err)
		return
	}

	reservation, err := c.service.ConfirmFromLog(ctx.Request.Context(), ConfirmInput{
		LogID:  req.LogID,
		UserID: middleware.UserIDFromContext(ctx),
		BookID: req.BookID,
	})
	if err != nil {
		response.RespondError(ctx, err)
		return
	}
	response.RespondSuccess(ctx, http.StatusCreated, "Reservation confirmed successfully", gin.H{
		"reservation_id": reservation.ID,
		"reservation":    reservation,
	})
}

// UpdateStatus handles PATCH /api/v1/admin/book-reservations/:id/status
func (c *Controller) UpdateStatus(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondBindError(ctx, err)
		return
	}

	reservation, err := c.service.UpdateStatus(ctx.Request.Context(), id, Status(req.Status), middleware.UserIDFromContext(ctx))
	if err != nil {
		response.RespondError(ctx, err)
		return
	}
	response.RespondSuccess(ctx, http.StatusOK, "Reservation status updated", reservation)
}

func parseID(ctx *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(ctx.Param(param))
	if err != nil {
		response.RespondError(ctx, apperrors.Validation("invalid reservation id"))
		return uuid.Nil, false
	}
	return id, true
}
