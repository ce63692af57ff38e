package seats

import (
	"context"
	"net/http"
	"time"

	"shelfkeeper/internal/shared/middleware"
	"shelfkeeper/internal/shared/utils/response"
	"shelfkeeper/internal/shared/utils/timefmt"
	"shelfkeeper/pkg/apperrors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Sweeper triggers an expiry sweep on demand
type Sweeper interface {
	RunOnce(ctx context.Context) (*SweepResult, bool, error)
}

type Controller struct {
	service Service
	sweeper Sweeper
}

func NewController(service Service, sweeper Sweeper) *Controller {
	return &Controller{service: service, sweeper: sweeper}
}

// ListSeats handles GET /api/v1/seats
func (c *Controller) ListSeats(ctx *gin.Context) {
	seats, err := c.service.ListSeats(ctx.Request.Context())
	if err != nil {
		response.RespondError(ctx, err)
		return
	}
	response.RespondSuccess(ctx, http.StatusOK, "Seats retrieved successfully", seats)
}

// ListTimeSlots handles GET /api/v1/seats/time-slots
func (c *Controller) ListTimeSlots(ctx *gin.Context) {
	response.RespondSuccess(ctx, http.StatusOK, "Time slots retrieved successfully", c.service.TimeSlots())
}

// GetOccupied handles GET /api/v1/seat-reservations/occupied
func (c *Controller) GetOccupied(ctx *gin.Context) {
	var q OccupiedQuery
	if err := ctx.ShouldBindQuery(&q); err != nil {
		response.RespondBindError(ctx, err)
		return
	}
	date, slot, err := parseKey(q.Date, q.TimeSlot)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	labels, err := c.service.OccupiedLabels(ctx.Request.Context(), date, slot)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}
	response.RespondSuccess(ctx, http.StatusOK, "Occupied seats retrieved successfully", OccupiedResponse{
		Date:     q.Date,
		TimeSlot: slot,
		Labels:   labels,
	})
}

// ReserveSeat handles POST /api/v1/seat-reservations
func (c *Controller) ReserveSeat(ctx *gin.Context) {
	var req ReserveSeatRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondBindError(ctx, err)
		return
	}
	date, slot, err := parseKey(req.Date, req.TimeSlot)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	reservation, err := c.service.Reserve(ctx.Request.Context(), ReserveInput{
		UserID: middleware.UserIDFromContext(ctx),
		Label:  req.SeatLabel,
		Date:   date,
		Slot:   slot,
	})
	if err != nil {
		response.RespondError(ctx, err)
		return
	}
	response.RespondSuccess(ctx, http.StatusCreated, "Seat reserved successfully", reservation)
}

// CancelSeat handles POST /api/v1/seat-reservations/cancel
func (c *Controller) CancelSeat(ctx *gin.Context) {
	var req CancelSeatRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondBindError(ctx, err)
		return
	}
	date, slot, err := parseKey(req.Date, req.TimeSlot)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	input := CancelInput{Label: req.SeatLabel, Date: date, Slot: slot}
	if !middleware.IsAdmin(ctx) {
		userID := middleware.UserIDFromContext(ctx)
		if userID == uuid.Nil {
			response.RespondError(ctx, apperrors.Validation("user identity is required"))
			return
		}
		input.UserID = &userID
	}

	n, err := c.service.Cancel(ctx.Request.Context(), input)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}
	response.RespondSuccess(ctx, http.StatusOK, "Seat reservation cancelled", gin.H{"cancelled_count": n})
}

// ListMyReservations handles GET /api/v1/seat-reservations/me
func (c *Controller) ListMyReservations(ctx *gin.Context) {
	list, err := c.service.ListUserReservations(ctx.Request.Context(), middleware.UserIDFromContext(ctx))
	if err != nil {
		response.RespondError(ctx, err)
		return
	}
	response.RespondSuccess(ctx, http.StatusOK, "Seat reservations retrieved successfully", list)
}

// MarkBroken handles PATCH /api/v1/admin/seats/:label/broken
func (c *Controller) MarkBroken(ctx *gin.Context) {
	seat, err := c.service.MarkBroken(ctx.Request.Context(), ctx.Param("label"))
	if err != nil {
		response.RespondError(ctx, err)
		return
	}
	response.RespondSuccess(ctx, http.StatusOK, "Seat marked broken", seat)
}

// MarkAvailable handles PATCH /api/v1/admin/seats/:label/available
func (c *Controller) MarkAvailable(ctx *gin.Context) {
	seat, err := c.service.MarkAvailable(ctx.Request.Context(), ctx.Param("label"))
	if err != nil {
		response.RespondError(ctx, err)
		return
	}
	response.RespondSuccess(ctx, http.StatusOK, "Seat marked available", seat)
}

// Sweep handles POST /api/v1/admin/seat-reservations/sweep
func (c *Controller) Sweep(ctx *gin.Context) {
	result, ran, err := c.sweeper.RunOnce(ctx.Request.Context())
	if err != nil {
		response.RespondError(ctx, err)
		return
	}
	if !ran {
		response.RespondError(ctx, apperrors.Conflict("a sweep is already running"))
		return
	}
	response.RespondSuccess(ctx, http.StatusOK, "Expired seat reservations cancelled", result)
}

// parseKey reads calendar dates as written, independent of time zone.
func parseKey(rawDate, rawSlot string) (date time.Time, slot TimeSlot, err error) {
	date, perr := timefmt.ParseDate(rawDate, nil)
	if perr != nil {
		return date, "", apperrors.Validation("invalid date")
	}
	slot, perr = ParseTimeSlot(rawSlot)
	if perr != nil {
		return date, "", apperrors.Validation("invalid time slot")
	}
	return date, slot, nil
}
