// Package batches applies reservation operations item by item and reports a
// result per item. Items are independent: one failing item never rolls back
// another.
package batches

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"shelfkeeper/internal/reservations"
	"shelfkeeper/internal/shared/utils/timefmt"
	"shelfkeeper/pkg/apperrors"
	"shelfkeeper/pkg/logger"

	"github.com/google/uuid"
)

const missingData = "missing data"

type CreateBatchInput struct {
	UserID         uuid.UUID
	Items          []BatchItemRequest
	PickupLocation string
	PickupMethod   string
}

// Caller restricts cancellation to the caller's own reservations unless Admin
// is set.
type Caller struct {
	UserID uuid.UUID
	Admin  bool
}

type Coordinator interface {
	CreateBatch(ctx context.Context, input CreateBatchInput) (*CreateBatchResult, error)
	BatchCancel(ctx context.Context, caller Caller, ids []uuid.UUID) (*BatchCancelResult, error)
	BatchCancelSimple(ctx context.Context, caller Caller, ids []uuid.UUID) (*SimpleCancelResult, error)
	BatchDelete(ctx context.Context, ids []uuid.UUID) (*DeleteResult, error)
}

type coordinator struct {
	reservations reservations.Service
	location     *time.Location
	now          func() time.Time
	log          *logger.Logger
}

func NewCoordinator(svc reservations.Service, location *time.Location, log *logger.Logger) Coordinator {
	if location == nil {
		location = time.UTC
	}
	if log == nil {
		log = logger.GetDefault()
	}
	return &coordinator{
		reservations: svc,
		location:     location,
		now:          time.Now,
		log:          log.WithComponent("batches"),
	}
}

func newBatchID(now time.Time) string {
	return "BATCH_" + strconv.FormatInt(now.UnixMilli(), 10)
}

func (c *coordinator) CreateBatch(ctx context.Context, input CreateBatchInput) (*CreateBatchResult, error) {
	if input.UserID == uuid.Nil {
		return nil, apperrors.Validation("user identity is required")
	}
	if len(input.Items) == 0 {
		return nil, apperrors.Validation("no items given")
	}

	batchID := newBatchID(c.now())
	result := &CreateBatchResult{
		Success: true,
		BatchID: batchID,
		Results: make([]ItemResult, 0, len(input.Items)),
	}
	var created []reservations.Reservation

	for _, item := range input.Items {
		outcome := ItemResult{BookID: item.BookID, Status: ItemFail}

		reserveTime, ok := c.parseReserveTime(item.ReserveTime)
		if !ok || item.BookID == uuid.Nil {
			outcome.Reason = missingData
			result.Success = false
			result.Results = append(result.Results, outcome)
			continue
		}

		res, err := c.reservations.Create(ctx, reservations.CreateInput{
			UserID:         input.UserID,
			BookID:         item.BookID,
			ReserveTime:    reserveTime,
			PickupLocation: input.PickupLocation,
			PickupMethod:   input.PickupMethod,
			BatchID:        &batchID,
		})
		if err != nil {
			outcome.Reason = apperrors.Message(err)
			result.Success = false
			result.Results = append(result.Results, outcome)
			continue
		}

		id := res.ID
		outcome.ReservationID = &id
		outcome.Status = ItemSuccess
		result.Results = append(result.Results, outcome)
		created = append(created, *res)
	}

	if len(created) > 0 {
		c.reservations.NotifyBatch(ctx, input.UserID, created, batchID)
	}

	c.log.InfoWithContext(ctx, "Batch reservation processed", map[string]interface{}{
		"batch_id":  batchID,
		"requested": len(input.Items),
		"created":   len(created),
	})
	return result, nil
}

func (c *coordinator) parseReserveTime(raw *string) (time.Time, bool) {
	if raw == nil {
		return time.Time{}, false
	}
	t, err := timefmt.ParseDateTime(*raw, c.location)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func (c *coordinator) BatchCancel(ctx context.Context, caller Caller, ids []uuid.UUID) (*BatchCancelResult, error) {
	if len(ids) == 0 {
		return nil, apperrors.Validation("no reservation ids given")
	}

	result := &BatchCancelResult{
		Results:        make([]CancelItemResult, 0, len(ids)),
		TotalRequested: len(ids),
	}
	for _, id := range ids {
		item := CancelItemResult{ReservationID: id}
		if err := c.checkOwner(ctx, caller, id); err != nil {
			item.Message = apperrors.Message(err)
			result.FailCount++
		} else if _, err := c.reservations.Cancel(ctx, id); err != nil {
			item.Message = apperrors.Message(err)
			result.FailCount++
		} else {
			item.Success = true
			item.Message = "cancelled"
			result.SuccessCount++
		}
		result.Results = append(result.Results, item)
	}

	result.Message = fmt.Sprintf("%d of %d reservations cancelled", result.SuccessCount, result.TotalRequested)
	return result, nil
}

func (c *coordinator) checkOwner(ctx context.Context, caller Caller, id uuid.UUID) error {
	if caller.Admin {
		return nil
	}
	res, err := c.reservations.Get(ctx, id)
	if err != nil {
		return err
	}
	if res.UserID != caller.UserID {
		return apperrors.Forbidden("access denied")
	}
	return nil
}

// BatchCancelSimple cancels whatever is still pending and reports only a
// count. Ids the caller may not touch are skipped silently.
func (c *coordinator) BatchCancelSimple(ctx context.Context, caller Caller, ids []uuid.UUID) (*SimpleCancelResult, error) {
	if len(ids) == 0 {
		return nil, apperrors.Validation("no reservation ids given")
	}
	allowed := ids
	if !caller.Admin {
		allowed = make([]uuid.UUID, 0, len(ids))
		for _, id := range ids {
			if c.checkOwner(ctx, caller, id) == nil {
				allowed = append(allowed, id)
			}
		}
	}
	if len(allowed) == 0 {
		return &SimpleCancelResult{TotalRequested: len(ids)}, nil
	}

	n, err := c.reservations.CancelMany(ctx, allowed)
	if err != nil {
		return nil, err
	}
	return &SimpleCancelResult{CancelledCount: n, TotalRequested: len(ids)}, nil
}

func (c *coordinator) BatchDelete(ctx context.Context, ids []uuid.UUID) (*DeleteResult, error) {
	n, err := c.reservations.DeleteMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	return &DeleteResult{DeletedCount: n, TotalRequested: len(ids)}, nil
}
