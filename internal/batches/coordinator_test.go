package batches

import (
	"context"
	"strings"
	"testing"
	"time"

	"shelfkeeper/internal/reservations"
	"shelfkeeper/pkg/apperrors"
	"shelfkeeper/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubReservations implements only what the coordinator exercises; the
// embedded interface panics on anything else.
type stubReservations struct {
	reservations.Service

	held       map[uuid.UUID]reservations.Reservation
	rejectBook map[uuid.UUID]error
	notified   map[string][]reservations.Reservation
	created    []reservations.CreateInput
}

func newStub() *stubReservations {
	return &stubReservations{
		held:       map[uuid.UUID]reservations.Reservation{},
		rejectBook: map[uuid.UUID]error{},
		notified:   map[string][]reservations.Reservation{},
	}
}

func (s *stubReservations) Create(ctx context.Context, in reservations.CreateInput) (*reservations.Reservation, error) {
	if err, ok := s.rejectBook[in.BookID]; ok {
		return nil, err
	}
	s.created = append(s.created, in)
	res := reservations.Reservation{
		ID:          uuid.New(),
		UserID:      in.UserID,
		BookID:      in.BookID,
		ReserveTime: in.ReserveTime,
		ExpiryDate:  reservations.ExpiryFor(in.ReserveTime),
		Status:      reservations.StatusPending,
		BatchID:     in.BatchID,
	}
	s.held[res.ID] = res
	return &res, nil
}

func (s *stubReservations) Get(ctx context.Context, id uuid.UUID) (*reservations.Reservation, error) {
	res, ok := s.held[id]
	if !ok {
		return nil, apperrors.NotFound("reservation")
	}
	return &res, nil
}

func (s *stubReservations) Cancel(ctx context.Context, id uuid.UUID) (*reservations.Reservation, error) {
	res, ok := s.held[id]
	if !ok {
		return nil, apperrors.NotFound("reservation")
	}
	if res.Status == reservations.StatusCancelled {
		return nil, apperrors.Conflict("already cancelled")
	}
	res.Status = reservations.StatusCancelled
	s.held[id] = res
	return &res, nil
}

func (s *stubReservations) CancelMany(ctx context.Context, ids []uuid.UUID) (int64, error) {
	var n int64
	for _, id := range ids {
		if res, ok := s.held[id]; ok && res.Status == reservations.StatusPending {
			res.Status = reservations.StatusCancelled
			s.held[id] = res
			n++
		}
	}
	return n, nil
}

func (s *stubReservations) DeleteMany(ctx context.Context, ids []uuid.UUID) (int64, error) {
	var n int64
	for _, id := range ids {
		if _, ok := s.held[id]; ok {
			delete(s.held, id)
			n++
		}
	}
	return n, nil
}

func (s *stubReservations) NotifyBatch(ctx context.Context, userID uuid.UUID, list []reservations.Reservation, batchID string) {
	s.notified[batchID] = list
}

func newTestCoordinator(stub *stubReservations) *coordinator {
	c := NewCoordinator(stub, time.UTC, logger.Discard()).(*coordinator)
	c.now = func() time.Time { return time.UnixMilli(1717200000000) }
	return c
}

func strPtr(s string) *string { return &s }

func TestCreateBatch_MissingReserveTimeFailsOnlyThatItem(t *testing.T) {
	stub := newStub()
	c := newTestCoordinator(stub)
	userID := uuid.New()
	books := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}

	result, err := c.CreateBatch(context.Background(), CreateBatchInput{
		UserID: userID,
		Items: []BatchItemRequest{
			{BookID: books[0], ReserveTime: strPtr("2025-06-01T10:00:00")},
			{BookID: books[1], ReserveTime: nil},
			{BookID: books[2], ReserveTime: strPtr("2025-06-01T11:00:00Z")},
		},
	})
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, "BATCH_1717200000000", result.BatchID)
	require.Len(t, result.Results, 3)
	for i, r := range result.Results {
		assert.Equal(t, books[i], r.BookID, "order preserved")
	}
	assert.Equal(t, ItemSuccess, result.Results[0].Status)
	assert.NotNil(t, result.Results[0].ReservationID)
	assert.Equal(t, ItemFail, result.Results[1].Status)
	assert.Equal(t, "missing data", result.Results[1].Reason)
	assert.Nil(t, result.Results[1].ReservationID)
	assert.Equal(t, ItemSuccess, result.Results[2].Status)

	for _, in := range stub.created {
		require.NotNil(t, in.BatchID)
		assert.Equal(t, result.BatchID, *in.BatchID)
	}
	assert.Len(t, stub.notified[result.BatchID], 2)
}

func TestCreateBatch_ReasonsAndNoNotificationWhenAllFail(t *testing.T) {
	stub := newStub()
	c := newTestCoordinator(stub)
	borrowed := uuid.New()
	stub.rejectBook[borrowed] = apperrors.Conflict("book already borrowed")

	result, err := c.CreateBatch(context.Background(), CreateBatchInput{
		UserID: uuid.New(),
		Items: []BatchItemRequest{
			{BookID: borrowed, ReserveTime: strPtr("2025-06-01T10:00:00")},
			{BookID: uuid.New(), ReserveTime: strPtr("not a time")},
		},
	})
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, "book already borrowed", result.Results[0].Reason)
	assert.Equal(t, "missing data", result.Results[1].Reason)
	assert.Empty(t, stub.notified)
}

func TestCreateBatch_AllSucceed(t *testing.T) {
	stub := newStub()
	c := newTestCoordinator(stub)

	result, err := c.CreateBatch(context.Background(), CreateBatchInput{
		UserID: uuid.New(),
		Items:  []BatchItemRequest{{BookID: uuid.New(), ReserveTime: strPtr("2025-06-01T10:00:00")}},
	})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.True(t, strings.HasPrefix(result.BatchID, "BATCH_"))

	_, err = c.CreateBatch(context.Background(), CreateBatchInput{Items: []BatchItemRequest{{BookID: uuid.New()}}})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))
}

func TestCreateBatch_AcceptsLocalTimestampLayouts(t *testing.T) {
	stub := newStub()
	c := newTestCoordinator(stub)

	layouts := []string{"2025-06-01T10:00", "2025-06-01 10:00:00", "2025-06-01 10:00", "2025-06-01T10:00:00"}
	items := make([]BatchItemRequest, 0, len(layouts))
	for _, value := range layouts {
		items = append(items, BatchItemRequest{BookID: uuid.New(), ReserveTime: strPtr(value)})
	}

	result, err := c.CreateBatch(context.Background(), CreateBatchInput{UserID: uuid.New(), Items: items})
	require.NoError(t, err)

	assert.True(t, result.Success)
	want := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	require.Len(t, stub.created, len(layouts))
	for i, in := range stub.created {
		assert.Equal(t, ItemSuccess, result.Results[i].Status, layouts[i])
		assert.True(t, want.Equal(in.ReserveTime), layouts[i])
	}
}

func seed(stub *stubReservations, userID uuid.UUID, status reservations.Status) uuid.UUID {
	id := uuid.New()
	stub.held[id] = reservations.Reservation{ID: id, UserID: userID, Status: status}
	return id
}

func TestBatchCancel_ReportsPerItem(t *testing.T) {
	stub := newStub()
	c := newTestCoordinator(stub)
	owner := uuid.New()
	pending := seed(stub, owner, reservations.StatusPending)
	cancelled := seed(stub, owner, reservations.StatusCancelled)
	foreign := seed(stub, uuid.New(), reservations.StatusPending)
	missing := uuid.New()

	result, err := c.BatchCancel(context.Background(), Caller{UserID: owner}, []uuid.UUID{pending, cancelled, foreign, missing})
	require.NoError(t, err)

	assert.Equal(t, 4, result.TotalRequested)
	assert.Equal(t, 1, result.SuccessCount)
	assert.Equal(t, 3, result.FailCount)
	assert.True(t, result.Results[0].Success)
	assert.Equal(t, "already cancelled", result.Results[1].Message)
	assert.Equal(t, "access denied", result.Results[2].Message)
	assert.Equal(t, "reservation not found", result.Results[3].Message)
	assert.Equal(t, reservations.StatusPending, stub.held[foreign].Status)
}

func TestBatchCancelSimple_SkipsForeignIDs(t *testing.T) {
	stub := newStub()
	c := newTestCoordinator(stub)
	owner := uuid.New()
	mine := seed(stub, owner, reservations.StatusPending)
	foreign := seed(stub, uuid.New(), reservations.StatusPending)

	result, err := c.BatchCancelSimple(context.Background(), Caller{UserID: owner}, []uuid.UUID{mine, foreign})
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.CancelledCount)
	assert.Equal(t, 2, result.TotalRequested)
	assert.Equal(t, reservations.StatusPending, stub.held[foreign].Status)

	result, err = c.BatchCancelSimple(context.Background(), Caller{Admin: true}, []uuid.UUID{mine, foreign})
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.CancelledCount)
}

func TestBatchDelete(t *testing.T) {
	stub := newStub()
	c := newTestCoordinator(stub)
	id := seed(stub, uuid.New(), reservations.StatusCompleted)

	result, err := c.BatchDelete(context.Background(), []uuid.UUID{id, uuid.New()})
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.DeletedCount)
	assert.Equal(t, 2, result.TotalRequested)
	assert.Empty(t, stub.held)
}
