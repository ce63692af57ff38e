package seats

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"shelfkeeper/internal/shared/constants"
	"shelfkeeper/pkg/apperrors"
	"shelfkeeper/pkg/cache"
	"shelfkeeper/pkg/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var taipei = mustLocation("Asia/Taipei")

func mustLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

// 2025-06-01 08:00 in Taipei
var clock0 = time.Date(2025, 6, 1, 8, 0, 0, 0, taipei)

func newTestService(repo *memoryRepository, locker SlotLocker, c cache.Service, now *time.Time) Service {
	return NewService(repo, locker, c, Options{
		Location:       taipei,
		SweepBatchSize: 2,
		Now:            func() time.Time { return *now },
		Logger:         logger.Discard(),
	})
}

func TestReserve_SecondAttemptConflictsAndFirstIsUnchanged(t *testing.T) {
	repo := newMemoryRepository()
	repo.addSeat("A1", SeatAvailable)
	now := clock0
	svc := newTestService(repo, nil, nil, &now)
	ctx := context.Background()

	first, err := svc.Reserve(ctx, ReserveInput{UserID: uuid.New(), Label: "A1", Date: clock0, Slot: Slot0911})
	require.NoError(t, err)
	assert.Equal(t, ReservationReserved, first.Status)
	assert.Equal(t, "A1", first.Seat.Label)

	_, err = svc.Reserve(ctx, ReserveInput{UserID: uuid.New(), Label: "A1", Date: clock0, Slot: Slot0911})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeConflict))
	assert.Equal(t, "seat already reserved", apperrors.Message(err))

	stored := repo.reservations[first.ID]
	assert.Equal(t, ReservationReserved, stored.Status)
	assert.Equal(t, first.UserID, stored.UserID)

	// A different slot on the same seat is independent.
	_, err = svc.Reserve(ctx, ReserveInput{UserID: uuid.New(), Label: "A1", Date: clock0, Slot: Slot1113})
	assert.NoError(t, err)
}

func TestReserve_ConcurrentAttemptsYieldExactlyOneSuccess(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	lockers := map[string]SlotLocker{
		"redis lock":        NewRedisLocker(client),
		"unique index only": NewNoopLocker(),
	}

	for name, locker := range lockers {
		t.Run(name, func(t *testing.T) {
			repo := newMemoryRepository()
			seat := repo.addSeat("B2", SeatAvailable)
			repo.skipExistsCheck = name == "unique index only"
			now := clock0
			svc := newTestService(repo, locker, nil, &now)

			const attempts = 20
			var (
				wg        sync.WaitGroup
				successes atomic.Int32
				conflicts atomic.Int32
			)
			for i := 0; i < attempts; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_, err := svc.Reserve(context.Background(), ReserveInput{UserID: uuid.New(), Label: "B2", Date: clock0, Slot: Slot1315})
					if err == nil {
						successes.Add(1)
					} else if apperrors.IsCode(err, apperrors.CodeConflict) {
						conflicts.Add(1)
					}
				}()
			}
			wg.Wait()

			assert.Equal(t, int32(1), successes.Load())
			assert.Equal(t, int32(attempts-1), conflicts.Load())
			assert.Equal(t, 1, repo.reservedCount(SlotKey{SeatID: seat.ID, Date: clock0, Slot: Slot1315}))
		})
	}
}

func TestReserve_LockHeldElsewhereIsRetryableConflict(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := newMemoryRepository()
	seat := repo.addSeat("A1", SeatAvailable)
	now := clock0
	locker := NewRedisLocker(client)
	svc := newTestService(repo, locker, nil, &now)
	ctx := context.Background()

	lockKey := constants.BuildSeatLockKey(seat.ID.String(), formatDay(Day(clock0)), string(Slot0911))
	release, ok, err := locker.Acquire(ctx, lockKey, 5*time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = svc.Reserve(ctx, ReserveInput{UserID: uuid.New(), Label: "A1", Date: clock0, Slot: Slot0911})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeConflict))
	assert.Equal(t, "seat is being reserved, try again", apperrors.Message(err))
	assert.Empty(t, repo.reservations)

	// The holder gave up without reserving; a retry succeeds.
	release()
	_, err = svc.Reserve(ctx, ReserveInput{UserID: uuid.New(), Label: "A1", Date: clock0, Slot: Slot0911})
	assert.NoError(t, err)
}

func TestReserve_Rejections(t *testing.T) {
	repo := newMemoryRepository()
	repo.addSeat("A1", SeatAvailable)
	repo.addSeat("X9", SeatBroken)
	now := clock0
	svc := newTestService(repo, nil, nil, &now)

	tests := []struct {
		name  string
		input ReserveInput
		code  string
	}{
		{"missing identity", ReserveInput{Label: "A1", Date: clock0, Slot: Slot0911}, apperrors.CodeValidation},
		{"missing slot", ReserveInput{UserID: uuid.New(), Label: "A1", Date: clock0}, apperrors.CodeValidation},
		{"unknown seat", ReserveInput{UserID: uuid.New(), Label: "Z0", Date: clock0, Slot: Slot0911}, apperrors.CodeNotFound},
		{"broken seat", ReserveInput{UserID: uuid.New(), Label: "X9", Date: clock0, Slot: Slot0911}, apperrors.CodeConflict},
		{"slot already over", ReserveInput{UserID: uuid.New(), Label: "A1", Date: clock0.AddDate(0, 0, -1), Slot: Slot1921}, apperrors.CodeValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Reserve(context.Background(), tt.input)
			assert.True(t, apperrors.IsCode(err, tt.code), "got %v", err)
		})
	}
	assert.Empty(t, repo.reservations)
}

func TestCancel(t *testing.T) {
	repo := newMemoryRepository()
	repo.addSeat("A1", SeatAvailable)
	now := clock0
	svc := newTestService(repo, nil, nil, &now)
	ctx := context.Background()
	owner := uuid.New()

	_, err := svc.Cancel(ctx, CancelInput{Label: "A1", Date: clock0, Slot: Slot0911})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
	assert.Equal(t, "nothing to cancel", apperrors.Message(err))

	res, err := svc.Reserve(ctx, ReserveInput{UserID: owner, Label: "A1", Date: clock0, Slot: Slot0911})
	require.NoError(t, err)

	stranger := uuid.New()
	_, err = svc.Cancel(ctx, CancelInput{Label: "A1", Date: clock0, Slot: Slot0911, UserID: &stranger})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))

	n, err := svc.Cancel(ctx, CancelInput{Label: "A1", Date: clock0, Slot: Slot0911, UserID: &owner})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, ReservationCancelled, repo.reservations[res.ID].Status)

	// The key is free again.
	_, err = svc.Reserve(ctx, ReserveInput{UserID: uuid.New(), Label: "A1", Date: clock0, Slot: Slot0911})
	assert.NoError(t, err)
}

func TestCancelExpired_OnlyCancelsEndedSlots(t *testing.T) {
	repo := newMemoryRepository()
	seat := repo.addSeat("A1", SeatAvailable)
	now := time.Date(2025, 6, 1, 13, 30, 0, 0, taipei)
	svc := newTestService(repo, nil, nil, &now)

	yesterday := repo.addReservation(seat, now.AddDate(0, 0, -1), Slot1921, ReservationReserved)
	endedToday := repo.addReservation(seat, now, Slot0911, ReservationReserved)
	endedAtOne := repo.addReservation(seat, now, Slot1113, ReservationReserved)
	inProgress := repo.addReservation(seat, now, Slot1315, ReservationReserved)
	tomorrow := repo.addReservation(seat, now.AddDate(0, 0, 1), Slot0911, ReservationReserved)
	malformed := repo.addReservation(seat, now.AddDate(0, 0, -3), TimeSlot("morning"), ReservationReserved)
	already := repo.addReservation(seat, now.AddDate(0, 0, -2), Slot0911, ReservationCancelled)

	result, err := svc.CancelExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 6, result.Scanned)
	assert.Equal(t, 3, result.Cancelled)

	for _, r := range []*SeatReservation{yesterday, endedToday, endedAtOne} {
		assert.Equal(t, ReservationCancelled, repo.reservations[r.ID].Status)
	}
	for _, r := range []*SeatReservation{inProgress, tomorrow, malformed} {
		assert.Equal(t, ReservationReserved, repo.reservations[r.ID].Status)
	}
	assert.Equal(t, ReservationCancelled, repo.reservations[already.ID].Status)
}

func TestMarkAvailable_GatedOnUpcomingReservations(t *testing.T) {
	repo := newMemoryRepository()
	seat := repo.addSeat("A1", SeatAvailable)
	now := clock0
	svc := newTestService(repo, nil, nil, &now)
	ctx := context.Background()

	future := repo.addReservation(seat, clock0.AddDate(0, 0, 2), Slot0911, ReservationReserved)
	repo.addReservation(seat, clock0.AddDate(0, 0, -5), Slot0911, ReservationReserved)
	// a cancelled booking for tomorrow never blocks
	repo.addReservation(seat, clock0.AddDate(0, 0, 1), Slot1113, ReservationCancelled)

	broken, err := svc.MarkBroken(ctx, "A1")
	require.NoError(t, err)
	assert.Equal(t, SeatBroken, broken.Status)

	_, err = svc.MarkAvailable(ctx, "A1")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeConflict))
	assert.Equal(t, SeatBroken, repo.seats[seat.ID].Status)

	repo.reservations[future.ID].Status = ReservationCancelled
	restored, err := svc.MarkAvailable(ctx, "A1")
	require.NoError(t, err)
	assert.Equal(t, SeatAvailable, restored.Status)

	_, err = svc.MarkBroken(ctx, "nope")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
}

func TestOccupiedLabels_CachedAndInvalidatedOnReserve(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := newMemoryRepository()
	repo.addSeat("A1", SeatAvailable)
	repo.addSeat("A2", SeatAvailable)
	now := clock0
	svc := newTestService(repo, NewRedisLocker(client), cache.NewService(client, logger.Discard()), &now)
	ctx := context.Background()

	labels, err := svc.OccupiedLabels(ctx, clock0, Slot0911)
	require.NoError(t, err)
	assert.Empty(t, labels)
	assert.True(t, mr.Exists("shelfkeeper:seats:occupied:2025-06-01:09:00-11:00"))

	_, err = svc.Reserve(ctx, ReserveInput{UserID: uuid.New(), Label: "A2", Date: clock0, Slot: Slot0911})
	require.NoError(t, err)

	labels, err = svc.OccupiedLabels(ctx, clock0, Slot0911)
	require.NoError(t, err)
	assert.Equal(t, []string{"A2"}, labels)
}
