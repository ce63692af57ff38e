package seats

import (
	"context"
	"strings"
	"time"

	"shelfkeeper/internal/availability"
	"shelfkeeper/internal/shared/constants"
	"shelfkeeper/internal/shared/utils/dberr"
	"shelfkeeper/pkg/apperrors"
	"shelfkeeper/pkg/cache"
	"shelfkeeper/pkg/logger"

	"github.com/google/uuid"
)

type Service interface {
	ListSeats(ctx context.Context) ([]Seat, error)
	TimeSlots() []TimeSlotInfo
	OccupiedLabels(ctx context.Context, date time.Time, slot TimeSlot) ([]string, error)
	ListUserReservations(ctx context.Context, userID uuid.UUID) ([]SeatReservation, error)

	Reserve(ctx context.Context, input ReserveInput) (*SeatReservation, error)
	Cancel(ctx context.Context, input CancelInput) (int64, error)
	CancelExpired(ctx context.Context) (*SweepResult, error)

	MarkBroken(ctx context.Context, label string) (*Seat, error)
	MarkAvailable(ctx context.Context, label string) (*Seat, error)
}

type ReserveInput struct {
	UserID uuid.UUID
	Label  string
	Date   time.Time
	Slot   TimeSlot
}

// CancelInput cancels every RESERVED row for the key. A non-nil UserID limits
// the cancel to that member's rows.
type CancelInput struct {
	Label  string
	Date   time.Time
	Slot   TimeSlot
	UserID *uuid.UUID
}

type SweepResult struct {
	Scanned   int           `json:"scanned"`
	Cancelled int           `json:"cancelled"`
	Duration  time.Duration `json:"duration_ns"`
}

type Options struct {
	Location       *time.Location
	LockTTL        time.Duration
	SweepBatchSize int
	Now            func() time.Time
	Logger         *logger.Logger
}

type service struct {
	repo   Repository
	locker SlotLocker
	cache  cache.Service
	opts   Options
	log    *logger.Logger
}

// NewService wires the seat state machine. cacheService may be nil.
func NewService(repo Repository, locker SlotLocker, cacheService cache.Service, opts Options) Service {
	if locker == nil {
		locker = NewNoopLocker()
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.LockTTL <= 0 {
		opts.LockTTL = 5 * time.Second
	}
	if opts.SweepBatchSize <= 0 {
		opts.SweepBatchSize = 200
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = logger.GetDefault()
	}
	return &service{
		repo:   repo,
		locker: locker,
		cache:  cacheService,
		opts:   opts,
		log:    opts.Logger.WithComponent("seats"),
	}
}

func (s *service) today() time.Time {
	return Day(s.opts.Now().In(s.opts.Location))
}

func (s *service) ListSeats(ctx context.Context) ([]Seat, error) {
	if s.cache == nil {
		seats, err := s.repo.ListSeats(ctx)
		if err != nil {
			return nil, apperrors.Internal("failed to list seats", err)
		}
		return seats, nil
	}

	var seats []Seat
	err := s.cache.GetOrSet(ctx, constants.CACHE_KEY_SEATS_STATUS, constants.TTL_SEATS_STATUS, func() (interface{}, error) {
		return s.repo.ListSeats(ctx)
	}, &seats)
	if err != nil {
		return nil, apperrors.Internal("failed to list seats", err)
	}
	return seats, nil
}

func (s *service) TimeSlots() []TimeSlotInfo {
	slots := AllTimeSlots()
	out := make([]TimeSlotInfo, 0, len(slots))
	for _, slot := range slots {
		out = append(out, slot.Info())
	}
	return out
}

func (s *service) OccupiedLabels(ctx context.Context, date time.Time, slot TimeSlot) ([]string, error) {
	if !slot.IsValid() {
		return nil, apperrors.Validation("invalid time slot")
	}
	day := Day(date)

	fetch := func() (interface{}, error) {
		labels, err := s.repo.OccupiedLabels(ctx, day, slot)
		if labels == nil {
			labels = []string{}
		}
		return labels, err
	}

	var labels []string
	if s.cache == nil {
		raw, err := fetch()
		if err != nil {
			return nil, apperrors.Internal("failed to load occupied seats", err)
		}
		return raw.([]string), nil
	}
	key := constants.BuildOccupiedSeatsKey(formatDay(day), string(slot))
	if err := s.cache.GetOrSet(ctx, key, constants.TTL_SEATS_OCCUPIED, fetch, &labels); err != nil {
		return nil, apperrors.Internal("failed to load occupied seats", err)
	}
	return labels, nil
}

func (s *service) ListUserReservations(ctx context.Context, userID uuid.UUID) ([]SeatReservation, error) {
	if userID == uuid.Nil {
		return nil, apperrors.Validation("user identity is required")
	}
	list, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal("failed to list seat reservations", err)
	}
	return list, nil
}

func (s *service) seatByLabel(ctx context.Context, label string) (*Seat, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return nil, apperrors.Validation("missing data")
	}
	seat, err := s.repo.GetSeatByLabel(ctx, label)
	if err != nil {
		if dberr.IsNotFound(err) {
			return nil, apperrors.NotFound("seat")
		}
		return nil, apperrors.Internal("failed to load seat", err)
	}
	return seat, nil
}

func (s *service) Reserve(ctx context.Context, input ReserveInput) (*SeatReservation, error) {
	if input.UserID == uuid.Nil {
		return nil, apperrors.Validation("user identity is required")
	}
	if input.Date.IsZero() || !input.Slot.IsValid() {
		return nil, apperrors.Validation("missing data")
	}
	day := Day(input.Date)

	end, err := input.Slot.EndOn(day, s.opts.Location)
	if err != nil {
		return nil, apperrors.Validation("invalid time slot")
	}
	if !end.After(s.opts.Now()) {
		return nil, apperrors.Validation("time slot has already ended")
	}

	seat, err := s.seatByLabel(ctx, input.Label)
	if err != nil {
		return nil, err
	}
	if seat.Status != SeatAvailable {
		return nil, apperrors.Conflict("seat is not available")
	}

	key := SlotKey{SeatID: seat.ID, Date: day, Slot: input.Slot}
	lockKey := constants.BuildSeatLockKey(seat.ID.String(), formatDay(day), string(input.Slot))
	release, acquired, err := s.locker.Acquire(ctx, lockKey, s.opts.LockTTL)
	switch {
	case err != nil:
		s.log.WarnWithContext(ctx, "Seat lock unavailable, relying on unique index", err, map[string]interface{}{"key": lockKey})
	case !acquired:
		// Another attempt holds the key; it may still fail, so the caller can retry.
		return nil, apperrors.Conflict("seat is being reserved, try again")
	default:
		defer release()
	}

	reservation := &SeatReservation{
		UserID:          input.UserID,
		SeatID:          seat.ID,
		ReservationDate: day,
		TimeSlot:        input.Slot,
		Status:          ReservationReserved,
	}
	err = s.repo.Transaction(ctx, func(repo Repository) error {
		exists, err := repo.ExistsReserved(ctx, key)
		if err != nil {
			return apperrors.Internal("failed to check seat reservations", err)
		}
		if exists {
			return apperrors.Conflict("seat already reserved")
		}
		if err := repo.CreateReservation(ctx, reservation); err != nil {
			if dberr.IsUniqueViolation(err) {
				return apperrors.Conflict("seat already reserved")
			}
			return apperrors.Internal("failed to save seat reservation", err)
		}
		return nil
	})
	if err != nil {
		if _, ok := apperrors.As(err); ok {
			return nil, err
		}
		return nil, apperrors.Internal("failed to reserve seat", err)
	}

	s.invalidateOccupied(ctx, day, input.Slot)
	reservation.Seat = seat
	s.log.LogSeatReserved(ctx, reservation.ID.String(), seat.Label, formatDay(day), string(input.Slot), input.UserID.String())
	return reservation, nil
}

func (s *service) Cancel(ctx context.Context, input CancelInput) (int64, error) {
	if input.Date.IsZero() || !input.Slot.IsValid() {
		return 0, apperrors.Validation("missing data")
	}
	seat, err := s.seatByLabel(ctx, input.Label)
	if err != nil {
		return 0, err
	}

	day := Day(input.Date)
	n, err := s.repo.CancelByKey(ctx, SlotKey{SeatID: seat.ID, Date: day, Slot: input.Slot}, input.UserID, s.opts.Now())
	if err != nil {
		return 0, apperrors.Internal("failed to cancel seat reservation", err)
	}
	if n == 0 {
		return 0, apperrors.NotFoundf("nothing to cancel")
	}

	s.invalidateOccupied(ctx, day, input.Slot)
	return n, nil
}

// CancelExpired cancels RESERVED rows whose slot has ended. Each page is
// cancelled in its own short transaction. Rows whose slot cannot be parsed
// are left alone.
func (s *service) CancelExpired(ctx context.Context) (*SweepResult, error) {
	started := time.Now()
	now := s.opts.Now()
	result := &SweepResult{}

	cursor := uuid.Nil
	for {
		page, err := s.repo.ListReservedAfter(ctx, cursor, s.opts.SweepBatchSize)
		if err != nil {
			return result, apperrors.Internal("failed to scan seat reservations", err)
		}
		if len(page) == 0 {
			break
		}
		result.Scanned += len(page)
		cursor = page[len(page)-1].ID

		var expired []uuid.UUID
		for _, r := range page {
			if s.isExpired(r, now) {
				expired = append(expired, r.ID)
			}
		}
		if len(expired) > 0 {
			var n int64
			err := s.repo.Transaction(ctx, func(repo Repository) error {
				var err error
				n, err = repo.CancelReservedByIDs(ctx, expired, now)
				return err
			})
			if err != nil {
				return result, apperrors.Internal("failed to cancel expired seat reservations", err)
			}
			result.Cancelled += int(n)
		}

		if len(page) < s.opts.SweepBatchSize {
			break
		}
	}

	if result.Cancelled > 0 {
		s.invalidateAllOccupied(ctx)
	}
	result.Duration = time.Since(started)
	s.log.LogSeatSweep(ctx, result.Scanned, result.Cancelled, result.Duration)
	return result, nil
}

func (s *service) isExpired(r SeatReservation, now time.Time) bool {
	slot, err := ParseTimeSlot(string(r.TimeSlot))
	if err != nil || r.ReservationDate.IsZero() {
		return false
	}
	end, err := slot.EndOn(r.ReservationDate, s.opts.Location)
	if err != nil {
		return false
	}
	return !now.Before(end)
}

func (s *service) MarkBroken(ctx context.Context, label string) (*Seat, error) {
	seat, err := s.seatByLabel(ctx, label)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateSeatStatus(ctx, seat.ID, SeatBroken); err != nil {
		return nil, apperrors.Internal("failed to update seat status", err)
	}
	seat.Status = SeatBroken
	s.invalidateSeatStatus(ctx)
	return seat, nil
}

func (s *service) MarkAvailable(ctx context.Context, label string) (*Seat, error) {
	seat, err := s.seatByLabel(ctx, label)
	if err != nil {
		return nil, err
	}
	if err := availability.NewSeatGate(s.repo).CheckMarkAvailable(ctx, seat.ID, s.today()); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateSeatStatus(ctx, seat.ID, SeatAvailable); err != nil {
		return nil, apperrors.Internal("failed to update seat status", err)
	}
	seat.Status = SeatAvailable
	s.invalidateSeatStatus(ctx)
	return seat, nil
}

func (s *service) invalidateOccupied(ctx context.Context, day time.Time, slot TimeSlot) {
	if s.cache == nil {
		return
	}
	key := constants.BuildOccupiedSeatsKey(formatDay(day), string(slot))
	if err := s.cache.Delete(ctx, key); err != nil {
		s.log.WarnWithContext(ctx, "Failed to invalidate occupied seats cache", err, map[string]interface{}{"key": key})
	}
}

func (s *service) invalidateAllOccupied(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if _, err := s.cache.DeletePattern(ctx, constants.PATTERN_INVALIDATE_SEATS_OCCUPIED); err != nil {
		s.log.WarnWithContext(ctx, "Failed to invalidate occupied seats cache", err, nil)
	}
}

func (s *service) invalidateSeatStatus(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, constants.CACHE_KEY_SEATS_STATUS); err != nil {
		s.log.WarnWithContext(ctx, "Failed to invalidate seat status cache", err, nil)
	}
}
