package reservations

import (
	"context"
	"sort"
	"strings"
	"time"

	"shelfkeeper/internal/availability"
	"shelfkeeper/internal/books"
	"shelfkeeper/internal/members"
	"shelfkeeper/internal/reservationlogs"
	"shelfkeeper/internal/shared/utils/dberr"
	"shelfkeeper/pkg/apperrors"
	"shelfkeeper/pkg/logger"

	"github.com/google/uuid"
)

// Notifier delivers confirmations. Implementations must not block and must
// swallow their own failures.
type Notifier interface {
	SendReservationConfirmation(ctx context.Context, member *members.Member, reservation Reservation)
	SendBatchConfirmation(ctx context.Context, member *members.Member, reservations []Reservation, batchID string)
}

type BookDirectory interface {
	GetByID(ctx context.Context, id uuid.UUID) (*books.Book, error)
}

type MemberDirectory interface {
	GetByID(ctx context.Context, id uuid.UUID) (*members.Member, error)
}

type BorrowLedger interface {
	ExistsActiveBorrow(ctx context.Context, userID, bookID uuid.UUID) (bool, error)
}

type Service interface {
	Create(ctx context.Context, input CreateInput) (*Reservation, error)
	Cancel(ctx context.Context, id uuid.UUID) (*Reservation, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status, actorID uuid.UUID) (*Reservation, error)
	ConfirmFromLog(ctx context.Context, input ConfirmInput) (*Reservation, error)

	Get(ctx context.Context, id uuid.UUID) (*Reservation, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Reservation, error)
	ListByBook(ctx context.Context, bookID uuid.UUID) ([]Reservation, error)
	History(ctx context.Context, filter HistoryFilter) ([]Reservation, error)

	// Bulk operations without per-item reporting
	CancelMany(ctx context.Context, ids []uuid.UUID) (int64, error)
	DeleteMany(ctx context.Context, ids []uuid.UUID) (int64, error)

	NotifyBatch(ctx context.Context, userID uuid.UUID, reservations []Reservation, batchID string)
}

type CreateInput struct {
	UserID         uuid.UUID
	BookID         uuid.UUID
	ReserveTime    time.Time
	PickupLocation string
	PickupMethod   string
	BatchID        *string
}

type ConfirmInput struct {
	LogID  uuid.UUID
	UserID uuid.UUID
	BookID uuid.UUID
}

type Options struct {
	DefaultPickupLocation string
	DefaultPickupMethod   string
	Now                   func() time.Time
	Logger                *logger.Logger
}

type service struct {
	repo     Repository
	uow      UnitOfWork
	books    BookDirectory
	members  MemberDirectory
	borrows  BorrowLedger
	notifier Notifier
	opts     Options
	log      *logger.Logger
}

func NewService(repo Repository, uow UnitOfWork, books BookDirectory, members MemberDirectory, borrows BorrowLedger, notifier Notifier, opts Options) Service {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = logger.GetDefault()
	}
	if opts.DefaultPickupLocation == "" {
		opts.DefaultPickupLocation = "front desk"
	}
	if opts.DefaultPickupMethod == "" {
		opts.DefaultPickupMethod = "in-person pickup"
	}
	return &service{
		repo:     repo,
		uow:      uow,
		books:    books,
		members:  members,
		borrows:  borrows,
		notifier: notifier,
		opts:     opts,
		log:      opts.Logger.WithComponent("reservations"),
	}
}

func ledgerFor(stores Stores) *availability.BookLedger {
	return availability.NewBookLedger(stores.Reservations, stores.Borrows, stores.Books)
}

func (s *service) Create(ctx context.Context, input CreateInput) (*Reservation, error) {
	if input.UserID == uuid.Nil {
		return nil, apperrors.Validation("user identity is required")
	}
	if input.BookID == uuid.Nil || input.ReserveTime.IsZero() {
		return nil, apperrors.Validation("missing data")
	}

	book, err := s.books.GetByID(ctx, input.BookID)
	if err != nil {
		if dberr.IsNotFound(err) {
			return nil, apperrors.NotFound("book")
		}
		return nil, apperrors.Internal("failed to load book", err)
	}

	borrowed, err := s.borrows.ExistsActiveBorrow(ctx, input.UserID, input.BookID)
	if err != nil {
		return nil, apperrors.Internal("failed to check active borrows", err)
	}
	if borrowed {
		return nil, apperrors.Conflict("book already borrowed")
	}

	reservation := &Reservation{
		UserID:         input.UserID,
		BookID:         input.BookID,
		ReserveTime:    input.ReserveTime,
		ExpiryDate:     ExpiryFor(input.ReserveTime),
		Status:         StatusPending,
		BatchID:        input.BatchID,
		PickupLocation: s.pickupLocation(input.PickupLocation),
		PickupMethod:   s.pickupMethod(input.PickupMethod),
	}

	err = s.uow.Do(ctx, func(stores Stores) error {
		if err := insertPending(ctx, stores, reservation); err != nil {
			return err
		}
		if err := ledgerFor(stores).Claim(ctx, reservation.BookID); err != nil {
			return apperrors.Internal("failed to update book availability", err)
		}
		return nil
	})
	if err != nil {
		return nil, asAppError(err, "failed to create reservation")
	}

	reservation.Book = book
	s.log.LogReservationCreated(ctx, reservation.ID.String(), reservation.BookID.String(), reservation.UserID.String(), reservation.BatchID)

	if reservation.BatchID == nil {
		s.notifyOne(ctx, *reservation)
	}
	return reservation, nil
}

// insertPending applies the duplicate-hold guard and writes the row. The
// partial unique index on (user_id, book_id) for PENDING rows backs the check
// against concurrent inserts.
func insertPending(ctx context.Context, stores Stores, reservation *Reservation) error {
	exists, err := stores.Reservations.ExistsPending(ctx, reservation.UserID, reservation.BookID)
	if err != nil {
		return apperrors.Internal("failed to check existing reservations", err)
	}
	if exists {
		return apperrors.Conflict("already reserved")
	}
	if err := stores.Reservations.Create(ctx, reservation); err != nil {
		if dberr.IsUniqueViolation(err) {
			return apperrors.Conflict("already reserved")
		}
		return apperrors.Internal("failed to save reservation", err)
	}
	return nil
}

func (s *service) Cancel(ctx context.Context, id uuid.UUID) (*Reservation, error) {
	var cancelled *Reservation
	err := s.uow.Do(ctx, func(stores Stores) error {
		current, err := stores.Reservations.GetByIDForUpdate(ctx, id)
		if err != nil {
			if dberr.IsNotFound(err) {
				return apperrors.NotFound("reservation")
			}
			return apperrors.Internal("failed to load reservation", err)
		}

		switch current.Status {
		case StatusCancelled:
			return apperrors.Conflict("already cancelled")
		case StatusCompleted:
			return apperrors.Conflict("already completed, cannot cancel")
		}

		now := s.opts.Now()
		if err := stores.Reservations.UpdateStatus(ctx, id, StatusCancelled, now); err != nil {
			return apperrors.Internal("failed to cancel reservation", err)
		}
		if _, err := ledgerFor(stores).Recompute(ctx, current.BookID); err != nil {
			return apperrors.Internal("failed to update book availability", err)
		}

		current.Status = StatusCancelled
		current.UpdatedAt = now
		cancelled = current
		return nil
	})
	if err != nil {
		return nil, asAppError(err, "failed to cancel reservation")
	}

	s.log.LogReservationCancelled(ctx, cancelled.ID.String(), cancelled.BookID.String())
	return cancelled, nil
}

// UpdateStatus overwrites the status without transition checks. Every call
// leaves an audit row.
func (s *service) UpdateStatus(ctx context.Context, id uuid.UUID, status Status, actorID uuid.UUID) (*Reservation, error) {
	if !status.IsValid() {
		return nil, apperrors.Validation("invalid reservation status")
	}
	if actorID == uuid.Nil {
		return nil, apperrors.Validation("user identity is required")
	}

	var (
		updated *Reservation
		from    Status
	)
	err := s.uow.Do(ctx, func(stores Stores) error {
		current, err := stores.Reservations.GetByIDForUpdate(ctx, id)
		if err != nil {
			if dberr.IsNotFound(err) {
				return apperrors.NotFound("reservation")
			}
			return apperrors.Internal("failed to load reservation", err)
		}
		from = current.Status

		now := s.opts.Now()
		if err := stores.Reservations.UpdateStatus(ctx, id, status, now); err != nil {
			if dberr.IsUniqueViolation(err) {
				return apperrors.Conflict("already reserved")
			}
			return apperrors.Internal("failed to update reservation status", err)
		}
		if err := stores.Reservations.CreateOverride(ctx, &StatusOverride{
			ReservationID: id,
			FromStatus:    from,
			ToStatus:      status,
			ActorID:       actorID,
		}); err != nil {
			return apperrors.Internal("failed to record status override", err)
		}

		ledger := ledgerFor(stores)
		if status == StatusPending {
			err = ledger.Claim(ctx, current.BookID)
		} else {
			_, err = ledger.Recompute(ctx, current.BookID)
		}
		if err != nil {
			return apperrors.Internal("failed to update book availability", err)
		}

		current.Status = status
		current.UpdatedAt = now
		updated = current
		return nil
	})
	if err != nil {
		return nil, asAppError(err, "failed to update reservation status")
	}

	s.log.LogStatusOverride(ctx, id.String(), string(from), string(status), actorID.String())
	return updated, nil
}

func (s *service) ConfirmFromLog(ctx context.Context, input ConfirmInput) (*Reservation, error) {
	if input.UserID == uuid.Nil {
		return nil, apperrors.Validation("user identity is required")
	}
	if input.LogID == uuid.Nil || input.BookID == uuid.Nil {
		return nil, apperrors.Validation("missing data")
	}

	var reservation *Reservation
	err := s.uow.Do(ctx, func(stores Stores) error {
		entry, err := stores.Logs.GetByIDForUpdate(ctx, input.LogID)
		if err != nil {
			if dberr.IsNotFound(err) {
				return apperrors.Validation("reservation log not found")
			}
			return apperrors.Internal("failed to load reservation log", err)
		}
		if entry.UserID != input.UserID {
			return apperrors.Validation("reservation log belongs to another user")
		}
		if entry.BookID != input.BookID {
			return apperrors.Validation("reservation log is for a different book")
		}
		if entry.Status != reservationlogs.StatusPending {
			return apperrors.Validation("reservation log already processed")
		}

		reservation = &Reservation{
			UserID:         entry.UserID,
			BookID:         entry.BookID,
			ReserveTime:    entry.ReserveTime,
			ExpiryDate:     ExpiryFor(entry.ReserveTime),
			Status:         StatusPending,
			PickupLocation: s.opts.DefaultPickupLocation,
			PickupMethod:   s.opts.DefaultPickupMethod,
		}
		if err := insertPending(ctx, stores, reservation); err != nil {
			return err
		}
		if err := stores.Logs.MarkConfirmed(ctx, entry.ID); err != nil {
			return apperrors.Internal("failed to confirm reservation log", err)
		}
		if err := ledgerFor(stores).Claim(ctx, entry.BookID); err != nil {
			return apperrors.Internal("failed to update book availability", err)
		}
		return nil
	})
	if err != nil {
		return nil, asAppError(err, "failed to confirm reservation log")
	}

	s.log.LogReservationCreated(ctx, reservation.ID.String(), reservation.BookID.String(), reservation.UserID.String(), nil)
	s.notifyOne(ctx, *reservation)
	return reservation, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*Reservation, error) {
	reservation, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if dberr.IsNotFound(err) {
			return nil, apperrors.NotFound("reservation")
		}
		return nil, apperrors.Internal("failed to load reservation", err)
	}
	return reservation, nil
}

func (s *service) ListByUser(ctx context.Context, userID uuid.UUID) ([]Reservation, error) {
	if userID == uuid.Nil {
		return nil, apperrors.Validation("user identity is required")
	}
	list, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal("failed to list reservations", err)
	}
	return list, nil
}

func (s *service) ListByBook(ctx context.Context, bookID uuid.UUID) ([]Reservation, error) {
	list, err := s.repo.ListByBook(ctx, bookID)
	if err != nil {
		return nil, apperrors.Internal("failed to list reservations", err)
	}
	return list, nil
}

func (s *service) History(ctx context.Context, filter HistoryFilter) ([]Reservation, error) {
	list, err := s.repo.History(ctx, filter)
	if err != nil {
		return nil, apperrors.Internal("failed to load reservation history", err)
	}
	return list, nil
}

func (s *service) CancelMany(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, apperrors.Validation("no reservation ids given")
	}

	var cancelled int64
	err := s.uow.Do(ctx, func(stores Stores) error {
		affected, err := stores.Reservations.ListByIDs(ctx, ids)
		if err != nil {
			return apperrors.Internal("failed to load reservations", err)
		}
		cancelled, err = stores.Reservations.CancelMany(ctx, ids, s.opts.Now())
		if err != nil {
			return apperrors.Internal("failed to cancel reservations", err)
		}
		return recomputeBooks(ctx, stores, affected)
	})
	if err != nil {
		return 0, asAppError(err, "failed to cancel reservations")
	}
	return cancelled, nil
}

// DeleteMany removes rows outright. It is not a state transition, but the
// derived availability of the affected books is still refreshed.
func (s *service) DeleteMany(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, apperrors.Validation("no reservation ids given")
	}

	var deleted int64
	err := s.uow.Do(ctx, func(stores Stores) error {
		affected, err := stores.Reservations.ListByIDs(ctx, ids)
		if err != nil {
			return apperrors.Internal("failed to load reservations", err)
		}
		deleted, err = stores.Reservations.DeleteByIDs(ctx, ids)
		if err != nil {
			return apperrors.Internal("failed to delete reservations", err)
		}
		return recomputeBooks(ctx, stores, affected)
	})
	if err != nil {
		return 0, asAppError(err, "failed to delete reservations")
	}

	s.log.InfoWithContext(ctx, "Reservations deleted", map[string]interface{}{
		"requested": len(ids),
		"deleted":   deleted,
	})
	return deleted, nil
}

// recomputeBooks visits each affected book once, in id order so concurrent
// bulk operations take the book row locks in the same order.
func recomputeBooks(ctx context.Context, stores Stores, affected []Reservation) error {
	seen := make(map[uuid.UUID]bool, len(affected))
	bookIDs := make([]uuid.UUID, 0, len(affected))
	for _, r := range affected {
		if !seen[r.BookID] {
			seen[r.BookID] = true
			bookIDs = append(bookIDs, r.BookID)
		}
	}
	sort.Slice(bookIDs, func(i, j int) bool { return bookIDs[i].String() < bookIDs[j].String() })

	ledger := ledgerFor(stores)
	for _, bookID := range bookIDs {
		if _, err := ledger.Recompute(ctx, bookID); err != nil {
			return apperrors.Internal("failed to update book availability", err)
		}
	}
	return nil
}

func (s *service) NotifyBatch(ctx context.Context, userID uuid.UUID, reservations []Reservation, batchID string) {
	if s.notifier == nil || len(reservations) == 0 {
		return
	}
	member, ok := s.lookupMember(ctx, userID)
	if !ok {
		return
	}
	s.notifier.SendBatchConfirmation(ctx, member, reservations, batchID)
}

func (s *service) notifyOne(ctx context.Context, reservation Reservation) {
	if s.notifier == nil {
		return
	}
	member, ok := s.lookupMember(ctx, reservation.UserID)
	if !ok {
		return
	}
	s.notifier.SendReservationConfirmation(ctx, member, reservation)
}

func (s *service) lookupMember(ctx context.Context, userID uuid.UUID) (*members.Member, bool) {
	member, err := s.members.GetByID(ctx, userID)
	if err != nil {
		s.log.WarnWithContext(ctx, "Skipping reservation notification", err, map[string]interface{}{
			"user_id": userID.String(),
		})
		return nil, false
	}
	return member, true
}

func (s *service) pickupLocation(value string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return s.opts.DefaultPickupLocation
}

func (s *service) pickupMethod(value string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return s.opts.DefaultPickupMethod
}

func asAppError(err error, msg string) error {
	if _, ok := apperrors.As(err); ok {
		return err
	}
	return apperrors.Internal(msg, err)
}
