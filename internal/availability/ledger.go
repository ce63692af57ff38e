// Package availability derives whether a book or a seat can currently be
// claimed. It reads reservation and borrow state and writes back only the
// derived flags; it never changes a reservation's lifecycle.
package availability

import (
	"context"
	"fmt"
	"time"

	"shelfkeeper/pkg/apperrors"

	"github.com/google/uuid"
)

type PendingReservationCounter interface {
	CountPendingByBook(ctx context.Context, bookID uuid.UUID) (int64, error)
}

type ActiveBorrowChecker interface {
	ExistsActiveBorrowForBook(ctx context.Context, bookID uuid.UUID) (bool, error)
}

// BookFlagWriter writes the derived flag. LockForUpdate must hold the book
// row until the surrounding transaction ends.
type BookFlagWriter interface {
	LockForUpdate(ctx context.Context, bookID uuid.UUID) error
	SetAvailable(ctx context.Context, bookID uuid.UUID, available bool) error
}

// BookLedger is bound to the stores of one unit of work so that the flag
// write commits or rolls back with the reservation change that caused it.
// Every read-then-write on a book's flag runs under that book's row lock, so
// concurrent holds and cancels on one book are serialized.
type BookLedger struct {
	reservations PendingReservationCounter
	borrows      ActiveBorrowChecker
	books        BookFlagWriter
}

func NewBookLedger(reservations PendingReservationCounter, borrows ActiveBorrowChecker, books BookFlagWriter) *BookLedger {
	return &BookLedger{
		reservations: reservations,
		borrows:      borrows,
		books:        books,
	}
}

// Claim marks the book unavailable after a new pending hold.
func (l *BookLedger) Claim(ctx context.Context, bookID uuid.UUID) error {
	if err := l.books.LockForUpdate(ctx, bookID); err != nil {
		return fmt.Errorf("lock book %s: %w", bookID, err)
	}
	if err := l.books.SetAvailable(ctx, bookID, false); err != nil {
		return fmt.Errorf("claim book %s: %w", bookID, err)
	}
	return nil
}

// Recompute sets the flag from current state: available when no reservation
// is pending and no copy is out on loan. It returns the value written.
func (l *BookLedger) Recompute(ctx context.Context, bookID uuid.UUID) (bool, error) {
	if err := l.books.LockForUpdate(ctx, bookID); err != nil {
		return false, fmt.Errorf("lock book %s: %w", bookID, err)
	}

	pending, err := l.reservations.CountPendingByBook(ctx, bookID)
	if err != nil {
		return false, fmt.Errorf("count pending reservations for book %s: %w", bookID, err)
	}

	available := pending == 0
	if available && l.borrows != nil {
		borrowed, err := l.borrows.ExistsActiveBorrowForBook(ctx, bookID)
		if err != nil {
			return false, fmt.Errorf("check active borrows for book %s: %w", bookID, err)
		}
		available = !borrowed
	}

	if err := l.books.SetAvailable(ctx, bookID, available); err != nil {
		return false, fmt.Errorf("write availability for book %s: %w", bookID, err)
	}
	return available, nil
}

type UpcomingSeatReservations interface {
	ExistsReservedFrom(ctx context.Context, seatID uuid.UUID, from time.Time) (bool, error)
}

// SeatGate guards the BROKEN -> AVAILABLE transition of a seat.
type SeatGate struct {
	reservations UpcomingSeatReservations
}

func NewSeatGate(reservations UpcomingSeatReservations) *SeatGate {
	return &SeatGate{reservations: reservations}
}

// CheckMarkAvailable fails with a conflict when the seat still has a RESERVED
// reservation dated today or later.
func (g *SeatGate) CheckMarkAvailable(ctx context.Context, seatID uuid.UUID, today time.Time) error {
	upcoming, err := g.reservations.ExistsReservedFrom(ctx, seatID, today)
	if err != nil {
		return apperrors.Internal("failed to check upcoming seat reservations", err)
	}
	if upcoming {
		return apperrors.Conflict("seat has upcoming reservation")
	}
	return nil
}
