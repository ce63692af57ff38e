package notifications

import (
	"context"
	"time"

	"shelfkeeper/internal/books"
	"shelfkeeper/internal/members"
	"shelfkeeper/internal/reservations"
	"shelfkeeper/pkg/logger"

	"github.com/google/uuid"
)

// BookDirectory fills in book details for reservations that were not loaded
// with their book.
type BookDirectory interface {
	GetByID(ctx context.Context, id uuid.UUID) (*books.Book, error)
}

type Enqueuer interface {
	Enqueue(ctx context.Context, notification *EmailNotification) bool
}

// Service builds confirmation mails and queues them. It satisfies
// reservations.Notifier; every failure is logged and swallowed.
type Service struct {
	queue    Enqueuer
	books    BookDirectory
	location *time.Location
	log      *logger.Logger
}

var _ reservations.Notifier = (*Service)(nil)

func NewService(queue Enqueuer, books BookDirectory, location *time.Location, log *logger.Logger) *Service {
	if location == nil {
		location = time.UTC
	}
	if log == nil {
		log = logger.GetDefault()
	}
	return &Service{
		queue:    queue,
		books:    books,
		location: location,
		log:      log.WithComponent("notifications"),
	}
}

func (s *Service) SendReservationConfirmation(ctx context.Context, member *members.Member, reservation reservations.Reservation) {
	if !s.canNotify(ctx, member) {
		return
	}

	lines := []reservationLine{newLine(reservation, s.bookFor(ctx, reservation), s.location)}
	subject, body, err := renderConfirmation(member.Name, lines)
	if err != nil {
		s.log.ErrorWithContext(ctx, "Failed to build reservation confirmation", err, nil)
		return
	}

	notification := NewNotificationBuilder().
		WithType(NotificationTypeReservationConfirmed).
		WithRecipient(member.ID, member.Email, member.Name).
		WithSubject(subject).
		WithBody(body).
		WithReservations(reservation.ID).
		Build()
	s.queue.Enqueue(ctx, notification)
}

func (s *Service) SendBatchConfirmation(ctx context.Context, member *members.Member, list []reservations.Reservation, batchID string) {
	if len(list) == 0 || !s.canNotify(ctx, member) {
		return
	}

	lines := make([]reservationLine, 0, len(list))
	ids := make([]uuid.UUID, 0, len(list))
	for _, reservation := range list {
		lines = append(lines, newLine(reservation, s.bookFor(ctx, reservation), s.location))
		ids = append(ids, reservation.ID)
	}

	subject, body, err := renderBatchConfirmation(member.Name, batchID, lines)
	if err != nil {
		s.log.ErrorWithContext(ctx, "Failed to build batch confirmation", err, map[string]interface{}{
			"batch_id": batchID,
		})
		return
	}

	notification := NewNotificationBuilder().
		WithType(NotificationTypeBatchReservationConfirmed).
		WithRecipient(member.ID, member.Email, member.Name).
		WithSubject(subject).
		WithBody(body).
		WithReservations(ids...).
		WithBatch(batchID).
		Build()
	s.queue.Enqueue(ctx, notification)
}

func (s *Service) canNotify(ctx context.Context, member *members.Member) bool {
	if member == nil || member.Email == "" {
		s.log.WarnWithContext(ctx, "Skipping notification for member without email", nil, nil)
		return false
	}
	return true
}

func (s *Service) bookFor(ctx context.Context, reservation reservations.Reservation) *books.Book {
	if reservation.Book != nil || s.books == nil {
		return reservation.Book
	}
	book, err := s.books.GetByID(ctx, reservation.BookID)
	if err != nil {
		s.log.WarnWithContext(ctx, "Book lookup failed for notification", err, map[string]interface{}{
			"book_id": reservation.BookID.String(),
		})
		return nil
	}
	return book
}
