package reservationlogs

import (
	"context"
	"strings"
	"time"

	"shelfkeeper/internal/books"
	"shelfkeeper/internal/shared/utils/dberr"
	"shelfkeeper/pkg/apperrors"

	"github.com/google/uuid"
)

// BookDirectory is the part of the catalog the log store reads
type BookDirectory interface {
	GetByID(ctx context.Context, id uuid.UUID) (*books.Book, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]books.Book, error)
}

type Service interface {
	Create(ctx context.Context, input CreateInput) (*ReservationLog, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]LogView, error)
	Delete(ctx context.Context, caller Caller, id uuid.UUID) error
	BatchDelete(ctx context.Context, caller Caller, ids []uuid.UUID) (*BatchDeleteResult, error)
}

// Caller limits deletes to the caller's own logs unless Admin is set.
type Caller struct {
	UserID uuid.UUID
	Admin  bool
}

func (c Caller) owner() (*uuid.UUID, error) {
	if c.Admin {
		return nil, nil
	}
	if c.UserID == uuid.Nil {
		return nil, apperrors.Validation("user identity is required")
	}
	id := c.UserID
	return &id, nil
}

type CreateInput struct {
	UserID      uuid.UUID
	BookID      uuid.UUID
	Action      string
	Status      Status
	ReserveTime *time.Time
	Message     string
}

type service struct {
	repo  Repository
	books BookDirectory
	now   func() time.Time
}

func NewService(repo Repository, books BookDirectory) Service {
	return &service{repo: repo, books: books, now: time.Now}
}

func (s *service) Create(ctx context.Context, input CreateInput) (*ReservationLog, error) {
	if input.UserID == uuid.Nil {
		return nil, apperrors.Validation("user identity is required")
	}
	if input.BookID == uuid.Nil {
		return nil, apperrors.Validation("missing data")
	}
	if input.Status != "" && input.Status != StatusPending {
		return nil, apperrors.Validation("a new reservation log must be PENDING")
	}

	if _, err := s.books.GetByID(ctx, input.BookID); err != nil {
		if dberr.IsNotFound(err) {
			return nil, apperrors.NotFound("book")
		}
		return nil, apperrors.Internal("failed to load book", err)
	}

	action := strings.TrimSpace(input.Action)
	if action == "" {
		action = DefaultAction
	}
	reserveTime := s.now()
	if input.ReserveTime != nil && !input.ReserveTime.IsZero() {
		reserveTime = *input.ReserveTime
	}

	log := &ReservationLog{
		UserID:      input.UserID,
		BookID:      input.BookID,
		Action:      action,
		Status:      StatusPending,
		ReserveTime: reserveTime,
		Message:     input.Message,
	}
	if err := s.repo.Create(ctx, log); err != nil {
		return nil, apperrors.Internal("failed to create reservation log", err)
	}
	return log, nil
}

func (s *service) ListByUser(ctx context.Context, userID uuid.UUID) ([]LogView, error) {
	if userID == uuid.Nil {
		return nil, apperrors.Validation("user identity is required")
	}

	logs, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal("failed to list reservation logs", err)
	}

	ids := make([]uuid.UUID, 0, len(logs))
	seen := make(map[uuid.UUID]bool, len(logs))
	for _, l := range logs {
		if !seen[l.BookID] {
			seen[l.BookID] = true
			ids = append(ids, l.BookID)
		}
	}
	catalog, err := s.books.GetByIDs(ctx, ids)
	if err != nil {
		return nil, apperrors.Internal("failed to load books", err)
	}
	byID := make(map[uuid.UUID]books.Book, len(catalog))
	for _, b := range catalog {
		byID[b.ID] = b
	}

	views := make([]LogView, 0, len(logs))
	for _, l := range logs {
		view := LogView{ReservationLog: l}
		if b, ok := byID[l.BookID]; ok {
			view.BookTitle = b.Title
			view.BookAuthor = b.Author
			view.BookISBN = b.ISBN
		}
		views = append(views, view)
	}
	return views, nil
}

// Delete reports another member's log as not found.
func (s *service) Delete(ctx context.Context, caller Caller, id uuid.UUID) error {
	owner, err := caller.owner()
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id, owner); err != nil {
		if dberr.IsNotFound(err) {
			return apperrors.NotFound("reservation log")
		}
		return apperrors.Internal("failed to delete reservation log", err)
	}
	return nil
}

// BatchDelete skips ids the caller does not own; they are left out of
// deleted_count.
func (s *service) BatchDelete(ctx context.Context, caller Caller, ids []uuid.UUID) (*BatchDeleteResult, error) {
	owner, err := caller.owner()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, apperrors.Validation("no reservation log ids given")
	}
	deleted, err := s.repo.DeleteByIDs(ctx, ids, owner)
	if err != nil {
		return nil, apperrors.Internal("failed to delete reservation logs", err)
	}
	return &BatchDeleteResult{
		DeletedCount:   deleted,
		TotalRequested: len(ids),
	}, nil
}
