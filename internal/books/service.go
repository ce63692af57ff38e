package books

import (
	"context"

	"shelfkeeper/internal/shared/constants"
	"shelfkeeper/internal/shared/utils/dberr"
	"shelfkeeper/pkg/apperrors"
	"shelfkeeper/pkg/cache"

	"github.com/google/uuid"
)

type Service interface {
	GetBook(ctx context.Context, id uuid.UUID) (*Book, error)
}

type service struct {
	repo  Repository
	cache cache.Service
}

// NewService builds the book lookup. cacheService may be nil, in which case
// every lookup reads the database.
func NewService(repo Repository, cacheService cache.Service) Service {
	return &service{repo: repo, cache: cacheService}
}

func (s *service) GetBook(ctx context.Context, id uuid.UUID) (*Book, error) {
	var (
		book *Book
		err  error
	)
	if s.cache == nil {
		book, err = s.repo.GetByID(ctx, id)
	} else {
		book = &Book{}
		err = s.cache.GetOrSet(ctx, constants.BuildBookSnapshotKey(id.String()), constants.TTL_BOOK_SNAPSHOT, func() (interface{}, error) {
			return s.repo.GetByID(ctx, id)
		}, book)
	}
	if err != nil {
		if dberr.IsNotFound(err) {
			return nil, apperrors.NotFound("book")
		}
		return nil, apperrors.Internal("failed to load book", err)
	}
	return book, nil
}
