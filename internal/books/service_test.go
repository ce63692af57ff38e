package books

import (
	"context"
	"errors"
	"testing"

	"shelfkeeper/internal/shared/constants"
	"shelfkeeper/pkg/apperrors"
	"shelfkeeper/pkg/cache"
	"shelfkeeper/pkg/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type mockRepository struct {
	getByIDFunc func(ctx context.Context, id uuid.UUID) (*Book, error)
}

func (m *mockRepository) GetByID(ctx context.Context, id uuid.UUID) (*Book, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]Book, error) {
	return nil, nil
}

func (m *mockRepository) LockForUpdate(ctx context.Context, id uuid.UUID) error {
	return nil
}

func (m *mockRepository) SetAvailable(ctx context.Context, id uuid.UUID, available bool) error {
	return nil
}

func (m *mockRepository) Create(ctx context.Context, book *Book) error {
	return nil
}

func TestGetBook(t *testing.T) {
	id := uuid.New()

	t.Run("found", func(t *testing.T) {
		svc := NewService(&mockRepository{getByIDFunc: func(ctx context.Context, got uuid.UUID) (*Book, error) {
			return &Book{ID: got, Title: "Dune"}, nil
		}}, nil)

		book, err := svc.GetBook(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, "Dune", book.Title)
	})

	t.Run("not found", func(t *testing.T) {
		svc := NewService(&mockRepository{getByIDFunc: func(ctx context.Context, got uuid.UUID) (*Book, error) {
			return nil, gorm.ErrRecordNotFound
		}}, nil)

		_, err := svc.GetBook(context.Background(), id)
		assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
	})

	t.Run("datastore failure", func(t *testing.T) {
		svc := NewService(&mockRepository{getByIDFunc: func(ctx context.Context, got uuid.UUID) (*Book, error) {
			return nil, errors.New("connection refused")
		}}, nil)

		_, err := svc.GetBook(context.Background(), id)
		assert.True(t, apperrors.IsCode(err, apperrors.CodeInternal))
	})
}

func TestGetBook_CachedSnapshot(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	calls := 0
	repo := &mockRepository{getByIDFunc: func(ctx context.Context, got uuid.UUID) (*Book, error) {
		calls++
		return &Book{ID: got, Title: "Dune", ISBN: "9780441013593", IsAvailable: true}, nil
	}}
	svc := NewService(repo, cache.NewService(client, logger.Discard()))
	id := uuid.New()

	for i := 0; i < 3; i++ {
		book, err := svc.GetBook(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, id, book.ID)
		assert.Equal(t, "Dune", book.Title)
		assert.True(t, book.IsAvailable)
	}
	assert.Equal(t, 1, calls)
	assert.True(t, mr.Exists(constants.BuildBookSnapshotKey(id.String())))
}

func TestGetBook_CachedNotFoundIsNotStored(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	svc := NewService(&mockRepository{getByIDFunc: func(ctx context.Context, got uuid.UUID) (*Book, error) {
		return nil, gorm.ErrRecordNotFound
	}}, cache.NewService(client, logger.Discard()))

	_, err := svc.GetBook(context.Background(), uuid.New())
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
	assert.Empty(t, mr.Keys())
}
