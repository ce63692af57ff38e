package books

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository is the book directory. The only write other packages perform is
// the availability flag.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Book, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]Book, error)
	LockForUpdate(ctx context.Context, id uuid.UUID) error
	SetAvailable(ctx context.Context, id uuid.UUID, available bool) error
	Create(ctx context.Context, book *Book) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Book, error) {
	var book Book
	if err := r.db.WithContext(ctx).First(&book, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &book, nil
}

func (r *repository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]Book, error) {
	var books []Book
	if len(ids) == 0 {
		return books, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&books).Error
	return books, err
}

// LockForUpdate takes the row lock on the book for the rest of the
// surrounding transaction.
func (r *repository) LockForUpdate(ctx context.Context, id uuid.UUID) error {
	var book Book
	return r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		First(&book, "id = ?", id).Error
}

func (r *repository) SetAvailable(ctx context.Context, id uuid.UUID, available bool) error {
	result := r.db.WithContext(ctx).Model(&Book{}).
		Where("id = ?", id).
		Update("is_available", available)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) Create(ctx context.Context, book *Book) error {
	return r.db.WithContext(ctx).Create(book).Error
}
