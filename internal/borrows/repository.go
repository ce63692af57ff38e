package borrows

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository is the read side of the borrow ledger. Reservation flows consult
// it and never write to it.
type Repository interface {
	ExistsActiveBorrow(ctx context.Context, userID, bookID uuid.UUID) (bool, error)
	ExistsActiveBorrowForBook(ctx context.Context, bookID uuid.UUID) (bool, error)
	Create(ctx context.Context, borrow *Borrow) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) ExistsActiveBorrow(ctx context.Context, userID, bookID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Borrow{}).
		Where("user_id = ? AND book_id = ? AND returned_at IS NULL", userID, bookID).
		Limit(1).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) ExistsActiveBorrowForBook(ctx context.Context, bookID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Borrow{}).
		Where("book_id = ? AND returned_at IS NULL", bookID).
		Limit(1).
		Count(&count).Error
	return count > 0, err
}

// Create is used by seeding; the borrowing workflow itself lives elsewhere.
func (r *repository) Create(ctx context.Context, borrow *Borrow) error {
	return r.db.WithContext(ctx).Create(borrow).Error
}
