package reservations

import (
	"context"

	"shelfkeeper/internal/books"
	"shelfkeeper/internal/borrows"
	"shelfkeeper/internal/reservationlogs"

	"gorm.io/gorm"
)

// Stores are the repositories bound to one transaction.
type Stores struct {
	Reservations Repository
	Logs         reservationlogs.Repository
	Books        books.Repository
	Borrows      borrows.Repository
}

// UnitOfWork runs fn atomically. fn's error rolls everything back.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(stores Stores) error) error
}

type gormUnitOfWork struct {
	db *gorm.DB
}

func NewUnitOfWork(db *gorm.DB) UnitOfWork {
	return &gormUnitOfWork{db: db}
}

func (u *gormUnitOfWork) Do(ctx context.Context, fn func(stores Stores) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(Stores{
			Reservations: NewRepository(tx),
			Logs:         reservationlogs.NewRepository(tx),
			Books:        books.NewRepository(tx),
			Borrows:      borrows.NewRepository(tx),
		})
	})
}
