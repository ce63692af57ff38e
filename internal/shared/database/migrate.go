package database

import (
	"shelfkeeper/internal/books"
	"shelfkeeper/internal/borrows"
	"shelfkeeper/internal/members"
	"shelfkeeper/internal/reservationlogs"
	"shelfkeeper/internal/reservations"
	"shelfkeeper/internal/seats"

	"gorm.io/gorm"
)

// Models lists every table in creation order.
func Models() []interface{} {
	return []interface{}{
		&members.Member{},
		&books.Book{},
		&borrows.Borrow{},
		&reservations.Reservation{},
		&reservations.StatusOverride{},
		&reservationlogs.ReservationLog{},
		&seats.Seat{},
		&seats.SeatReservation{},
	}
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
