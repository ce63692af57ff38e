package seats

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SeatStatus string

const (
	SeatAvailable SeatStatus = "AVAILABLE"
	SeatBroken    SeatStatus = "BROKEN"
)

type ReservationStatus string

const (
	ReservationReserved  ReservationStatus = "RESERVED"
	ReservationCancelled ReservationStatus = "CANCELLED"
)

type Seat struct {
	ID        uuid.UUID  `json:"id" gorm:"primaryKey;type:uuid"`
	Label     string     `json:"label" gorm:"type:varchar(20);uniqueIndex;not null"`
	Zone      string     `json:"zone,omitempty" gorm:"type:varchar(50)"`
	Status    SeatStatus `json:"status" gorm:"type:varchar(20);not null;default:'AVAILABLE';check:status IN ('AVAILABLE','BROKEN')"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (Seat) TableName() string {
	return "seats"
}

func (s *Seat) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// SeatReservation holds one seat for one time slot on one day. At most one
// RESERVED row may exist per (seat_id, reservation_date, time_slot).
type SeatReservation struct {
	ID              uuid.UUID         `json:"id" gorm:"primaryKey;type:uuid"`
	UserID          uuid.UUID         `json:"user_id" gorm:"type:uuid;not null;index"`
	SeatID          uuid.UUID         `json:"seat_id" gorm:"type:uuid;not null"`
	ReservationDate time.Time         `json:"reservation_date" gorm:"type:date;not null"`
	TimeSlot        TimeSlot          `json:"time_slot" gorm:"type:varchar(20);not null"`
	Status          ReservationStatus `json:"status" gorm:"type:varchar(20);not null;default:'RESERVED';check:status IN ('RESERVED','CANCELLED')"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
	Seat            *Seat             `json:"seat,omitempty" gorm:"foreignKey:SeatID"`
}

func (SeatReservation) TableName() string {
	return "seat_reservations"
}

func (r *SeatReservation) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// Day is a calendar date with no time of day. It is carried as UTC midnight
// so that the date column round-trips unchanged.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func formatDay(t time.Time) string {
	return t.Format("2006-01-02")
}
