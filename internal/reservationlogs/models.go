package reservationlogs

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
)

const DefaultAction = "RESERVE"

// ReservationLog is a staged reservation intent. Confirming it spawns a book
// reservation and flips the log to CONFIRMED.
type ReservationLog struct {
	ID          uuid.UUID `json:"id" gorm:"primaryKey;type:uuid"`
	UserID      uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	BookID      uuid.UUID `json:"book_id" gorm:"type:uuid;not null;index"`
	Action      string    `json:"action" gorm:"type:varchar(30);not null"`
	Status      Status    `json:"status" gorm:"type:varchar(20);not null;default:'PENDING';check:status IN ('PENDING','CONFIRMED')"`
	ReserveTime time.Time `json:"reserve_time" gorm:"not null"`
	Message     string    `json:"message"`
	CreatedAt   time.Time `json:"created_at"`
}

func (ReservationLog) TableName() string {
	return "reservation_logs"
}

func (l *ReservationLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

func (l *ReservationLog) IsPending() bool {
	return l.Status == StatusPending
}
