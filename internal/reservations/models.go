package reservations

import (
	"time"

	"shelfkeeper/internal/books"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// HoldDays is how long a book reservation stays claimable after its reserve
// time.
const HoldDays = 3

type Reservation struct {
	ID             uuid.UUID   `json:"id" gorm:"primaryKey;type:uuid"`
	UserID         uuid.UUID   `json:"user_id" gorm:"type:uuid;not null;index"`
	BookID         uuid.UUID   `json:"book_id" gorm:"type:uuid;not null;index"`
	ReserveTime    time.Time   `json:"reserve_time" gorm:"not null"`
	ExpiryDate     time.Time   `json:"expiry_date" gorm:"not null"`
	Status         Status      `json:"status" gorm:"type:varchar(20);not null;default:'PENDING';check:status IN ('PENDING','CANCELLED','COMPLETED')"`
	BatchID        *string     `json:"batch_id,omitempty" gorm:"type:varchar(40);index"`
	PickupLocation string      `json:"pickup_location" gorm:"type:varchar(100)"`
	PickupMethod   string      `json:"pickup_method" gorm:"type:varchar(50)"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
	Book           *books.Book `json:"book,omitempty" gorm:"foreignKey:BookID"`
}

func (Reservation) TableName() string {
	return "book_reservations"
}

func (r *Reservation) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// ExpiryFor returns the pickup deadline for a hold placed at reserveTime.
func ExpiryFor(reserveTime time.Time) time.Time {
	return reserveTime.AddDate(0, 0, HoldDays)
}

// StatusOverride records every administrative status write that bypassed the
// guarded transitions.
type StatusOverride struct {
	ID            uuid.UUID `json:"id" gorm:"primaryKey;type:uuid"`
	ReservationID uuid.UUID `json:"reservation_id" gorm:"type:uuid;not null;index"`
	FromStatus    Status    `json:"from_status" gorm:"type:varchar(20);not null"`
	ToStatus      Status    `json:"to_status" gorm:"type:varchar(20);not null"`
	ActorID       uuid.UUID `json:"actor_id" gorm:"type:uuid;not null"`
	CreatedAt     time.Time `json:"created_at"`
}

func (StatusOverride) TableName() string {
	return "reservation_status_overrides"
}

func (o *StatusOverride) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
