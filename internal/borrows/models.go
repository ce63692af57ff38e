package borrows

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Borrow is one checkout of a book. It is active until ReturnedAt is set.
type Borrow struct {
	ID         uuid.UUID  `json:"id" gorm:"primaryKey;type:uuid"`
	UserID     uuid.UUID  `json:"user_id" gorm:"type:uuid;index;not null"`
	BookID     uuid.UUID  `json:"book_id" gorm:"type:uuid;index;not null"`
	BorrowedAt time.Time  `json:"borrowed_at" gorm:"not null"`
	DueAt      *time.Time `json:"due_at,omitempty"`
	ReturnedAt *time.Time `json:"returned_at,omitempty" gorm:"index"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func (Borrow) TableName() string {
	return "borrows"
}

func (b *Borrow) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

func (b *Borrow) IsActive() bool {
	return b.ReturnedAt == nil
}
