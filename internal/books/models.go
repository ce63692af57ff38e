package books

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Book struct {
	ID             uuid.UUID `json:"id" gorm:"primaryKey;type:uuid"`
	ISBN           string    `json:"isbn" gorm:"type:varchar(20);index"`
	Title          string    `json:"title" gorm:"not null"`
	Author         string    `json:"author"`
	Publisher      string    `json:"publisher"`
	Classification string    `json:"classification" gorm:"type:varchar(50)"`
	IsAvailable    bool      `json:"is_available" gorm:"not null;default:true"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (Book) TableName() string {
	return "books"
}

func (b *Book) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
