package reservationlogs

import "github.com/google/uuid"

type CreateLogRequest struct {
	BookID      uuid.UUID `json:"book_id" binding:"required"`
	Action      string    `json:"action" binding:"omitempty,max=30"`
	Status      string    `json:"status" binding:"omitempty,oneof=PENDING"`
	ReserveTime string    `json:"reserve_time"`
	Message     string    `json:"message" binding:"max=500"`
}

type BatchDeleteRequest struct {
	IDs []uuid.UUID `json:"ids" binding:"required,min=1"`
}

// LogView is a log enriched with the catalog fields shown in listings
type LogView struct {
	ReservationLog
	BookTitle  string `json:"book_title,omitempty"`
	BookAuthor string `json:"book_author,omitempty"`
	BookISBN   string `json:"book_isbn,omitempty"`
}

type BatchDeleteResult struct {
	DeletedCount   int64 `json:"deleted_count"`
	TotalRequested int   `json:"total_requested"`
}
