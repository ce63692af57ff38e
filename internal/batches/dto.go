package batches

import "github.com/google/uuid"

type BatchItemRequest struct {
	BookID      uuid.UUID `json:"book_id"`
	ReserveTime *string   `json:"reserve_time"`
}

type CreateBatchRequest struct {
	Items          []BatchItemRequest `json:"items" binding:"required,min=1,max=50,dive"`
	PickupLocation string             `json:"pickup_location" binding:"max=100"`
	PickupMethod   string             `json:"pickup_method" binding:"max=50"`
}

type ReservationIDsRequest struct {
	ReservationIDs []uuid.UUID `json:"reservation_ids" binding:"required,min=1"`
}

const (
	ItemSuccess = "success"
	ItemFail    = "fail"
)

type ItemResult struct {
	BookID        uuid.UUID  `json:"book_id"`
	ReservationID *uuid.UUID `json:"reservation_id,omitempty"`
	Status        string     `json:"status"`
	Reason        string     `json:"reason,omitempty"`
}

type CreateBatchResult struct {
	Success bool         `json:"success"`
	BatchID string       `json:"batch_id"`
	Results []ItemResult `json:"results"`
}

type CancelItemResult struct {
	ReservationID uuid.UUID `json:"reservation_id"`
	Success       bool      `json:"success"`
	Message       string    `json:"message"`
}

type BatchCancelResult struct {
	Results        []CancelItemResult `json:"results"`
	SuccessCount   int                `json:"success_count"`
	FailCount      int                `json:"fail_count"`
	TotalRequested int                `json:"total_requested"`
	Message        string             `json:"message"`
}

type SimpleCancelResult struct {
	CancelledCount int64 `json:"cancelled_count"`
	TotalRequested int   `json:"total_requested"`
}

type DeleteResult struct {
	DeletedCount   int64 `json:"deleted_count"`
	TotalRequested int   `json:"total_requested"`
}
