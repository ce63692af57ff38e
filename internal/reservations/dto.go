package reservations

import "github.com/google/uuid"

type CreateReservationRequest struct {
	BookID         uuid.UUID `json:"book_id"`
	ReserveTime    string    `json:"reserve_time"`
	PickupLocation string    `json:"pickup_location" binding:"max=100"`
	PickupMethod   string    `json:"pickup_method" binding:"max=50"`
}

type ConfirmFromLogRequest struct {
	LogID  uuid.UUID `json:"log_id" binding:"required"`
	BookID uuid.UUID `json:"book_id" binding:"required"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=PENDING CANCELLED COMPLETED"`
}
