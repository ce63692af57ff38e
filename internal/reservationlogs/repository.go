package reservationlogs

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	Create(ctx context.Context, log *ReservationLog) error
	GetByID(ctx context.Context, id uuid.UUID) (*ReservationLog, error)
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*ReservationLog, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]ReservationLog, error)
	MarkConfirmed(ctx context.Context, id uuid.UUID) error
	// A non-nil ownerID restricts deletes to that member's logs.
	Delete(ctx context.Context, id uuid.UUID, ownerID *uuid.UUID) error
	DeleteByIDs(ctx context.Context, ids []uuid.UUID, ownerID *uuid.UUID) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, log *ReservationLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*ReservationLog, error) {
	var log ReservationLog
	if err := r.db.WithContext(ctx).First(&log, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &log, nil
}

// GetByIDForUpdate must run inside a transaction to hold the row lock.
func (r *repository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*ReservationLog, error) {
	var log ReservationLog
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&log, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &log, nil
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]ReservationLog, error) {
	var logs []ReservationLog
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&logs).Error
	return logs, err
}

// MarkConfirmed only moves a PENDING log; a zero row count means the log was
// missing or already processed.
func (r *repository) MarkConfirmed(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Model(&ReservationLog{}).
		Where("id = ? AND status = ?", id, StatusPending).
		Update("status", StatusConfirmed)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID, ownerID *uuid.UUID) error {
	query := r.db.WithContext(ctx).Where("id = ?", id)
	if ownerID != nil {
		query = query.Where("user_id = ?", *ownerID)
	}
	result := query.Delete(&ReservationLog{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) DeleteByIDs(ctx context.Context, ids []uuid.UUID, ownerID *uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	query := r.db.WithContext(ctx).Where("id IN ?", ids)
	if ownerID != nil {
		query = query.Where("user_id = ?", *ownerID)
	}
	result := query.Delete(&ReservationLog{})
	return result.RowsAffected, result.Error
}
