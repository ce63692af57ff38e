package reservations

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type HistoryFilter struct {
	UserID           *uuid.UUID
	IncludeCancelled bool
}

type Repository interface {
	Create(ctx context.Context, reservation *Reservation) error
	GetByID(ctx context.Context, id uuid.UUID) (*Reservation, error)
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*Reservation, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Reservation, error)
	ListByBook(ctx context.Context, bookID uuid.UUID) ([]Reservation, error)
	History(ctx context.Context, filter HistoryFilter) ([]Reservation, error)

	ExistsPending(ctx context.Context, userID, bookID uuid.UUID) (bool, error)
	CountPendingByBook(ctx context.Context, bookID uuid.UUID) (int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status, at time.Time) error

	// Bulk operations used by the batch endpoints
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]Reservation, error)
	CancelMany(ctx context.Context, ids []uuid.UUID, at time.Time) (int64, error)
	DeleteByIDs(ctx context.Context, ids []uuid.UUID) (int64, error)

	CreateOverride(ctx context.Context, override *StatusOverride) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, reservation *Reservation) error {
	return r.db.WithContext(ctx).Omit("Book").Create(reservation).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Reservation, error) {
	var reservation Reservation
	err := r.db.WithContext(ctx).
		Preload("Book").
		Where("id = ?", id).
		First(&reservation).Error
	if err != nil {
		return nil, err
	}
	return &reservation, nil
}

func (r *repository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*Reservation, error) {
	var reservation Reservation
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&reservation).Error
	if err != nil {
		return nil, err
	}
	return &reservation, nil
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]Reservation, error) {
	var list []Reservation
	err := r.db.WithContext(ctx).
		Preload("Book").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&list).Error
	return list, err
}

func (r *repository) ListByBook(ctx context.Context, bookID uuid.UUID) ([]Reservation, error) {
	var list []Reservation
	err := r.db.WithContext(ctx).
		Where("book_id = ?", bookID).
		Order("created_at DESC").
		Find(&list).Error
	return list, err
}

func (r *repository) History(ctx context.Context, filter HistoryFilter) ([]Reservation, error) {
	query := r.db.WithContext(ctx).Model(&Reservation{}).Preload("Book")
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if !filter.IncludeCancelled {
		query = query.Where("status <> ?", StatusCancelled)
	}

	var list []Reservation
	err := query.Order("reserve_time DESC").Order("created_at DESC").Find(&list).Error
	return list, err
}

func (r *repository) ExistsPending(ctx context.Context, userID, bookID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Reservation{}).
		Where("user_id = ? AND book_id = ? AND status = ?", userID, bookID, StatusPending).
		Limit(1).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) CountPendingByBook(ctx context.Context, bookID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Reservation{}).
		Where("book_id = ? AND status = ?", bookID, StatusPending).
		Count(&count).Error
	return count, err
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, status Status, at time.Time) error {
	result := r.db.WithContext(ctx).Model(&Reservation{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": at,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]Reservation, error) {
	var list []Reservation
	if len(ids) == 0 {
		return list, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&list).Error
	return list, err
}

// CancelMany sets CANCELLED on every listed reservation still PENDING.
// Terminal rows are left alone so repeating the call is harmless.
func (r *repository) CancelMany(ctx context.Context, ids []uuid.UUID, at time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).Model(&Reservation{}).
		Where("id IN ? AND status = ?", ids, StatusPending).
		Updates(map[string]interface{}{
			"status":     StatusCancelled,
			"updated_at": at,
		})
	return result.RowsAffected, result.Error
}

func (r *repository) DeleteByIDs(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&Reservation{})
	return result.RowsAffected, result.Error
}

func (r *repository) CreateOverride(ctx context.Context, override *StatusOverride) error {
	return r.db.WithContext(ctx).Create(override).Error
}
