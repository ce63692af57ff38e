package seats

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SlotKey struct {
	SeatID uuid.UUID
	Date   time.Time
	Slot   TimeSlot
}

type Repository interface {
	// Transaction runs fn with a repository bound to one database transaction.
	Transaction(ctx context.Context, fn func(repo Repository) error) error

	ListSeats(ctx context.Context) ([]Seat, error)
	GetSeatByLabel(ctx context.Context, label string) (*Seat, error)
	UpdateSeatStatus(ctx context.Context, id uuid.UUID, status SeatStatus) error

	CreateReservation(ctx context.Context, reservation *SeatReservation) error
	ExistsReserved(ctx context.Context, key SlotKey) (bool, error)
	CancelByKey(ctx context.Context, key SlotKey, userID *uuid.UUID, at time.Time) (int64, error)
	ExistsReservedFrom(ctx context.Context, seatID uuid.UUID, from time.Time) (bool, error)
	OccupiedLabels(ctx context.Context, date time.Time, slot TimeSlot) ([]string, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]SeatReservation, error)

	// Sweep support: keyset paging over RESERVED rows by id.
	ListReservedAfter(ctx context.Context, after uuid.UUID, limit int) ([]SeatReservation, error)
	CancelReservedByIDs(ctx context.Context, ids []uuid.UUID, at time.Time) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Transaction(ctx context.Context, fn func(repo Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&repository{db: tx})
	})
}

func (r *repository) ListSeats(ctx context.Context) ([]Seat, error) {
	var seats []Seat
	err := r.db.WithContext(ctx).Order("label ASC").Find(&seats).Error
	return seats, err
}

func (r *repository) GetSeatByLabel(ctx context.Context, label string) (*Seat, error) {
	var seat Seat
	if err := r.db.WithContext(ctx).Where("label = ?", label).First(&seat).Error; err != nil {
		return nil, err
	}
	return &seat, nil
}

func (r *repository) UpdateSeatStatus(ctx context.Context, id uuid.UUID, status SeatStatus) error {
	result := r.db.WithContext(ctx).Model(&Seat{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) CreateReservation(ctx context.Context, reservation *SeatReservation) error {
	return r.db.WithContext(ctx).Omit("Seat").Create(reservation).Error
}

func (r *repository) keyScope(ctx context.Context, key SlotKey) *gorm.DB {
	return r.db.WithContext(ctx).Model(&SeatReservation{}).
		Where("seat_id = ? AND reservation_date = ? AND time_slot = ? AND status = ?",
			key.SeatID, formatDay(key.Date), key.Slot, ReservationReserved)
}

func (r *repository) ExistsReserved(ctx context.Context, key SlotKey) (bool, error) {
	var count int64
	err := r.keyScope(ctx, key).Limit(1).Count(&count).Error
	return count > 0, err
}

func (r *repository) CancelByKey(ctx context.Context, key SlotKey, userID *uuid.UUID, at time.Time) (int64, error) {
	query := r.keyScope(ctx, key)
	if userID != nil {
		query = query.Where("user_id = ?", *userID)
	}
	result := query.Updates(map[string]interface{}{
		"status":     ReservationCancelled,
		"updated_at": at,
	})
	return result.RowsAffected, result.Error
}

func (r *repository) ExistsReservedFrom(ctx context.Context, seatID uuid.UUID, from time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&SeatReservation{}).
		Where("seat_id = ? AND status = ? AND reservation_date >= ?", seatID, ReservationReserved, formatDay(from)).
		Limit(1).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) OccupiedLabels(ctx context.Context, date time.Time, slot TimeSlot) ([]string, error) {
	var labels []string
	err := r.db.WithContext(ctx).
		Table("seat_reservations AS sr").
		Joins("JOIN seats s ON s.id = sr.seat_id").
		Where("sr.reservation_date = ? AND sr.time_slot = ? AND sr.status = ?", formatDay(date), slot, ReservationReserved).
		Order("s.label ASC").
		Pluck("s.label", &labels).Error
	return labels, err
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]SeatReservation, error) {
	var list []SeatReservation
	err := r.db.WithContext(ctx).
		Preload("Seat").
		Where("user_id = ?", userID).
		Order("reservation_date DESC").
		Order("time_slot ASC").
		Find(&list).Error
	return list, err
}

func (r *repository) ListReservedAfter(ctx context.Context, after uuid.UUID, limit int) ([]SeatReservation, error) {
	var list []SeatReservation
	query := r.db.WithContext(ctx).Where("status = ?", ReservationReserved)
	if after != uuid.Nil {
		query = query.Where("id > ?", after)
	}
	err := query.Order("id ASC").Limit(limit).Find(&list).Error
	return list, err
}

func (r *repository) CancelReservedByIDs(ctx context.Context, ids []uuid.UUID, at time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).Model(&SeatReservation{}).
		Where("id IN ? AND status = ?", ids, ReservationReserved).
		Updates(map[string]interface{}{
			"status":     ReservationCancelled,
			"updated_at": at,
		})
	return result.RowsAffected, result.Error
}
