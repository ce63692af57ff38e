package seats

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// memoryRepository serializes transactions and enforces the partial unique
// index on RESERVED rows, mirroring what Postgres guarantees.
type memoryRepository struct {
	txMu sync.Mutex
	mu   sync.Mutex

	seats        map[uuid.UUID]*Seat
	reservations map[uuid.UUID]*SeatReservation

	// skipExistsCheck forces racing inserts down to the unique index.
	skipExistsCheck bool
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{
		seats:        map[uuid.UUID]*Seat{},
		reservations: map[uuid.UUID]*SeatReservation{},
	}
}

func (m *memoryRepository) addSeat(label string, status SeatStatus) *Seat {
	seat := &Seat{ID: uuid.New(), Label: label, Status: status}
	m.seats[seat.ID] = seat
	return seat
}

func (m *memoryRepository) addReservation(seat *Seat, day time.Time, slot TimeSlot, status ReservationStatus) *SeatReservation {
	r := &SeatReservation{ID: uuid.New(), UserID: uuid.New(), SeatID: seat.ID, ReservationDate: Day(day), TimeSlot: slot, Status: status}
	m.reservations[r.ID] = r
	return r
}

func (m *memoryRepository) reservedCount(key SlotKey) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, r := range m.reservations {
		if r.matches(key) && r.Status == ReservationReserved {
			n++
		}
	}
	return n
}

func (r *SeatReservation) matches(key SlotKey) bool {
	return r.SeatID == key.SeatID && r.ReservationDate.Equal(Day(key.Date)) && r.TimeSlot == key.Slot
}

func (m *memoryRepository) Transaction(ctx context.Context, fn func(repo Repository) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()
	return fn(m)
}

func (m *memoryRepository) ListSeats(ctx context.Context) ([]Seat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Seat
	for _, s := range m.seats {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out, nil
}

func (m *memoryRepository) GetSeatByLabel(ctx context.Context, label string) (*Seat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.seats {
		if s.Label == label {
			copied := *s
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memoryRepository) UpdateSeatStatus(ctx context.Context, id uuid.UUID, status SeatStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.seats[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	s.Status = status
	return nil
}

func (m *memoryRepository) CreateReservation(ctx context.Context, reservation *SeatReservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := SlotKey{SeatID: reservation.SeatID, Date: reservation.ReservationDate, Slot: reservation.TimeSlot}
	for _, r := range m.reservations {
		if r.matches(key) && r.Status == ReservationReserved {
			return gorm.ErrDuplicatedKey
		}
	}
	if reservation.ID == uuid.Nil {
		reservation.ID = uuid.New()
	}
	copied := *reservation
	m.reservations[reservation.ID] = &copied
	return nil
}

func (m *memoryRepository) ExistsReserved(ctx context.Context, key SlotKey) (bool, error) {
	if m.skipExistsCheck {
		return false, nil
	}
	return m.reservedCount(key) > 0, nil
}

func (m *memoryRepository) CancelByKey(ctx context.Context, key SlotKey, userID *uuid.UUID, at time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, r := range m.reservations {
		if !r.matches(key) || r.Status != ReservationReserved {
			continue
		}
		if userID != nil && r.UserID != *userID {
			continue
		}
		r.Status = ReservationCancelled
		r.UpdatedAt = at
		n++
	}
	return n, nil
}

func (m *memoryRepository) ExistsReservedFrom(ctx context.Context, seatID uuid.UUID, from time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.reservations {
		if r.SeatID == seatID && r.Status == ReservationReserved && !r.ReservationDate.Before(Day(from)) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryRepository) OccupiedLabels(ctx context.Context, date time.Time, slot TimeSlot) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var labels []string
	for _, r := range m.reservations {
		if r.Status == ReservationReserved && r.ReservationDate.Equal(Day(date)) && r.TimeSlot == slot {
			labels = append(labels, m.seats[r.SeatID].Label)
		}
	}
	sort.Strings(labels)
	return labels, nil
}

func (m *memoryRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]SeatReservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []SeatReservation
	for _, r := range m.reservations {
		if r.UserID == userID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *memoryRepository) ListReservedAfter(ctx context.Context, after uuid.UUID, limit int) ([]SeatReservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []SeatReservation
	for _, r := range m.reservations {
		if r.Status != ReservationReserved {
			continue
		}
		if after != uuid.Nil && r.ID.String() <= after.String() {
			continue
		}
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memoryRepository) CancelReservedByIDs(ctx context.Context, ids []uuid.UUID, at time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, id := range ids {
		if r, ok := m.reservations[id]; ok && r.Status == ReservationReserved {
			r.Status = ReservationCancelled
			r.UpdatedAt = at
			n++
		}
	}
	return n, nil
}
