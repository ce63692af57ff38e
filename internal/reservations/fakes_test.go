package reservations

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"shelfkeeper/internal/books"
	"shelfkeeper/internal/borrows"
	"shelfkeeper/internal/members"
	"shelfkeeper/internal/reservationlogs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// memoryDB backs every fake repository so the fake unit of work can roll
// back all of them together.
type memoryDB struct {
	reservations map[uuid.UUID]Reservation
	overrides    []StatusOverride
	logs         map[uuid.UUID]reservationlogs.ReservationLog
	books        map[uuid.UUID]books.Book
	borrows      []borrows.Borrow
	lockedBooks  []uuid.UUID

	createErr       error
	setAvailableErr error
}

func newMemoryDB() *memoryDB {
	return &memoryDB{
		reservations: map[uuid.UUID]Reservation{},
		logs:         map[uuid.UUID]reservationlogs.ReservationLog{},
		books:        map[uuid.UUID]books.Book{},
	}
}

func (m *memoryDB) snapshot() *memoryDB {
	c := *m
	c.reservations = make(map[uuid.UUID]Reservation, len(m.reservations))
	for k, v := range m.reservations {
		c.reservations[k] = v
	}
	c.logs = make(map[uuid.UUID]reservationlogs.ReservationLog, len(m.logs))
	for k, v := range m.logs {
		c.logs[k] = v
	}
	c.books = make(map[uuid.UUID]books.Book, len(m.books))
	for k, v := range m.books {
		c.books[k] = v
	}
	c.overrides = append([]StatusOverride(nil), m.overrides...)
	return &c
}

func (m *memoryDB) restore(s *memoryDB) {
	m.reservations = s.reservations
	m.logs = s.logs
	m.books = s.books
	m.overrides = s.overrides
}

func (m *memoryDB) addBook(title string) books.Book {
	b := books.Book{ID: uuid.New(), Title: title, IsAvailable: true}
	m.books[b.ID] = b
	return b
}

type fakeUnitOfWork struct {
	mu sync.Mutex
	db *memoryDB
}

func (u *fakeUnitOfWork) Do(ctx context.Context, fn func(stores Stores) error) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	saved := u.db.snapshot()
	err := fn(u.db.stores())
	if err != nil {
		u.db.restore(saved)
	}
	return err
}

func (m *memoryDB) stores() Stores {
	return Stores{
		Reservations: &memoryReservations{db: m},
		Logs:         &memoryLogs{db: m},
		Books:        &memoryBooks{db: m},
		Borrows:      &memoryBorrows{db: m},
	}
}

type memoryReservations struct{ db *memoryDB }

func (r *memoryReservations) Create(ctx context.Context, reservation *Reservation) error {
	if r.db.createErr != nil {
		return r.db.createErr
	}
	if reservation.ID == uuid.Nil {
		reservation.ID = uuid.New()
	}
	reservation.CreatedAt = time.Now()
	reservation.UpdatedAt = reservation.CreatedAt
	stored := *reservation
	stored.Book = nil
	r.db.reservations[reservation.ID] = stored
	return nil
}

func (r *memoryReservations) GetByID(ctx context.Context, id uuid.UUID) (*Reservation, error) {
	res, ok := r.db.reservations[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &res, nil
}

func (r *memoryReservations) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*Reservation, error) {
	return r.GetByID(ctx, id)
}

func (r *memoryReservations) filter(keep func(Reservation) bool) []Reservation {
	var out []Reservation
	for _, res := range r.db.reservations {
		if keep(res) {
			out = append(out, res)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ReserveTime.After(out[j].ReserveTime) })
	return out
}

func (r *memoryReservations) ListByUser(ctx context.Context, userID uuid.UUID) ([]Reservation, error) {
	return r.filter(func(res Reservation) bool { return res.UserID == userID }), nil
}

func (r *memoryReservations) ListByBook(ctx context.Context, bookID uuid.UUID) ([]Reservation, error) {
	return r.filter(func(res Reservation) bool { return res.BookID == bookID }), nil
}

func (r *memoryReservations) History(ctx context.Context, f HistoryFilter) ([]Reservation, error) {
	return r.filter(func(res Reservation) bool {
		if f.UserID != nil && res.UserID != *f.UserID {
			return false
		}
		return f.IncludeCancelled || res.Status != StatusCancelled
	}), nil
}

func (r *memoryReservations) ExistsPending(ctx context.Context, userID, bookID uuid.UUID) (bool, error) {
	for _, res := range r.db.reservations {
		if res.UserID == userID && res.BookID == bookID && res.Status == StatusPending {
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryReservations) CountPendingByBook(ctx context.Context, bookID uuid.UUID) (int64, error) {
	var n int64
	for _, res := range r.db.reservations {
		if res.BookID == bookID && res.Status == StatusPending {
			n++
		}
	}
	return n, nil
}

func (r *memoryReservations) UpdateStatus(ctx context.Context, id uuid.UUID, status Status, at time.Time) error {
	res, ok := r.db.reservations[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if status == StatusPending {
		for otherID, other := range r.db.reservations {
			if otherID != id && other.UserID == res.UserID && other.BookID == res.BookID && other.Status == StatusPending {
				return gorm.ErrDuplicatedKey
			}
		}
	}
	res.Status = status
	res.UpdatedAt = at
	r.db.reservations[id] = res
	return nil
}

func (r *memoryReservations) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]Reservation, error) {
	var out []Reservation
	for _, id := range ids {
		if res, ok := r.db.reservations[id]; ok {
			out = append(out, res)
		}
	}
	return out, nil
}

func (r *memoryReservations) CancelMany(ctx context.Context, ids []uuid.UUID, at time.Time) (int64, error) {
	var n int64
	for _, id := range ids {
		res, ok := r.db.reservations[id]
		if !ok || res.Status != StatusPending {
			continue
		}
		res.Status = StatusCancelled
		res.UpdatedAt = at
		r.db.reservations[id] = res
		n++
	}
	return n, nil
}

func (r *memoryReservations) DeleteByIDs(ctx context.Context, ids []uuid.UUID) (int64, error) {
	var n int64
	for _, id := range ids {
		if _, ok := r.db.reservations[id]; ok {
			delete(r.db.reservations, id)
			n++
		}
	}
	return n, nil
}

func (r *memoryReservations) CreateOverride(ctx context.Context, o *StatusOverride) error {
	r.db.overrides = append(r.db.overrides, *o)
	return nil
}

type memoryLogs struct{ db *memoryDB }

func (l *memoryLogs) Create(ctx context.Context, log *reservationlogs.ReservationLog) error {
	if log.ID == uuid.Nil {
		log.ID = uuid.New()
	}
	l.db.logs[log.ID] = *log
	return nil
}

func (l *memoryLogs) GetByID(ctx context.Context, id uuid.UUID) (*reservationlogs.ReservationLog, error) {
	log, ok := l.db.logs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &log, nil
}

func (l *memoryLogs) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*reservationlogs.ReservationLog, error) {
	return l.GetByID(ctx, id)
}

func (l *memoryLogs) ListByUser(ctx context.Context, userID uuid.UUID) ([]reservationlogs.ReservationLog, error) {
	var out []reservationlogs.ReservationLog
	for _, log := range l.db.logs {
		if log.UserID == userID {
			out = append(out, log)
		}
	}
	return out, nil
}

func (l *memoryLogs) MarkConfirmed(ctx context.Context, id uuid.UUID) error {
	log, ok := l.db.logs[id]
	if !ok || log.Status != reservationlogs.StatusPending {
		return gorm.ErrRecordNotFound
	}
	log.Status = reservationlogs.StatusConfirmed
	l.db.logs[id] = log
	return nil
}

func (l *memoryLogs) Delete(ctx context.Context, id uuid.UUID, ownerID *uuid.UUID) error {
	delete(l.db.logs, id)
	return nil
}

func (l *memoryLogs) DeleteByIDs(ctx context.Context, ids []uuid.UUID, ownerID *uuid.UUID) (int64, error) {
	for _, id := range ids {
		delete(l.db.logs, id)
	}
	return int64(len(ids)), nil
}

type memoryBooks struct{ db *memoryDB }

func (b *memoryBooks) GetByID(ctx context.Context, id uuid.UUID) (*books.Book, error) {
	book, ok := b.db.books[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &book, nil
}

func (b *memoryBooks) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]books.Book, error) {
	var out []books.Book
	for _, id := range ids {
		if book, ok := b.db.books[id]; ok {
			out = append(out, book)
		}
	}
	return out, nil
}

func (b *memoryBooks) LockForUpdate(ctx context.Context, id uuid.UUID) error {
	if _, ok := b.db.books[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	b.db.lockedBooks = append(b.db.lockedBooks, id)
	return nil
}

func (b *memoryBooks) SetAvailable(ctx context.Context, id uuid.UUID, available bool) error {
	if b.db.setAvailableErr != nil {
		return b.db.setAvailableErr
	}
	book, ok := b.db.books[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	book.IsAvailable = available
	b.db.books[id] = book
	return nil
}

func (b *memoryBooks) Create(ctx context.Context, book *books.Book) error {
	b.db.books[book.ID] = *book
	return nil
}

type memoryBorrows struct{ db *memoryDB }

func (m *memoryBorrows) ExistsActiveBorrow(ctx context.Context, userID, bookID uuid.UUID) (bool, error) {
	for _, b := range m.db.borrows {
		if b.UserID == userID && b.BookID == bookID && b.IsActive() {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryBorrows) ExistsActiveBorrowForBook(ctx context.Context, bookID uuid.UUID) (bool, error) {
	for _, b := range m.db.borrows {
		if b.BookID == bookID && b.IsActive() {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryBorrows) Create(ctx context.Context, borrow *borrows.Borrow) error {
	m.db.borrows = append(m.db.borrows, *borrow)
	return nil
}

type memberFunc func(ctx context.Context, id uuid.UUID) (*members.Member, error)

func (f memberFunc) GetByID(ctx context.Context, id uuid.UUID) (*members.Member, error) {
	return f(ctx, id)
}

func knownMembers(ctx context.Context, id uuid.UUID) (*members.Member, error) {
	return &members.Member{ID: id, Name: "Reader", Email: "reader@example.com"}, nil
}

func noMembers(ctx context.Context, id uuid.UUID) (*members.Member, error) {
	return nil, errors.New("member directory unavailable")
}

type recordingNotifier struct {
	single []Reservation
	batch  map[string][]Reservation
}

func (n *recordingNotifier) SendReservationConfirmation(ctx context.Context, member *members.Member, reservation Reservation) {
	n.single = append(n.single, reservation)
}

func (n *recordingNotifier) SendBatchConfirmation(ctx context.Context, member *members.Member, reservations []Reservation, batchID string) {
	if n.batch == nil {
		n.batch = map[string][]Reservation{}
	}
	n.batch[batchID] = reservations
}
