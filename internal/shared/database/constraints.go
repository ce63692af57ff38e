package database

import (
	"fmt"

	"gorm.io/gorm"
)

// constraintStatements are idempotent. The partial unique indexes are what
// keep concurrent writers from creating a second live hold; application
// checks only produce friendlier errors.
var constraintStatements = []struct {
	name string
	sql  string
}{
	{
		name: "one reserved seat per slot",
		sql: `CREATE UNIQUE INDEX IF NOT EXISTS ux_seat_reservations_reserved_slot
			ON seat_reservations (seat_id, reservation_date, time_slot)
			WHERE status = 'RESERVED'`,
	},
	{
		name: "one pending hold per member and book",
		sql: `CREATE UNIQUE INDEX IF NOT EXISTS ux_book_reservations_pending_hold
			ON book_reservations (user_id, book_id)
			WHERE status = 'PENDING'`,
	},
	{
		name: "sweep scan",
		sql: `CREATE INDEX IF NOT EXISTS idx_seat_reservations_status_date
			ON seat_reservations (status, reservation_date)`,
	},
	{
		name: "pending count per book",
		sql: `CREATE INDEX IF NOT EXISTS idx_book_reservations_book_status
			ON book_reservations (book_id, status)`,
	},
	{
		name: "active borrow lookup",
		sql: `CREATE INDEX IF NOT EXISTS idx_borrows_active
			ON borrows (user_id, book_id)
			WHERE returned_at IS NULL`,
	},
}

// MigrateConstraints adds the constraints gorm tags cannot express.
func MigrateConstraints(db *gorm.DB) error {
	for _, stmt := range constraintStatements {
		if err := db.Exec(stmt.sql).Error; err != nil {
			return fmt.Errorf("constraint %q: %w", stmt.name, err)
		}
	}
	return nil
}
