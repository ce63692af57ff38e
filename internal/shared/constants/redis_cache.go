package constants

import (
	"fmt"
	"time"
)

// Redis keys follow shelfkeeper:{module}:{operation}:{identifier}

const (
	CACHE_PREFIX = "shelfkeeper"
)

const (
	TTL_REALTIME_SHORT = 30 * time.Second
	TTL_DYNAMIC_QUICK  = 2 * time.Minute
)

// ================== SEATS MODULE ==================

const (
	CACHE_KEY_SEATS_OCCUPIED = CACHE_PREFIX + ":seats:occupied:" // + date:slot
	CACHE_KEY_SEATS_STATUS   = CACHE_PREFIX + ":seats:status:all"
	LOCK_KEY_SEAT_SLOT       = CACHE_PREFIX + ":locks:seat:" // + seat-id:date:slot
)

const (
	TTL_SEATS_OCCUPIED = TTL_REALTIME_SHORT
	TTL_SEATS_STATUS   = TTL_DYNAMIC_QUICK
)

// ================== BOOKS MODULE ==================

const (
	CACHE_KEY_BOOK_SNAPSHOT = CACHE_PREFIX + ":books:snapshot:" // + book-id
)

// Snapshots may show a stale is_available flag for at most this long.
const (
	TTL_BOOK_SNAPSHOT = TTL_REALTIME_SHORT
)

// ================== RATE LIMIT ==================

const (
	RATE_LIMIT_PREFIX = CACHE_PREFIX + ":ratelimit:"
)

// ================== INVALIDATION PATTERNS ==================

const (
	PATTERN_INVALIDATE_SEATS_OCCUPIED = CACHE_KEY_SEATS_OCCUPIED + "*"
)

// ================== HELPER FUNCTIONS ==================

// BuildOccupiedSeatsKey -> "shelfkeeper:seats:occupied:2025-06-01:09:00-11:00"
func BuildOccupiedSeatsKey(date, slot string) string {
	return CACHE_KEY_SEATS_OCCUPIED + date + ":" + slot
}

func BuildSeatLockKey(seatID, date, slot string) string {
	return fmt.Sprintf("%s%s:%s:%s", LOCK_KEY_SEAT_SLOT, seatID, date, slot)
}

func BuildBookSnapshotKey(bookID string) string {
	return CACHE_KEY_BOOK_SNAPSHOT + bookID
}

func BuildRateLimitKey(clientIP, limitType string) string {
	return RATE_LIMIT_PREFIX + clientIP + ":" + limitType
}
