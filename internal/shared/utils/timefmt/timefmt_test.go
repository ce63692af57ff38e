package timefmt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDateTime(t *testing.T) {
	taipei, err := time.LoadLocation("Asia/Taipei")
	require.NoError(t, err)

	local, err := ParseDateTime("2025-03-01T10:30:00", taipei)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 1, 2, 30, 0, 0, time.UTC), local.UTC())

	zoned, err := ParseDateTime("2025-03-01T10:30:00Z", taipei)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 1, 10, 30, 0, 0, time.UTC), zoned.UTC())

	for _, value := range []string{"2025-03-01T10:30", "2025-03-01 10:30:00", "2025-03-01 10:30"} {
		got, err := ParseDateTime(value, taipei)
		require.NoError(t, err, value)
		assert.Equal(t, time.Date(2025, 3, 1, 2, 30, 0, 0, time.UTC), got.UTC(), value)
	}

	_, err = ParseDateTime("2025-03-01T10", taipei)
	assert.Error(t, err)

	_, err = ParseDateTime("  ", taipei)
	assert.ErrorIs(t, err, ErrEmpty)

	_, err = ParseDateTime("yesterday", taipei)
	assert.Error(t, err)
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-03-01", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), d)

	_, err = ParseDate("", time.UTC)
	assert.ErrorIs(t, err, ErrEmpty)
}
