// Package timefmt parses the timestamp and date formats accepted by the API.
package timefmt

import (
	"errors"
	"strings"
	"time"
)

const (
	LocalDateTime = "2006-01-02T15:04:05"
	Date          = "2006-01-02"
	Display       = "2006-01-02 15:04"
)

// Zone-less layouts, tried in order. Seconds are optional.
var localLayouts = []string{
	LocalDateTime,
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	Display,
}

var ErrEmpty = errors.New("empty timestamp")

// ParseDateTime accepts RFC 3339 or a zone-less local timestamp, which is
// read in loc.
func ParseDateTime(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, ErrEmpty
	}
	if loc == nil {
		loc = time.UTC
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	var lastErr error
	for _, layout := range localLayouts {
		t, err := time.ParseInLocation(layout, value, loc)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// ParseDate returns midnight of the given calendar day in loc.
func ParseDate(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, ErrEmpty
	}
	if loc == nil {
		loc = time.UTC
	}
	return time.ParseInLocation(Date, value, loc)
}
