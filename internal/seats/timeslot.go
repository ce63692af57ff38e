package seats

import (
	"fmt"
	"strings"
	"time"
)

// TimeSlot is stored and rendered as its label, e.g. "09:00-11:00".
type TimeSlot string

const (
	Slot0911 TimeSlot = "09:00-11:00"
	Slot1113 TimeSlot = "11:00-13:00"
	Slot1315 TimeSlot = "13:00-15:00"
	Slot1517 TimeSlot = "15:00-17:00"
	Slot1719 TimeSlot = "17:00-19:00"
	Slot1921 TimeSlot = "19:00-21:00"
)

var allSlots = []TimeSlot{Slot0911, Slot1113, Slot1315, Slot1517, Slot1719, Slot1921}

func AllTimeSlots() []TimeSlot {
	out := make([]TimeSlot, len(allSlots))
	copy(out, allSlots)
	return out
}

// ParseTimeSlot accepts a label ("09:00-11:00") or a name ("SLOT_09_11").
func ParseTimeSlot(value string) (TimeSlot, error) {
	value = strings.TrimSpace(value)
	for _, s := range allSlots {
		if value == string(s) || strings.EqualFold(value, s.Name()) {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown time slot %q", value)
}

func (s TimeSlot) IsValid() bool {
	_, err := ParseTimeSlot(string(s))
	return err == nil
}

// Name renders the enum form, SLOT_09_11 for "09:00-11:00".
func (s TimeSlot) Name() string {
	start, end, ok := strings.Cut(string(s), "-")
	if !ok || len(start) < 2 || len(end) < 2 {
		return ""
	}
	return "SLOT_" + start[:2] + "_" + end[:2]
}

func (s TimeSlot) bounds() (start, end time.Duration, err error) {
	from, to, ok := strings.Cut(string(s), "-")
	if !ok {
		return 0, 0, fmt.Errorf("malformed time slot %q", s)
	}
	if start, err = clock(from); err != nil {
		return 0, 0, err
	}
	if end, err = clock(to); err != nil {
		return 0, 0, err
	}
	if end <= start {
		return 0, 0, fmt.Errorf("time slot %q ends before it starts", s)
	}
	return start, end, nil
}

func clock(v string) (time.Duration, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("malformed slot time %q: %w", v, err)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

// EndOn returns the instant the slot ends on day, read in loc.
func (s TimeSlot) EndOn(day time.Time, loc *time.Location) (time.Time, error) {
	_, end, err := s.bounds()
	if err != nil {
		return time.Time{}, err
	}
	midnight := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc)
	return midnight.Add(end), nil
}

type TimeSlotInfo struct {
	Name  string `json:"name"`
	Label string `json:"label"`
	Start string `json:"start"`
	End   string `json:"end"`
}

func (s TimeSlot) Info() TimeSlotInfo {
	start, end, _ := strings.Cut(string(s), "-")
	return TimeSlotInfo{Name: s.Name(), Label: string(s), Start: start, End: end}
}
