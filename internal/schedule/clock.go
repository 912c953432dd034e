package schedule

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// MinutesPerDay bounds every Clock value.
const MinutesPerDay = 24 * 60

// ErrInvalidClock is returned when a wall-clock string cannot be parsed.
var ErrInvalidClock = errors.New("schedule: invalid clock time")

// Clock is a wall-clock time expressed as minutes since midnight.
type Clock int

// NewClock builds a Clock from a 24-hour hour and minute pair.
func NewClock(hour, minute int) (Clock, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("%w: %02d:%02d", ErrInvalidClock, hour, minute)
	}
	return Clock(hour*60 + minute), nil
}

// MustClock is NewClock for constant inputs in tests and fixtures.
func MustClock(hour, minute int) Clock {
	c, err := NewClock(hour, minute)
	if err != nil {
		panic(err)
	}
	return c
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// ParseClock accepts "HH:MM AM", "H:MMPM" and 24-hour "HH:MM" forms.
// 12 AM maps to midnight and 12 PM to noon.
func ParseClock(value string) (Clock, error) {
	raw := strings.ToUpper(strings.TrimSpace(value))
	if raw == "" {
		return 0, fmt.Errorf("%w: empty value", ErrInvalidClock)
	}

	period := ""
	switch {
	case strings.HasSuffix(raw, "AM"):
		period = "AM"
	case strings.HasSuffix(raw, "PM"):
		period = "PM"
	}
	digits := strings.TrimSpace(strings.TrimSuffix(raw, period))

	hourPart, minutePart, ok := strings.Cut(digits, ":")
	if !ok || !isDigits(hourPart) || len(hourPart) > 2 || len(minutePart) != 2 || !isDigits(minutePart) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, value)
	}
	hour, err := strconv.Atoi(hourPart)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, value)
	}
	minute, err := strconv.Atoi(minutePart)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, value)
	}

	if period != "" {
		if hour < 1 || hour > 12 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidClock, value)
		}
		hour %= 12
		if period == "PM" {
			hour += 12
		}
	}

	c, err := NewClock(hour, minute)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, value)
	}
	return c, nil
}

// Hour returns the 24-hour component.
func (c Clock) Hour() int { return int(c) / 60 }

// Minute returns the minute component.
func (c Clock) Minute() int { return int(c) % 60 }

// String renders the clock in 12-hour form, e.g. "09:30 AM".
func (c Clock) String() string {
	hour := c.Hour()
	period := "AM"
	if hour >= 12 {
		period = "PM"
	}
	display := hour % 12
	if display == 0 {
		display = 12
	}
	return fmt.Sprintf("%02d:%02d %s", display, c.Minute(), period)
}

// String24 renders the clock in 24-hour form, e.g. "13:05".
func (c Clock) String24() string {
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}
