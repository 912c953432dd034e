package schedule

import (
	"fmt"
	"strings"
	"time"
)

// Weekday identifies a day of the teaching week.
type Weekday time.Weekday

// Days lists the weekdays in calendar order starting on Sunday.
var Days = []Weekday{
	Weekday(time.Sunday),
	Weekday(time.Monday),
	Weekday(time.Tuesday),
	Weekday(time.Wednesday),
	Weekday(time.Thursday),
	Weekday(time.Friday),
	Weekday(time.Saturday),
}

// ParseWeekday accepts full ("Monday") or short ("mon") English day names.
func ParseWeekday(value string) (Weekday, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if len(normalized) >= 3 {
		for _, day := range Days {
			name := strings.ToLower(time.Weekday(day).String())
			if normalized == name || normalized == name[:3] {
				return day, nil
			}
		}
	}
	return 0, fmt.Errorf("schedule: unknown weekday %q", value)
}

// String returns the full English day name.
func (d Weekday) String() string {
	return time.Weekday(d).String()
}

// Short returns the three letter abbreviation used in timetable headers.
func (d Weekday) Short() string {
	return d.String()[:3]
}

// Valid reports whether d is one of the seven weekdays.
func (d Weekday) Valid() bool {
	return d >= Weekday(time.Sunday) && d <= Weekday(time.Saturday)
}
