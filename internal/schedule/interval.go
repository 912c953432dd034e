package schedule

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrInvalidInterval is returned when an interval does not start before it ends.
var ErrInvalidInterval = errors.New("schedule: interval must start before it ends")

// Interval is a weekly recurring time span on a single day.
type Interval struct {
	Day   Weekday
	Start Clock
	End   Clock
}

// NewInterval validates and builds an Interval.
func NewInterval(day Weekday, start, end Clock) (Interval, error) {
	if !day.Valid() {
		return Interval{}, fmt.Errorf("schedule: invalid weekday %d", int(day))
	}
	if start < 0 || end > MinutesPerDay || start >= end {
		return Interval{}, fmt.Errorf("%w: %s %s-%s", ErrInvalidInterval, day, start, end)
	}
	return Interval{Day: day, Start: start, End: end}, nil
}

// ParseInterval builds an Interval from the day and 12-hour strings used on the wire.
func ParseInterval(day, start, end string) (Interval, error) {
	d, err := ParseWeekday(day)
	if err != nil {
		return Interval{}, err
	}
	s, err := ParseClock(start)
	if err != nil {
		return Interval{}, fmt.Errorf("start time: %w", err)
	}
	e, err := ParseClock(end)
	if err != nil {
		return Interval{}, fmt.Errorf("end time: %w", err)
	}
	return NewInterval(d, s, e)
}

// Overlaps reports whether both intervals fall on the same day and share at
// least one minute. Back-to-back intervals do not overlap.
func (i Interval) Overlaps(other Interval) bool {
	return i.Day == other.Day && i.Start < other.End && other.Start < i.End
}

// Duration returns the interval length.
func (i Interval) Duration() time.Duration {
	return time.Duration(i.End-i.Start) * time.Minute
}

func (i Interval) String() string {
	return fmt.Sprintf("%s %s - %s", i.Day, i.Start, i.End)
}

type intervalJSON struct {
	Day   string `json:"day"`
	Start string `json:"startTime"`
	End   string `json:"endTime"`
}

// MarshalJSON renders the interval with a day name and 12-hour times.
func (i Interval) MarshalJSON() ([]byte, error) {
	return json.Marshal(intervalJSON{Day: i.Day.String(), Start: i.Start.String(), End: i.End.String()})
}

// UnmarshalJSON accepts the form produced by MarshalJSON.
func (i *Interval) UnmarshalJSON(data []byte) error {
	var raw intervalJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseInterval(raw.Day, raw.Start, raw.End)
	if err != nil {
		return err
	}
	*i = parsed
	return nil
}
