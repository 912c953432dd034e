package schedule

import (
	"errors"
	"testing"
)

func TestParseClock(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  Clock
	}{
		{name: "morning", input: "09:30 AM", want: 9*60 + 30},
		{name: "afternoon", input: "01:05 PM", want: 13*60 + 5},
		{name: "midnight", input: "12:00 AM", want: 0},
		{name: "half past midnight", input: "12:30 AM", want: 30},
		{name: "noon", input: "12:00 PM", want: 12 * 60},
		{name: "lowercase without space", input: "7:45pm", want: 19*60 + 45},
		{name: "twenty four hour", input: "16:20", want: 16*60 + 20},
		{name: "last minute", input: "11:59 PM", want: 23*60 + 59},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseClock(tc.input)
			if err != nil {
				t.Fatalf("ParseClock(%q) returned error: %v", tc.input, err)
			}
			if got != tc.want {
				t.Fatalf("ParseClock(%q) = %d, want %d", tc.input, got, tc.want)
			}
		})
	}
}

func TestParseClockRejectsMalformedValues(t *testing.T) {
	inputs := []string{"", "9 AM", "13:00 PM", "00:15 AM", "10:5 AM", "24:00", "ab:cd", "10:75", "+9:00 AM", "10:+5", "-1:30 PM", "010:00"}
	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			if _, err := ParseClock(input); !errors.Is(err, ErrInvalidClock) {
				t.Fatalf("ParseClock(%q) error = %v, want ErrInvalidClock", input, err)
			}
		})
	}
}

func TestClockString(t *testing.T) {
	cases := map[Clock]string{
		0:          "12:00 AM",
		12 * 60:    "12:00 PM",
		13*60 + 5:  "01:05 PM",
		23*60 + 59: "11:59 PM",
	}
	for clock, want := range cases {
		if got := clock.String(); got != want {
			t.Fatalf("Clock(%d).String() = %q, want %q", clock, got, want)
		}
		parsed, err := ParseClock(clock.String())
		if err != nil || parsed != clock {
			t.Fatalf("round trip of %d gave %d (err %v)", clock, parsed, err)
		}
	}
	if got := MustClock(8, 0).String24(); got != "08:00" {
		t.Fatalf("String24() = %q, want 08:00", got)
	}
}

func TestParseWeekday(t *testing.T) {
	for _, input := range []string{"Monday", "monday", "MON", " mon "} {
		day, err := ParseWeekday(input)
		if err != nil {
			t.Fatalf("ParseWeekday(%q) returned error: %v", input, err)
		}
		if day.String() != "Monday" {
			t.Fatalf("ParseWeekday(%q) = %s, want Monday", input, day)
		}
	}
	if _, err := ParseWeekday("Funday"); err == nil {
		t.Fatal("expected error for unknown weekday")
	}
}
