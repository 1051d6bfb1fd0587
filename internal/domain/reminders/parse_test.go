package reminders

import (
	"errors"
	"testing"
)

func TestParseClock(t *testing.T) {
	cases := []struct {
		in     string
		hour   int
		minute int
	}{
		{"12:00 AM", 0, 0},
		{"12:30 PM", 12, 30},
		{"07:05 PM", 19, 5},
		{"7:05 PM", 19, 5},
		{"11:59 PM", 23, 59},
		{"01:00 AM", 1, 0},
		{"  09:15 AM  ", 9, 15},
	}
	for _, tc := range cases {
		hour, minute, err := ParseClock(tc.in)
		if err != nil {
			t.Fatalf("ParseClock(%q): %v", tc.in, err)
		}
		if hour != tc.hour || minute != tc.minute {
			t.Fatalf("ParseClock(%q) = %d:%d, want %d:%d", tc.in, hour, minute, tc.hour, tc.minute)
		}
	}
}

func TestParseClockRejectsMalformed(t *testing.T) {
	for _, in := range []string{"", "25:00 AM", "13:00 PM", "07:60 PM", "07:05", "07:05 pm", "0:30 AM", "late"} {
		if _, _, err := ParseClock(in); !errors.Is(err, ErrInvalidClock) {
			t.Fatalf("ParseClock(%q): expected ErrInvalidClock, got %v", in, err)
		}
	}
}

func TestSchedulerWeekday(t *testing.T) {
	// Domain weekdays run Monday=0 .. Sunday=6; the scheduler runs
	// Sunday=1 .. Saturday=7.
	want := map[int]int{0: 2, 1: 3, 2: 4, 3: 5, 4: 6, 5: 7, 6: 1}
	for day, expected := range want {
		if got := schedulerWeekday(day); got != expected {
			t.Fatalf("schedulerWeekday(%d) = %d, want %d", day, got, expected)
		}
	}
}
