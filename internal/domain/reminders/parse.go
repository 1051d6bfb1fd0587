package reminders

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var clockRe = regexp.MustCompile(`^(\d{1,2}):([0-5]\d) (AM|PM)$`)

// ParseClock parses a 12-hour clock string of the exact shape "HH:MM AM|PM"
// into 24-hour hour and minute. "12:xx AM" maps to hour 0, "12:xx PM" stays
// hour 12. Malformed input is a hard validation error.
func ParseClock(value string) (hour, minute int, err error) {
	match := clockRe.FindStringSubmatch(strings.TrimSpace(value))
	if match == nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidClock, value)
	}

	hour, _ = strconv.Atoi(match[1])
	minute, _ = strconv.Atoi(match[2])
	if hour < 1 || hour > 12 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidClock, value)
	}

	switch match[3] {
	case "AM":
		if hour == 12 {
			hour = 0
		}
	case "PM":
		if hour != 12 {
			hour += 12
		}
	}

	return hour, minute, nil
}

// schedulerWeekday converts a domain weekday (0=Monday .. 6=Sunday) to the
// trigger scheduler's encoding (1=Sunday .. 7=Saturday). Keep every
// re-encoding behind this one function.
func schedulerWeekday(day int) int {
	if day == 6 {
		return 1
	}
	return day + 2
}
