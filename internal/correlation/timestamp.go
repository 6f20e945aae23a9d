package correlation

import (
	"fmt"
	"strings"
	"time"
)

// ChatLayout is the human-readable timestamp format used by chat history and plan start dates
const ChatLayout = "January 2, 2006, 3:04 PM"

var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04Z07:00",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

// DateParseError reports a timestamp that matches neither supported format
type DateParseError struct {
	Value string
}

func (e *DateParseError) Error() string {
	return fmt.Sprintf("unable to parse timestamp %q: expected %q or ISO-8601", e.Value, ChatLayout)
}

// ParseTimestamp tries the chat layout first, then ISO-8601 with a trailing Z read as +00:00
func ParseTimestamp(value string) (time.Time, error) {
	if t, err := ParseClockTimestamp(value); err == nil {
		return t, nil
	}

	iso := strings.TrimSpace(value)
	if strings.HasSuffix(iso, "Z") || strings.HasSuffix(iso, "z") {
		iso = iso[:len(iso)-1] + "+00:00"
	}
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, iso); err == nil {
			return t, nil
		}
	}
	return time.Time{}, &DateParseError{Value: value}
}

// ParseClockTimestamp accepts only ChatLayout. The AM/PM marker is matched in any case.
func ParseClockTimestamp(value string) (time.Time, error) {
	t, err := time.Parse(ChatLayout, upperMeridiem(strings.TrimSpace(value)))
	if err != nil {
		return time.Time{}, &DateParseError{Value: value}
	}
	return t, nil
}

// upperMeridiem upper-cases a trailing am/pm, the only form the PM layout token accepts
func upperMeridiem(value string) string {
	if len(value) < 2 {
		return value
	}
	suffix := value[len(value)-2:]
	if strings.EqualFold(suffix, "am") || strings.EqualFold(suffix, "pm") {
		return value[:len(value)-2] + strings.ToUpper(suffix)
	}
	return value
}

// DayOrder is the 1-based plan day for at, counting whole calendar days from start.
// The difference is absolute, so a date before the start resolves like one after it.
func DayOrder(start, at time.Time) int {
	diff := civilDay(at) - civilDay(start)
	if diff < 0 {
		diff = -diff
	}
	return int(diff) + 1
}

// civilDay numbers the calendar date of t in its own location, ignoring the clock
func civilDay(t time.Time) int64 {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400
}
