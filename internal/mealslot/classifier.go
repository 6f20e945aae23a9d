package mealslot

import (
	"fmt"
	"time"
)

// GracePeriod lets a routine started up to ten minutes early count as started
const GracePeriod = 10 * time.Minute

// Invalid is returned for times the table cannot place. It is never a valid slot label.
const Invalid = "Invalid time"

// EarliestTime is the floor ValidateTime enforces
var EarliestTime = clock(6, 30)

// InvalidTimeError reports a time-of-day that is malformed or before EarliestTime
type InvalidTimeError struct {
	Value  string
	Reason string
}

func (e *InvalidTimeError) Error() string {
	return fmt.Sprintf("invalid time format or value %q: %s", e.Value, e.Reason)
}

// Classifier maps a time of day to a slot label
type Classifier struct {
	table Table
	grace time.Duration
}

func NewClassifier(table Table) *Classifier {
	return &Classifier{
		table: table,
		grace: GracePeriod,
	}
}

func (c *Classifier) Table() Table {
	return c.table
}

// Classify returns the label of the slot containing timeOfDay, or Invalid.
// A slot owns [start-grace, nextStart-grace); the last slot owns everything after.
func (c *Classifier) Classify(timeOfDay time.Duration) string {
	slots := c.table.slots
	if len(slots) == 0 {
		return Invalid
	}

	first, last := slots[0], slots[len(slots)-1]
	if timeOfDay < first.Start-c.grace {
		if timeOfDay >= last.Start {
			return PostDinner
		}
		return Invalid
	}

	for i := 0; i < len(slots)-1; i++ {
		current, next := slots[i], slots[i+1]
		if current.Start-c.grace <= timeOfDay && timeOfDay < next.Start-c.grace {
			return current.Label
		}
	}

	return last.Label
}

// ClassifyTime classifies the wall clock of t
func (c *Classifier) ClassifyTime(t time.Time) string {
	return c.Classify(TimeOfDay(t))
}

// ValidateTime parses an HH:MM:SS value and rejects anything before EarliestTime
func ValidateTime(value string) (time.Duration, error) {
	t, err := parseStrictClock(value)
	if err != nil {
		return 0, &InvalidTimeError{Value: value, Reason: err.Error()}
	}
	if t < EarliestTime {
		return 0, &InvalidTimeError{Value: value, Reason: "time cannot be before " + FormatClock(EarliestTime)}
	}
	return t, nil
}

func parseStrictClock(value string) (time.Duration, error) {
	parsed, err := time.Parse("15:04:05", value)
	if err != nil {
		return 0, fmt.Errorf("expected HH:MM:SS")
	}
	return TimeOfDay(parsed), nil
}
