package mealslot

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Canonical slot labels
const (
	EarlyMorning = "early-morning"
	Breakfast    = "breakfast"
	MidMeal      = "mid-meal"
	Lunch        = "lunch"
	Dinner       = "dinner"
	PostDinner   = "post-dinner"
)

// Slot is a named meal slot with its nominal start, stored as an offset from midnight
type Slot struct {
	Label string        `json:"label"`
	Start time.Duration `json:"start"`
}

func (s Slot) String() string {
	return fmt.Sprintf("%s@%s", s.Label, FormatClock(s.Start))
}

// Table is an immutable, start-ordered list of slots
type Table struct {
	slots []Slot
}

// NewTable copies the given slots and orders them by start time
func NewTable(slots ...Slot) Table {
	sorted := make([]Slot, len(slots))
	copy(sorted, slots)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start < sorted[j].Start
	})
	return Table{slots: sorted}
}

var defaultTable = NewTable(
	Slot{Label: EarlyMorning, Start: clock(6, 30)},
	Slot{Label: Breakfast, Start: clock(8, 30)},
	Slot{Label: MidMeal, Start: clock(11, 0)},
	Slot{Label: Lunch, Start: clock(13, 30)},
	Slot{Label: Dinner, Start: clock(20, 0)},
	Slot{Label: PostDinner, Start: clock(21, 30)},
)

// DefaultTable returns the standard six-slot diet day
func DefaultTable() Table {
	return defaultTable
}

// ParseTable builds a table from "label@HH:MM" entries
func ParseTable(specs []string) (Table, error) {
	slots := make([]Slot, 0, len(specs))
	for _, spec := range specs {
		label, at, ok := strings.Cut(spec, "@")
		label = strings.TrimSpace(label)
		if !ok || label == "" {
			return Table{}, fmt.Errorf("invalid meal slot %q: expected label@HH:MM", spec)
		}

		start, err := ParseClock(strings.TrimSpace(at))
		if err != nil {
			return Table{}, fmt.Errorf("invalid meal slot %q: %w", spec, err)
		}
		slots = append(slots, Slot{Label: label, Start: start})
	}
	return NewTable(slots...), nil
}

// Slots returns a copy of the ordered slots
func (t Table) Slots() []Slot {
	out := make([]Slot, len(t.slots))
	copy(out, t.slots)
	return out
}

func (t Table) Len() int {
	return len(t.slots)
}

// Lookup finds a slot by label, ignoring case and separator style
func (t Table) Lookup(label string) (Slot, bool) {
	for _, s := range t.slots {
		if SameLabel(s.Label, label) {
			return s, true
		}
	}
	return Slot{}, false
}

// SameLabel compares meal names case-insensitively, treating space, '-' and '_' alike.
// Diet charts write "Early Morning" where the slot table says "early-morning".
func SameLabel(a, b string) bool {
	return normalizeLabel(a) == normalizeLabel(b)
}

var labelReplacer = strings.NewReplacer("-", " ", "_", " ")

func normalizeLabel(s string) string {
	return strings.Join(strings.Fields(labelReplacer.Replace(strings.ToLower(s))), " ")
}

// ParseClock parses "HH:MM" or "HH:MM:SS" into an offset from midnight
func ParseClock(s string) (time.Duration, error) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid clock value %q", s)
	}

	limits := []int{23, 59, 59}
	var total time.Duration
	units := []time.Duration{time.Hour, time.Minute, time.Second}
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 || n > limits[i] || len(p) == 0 || len(p) > 2 {
			return 0, fmt.Errorf("invalid clock value %q", s)
		}
		total += time.Duration(n) * units[i]
	}
	return total, nil
}

// FormatClock renders an offset from midnight as HH:MM (with :SS when non-zero)
func FormatClock(d time.Duration) string {
	h := int(d / time.Hour)
	m := int(d % time.Hour / time.Minute)
	s := int(d % time.Minute / time.Second)
	if s != 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", h, m)
}

// TimeOfDay drops the date part of t, keeping its wall clock
func TimeOfDay(t time.Time) time.Duration {
	h, m, s := t.Clock()
	return clock(h, m) + time.Duration(s)*time.Second
}

func clock(h, m int) time.Duration {
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute
}
