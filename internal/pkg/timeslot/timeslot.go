// Package timeslot parses lecture time strings such as "월1~3,수4".
package timeslot

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/yigit/lecturetable/internal/pkg/apperrors"
)

// Grid bounds.
const (
	MinPeriod = 1
	MaxPeriod = 16
)

// Weekday is a grid column, Monday = 0.
type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
)

// Days lists the grid columns in display order.
var Days = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday}

var dayLabels = [...]string{"월", "화", "수", "목", "금"}

// sunday marks a course that has no place on the weekday grid.
const sunday = '일'

// String returns the Korean day label.
func (d Weekday) String() string {
	if d < Monday || d > Friday {
		return "?"
	}
	return dayLabels[d]
}

// ParseWeekday maps a Korean day label to a Weekday.
func ParseWeekday(label string) (Weekday, bool) {
	for i, l := range dayLabels {
		if l == label {
			return Weekday(i), true
		}
	}
	return 0, false
}

// Slot is a contiguous run of periods on one day, both ends inclusive.
type Slot struct {
	Day   Weekday
	Start int
	End   int
}

// Span is the number of periods covered.
func (s Slot) Span() int {
	return s.End - s.Start + 1
}

// String renders the slot the way the lecture API writes it.
func (s Slot) String() string {
	if s.Start == s.End {
		return fmt.Sprintf("%s%d", s.Day, s.Start)
	}
	return fmt.Sprintf("%s%d~%d", s.Day, s.Start, s.End)
}

// Schedule is the parsed form of a course time string.
type Schedule struct {
	Slots []Slot
	// OffGrid is set when the course has no time or meets on Sunday.
	OffGrid bool
}

// MaxPeriod returns the last period used, 0 when off grid.
func (s Schedule) MaxPeriod() int {
	last := 0
	for _, slot := range s.Slots {
		if slot.End > last {
			last = slot.End
		}
	}
	return last
}

// Parse parses a comma separated time string. Empty strings and any
// Sunday slot yield an off-grid schedule without slots.
func Parse(raw string) (Schedule, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Schedule{OffGrid: true}, nil
	}

	parts := strings.Split(raw, ",")
	for _, part := range parts {
		if r, _ := utf8.DecodeRuneInString(strings.TrimSpace(part)); r == sunday {
			return Schedule{OffGrid: true}, nil
		}
	}
	if strings.TrimSpace(parts[0]) == "" {
		return Schedule{OffGrid: true}, nil
	}

	sched := Schedule{Slots: make([]Slot, 0, len(parts))}
	for _, part := range parts {
		slot, err := parseSlot(strings.TrimSpace(part))
		if err != nil {
			return Schedule{}, err
		}
		sched.Slots = append(sched.Slots, slot)
	}
	return sched, nil
}

func parseSlot(part string) (Slot, error) {
	r, size := utf8.DecodeRuneInString(part)
	if r == utf8.RuneError {
		return Slot{}, fmt.Errorf("%w: %q", apperrors.ErrInvalidTimeSlot, part)
	}
	day, ok := ParseWeekday(string(r))
	if !ok {
		return Slot{}, fmt.Errorf("%w: unknown day in %q", apperrors.ErrInvalidTimeSlot, part)
	}

	rangePart := part[size:]
	startStr, endStr, isRange := strings.Cut(rangePart, "~")
	if !isRange {
		endStr = startStr
	}

	start, err := parsePeriod(startStr)
	if err != nil {
		return Slot{}, fmt.Errorf("%w: %q: %v", apperrors.ErrInvalidTimeSlot, part, err)
	}
	end, err := parsePeriod(endStr)
	if err != nil {
		return Slot{}, fmt.Errorf("%w: %q: %v", apperrors.ErrInvalidTimeSlot, part, err)
	}
	if end < start {
		return Slot{}, fmt.Errorf("%w: %q ends before it starts", apperrors.ErrInvalidTimeSlot, part)
	}

	return Slot{Day: day, Start: start, End: end}, nil
}

func parsePeriod(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("period %q is not a number", s)
	}
	if n < MinPeriod || n > MaxPeriod {
		return 0, fmt.Errorf("period %d outside %d..%d", n, MinPeriod, MaxPeriod)
	}
	return n, nil
}

// ContainsDay reports whether a raw time string mentions the day label.
// Filtering matches on the raw text, the same way users read it.
func ContainsDay(raw, dayLabel string) bool {
	return strings.Contains(raw, dayLabel)
}
