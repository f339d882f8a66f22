package schedule

import (
	"fmt"
	"strconv"
	"strings"
)

// Default ladder bounds offered to users when picking class times.
const (
	DefaultDayStart    = "07:00"
	DefaultDayEnd      = "20:00"
	DefaultSlotMinutes = 60
)

// ToMinutes converts an "HH:MM" label to minutes since midnight.
// The hour has one or two digits and must be 0-23; the minute has exactly
// two digits and must be 0-59. Signs and spaces inside the label are rejected.
func ToMinutes(label string) (int, error) {
	h, m, ok := strings.Cut(strings.TrimSpace(label), ":")
	if !ok || len(h) == 0 || len(h) > 2 || len(m) != 2 || !isDigits(h) || !isDigits(m) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, label)
	}
	hours, err := strconv.Atoi(h)
	if err != nil || hours < 0 || hours > 23 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, label)
	}
	mins, err := strconv.Atoi(m)
	if err != nil || mins < 0 || mins > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, label)
	}
	return hours*60 + mins, nil
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// MinutesToTime converts minutes since midnight to "HH:MM" format.
func MinutesToTime(m int) string {
	if m < 0 {
		m = 0
	}
	if m >= 24*60 {
		m = 24*60 - 1
	}
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// Overlaps returns true if two half-open ranges [startA, endA) and
// [startB, endB) intersect. Ranges that only touch do not overlap.
func Overlaps(startA, endA, startB, endB int) bool {
	return startA < endB && startB < endA
}

// OverlapMinutes returns how many minutes two ranges share, 0 if none.
func OverlapMinutes(startA, endA, startB, endB int) int {
	overlapStart := max(startA, startB)
	overlapEnd := min(endA, endB)
	if overlapEnd <= overlapStart {
		return 0
	}
	return overlapEnd - overlapStart
}

// TimeLadder returns the marks from start to end inclusive, step minutes apart.
func TimeLadder(start, end string, step int) ([]string, error) {
	if step <= 0 {
		return nil, fmt.Errorf("ladder step must be positive, got %d", step)
	}
	from, err := ToMinutes(start)
	if err != nil {
		return nil, fmt.Errorf("ladder start: %w", err)
	}
	to, err := ToMinutes(end)
	if err != nil {
		return nil, fmt.Errorf("ladder end: %w", err)
	}
	if from >= to {
		return nil, fmt.Errorf("%w: ladder %s-%s", ErrInvalidInterval, start, end)
	}

	marks := make([]string, 0, (to-from)/step+1)
	for m := from; m <= to; m += step {
		marks = append(marks, MinutesToTime(m))
	}
	return marks, nil
}

// DefaultMarks returns the 07:00 through 20:00 hourly ladder.
func DefaultMarks() []string {
	marks, _ := TimeLadder(DefaultDayStart, DefaultDayEnd, DefaultSlotMinutes)
	return marks
}
