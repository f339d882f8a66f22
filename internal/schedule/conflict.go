package schedule

import (
	"fmt"
	"strings"
)

// Conflict describes one existing entry that collides with a candidate.
type Conflict struct {
	Entry          Entry
	Teacher        bool // same teacher
	Room           bool // same room
	OverlapMinutes int
}

// Dimension names what the two entries share: "teacher", "room" or "teacher+room".
func (c Conflict) Dimension() string {
	switch {
	case c.Teacher && c.Room:
		return "teacher+room"
	case c.Teacher:
		return "teacher"
	default:
		return "room"
	}
}

// ConflictError is returned when a candidate entry would double-book a
// teacher or a room. It unwraps to ErrScheduleConflict.
type ConflictError struct {
	Candidate Entry
	Conflicts []Conflict
}

func (e *ConflictError) Error() string {
	if e == nil {
		return "<nil>"
	}
	parts := make([]string, 0, len(e.Conflicts))
	for _, c := range e.Conflicts {
		parts = append(parts, fmt.Sprintf("%s %s %s-%s (%s)",
			c.Entry.ID, c.Entry.Day.Short(), c.Entry.Start, c.Entry.End, c.Dimension()))
	}
	return fmt.Sprintf("%s: %s %s-%s conflicts with %s",
		ErrScheduleConflict, e.Candidate.Day.Short(), e.Candidate.Start, e.Candidate.End,
		strings.Join(parts, "; "))
}

func (e *ConflictError) Unwrap() error {
	return ErrScheduleConflict
}

// HasConflict reports whether candidate overlaps, on the same day, an
// existing entry that shares its teacher or its room. The entry whose id
// equals excludeID is skipped so that an entry never conflicts with its own
// previous version; an empty excludeID excludes nothing.
func HasConflict(candidate Entry, existing []Entry, excludeID string) bool {
	return len(FindConflicts(candidate, existing, excludeID)) > 0
}

// FindConflicts returns every entry that conflicts with candidate, in the
// order they appear in existing. Subjects are never compared.
func FindConflicts(candidate Entry, existing []Entry, excludeID string) []Conflict {
	start, end, err := candidate.minutes()
	if err != nil {
		return nil
	}

	var conflicts []Conflict
	for _, e := range existing {
		if excludeID != "" && e.ID == excludeID {
			continue
		}
		if e.Day != candidate.Day {
			continue
		}
		s, en, err := e.minutes()
		if err != nil || !Overlaps(start, end, s, en) {
			continue
		}

		sameTeacher := e.TeacherID == candidate.TeacherID
		sameRoom := e.RoomID == candidate.RoomID
		if !sameTeacher && !sameRoom {
			continue
		}
		conflicts = append(conflicts, Conflict{
			Entry:          e,
			Teacher:        sameTeacher,
			Room:           sameRoom,
			OverlapMinutes: OverlapMinutes(start, end, s, en),
		})
	}
	return conflicts
}
