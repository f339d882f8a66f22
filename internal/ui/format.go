package ui

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/javiermolinar/timetable/internal/schedule"
)

// ErrAmbiguousID is returned when an id prefix matches more than one record.
var ErrAmbiguousID = errors.New("id prefix is ambiguous")

// ErrUnknownID is returned when no record matches an id or prefix.
var ErrUnknownID = errors.New("no record with that id")

// shortID is the id length shown in listings. Commands accept any unique prefix.
const shortID = 8

func short(id string) string {
	if len(id) <= shortID {
		return id
	}
	return id[:shortID]
}

// resolveID returns the single id in ids equal to ref or starting with it.
func resolveID(kind string, ids []string, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", nil
	}
	var match string
	for _, id := range ids {
		if id == ref {
			return id, nil
		}
		if strings.HasPrefix(id, ref) {
			if match != "" {
				return "", fmt.Errorf("%w: %s %q", ErrAmbiguousID, kind, ref)
			}
			match = id
		}
	}
	if match == "" {
		return "", fmt.Errorf("%w: %s %q", ErrUnknownID, kind, ref)
	}
	return match, nil
}

// formatEntry renders an entry on one line with catalog names.
func formatEntry(c *schedule.Catalog, e schedule.Entry) string {
	return fmt.Sprintf("%s %s-%s  %s  %s  %s",
		e.Day.Short(),
		e.Start,
		e.End,
		c.SubjectName(e.SubjectID),
		formatMuted("·"),
		c.RoomName(e.RoomID),
	)
}

// printConflicts lists the classes a rejected draft clashes with.
func printConflicts(w io.Writer, c *schedule.Catalog, ce *schedule.ConflictError) {
	fmt.Fprintln(w, formatConflict("Conflicts with:"))
	for _, conflict := range ce.Conflicts {
		e := conflict.Entry
		fmt.Fprintf(w, "  %s %s  %s, %s  %s\n",
			formatConflict(short(e.ID)),
			formatEntry(c, e),
			c.TeacherName(e.TeacherID),
			conflict.Dimension(),
			formatMuted(fmt.Sprintf("(%d min overlap)", conflict.OverlapMinutes)),
		)
	}
}

// formatMinutes renders a duration such as "1h30m".
func formatMinutes(m int) string {
	h, rem := m/60, m%60
	switch {
	case h == 0:
		return fmt.Sprintf("%dm", rem)
	case rem == 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dh%02dm", h, rem)
	}
}
