// Package summary provides per-teacher weekly summaries.
package summary

import (
	"cmp"
	"slices"

	"github.com/javiermolinar/timetable/internal/schedule"
)

// TeacherWeek holds a teacher's classes for the week and their totals.
type TeacherWeek struct {
	Teacher      schedule.Teacher
	Entries      []schedule.Entry // sorted by day, then start time
	Classes      int
	MinutesByDay map[schedule.Weekday]int
	TotalMinutes int
}

// BusiestDay returns the day with the most teaching minutes and the minutes.
// Ties go to the earlier day. Returns 0 when the teacher has no classes.
func (w *TeacherWeek) BusiestDay() (day schedule.Weekday, minutes int) {
	for _, d := range schedule.Weekdays {
		if m := w.MinutesByDay[d]; m > minutes {
			day, minutes = d, m
		}
	}
	return day, minutes
}

// SummarizeTeacher builds the teacher's summary from the entries that belong
// to them. Entries of other teachers are ignored.
func SummarizeTeacher(teacher schedule.Teacher, entries []schedule.Entry) *TeacherWeek {
	w := &TeacherWeek{
		Teacher:      teacher,
		MinutesByDay: make(map[schedule.Weekday]int),
	}
	for _, e := range entries {
		if e.TeacherID != teacher.ID {
			continue
		}
		w.Entries = append(w.Entries, e)
		w.Classes++
		w.MinutesByDay[e.Day] += e.Duration()
		w.TotalMinutes += e.Duration()
	}
	SortEntries(w.Entries)
	return w
}

// Teachers summarizes every teacher matching query (see
// schedule.Catalog.SearchTeachers), in the catalog's name order.
func Teachers(catalog *schedule.Catalog, entries []schedule.Entry, query string) []*TeacherWeek {
	teachers := catalog.SearchTeachers(query)
	result := make([]*TeacherWeek, 0, len(teachers))
	for _, t := range teachers {
		result = append(result, SummarizeTeacher(t, entries))
	}
	return result
}

// Orphaned summarizes entries whose teacher is missing from the catalog, one
// summary per missing teacher id in the order the ids first appear. The
// summaries carry only the teacher id.
func Orphaned(catalog *schedule.Catalog, entries []schedule.Entry) []*TeacherWeek {
	var ids []string
	for _, e := range entries {
		if _, ok := catalog.Teacher(e.TeacherID); ok || slices.Contains(ids, e.TeacherID) {
			continue
		}
		ids = append(ids, e.TeacherID)
	}

	result := make([]*TeacherWeek, 0, len(ids))
	for _, id := range ids {
		result = append(result, SummarizeTeacher(schedule.Teacher{ID: id}, entries))
	}
	return result
}

// SortEntries orders entries by day and then by start time. Entries with the
// same day and start keep their relative order.
func SortEntries(entries []schedule.Entry) {
	slices.SortStableFunc(entries, func(a, b schedule.Entry) int {
		return cmp.Or(
			cmp.Compare(a.Day, b.Day),
			cmp.Compare(startMinutes(a), startMinutes(b)),
		)
	})
}

func startMinutes(e schedule.Entry) int {
	m, err := schedule.ToMinutes(e.Start)
	if err != nil {
		return 0
	}
	return m
}
