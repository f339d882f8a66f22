package ui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"

	"github.com/javiermolinar/timetable/internal/schedule"
)

func TestRenderGrid(t *testing.T) {
	DisableColor()

	c := schedule.NewCatalog(
		[]schedule.Teacher{{ID: "t1", GivenName: "Ana", FamilyName: "Ruiz"}},
		[]schedule.Subject{{ID: "s1", Name: "Mathematics", Code: "MAT"}},
		[]schedule.Room{{ID: "r1", Name: "Lab"}},
	)
	entries := []schedule.Entry{
		{ID: "e1", TeacherID: "t1", SubjectID: "s1", RoomID: "r1", Day: schedule.Monday, Start: "07:00", End: "10:00"},
	}
	marks := []string{"07:00", "08:00", "09:00", "10:00"}
	g := schedule.ProjectGrid(entries, "t1", []schedule.Weekday{schedule.Monday, schedule.Tuesday}, marks)

	out := renderGrid(c, g, 80)
	lines := strings.Split(out, "\n")

	find := func(mark string) string {
		t.Helper()
		for _, l := range lines {
			if strings.Contains(l, mark) {
				return l
			}
		}
		t.Fatalf("no row for %s in:\n%s", mark, out)
		return ""
	}

	if !strings.Contains(find("07:00"), "Mathematics (MAT)") {
		t.Errorf("expected subject on the start row:\n%s", out)
	}
	if !strings.Contains(find("08:00"), "Lab") {
		t.Errorf("expected room on the second row:\n%s", out)
	}
	if !strings.Contains(find("09:00"), "┊") {
		t.Errorf("expected continuation on the third row:\n%s", out)
	}
	if strings.Contains(find("10:00"), "┊") {
		t.Errorf("end mark must be free:\n%s", out)
	}
	if !strings.Contains(lines[1], "Mon") || !strings.Contains(lines[1], "Tue") {
		t.Errorf("expected day headers, got %q", lines[1])
	}
}

func TestRenderGrid_Truncates(t *testing.T) {
	DisableColor()

	c := schedule.NewCatalog(nil,
		[]schedule.Subject{{ID: "s1", Name: "Introduction to Theoretical Computer Science", Code: "CS101"}},
		nil,
	)
	entries := []schedule.Entry{
		{ID: "e1", TeacherID: "t1", SubjectID: "s1", RoomID: "r1", Day: schedule.Monday, Start: "07:00", End: "08:00"},
	}
	g := schedule.ProjectGrid(entries, "t1", schedule.Weekdays, []string{"07:00", "08:00"})

	out := renderGrid(c, g, 60)
	if !strings.Contains(out, "…") {
		t.Errorf("expected truncated subject:\n%s", out)
	}
	for _, l := range strings.Split(out, "\n") {
		if w := ansi.StringWidth(l); w > 80 {
			t.Errorf("line too wide (%d): %q", w, l)
		}
	}
}

func TestCellWidth(t *testing.T) {
	if got := cellWidth(20, 5); got != minCellWidth {
		t.Errorf("narrow terminal: got %d, want %d", got, minCellWidth)
	}
	if got := cellWidth(200, 5); got <= minCellWidth {
		t.Errorf("wide terminal should give wider cells, got %d", got)
	}
	if got := cellWidth(100, 0); got != minCellWidth {
		t.Errorf("no days: got %d", got)
	}
}
