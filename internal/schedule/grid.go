package schedule

// Cell addresses one day and time mark of a teacher's week.
type Cell struct {
	Day  Weekday
	Mark string
}

// Grid is a teacher's week laid out as days by time marks. It is derived
// from a list of entries and never updated afterwards.
type Grid struct {
	TeacherID string
	Days      []Weekday
	Marks     []string
	cells     map[Cell]Entry
}

// ProjectGrid places each of the teacher's entries in every cell whose mark
// falls inside [start, end) on the entry's day. When more than one entry
// matches a cell, the first in entries order wins.
func ProjectGrid(entries []Entry, teacherID string, days []Weekday, marks []string) *Grid {
	g := &Grid{
		TeacherID: teacherID,
		Days:      days,
		Marks:     marks,
		cells:     make(map[Cell]Entry),
	}

	wanted := make(map[Weekday]bool, len(days))
	for _, d := range days {
		wanted[d] = true
	}

	for _, mark := range marks {
		m, err := ToMinutes(mark)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if e.TeacherID != teacherID || !wanted[e.Day] {
				continue
			}
			start, end, err := e.minutes()
			if err != nil || m < start || m >= end {
				continue
			}
			cell := Cell{Day: e.Day, Mark: mark}
			if _, taken := g.cells[cell]; !taken {
				g.cells[cell] = e
			}
		}
	}
	return g
}

// At returns the entry occupying the cell, if any.
func (g *Grid) At(day Weekday, mark string) (Entry, bool) {
	e, ok := g.cells[Cell{Day: day, Mark: mark}]
	return e, ok
}

// IsStart returns true if the cell holds an entry that begins at mark.
// Renderers use it to print class details only once per class.
func (g *Grid) IsStart(day Weekday, mark string) bool {
	e, ok := g.At(day, mark)
	if !ok {
		return false
	}
	start, err1 := ToMinutes(e.Start)
	m, err2 := ToMinutes(mark)
	return err1 == nil && err2 == nil && start == m
}

// Occupied returns the number of filled cells.
func (g *Grid) Occupied() int {
	return len(g.cells)
}
