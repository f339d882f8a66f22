package schedule

import (
	"context"
	"testing"
)

func TestProjectGrid_SpanningEntry(t *testing.T) {
	s := newTestStore(t)
	e := mustCreate(t, s, draft("T", "math", "R", Monday, "07:00", "09:00"))

	g := s.Grid("T", Weekdays, DefaultMarks())

	for _, mark := range []string{"07:00", "08:00"} {
		got, ok := g.At(Monday, mark)
		if !ok || got.ID != e.ID {
			t.Errorf("expected entry %s at Monday %s, got %+v (found=%v)", e.ID, mark, got, ok)
		}
	}
	if _, ok := g.At(Monday, "09:00"); ok {
		t.Error("expected no entry at Monday 09:00")
	}
	if _, ok := g.At(Tuesday, "07:00"); ok {
		t.Error("expected no entry on Tuesday")
	}
	if !g.IsStart(Monday, "07:00") || g.IsStart(Monday, "08:00") {
		t.Error("IsStart should only be true on the first mark")
	}
	if g.Occupied() != 2 {
		t.Errorf("expected 2 occupied cells, got %d", g.Occupied())
	}
}

func TestProjectGrid_OnlySelectedTeacher(t *testing.T) {
	s := newTestStore(t)
	mustCreate(t, s, draft("T1", "math", "R1", Monday, "07:00", "08:00"))
	mustCreate(t, s, draft("T2", "math", "R2", Monday, "08:00", "09:00"))

	g := s.Grid("T1", Weekdays, DefaultMarks())
	if _, ok := g.At(Monday, "08:00"); ok {
		t.Error("another teacher's class leaked into the grid")
	}
	if g.Occupied() != 1 {
		t.Errorf("expected 1 occupied cell, got %d", g.Occupied())
	}
}

func TestProjectGrid_HalfHourEntry(t *testing.T) {
	entries := []Entry{entry("a", "T", "R", Friday, "07:30", "08:30")}
	g := ProjectGrid(entries, "T", Weekdays, DefaultMarks())

	if _, ok := g.At(Friday, "07:00"); ok {
		t.Error("07:00 is before the class starts")
	}
	if _, ok := g.At(Friday, "08:00"); !ok {
		t.Error("08:00 falls inside 07:30-08:30")
	}
}

func TestProjectGrid_FirstMatchWins(t *testing.T) {
	// Invariant-violating input: the projection still picks a single entry.
	entries := []Entry{
		entry("first", "T", "R1", Monday, "08:00", "10:00"),
		entry("second", "T", "R2", Monday, "09:00", "11:00"),
	}
	g := ProjectGrid(entries, "T", Weekdays, DefaultMarks())

	got, _ := g.At(Monday, "09:00")
	if got.ID != "first" {
		t.Errorf("expected store-order-first entry, got %s", got.ID)
	}
	got, _ = g.At(Monday, "10:00")
	if got.ID != "second" {
		t.Errorf("expected second entry at 10:00, got %s", got.ID)
	}
}

func TestProjectGrid_RecomputedAfterMutation(t *testing.T) {
	s := newTestStore(t)
	e := mustCreate(t, s, draft("T", "math", "R", Monday, "07:00", "08:00"))

	before := s.Grid("T", Weekdays, DefaultMarks())
	if err := s.Delete(context.Background(), e.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	after := s.Grid("T", Weekdays, DefaultMarks())

	if before.Occupied() != 1 || after.Occupied() != 0 {
		t.Errorf("expected 1 then 0 occupied cells, got %d then %d", before.Occupied(), after.Occupied())
	}
}

func TestProjectGrid_DayFilterAndBadMarks(t *testing.T) {
	entries := []Entry{entry("a", "T", "R", Wednesday, "07:00", "08:00")}
	g := ProjectGrid(entries, "T", []Weekday{Monday}, []string{"07:00", "bogus"})

	if g.Occupied() != 0 {
		t.Errorf("expected days outside the grid to be ignored, got %d cells", g.Occupied())
	}
}
