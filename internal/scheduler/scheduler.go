// Package scheduler provides the working-week policy used when offering and
// checking class times: which days are taught, the ladder of selectable time
// marks, and where a class of a given length still fits.
package scheduler

import (
	"errors"
	"fmt"
	"slices"

	"github.com/javiermolinar/timetable/internal/schedule"
)

// Slot validation errors.
var (
	ErrNotWorkday = errors.New("day is not a configured workday")
	ErrOffLadder  = errors.New("time is not one of the offered marks")
	ErrOutsideDay = errors.New("time slot is outside the teaching day")
)

// Scheduler holds the configured teaching week.
type Scheduler struct {
	workdays    []schedule.Weekday
	dayStart    string // "HH:MM"
	dayEnd      string // "HH:MM"
	slotMinutes int
	marks       []string
}

// Slot is a free time range on a day.
type Slot struct {
	Day   schedule.Weekday
	Start string // "HH:MM"
	End   string // "HH:MM"
}

// New creates a Scheduler. workdays are day names (see schedule.ParseWeekday);
// dayStart and dayEnd bound the ladder of marks spaced slotMinutes apart.
func New(workdays []string, dayStart, dayEnd string, slotMinutes int) (*Scheduler, error) {
	days := make([]schedule.Weekday, 0, len(workdays))
	for _, name := range workdays {
		d, err := schedule.ParseWeekday(name)
		if err != nil {
			return nil, fmt.Errorf("workday: %w", err)
		}
		if !slices.Contains(days, d) {
			days = append(days, d)
		}
	}
	if len(days) == 0 {
		return nil, errors.New("at least one workday must be configured")
	}
	slices.Sort(days)

	marks, err := schedule.TimeLadder(dayStart, dayEnd, slotMinutes)
	if err != nil {
		return nil, err
	}

	return &Scheduler{
		workdays:    days,
		dayStart:    dayStart,
		dayEnd:      dayEnd,
		slotMinutes: slotMinutes,
		marks:       marks,
	}, nil
}

// Default returns the Monday to Friday, 07:00 to 20:00 hourly week.
func Default() *Scheduler {
	s, _ := New(
		[]string{"monday", "tuesday", "wednesday", "thursday", "friday"},
		schedule.DefaultDayStart, schedule.DefaultDayEnd, schedule.DefaultSlotMinutes,
	)
	return s
}

// Days returns the configured workdays in week order.
func (s *Scheduler) Days() []schedule.Weekday {
	return slices.Clone(s.workdays)
}

// Marks returns the selectable time marks, first to last.
func (s *Scheduler) Marks() []string {
	return slices.Clone(s.marks)
}

// DayStart returns the configured day start time.
func (s *Scheduler) DayStart() string {
	return s.dayStart
}

// DayEnd returns the configured day end time.
func (s *Scheduler) DayEnd() string {
	return s.dayEnd
}

// SlotMinutes returns the spacing between marks.
func (s *Scheduler) SlotMinutes() int {
	return s.slotMinutes
}

// IsWorkday returns true if d is a configured workday.
func (s *Scheduler) IsWorkday(d schedule.Weekday) bool {
	return slices.Contains(s.workdays, d)
}

// OnLadder returns true if label is one of the offered marks. "7:00" and
// "07:00" are the same mark.
func (s *Scheduler) OnLadder(label string) bool {
	m, err := schedule.ToMinutes(label)
	if err != nil {
		return false
	}
	return slices.Contains(s.marks, schedule.MinutesToTime(m))
}

// ValidateTimeSlot checks a slot chosen through the user interface: the day
// must be a workday and both times must be ladder marks with start before end.
// The schedule store accepts any valid time; this is the stricter UI rule.
func (s *Scheduler) ValidateTimeSlot(day schedule.Weekday, start, end string) error {
	if !s.IsWorkday(day) {
		return fmt.Errorf("%w: %s", ErrNotWorkday, day)
	}

	startMin, err := schedule.ToMinutes(start)
	if err != nil {
		return fmt.Errorf("start time: %w", err)
	}
	endMin, err := schedule.ToMinutes(end)
	if err != nil {
		return fmt.Errorf("end time: %w", err)
	}
	if startMin >= endMin {
		return fmt.Errorf("%w: %s-%s", schedule.ErrInvalidInterval, start, end)
	}

	dayStartMin, _ := schedule.ToMinutes(s.dayStart)
	dayEndMin, _ := schedule.ToMinutes(s.dayEnd)
	if startMin < dayStartMin || endMin > dayEndMin {
		return fmt.Errorf("%w: %s-%s not within %s-%s", ErrOutsideDay, start, end, s.dayStart, s.dayEnd)
	}

	if !s.OnLadder(start) {
		return fmt.Errorf("%w: %s", ErrOffLadder, start)
	}
	if !s.OnLadder(end) {
		return fmt.Errorf("%w: %s", ErrOffLadder, end)
	}
	return nil
}

// CanFit returns true if a class of durationMinutes starting at startTime ends
// no later than the end of the day.
func (s *Scheduler) CanFit(startTime string, durationMinutes int) bool {
	if durationMinutes <= 0 {
		return false
	}
	start, err := schedule.ToMinutes(startTime)
	if err != nil {
		return false
	}
	dayStart, _ := schedule.ToMinutes(s.dayStart)
	dayEnd, _ := schedule.ToMinutes(s.dayEnd)

	if start < dayStart || start >= dayEnd {
		return false
	}
	return start+durationMinutes <= dayEnd
}

// FreeSlots returns every ladder start on day where a class of
// durationMinutes for the teacher in the room would not conflict with
// entries. Either teacherID or roomID may be empty to ignore that dimension.
func (s *Scheduler) FreeSlots(entries []schedule.Entry, teacherID, roomID string, day schedule.Weekday, durationMinutes int) []Slot {
	if !s.IsWorkday(day) {
		return nil
	}

	var free []Slot
	for _, mark := range s.marks {
		if !s.CanFit(mark, durationMinutes) {
			continue
		}
		start, _ := schedule.ToMinutes(mark)
		candidate := schedule.Entry{
			TeacherID: teacherID,
			RoomID:    roomID,
			Day:       day,
			Start:     mark,
			End:       schedule.MinutesToTime(start + durationMinutes),
		}
		// Stored entries always carry both ids, so an empty id matches nothing.
		if schedule.HasConflict(candidate, entries, "") {
			continue
		}
		free = append(free, Slot{Day: day, Start: candidate.Start, End: candidate.End})
	}
	return free
}
