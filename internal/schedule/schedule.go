// Package schedule defines the weekly class schedule domain: entries, the
// overlap arithmetic, conflict detection, the schedule store and the grid
// projection used to display a teacher's week.
package schedule

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validation errors.
var (
	ErrMissingField      = errors.New("required field is missing")
	ErrInvalidTimeFormat = errors.New("time must be in HH:MM format")
	ErrInvalidInterval   = errors.New("start time must be before end time")
	ErrInvalidDay        = errors.New("day must be monday through friday")
)

// Domain errors.
var (
	ErrScheduleConflict = errors.New("class conflicts with an existing class for the same teacher or room")
	ErrNotFound         = errors.New("schedule entry not found")
)

// Weekday is a teaching day. The zero value means the day is unset.
type Weekday int

const (
	Monday Weekday = iota + 1
	Tuesday
	Wednesday
	Thursday
	Friday
)

// Weekdays lists the teaching days in order.
var Weekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday}

var weekdayNames = [...]string{"", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}

// Valid returns true for Monday through Friday.
func (d Weekday) Valid() bool {
	return d >= Monday && d <= Friday
}

// String returns the English day name, e.g. "Monday".
func (d Weekday) String() string {
	if !d.Valid() {
		return fmt.Sprintf("Weekday(%d)", int(d))
	}
	return weekdayNames[d]
}

// Short returns the three-letter day name, e.g. "Mon".
func (d Weekday) Short() string {
	if !d.Valid() {
		return "?"
	}
	return weekdayNames[d][:3]
}

// Key returns the lowercase name used in storage and config files.
func (d Weekday) Key() string {
	return strings.ToLower(d.String())
}

// ParseWeekday parses a full or three-letter English day name, ignoring case.
func ParseWeekday(s string) (Weekday, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0, fmt.Errorf("%w: day", ErrMissingField)
	}
	for _, d := range Weekdays {
		if s == d.Key() || s == strings.ToLower(d.Short()) {
			return d, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidDay, s)
}

// Draft is a candidate entry before it has been given an id.
type Draft struct {
	TeacherID string  `json:"teacher_id" validate:"required"`
	SubjectID string  `json:"subject_id" validate:"required"`
	RoomID    string  `json:"room_id" validate:"required"`
	Day       Weekday `json:"day" validate:"required"`
	Start     string  `json:"start" validate:"required"` // "HH:MM"
	End       string  `json:"end" validate:"required"`   // "HH:MM"
}

// Entry is one recurring weekly class.
type Entry struct {
	ID        string
	TeacherID string
	SubjectID string
	RoomID    string
	Day       Weekday
	Start     string // "HH:MM"
	End       string // "HH:MM"
}

// Draft returns an editable copy of the entry without its id.
func (e Entry) Draft() Draft {
	return Draft{
		TeacherID: e.TeacherID,
		SubjectID: e.SubjectID,
		RoomID:    e.RoomID,
		Day:       e.Day,
		Start:     e.Start,
		End:       e.End,
	}
}

// Duration returns the class length in minutes, or 0 if the times are invalid.
func (e Entry) Duration() int {
	start, end, err := e.minutes()
	if err != nil {
		return 0
	}
	return end - start
}

func (e Entry) minutes() (start, end int, err error) {
	if start, err = ToMinutes(e.Start); err != nil {
		return 0, 0, err
	}
	if end, err = ToMinutes(e.End); err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

func (d Draft) entry(id string) Entry {
	return Entry{
		ID:        id,
		TeacherID: d.TeacherID,
		SubjectID: d.SubjectID,
		RoomID:    d.RoomID,
		Day:       d.Day,
		Start:     d.Start,
		End:       d.End,
	}
}

// Validate checks required fields, the day, the time labels and that the
// start comes strictly before the end. It does not look at other entries.
func (d Draft) Validate() error {
	if err := validateStruct(d); err != nil {
		return err
	}
	if !d.Day.Valid() {
		return fmt.Errorf("%w: got %d", ErrInvalidDay, int(d.Day))
	}

	start, err := ToMinutes(d.Start)
	if err != nil {
		return fmt.Errorf("start time: %w", err)
	}
	end, err := ToMinutes(d.End)
	if err != nil {
		return fmt.Errorf("end time: %w", err)
	}
	if start >= end {
		return fmt.Errorf("%w: %s-%s", ErrInvalidInterval, d.Start, d.End)
	}
	return nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report json field names instead of Go struct names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateStruct runs the struct tag rules and folds every failure into a
// single ErrMissingField listing the offending fields.
func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validating: %w", err)
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	return fmt.Errorf("%w: %s", ErrMissingField, strings.Join(fields, ", "))
}
