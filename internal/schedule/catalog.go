package schedule

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
)

// Placeholders shown when an entry references a catalog record that no
// longer exists.
const (
	TeacherNotFound = "Teacher not found"
	SubjectNotFound = "Subject not found"
	RoomNotFound    = "Room not found"
)

// Teacher is a person who can be assigned to classes.
type Teacher struct {
	ID         string `json:"id" validate:"required"`
	GivenName  string `json:"given_name" validate:"required"`
	FamilyName string `json:"family_name" validate:"required"`
}

// FullName returns "Given Family".
func (t Teacher) FullName() string {
	return t.GivenName + " " + t.FamilyName
}

// Subject is a course taught in a class.
type Subject struct {
	ID   string `json:"id" validate:"required"`
	Name string `json:"name" validate:"required"`
	Code string `json:"code" validate:"required"`
}

// Label returns "Name (CODE)".
func (s Subject) Label() string {
	return fmt.Sprintf("%s (%s)", s.Name, s.Code)
}

// Room is a place where classes are held.
type Room struct {
	ID   string `json:"id" validate:"required"`
	Name string `json:"name" validate:"required"`
}

// NewTeacher creates a teacher with a fresh id. Both names are required.
func NewTeacher(given, family string) (Teacher, error) {
	t := Teacher{
		ID:         uuid.NewString(),
		GivenName:  strings.TrimSpace(given),
		FamilyName: strings.TrimSpace(family),
	}
	if err := t.Validate(); err != nil {
		return Teacher{}, err
	}
	return t, nil
}

// Validate reports ErrMissingField when the id or either name is empty.
func (t Teacher) Validate() error {
	return validateStruct(t)
}

// NewSubject creates a subject with a fresh id.
func NewSubject(name, code string) (Subject, error) {
	s := Subject{
		ID:   uuid.NewString(),
		Name: strings.TrimSpace(name),
		Code: strings.ToUpper(strings.TrimSpace(code)),
	}
	if err := s.Validate(); err != nil {
		return Subject{}, err
	}
	return s, nil
}

// Validate reports ErrMissingField when the id, name or code is empty.
func (s Subject) Validate() error {
	return validateStruct(s)
}

// NewRoom creates a room with a fresh id.
func NewRoom(name string) (Room, error) {
	r := Room{
		ID:   uuid.NewString(),
		Name: strings.TrimSpace(name),
	}
	if err := r.Validate(); err != nil {
		return Room{}, err
	}
	return r, nil
}

// Validate reports ErrMissingField when the id or name is empty.
func (r Room) Validate() error {
	return validateStruct(r)
}

// Catalog is a read-only lookup of reference data by id. It is rebuilt by
// its owner whenever the underlying records change.
type Catalog struct {
	teachers map[string]Teacher
	subjects map[string]Subject
	rooms    map[string]Room
}

// NewCatalog indexes the given records by id.
func NewCatalog(teachers []Teacher, subjects []Subject, rooms []Room) *Catalog {
	c := &Catalog{
		teachers: make(map[string]Teacher, len(teachers)),
		subjects: make(map[string]Subject, len(subjects)),
		rooms:    make(map[string]Room, len(rooms)),
	}
	for _, t := range teachers {
		c.teachers[t.ID] = t
	}
	for _, s := range subjects {
		c.subjects[s.ID] = s
	}
	for _, r := range rooms {
		c.rooms[r.ID] = r
	}
	return c
}

// Teacher looks up a teacher by id.
func (c *Catalog) Teacher(id string) (Teacher, bool) {
	t, ok := c.teachers[id]
	return t, ok
}

// Subject looks up a subject by id.
func (c *Catalog) Subject(id string) (Subject, bool) {
	s, ok := c.subjects[id]
	return s, ok
}

// Room looks up a room by id.
func (c *Catalog) Room(id string) (Room, bool) {
	r, ok := c.rooms[id]
	return r, ok
}

// TeacherName returns the teacher's full name or a placeholder.
func (c *Catalog) TeacherName(id string) string {
	if t, ok := c.teachers[id]; ok {
		return t.FullName()
	}
	return TeacherNotFound
}

// SubjectName returns the subject name or a placeholder.
func (c *Catalog) SubjectName(id string) string {
	if s, ok := c.subjects[id]; ok {
		return s.Name
	}
	return SubjectNotFound
}

// RoomName returns the room name or a placeholder.
func (c *Catalog) RoomName(id string) string {
	if r, ok := c.rooms[id]; ok {
		return r.Name
	}
	return RoomNotFound
}

// Teachers returns every teacher sorted by family then given name.
func (c *Catalog) Teachers() []Teacher {
	return c.SearchTeachers("")
}

// SearchTeachers returns teachers whose given or family name contains query,
// ignoring case, sorted by family then given name. An empty query matches all.
func (c *Catalog) SearchTeachers(query string) []Teacher {
	query = strings.ToLower(strings.TrimSpace(query))
	result := make([]Teacher, 0, len(c.teachers))
	for _, t := range c.teachers {
		if query == "" ||
			strings.Contains(strings.ToLower(t.GivenName), query) ||
			strings.Contains(strings.ToLower(t.FamilyName), query) {
			result = append(result, t)
		}
	}
	slices.SortFunc(result, func(a, b Teacher) int {
		return cmp.Or(
			cmp.Compare(a.FamilyName, b.FamilyName),
			cmp.Compare(a.GivenName, b.GivenName),
			cmp.Compare(a.ID, b.ID),
		)
	})
	return result
}

// Subjects returns every subject sorted by name.
func (c *Catalog) Subjects() []Subject {
	result := make([]Subject, 0, len(c.subjects))
	for _, s := range c.subjects {
		result = append(result, s)
	}
	slices.SortFunc(result, func(a, b Subject) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.ID, b.ID))
	})
	return result
}

// Rooms returns every room sorted by name.
func (c *Catalog) Rooms() []Room {
	result := make([]Room, 0, len(c.rooms))
	for _, r := range c.rooms {
		result = append(result, r)
	}
	slices.SortFunc(result, func(a, b Room) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.ID, b.ID))
	})
	return result
}
