package schedule

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// Store is the authoritative collection of schedule entries. Every command
// holds the store lock from validation to commit, so two commands never
// validate against the same stale snapshot.
type Store struct {
	mu      sync.Mutex
	entries []Entry // store order; display only
	backend Backend
	newID   func() string
	log     Logger
}

// Option configures a Store.
type Option func(*Store)

// WithBackend writes every committed change through to b.
func WithBackend(b Backend) Option {
	return func(s *Store) { s.backend = b }
}

// WithIDGenerator replaces the default UUID generator.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

// WithLogger reports commits and rejections to l.
func WithLogger(l Logger) Option {
	return func(s *Store) { s.log = l }
}

// NewStore creates an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		entries: make([]Entry, 0),
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the store contents with entries read from a collaborator.
// Entries are checked in order against the ones before them; if any fails
// validation or conflicts, nothing is loaded. The backend is not called.
func (s *Store) Load(entries []Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	loaded := make([]Entry, 0, len(entries))
	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		if e.ID == "" {
			return fmt.Errorf("loading entry: %w: id", ErrMissingField)
		}
		if seen[e.ID] {
			return fmt.Errorf("loading entry %s: duplicate id", e.ID)
		}
		if err := e.Draft().Validate(); err != nil {
			return fmt.Errorf("loading entry %s: %w", e.ID, err)
		}
		if conflicts := FindConflicts(e, loaded, ""); len(conflicts) > 0 {
			return fmt.Errorf("loading entry %s: %w", e.ID, &ConflictError{Candidate: e, Conflicts: conflicts})
		}
		seen[e.ID] = true
		loaded = append(loaded, e)
	}

	s.entries = loaded
	s.logEvent("STORE_LOADED", map[string]any{"entries": len(loaded)})
	return nil
}

// Create validates the draft, checks it against every existing entry, and
// commits it under a fresh id.
func (s *Store) Create(ctx context.Context, d Draft) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := d.entry("")
	if err := s.check(e, ""); err != nil {
		s.reject("create", e, err)
		return Entry{}, err
	}

	e.ID = s.newID()
	if s.backend != nil {
		if err := s.backend.InsertEntry(ctx, e); err != nil {
			s.reject("create", e, err)
			return Entry{}, fmt.Errorf("persisting entry: %w", err)
		}
	}

	s.entries = append(s.entries, e)
	s.logEvent("ENTRY_CREATED", entryData(e))
	return e, nil
}

// Update fully replaces the entry with the given id. The entry's own previous
// version is ignored when checking for conflicts.
func (s *Store) Update(ctx context.Context, id string, d Draft) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		err := fmt.Errorf("%w: %s", ErrNotFound, id)
		s.reject("update", Entry{ID: id}, err)
		return Entry{}, err
	}

	e := d.entry(id)
	if err := s.check(e, id); err != nil {
		s.reject("update", e, err)
		return Entry{}, err
	}

	if s.backend != nil {
		if err := s.backend.ReplaceEntry(ctx, e); err != nil {
			s.reject("update", e, err)
			return Entry{}, fmt.Errorf("persisting entry: %w", err)
		}
	}

	s.entries[idx] = e
	s.logEvent("ENTRY_UPDATED", entryData(e))
	return e, nil
}

// Delete removes the entry with the given id. Deleting an id that is not in
// the store returns ErrNotFound.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		err := fmt.Errorf("%w: %s", ErrNotFound, id)
		s.reject("delete", Entry{ID: id}, err)
		return err
	}

	if s.backend != nil {
		if err := s.backend.DeleteEntry(ctx, id); err != nil {
			s.reject("delete", s.entries[idx], err)
			return fmt.Errorf("deleting entry: %w", err)
		}
	}

	removed := s.entries[idx]
	s.entries = slices.Delete(s.entries, idx, idx+1)
	s.logEvent("ENTRY_DELETED", entryData(removed))
	return nil
}

// Get returns a copy of the entry with the given id.
func (s *Store) Get(id string) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.entries[idx], nil
}

// ListByTeacher returns the teacher's entries in store order.
func (s *Store) ListByTeacher(teacherID string) []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []Entry
	for _, e := range s.entries {
		if e.TeacherID == teacherID {
			result = append(result, e)
		}
	}
	return result
}

// Entries returns a copy of every entry in store order.
func (s *Store) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.entries)
}

// Len returns the number of entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Grid projects the teacher's week from the current entries.
func (s *Store) Grid(teacherID string, days []Weekday, marks []string) *Grid {
	return ProjectGrid(s.Entries(), teacherID, days, marks)
}

// check runs draft validation and conflict detection. Callers hold s.mu.
func (s *Store) check(e Entry, excludeID string) error {
	if err := e.Draft().Validate(); err != nil {
		return err
	}
	if conflicts := FindConflicts(e, s.entries, excludeID); len(conflicts) > 0 {
		return &ConflictError{Candidate: e, Conflicts: conflicts}
	}
	return nil
}

func (s *Store) indexOf(id string) int {
	if id == "" {
		return -1
	}
	return slices.IndexFunc(s.entries, func(e Entry) bool { return e.ID == id })
}

func (s *Store) reject(op string, e Entry, err error) {
	data := entryData(e)
	data["op"] = op
	data["error"] = err.Error()
	var cerr *ConflictError
	if errors.As(err, &cerr) {
		ids := make([]string, 0, len(cerr.Conflicts))
		for _, c := range cerr.Conflicts {
			ids = append(ids, c.Entry.ID)
		}
		data["conflicts"] = ids
	}
	s.logEvent("ENTRY_REJECTED", data)
}

func (s *Store) logEvent(event string, data map[string]any) {
	if s.log == nil {
		return
	}
	s.log.Log(event, data)
}

func entryData(e Entry) map[string]any {
	return map[string]any{
		"id":         e.ID,
		"teacher_id": e.TeacherID,
		"subject_id": e.SubjectID,
		"room_id":    e.RoomID,
		"day":        e.Day.Key(),
		"start":      e.Start,
		"end":        e.End,
	}
}
