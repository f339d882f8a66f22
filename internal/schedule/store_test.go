package schedule

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
)

// fakeBackend records calls and can be told to fail.
type fakeBackend struct {
	mu      sync.Mutex
	inserts []Entry
	updates []Entry
	deletes []string
	fail    error
}

func (b *fakeBackend) InsertEntry(_ context.Context, e Entry) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fail != nil {
		return b.fail
	}
	b.inserts = append(b.inserts, e)
	return nil
}

func (b *fakeBackend) ReplaceEntry(_ context.Context, e Entry) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fail != nil {
		return b.fail
	}
	b.updates = append(b.updates, e)
	return nil
}

func (b *fakeBackend) DeleteEntry(_ context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fail != nil {
		return b.fail
	}
	b.deletes = append(b.deletes, id)
	return nil
}

// recordingLogger collects event names.
type recordingLogger struct {
	mu     sync.Mutex
	events []string
}

func (l *recordingLogger) Log(event string, _ map[string]any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, event)
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("e%d", n)
	}
}

func newTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	return NewStore(append([]Option{WithIDGenerator(sequentialIDs())}, opts...)...)
}

func draft(teacher, subject, room string, day Weekday, start, end string) Draft {
	return Draft{TeacherID: teacher, SubjectID: subject, RoomID: room, Day: day, Start: start, End: end}
}

func mustCreate(t *testing.T, s *Store, d Draft) Entry {
	t.Helper()
	e, err := s.Create(context.Background(), d)
	if err != nil {
		t.Fatalf("Create(%+v) failed: %v", d, err)
	}
	return e
}

func TestCreate(t *testing.T) {
	s := NewStore()
	e := mustCreate(t, s, draft("t1", "math", "r1", Monday, "08:00", "09:00"))

	if e.ID == "" {
		t.Error("expected a fresh id")
	}
	if e.TeacherID != "t1" || e.SubjectID != "math" || e.RoomID != "r1" || e.Day != Monday || e.Start != "08:00" || e.End != "09:00" {
		t.Errorf("unexpected entry: %+v", e)
	}
	if s.Len() != 1 {
		t.Errorf("expected 1 entry, got %d", s.Len())
	}

	other := mustCreate(t, s, draft("t1", "math", "r1", Monday, "09:00", "10:00"))
	if other.ID == e.ID {
		t.Error("ids must be unique")
	}
}

func TestCreate_Validation(t *testing.T) {
	tests := []struct {
		name    string
		draft   Draft
		wantErr error
		field   string
	}{
		{name: "missing teacher", draft: draft("", "s", "r", Monday, "08:00", "09:00"), wantErr: ErrMissingField, field: "teacher_id"},
		{name: "missing subject", draft: draft("t", "", "r", Monday, "08:00", "09:00"), wantErr: ErrMissingField, field: "subject_id"},
		{name: "missing room", draft: draft("t", "s", "", Monday, "08:00", "09:00"), wantErr: ErrMissingField, field: "room_id"},
		{name: "missing day", draft: draft("t", "s", "r", 0, "08:00", "09:00"), wantErr: ErrMissingField, field: "day"},
		{name: "missing start", draft: draft("t", "s", "r", Monday, "", "09:00"), wantErr: ErrMissingField, field: "start"},
		{name: "missing end", draft: draft("t", "s", "r", Monday, "08:00", ""), wantErr: ErrMissingField, field: "end"},
		{name: "weekend day", draft: draft("t", "s", "r", Weekday(6), "08:00", "09:00"), wantErr: ErrInvalidDay},
		{name: "bad start", draft: draft("t", "s", "r", Monday, "eight", "09:00"), wantErr: ErrInvalidTimeFormat},
		{name: "bad end", draft: draft("t", "s", "r", Monday, "08:00", "25:00"), wantErr: ErrInvalidTimeFormat},
		{name: "start equals end", draft: draft("t", "s", "r", Monday, "08:00", "08:00"), wantErr: ErrInvalidInterval},
		{name: "start after end", draft: draft("t", "s", "r", Monday, "10:00", "09:00"), wantErr: ErrInvalidInterval},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore()
			_, err := s.Create(context.Background(), tt.draft)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if tt.field != "" && !strings.Contains(err.Error(), tt.field) {
				t.Errorf("expected error to name %q, got %v", tt.field, err)
			}
			if s.Len() != 0 {
				t.Error("rejected create must not change the store")
			}
		})
	}
}

func TestCreate_InvalidIntervalRegardlessOfConflicts(t *testing.T) {
	s := newTestStore(t)
	mustCreate(t, s, draft("t1", "math", "r1", Monday, "08:00", "09:00"))

	// Would also conflict, but I1 is checked first.
	_, err := s.Create(context.Background(), draft("t1", "math", "r1", Monday, "09:00", "08:00"))
	if !errors.Is(err, ErrInvalidInterval) {
		t.Errorf("expected ErrInvalidInterval, got %v", err)
	}
}

func TestCreate_TeacherConflict(t *testing.T) {
	s := newTestStore(t)
	mustCreate(t, s, draft("T", "math", "R1", Monday, "08:00", "09:00"))

	_, err := s.Create(context.Background(), draft("T", "art", "R2", Monday, "08:30", "09:30"))
	if !errors.Is(err, ErrScheduleConflict) {
		t.Fatalf("expected ErrScheduleConflict, got %v", err)
	}
	var cerr *ConflictError
	if !errors.As(err, &cerr) {
		t.Fatal("expected *ConflictError")
	}
	if len(cerr.Conflicts) != 1 || !cerr.Conflicts[0].Teacher || cerr.Conflicts[0].Room {
		t.Errorf("expected one teacher-only conflict, got %+v", cerr.Conflicts)
	}
	if s.Len() != 1 {
		t.Errorf("expected store unchanged, got %d entries", s.Len())
	}
}

func TestCreate_RoomConflict(t *testing.T) {
	s := newTestStore(t)
	mustCreate(t, s, draft("T1", "math", "R", Monday, "08:00", "09:00"))

	_, err := s.Create(context.Background(), draft("T2", "art", "R", Monday, "08:00", "09:00"))
	if !errors.Is(err, ErrScheduleConflict) {
		t.Fatalf("expected ErrScheduleConflict, got %v", err)
	}
}

func TestCreate_BoundaryTouch(t *testing.T) {
	s := newTestStore(t)
	mustCreate(t, s, draft("T", "math", "R", Monday, "08:00", "09:00"))
	mustCreate(t, s, draft("T", "math", "R", Monday, "09:00", "10:00"))
	mustCreate(t, s, draft("T", "math", "R", Monday, "07:00", "08:00"))

	if s.Len() != 3 {
		t.Errorf("expected 3 back-to-back entries, got %d", s.Len())
	}
}

func TestCreate_IndependentDays(t *testing.T) {
	s := newTestStore(t)
	for _, d := range Weekdays {
		mustCreate(t, s, draft("T", "math", "R", d, "08:00", "09:00"))
	}
	if s.Len() != 5 {
		t.Errorf("expected 5 entries, got %d", s.Len())
	}
}

func TestCreate_OffLadderTimes(t *testing.T) {
	s := newTestStore(t)
	mustCreate(t, s, draft("T", "math", "R", Monday, "06:15", "07:45"))

	if _, err := s.Create(context.Background(), draft("T", "math", "R2", Monday, "07:30", "08:00")); !errors.Is(err, ErrScheduleConflict) {
		t.Errorf("expected conflict on arbitrary minutes, got %v", err)
	}
	mustCreate(t, s, draft("T", "math", "R", Monday, "07:45", "21:10"))
}

func TestUpdate(t *testing.T) {
	s := newTestStore(t)
	e := mustCreate(t, s, draft("t1", "math", "r1", Monday, "08:00", "09:00"))
	mustCreate(t, s, draft("t2", "art", "r2", Monday, "08:00", "09:00"))

	d := e.Draft()
	d.End = "10:00"
	d.SubjectID = "physics"

	updated, err := s.Update(context.Background(), e.ID, d)
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.ID != e.ID {
		t.Errorf("update must keep id %s, got %s", e.ID, updated.ID)
	}

	got, err := s.Get(e.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.End != "10:00" || got.SubjectID != "physics" {
		t.Errorf("expected full replace, got %+v", got)
	}

	entries := s.Entries()
	if entries[0].ID != e.ID {
		t.Error("update must keep store order")
	}
}

func TestUpdate_UnchangedRangeNeverConflictsWithItself(t *testing.T) {
	s := newTestStore(t)
	e := mustCreate(t, s, draft("t1", "math", "r1", Friday, "13:00", "15:00"))

	if _, err := s.Update(context.Background(), e.ID, e.Draft()); err != nil {
		t.Errorf("unchanged update should succeed, got %v", err)
	}
}

func TestUpdate_Conflict(t *testing.T) {
	s := newTestStore(t)
	a := mustCreate(t, s, draft("t1", "math", "r1", Monday, "08:00", "09:00"))
	mustCreate(t, s, draft("t1", "art", "r2", Monday, "10:00", "11:00"))

	d := a.Draft()
	d.End = "10:30"
	if _, err := s.Update(context.Background(), a.ID, d); !errors.Is(err, ErrScheduleConflict) {
		t.Fatalf("expected ErrScheduleConflict, got %v", err)
	}

	got, _ := s.Get(a.ID)
	if got.End != "09:00" {
		t.Errorf("rejected update must leave entry untouched, got end %s", got.End)
	}
}

func TestUpdate_Errors(t *testing.T) {
	s := newTestStore(t)
	e := mustCreate(t, s, draft("t1", "math", "r1", Monday, "08:00", "09:00"))

	if _, err := s.Update(context.Background(), "missing", e.Draft()); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	bad := e.Draft()
	bad.Start = "09:00"
	if _, err := s.Update(context.Background(), e.ID, bad); !errors.Is(err, ErrInvalidInterval) {
		t.Errorf("expected ErrInvalidInterval, got %v", err)
	}

	bad = e.Draft()
	bad.RoomID = ""
	if _, err := s.Update(context.Background(), e.ID, bad); !errors.Is(err, ErrMissingField) {
		t.Errorf("expected ErrMissingField, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)
	e := mustCreate(t, s, draft("t1", "math", "r1", Monday, "08:00", "09:00"))

	if err := s.Delete(context.Background(), e.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if s.Len() != 0 {
		t.Errorf("expected empty store, got %d", s.Len())
	}
	if err := s.Delete(context.Background(), e.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete should return ErrNotFound, got %v", err)
	}
	if _, err := s.Get(e.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after delete should return ErrNotFound, got %v", err)
	}
}

func TestDelete_ThenRecreate(t *testing.T) {
	s := newTestStore(t)
	d := draft("t1", "math", "r1", Thursday, "08:00", "09:00")
	e := mustCreate(t, s, d)

	if err := s.Delete(context.Background(), e.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	again := mustCreate(t, s, d)
	if again.ID == e.ID {
		t.Error("recreated entry should get a new id")
	}
}

func TestListByTeacher(t *testing.T) {
	s := newTestStore(t)
	a := mustCreate(t, s, draft("t1", "math", "r1", Tuesday, "10:00", "11:00"))
	mustCreate(t, s, draft("t2", "math", "r2", Tuesday, "10:00", "11:00"))
	b := mustCreate(t, s, draft("t1", "math", "r1", Monday, "08:00", "09:00"))

	got := s.ListByTeacher("t1")
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got[0].ID != a.ID || got[1].ID != b.ID {
		t.Errorf("expected store order [%s %s], got [%s %s]", a.ID, b.ID, got[0].ID, got[1].ID)
	}
	if len(s.ListByTeacher("nobody")) != 0 {
		t.Error("expected no entries for unknown teacher")
	}

	got[0].Start = "00:00"
	if again, _ := s.Get(a.ID); again.Start != "10:00" {
		t.Error("ListByTeacher must return copies")
	}
}

func TestStore_BackendWriteThrough(t *testing.T) {
	backend := &fakeBackend{}
	s := newTestStore(t, WithBackend(backend))
	ctx := context.Background()

	e := mustCreate(t, s, draft("t1", "math", "r1", Monday, "08:00", "09:00"))
	d := e.Draft()
	d.End = "09:30"
	if _, err := s.Update(ctx, e.ID, d); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if err := s.Delete(ctx, e.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if len(backend.inserts) != 1 || backend.inserts[0].ID != e.ID {
		t.Errorf("expected one insert of %s, got %+v", e.ID, backend.inserts)
	}
	if len(backend.updates) != 1 || backend.updates[0].End != "09:30" {
		t.Errorf("expected one full replace, got %+v", backend.updates)
	}
	if len(backend.deletes) != 1 || backend.deletes[0] != e.ID {
		t.Errorf("expected one delete, got %v", backend.deletes)
	}

	// Rejected commands never reach the backend.
	mustCreate(t, s, draft("t1", "math", "r1", Monday, "08:00", "09:00"))
	_, _ = s.Create(ctx, draft("t1", "math", "r1", Monday, "08:00", "09:00"))
	if len(backend.inserts) != 2 {
		t.Errorf("conflicting create must not be persisted, got %d inserts", len(backend.inserts))
	}
}

func TestStore_BackendFailureLeavesStoreUntouched(t *testing.T) {
	backend := &fakeBackend{}
	s := newTestStore(t, WithBackend(backend))
	ctx := context.Background()
	e := mustCreate(t, s, draft("t1", "math", "r1", Monday, "08:00", "09:00"))

	backend.fail = errors.New("disk full")

	if _, err := s.Create(ctx, draft("t2", "math", "r2", Monday, "08:00", "09:00")); err == nil {
		t.Error("expected create to fail")
	}
	d := e.Draft()
	d.End = "11:00"
	if _, err := s.Update(ctx, e.ID, d); err == nil {
		t.Error("expected update to fail")
	}
	if err := s.Delete(ctx, e.ID); err == nil {
		t.Error("expected delete to fail")
	}

	entries := s.Entries()
	if len(entries) != 1 || entries[0].End != "09:00" {
		t.Errorf("store changed after backend failures: %+v", entries)
	}
}

func TestStore_ConcurrentCreatesCommitOnce(t *testing.T) {
	s := NewStore()
	d := draft("t1", "math", "r1", Monday, "08:00", "09:00")

	const workers = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		conflicts int
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Create(context.Background(), d)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, ErrScheduleConflict):
				conflicts++
			}
		}()
	}
	wg.Wait()

	if succeeded != 1 || conflicts != workers-1 {
		t.Errorf("expected 1 success and %d conflicts, got %d and %d", workers-1, succeeded, conflicts)
	}
}

func TestStore_Load(t *testing.T) {
	s := NewStore()
	entries := []Entry{
		entry("a", "t1", "r1", Monday, "08:00", "09:00"),
		entry("b", "t1", "r1", Monday, "09:00", "10:00"),
	}
	if err := s.Load(entries); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if s.Len() != 2 {
		t.Errorf("expected 2 entries, got %d", s.Len())
	}

	bad := append(entries, entry("c", "t1", "r2", Monday, "08:30", "09:30"))
	if err := s.Load(bad); !errors.Is(err, ErrScheduleConflict) {
		t.Errorf("expected ErrScheduleConflict, got %v", err)
	}
	if s.Len() != 2 {
		t.Error("failed load must keep previous contents")
	}

	dup := []Entry{entries[0], entries[0]}
	if err := s.Load(dup); err == nil {
		t.Error("expected error for duplicate ids")
	}
}

func TestStore_Logger(t *testing.T) {
	log := &recordingLogger{}
	s := newTestStore(t, WithLogger(log))
	ctx := context.Background()

	e := mustCreate(t, s, draft("t1", "math", "r1", Monday, "08:00", "09:00"))
	_, _ = s.Create(ctx, draft("t1", "math", "r2", Monday, "08:00", "09:00"))
	_ = s.Delete(ctx, e.ID)

	want := []string{"ENTRY_CREATED", "ENTRY_REJECTED", "ENTRY_DELETED"}
	if strings.Join(log.events, ",") != strings.Join(want, ",") {
		t.Errorf("events = %v, want %v", log.events, want)
	}
}

func TestEndToEndScenario(t *testing.T) {
	catalog := NewCatalog(
		[]Teacher{{ID: "t1", GivenName: "Ana", FamilyName: "Ruiz"}},
		[]Subject{{ID: "subjectX", Name: "Math", Code: "MAT101"}, {ID: "subjectY", Name: "Art", Code: "ART101"}},
		[]Room{{ID: "r1", Name: "Room 101"}},
	)
	s := NewStore()
	ctx := context.Background()

	first, err := s.Create(ctx, draft("t1", "subjectX", "r1", Monday, "08:00", "09:00"))
	if err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	if first.ID == "" {
		t.Fatal("expected a fresh id")
	}

	if _, err := s.Create(ctx, draft("t1", "subjectY", "r1", Monday, "08:30", "09:30")); !errors.Is(err, ErrScheduleConflict) {
		t.Fatalf("expected ErrScheduleConflict, got %v", err)
	}

	d := first.Draft()
	d.End = "10:00"
	if _, err := s.Update(ctx, first.ID, d); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	if err := s.Delete(ctx, first.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if got := s.ListByTeacher("t1"); len(got) != 0 {
		t.Errorf("expected no entries for t1, got %d", len(got))
	}
	if name := catalog.TeacherName("t1"); name != "Ana Ruiz" {
		t.Errorf("TeacherName = %q", name)
	}
}
