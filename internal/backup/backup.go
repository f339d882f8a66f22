// Package backup writes and restores TOML snapshots of the catalogs and the
// schedule. Times are kept as the exact labels they were entered with.
package backup

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/javiermolinar/timetable/internal/db"
	"github.com/javiermolinar/timetable/internal/schedule"
)

// Version is the snapshot format version written by Write.
const Version = 1

// ErrUnsupportedVersion is returned when a snapshot was written by a newer format.
var ErrUnsupportedVersion = errors.New("unsupported snapshot version")

type file struct {
	Version    int             `toml:"version"`
	ExportedAt time.Time       `toml:"exported_at"`
	Teachers   []teacherRecord `toml:"teachers"`
	Subjects   []subjectRecord `toml:"subjects"`
	Rooms      []roomRecord    `toml:"rooms"`
	Entries    []entryRecord   `toml:"entries"`
}

type teacherRecord struct {
	ID         string `toml:"id"`
	GivenName  string `toml:"given_name"`
	FamilyName string `toml:"family_name"`
}

type subjectRecord struct {
	ID   string `toml:"id"`
	Name string `toml:"name"`
	Code string `toml:"code"`
}

type roomRecord struct {
	ID   string `toml:"id"`
	Name string `toml:"name"`
}

type entryRecord struct {
	ID        string `toml:"id"`
	TeacherID string `toml:"teacher_id"`
	SubjectID string `toml:"subject_id"`
	RoomID    string `toml:"room_id"`
	Day       string `toml:"day"`
	Start     string `toml:"start"`
	End       string `toml:"end"`
}

// Write encodes snap as TOML.
func Write(w io.Writer, snap db.Snapshot, now time.Time) error {
	f := file{
		Version:    Version,
		ExportedAt: now.UTC().Truncate(time.Second),
	}
	for _, t := range snap.Teachers {
		f.Teachers = append(f.Teachers, teacherRecord{ID: t.ID, GivenName: t.GivenName, FamilyName: t.FamilyName})
	}
	for _, s := range snap.Subjects {
		f.Subjects = append(f.Subjects, subjectRecord{ID: s.ID, Name: s.Name, Code: s.Code})
	}
	for _, r := range snap.Rooms {
		f.Rooms = append(f.Rooms, roomRecord{ID: r.ID, Name: r.Name})
	}
	for _, e := range snap.Entries {
		f.Entries = append(f.Entries, entryRecord{
			ID:        e.ID,
			TeacherID: e.TeacherID,
			SubjectID: e.SubjectID,
			RoomID:    e.RoomID,
			Day:       e.Day.Key(),
			Start:     e.Start,
			End:       e.End,
		})
	}

	if err := toml.NewEncoder(w).Encode(f); err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	return nil
}

// Read decodes a snapshot and checks that its entries form a valid schedule:
// every entry passes validation and no two entries conflict.
func Read(r io.Reader) (db.Snapshot, error) {
	var f file
	dec := toml.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return db.Snapshot{}, fmt.Errorf("decoding snapshot: %w", err)
	}
	if f.Version < 1 || f.Version > Version {
		return db.Snapshot{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, f.Version)
	}

	var snap db.Snapshot
	for _, t := range f.Teachers {
		if t.ID == "" {
			return db.Snapshot{}, fmt.Errorf("teacher %q: %w: id", t.GivenName+" "+t.FamilyName, schedule.ErrMissingField)
		}
		snap.Teachers = append(snap.Teachers, schedule.Teacher{ID: t.ID, GivenName: t.GivenName, FamilyName: t.FamilyName})
	}
	for _, s := range f.Subjects {
		if s.ID == "" {
			return db.Snapshot{}, fmt.Errorf("subject %q: %w: id", s.Name, schedule.ErrMissingField)
		}
		snap.Subjects = append(snap.Subjects, schedule.Subject{ID: s.ID, Name: s.Name, Code: s.Code})
	}
	for _, rm := range f.Rooms {
		if rm.ID == "" {
			return db.Snapshot{}, fmt.Errorf("room %q: %w: id", rm.Name, schedule.ErrMissingField)
		}
		snap.Rooms = append(snap.Rooms, schedule.Room{ID: rm.ID, Name: rm.Name})
	}
	for _, e := range f.Entries {
		day, err := schedule.ParseWeekday(e.Day)
		if err != nil {
			return db.Snapshot{}, fmt.Errorf("entry %s: %w", e.ID, err)
		}
		snap.Entries = append(snap.Entries, schedule.Entry{
			ID:        e.ID,
			TeacherID: e.TeacherID,
			SubjectID: e.SubjectID,
			RoomID:    e.RoomID,
			Day:       day,
			Start:     e.Start,
			End:       e.End,
		})
	}

	if err := schedule.NewStore().Load(snap.Entries); err != nil {
		return db.Snapshot{}, err
	}
	return snap, nil
}

// WriteFile writes snap to path, creating parent directories.
func WriteFile(path string, snap db.Snapshot) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating backup directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating backup file: %w", err)
	}
	if err := Write(f, snap, time.Now()); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// ReadFile reads a snapshot from path.
func ReadFile(path string) (db.Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return db.Snapshot{}, fmt.Errorf("opening backup file: %w", err)
	}
	defer func() { _ = f.Close() }()
	return Read(f)
}
