// Package db provides SQLite storage implementation.
package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/javiermolinar/timetable/internal/schedule"
)

// SQLite implements schedule.Backend and schedule.CatalogRepository.
type SQLite struct {
	db *sql.DB
}

var (
	_ schedule.Backend           = (*SQLite)(nil)
	_ schedule.CatalogRepository = (*SQLite)(nil)
)

// dsnOptions make every transaction take the write lock up front and wait
// for other processes holding it instead of failing with SQLITE_BUSY.
const dsnOptions = "?_txlock=immediate&_pragma=busy_timeout(5000)"

// New creates a new SQLite repository and runs migrations.
func New(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path+dsnOptions)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	s := &SQLite{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close releases database resources.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// InsertEntry stores a new entry after every existing one. The entry is
// checked against the rows in the database, not only the caller's copy, so
// another process that committed first wins and this one gets a
// *schedule.ConflictError.
func (s *SQLite) InsertEntry(ctx context.Context, e schedule.Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := checkConflictTx(ctx, tx, e, ""); err != nil {
		return err
	}
	if err := insertEntry(ctx, tx, e); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// ReplaceEntry overwrites the entry with the same ID, keeping its position.
// Like InsertEntry it re-checks conflicts against the database, skipping the
// entry's own row.
func (s *SQLite) ReplaceEntry(ctx context.Context, e schedule.Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `
		UPDATE schedule_entries
		SET teacher_id = ?, subject_id = ?, room_id = ?, day = ?, start_time = ?, end_time = ?
		WHERE id = ?
	`

	result, err := tx.ExecContext(ctx, query,
		e.TeacherID,
		e.SubjectID,
		e.RoomID,
		e.Day.Key(),
		e.Start,
		e.End,
		e.ID,
	)
	if err != nil {
		return fmt.Errorf("updating entry: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("%w: %s", schedule.ErrNotFound, e.ID)
	}

	if err := checkConflictTx(ctx, tx, e, e.ID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// DeleteEntry removes the entry with the given ID.
func (s *SQLite) DeleteEntry(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM schedule_entries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting entry: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("%w: %s", schedule.ErrNotFound, id)
	}

	return nil
}

// ListEntries returns every entry in insertion order.
func (s *SQLite) ListEntries(ctx context.Context) ([]schedule.Entry, error) {
	query := `
		SELECT id, teacher_id, subject_id, room_id, day, start_time, end_time
		FROM schedule_entries
		ORDER BY seq
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying entries: %w", err)
	}
	return scanEntries(rows)
}

// checkConflictTx returns a *schedule.ConflictError if e clashes with a
// stored entry other than excludeID. Labels such as "7:00" and "07:00" do not
// compare as strings, so overlap is decided by schedule.FindConflicts on the
// candidate rows.
func checkConflictTx(ctx context.Context, tx *sql.Tx, e schedule.Entry, excludeID string) error {
	query := `
		SELECT id, teacher_id, subject_id, room_id, day, start_time, end_time
		FROM schedule_entries
		WHERE day = ?
		  AND id != ?
		  AND (teacher_id = ? OR room_id = ?)
		ORDER BY seq
	`

	rows, err := tx.QueryContext(ctx, query, e.Day.Key(), excludeID, e.TeacherID, e.RoomID)
	if err != nil {
		return fmt.Errorf("checking conflicts: %w", err)
	}
	existing, err := scanEntries(rows)
	if err != nil {
		return err
	}

	if conflicts := schedule.FindConflicts(e, existing, excludeID); len(conflicts) > 0 {
		return &schedule.ConflictError{Candidate: e, Conflicts: conflicts}
	}
	return nil
}

// scanEntries reads entry rows and closes them.
func scanEntries(rows *sql.Rows) ([]schedule.Entry, error) {
	defer func() { _ = rows.Close() }()

	var entries []schedule.Entry
	for rows.Next() {
		var (
			e   schedule.Entry
			day string
		)
		if err := rows.Scan(&e.ID, &e.TeacherID, &e.SubjectID, &e.RoomID, &day, &e.Start, &e.End); err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}
		d, err := schedule.ParseWeekday(day)
		if err != nil {
			return nil, fmt.Errorf("entry %s: %w", e.ID, err)
		}
		e.Day = d
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entries: %w", err)
	}

	return entries, nil
}

// CreateTeacher adds a teacher.
func (s *SQLite) CreateTeacher(ctx context.Context, t schedule.Teacher) error {
	return insertTeacher(ctx, s.db, t)
}

// UpdateTeacher renames the teacher with the same ID.
func (s *SQLite) UpdateTeacher(ctx context.Context, t schedule.Teacher) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE teachers SET given_name = ?, family_name = ? WHERE id = ?`,
		t.GivenName, t.FamilyName, t.ID,
	)
	if err != nil {
		return fmt.Errorf("updating teacher: %w", err)
	}
	return requireRow(result, t.ID)
}

// DeleteTeacher removes a teacher. Their classes are kept.
func (s *SQLite) DeleteTeacher(ctx context.Context, id string) error {
	return s.deleteRecord(ctx, "teachers", id)
}

// ListTeachers returns all teachers ordered by family then given name.
func (s *SQLite) ListTeachers(ctx context.Context) ([]schedule.Teacher, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, given_name, family_name FROM teachers ORDER BY family_name, given_name, id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying teachers: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var teachers []schedule.Teacher
	for rows.Next() {
		var t schedule.Teacher
		if err := rows.Scan(&t.ID, &t.GivenName, &t.FamilyName); err != nil {
			return nil, fmt.Errorf("scanning teacher: %w", err)
		}
		teachers = append(teachers, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating teachers: %w", err)
	}
	return teachers, nil
}

// CreateSubject adds a subject.
func (s *SQLite) CreateSubject(ctx context.Context, sub schedule.Subject) error {
	return insertSubject(ctx, s.db, sub)
}

// UpdateSubject overwrites the subject with the same ID.
func (s *SQLite) UpdateSubject(ctx context.Context, sub schedule.Subject) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE subjects SET name = ?, code = ? WHERE id = ?`,
		sub.Name, sub.Code, sub.ID,
	)
	if err != nil {
		return fmt.Errorf("updating subject: %w", err)
	}
	return requireRow(result, sub.ID)
}

// DeleteSubject removes a subject. Classes teaching it are kept.
func (s *SQLite) DeleteSubject(ctx context.Context, id string) error {
	return s.deleteRecord(ctx, "subjects", id)
}

// ListSubjects returns all subjects ordered by name.
func (s *SQLite) ListSubjects(ctx context.Context) ([]schedule.Subject, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, code FROM subjects ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("querying subjects: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var subjects []schedule.Subject
	for rows.Next() {
		var sub schedule.Subject
		if err := rows.Scan(&sub.ID, &sub.Name, &sub.Code); err != nil {
			return nil, fmt.Errorf("scanning subject: %w", err)
		}
		subjects = append(subjects, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating subjects: %w", err)
	}
	return subjects, nil
}

// CreateRoom adds a room.
func (s *SQLite) CreateRoom(ctx context.Context, r schedule.Room) error {
	return insertRoom(ctx, s.db, r)
}

// UpdateRoom renames the room with the same ID.
func (s *SQLite) UpdateRoom(ctx context.Context, r schedule.Room) error {
	result, err := s.db.ExecContext(ctx, `UPDATE rooms SET name = ? WHERE id = ?`, r.Name, r.ID)
	if err != nil {
		return fmt.Errorf("updating room: %w", err)
	}
	return requireRow(result, r.ID)
}

// DeleteRoom removes a room. Classes held in it are kept.
func (s *SQLite) DeleteRoom(ctx context.Context, id string) error {
	return s.deleteRecord(ctx, "rooms", id)
}

// deleteRecord removes the row with id from one of the catalog tables.
func (s *SQLite) deleteRecord(ctx context.Context, table, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM "+table+" WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting from %s: %w", table, err)
	}
	return requireRow(result, id)
}

// requireRow returns schedule.ErrNotFound when result touched no row.
func requireRow(result sql.Result, id string) error {
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("%w: %s", schedule.ErrNotFound, id)
	}
	return nil
}

// ListRooms returns all rooms ordered by name.
func (s *SQLite) ListRooms(ctx context.Context) ([]schedule.Room, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM rooms ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("querying rooms: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var rooms []schedule.Room
	for rows.Next() {
		var r schedule.Room
		if err := rows.Scan(&r.ID, &r.Name); err != nil {
			return nil, fmt.Errorf("scanning room: %w", err)
		}
		rooms = append(rooms, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rooms: %w", err)
	}
	return rooms, nil
}

// LoadCatalog reads all three catalogs into a schedule.Catalog.
func (s *SQLite) LoadCatalog(ctx context.Context) (*schedule.Catalog, error) {
	teachers, err := s.ListTeachers(ctx)
	if err != nil {
		return nil, err
	}
	subjects, err := s.ListSubjects(ctx)
	if err != nil {
		return nil, err
	}
	rooms, err := s.ListRooms(ctx)
	if err != nil {
		return nil, err
	}
	return schedule.NewCatalog(teachers, subjects, rooms), nil
}

// Snapshot is the full contents of the database.
type Snapshot struct {
	Teachers []schedule.Teacher
	Subjects []schedule.Subject
	Rooms    []schedule.Room
	Entries  []schedule.Entry
}

// ReplaceAll deletes everything and writes snap in a single transaction.
// Entries keep the order they have in snap.
func (s *SQLite) ReplaceAll(ctx context.Context, snap Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"schedule_entries", "teachers", "subjects", "rooms"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	for _, t := range snap.Teachers {
		if err := insertTeacher(ctx, tx, t); err != nil {
			return err
		}
	}
	for _, sub := range snap.Subjects {
		if err := insertSubject(ctx, tx, sub); err != nil {
			return err
		}
	}
	for _, r := range snap.Rooms {
		if err := insertRoom(ctx, tx, r); err != nil {
			return err
		}
	}
	for _, e := range snap.Entries {
		if err := insertEntry(ctx, tx, e); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertEntry(ctx context.Context, db execer, e schedule.Entry) error {
	query := `
		INSERT INTO schedule_entries (id, seq, teacher_id, subject_id, room_id, day, start_time, end_time)
		VALUES (?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM schedule_entries), ?, ?, ?, ?, ?, ?)
	`

	_, err := db.ExecContext(ctx, query,
		e.ID,
		e.TeacherID,
		e.SubjectID,
		e.RoomID,
		e.Day.Key(),
		e.Start,
		e.End,
	)
	if err != nil {
		return fmt.Errorf("inserting entry %s: %w", e.ID, err)
	}
	return nil
}

func insertTeacher(ctx context.Context, db execer, t schedule.Teacher) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO teachers (id, given_name, family_name) VALUES (?, ?, ?)`,
		t.ID, t.GivenName, t.FamilyName,
	)
	if err != nil {
		return fmt.Errorf("inserting teacher %q: %w", t.FullName(), err)
	}
	return nil
}

func insertSubject(ctx context.Context, db execer, sub schedule.Subject) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO subjects (id, name, code) VALUES (?, ?, ?)`,
		sub.ID, sub.Name, sub.Code,
	)
	if err != nil {
		return fmt.Errorf("inserting subject %q: %w", sub.Name, err)
	}
	return nil
}

func insertRoom(ctx context.Context, db execer, r schedule.Room) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO rooms (id, name) VALUES (?, ?)`,
		r.ID, r.Name,
	)
	if err != nil {
		return fmt.Errorf("inserting room %q: %w", r.Name, err)
	}
	return nil
}
