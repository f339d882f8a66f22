package db

import "fmt"

// migrate runs database migrations.
func (s *SQLite) migrate() error {
	query := `
		CREATE TABLE IF NOT EXISTS teachers (
			id          TEXT PRIMARY KEY,
			given_name  TEXT NOT NULL,
			family_name TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS subjects (
			id   TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			code TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS rooms (
			id   TEXT PRIMARY KEY,
			name TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS schedule_entries (
			id         TEXT PRIMARY KEY,
			seq        INTEGER NOT NULL UNIQUE,
			teacher_id TEXT NOT NULL,
			subject_id TEXT NOT NULL,
			room_id    TEXT NOT NULL,
			day        TEXT NOT NULL CHECK(day IN ('monday', 'tuesday', 'wednesday', 'thursday', 'friday')),
			start_time TEXT NOT NULL,
			end_time   TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_entries_teacher ON schedule_entries(teacher_id);
		CREATE INDEX IF NOT EXISTS idx_entries_room ON schedule_entries(room_id);
	`

	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("creating schedule tables: %w", err)
	}

	return nil
}
