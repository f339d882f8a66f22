package schedule

import "context"

// Backend persists committed entries on behalf of a Store. The store calls it
// after validation and before changing its own collection, so a backend error
// aborts the command with the store unchanged.
type Backend interface {
	// InsertEntry stores a newly created entry.
	InsertEntry(ctx context.Context, e Entry) error

	// ReplaceEntry overwrites every field of the entry with the same ID.
	ReplaceEntry(ctx context.Context, e Entry) error

	// DeleteEntry removes the entry with the given ID.
	DeleteEntry(ctx context.Context, id string) error
}

// CatalogRepository is the collaborator that owns teachers, subjects and rooms.
// Update and Delete return ErrNotFound for an unknown id. Deleting a record
// leaves the entries that reference it in place.
type CatalogRepository interface {
	CreateTeacher(ctx context.Context, t Teacher) error
	UpdateTeacher(ctx context.Context, t Teacher) error
	DeleteTeacher(ctx context.Context, id string) error
	ListTeachers(ctx context.Context) ([]Teacher, error)

	CreateSubject(ctx context.Context, s Subject) error
	UpdateSubject(ctx context.Context, s Subject) error
	DeleteSubject(ctx context.Context, id string) error
	ListSubjects(ctx context.Context) ([]Subject, error)

	CreateRoom(ctx context.Context, r Room) error
	UpdateRoom(ctx context.Context, r Room) error
	DeleteRoom(ctx context.Context, id string) error
	ListRooms(ctx context.Context) ([]Room, error)
}

// Logger receives structured store events.
type Logger interface {
	Log(event string, data map[string]any)
}
