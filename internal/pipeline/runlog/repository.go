package runlog

import "context"

// Repository is the port for persisting run log entries.
// Pipelines depend on this abstraction, not on SQLite directly.
type Repository interface {
	// Save appends an entry. The log is append-only.
	Save(ctx context.Context, entry *Entry) error
}
