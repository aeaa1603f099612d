// Package sqlite provides the SQLite-backed TrackStore.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. Tracks and embeddings live in two
// tables joined one-to-one:
//
//   - tracks: catalogue rows keyed by a unique external_id
//   - embeddings: one 512-dimension float32 vector per track
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
// Applied versions are recorded in schema_migrations.
//
// # Data Location
//
// By default, the database is stored at ~/.opus/data/tracks.db
//
// # Thread Safety
//
// All operations are thread-safe. Inserts run in immediate transactions and
// rely on the unique constraint on external_id, so concurrent inserts of the
// same track leave exactly one row.
package sqlite
