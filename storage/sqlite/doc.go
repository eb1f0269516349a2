// Package sqlite implements storage.ImageRepository on an embedded SQLite
// database via modernc.org/sqlite (pure Go, no cgo).
//
// The database runs in WAL mode with foreign keys enforced and a 5 second
// busy timeout. The connection pool is capped at a single connection so that
// the insert-if-absent on content_hash is a true linearization point for
// concurrent ingestion workers.
package sqlite
