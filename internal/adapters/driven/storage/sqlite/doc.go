// Package sqlite provides the SQLite-backed answer journal.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO. It implements driven.AnswerJournal. Only answered
// questions are stored; embeddings and chunk vectors are never written.
//
// # Schema
//
// The schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql
// files; applied versions are recorded in schema_migrations.
//
// # Data Location
//
// By default, the database is stored at ~/.policylens/data/journal.db
//
// # Thread Safety
//
// All operations are safe for concurrent use. SQLite runs in WAL mode.
package sqlite
