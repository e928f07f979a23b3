// Package storage provides journal.Storage backends.
//
//   - MemoryStorage keeps records in a map. Used when journal.backend is
//     "memory" and in tests.
//   - SQLiteStorage persists records with the pure-Go modernc.org/sqlite
//     driver, so the binary needs no cgo.
//
// Records are ordered by start time, newest first unless the query asks for
// "asc".
package storage
