// Package storage provides storage backends for call records.
//
// # SQLite Backend
//
// The SQLite backend keeps every record in the api_calls table. Two
// database/sql drivers are supported and selected by name:
//
//   - "sqlite3": github.com/mattn/go-sqlite3, requires cgo
//   - "sqlite":  modernc.org/sqlite, pure Go
//
// Both are configured with a busy timeout and optionally WAL mode through
// their DSN so that every pooled connection behaves the same. Each Store
// runs in its own transaction and a duplicate uuid is reported through
// calls.IsDuplicate.
//
// # Basic Usage
//
//	store, err := storage.NewSQLiteStorage(&storage.SQLiteConfig{
//	    Driver:      storage.DriverModernc,
//	    Path:        "api_calls.db",
//	    WALMode:     true,
//	    BusyTimeout: 5 * time.Second,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
// # Memory Backend
//
// MemoryStorage keeps records in a map and is used by tests.
package storage
