// Package storage provides the audit trail backends.
//
// SQLiteStorage works with either SQLite driver: the pure Go
// modernc.org/sqlite ("sqlite", the default, no cgo required) or
// github.com/mattn/go-sqlite3 ("sqlite3"). Both are registered by this
// package. The database runs in WAL mode with a busy timeout because
// several gate processes can write to it at once.
//
// MemoryStorage keeps records for the life of the process.
//
// Open picks the backend from configuration:
//
//	store, err := storage.Open(cfg.Audit, logger)
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
package storage
