// Package calls defines the call record: the single persisted entity written
// once for every successful chat-completion call relayed through /api/call.
//
// # Call Records
//
// Each record captures:
//   - The caller-supplied uuid (primary key)
//   - The request messages, model, response format and temperature
//   - The provider reply and token usage
//   - The wall-clock duration of the provider call in seconds
//   - The derived error flag (see ErrorFlag)
//   - The UTC persistence time and the caller's IP address
//
// Records are created and finalized in one request. Nothing in this module
// updates or deletes a record once it is stored; the Storage interface only
// exposes a single insert plus read-only lookups.
//
// # Storage Backends
//
// Implementations live in the storage subpackage:
//   - SQLite, through either github.com/mattn/go-sqlite3 or modernc.org/sqlite
//   - Memory, for tests and throwaway deployments
//
// # Basic Usage
//
//	store, err := storage.Open(&cfg.Storage)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
//	record := &calls.CallRecord{UUID: "abc-1", ...}
//	if err := store.Store(ctx, record); err != nil {
//	    if calls.IsDuplicate(err) {
//	        // uuid already recorded
//	    }
//	}
package calls
