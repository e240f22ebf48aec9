// Package repositories implements the key-value persistence the kiosk keeps between runs.
//
// Everything that outlives a process (OAuth tokens, the device cache blob, the video feed cache)
// is a string value stored under a fixed logical key.
//
// Key Implementations:
//   - [SQLiteStore] : kv_store table, created by the embedded migrations in shared
//   - [MemoryStore] : mutex-guarded map for tests and for running without a database
//
// [KVStore.SetMany] is all-or-nothing so token triples are never half-written.
package repositories
