// Package store provides a SQLite-backed revision ledger for documents
// written by create and amend.
//
// Every write appends a revision holding the canonical text, its content
// hash and the hash of the revision it replaced, so each path carries a
// hash chain back to its first write.
//
// # Invariants
//
//   - Ordering uses seq, a per-path counter, never timestamps.
//   - Queries order by seq ASC, id ASC COLLATE BINARY.
//   - Revision IDs are name-based UUIDs derived from path, seq, parent
//     hash and content hash, so replaying the same writes yields the same
//     IDs.
//   - Recording content identical to the current head is a no-op that
//     returns the head.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
