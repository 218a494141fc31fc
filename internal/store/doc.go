// Package store provides the SQLite-backed generation manifest.
//
// Every successful service generation appends a run recording the content
// hash of its inputs (ruleset and tests) and of the files it wrote. Batch
// generation compares the next input hash with the last run for the
// service and skips work when nothing changed.
//
// # Ordering
//
// Runs are ordered by seq, a logical counter assigned inside the insert
// transaction, never by wall time. Queries use ORDER BY seq ASC, id ASC
// COLLATE BINARY.
//
// # Hashing
//
// Input hashes use RFC 8785 canonical JSON with NFC-normalized strings and
// SHA-256 with a domain prefix, so formatting and key order in a ruleset
// file do not affect identity.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
package store
