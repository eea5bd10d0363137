// Package store keeps a SQLite history of compiled MIDI files.
//
// Each build records where the source came from, content hashes of the
// normalized source and of the generated bytes, the configuration used and
// a note count. Because compilation is deterministic, two builds with the
// same source hash and configuration must have the same output hash;
// LatestBySource lets the CLI check that across runs.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON
//
// Ordering always uses the seq column, never timestamps.
package store
