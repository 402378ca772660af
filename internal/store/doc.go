// Package store provides SQLite-backed storage for completed simulation
// runs.
//
// The engine itself performs no I/O; this package exists for the CLI and
// HTTP layers, which persist finished RunResults for later retrieval and
// export. Only complete runs are ever written: a run row and all of its
// samples land in a single transaction, so readers never observe a
// truncated series.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: samples cascade with their run
//
// Runs are keyed two ways: a UUID assigned at save time, and the
// canonical scenario key (unique per stored run), which lets callers look
// up "the run for this scenario" without knowing its UUID.
package store
