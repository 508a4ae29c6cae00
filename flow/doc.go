// Package flow implements core.Flow, the per-thread container coupling a
// thread identity with an append-only event log, plus two core.EventLog
// backends: a volatile in-memory log for tests and ephemeral runs, and a
// SQLite-backed log for durable histories.
package flow
