// Package journal persists test-run outcomes to a local SQLite database.
// The journal is an optional, runner-adjacent record: each executed item is
// recorded with its outcome and duration, and the set of most recently failed
// items can be queried to drive reruns. Journal failures are reported to the
// caller but never fail a test.
package journal
