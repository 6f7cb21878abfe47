package looptest

import (
	"fmt"
	"time"
)

// requirePositive panics if v <= 0 with a descriptive message.
func requirePositive(name string, v time.Duration) {
	if v <= 0 {
		panic(fmt.Sprintf("looptest: %s must be greater than 0, got %v", name, v))
	}
}

// requireNonEmpty panics if s is empty with a descriptive message.
func requireNonEmpty(name, s string) {
	if s == "" {
		panic(fmt.Sprintf("looptest: %s must not be empty", name))
	}
}

// SuiteOption configures a Suite during construction via NewSuite.
// Each With* function returns a SuiteOption that sets a specific field.
//
// Several With* functions panic on invalid input (empty names, non-positive
// durations). These panics are intentional: option values are typically
// compile-time constants, so an invalid value indicates a programmer error
// rather than a runtime condition. The pattern mirrors [regexp.MustCompile] —
// fail fast during initialization instead of returning errors that would be
// universally fatal anyway.
type SuiteOption func(*suiteConfig)

// WithNamePrefix sets the collection-time name filter. Candidates whose
// names do not start with prefix are reported as "not a test" by Collect.
//
// Default: "test_".
//
// Panics if prefix is empty.
func WithNamePrefix(prefix string) SuiteOption {
	requireNonEmpty("name prefix", prefix)
	return func(c *suiteConfig) {
		c.NamePrefix = prefix
	}
}

// WithMarkerFixture adds an entry to the marker-to-fixture table. Items
// carrying the marker keyword have the named loop fixture injected into
// their request set and their bodies driven on the loop it resolves to.
// The builtin entry {"asyncio": "event_loop"} is always present.
//
// Panics if marker or fixture is empty.
func WithMarkerFixture(marker, fixture string) SuiteOption {
	requireNonEmpty("marker name", marker)
	requireNonEmpty("fixture name", fixture)
	return func(c *suiteConfig) {
		c.MarkerFixtures[marker] = fixture
	}
}

// WithJournalPath enables the run journal, a SQLite database recording the
// outcome and duration of every executed item. The database is created on
// first use. Journal failures are logged, never failing a test.
//
// Panics if path is empty.
func WithJournalPath(path string) SuiteOption {
	requireNonEmpty("journal path", path)
	return func(c *suiteConfig) {
		c.JournalPath = path
	}
}

// WithPortLeaseDir makes the unused_tcp_port_factory fixture back every
// issued port with an exclusive lock file in dir, so concurrent test
// processes sharing the directory never draw the same port. Leases are
// released when the test ends.
//
// Panics if dir is empty.
func WithPortLeaseDir(dir string) SuiteOption {
	requireNonEmpty("port lease directory", dir)
	return func(c *suiteConfig) {
		c.PortLeaseDir = dir
	}
}

// WithAmbientLockTimeout bounds how long a marked test waits to take
// ownership of the process-wide ambient-loop slot.
//
// Default: 30 seconds.
//
// Panics if d <= 0.
func WithAmbientLockTimeout(d time.Duration) SuiteOption {
	requirePositive("ambient lock timeout", d)
	return func(c *suiteConfig) {
		c.AmbientLockTimeout = d
	}
}

// WithJournalTimeout bounds a single journal write or query.
//
// Default: 5 seconds.
//
// Panics if d <= 0.
func WithJournalTimeout(d time.Duration) SuiteOption {
	requirePositive("journal timeout", d)
	return func(c *suiteConfig) {
		c.JournalTimeout = d
	}
}
