package looptest

import "time"

// Marker keywords and builtin fixture names. These are exported so callers
// can reference them instead of repeating string literals.
const (
	// MarkerAsyncIO is the marker keyword attached to asynchronous items.
	MarkerAsyncIO = "asyncio"

	// FixtureEventLoop is the name of the builtin per-test loop fixture.
	FixtureEventLoop = "event_loop"

	// FixtureRequest is the reserved fixture name resolving to the
	// current test's *Request handle.
	FixtureRequest = "request"

	// FixtureUnusedTCPPort is the name of the builtin single-port fixture.
	FixtureUnusedTCPPort = "unused_tcp_port"

	// FixtureUnusedTCPPortFactory is the name of the builtin port-factory
	// fixture.
	FixtureUnusedTCPPortFactory = "unused_tcp_port_factory"
)

// Default configuration values for NewSuite.
const (
	// DefaultNamePrefix is the name filter applied at collection time.
	// Candidates whose names lack this prefix are not tests.
	DefaultNamePrefix = "test_"

	// DefaultAmbientLockTimeout bounds how long a marked test waits to
	// take ownership of the process-wide ambient-loop slot when marked
	// tests run in parallel go-test subtests.
	DefaultAmbientLockTimeout = 30 * time.Second

	// DefaultJournalTimeout bounds a single journal write or query.
	DefaultJournalTimeout = 5 * time.Second
)
