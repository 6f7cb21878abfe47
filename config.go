package looptest

import "time"

// suiteConfig holds configuration for a Suite, populated by defaults and
// mutated by SuiteOption closures before the suite is constructed.
type suiteConfig struct {
	NamePrefix         string
	MarkerFixtures     map[string]string
	JournalPath        string
	PortLeaseDir       string
	AmbientLockTimeout time.Duration
	JournalTimeout     time.Duration
}

// defaultSuiteConfig returns a suiteConfig populated with all default values,
// including the builtin marker-to-fixture table {"asyncio": "event_loop"}.
// Both NewSuite and test helpers use this to avoid duplicating the default
// field assignments.
func defaultSuiteConfig() suiteConfig {
	return suiteConfig{
		NamePrefix:         DefaultNamePrefix,
		MarkerFixtures:     map[string]string{MarkerAsyncIO: FixtureEventLoop},
		AmbientLockTimeout: DefaultAmbientLockTimeout,
		JournalTimeout:     DefaultJournalTimeout,
	}
}
