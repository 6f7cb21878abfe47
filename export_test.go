package looptest

import (
	"testing"
	"time"

	"github.com/looptest/looptest/internal/sched"
)

// ConfigSnapshot holds a copy of suiteConfig fields for test assertions.
// Exported only via export_test.go so that the _test package can verify
// option closures actually mutate the config without accessing internals.
type ConfigSnapshot struct {
	NamePrefix         string
	MarkerFixtures     map[string]string
	JournalPath        string
	PortLeaseDir       string
	AmbientLockTimeout time.Duration
	JournalTimeout     time.Duration
}

// ApplyOptionsForTesting creates a default suiteConfig, applies the given
// options, and returns a ConfigSnapshot of the result. This tests the option
// closures directly without constructing a suite.
func ApplyOptionsForTesting(opts ...SuiteOption) ConfigSnapshot {
	cfg := defaultSuiteConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	markers := make(map[string]string, len(cfg.MarkerFixtures))
	for k, v := range cfg.MarkerFixtures {
		markers[k] = v
	}
	return ConfigSnapshot{
		NamePrefix:         cfg.NamePrefix,
		MarkerFixtures:     markers,
		JournalPath:        cfg.JournalPath,
		PortLeaseDir:       cfg.PortLeaseDir,
		AmbientLockTimeout: cfg.AmbientLockTimeout,
		JournalTimeout:     cfg.JournalTimeout,
	}
}

// RunItemForTesting runs the full pipeline and returns the error instead of
// failing t, so the _test package can assert on failure modes.
func (s *Suite) RunItemForTesting(t testing.TB, item *Item) error {
	return s.runItem(t, item)
}

// RunAndRecordForTesting runs the pipeline and records the outcome like Run,
// but returns the error instead of failing t. Used to exercise the journal on
// failing items.
func (s *Suite) RunAndRecordForTesting(t testing.TB, item *Item) error {
	start := time.Now()
	err := s.runItem(t, item)
	s.recordOutcome(item.name, err, time.Since(start))
	return err
}

// NewLoopForTesting creates a bare loop for ambient-slot tests.
func NewLoopForTesting() *Loop {
	return sched.New()
}

// SetAmbientForTesting installs l in the ambient slot (nil clears it).
func SetAmbientForTesting(l *Loop) {
	sched.SetCurrent(l)
}
