package looptest

import (
	"context"
	"fmt"
	"sync"

	"github.com/looptest/looptest/internal/journal"
	"github.com/looptest/looptest/internal/sched"
)

// Suite holds the registered fixtures and configuration shared by a set of
// test items. A Suite performs no I/O at construction; the run journal, when
// configured, is opened lazily on first use.
type Suite struct {
	cfg suiteConfig

	// mu protects fixtures. Registration usually happens up front in
	// TestMain, but parallel subtests may collect lazily.
	mu       sync.Mutex
	fixtures map[string]*FixtureDef

	journalOnce sync.Once
	journal     *journal.Journal
	journalErr  error
}

// NewSuite creates a suite with the builtin fixtures (event_loop,
// unused_tcp_port, unused_tcp_port_factory) already registered.
//
// Panics if any option receives an invalid value. See individual With*
// functions for constraints.
func NewSuite(opts ...SuiteOption) *Suite {
	cfg := defaultSuiteConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	s := &Suite{
		cfg:      cfg,
		fixtures: make(map[string]*FixtureDef),
	}
	s.registerBuiltins()
	return s
}

// Fixture registers a fixture descriptor: the underlying function is
// classified and, for asynchronous shapes, the resolution step is replaced by
// the adapted wrapper. Returns ErrDuplicateFixture for an already registered
// name.
func (s *Suite) Fixture(def *FixtureDef) error {
	if def.name == "" {
		return fmt.Errorf("register fixture: name must not be empty")
	}
	if def.name == FixtureRequest {
		return fmt.Errorf("register fixture %q: %w", def.name, ErrDuplicateFixture)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.fixtures[def.name]; exists {
		return fmt.Errorf("register fixture %q: %w", def.name, ErrDuplicateFixture)
	}
	if err := s.wrap(def); err != nil {
		return err
	}
	s.fixtures[def.name] = def
	sched.Logger().Debug("fixture registered", "fixture", def.name, "kind", def.kind.String())
	return nil
}

// MustFixture registers a fixture and panics on error. Intended for
// package-level registration where a failure is a programming error.
func (s *Suite) MustFixture(def *FixtureDef) {
	if err := s.Fixture(def); err != nil {
		panic(fmt.Sprintf("looptest: %v", err))
	}
}

// lookupFixture returns the registered descriptor for name.
func (s *Suite) lookupFixture(name string) (*FixtureDef, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	def, ok := s.fixtures[name]
	return def, ok
}

// LastFailed returns the names of items whose most recent journaled run
// failed. Requires the journal to be configured via WithJournalPath.
func (s *Suite) LastFailed(ctx context.Context) ([]string, error) {
	j, err := s.ensureJournal()
	if err != nil {
		return nil, err
	}
	if j == nil {
		return nil, fmt.Errorf("last failed: no journal configured")
	}
	return j.LastFailed(ctx)
}

// Close releases suite-held resources (currently the run journal). Safe to
// call when no journal was configured or opened.
func (s *Suite) Close() error {
	var j *journal.Journal
	s.journalOnce.Do(func() {}) // settle: no further lazy opens after Close
	j = s.journal
	s.journal = nil
	if j == nil {
		return nil
	}
	return j.Close()
}

// ensureJournal lazily opens the configured journal. Returns (nil, nil) when
// no journal path is configured. The open error is sticky: subsequent calls
// return it without retrying.
func (s *Suite) ensureJournal() (*journal.Journal, error) {
	if s.cfg.JournalPath == "" {
		return nil, nil
	}
	s.journalOnce.Do(func() {
		j, err := journal.Open(s.cfg.JournalPath, sched.Logger())
		if err != nil {
			s.journalErr = fmt.Errorf("open run journal: %w", err)
			return
		}
		s.journal = j
	})
	return s.journal, s.journalErr
}
