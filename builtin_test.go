package looptest_test

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/gofrs/flock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/looptest/looptest"
)

func TestBuiltin_UnusedTCPPort(t *testing.T) {
	t.Parallel()

	s := looptest.NewSuite()
	var port int
	it, err := s.Collect("test_port", looptest.TestFunc(func(args looptest.Args) error {
		var ok bool
		port, ok = args[looptest.FixtureUnusedTCPPort].(int)
		if !ok {
			return fmt.Errorf("fixture value is %T, want int", args[looptest.FixtureUnusedTCPPort])
		}
		return nil
	}), looptest.WithParams(looptest.FixtureUnusedTCPPort))
	require.NoError(t, err)

	s.Run(t, it)
	assert.Greater(t, port, 0)
	assert.LessOrEqual(t, port, 65535)
}

func TestBuiltin_UnusedTCPPortFactory(t *testing.T) {
	t.Parallel()

	s := looptest.NewSuite()
	seen := make(map[int]struct{})
	it, err := s.Collect("test_factory", looptest.TestFunc(func(args looptest.Args) error {
		next, ok := args[looptest.FixtureUnusedTCPPortFactory].(looptest.PortFactory)
		if !ok {
			return fmt.Errorf("fixture value is %T, want PortFactory", args[looptest.FixtureUnusedTCPPortFactory])
		}
		for i := 0; i < 5; i++ {
			port, err := next()
			if err != nil {
				return err
			}
			seen[port] = struct{}{}
		}
		return nil
	}), looptest.WithParams(looptest.FixtureUnusedTCPPortFactory))
	require.NoError(t, err)

	s.Run(t, it)
	assert.Len(t, seen, 5, "factory must never repeat a port within one test")
}

func TestBuiltin_PortFactoryLeases(t *testing.T) {
	t.Parallel()

	leaseDir := t.TempDir()
	s := looptest.NewSuite(looptest.WithPortLeaseDir(leaseDir))

	var port int
	it, err := s.Collect("test_leased_port", looptest.TestFunc(func(args looptest.Args) error {
		next := args[looptest.FixtureUnusedTCPPortFactory].(looptest.PortFactory)
		p, err := next()
		if err != nil {
			return err
		}
		port = p

		// While the test runs, the lease file is held exclusively.
		held := flock.New(filepath.Join(leaseDir, fmt.Sprintf("port-%d.lock", p)))
		locked, err := held.TryLock()
		if err != nil {
			return err
		}
		if locked {
			_ = held.Unlock()
			return fmt.Errorf("lease for port %d was not held during the test", p)
		}
		return nil
	}), looptest.WithParams(looptest.FixtureUnusedTCPPortFactory))
	require.NoError(t, err)

	s.Run(t, it)

	// The finalizer released the lease with the test.
	released := flock.New(filepath.Join(leaseDir, fmt.Sprintf("port-%d.lock", port)))
	locked, err := released.TryLock()
	require.NoError(t, err)
	require.True(t, locked, "lease for port %d still held after the test", port)
	require.NoError(t, released.Unlock())
}
