package netutil

import (
	"path/filepath"
	"strconv"
	"sync"
	"testing"

	"github.com/gofrs/flock"
)

func TestEphemeralPort(t *testing.T) {
	t.Parallel()

	port, err := EphemeralPort()
	if err != nil {
		t.Fatalf("EphemeralPort() error: %v", err)
	}
	if port < 1024 || port > 65535 {
		t.Errorf("port %d outside the ephemeral range", port)
	}
}

func TestFactory_NextDistinct(t *testing.T) {
	t.Parallel()

	f := NewFactory("", nil)
	defer f.Close() //nolint:errcheck

	const draws = 10
	seen := make(map[int]bool, draws)
	for i := 0; i < draws; i++ {
		port, err := f.Next()
		if err != nil {
			t.Fatalf("draw %d: Next() error: %v", i, err)
		}
		if port < 1024 || port > 65535 {
			t.Errorf("draw %d: port %d outside the ephemeral range", i, port)
		}
		if seen[port] {
			t.Fatalf("draw %d: port %d issued twice by the same factory", i, port)
		}
		seen[port] = true
		if !f.Issued(port) {
			t.Errorf("draw %d: port %d not recorded in the issued set", i, port)
		}
	}
}

func TestFactory_IndependentInstances(t *testing.T) {
	t.Parallel()

	// Issued sets are per-factory: a port issued by one factory is fair
	// game for another (the OS may or may not hand it out again).
	a := NewFactory("", nil)
	defer a.Close() //nolint:errcheck

	port, err := a.Next()
	if err != nil {
		t.Fatalf("Next() error: %v", err)
	}

	b := NewFactory("", nil)
	defer b.Close() //nolint:errcheck
	if b.Issued(port) {
		t.Errorf("fresh factory reports port %d as issued", port)
	}
}

func TestFactory_ConcurrentNext(t *testing.T) {
	t.Parallel()

	f := NewFactory("", nil)
	defer f.Close() //nolint:errcheck

	const goroutines = 20
	ports := make(chan int, goroutines)
	errs := make(chan error, goroutines)

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			port, err := f.Next()
			if err != nil {
				errs <- err
				return
			}
			ports <- port
		}()
	}
	wg.Wait()
	close(ports)
	close(errs)

	for err := range errs {
		t.Fatalf("Next() error: %v", err)
	}
	seen := make(map[int]bool)
	for port := range ports {
		if seen[port] {
			t.Fatalf("port %d issued twice", port)
		}
		seen[port] = true
	}
	if len(seen) != goroutines {
		t.Errorf("issued %d distinct ports, want %d", len(seen), goroutines)
	}
}

func TestFactory_Leases(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	f := NewFactory(dir, nil)

	port, err := f.Next()
	if err != nil {
		t.Fatalf("Next() error: %v", err)
	}

	leasePath := filepath.Join(dir, "port-"+strconv.Itoa(port)+".lock")

	// While the factory holds the lease, another locker must be refused.
	other := flock.New(leasePath)
	locked, err := other.TryLock()
	if err != nil {
		t.Fatalf("TryLock() error: %v", err)
	}
	if locked {
		_ = other.Close()
		t.Fatal("lease should be held by the factory")
	}

	if err := f.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	// After Close the lease is released and the path lockable again.
	locked, err = other.TryLock()
	if err != nil {
		t.Fatalf("TryLock() after Close error: %v", err)
	}
	if !locked {
		t.Fatal("lease should be released after Close")
	}
	_ = other.Close()
}

func TestFactory_CloseWithoutLeases(t *testing.T) {
	t.Parallel()

	f := NewFactory("", nil)
	if _, err := f.Next(); err != nil {
		t.Fatalf("Next() error: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
}
