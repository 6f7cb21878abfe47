package netutil

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"
)

// maxPortRetries is the maximum number of attempts to draw a port not already
// issued by a factory. This guards against pathological cases where the
// kernel keeps handing back just-released ports.
const maxPortRetries = 20

// EphemeralPort asks the kernel for an unused localhost TCP port by binding a
// transient listener to port 0, reading back the assigned port, and closing
// the listener. The socket is released on every exit path. There is no
// uniqueness guarantee across separate calls: the kernel may reuse a
// just-released port.
func EphemeralPort() (int, error) {
	addr, err := net.ResolveTCPAddr("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, fmt.Errorf("resolve tcp address: %w", err)
	}

	l, err := net.ListenTCP("tcp", addr)
	if err != nil {
		return 0, fmt.Errorf("listen on tcp address: %w", err)
	}
	defer func() {
		_ = l.Close()
	}()

	tcpAddr, ok := l.Addr().(*net.TCPAddr)
	if !ok {
		return 0, fmt.Errorf("unexpected address type: %T", l.Addr())
	}
	return tcpAddr.Port, nil
}

// Factory issues TCP ports that are pairwise distinct for the lifetime of one
// factory instance. Each test gets a fresh factory, so the issued set is
// never shared across tests and grows monotonically until the factory is
// closed with the test.
//
// When a lease directory is configured, every issued port is additionally
// backed by an exclusive lock on <dir>/port-<n>.lock, so concurrent test
// processes sharing the directory cannot issue the same port. Leases are
// released by Close.
type Factory struct {
	leaseDir string
	log      *slog.Logger

	mu     sync.Mutex
	issued map[int]struct{}
	leases []*flock.Flock
}

// NewFactory creates a port factory. leaseDir enables cross-process leases;
// pass "" to track issued ports in-process only. If logger is nil,
// slog.Default() is used as a fallback.
func NewFactory(leaseDir string, logger *slog.Logger) *Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Factory{
		leaseDir: leaseDir,
		log:      logger,
		issued:   make(map[int]struct{}),
	}
}

// Next returns a port this factory has not issued before. Candidates come
// from EphemeralPort; a candidate already in the issued set (or leased by
// another process) is discarded and a new one drawn, up to maxPortRetries
// attempts.
func (f *Factory) Next() (int, error) {
	for i := 0; i < maxPortRetries; i++ {
		port, err := EphemeralPort()
		if err != nil {
			return 0, fmt.Errorf("draw candidate port: %w", err)
		}

		f.mu.Lock()
		_, dup := f.issued[port]
		f.mu.Unlock()
		if dup {
			f.log.Debug("port already issued by this factory, retrying", "port", port)
			continue
		}

		if f.leaseDir != "" {
			fl := flock.New(filepath.Join(f.leaseDir, fmt.Sprintf("port-%d.lock", port)))
			locked, lockErr := fl.TryLock()
			if lockErr != nil {
				return 0, fmt.Errorf("lease port %d: %w", port, lockErr)
			}
			if !locked {
				f.log.Debug("port leased by another process, retrying", "port", port)
				continue
			}
			f.mu.Lock()
			f.leases = append(f.leases, fl)
			f.mu.Unlock()
		}

		f.mu.Lock()
		f.issued[port] = struct{}{}
		f.mu.Unlock()
		return port, nil
	}
	return 0, fmt.Errorf("allocate unique port: exhausted %d attempts", maxPortRetries)
}

// Issued reports whether the factory has already issued port.
func (f *Factory) Issued(port int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.issued[port]
	return ok
}

// Close releases all cross-process leases held by the factory. The lock files
// are intentionally left on disk: removing one could invalidate a lock
// concurrently acquired on the same path by another process.
func (f *Factory) Close() error {
	f.mu.Lock()
	leases := f.leases
	f.leases = nil
	f.mu.Unlock()

	var errs []error
	for _, fl := range leases {
		// Close unlocks and closes the file descriptor in one step.
		if err := fl.Close(); err != nil {
			errs = append(errs, fmt.Errorf("release port lease %s: %w", fl.Path(), err))
		}
	}
	return errors.Join(errs...)
}
