// Package netutil provides the TCP port allocation backing looptest's port
// fixtures. EphemeralPort draws a single kernel-assigned port; Factory issues
// ports that are pairwise distinct for the lifetime of one factory instance,
// optionally backed by per-port file leases so concurrent test processes
// sharing a lease directory never draw the same port.
package netutil
