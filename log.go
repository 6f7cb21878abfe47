package looptest

import (
	"log/slog"

	"github.com/looptest/looptest/internal/sched"
)

// SetLogger replaces the package-level logger used by looptest.
// This allows test binaries to integrate looptest logging with their own
// logging infrastructure. The provided logger should already have any
// desired attributes; looptest will not add additional attributes.
//
// If l is nil, the logger resets to the default: slog.Default() with a
// "component" attribute, re-derived on the next use and then cached. Call
// SetLogger(nil) after slog.SetDefault() to pick up changes.
//
// SetLogger is safe to call concurrently with other looptest operations.
// For a strict happens-before guarantee, call it before registering fixtures
// or collecting items (e.g., in TestMain before m.Run).
func SetLogger(l *slog.Logger) {
	sched.SetLogger(l)
}
