package looptest

import "slices"

// Argument splicing makes the loop and request handles reachable from a
// wrapped fixture even when its author never declared them, without leaking
// them into the user function's argument set. The declared parameter list
// drives injection, so a synthetic name is appended there and stripped again
// from the Args handed to user code. Explicit declarations are respected
// exactly: if the author already listed the name, nothing is appended and
// nothing is stripped.

// ensureParam returns params with name appended when absent, and reports
// whether it was appended (i.e. the parameter is synthetic). Idempotent:
// calling it again with the same name changes nothing.
func ensureParam(params []string, name string) ([]string, bool) {
	if slices.Contains(params, name) {
		return params, false
	}
	return append(params, name), true
}

// userArgs returns a copy of args with the synthetic names removed. The
// original map is left untouched; it still backs the engine's own lookups.
func userArgs(args Args, synthetic ...string) Args {
	out := make(Args, len(args))
	for k, v := range args {
		out[k] = v
	}
	for _, name := range synthetic {
		delete(out, name)
	}
	return out
}
