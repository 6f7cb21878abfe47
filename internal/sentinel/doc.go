// Package sentinel provides an immutable error type for sentinel error declarations.
//
// Sentinel errors declared with errors.New are package variables that can be
// reassigned. Error is a string-based error type that can be declared as a
// const instead, keeping sentinels immutable while remaining compatible with
// errors.Is through wrapped error chains.
package sentinel
