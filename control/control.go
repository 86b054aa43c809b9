// control.go — Cooperative cancellation flags for mining workers
// ============================================================================
// SEARCH CONTROL ORCHESTRATION
// ============================================================================
//
// Control package provides the lightweight signaling infrastructure that
// coordinates early stop and caller cancellation across mining workers.
//
// Architecture overview:
//   • A Flag is a single atomic word polled by workers between candidates
//   • Workers never block on the flag and never observe it mid-hash
//   • A package-level default Flag serves signal handlers and the REPL,
//     mirroring the process-global stop semantics of pinned pipelines
//
// Performance characteristics:
//   • Poll cost is one atomic load — negligible against a keccak permutation
//   • No channels, no mutexes, no timer machinery
//
// Safety guarantees:
//   • Race-free under any worker count (sync/atomic ordering)
//   • Raising an already-raised flag is idempotent
//   • Reset only between runs, never while workers are live

package control

import "sync/atomic"

// ============================================================================
// FLAG PRIMITIVE
// ============================================================================

// Flag is a one-shot cooperative stop signal. The zero value is ready to use
// and reads as "not stopped".
type Flag struct {
	raised atomic.Uint32
}

// Raise requests a stop. Safe to call from any goroutine, including signal
// handlers; repeated calls are harmless.
//
//go:nosplit
func (f *Flag) Raise() {
	f.raised.Store(1)
}

// Stopped reports whether a stop has been requested. Workers poll this
// between candidates only, so in-flight hashes always complete.
//
//go:nosplit
//go:inline
func (f *Flag) Stopped() bool {
	return f.raised.Load() != 0
}

// Reset rearms the flag for the next run. Callers must ensure no worker is
// polling while Reset executes.
//
//go:nosplit
func (f *Flag) Reset() {
	f.raised.Store(0)
}

// ============================================================================
// PROCESS-GLOBAL DEFAULT
// ============================================================================

var defaultFlag Flag

// Default returns the shared process-wide flag wired to SIGINT handling and
// the interactive prompt. Library callers may supply their own Flag instead.
func Default() *Flag {
	return &defaultFlag
}

// RequestStop raises the shared flag.
//
//go:nosplit
func RequestStop() {
	defaultFlag.Raise()
}

// Stopped reports the shared flag state.
//
//go:nosplit
//go:inline
func Stopped() bool {
	return defaultFlag.Stopped()
}

// Reset rearms the shared flag between interactive runs.
//
//go:nosplit
func Reset() {
	defaultFlag.Reset()
}
