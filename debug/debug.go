// ─────────────────────────────────────────────────────────────────────────────
// [Filename]: debug.go — Cold-path diagnostic logging (zero-alloc)
//
// Purpose:
//   - Logs infrequent progress and error paths without heap pressure.
//   - Used outside the hashing loop only: session lifecycle, budget
//     milestones, store failures, ABI load problems.
//
// Notes:
//   - Avoids fmt.Sprintf: messages are plain concatenations of pre-built
//     strings, so cold logging never perturbs the allocation profile the
//     benchmarks measure.
//
// ⚠️ Never invoke per candidate — milestone and failure diagnostics only.
// ─────────────────────────────────────────────────────────────────────────────

package debug

import "selmine/utils"

// DropError logs an error with its tag prefix, writing directly to stderr.
// A nil error drops just the prefix, which callers use for tagged markers.
//
//go:nosplit
func DropError(prefix string, err error) {
	if err != nil {
		utils.PrintWarning(prefix + ": " + err.Error() + "\n")
		return
	}
	utils.PrintWarning(prefix + "\n")
}

// DropMessage logs a tagged progress message. Cold paths only: search phase
// transitions, resume points, store writes.
//
//go:nosplit
func DropMessage(prefix, message string) {
	utils.PrintWarning(prefix + ": " + message + "\n")
}

// DropCount logs a tagged counter, formatting the value without strconv.
// Used for evaluated-candidate milestones and final run summaries.
//
//go:nosplit
func DropCount(prefix string, n uint64) {
	utils.PrintWarning(prefix + ": " + utils.Utoa(n) + "\n")
}
