// ============================================================================
// TOPK: BOUNDED BEST-K RESULT LIST
// ============================================================================
//
// TopK maintains the K best candidates seen by one search shard under the
// engine's total result order: ranking key descending, then shorter variant
// token, then lexicographically smaller token.
//
// Architecture overview:
//   - Fixed-capacity sorted array, allocated once at construction
//   - Hot-path rejection is a single key compare against the current floor
//   - Admission (rare after warm-up) shifts at most K-1 slots
//   - Merge folds another list in through the same comparator, with
//     duplicate-token suppression for cross-run folds
//
// Determinism:
//   - The comparator is a total order over distinct tokens, so the final
//     contents are independent of offer order — the property that makes
//     per-worker lists + a final merge byte-identical for any worker count.
//
// Concurrency:
//   - NOT thread-safe by design. One list per worker; the orchestrator
//     merges after workers join. No locks anywhere near the hot path.

package topk

import "selmine/types"

// List is a bounded, always-sorted best-K accumulator.
type List struct {
	cands []types.Candidate
	limit int
}

// New allocates a list holding at most k candidates. k < 1 is pinned to 1.
func New(k int) *List {
	if k < 1 {
		k = 1
	}
	return &List{cands: make([]types.Candidate, 0, k), limit: k}
}

// Len reports the current occupancy.
//
//go:nosplit
//go:inline
func (l *List) Len() int {
	return len(l.cands)
}

// Floor returns the ranking key a candidate must beat (or tie and win on
// token order) once the list is full. Zero while the list has room, so the
// hot path can reject most candidates on one comparison.
//
//go:nosplit
//go:inline
func (l *List) Floor() uint64 {
	if len(l.cands) < l.limit {
		return 0
	}
	return l.cands[len(l.cands)-1].Key
}

// Offer inserts c if it belongs in the best K. Returns whether admitted.
// The caller guarantees tokens are unique within a run (generator
// invariant), so Offer performs no duplicate scan.
func (l *List) Offer(c types.Candidate) bool {
	n := len(l.cands)
	if n == l.limit && !c.Better(&l.cands[n-1]) {
		return false
	}

	// Find insertion point from the tail; admitted candidates cluster near
	// the floor once the list is warm.
	pos := n
	for pos > 0 && c.Better(&l.cands[pos-1]) {
		pos--
	}

	if n < l.limit {
		l.cands = append(l.cands, types.Candidate{})
	} else {
		n-- // last slot is displaced
	}
	copy(l.cands[pos+1:], l.cands[pos:n])
	l.cands[pos] = c
	return true
}

// Merge folds other into l, suppressing exact token duplicates (which can
// only arise when folding archived results from a previous session run).
func (l *List) Merge(other *List) {
	for i := range other.cands {
		c := other.cands[i]
		if l.contains(c.Token) {
			continue
		}
		l.Offer(c)
	}
}

// contains scans for a token. Cold path: merge only, K is small.
func (l *List) contains(token string) bool {
	for i := range l.cands {
		if l.cands[i].Token == token {
			return true
		}
	}
	return false
}

// Drain returns the ranked contents as a fresh slice, best first, and
// leaves the list intact. Result order follows the engine's total order
// exactly — ties broken by token length then token bytes.
func (l *List) Drain() []types.Candidate {
	out := make([]types.Candidate, len(l.cands))
	copy(out, l.cands)
	return out
}

// Reset empties the list for reuse without releasing its storage.
func (l *List) Reset() {
	l.cands = l.cands[:0]
}
