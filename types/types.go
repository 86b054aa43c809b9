package types

import (
	"selmine/constants"
	"selmine/utils"
)

// ============================================================================
// SELECTOR MINING - SHARED VALUE TYPES
// ============================================================================

// Selector is a 4-byte dispatch identifier: the first four bytes of the
// keccak-256 digest of a canonical function signature. It is a pure value —
// copied freely, never shared mutably — and is viewed two ways: as raw bytes
// for leading-zero counting and as a big-endian uint32 for ordering.
type Selector [constants.SelectorSize]byte

// SelectorFromUint32 rebuilds the byte view from the big-endian integer view.
//
//go:nosplit
//go:inline
func SelectorFromUint32(v uint32) Selector {
	return Selector{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)}
}

// Uint32 returns the big-endian integer view used by ordering comparisons:
// byte 0 is most significant, matching dispatcher comparison semantics.
//
//go:nosplit
//go:inline
func (s Selector) Uint32() uint32 {
	return uint32(s[0])<<24 | uint32(s[1])<<16 | uint32(s[2])<<8 | uint32(s[3])
}

// Hex renders the selector as eight lowercase hex characters, no 0x prefix.
func (s Selector) Hex() string {
	return utils.HexU32(s.Uint32())
}

// LeadingZeroBytes counts contiguous 0x00 bytes from the most significant
// end. Result is always in [0,4]; 4 occurs only for selector 00000000.
//
//go:nosplit
//go:inline
func (s Selector) LeadingZeroBytes() int {
	n := 0
	for n < constants.SelectorSize && s[n] == 0 {
		n++
	}
	return n
}

// ============================================================================
// SCORE MODELS
// ============================================================================

// ScoreModel selects the cost function applied to mined selectors. Exactly
// one model is active per search run; models do not compose.
type ScoreModel uint8

const (
	// ModelLeadingZeroBytes maximizes leading 0x00 bytes (intrinsic calldata
	// gas). Ties resolve toward the numerically smaller selector, which also
	// lands earlier in ascending-sorted linear dispatch.
	ModelLeadingZeroBytes ScoreModel = iota

	// ModelNumericRank minimizes the insertion position of the new selector
	// within the ascending-sorted sibling set, optionally weighted by an
	// injected per-position dispatch cost table.
	ModelNumericRank

	// ModelTargetPrefix matches an exact byte prefix, with partial credit
	// for near misses (count of matching leading bytes).
	ModelTargetPrefix
)

// String names the model using the externally documented identifiers.
func (m ScoreModel) String() string {
	switch m {
	case ModelLeadingZeroBytes:
		return "leading_zero_bytes"
	case ModelNumericRank:
		return "numeric_rank"
	case ModelTargetPrefix:
		return "target_prefix"
	default:
		return "unknown"
	}
}

// ParseScoreModel maps the documented identifiers (and short CLI aliases)
// back to a model.
func ParseScoreModel(s string) (ScoreModel, bool) {
	switch s {
	case "leading_zero_bytes", "zeros":
		return ModelLeadingZeroBytes, true
	case "numeric_rank", "rank":
		return ModelNumericRank, true
	case "target_prefix", "prefix":
		return ModelTargetPrefix, true
	}
	return 0, false
}

// ============================================================================
// DISPATCH COST TABLE
// ============================================================================

// CostTable maps a dispatch rank position to modeled gas. The table is
// injected configuration: dispatch shape (linear vs. fractional search,
// pivot choices) is compiler- and runs-level-dependent and empirically
// observed, so nothing in the engine bakes these numbers in. Positions past
// the end extrapolate from the last step delta.
type CostTable []uint64

// Gas returns the modeled gas for a 0-based rank position. A nil table
// falls back to position-linear growth seeded by the caller-supplied step.
//
//go:nosplit
func (t CostTable) Gas(position int, linearStep uint64) uint64 {
	if len(t) == 0 {
		return uint64(position) * linearStep
	}
	if position < len(t) {
		return t[position]
	}
	// Extrapolate past the table using the final observed delta.
	last := t[len(t)-1]
	var delta uint64
	if len(t) >= 2 {
		delta = last - t[len(t)-2]
	} else {
		delta = linearStep
	}
	return last + uint64(position-len(t)+1)*delta
}

// LinearTable generates a position-linear table of n entries with the given
// per-comparison step. Convenience for callers without measured tables.
func LinearTable(n int, step uint64) CostTable {
	t := make(CostTable, n)
	for i := range t {
		t[i] = uint64(i) * step
	}
	return t
}

// ============================================================================
// CANDIDATES
// ============================================================================

// Candidate is one scored search result: the variant token, the full
// canonical signature it produced, the derived selector, the normalized
// ranking key (higher is strictly better, model-independent) and the
// model-facing score detail (zeros count, rank position or gas, matched
// prefix bytes). Immutable once scored.
type Candidate struct {
	Token     string
	Signature string
	Selector  Selector
	Key       uint64
	Score     int64
}

// Better reports whether c strictly precedes other in result order:
// higher key first, then shorter token, then lexicographically smaller
// token. This is a total order over distinct tokens, which is what makes
// ranked output independent of evaluation and merge order.
//
//go:nosplit
func (c *Candidate) Better(other *Candidate) bool {
	if c.Key != other.Key {
		return c.Key > other.Key
	}
	if len(c.Token) != len(other.Token) {
		return len(c.Token) < len(other.Token)
	}
	return c.Token < other.Token
}
