// ════════════════════════════════════════════════════════════════════════════
// SCORE EVALUATION ENGINE
// ════════════════════════════════════════════════════════════════════════════
//
// Pure, allocation-free scoring of derived selectors under one of three cost
// models:
//
//	leading_zero_bytes — maximize leading 0x00 bytes; intrinsic calldata gas
//	                     falls with each zero byte, and ties resolve toward
//	                     the numerically smaller selector.
//	numeric_rank       — minimize the insertion position of the selector in
//	                     the ascending-sorted sibling set; position maps to
//	                     dispatch gas through an injected cost table.
//	target_prefix      — match an exact byte prefix, with partial credit for
//	                     the count of matching leading bytes.
//
// Every model is normalized into a single uint64 rank key where higher is
// strictly better. Downstream aggregation (top-K, merge, persistence) never
// inspects the model — only the key — so adding a model never touches the
// search loop.
//
// A candidate whose selector equals an existing sibling selector is unusable
// under every model: the dispatcher could not distinguish the two functions.
package scorer

import (
	"errors"
	"math"
	"sort"

	"selmine/constants"
	"selmine/sibidx"
	"selmine/types"
)

// ─────────────────────────────────────────────────────────────────────────────
// Errors
// ─────────────────────────────────────────────────────────────────────────────

var (
	// ErrNoSiblings rejects numeric_rank configuration without a sibling set:
	// rank position is undefined against an empty dispatch table.
	ErrNoSiblings = errors.New("scorer: numeric_rank requires a non-empty sibling set")

	// ErrBadPrefix rejects target_prefix configuration whose target is empty
	// or longer than a selector.
	ErrBadPrefix = errors.New("scorer: target prefix must be 1..4 bytes")

	// ErrUnknownModel rejects a model value outside the defined set.
	ErrUnknownModel = errors.New("scorer: unknown score model")
)

// ─────────────────────────────────────────────────────────────────────────────
// Configuration
// ─────────────────────────────────────────────────────────────────────────────

// Config assembles one scoring run. Siblings are the selectors already present
// in the target contract (any order, duplicates tolerated). Costs is an
// optional measured dispatch cost table for numeric_rank; when nil, gas grows
// linearly per comparison. Prefix is the target byte prefix for target_prefix.
type Config struct {
	Model    types.ScoreModel
	Siblings []uint32
	Costs    types.CostTable
	Prefix   []byte
}

// Evaluator scores selectors under a fixed model. Construction does all
// sorting and set building; Score itself is read-only and safe for
// concurrent use from any number of workers.
type Evaluator struct {
	siblings  []uint32    // ascending, deduplicated; rank probe target
	collide   *sibidx.Set // O(1) sibling collision membership
	costs     types.CostTable
	prefix    [constants.SelectorSize]byte
	prefixLen int
	model     types.ScoreModel
}

// New validates cfg and builds an immutable evaluator.
func New(cfg Config) (*Evaluator, error) {
	e := &Evaluator{model: cfg.Model, costs: cfg.Costs}

	switch cfg.Model {
	case types.ModelLeadingZeroBytes:
		// No model-specific configuration.
	case types.ModelNumericRank:
		if len(cfg.Siblings) == 0 {
			return nil, ErrNoSiblings
		}
	case types.ModelTargetPrefix:
		if len(cfg.Prefix) == 0 || len(cfg.Prefix) > constants.SelectorSize {
			return nil, ErrBadPrefix
		}
		e.prefixLen = copy(e.prefix[:], cfg.Prefix)
	default:
		return nil, ErrUnknownModel
	}

	if len(cfg.Siblings) > 0 {
		sorted := make([]uint32, len(cfg.Siblings))
		copy(sorted, cfg.Siblings)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
		dedup := sorted[:1]
		for _, v := range sorted[1:] {
			if v != dedup[len(dedup)-1] {
				dedup = append(dedup, v)
			}
		}
		e.siblings = dedup
		e.collide = sibidx.FromSelectors(dedup)
	}
	return e, nil
}

// Model returns the active score model.
func (e *Evaluator) Model() types.ScoreModel { return e.model }

// ─────────────────────────────────────────────────────────────────────────────
// Hot Path
// ─────────────────────────────────────────────────────────────────────────────

// Score ranks one selector. The returned key is the normalized uint64 rank
// (higher is strictly better across all models); detail is the model-facing
// figure (zero-byte count, modeled dispatch gas, or matched prefix bytes).
// usable is false when the selector collides with a sibling, in which case
// key and detail are zero and the candidate must be discarded.
//
//go:nosplit
func (e *Evaluator) Score(sel types.Selector) (key uint64, detail int64, usable bool) {
	u := sel.Uint32()
	if e.collide != nil && e.collide.Has(u) {
		return 0, 0, false
	}

	switch e.model {
	case types.ModelLeadingZeroBytes:
		z := sel.LeadingZeroBytes()
		// Zeros dominate; the complemented selector breaks ties toward the
		// numerically smaller value.
		return uint64(z)<<32 | uint64(^u), int64(z), true

	case types.ModelNumericRank:
		p := e.rank(u)
		gas := e.costs.Gas(p, constants.LinearStepGasSeed)
		return math.MaxUint64 - gas, int64(gas), true

	default: // types.ModelTargetPrefix
		m := 0
		for m < e.prefixLen && sel[m] == e.prefix[m] {
			m++
		}
		return uint64(m), int64(m), true
	}
}

// rank returns the insertion position of u in the ascending sibling set:
// the count of siblings strictly below u. Hand-rolled lower bound keeps the
// probe branch-light and inlinable.
//
//go:nosplit
//go:inline
func (e *Evaluator) rank(u uint32) int {
	lo, hi := 0, len(e.siblings)
	for lo < hi {
		mid := int(uint(lo+hi) >> 1)
		if e.siblings[mid] < u {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}
