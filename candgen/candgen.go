// ════════════════════════════════════════════════════════════════════════════════════════════════
// ⚡ CANDIDATE GENERATOR
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: Selector Mining Engine
// Component: Deterministic Variant-Token Enumeration
//
// Description:
//   Produces the lazy, deterministic, restartable sequence of variant tokens a search
//   walks: all tokens of minLen in lexicographic alphabet order, then minLen+1, up to
//   maxLen. Every token has a dense uint64 cursor and the mapping is bijective, so a
//   run can pause at any point and resume (or shard across workers) by cursor
//   arithmetic alone — no token is ever re-derived or emitted twice.
//
// Design Principles:
//   - Token = mixed-radix numeral: cursor offset within its length block decodes
//     big-endian over the alphabet, which IS lexicographic order per length
//   - Zero-alloc emission: tokens decode into caller buffers
//   - All block sizes precomputed once with overflow saturation
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

package candgen

import (
	"errors"
	"fmt"

	"selmine/constants"
)

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// ERRORS
// ═══════════════════════════════════════════════════════════════════════════════════════════════

var (
	// ErrBadAlphabet marks an empty alphabet or one with repeated bytes.
	// Repeats would break the cursor↔token bijection.
	ErrBadAlphabet = errors.New("invalid alphabet")

	// ErrBadLengthRange marks an unusable minLen/maxLen pair.
	ErrBadLengthRange = errors.New("invalid token length range")
)

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// GENERATOR STATE
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// Generator enumerates variant tokens in length-then-lexicographic order.
// Not safe for concurrent use; workers Clone() and Seek() private copies.
type Generator struct {
	alphabet []byte
	rank     [256]int16 // byte -> alphabet index, -1 if absent
	min, max int

	// blockStart[i] holds the cursor of the first token with length min+i;
	// the final entry is the total token count. Saturated at MaxUint64 when
	// the space overflows (never reachable by any practical budget).
	blockStart []uint64
	total      uint64

	cursor uint64
}

// New validates the alphabet and length range and precomputes the cursor
// geometry. The alphabet's byte order fixes the enumeration order.
func New(alphabet string, minLen, maxLen int) (*Generator, error) {
	if len(alphabet) == 0 || len(alphabet) > 256 {
		return nil, fmt.Errorf("%w: %d bytes", ErrBadAlphabet, len(alphabet))
	}
	if minLen < 1 || maxLen < minLen || maxLen > constants.MaxTokenLen {
		return nil, fmt.Errorf("%w: min=%d max=%d (cap %d)",
			ErrBadLengthRange, minLen, maxLen, constants.MaxTokenLen)
	}

	g := &Generator{
		alphabet: []byte(alphabet),
		min:      minLen,
		max:      maxLen,
	}
	for i := range g.rank {
		g.rank[i] = -1
	}
	for i, c := range g.alphabet {
		if g.rank[c] >= 0 {
			return nil, fmt.Errorf("%w: duplicate byte %q", ErrBadAlphabet, c)
		}
		g.rank[c] = int16(i)
	}

	// Precompute block starts: sizes are n^L with saturating arithmetic.
	n := uint64(len(alphabet))
	g.blockStart = make([]uint64, maxLen-minLen+2)
	size := powSat(n, uint64(minLen))
	var cum uint64
	for i := 0; i <= maxLen-minLen; i++ {
		g.blockStart[i] = cum
		cum = addSat(cum, size)
		size = mulSat(size, n)
	}
	g.blockStart[maxLen-minLen+1] = cum
	g.total = cum
	return g, nil
}

// powSat computes n^e with saturation at MaxUint64.
func powSat(n, e uint64) uint64 {
	out := uint64(1)
	for ; e > 0; e-- {
		out = mulSat(out, n)
	}
	return out
}

//go:nosplit
//go:inline
func mulSat(a, b uint64) uint64 {
	if a != 0 && b > ^uint64(0)/a {
		return ^uint64(0)
	}
	return a * b
}

//go:nosplit
//go:inline
func addSat(a, b uint64) uint64 {
	if s := a + b; s >= a {
		return s
	}
	return ^uint64(0)
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// CURSOR GEOMETRY
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// Total is the full candidate count for this alphabet and length range
// (saturated at MaxUint64 when the space exceeds cursor width).
//
//go:nosplit
//go:inline
func (g *Generator) Total() uint64 {
	return g.total
}

// Cursor returns the cursor of the NEXT token to be emitted.
//
//go:nosplit
//go:inline
func (g *Generator) Cursor() uint64 {
	return g.cursor
}

// Remaining counts tokens still to be emitted from the current cursor.
//
//go:nosplit
//go:inline
func (g *Generator) Remaining() uint64 {
	return g.total - g.cursor
}

// Seek positions the generator so the next emission is the token at cursor.
// Seeking past Total() parks the generator in the exhausted state. This is
// the pause/resume primitive: persist Cursor(), Seek() it back later.
//
//go:nosplit
func (g *Generator) Seek(cursor uint64) {
	if cursor > g.total {
		cursor = g.total
	}
	g.cursor = cursor
}

// Clone copies the generator (geometry and position) for a private worker
// walk. Clones share no mutable state.
func (g *Generator) Clone() *Generator {
	dup := *g
	return &dup
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// TOKEN DECODE / ENCODE
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// TokenAt decodes the token at the given cursor into dst, returning the
// token length and whether the cursor is in range. dst must hold at least
// maxLen bytes. The decode is pure: it does not move the generator.
//
//go:nosplit
func (g *Generator) TokenAt(cursor uint64, dst []byte) (int, bool) {
	if cursor >= g.total {
		return 0, false
	}
	// Locate the length block. The block slice is tiny (≤ MaxTokenLen+1),
	// so a linear scan beats binary search on branch prediction.
	blk := 0
	for cursor >= g.blockStart[blk+1] {
		blk++
	}
	length := g.min + blk
	offset := cursor - g.blockStart[blk]

	// Big-endian mixed-radix decode: most significant position first gives
	// lexicographic order within the block.
	n := uint64(len(g.alphabet))
	for i := length - 1; i >= 0; i-- {
		dst[i] = g.alphabet[offset%n]
		offset /= n
	}
	return length, true
}

// CursorOf inverts TokenAt: the cursor a token occupies, or false when the
// token is outside this generator's space (bad length or foreign byte).
func (g *Generator) CursorOf(token []byte) (uint64, bool) {
	length := len(token)
	if length < g.min || length > g.max {
		return 0, false
	}
	n := uint64(len(g.alphabet))
	var offset uint64
	for _, c := range token {
		r := g.rank[c]
		if r < 0 {
			return 0, false
		}
		offset = offset*n + uint64(r)
	}
	return g.blockStart[length-g.min] + offset, true
}

// Next emits the token at the current cursor into dst and advances.
// Returns false exactly once the space is exhausted. Zero-alloc.
//
//go:nosplit
func (g *Generator) Next(dst []byte) (int, bool) {
	length, ok := g.TokenAt(g.cursor, dst)
	if !ok {
		return 0, false
	}
	g.cursor++
	return length, true
}
