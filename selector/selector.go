// ════════════════════════════════════════════════════════════════════════════════════════════════
// ⚡ SELECTOR HASHER
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: Selector Mining Engine
// Component: Keccak-256 Signature Hashing
//
// Description:
//   Derives 4-byte dispatch selectors from canonical signature strings using the
//   pre-standardization keccak-256 permutation (sha3.NewLegacyKeccak256), the exact
//   function Ethereum tooling has always used for this purpose. Any deviation here
//   silently produces wrong selectors with no local error signal, so this package
//   carries the engine's golden-vector tests.
//
// Design Principles:
//   - Selector = FIRST four bytes of the raw 32-byte digest, never the last four
//   - Hashing is total: any byte sequence hashes, no error path exists
//   - One reusable Hasher per worker: Reset+Write+Sum into a fixed scratch buffer
//     keeps the per-candidate hot path free of heap allocation
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

package selector

import (
	"hash"

	"golang.org/x/crypto/sha3"

	"selmine/constants"
	"selmine/types"
)

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// REUSABLE HASHER
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// Hasher wraps a single legacy keccak-256 state for repeated signature
// hashing. Not safe for concurrent use: each mining worker owns one.
type Hasher struct {
	state   hash.Hash
	scratch [constants.DigestSize]byte
}

// NewHasher allocates one reusable hashing state. All further operations on
// the returned Hasher are allocation-free.
func NewHasher() *Hasher {
	return &Hasher{state: sha3.NewLegacyKeccak256()}
}

// Sum computes the full 32-byte keccak-256 digest of sig.
// The returned array is a copy; the internal scratch buffer is reused.
func (h *Hasher) Sum(sig []byte) [constants.DigestSize]byte {
	h.state.Reset()
	h.state.Write(sig)
	h.state.Sum(h.scratch[:0])
	return h.scratch
}

// Selector computes the 4-byte selector of sig: the first four bytes of its
// keccak-256 digest. This is the per-candidate hot path.
//
//go:nosplit
func (h *Hasher) Selector(sig []byte) types.Selector {
	h.state.Reset()
	h.state.Write(sig)
	h.state.Sum(h.scratch[:0])
	return types.Selector{h.scratch[0], h.scratch[1], h.scratch[2], h.scratch[3]}
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// DIGEST TRUNCATION & CONVENIENCE FORMS
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// SelectorOf extracts the selector from a precomputed digest. Truncation is
// unambiguous by contract: always the leading four bytes of the raw output.
//
//go:nosplit
//go:inline
func SelectorOf(digest [constants.DigestSize]byte) types.Selector {
	return types.Selector{digest[0], digest[1], digest[2], digest[3]}
}

// Of is the one-shot convenience form for cold paths (sibling ingestion,
// tests, CLI verification). Allocates a fresh state per call; the mining
// loop uses a per-worker Hasher instead.
func Of(sig string) types.Selector {
	h := NewHasher()
	return h.Selector([]byte(sig))
}
