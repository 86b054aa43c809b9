// ════════════════════════════════════════════════════════════════════════════════════════════════
// ⚡ SIBLING SELECTOR INDEX
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: Selector Mining Engine
// Component: Fixed-Capacity Selector Collision Set
//
// Description:
//   Robin Hood hash set over 4-byte selectors (as big-endian uint32), probed once per
//   candidate on the mining hot path: a freshly mined selector that collides with a
//   sibling already fixed in the contract would shadow its dispatch slot and is
//   unusable regardless of score.
//
// Design Principles:
//   - Fixed capacity, power-of-2 sizing, allocated once from the sibling set
//   - Robin Hood displacement keeps worst-case probe chains short and flat
//   - Parallel key/distance arrays; distance 0 is the empty sentinel, so the
//     all-zero selector 00000000 remains a legal member
//   - Single-writer build phase, read-only thereafter — lock-free lookups from
//     any number of workers
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

package sibidx

import "selmine/utils"

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// TYPE DEFINITIONS
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// Set is a fixed-capacity Robin Hood hash set of selector values.
// Build with Put, then share read-only across workers via Has.
type Set struct {
	keys []uint32 // key array, valid only where dist > 0
	dist []uint8  // probe distance + 1; 0 marks an empty slot
	mask uint32   // size mask for fast modulo
	n    int      // live member count
}

// nextPow2 returns the smallest power of 2 >= v, minimum 8.
func nextPow2(v int) int {
	size := 8
	for size < v {
		size <<= 1
	}
	return size
}

// New sizes a set for up to expected members. Capacity is doubled over the
// expectation to keep the load factor at or below one half, which bounds
// Robin Hood probe distances to a handful of slots.
func New(expected int) *Set {
	if expected < 1 {
		expected = 1
	}
	size := nextPow2(expected * 2)
	return &Set{
		keys: make([]uint32, size),
		dist: make([]uint8, size),
		mask: uint32(size - 1),
	}
}

// FromSelectors builds a read-only set from a sibling selector list.
func FromSelectors(sels []uint32) *Set {
	s := New(len(sels))
	for _, sel := range sels {
		s.Put(sel)
	}
	return s
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// HASH FUNCTION
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// slotOf spreads a selector across the table. Selectors are keccak prefixes
// and already near-uniform, but the avalanche costs two multiplies and
// protects against adversarially clustered sibling sets.
//
//go:nosplit
//go:inline
func (s *Set) slotOf(key uint32) uint32 {
	return uint32(utils.Mix64(uint64(key))) & s.mask
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// BUILD PHASE
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// Put inserts key, reporting whether it was new. Robin Hood displacement:
// a probing entry that is richer (shorter travelled distance) than the
// resident swaps in and the resident continues probing. Build phase only —
// never call concurrently with Has.
func (s *Set) Put(key uint32) bool {
	slot := s.slotOf(key)
	d := uint8(1)
	for {
		if s.dist[slot] == 0 {
			s.keys[slot] = key
			s.dist[slot] = d
			s.n++
			return true
		}
		if s.keys[slot] == key && s.dist[slot] == d {
			return false // already a member
		}
		if s.dist[slot] < d {
			// Rich resident: swap and keep probing with the displaced entry.
			s.keys[slot], key = key, s.keys[slot]
			s.dist[slot], d = d, s.dist[slot]
		}
		slot = (slot + 1) & s.mask
		d++
	}
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// HOT-PATH LOOKUP
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// Has reports membership. The probe stops as soon as it meets an empty slot
// or a resident closer to home than the query would be — the Robin Hood
// invariant guarantees the key cannot live further on.
//
//go:nosplit
//go:inline
func (s *Set) Has(key uint32) bool {
	slot := s.slotOf(key)
	d := uint8(1)
	for {
		resident := s.dist[slot]
		if resident == 0 || resident < d {
			return false
		}
		if s.keys[slot] == key && resident == d {
			return true
		}
		slot = (slot + 1) & s.mask
		d++
	}
}

// Len reports live member count.
//
//go:nosplit
//go:inline
func (s *Set) Len() int {
	return s.n
}
