// ─────────────────────────────────────────────────────────────────────────────
// [Filename]: utils.go — Shared zero-alloc byte, integer and hex helpers
//
// Purpose:
//   - Conversion primitives used by the mining hot path and cold diagnostics.
//   - No heap allocation anywhere: every helper writes into caller storage
//     or returns values built from fixed-size stack buffers.
//
// Notes:
//   - Hex output is lowercase, matching the canonical selector rendering used
//     across Ethereum tooling (e.g. a9059cbb).
//   - Unsafe casts require the caller to keep source slices immutable.
// ─────────────────────────────────────────────────────────────────────────────

package utils

import (
	"os"
	"unsafe"
)

const hexDigits = "0123456789abcdef"

///////////////////////////////////////////////////////////////////////////////
// Conversion Utilities — Zero-Alloc Casts
///////////////////////////////////////////////////////////////////////////////

// B2s converts a []byte to a string **without** allocation.
// ⚠️ Caller must ensure the input slice remains valid and unchanged.
// Used for human-readable print paths and map probes.
//
//go:nosplit
//go:inline
func B2s(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	return unsafe.String(&b[0], len(b))
}

///////////////////////////////////////////////////////////////////////////////
// Integer Formatting — Stack-Buffer Decimal Conversion
///////////////////////////////////////////////////////////////////////////////

// Itoa formats an int without fmt or strconv.
// Negative inputs render with a leading '-'; used only on cold print paths.
//
//go:nosplit
func Itoa(v int) string {
	if v == 0 {
		return "0"
	}
	neg := v < 0
	u := uint64(v)
	if neg {
		u = uint64(-v)
	}
	var buf [21]byte
	i := len(buf)
	for u > 0 {
		i--
		buf[i] = byte('0' + u%10)
		u /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// Utoa formats a uint64, covering full-range cursor and counter values.
//
//go:nosplit
func Utoa(u uint64) string {
	if u == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for u > 0 {
		i--
		buf[i] = byte('0' + u%10)
		u /= 10
	}
	return string(buf[i:])
}

///////////////////////////////////////////////////////////////////////////////
// Hex Formatting — Selector & Digest Rendering
///////////////////////////////////////////////////////////////////////////////

// AppendHex appends the lowercase hex encoding of src to dst and returns
// the extended slice. Zero-alloc when dst has sufficient capacity.
//
//go:nosplit
func AppendHex(dst, src []byte) []byte {
	for _, b := range src {
		dst = append(dst, hexDigits[b>>4], hexDigits[b&0x0f])
	}
	return dst
}

// HexU32 renders a uint32 as exactly eight lowercase hex characters.
// Primary rendering path for 4-byte selectors (big-endian byte order).
//
//go:nosplit
func HexU32(v uint32) string {
	var buf [8]byte
	for i := 7; i >= 0; i-- {
		buf[i] = hexDigits[v&0x0f]
		v >>= 4
	}
	return string(buf[:])
}

///////////////////////////////////////////////////////////////////////////////
// Memory Probes — Unaligned Loads
///////////////////////////////////////////////////////////////////////////////

// Load32 performs an unaligned 32-bit read. Caller guarantees len(b) >= 4.
//
//go:nosplit
//go:inline
func Load32(b []byte) uint32 {
	return *(*uint32)(unsafe.Pointer(&b[0]))
}

// Load64 performs an unaligned 64-bit read. Caller guarantees len(b) >= 8.
//
//go:nosplit
//go:inline
func Load64(b []byte) uint64 {
	return *(*uint64)(unsafe.Pointer(&b[0]))
}

// BE32 assembles a big-endian uint32 from the first four bytes of b.
// Matches selector ordering semantics: byte 0 is most significant.
//
//go:nosplit
//go:inline
func BE32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

///////////////////////////////////////////////////////////////////////////////
// Bit Mixing — Hash Finalization
///////////////////////////////////////////////////////////////////////////////

// Mix64 applies a splitmix64-style avalanche for index hashing.
//
//go:nosplit
//go:inline
func Mix64(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}

///////////////////////////////////////////////////////////////////////////////
// Diagnostic Output — Direct Stderr Writes
///////////////////////////////////////////////////////////////////////////////

// PrintWarning writes a message straight to stderr, bypassing any
// buffering or formatting machinery. Cold paths only.
func PrintWarning(msg string) {
	os.Stderr.WriteString(msg)
}
