// ════════════════════════════════════════════════════════════════════════════════════════════════
// ⚡ SIBLING SET INGESTION
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: Selector Mining Engine
// Component: Contract ABI & Selector List Loading
//
// Description:
//   Loads the selectors already occupied in a target contract — the "sibling set" the
//   scorer probes for collisions and rank positions. Two input shapes:
//
//     - Contract ABI JSON (the standard compiler artifact): every function entry's
//       canonical signature hashes to its dispatch selector.
//     - Plain hex list: one selector per line (0xa9059cbb), comments and blanks
//       tolerated, for workflows that extract selectors from deployed bytecode.
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

package abiload

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"selmine/constants"
	"selmine/utils"
)

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// ABI JSON
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// FromABIJSON parses a contract ABI document and returns the selectors of
// every function it declares, in declaration-independent sorted order.
// Constructor, fallback, receive and event entries carry no dispatch
// selector and are ignored.
func FromABIJSON(r io.Reader) ([]uint32, error) {
	parsed, err := abi.JSON(r)
	if err != nil {
		return nil, fmt.Errorf("abi parse: %w", err)
	}
	sels := make([]uint32, 0, len(parsed.Methods))
	for _, m := range parsed.Methods {
		sels = append(sels, utils.BE32(m.ID))
	}
	return Sorted(sels), nil
}

// FromABIFile is the path form of FromABIJSON.
func FromABIFile(path string) ([]uint32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	sels, err := FromABIJSON(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sels, nil
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// HEX SELECTOR LISTS
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// FromHexList reads one selector per line: 8 hex characters with or without
// the 0x prefix. Blank lines and #-comments are skipped. Anything after the
// selector on a line (e.g. an annotated signature) is ignored.
func FromHexList(r io.Reader) ([]uint32, error) {
	var sels []uint32
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		field := strings.TrimSpace(sc.Text())
		if field == "" || field[0] == '#' {
			continue
		}
		if i := strings.IndexAny(field, " \t"); i >= 0 {
			field = field[:i]
		}
		if !strings.HasPrefix(field, "0x") && !strings.HasPrefix(field, "0X") {
			field = "0x" + field
		}
		raw, err := hexutil.Decode(field)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if len(raw) != constants.SelectorSize {
			return nil, fmt.Errorf("line %d: selector is %d bytes, want %d",
				line, len(raw), constants.SelectorSize)
		}
		sels = append(sels, utils.BE32(raw))
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return Sorted(sels), nil
}

// FromHexFile is the path form of FromHexList.
func FromHexFile(path string) ([]uint32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	sels, err := FromHexList(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sels, nil
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// NORMALIZATION
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// Sorted returns sels ascending with duplicates removed. In-place.
func Sorted(sels []uint32) []uint32 {
	if len(sels) < 2 {
		return sels
	}
	sort.Slice(sels, func(i, j int) bool { return sels[i] < sels[j] })
	out := sels[:1]
	for _, v := range sels[1:] {
		if v != out[len(out)-1] {
			out = append(out, v)
		}
	}
	return out
}
