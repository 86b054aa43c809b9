// Package candgen validates the enumeration order contract: length-major,
// lexicographic within a length, bijective cursors, exact restartability and
// duplicate-free emission.
package candgen

import (
	"errors"
	"testing"

	"selmine/constants"
)

// -----------------------------------------------------------------------------
// ░░ Construction & Validation ░░
// -----------------------------------------------------------------------------

func TestNewRejectsBadInputs(t *testing.T) {
	if _, err := New("", 1, 2); !errors.Is(err, ErrBadAlphabet) {
		t.Fatalf("empty alphabet: %v", err)
	}
	if _, err := New("aba", 1, 2); !errors.Is(err, ErrBadAlphabet) {
		t.Fatalf("duplicate byte: %v", err)
	}
	if _, err := New("ab", 0, 2); !errors.Is(err, ErrBadLengthRange) {
		t.Fatalf("minLen 0: %v", err)
	}
	if _, err := New("ab", 3, 2); !errors.Is(err, ErrBadLengthRange) {
		t.Fatalf("max < min: %v", err)
	}
	if _, err := New("ab", 1, constants.MaxTokenLen+1); !errors.Is(err, ErrBadLengthRange) {
		t.Fatalf("over cap: %v", err)
	}
}

// -----------------------------------------------------------------------------
// ░░ Enumeration Order Contract ░░
// -----------------------------------------------------------------------------

// Minimal contract: alphabet {a,b}, lengths 1..1 emits exactly [a, b] in
// that order.
func TestMinimalEnumeration(t *testing.T) {
	g, err := New("ab", 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	if g.Total() != 2 {
		t.Fatalf("Total = %d, want 2", g.Total())
	}
	var buf [constants.MaxTokenLen]byte
	want := []string{"a", "b"}
	for i, w := range want {
		n, ok := g.Next(buf[:])
		if !ok {
			t.Fatalf("emission %d: premature exhaustion", i)
		}
		if string(buf[:n]) != w {
			t.Fatalf("emission %d = %q, want %q", i, buf[:n], w)
		}
	}
	if _, ok := g.Next(buf[:]); ok {
		t.Fatal("generator must exhaust after 2 tokens")
	}
}

func TestLengthMajorLexicographicOrder(t *testing.T) {
	g, err := New("ab", 1, 3)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		"a", "b",
		"aa", "ab", "ba", "bb",
		"aaa", "aab", "aba", "abb", "baa", "bab", "bba", "bbb",
	}
	if g.Total() != uint64(len(want)) {
		t.Fatalf("Total = %d, want %d", g.Total(), len(want))
	}
	var buf [constants.MaxTokenLen]byte
	for i, w := range want {
		n, ok := g.Next(buf[:])
		if !ok || string(buf[:n]) != w {
			t.Fatalf("emission %d = %q,%v, want %q", i, buf[:n], ok, w)
		}
	}
}

func TestMinLenSkipsShorterBlocks(t *testing.T) {
	g, err := New("xy", 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	var buf [constants.MaxTokenLen]byte
	n, ok := g.Next(buf[:])
	if !ok || string(buf[:n]) != "xx" {
		t.Fatalf("first emission = %q, want xx", buf[:n])
	}
	if g.Total() != 4 {
		t.Fatalf("Total = %d, want 4", g.Total())
	}
}

// No token may be emitted twice within a run.
func TestNoDuplicateEmission(t *testing.T) {
	g, err := New("abc0", 1, 3)
	if err != nil {
		t.Fatal(err)
	}
	seen := make(map[string]bool, g.Total())
	var buf [constants.MaxTokenLen]byte
	for {
		n, ok := g.Next(buf[:])
		if !ok {
			break
		}
		tok := string(buf[:n])
		if seen[tok] {
			t.Fatalf("token %q emitted twice", tok)
		}
		seen[tok] = true
	}
	// 4 + 16 + 64
	if len(seen) != 84 {
		t.Fatalf("emitted %d tokens, want 84", len(seen))
	}
}

// -----------------------------------------------------------------------------
// ░░ Cursor Bijection & Resume ░░
// -----------------------------------------------------------------------------

func TestCursorTokenBijection(t *testing.T) {
	g, err := New("0123456789abcdef", 1, 3)
	if err != nil {
		t.Fatal(err)
	}
	var buf [constants.MaxTokenLen]byte
	for c := uint64(0); c < g.Total(); c++ {
		n, ok := g.TokenAt(c, buf[:])
		if !ok {
			t.Fatalf("TokenAt(%d) out of range below Total", c)
		}
		back, ok := g.CursorOf(buf[:n])
		if !ok || back != c {
			t.Fatalf("CursorOf(TokenAt(%d)) = %d,%v", c, back, ok)
		}
	}
	if _, ok := g.TokenAt(g.Total(), buf[:]); ok {
		t.Fatal("TokenAt(Total) must be out of range")
	}
}

func TestCursorOfRejectsForeignTokens(t *testing.T) {
	g, err := New("ab", 1, 2)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := g.CursorOf([]byte("z")); ok {
		t.Fatal("foreign byte must not map to a cursor")
	}
	if _, ok := g.CursorOf([]byte("aaa")); ok {
		t.Fatal("over-length token must not map to a cursor")
	}
	if _, ok := g.CursorOf(nil); ok {
		t.Fatal("empty token must not map to a cursor")
	}
}

// Pausing at an arbitrary cursor and resuming must reproduce the exact
// remaining sequence — the interactive/time-boxed use contract.
func TestSeekResumeEquivalence(t *testing.T) {
	full, err := New("abc", 1, 3)
	if err != nil {
		t.Fatal(err)
	}
	var reference []string
	var buf [constants.MaxTokenLen]byte
	for {
		n, ok := full.Next(buf[:])
		if !ok {
			break
		}
		reference = append(reference, string(buf[:n]))
	}

	for _, pause := range []uint64{0, 1, 3, 12, 38} {
		g, _ := New("abc", 1, 3)
		g.Seek(pause)
		if g.Cursor() != pause {
			t.Fatalf("Cursor after Seek(%d) = %d", pause, g.Cursor())
		}
		if g.Remaining() != g.Total()-pause {
			t.Fatalf("Remaining after Seek(%d) = %d", pause, g.Remaining())
		}
		for i := pause; ; i++ {
			n, ok := g.Next(buf[:])
			if !ok {
				if i != g.Total() {
					t.Fatalf("resumed run exhausted at %d, want %d", i, g.Total())
				}
				break
			}
			if string(buf[:n]) != reference[i] {
				t.Fatalf("resume at %d: emission %d = %q, want %q",
					pause, i, buf[:n], reference[i])
			}
		}
	}
}

func TestSeekPastTotalParksExhausted(t *testing.T) {
	g, err := New("ab", 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	g.Seek(1 << 40)
	var buf [constants.MaxTokenLen]byte
	if _, ok := g.Next(buf[:]); ok {
		t.Fatal("seek past Total must exhaust the generator")
	}
	if g.Remaining() != 0 {
		t.Fatalf("Remaining = %d, want 0", g.Remaining())
	}
}

func TestCloneIsIndependent(t *testing.T) {
	g, err := New("ab", 1, 2)
	if err != nil {
		t.Fatal(err)
	}
	var buf [constants.MaxTokenLen]byte
	g.Next(buf[:])
	dup := g.Clone()
	if dup.Cursor() != g.Cursor() {
		t.Fatal("clone must start at the parent cursor")
	}
	dup.Next(buf[:])
	if dup.Cursor() == g.Cursor() {
		t.Fatal("advancing the clone must not move the parent")
	}
}

// -----------------------------------------------------------------------------
// ░░ Benchmarks ░░
// -----------------------------------------------------------------------------

func BenchmarkNext(b *testing.B) {
	g, err := New(constants.DefaultAlphabet, 1, 6)
	if err != nil {
		b.Fatal(err)
	}
	var buf [constants.MaxTokenLen]byte
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, ok := g.Next(buf[:]); !ok {
			g.Seek(0)
		}
	}
}

func BenchmarkTokenAt(b *testing.B) {
	g, err := New(constants.DefaultAlphabet, 1, 6)
	if err != nil {
		b.Fatal(err)
	}
	var buf [constants.MaxTokenLen]byte
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		g.TokenAt(uint64(i)%g.Total(), buf[:])
	}
}
