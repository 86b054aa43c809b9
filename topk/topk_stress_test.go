// ════════════════════════════════════════════════════════════════════════════════════════════════
// 🧪 STRESS SUITE: BOUNDED BEST-K LIST
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: Selector Mining Engine
// Component: TopK Stress & Benchmark Suite
//
// Description:
//   Drives the list with large pseudo-random candidate streams and cross-checks the
//   retained set against a full sort, including heavy key-tie pressure where only the
//   token order separates candidates.
// ════════════════════════════════════════════════════════════════════════════════════════════════

package topk

import (
	"math/rand"
	"sort"
	"testing"

	"selmine/types"
)

// referenceBest computes the expected best-k by full sort under the engine's
// total order.
func referenceBest(cands []types.Candidate, k int) []types.Candidate {
	sorted := make([]types.Candidate, len(cands))
	copy(sorted, cands)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Better(&sorted[j])
	})
	if len(sorted) > k {
		sorted = sorted[:k]
	}
	return sorted
}

func randomToken(rng *rand.Rand) string {
	const alpha = "ab01"
	n := 1 + rng.Intn(4)
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = alpha[rng.Intn(len(alpha))]
	}
	return string(buf)
}

func TestStressAgainstFullSort(t *testing.T) {
	rng := rand.New(rand.NewSource(0x5e1ec707))
	for round := 0; round < 20; round++ {
		k := 1 + rng.Intn(16)
		n := 1 + rng.Intn(4000)
		seen := map[string]bool{}
		var stream []types.Candidate
		for len(stream) < n {
			tok := randomToken(rng)
			if seen[tok] {
				continue // generator invariant: unique tokens per run
			}
			seen[tok] = true
			// Narrow key range forces heavy tie-break pressure.
			stream = append(stream, types.Candidate{Token: tok, Key: uint64(rng.Intn(8))})
		}

		l := New(k)
		for _, c := range stream {
			l.Offer(c)
		}
		got := l.Drain()
		want := referenceBest(stream, k)
		if len(got) != len(want) {
			t.Fatalf("round %d: length %d vs %d", round, len(got), len(want))
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("round %d rank %d: %+v, want %+v", round, i, got[i], want[i])
			}
		}
	}
}

// Sharded lists merged together must equal one list fed the whole stream,
// for any shard count — the worker-reduction determinism property.
func TestStressShardedMergeMatchesSingle(t *testing.T) {
	rng := rand.New(rand.NewSource(0xfee6))
	var stream []types.Candidate
	seen := map[string]bool{}
	for len(stream) < 3000 {
		tok := randomToken(rng)
		if seen[tok] {
			continue
		}
		seen[tok] = true
		stream = append(stream, types.Candidate{Token: tok, Key: rng.Uint64() % 32})
	}

	single := New(10)
	for _, c := range stream {
		single.Offer(c)
	}
	want := single.Drain()

	for _, shards := range []int{1, 2, 3, 7, 16} {
		parts := make([]*List, shards)
		for i := range parts {
			parts[i] = New(10)
		}
		for i, c := range stream {
			parts[i%shards].Offer(c)
		}
		merged := New(10)
		for _, p := range parts {
			merged.Merge(p)
		}
		got := merged.Drain()
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("%d shards, rank %d: %+v, want %+v", shards, i, got[i], want[i])
			}
		}
	}
}

func BenchmarkOfferHotReject(b *testing.B) {
	l := New(10)
	// Warm the list so the floor is high and offers reject fast.
	for i := 0; i < 10; i++ {
		l.Offer(types.Candidate{Token: string(rune('a' + i)), Key: 1 << 40})
	}
	c := types.Candidate{Token: "zz", Key: 1}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		l.Offer(c)
	}
}

func BenchmarkOfferAdmit(b *testing.B) {
	l := New(10)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		l.Reset()
		for j := 0; j < 10; j++ {
			l.Offer(types.Candidate{Token: "t", Key: uint64(j)})
		}
	}
}
